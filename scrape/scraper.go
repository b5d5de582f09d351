package scrape

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mempirate/faqex/document"
	"github.com/mempirate/faqex/log"
	"github.com/mempirate/faqex/util"
)

// Scraper fetches a web page and returns it as a markdown document.
type Scraper interface {
	Scrape(ctx context.Context, url *url.URL) (*document.Document, error)
}

// HTTPScraper is a plain-HTTP fallback used when no Firecrawl key is
// configured. It only handles HTML pages and misses anything rendered
// client-side.
type HTTPScraper struct {
	log zerolog.Logger
}

func NewHTTPScraper() *HTTPScraper {
	return &HTTPScraper{
		log: log.NewLogger("scrape"),
	}
}

func (s *HTTPScraper) Scrape(ctx context.Context, uri *url.URL) (*document.Document, error) {
	body, ct, err := util.DownloadContent(uri)
	if err != nil {
		return nil, err
	}

	if ct != "text/html" {
		return nil, errors.Errorf("unsupported content type: %s", ct)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}

	title, _ := extractTitle(root)

	mdBody, err := md.ConvertReader(bytes.NewReader(body), converter.WithDomain(uri.Host))
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert HTML to Markdown")
	}

	s.log.Debug().Str("url", uri.String()).Str("title", title).Msg("Scraped page over plain HTTP")

	return &document.Document{
		Content: string(mdBody),
		Metadata: document.Metadata{
			Title:         title,
			Source:        uri.String(),
			ProcessedTime: time.Now().Format(time.RFC3339),
		},
	}, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func extractTitle(n *html.Node) (string, bool) {
	if isTitleElement(n) && n.FirstChild != nil {
		return sanitizeTitle(n.FirstChild.Data), true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result, ok := extractTitle(c); ok {
			return result, ok
		}
	}

	return "", false
}

func sanitizeTitle(name string) string {
	re := regexp.MustCompile(`\p{C}`)

	name = re.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
