package scrape

import (
	"context"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mendableai/firecrawl-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mempirate/faqex/document"
	"github.com/mempirate/faqex/log"
)

const FIRECRAWL_API = "https://api.firecrawl.dev"

// Retry policy for transient Firecrawl failures: three attempts with
// exponential backoff between 4s and 60s.
const (
	maxRetries      = 2
	initialInterval = 4 * time.Second
	maxInterval     = 60 * time.Second
)

// scrapeFunc is the Firecrawl call being retried.
type scrapeFunc func(url string, params *firecrawl.ScrapeParams) (*firecrawl.FirecrawlDocument, error)

// FirecrawlScraper is a scraper that uses the Firecrawl API to scrape web pages.
type FirecrawlScraper struct {
	log zerolog.Logger

	scrape scrapeFunc
	params *firecrawl.ScrapeParams

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewFirecrawlScraper(key string) (*FirecrawlScraper, error) {
	app, err := firecrawl.NewFirecrawlApp(key, FIRECRAWL_API)
	if err != nil {
		return nil, err
	}

	timeout := 90_000

	defaultParams := &firecrawl.ScrapeParams{
		Formats: []string{"markdown", "links"},
		Timeout: &timeout,
	}

	return &FirecrawlScraper{
		log:             log.NewLogger("firecrawl"),
		scrape:          app.ScrapeURL,
		params:          defaultParams,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
	}, nil
}

// Scrape scrapes the given URL and returns it as a markdown document.
// Transient failures are retried; the final error is returned after
// the last attempt.
func (s *FirecrawlScraper) Scrape(ctx context.Context, uri *url.URL) (*document.Document, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.MaxInterval = s.maxInterval
	policy.MaxElapsedTime = 0

	fcDoc, err := backoff.RetryNotifyWithData(
		func() (*firecrawl.FirecrawlDocument, error) {
			return s.scrape(uri.String(), s.params)
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx),
		func(err error, wait time.Duration) {
			s.log.Warn().Err(err).Str("url", uri.String()).Dur("wait", wait).Msg("Scrape attempt failed, retrying")
		},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scrape URL %s", uri.String())
	}

	if fcDoc.Markdown == "" {
		return nil, errors.Errorf("no markdown content returned for URL %s", uri.String())
	}

	md := fcDoc.Metadata

	// Prefer the OpenGraph title. PDFs usually have neither, in which
	// case document.FindTitle falls back to the first H1.
	var title string
	if md.OGTitle != nil {
		title = *md.OGTitle
	} else if md.Title != nil {
		title = *md.Title
	}

	source := uri.String()
	if md.SourceURL != nil {
		source = *md.SourceURL
	}

	doc := &document.Document{
		Content: fcDoc.Markdown,
		Metadata: document.Metadata{
			Title:         title,
			Source:        source,
			ProcessedTime: time.Now().Format(time.RFC3339),
			Links:         fcDoc.Links,
		},
	}

	if md.OGSiteName != nil {
		doc.Metadata.SiteName = *md.OGSiteName
	}
	if md.PublishedTime != nil {
		doc.Metadata.PublishedTime = *md.PublishedTime
	}

	doc.Metadata.Title = doc.FindTitle()

	return doc, nil
}
