// Package pipeline runs the crawl -> prompt -> extract sequence and
// accumulates the resulting records.
package pipeline

import (
	"context"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mempirate/faqex/cache"
	"github.com/mempirate/faqex/document"
	"github.com/mempirate/faqex/extract"
	"github.com/mempirate/faqex/faq"
	"github.com/mempirate/faqex/llm"
	"github.com/mempirate/faqex/log"
	"github.com/mempirate/faqex/prompt"
	"github.com/mempirate/faqex/scrape"
)

// Progress reports batch progress to the caller.
type Progress struct {
	// Current is 1-based.
	Current int
	Total   int
	URL     string
}

type ProgressFunc func(Progress)

// Pipeline extracts FAQs from URLs one at a time. URLs are processed
// sequentially; the table and missed list are still guarded so the web
// UI can read them mid-batch.
type Pipeline struct {
	log       zerolog.Logger
	scraper   scrape.Scraper
	client    llm.Client
	extractor *extract.Extractor

	// pages is optional. When set, crawled pages are cached and
	// re-runs skip the crawl.
	pages *cache.PageCache

	table *faq.Table

	mu     sync.Mutex
	missed []string
}

func New(scraper scrape.Scraper, client llm.Client, pages *cache.PageCache) *Pipeline {
	return &Pipeline{
		log:       log.NewLogger("pipeline"),
		scraper:   scraper,
		client:    client,
		extractor: extract.New(),
		pages:     pages,
		table:     faq.NewTable(),
	}
}

// Table returns the accumulated record table.
func (p *Pipeline) Table() *faq.Table {
	return p.table
}

// Missed returns the URLs whose crawl failed after retries.
func (p *Pipeline) Missed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.missed))
	copy(out, p.missed)
	return out
}

// ProcessURL extracts FAQs from a single URL and appends them to the
// table. Already-processed URLs are not crawled again; their existing
// records are returned.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) ([]faq.Record, error) {
	uri, err := url.Parse(rawURL)
	if err != nil || uri.Scheme == "" || uri.Host == "" {
		return nil, errors.Errorf("invalid URL: %q", rawURL)
	}

	if p.table.Contains(rawURL) {
		p.log.Info().Str("url", rawURL).Msg("URL already processed, skipping")
		return p.table.Lookup(rawURL), nil
	}

	doc, err := p.loadPage(ctx, uri)
	if err != nil {
		p.recordMiss(rawURL)
		return nil, errors.Wrapf(err, "failed to crawl %s", rawURL)
	}

	response, err := p.client.Complete(ctx, prompt.CreateExtractionPrompt(doc.Content))
	if err != nil {
		return nil, errors.Wrapf(err, "extraction failed for %s", rawURL)
	}

	records := p.extractor.Records(response, rawURL)
	for _, rec := range records {
		p.table.Append(rec)
	}

	p.log.Info().Str("url", rawURL).Int("records", len(records)).Msg("Extracted FAQs")

	return records, nil
}

// ProcessAll processes the URLs in order. A max of 0 means no limit.
// Per-URL failures are logged and processing continues; only context
// cancellation aborts the batch.
func (p *Pipeline) ProcessAll(ctx context.Context, urls []string, max int, progress ProgressFunc) error {
	if max > 0 && len(urls) > max {
		urls = urls[:max]
	}

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		if progress != nil {
			progress(Progress{Current: i + 1, Total: len(urls), URL: u})
		}

		p.log.Info().Int("current", i+1).Int("total", len(urls)).Str("url", u).Msg("Processing URL")

		if _, err := p.ProcessURL(ctx, u); err != nil {
			p.log.Error().Err(err).Str("url", u).Msg("Failed to process URL")
		}
	}

	return nil
}

// loadPage returns the page from the cache when possible, otherwise
// crawls it and caches the result.
func (p *Pipeline) loadPage(ctx context.Context, uri *url.URL) (*document.Document, error) {
	if p.pages != nil {
		doc, ok, err := p.pages.Get(uri.String())
		if err != nil {
			p.log.Warn().Err(err).Str("url", uri.String()).Msg("Ignoring bad cache entry")
		} else if ok {
			p.log.Debug().Str("url", uri.String()).Msg("Page cache hit")
			return doc, nil
		}
	}

	doc, err := p.scraper.Scrape(ctx, uri)
	if err != nil {
		return nil, err
	}

	if p.pages != nil {
		if err := p.pages.Put(uri.String(), doc); err != nil {
			p.log.Warn().Err(err).Str("url", uri.String()).Msg("Failed to cache page")
		}
	}

	return doc, nil
}

func (p *Pipeline) recordMiss(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.missed = append(p.missed, url)
}
