package cache

import (
	"path/filepath"
	"testing"

	"github.com/mempirate/faqex/document"
)

func newTestCache(t *testing.T) *PageCache {
	t.Helper()

	c, err := NewPageCache(filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	return c
}

func TestPageCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	const url = "https://example.edu/faq"

	if c.Contains(url) {
		t.Fatal("fresh cache should not contain the URL")
	}

	doc := &document.Document{
		Content: "# Student FAQ\n\nHow do I apply?\n",
		Metadata: document.Metadata{
			Source:        url,
			ProcessedTime: "2025-06-01T12:00:00Z",
		},
	}

	if err := c.Put(url, doc); err != nil {
		t.Fatal(err)
	}

	if !c.Contains(url) {
		t.Fatal("cache should contain the URL after Put")
	}

	if c.Len() != 1 {
		t.Errorf("unexpected length: %d", c.Len())
	}

	got, ok, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}

	if got.Metadata.Title != "Student FAQ" {
		t.Errorf("unexpected title: %q", got.Metadata.Title)
	}
	if got.Content != doc.Content {
		t.Errorf("unexpected content: %q", got.Content)
	}
}

func TestPageCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get("https://missing.example")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected a cache miss")
	}
}
