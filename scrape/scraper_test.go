package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const faqPage = `<!DOCTYPE html>
<html>
<head><title>Example University FAQ</title></head>
<body>
<h1>Frequently Asked Questions</h1>
<p>How do I apply? Use the <a href="/apply">application portal</a>.</p>
</body>
</html>`

func TestHTTPScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(faqPage))
	}))
	defer srv.Close()

	uri, err := url.Parse(srv.URL + "/faq")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := NewHTTPScraper().Scrape(context.Background(), uri)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Metadata.Title != "Example University FAQ" {
		t.Errorf("unexpected title: %q", doc.Metadata.Title)
	}

	if doc.Metadata.Source != uri.String() {
		t.Errorf("unexpected source: %q", doc.Metadata.Source)
	}

	if !strings.Contains(doc.Content, "How do I apply?") {
		t.Errorf("markdown is missing the page text: %q", doc.Content)
	}
}

func TestHTTPScraperRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	uri, _ := url.Parse(srv.URL)

	if _, err := NewHTTPScraper().Scrape(context.Background(), uri); err == nil {
		t.Fatal("expected an error for non-HTML content")
	}
}
