package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mempirate/faqex/document"
	"github.com/mempirate/faqex/llm"
	"github.com/mempirate/faqex/pipeline"
	"github.com/mempirate/faqex/scrape"
	"github.com/mempirate/faqex/store"
)

type stubScraper struct{}

func (stubScraper) Scrape(_ context.Context, uri *url.URL) (*document.Document, error) {
	if uri.Host == "down.example" {
		return nil, errors.New("connection refused")
	}
	return &document.Document{Content: "# FAQ\n"}, nil
}

type stubClient struct{}

func (stubClient) Complete(context.Context, string) (string, error) {
	return `{"question": "How do I apply?", "answer": "Use the portal."}`, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	factory := func(context.Context, string, string) (*pipeline.Pipeline, error) {
		var sc scrape.Scraper = stubScraper{}
		var cl llm.Client = stubClient{}
		return pipeline.New(sc, cl, nil), nil
	}

	return NewServer(factory, store.NewFileStore(t.TempDir()), nil, nil)
}

func postExtract(t *testing.T, ts *httptest.Server, urls string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("urls", urls)
	mw.WriteField("max", "0")
	mw.Close()

	resp, err := http.Post(ts.URL+"/extract", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func waitForIdle(t *testing.T, ts *httptest.Server) Status {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/status")
		if err != nil {
			t.Fatal(err)
		}

		var st Status
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if !st.Running {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("batch did not finish in time")
	return Status{}
}

func TestExtractAndExport(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp := postExtract(t, ts, "https://example.edu/faq\nhttps://down.example/faq\n")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	st := waitForIdle(t, ts)
	if st.Records != 1 {
		t.Errorf("expected 1 record, got %d", st.Records)
	}
	if len(st.Missed) != 1 || st.Missed[0] != "https://down.example/faq" {
		t.Errorf("unexpected missed list: %v", st.Missed)
	}

	resp, err := http.Get(ts.URL + "/export/csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)

	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("CSV export is missing the BOM")
	}
	if !strings.Contains(buf.String(), "How do I apply?") {
		t.Errorf("CSV export is missing the record: %q", buf.String())
	}
}

func TestExtractRequiresURLs(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp := postExtract(t, ts, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status: %d", resp.StatusCode)
	}
}

func TestUploadWithoutBucket(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/upload", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("unexpected status: %d", resp.StatusCode)
	}
}

func TestIndexRenders(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "FAQ Extractor") {
		t.Error("index page is missing the title")
	}
}
