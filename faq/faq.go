package faq

import (
	"encoding/json"
	"sync"
)

// NotAvailable is the sentinel value for fields the model did not return.
const NotAvailable = "Not available"

// Link is a hyperlink embedded in an answer.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Links is the links field of a record. Models return it in several
// shapes (array of objects, single object, bare string, null), all of
// which unmarshal into a flat list.
type Links []Link

func (l *Links) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = appendLinks(nil, raw)
	return nil
}

func appendLinks(links Links, raw any) Links {
	switch v := raw.(type) {
	case nil:
		return links
	case string:
		if v == "" || v == NotAvailable {
			return links
		}
		return append(links, Link{URL: v})
	case []any:
		for _, item := range v {
			links = appendLinks(links, item)
		}
		return links
	case map[string]any:
		link := Link{}
		if text, ok := v["text"].(string); ok {
			link.Text = text
		}
		if url, ok := v["url"].(string); ok {
			link.URL = url
		}
		if link.Text == "" && link.URL == "" {
			return links
		}
		return append(links, link)
	default:
		return links
	}
}

// String renders the links for CSV cells: the sentinel when empty,
// compact JSON otherwise.
func (l Links) String() string {
	if len(l) == 0 {
		return NotAvailable
	}

	out, err := json.Marshal(l)
	if err != nil {
		return NotAvailable
	}

	return string(out)
}

// Record is one extracted FAQ entry plus the URL it came from.
type Record struct {
	Organisation string `json:"organisation_name"`
	Category     string `json:"category"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Links        Links  `json:"links"`
	URL          string `json:"URL"`
}

// Table accumulates records in insertion order. It is safe to append
// from the pipeline while the web UI reads snapshots.
type Table struct {
	mu      sync.RWMutex
	records []Record
	byURL   map[string][]int
}

func NewTable() *Table {
	return &Table{
		byURL: make(map[string][]int),
	}
}

// Append adds a record to the end of the table.
func (t *Table) Append(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byURL[rec.URL] = append(t.byURL[rec.URL], len(t.records))
	t.records = append(t.records, rec)
}

// Contains reports whether any record came from the given URL.
func (t *Table) Contains(url string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.byURL[url]) > 0
}

// Lookup returns the records extracted from the given URL, in
// insertion order.
func (t *Table) Lookup(url string) []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	indices := t.byURL[url]
	records := make([]Record, 0, len(indices))
	for _, i := range indices {
		records = append(records, t.records[i])
	}

	return records
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.records)
}

// Records returns a snapshot of the table.
func (t *Table) Records() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// URLs returns the distinct source URLs in first-seen order.
func (t *Table) URLs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]struct{}, len(t.byURL))
	urls := make([]string, 0, len(t.byURL))
	for _, rec := range t.records {
		if _, ok := seen[rec.URL]; ok {
			continue
		}
		seen[rec.URL] = struct{}{}
		urls = append(urls, rec.URL)
	}

	return urls
}
