// Package extract pulls structured FAQ records out of an LLM's
// free-form text response.
package extract

import (
	"encoding/json"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/mempirate/faqex/faq"
	"github.com/mempirate/faqex/log"
)

// jsonObjectPattern matches balanced {...} groups up to three nesting
// levels deep. That covers a FAQ object with a links array of link
// objects inside. RE2 has no recursion, so deeper nesting is cut off.
const jsonObjectPattern = `\{(?:[^{}]|(?:\{(?:[^{}]|(?:\{[^{}]*\}))*\}))*\}`

// rawRecord delays field decoding so a non-string value (a bare
// number, say) keeps its record instead of failing the whole parse,
// and so absent fields (nil) are distinguishable from empty ones.
type rawRecord struct {
	Organisation json.RawMessage `json:"organisation_name"`
	Category     json.RawMessage `json:"category"`
	Question     json.RawMessage `json:"question"`
	Answer       json.RawMessage `json:"answer"`
	Links        *faq.Links      `json:"links"`
}

// Extractor parses model responses into FAQ records.
type Extractor struct {
	log     zerolog.Logger
	pattern *regexp.Regexp
}

func New() *Extractor {
	return &Extractor{
		log:     log.NewLogger("extract"),
		pattern: regexp.MustCompile(jsonObjectPattern),
	}
}

// Records isolates candidate JSON objects in the response, parses each
// one independently, and returns a record per successful parse, in
// match order. Parse failures are skipped. Absent fields are filled
// with the sentinel and every record carries the source URL.
func (e *Extractor) Records(response, url string) []faq.Record {
	matches := e.pattern.FindAllString(response, -1)
	if len(matches) == 0 {
		e.log.Warn().Str("url", url).Msg("No JSON objects found in model response")
		return nil
	}

	records := make([]faq.Record, 0, len(matches))
	for _, match := range matches {
		var raw rawRecord
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			e.log.Warn().Err(err).Str("url", url).Msg("Skipping invalid JSON candidate")
			continue
		}

		records = append(records, raw.toRecord(url))
	}

	e.log.Debug().Int("candidates", len(matches)).Int("records", len(records)).Str("url", url).Msg("Extracted records from response")

	return records
}

func (r rawRecord) toRecord(url string) faq.Record {
	rec := faq.Record{
		Organisation: orDefault(r.Organisation),
		Category:     orDefault(r.Category),
		Question:     orDefault(r.Question),
		Answer:       orDefault(r.Answer),
		URL:          url,
	}

	if r.Links != nil {
		rec.Links = *r.Links
	}

	return rec
}

// orDefault renders a field for the table. Absent and null fields get
// the sentinel; non-string values keep their JSON text.
func orDefault(raw json.RawMessage) string {
	if raw == nil || string(raw) == "null" {
		return faq.NotAvailable
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}
