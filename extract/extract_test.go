package extract

import (
	"testing"

	"github.com/mempirate/faqex/faq"
)

const sourceURL = "https://example.edu/faq"

func TestRecordsFromFencedResponse(t *testing.T) {
	response := "Here are the FAQs I found:\n```json\n" +
		`{
  "organisation_name": "Example University",
  "category": "Financial Aid",
  "question": "What financial aid is available?",
  "answer": "Watch our financial aid overview video.",
  "links": [
    {"text": "Overview Video", "url": "https://example.edu/aid"}
  ]
}` + "\n```\nLet me know if you need more."

	records := New().Records(response, sourceURL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Organisation != "Example University" {
		t.Errorf("unexpected organisation: %q", rec.Organisation)
	}
	if rec.Question != "What financial aid is available?" {
		t.Errorf("unexpected question: %q", rec.Question)
	}
	if len(rec.Links) != 1 || rec.Links[0].URL != "https://example.edu/aid" {
		t.Errorf("unexpected links: %v", rec.Links)
	}
	if rec.URL != sourceURL {
		t.Errorf("unexpected URL: %q", rec.URL)
	}
}

func TestRecordsFillsAbsentFields(t *testing.T) {
	records := New().Records(`{"question": "Where is the library?"}`, sourceURL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Organisation != faq.NotAvailable {
		t.Errorf("unexpected organisation: %q", rec.Organisation)
	}
	if rec.Category != faq.NotAvailable {
		t.Errorf("unexpected category: %q", rec.Category)
	}
	if rec.Answer != faq.NotAvailable {
		t.Errorf("unexpected answer: %q", rec.Answer)
	}
	if rec.Question != "Where is the library?" {
		t.Errorf("unexpected question: %q", rec.Question)
	}
}

func TestRecordsKeepsPresentEmptyFields(t *testing.T) {
	records := New().Records(`{"question": "", "answer": "See above."}`, sourceURL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if records[0].Question != "" {
		t.Errorf("empty question should stay empty, got %q", records[0].Question)
	}
}

func TestRecordsKeepsNonStringFields(t *testing.T) {
	response := `{"organisation_name": "Example University", "category": 3, "question": true, "answer": null}`

	records := New().Records(response, sourceURL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Organisation != "Example University" {
		t.Errorf("unexpected organisation: %q", rec.Organisation)
	}
	if rec.Category != "3" {
		t.Errorf("numeric category should keep its text, got %q", rec.Category)
	}
	if rec.Question != "true" {
		t.Errorf("boolean question should keep its text, got %q", rec.Question)
	}
	if rec.Answer != faq.NotAvailable {
		t.Errorf("null answer should get the default, got %q", rec.Answer)
	}
}

func TestRecordsSkipsInvalidCandidates(t *testing.T) {
	response := `{"question": "Valid?"} {not json at all} {"question": "Also valid?"}`

	records := New().Records(response, sourceURL)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].Question != "Valid?" || records[1].Question != "Also valid?" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestRecordsPreservesMatchOrder(t *testing.T) {
	response := `{"question": "First?"}
some prose in between
{"question": "Second?"}
{"question": "Third?"}`

	records := New().Records(response, sourceURL)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	for i, want := range []string{"First?", "Second?", "Third?"} {
		if records[i].Question != want {
			t.Errorf("record %d: got %q, want %q", i, records[i].Question, want)
		}
	}
}

func TestRecordsNoObjects(t *testing.T) {
	if records := New().Records("I could not find any FAQs on this page.", sourceURL); records != nil {
		t.Errorf("expected nil, got %v", records)
	}
}

func TestRecordsNestedLinksConsumedByOuterMatch(t *testing.T) {
	// The inner link objects must not become records of their own.
	response := `{
  "question": "How do I apply?",
  "answer": "Use the portal.",
  "links": [
    {"text": "Portal", "url": "https://example.edu/apply"},
    {"text": "Deadlines", "url": "https://example.edu/deadlines"}
  ]
}`

	records := New().Records(response, sourceURL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if len(records[0].Links) != 2 {
		t.Errorf("expected 2 links, got %v", records[0].Links)
	}
}

func TestRecordsLinksVariants(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected faq.Links
	}{
		{
			name:     "string link",
			response: `{"question": "Q?", "links": "https://example.edu"}`,
			expected: faq.Links{{URL: "https://example.edu"}},
		},
		{
			name:     "sentinel string",
			response: `{"question": "Q?", "links": "Not available"}`,
			expected: nil,
		},
		{
			name:     "null",
			response: `{"question": "Q?", "links": null}`,
			expected: nil,
		},
		{
			name:     "single object",
			response: `{"question": "Q?", "links": {"text": "Help", "url": "https://example.edu/help"}}`,
			expected: faq.Links{{Text: "Help", URL: "https://example.edu/help"}},
		},
		{
			name:     "mixed array",
			response: `{"question": "Q?", "links": ["https://example.edu", {"text": "Help", "url": "https://example.edu/help"}]}`,
			expected: faq.Links{{URL: "https://example.edu"}, {Text: "Help", URL: "https://example.edu/help"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			records := New().Records(test.response, sourceURL)
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}

			got := records[0].Links
			if len(got) != len(test.expected) {
				t.Fatalf("unexpected links: %v", got)
			}
			for i := range got {
				if got[i] != test.expected[i] {
					t.Errorf("link %d: got %+v, want %+v", i, got[i], test.expected[i])
				}
			}
		})
	}
}
