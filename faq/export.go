package faq

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// utf8BOM makes the CSV open cleanly in Excel, like the original
// exports did.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the CSV column order.
var Header = []string{"organisation_name", "category", "question", "answer", "links", "URL"}

// WriteCSV writes the table as UTF-8 CSV with a BOM prefix.
func (t *Table) WriteCSV(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return errors.Wrap(err, "failed to write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	for _, rec := range t.Records() {
		row := []string{
			rec.Organisation,
			rec.Category,
			rec.Question,
			rec.Answer,
			rec.Links.String(),
			rec.URL,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}

// WriteJSON writes the table as an indented JSON array.
func (t *Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(t.Records()), "failed to encode JSON")
}
