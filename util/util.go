package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const KiB = 1024
const MiB = KiB * 1024
const GiB = MiB * 1024

func FormatBytes(bytes int64) string {
	if bytes < KiB {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < MiB {
		return fmt.Sprintf("%.1fKiB", float64(bytes)/KiB)
	} else if bytes < GiB {
		return fmt.Sprintf("%.1fMiB", float64(bytes)/MiB)
	} else {
		return fmt.Sprintf("%.1fGiB", float64(bytes)/GiB)
	}
}

// DownloadContent downloads the content from a URL and returns it, with the content type.
// The content type is determined by the Content-Type header of the response.
func DownloadContent(url *url.URL) (body []byte, ct string, err error) {
	resp, err := http.Get(url.String())
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to download file")
	}

	defer resp.Body.Close()

	ct, _, err = mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to parse content type")
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read file")
	}

	return
}

// urlColumns are the accepted header names for the URL column of an
// input CSV, in order of preference.
var urlColumns = []string{"Links", "URL"}

// ReadURLColumn reads URLs from a CSV file with a "Links" or "URL"
// column. Empty cells are skipped.
func ReadURLColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	return ParseURLColumn(f)
}

// ParseURLColumn is ReadURLColumn for an already-open reader.
func ParseURLColumn(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	// Tolerate ragged rows; short ones are skipped below.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}

	if len(rows) == 0 {
		return nil, errors.New("CSV file is empty")
	}

	col := -1
	for _, name := range urlColumns {
		for i, header := range rows[0] {
			// Tolerate a BOM on the first header cell.
			if strings.TrimPrefix(header, "\uFEFF") == name {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}

	if col < 0 {
		return nil, errors.Errorf("CSV file must contain a column named %q or %q", urlColumns[0], urlColumns[1])
	}

	urls := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if u := strings.TrimSpace(row[col]); u != "" {
			urls = append(urls, u)
		}
	}

	return urls, nil
}
