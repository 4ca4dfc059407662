// Package export writes scans and search results as downloadable JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maltedev/shoplens/internal/models"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var scanHeaders = []string{"Type", "Severity", "Title", "URL", "CWE", "CVSS"}

var resultHeaders = []string{"Store", "Price", "Original Price", "Discount", "Currency", "Availability", "Shipping", "Total", "URL"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Filename is the suggested download name, e.g. scan-<id>.csv.
func Filename(kind, id string, f Format) string {
	return fmt.Sprintf("%s-%s.%s", kind, id, f)
}

func Scan(w io.Writer, scan models.ScanResult, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, scan)
	case FormatCSV:
		rows := make([][]string, 0, len(scan.Vulnerabilities))
		for _, v := range scan.Vulnerabilities {
			cvss := ""
			if v.CVSS != 0 {
				cvss = strconv.FormatFloat(v.CVSS, 'f', -1, 64)
			}
			rows = append(rows, []string{v.Type, string(v.Severity), v.Title, v.URL, v.CWE, cvss})
		}
		return writeCSV(w, scanHeaders, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Result exports a search result. The CSV form lists one row per quote.
func Result(w io.Writer, result models.SearchResult, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		rows := make([][]string, 0, len(result.Prices))
		for _, q := range result.Prices {
			original, discount := "", ""
			if q.OriginalPrice != nil {
				original = money(*q.OriginalPrice)
			}
			if q.Discount != nil {
				discount = strconv.Itoa(*q.Discount) + "%"
			}
			rows = append(rows, []string{
				q.StoreName,
				money(q.Price),
				original,
				discount,
				q.Currency,
				string(q.Availability),
				money(q.ShippingCost),
				money(q.Total()),
				q.URL,
			})
		}
		return writeCSV(w, resultHeaders, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
