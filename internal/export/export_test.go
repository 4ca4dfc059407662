package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shoplens/internal/models"
)

func testScan() models.ScanResult {
	return models.ScanResult{
		ID:     "scan-1",
		URL:    "https://shop.example.com",
		Status: models.ScanCompleted,
		Vulnerabilities: []models.Vulnerability{
			{Type: "XSS", Severity: models.SeverityHigh, Title: "Reflected XSS, search box", URL: "https://shop.example.com/search?q=", CWE: "CWE-79", CVSS: 7.1},
			{Type: "Security Headers", Severity: models.SeverityInfo, Title: "Missing HSTS", URL: "https://shop.example.com/"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: " CSV ", want: FormatCSV},
		{in: "", want: FormatJSON},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScan_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scan(&buf, testScan(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Type", "Severity", "Title", "URL", "CWE", "CVSS"}, records[0])
	assert.Equal(t, []string{"XSS", "high", "Reflected XSS, search box", "https://shop.example.com/search?q=", "CWE-79", "7.1"}, records[1])
	assert.Equal(t, "", records[2][4])
	assert.Equal(t, "", records[2][5])
}

func TestScan_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scan(&buf, testScan(), FormatJSON))

	assert.Contains(t, buf.String(), "\n  \"id\": \"scan-1\"")

	var decoded models.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Vulnerabilities, 2)
}

func TestResult_CSV(t *testing.T) {
	original := 120.0
	discount := 17
	result := models.SearchResult{
		ID: "res-1",
		Prices: []models.PriceInfo{
			{StoreName: "Amazon", Price: 99.5, OriginalPrice: &original, Discount: &discount, Currency: "USD", Availability: models.InStock, ShippingCost: 4.99, URL: "https://amazon.com/product/x"},
			{StoreName: "Target", Price: 101, Currency: "USD", Availability: models.OutOfStock},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Result(&buf, result, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Amazon", "99.50", "120.00", "17%", "USD", "In Stock", "4.99", "104.49", "https://amazon.com/product/x"}, records[1])
	assert.Equal(t, "", records[2][2])
}

func TestUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Scan(&buf, testScan(), Format("pdf")), ErrUnsupportedFormat)
	assert.ErrorIs(t, Result(&buf, models.SearchResult{}, Format("xml")), ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "scan-abc.csv", Filename("scan", "abc", FormatCSV))
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}
