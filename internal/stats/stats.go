// Package stats derives dashboard numbers from the stored collections. Nothing
// here is cached; every call reads the stores again.
package stats

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/pricing"
)

type Statistics struct {
	TotalSearches      int     `json:"totalSearches"`
	TotalProductsFound int     `json:"totalProductsFound"`
	AverageSavings     float64 `json:"averageSavings"`
	WishlistItems      int     `json:"wishlistItems"`
	PriceAlertsActive  int     `json:"priceAlertsActive"`
}

type ScanStatistics struct {
	TotalScans           int `json:"totalScans"`
	CompletedScans       int `json:"completedScans"`
	TotalVulnerabilities int `json:"totalVulnerabilities"`
	CriticalCount        int `json:"criticalCount"`
	HighCount            int `json:"highCount"`
	MediumCount          int `json:"mediumCount"`
	LowCount             int `json:"lowCount"`
	InfoCount            int `json:"infoCount"`
}

type HistorySource interface {
	List(ctx context.Context) []models.SearchHistoryItem
}

type ResultSource interface {
	List(ctx context.Context) []models.SearchResult
}

type WishlistSource interface {
	List(ctx context.Context) []models.WishlistItem
}

type AlertSource interface {
	ListActive(ctx context.Context) []models.PriceAlert
}

// Sources are the stores Compute reads. A nil source counts as empty.
type Sources struct {
	History  HistorySource
	Results  ResultSource
	Wishlist WishlistSource
	Alerts   AlertSource
}

func Compute(ctx context.Context, src Sources) Statistics {
	var s Statistics

	if src.History != nil {
		history := src.History.List(ctx)
		s.TotalSearches = len(history)
		for _, h := range history {
			s.TotalProductsFound += h.ResultCount
		}
	}
	if src.Results != nil {
		s.AverageSavings = AverageSavings(src.Results.List(ctx))
	}
	if src.Wishlist != nil {
		s.WishlistItems = len(src.Wishlist.List(ctx))
	}
	if src.Alerts != nil {
		s.PriceAlertsActive = len(src.Alerts.ListActive(ctx))
	}

	return s
}

// AverageSavings is the mean in-stock price spread over all results, rounded to
// cents. Results with fewer than two in-stock quotes count as zero.
func AverageSavings(results []models.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(decimal.NewFromFloat(pricing.Savings(r.Prices)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(results)))).Round(2).InexactFloat64()
}

func ComputeScans(scans []models.ScanResult) ScanStatistics {
	s := ScanStatistics{TotalScans: len(scans)}

	for _, scan := range scans {
		if scan.Status == models.ScanCompleted {
			s.CompletedScans++
		}
		for _, v := range scan.Vulnerabilities {
			s.TotalVulnerabilities++
			switch v.Severity {
			case models.SeverityCritical:
				s.CriticalCount++
			case models.SeverityHigh:
				s.HighCount++
			case models.SeverityMedium:
				s.MediumCount++
			case models.SeverityLow:
				s.LowCount++
			case models.SeverityInfo:
				s.InfoCount++
			}
		}
	}

	return s
}
