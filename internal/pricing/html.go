package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/models"
)

var ErrNoQuotes = errors.New("no retailer returned a price")

var priceSelectors = []string{
	"meta[property='product:price:amount']",
	"[itemprop=price]",
	"[data-price]",
	"span.a-price.a-text-price.a-size-medium.apexPriceToPay",
	".a-price-whole",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
	".product-price",
	".price",
}

var priceRe = regexp.MustCompile(`(\d+(?:[.,]\d{3})*(?:[.,]\d{1,2})?)`)

type HTMLSourceConfig struct {
	// URLTemplates maps a retailer id to its product page URL. {id} and {slug}
	// are replaced with the product id and the lowercased, dashed product name.
	URLTemplates      map[string]string
	RequestsPerSecond float64
	Concurrency       int
	Timeout           time.Duration
	UserAgent         string
}

// HTMLSource fetches retailer product pages and reads the price from the markup.
type HTMLSource struct {
	catalog     *catalog.Catalog
	client      *http.Client
	limiter     *rate.Limiter
	templates   map[string]string
	concurrency int
	userAgent   string
	logger      *slog.Logger
}

func NewHTMLSource(c *catalog.Catalog, cfg HTMLSourceConfig, logger *slog.Logger) *HTMLSource {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "shoplens/1.0"
	}

	return &HTMLSource{
		catalog:     c,
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		templates:   cfg.URLTemplates,
		concurrency: cfg.Concurrency,
		userAgent:   cfg.UserAgent,
		logger:      logger.With("component", "html_quotes"),
	}
}

// Quotes fetches every configured retailer that stocks the product. Retailers that
// fail are logged and skipped; an error is returned only when none succeed.
func (h *HTMLSource) Quotes(ctx context.Context, product models.Product) ([]models.PriceInfo, error) {
	var (
		mu     sync.Mutex
		quotes []models.PriceInfo
		failed int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for _, store := range h.catalog.RetailersFor(product) {
		tmpl, ok := h.templates[store.ID]
		if !ok {
			continue
		}
		store := store
		url := expandTemplate(tmpl, product)

		g.Go(func() error {
			q, err := h.fetchQuote(gCtx, store, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				failed++
				h.logger.Warn("failed to fetch quote", "store", store.ID, "url", url, "error", err)
				return nil
			}
			quotes = append(quotes, q)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(quotes) == 0 && failed > 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoQuotes, product.ID)
	}

	if quotes == nil {
		quotes = []models.PriceInfo{}
	}
	SortByTotal(quotes)
	return quotes, nil
}

func (h *HTMLSource) fetchQuote(ctx context.Context, store models.Retailer, url string) (models.PriceInfo, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return models.PriceInfo{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.PriceInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := h.client.Do(req)
	if err != nil {
		return models.PriceInfo{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return models.PriceInfo{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.PriceInfo{}, fmt.Errorf("failed to parse page: %w", err)
	}

	price, err := extractPrice(doc)
	if err != nil {
		return models.PriceInfo{}, err
	}

	q := models.PriceInfo{
		StoreID:      store.ID,
		StoreName:    store.Name,
		Price:        price,
		Currency:     extractCurrency(doc),
		Availability: extractAvailability(doc),
		ShippingCost: extractShipping(doc),
		ShippingTime: store.ShippingInfo,
		URL:          url,
		LastUpdated:  time.Now(),
	}
	if original, ok := extractOriginalPrice(doc); ok && original > price {
		discount := int((original - price) / original * 100)
		q.OriginalPrice = &original
		q.Discount = &discount
	}
	return q, nil
}

// ExtractPrice reads the first price found in an HTML page.
func ExtractPrice(html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}
	return extractPrice(doc)
}

func extractPrice(doc *goquery.Document) (float64, error) {
	for _, selector := range priceSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		for _, attr := range []string{"content", "data-price"} {
			if v, ok := sel.Attr(attr); ok {
				if price := parsePrice(v); price > 0 {
					return price, nil
				}
			}
		}

		if price := parsePrice(strings.TrimSpace(sel.Text())); price > 0 {
			return price, nil
		}
	}

	return 0, fmt.Errorf("price not found")
}

func extractOriginalPrice(doc *goquery.Document) (float64, bool) {
	text := strings.TrimSpace(doc.Find(".original-price, .was-price, .a-text-price .a-offscreen, s.price").First().Text())
	price := parsePrice(text)
	return price, price > 0
}

func extractCurrency(doc *goquery.Document) string {
	for _, selector := range []string{"meta[property='product:price:currency']", "[itemprop=priceCurrency]"} {
		if v, ok := doc.Find(selector).First().Attr("content"); ok && v != "" {
			return strings.ToUpper(v)
		}
	}
	return "USD"
}

func extractAvailability(doc *goquery.Document) models.Availability {
	sel := doc.Find("[itemprop=availability], link[itemprop=availability], meta[itemprop=availability]").First()
	schema := sel.AttrOr("href", sel.AttrOr("content", ""))
	switch {
	case strings.HasSuffix(schema, "OutOfStock"), strings.HasSuffix(schema, "SoldOut"):
		return models.OutOfStock
	case strings.HasSuffix(schema, "PreOrder"):
		return models.PreOrder
	case strings.HasSuffix(schema, "LimitedAvailability"):
		return models.LimitedStock
	case strings.HasSuffix(schema, "InStock"):
		return models.InStock
	}

	text := strings.ToLower(doc.Find("#availability, .availability, .stock-status").First().Text())
	switch {
	case strings.Contains(text, "out of stock"), strings.Contains(text, "unavailable"):
		return models.OutOfStock
	case strings.Contains(text, "pre-order"), strings.Contains(text, "preorder"):
		return models.PreOrder
	case strings.Contains(text, "only") && strings.Contains(text, "left"):
		return models.LimitedStock
	}
	return models.InStock
}

func extractShipping(doc *goquery.Document) float64 {
	sel := doc.Find("[data-shipping-cost], .shipping-cost").First()
	if v, ok := sel.Attr("data-shipping-cost"); ok {
		return parsePrice(v)
	}
	text := strings.ToLower(strings.TrimSpace(sel.Text()))
	if text == "" || strings.Contains(text, "free") {
		return 0
	}
	return parsePrice(text)
}

// parsePrice understands both 1,299.99 and 1.299,99.
func parsePrice(s string) float64 {
	m := priceRe.FindString(s)
	if m == "" {
		return 0
	}

	lastDot := strings.LastIndex(m, ".")
	lastComma := strings.LastIndex(m, ",")
	switch {
	case lastComma > lastDot && len(m)-lastComma <= 3:
		m = strings.ReplaceAll(m, ".", "")
		m = strings.Replace(m, ",", ".", 1)
	default:
		m = strings.ReplaceAll(m, ",", "")
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return round2(v)
}

func expandTemplate(tmpl string, p models.Product) string {
	slug := strings.ToLower(strings.Join(strings.Fields(p.Name), "-"))
	return strings.NewReplacer("{id}", p.ID, "{slug}", slug).Replace(tmpl)
}
