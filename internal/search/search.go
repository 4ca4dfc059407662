// Package search runs an image search end to end and records it.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/pricing"
	"github.com/maltedev/shoplens/internal/recognition"
)

const (
	MaxImageSize = 10 << 20
	SimilarCount = 6
	HistoryDays  = 30
)

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image exceeds 10MB")
	ErrEmptyImage    = errors.New("image is empty")
	ErrNoMatch       = errors.New("no matching product found")
)

// historian is implemented by quote sources that simulate their own price history.
type historian interface {
	History(quotes []models.PriceInfo) []models.PricePoint
}

type Service struct {
	recognizer recognition.Recognizer
	quotes     pricing.QuoteSource
	history    *persist.HistoryStore
	results    *persist.ResultStore
	logger     *slog.Logger
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(recognizer recognition.Recognizer, quotes pricing.QuoteSource,
	history *persist.HistoryStore, results *persist.ResultStore, logger *slog.Logger) *Service {
	return &Service{
		recognizer: recognizer,
		quotes:     quotes,
		history:    history,
		results:    results,
		logger:     logger.With("component", "search_service"),
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Validate rejects uploads that are empty, too large or not images. A declared
// content type is checked first unless it is the generic octet-stream, then the
// sniffed one.
func Validate(img recognition.Image) error {
	if len(img.Data) == 0 {
		return ErrEmptyImage
	}
	if len(img.Data) > MaxImageSize {
		return ErrImageTooLarge
	}

	declared := img.ContentType
	if declared != "" && declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, declared)
	}
	if sniffed := http.DetectContentType(img.Data); !strings.HasPrefix(sniffed, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, sniffed)
	}
	return nil
}

// Search recognizes the product in img, quotes it and stores both the result and
// a history entry. Nothing is stored when validation or recognition fails.
func (s *Service) Search(ctx context.Context, img recognition.Image) (*models.SearchResult, error) {
	if err := Validate(img); err != nil {
		return nil, err
	}

	matches, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize image: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoMatch
	}
	top := matches[0]

	quotes, err := s.quotes.Quotes(ctx, top.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	pricing.SortByTotal(quotes)

	similar := s.recognizer.SimilarProducts(top.Product, SimilarCount)

	result := models.SearchResult{
		ID:              uuid.New().String(),
		Product:         top.Product.Snapshot(),
		Prices:          quotes,
		SimilarProducts: similar,
		PriceHistory:    s.priceHistory(quotes),
		Confidence:      top.Confidence,
		ImageURL:        img.URL,
		Timestamp:       s.now(),
	}

	saved, err := s.results.Save(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to save search result: %w", err)
	}

	err = s.history.Append(ctx, models.SearchHistoryItem{
		Timestamp:   saved.Timestamp,
		ImageURL:    img.URL,
		ProductName: top.Product.Name,
		ResultID:    saved.ID,
		ResultCount: len(matches) + len(similar),
		TopMatch:    &top.Product,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record search history: %w", err)
	}

	s.logger.Info("search completed",
		"result_id", saved.ID,
		"product_id", top.Product.ID,
		"confidence", top.Confidence,
		"quotes", len(quotes),
	)
	return &saved, nil
}

func (s *Service) priceHistory(quotes []models.PriceInfo) []models.PricePoint {
	if h, ok := s.quotes.(historian); ok {
		return h.History(quotes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.History(s.rng, quotes, HistoryDays, s.now())
}
