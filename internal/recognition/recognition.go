// Package recognition turns an uploaded image into ranked catalog matches.
package recognition

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/latency"
	"github.com/maltedev/shoplens/internal/models"
)

// Image is an uploaded picture. URL is optional and only echoed back in results.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	URL         string
}

type Recognizer interface {
	Recognize(ctx context.Context, img Image) ([]models.ProductMatch, error)
	SimilarProducts(product models.Product, n int) []models.Product
}

var categoryWeights = []struct {
	category models.Category
	weight   int
}{
	{models.CategoryFashion, 25},
	{models.CategoryElectronics, 20},
	{models.CategoryHome, 15},
	{models.CategoryBeauty, 10},
	{models.CategorySports, 10},
	{models.CategoryAccessories, 10},
	{models.CategoryFurniture, 5},
	{models.CategoryToys, 3},
	{models.CategoryBooks, 2},
}

// Simulated picks a category by weight and returns 3-5 products from it with
// decreasing confidence.
type Simulated struct {
	catalog *catalog.Catalog
	delay   *latency.Jitter

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(c *catalog.Catalog, delay *latency.Jitter, seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		catalog: c,
		delay:   delay,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulated) Recognize(ctx context.Context, img Image) ([]models.ProductMatch, error) {
	if err := s.delay.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.catalog.ByCategory(s.detectCategory())
	if len(candidates) == 0 {
		candidates = s.catalog.Random(s.rng, 10)
	}
	if len(candidates) == 0 {
		return []models.ProductMatch{}, nil
	}

	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	count := 3 + s.rng.Intn(3)
	if count > len(candidates) {
		count = len(candidates)
	}

	matches := make([]models.ProductMatch, 0, count)
	for i, p := range candidates[:count] {
		base := 95 - float64(i)*15
		confidence := math.Max(50, base-s.rng.Float64()*10)
		similarity := math.Max(60, confidence-5+s.rng.Float64()*10)

		matches = append(matches, models.ProductMatch{
			Product:          p,
			Confidence:       round1(confidence),
			VisualSimilarity: round1(similarity),
			MatchReason:      s.matchReason(p, confidence),
		})
	}

	sortByConfidence(matches)
	return matches, nil
}

// SimilarProducts prefers products of the same category within 30% of p's base
// price, then fills up with the rest of the category.
func (s *Simulated) SimilarProducts(p models.Product, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var near, rest []models.Product
	lo, hi := p.BasePrice*0.7, p.BasePrice*1.3
	for _, other := range s.catalog.ByCategory(p.Category) {
		if other.ID == p.ID {
			continue
		}
		if other.BasePrice >= lo && other.BasePrice <= hi {
			near = append(near, other)
		} else {
			rest = append(rest, other)
		}
	}

	s.shuffle(near)
	if len(near) >= n {
		return near[:n]
	}

	s.shuffle(rest)
	out := append([]models.Product{}, near...)
	for _, other := range rest {
		if len(out) == n {
			break
		}
		out = append(out, other)
	}
	return out
}

func (s *Simulated) detectCategory() models.Category {
	total := 0
	for _, cw := range categoryWeights {
		total += cw.weight
	}

	r := s.rng.Intn(total)
	for _, cw := range categoryWeights {
		if r < cw.weight {
			return cw.category
		}
		r -= cw.weight
	}
	return models.CategoryFashion
}

func (s *Simulated) matchReason(p models.Product, confidence float64) string {
	var reasons []string
	switch {
	case confidence > 85:
		reasons = append(reasons, "Exact visual match", p.Brand+" logo detected")
	case confidence > 70:
		reasons = append(reasons, "Strong visual similarity", "Matching design elements")
	default:
		reasons = append(reasons, "Similar style and appearance", "Comparable features")
	}

	if color := p.Attributes["color"]; color != "" {
		reasons = append(reasons, "Color: "+color)
	}

	switch p.Category {
	case models.CategoryFashion:
		reasons = append(reasons, "Pattern and texture match")
	case models.CategoryElectronics:
		reasons = append(reasons, "Device shape recognition")
	case models.CategoryFurniture:
		reasons = append(reasons, "Structural design match")
	}

	s.rng.Shuffle(len(reasons), func(i, j int) { reasons[i], reasons[j] = reasons[j], reasons[i] })
	n := 2 + s.rng.Intn(2)
	if n > len(reasons) {
		n = len(reasons)
	}
	return strings.Join(reasons[:n], ", ")
}

func (s *Simulated) shuffle(ps []models.Product) {
	s.rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
}

func sortByConfidence(matches []models.ProductMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
