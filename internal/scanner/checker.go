// Package scanner runs simulated vulnerability scans against a site and keeps
// their progress in the scan store.
package scanner

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/latency"
	"github.com/maltedev/shoplens/internal/models"
)

type Checker interface {
	Check(ctx context.Context, baseURL string, profile models.ScanProfile) ([]models.Vulnerability, error)
}

// DefaultKeepProbability is the chance that a canned finding is reported.
const DefaultKeepProbability = 0.7

// Simulated reports each finding of the profile's checks with probability keep.
type Simulated struct {
	keep  float64
	delay *latency.Jitter

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(keep float64, delay *latency.Jitter, seed int64) *Simulated {
	if keep < 0 || keep > 1 {
		keep = DefaultKeepProbability
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		keep:  keep,
		delay: delay,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulated) Check(ctx context.Context, baseURL string, profile models.ScanProfile) ([]models.Vulnerability, error) {
	if err := s.delay.Wait(ctx); err != nil {
		return nil, err
	}

	base := strings.TrimRight(baseURL, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	found := []models.Vulnerability{}
	for _, check := range profile.Checks {
		for _, v := range findings[check] {
			if s.rng.Float64() >= s.keep {
				continue
			}
			v.ID = v.ID + "-" + uuid.New().String()[:8]
			v.Type = check
			v.URL = base + v.URL
			found = append(found, v)
		}
	}
	return found, nil
}
