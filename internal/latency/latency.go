// Package latency simulates the response time of remote capabilities.
package latency

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Jitter delays each call by a random duration in [min, max].
type Jitter struct {
	minDelay time.Duration
	maxDelay time.Duration
	mu       sync.Mutex
	rng      *rand.Rand
}

func New(minDelay, maxDelay time.Duration) *Jitter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Jitter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// None returns a Jitter that completes immediately.
func None() *Jitter {
	return New(0, 0)
}

// Wait blocks for one jittered delay or until ctx is done.
func (j *Jitter) Wait(ctx context.Context) error {
	if j == nil {
		return ctx.Err()
	}

	delay := j.calculateDelay()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (j *Jitter) calculateDelay() time.Duration {
	if j.minDelay == j.maxDelay {
		return j.minDelay
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	delta := j.maxDelay - j.minDelay
	return j.minDelay + time.Duration(j.rng.Int63n(int64(delta)))
}
