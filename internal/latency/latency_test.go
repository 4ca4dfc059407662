package latency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait_None(t *testing.T) {
	start := time.Now()
	assert.NoError(t, None().Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_WithinRange(t *testing.T) {
	j := New(10*time.Millisecond, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		d := j.calculateDelay()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}

	start := time.Now()
	assert.NoError(t, j.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestWait_ContextCancelled(t *testing.T) {
	j := New(time.Second, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := j.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWait_NilJitter(t *testing.T) {
	var j *Jitter
	assert.NoError(t, j.Wait(context.Background()))
}

func TestNew_ClampsInvertedRange(t *testing.T) {
	j := New(30*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, j.calculateDelay())
}
