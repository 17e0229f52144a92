package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNewBWLimiter_BurstCappedAtOneMiB(t *testing.T) {
	l := newBWLimiter(100<<20, 32<<10)
	assert.Equal(t, rate.Limit(100<<20), l.Limit())
	assert.Equal(t, 1<<20, l.Burst())
}

func TestNewBWLimiter_SmallRateShrinksBurst(t *testing.T) {
	l := newBWLimiter(64<<10, 32<<10)
	assert.Equal(t, 64<<10, l.Burst())
}

func TestNewBWLimiter_BurstNeverBelowChunk(t *testing.T) {
	// A limit below the chunk size must not make WaitN(chunk) impossible.
	l := newBWLimiter(4<<10, 32<<10)
	assert.Equal(t, 32<<10, l.Burst())
}
