package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"atomd/internal/domain"
)

func newTestLimiter(capacity, refill float64) (*Limiter, func(d time.Duration)) {
	l := NewLimiter(Options{Capacity: capacity, RefillPerSecond: refill})
	current := time.Unix(1700000000, 0)
	l.now = func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return l, advance
}

func TestLimiterGrantsUpToCapacity(t *testing.T) {
	l, _ := newTestLimiter(3, 1)

	require.Nil(t, l.TryAcquire("ai_completion", 1))
	require.Nil(t, l.TryAcquire("ai_completion", 1))
	require.Nil(t, l.TryAcquire("ai_completion", 1))

	err := l.TryAcquire("ai_completion", 1)
	require.NotNil(t, err)
	require.Equal(t, domain.CodeRateLimited, err.Code)
	require.Equal(t, "ai_completion", err.Identifier)
}

func TestLimiterRefillsOverTime(t *testing.T) {
	l, advance := newTestLimiter(2, 1)

	require.Nil(t, l.TryAcquire("ai", 2))
	require.NotNil(t, l.TryAcquire("ai", 1))

	advance(1500 * time.Millisecond)
	require.Nil(t, l.TryAcquire("ai", 1))
	require.InDelta(t, 0.5, l.Tokens("ai"), 1e-9)
}

func TestLimiterNeverExceedsCapacity(t *testing.T) {
	l, advance := newTestLimiter(2, 10)

	advance(time.Hour)
	require.InDelta(t, 2, l.Tokens("ai"), 1e-9)

	require.Nil(t, l.TryAcquire("ai", 2))
	require.NotNil(t, l.TryAcquire("ai", 1))
}

func TestLimiterRejectionDoesNotSpendTokens(t *testing.T) {
	l, _ := newTestLimiter(1, 0.001)

	require.Nil(t, l.TryAcquire("ai", 1))
	require.NotNil(t, l.TryAcquire("ai", 1))
	require.NotNil(t, l.TryAcquire("ai", 1))
	// Tokens stay at zero, not negative.
	require.InDelta(t, 0, l.Tokens("ai"), 1e-6)
}

func TestLimiterBucketsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 0.001)

	require.Nil(t, l.TryAcquire("ai_completion", 1))
	require.NotNil(t, l.TryAcquire("ai_completion", 1))

	// A saturated AI limiter must not block other tool classes.
	require.Nil(t, l.TryAcquire("http_request", 1))
}

func TestLimiterDefaultCost(t *testing.T) {
	l, _ := newTestLimiter(1, 0.001)

	require.Nil(t, l.TryAcquire("ai", 0))
	require.NotNil(t, l.TryAcquire("ai", 0))
}
