package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// Limiter keeps one token bucket per limiter ID so a saturated bucket
// never throttles unrelated tools. Buckets refill continuously at
// refillPerSecond up to capacity; each grant consumes cost tokens.
type Limiter struct {
	capacity        float64
	refillPerSecond float64
	logger          *zap.Logger
	metrics         domain.Metrics

	mu      sync.RWMutex
	buckets map[string]*bucket

	now func() time.Time
}

// Each bucket has its own mutex, held only for the in-memory refill and
// spend. Nothing ever blocks while holding it.
type bucket struct {
	mu           sync.Mutex
	tokens       float64
	lastRefillAt time.Time
}

type Options struct {
	Capacity        float64
	RefillPerSecond float64
	Logger          *zap.Logger
	Metrics         domain.Metrics
}

func NewLimiter(opts Options) *Limiter {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultRateLimitCapacity
	}
	refill := opts.RefillPerSecond
	if refill <= 0 {
		refill = domain.DefaultRateLimitRefill
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		capacity:        capacity,
		refillPerSecond: refill,
		logger:          logger.Named("ratelimit"),
		metrics:         opts.Metrics,
		buckets:         make(map[string]*bucket),
		now:             time.Now,
	}
}

// TryAcquire grants cost tokens from the named bucket or returns a
// RateLimitExceeded error without blocking. A rejected call still applies
// the refill but never mutates the token count beyond it, so the bucket
// invariant 0 <= tokens <= capacity holds at every observation point.
func (l *Limiter) TryAcquire(limiterID string, cost float64) *domain.Error {
	if cost <= 0 {
		cost = 1
	}
	b := l.bucketFor(limiterID)
	now := l.now()

	b.mu.Lock()
	elapsed := now.Sub(b.lastRefillAt).Seconds()
	if elapsed > 0 {
		b.tokens = min(l.capacity, b.tokens+elapsed*l.refillPerSecond)
		b.lastRefillAt = now
	}
	granted := b.tokens >= cost
	if granted {
		b.tokens -= cost
	}
	remaining := b.tokens
	b.mu.Unlock()

	if granted {
		return nil
	}

	l.logger.Warn("rate limit exhausted",
		zap.String("limiter", limiterID),
		zap.Float64("tokens", remaining),
		zap.Float64("cost", cost),
	)
	if l.metrics != nil {
		l.metrics.ObserveRateLimitRejection(limiterID)
	}
	return &domain.Error{
		Code:       domain.CodeRateLimited,
		Op:         "rate limit",
		Message:    fmt.Sprintf("limiter %q exhausted", limiterID),
		Cause:      domain.ErrRateLimited,
		Identifier: limiterID,
	}
}

// Tokens reports the current token count after applying the refill.
func (l *Limiter) Tokens(limiterID string) float64 {
	b := l.bucketFor(limiterID)
	now := l.now()

	b.mu.Lock()
	defer b.mu.Unlock()
	elapsed := now.Sub(b.lastRefillAt).Seconds()
	if elapsed > 0 {
		b.tokens = min(l.capacity, b.tokens+elapsed*l.refillPerSecond)
		b.lastRefillAt = now
	}
	return b.tokens
}

func (l *Limiter) bucketFor(limiterID string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[limiterID]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[limiterID]; ok {
		return b
	}
	// New buckets start full.
	b = &bucket{tokens: l.capacity, lastRefillAt: l.now()}
	l.buckets[limiterID] = b
	return b
}
