package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// Executor reruns transient failures with exponential backoff. Permanent
// failures pass through untouched on the first attempt; the executor never
// reclassifies them. Backoff waits on a timer and ctx.Done together, so a
// waiting invocation blocks nothing else and cancellation cuts the wait
// short.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
	metrics     domain.Metrics
}

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *zap.Logger
	Metrics     domain.Metrics
}

func NewExecutor(opts Options) *Executor {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultRetryMaxAttempts
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = domain.DefaultRetryBaseDelaySeconds * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.Named("retry"),
		metrics:     opts.Metrics,
	}
}

// Run invokes op until it succeeds, fails permanently, or the attempt
// budget is spent. Attempt i waits baseDelay * 2^(i-1) before attempt i+1.
// When the context deadline would expire before the next attempt could
// start, Run returns a Timeout instead of sleeping through it.
func (e *Executor) Run(ctx context.Context, tool string, op func(ctx context.Context) (any, error)) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			e.recordAttempts(tool, attempt)
			return value, nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			e.recordAttempts(tool, attempt)
			if ctx.Err() != nil {
				return nil, timeoutError(tool, err)
			}
			return nil, err
		}

		if attempt == e.maxAttempts {
			break
		}

		delay := e.baseDelay << (attempt - 1)
		if deadline, ok := ctx.Deadline(); ok && time.Now().Add(delay).After(deadline) {
			e.recordAttempts(tool, attempt)
			return nil, timeoutError(tool, lastErr)
		}

		e.logger.Debug("transient failure, backing off",
			zap.String("tool", tool),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			e.recordAttempts(tool, attempt)
			return nil, timeoutError(tool, lastErr)
		}
	}

	e.recordAttempts(tool, e.maxAttempts)
	exhausted := domain.E(domain.CodeUnavailable, "retry",
		fmt.Sprintf("%s failed after %d attempts", tool, e.maxAttempts), lastErr)
	exhausted.Retryable = true
	return nil, exhausted
}

func (e *Executor) recordAttempts(tool string, attempts int) {
	if e.metrics != nil {
		e.metrics.ObserveRetryAttempts(tool, attempts)
	}
}

func timeoutError(tool string, cause error) *domain.Error {
	return domain.E(domain.CodeDeadlineExceeded, "retry",
		fmt.Sprintf("%s deadline expired", tool), cause)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
