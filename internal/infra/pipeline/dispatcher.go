package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"atomd/internal/domain"
	"atomd/internal/infra/cache"
	"atomd/internal/infra/policy"
	"atomd/internal/infra/ratelimit"
	"atomd/internal/infra/retry"
)

// Dispatcher runs every invocation through the same fixed stage order:
// resolve, validate, policy, cache probe, rate limit, execute, cache
// populate. Stage position is what makes the guarantees hold: a cache hit
// is returned before the limiter is consulted, and the limiter is consulted
// before any handler work starts. No stage blocks while holding a lock, so
// one slow upstream call never stalls unrelated invocations.
type Dispatcher struct {
	registry *Registry
	gate     *policy.Gate
	cache    *cache.Store
	limiter  *ratelimit.Limiter
	retrier  *retry.Executor
	logger   *zap.Logger
	metrics  domain.Metrics

	invokeTimeout   time.Duration
	defaultCacheTTL time.Duration
}

type DispatcherOptions struct {
	Registry *Registry
	Gate     *policy.Gate
	Cache    *cache.Store
	Limiter  *ratelimit.Limiter
	Retrier  *retry.Executor
	Logger   *zap.Logger
	Metrics  domain.Metrics

	// InvokeTimeout caps each invocation end to end. Zero applies the
	// default; a negative value disables the cap.
	InvokeTimeout   time.Duration
	DefaultCacheTTL time.Duration
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	invokeTimeout := opts.InvokeTimeout
	if invokeTimeout == 0 {
		invokeTimeout = domain.DefaultInvokeTimeoutSeconds * time.Second
	}
	defaultTTL := opts.DefaultCacheTTL
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultCacheTTLSeconds * time.Second
	}
	return &Dispatcher{
		registry:        opts.Registry,
		gate:            opts.Gate,
		cache:           opts.Cache,
		limiter:         opts.Limiter,
		retrier:         opts.Retrier,
		logger:          logger.Named("dispatch"),
		metrics:         opts.Metrics,
		invokeTimeout:   invokeTimeout,
		defaultCacheTTL: defaultTTL,
	}
}

// Dispatch executes one tool invocation and always returns a typed result:
// either OK with a value, or a categorized error. It never panics across
// the boundary and never returns a partial result.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.InvocationRequest) domain.ExecutionResult {
	start := time.Now()

	if d.invokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.invokeTimeout)
		defer cancel()
	}

	result := d.dispatch(ctx, req)
	d.observe(req.ToolName, result, time.Since(start))
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, req domain.InvocationRequest) domain.ExecutionResult {
	tool, derr := d.registry.resolve(req.ToolName)
	if derr != nil {
		return failure(derr)
	}
	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}

	if derr := d.validateArgs(tool, args); derr != nil {
		return failure(derr)
	}

	if derr := d.checkPolicy(tool, args); derr != nil {
		return failure(derr)
	}

	var cacheKey string
	if tool.descriptor.Cacheable && d.cache != nil {
		key, err := domain.CacheKey(tool.descriptor.Name, args)
		if err != nil {
			return failure(domain.E(domain.CodeInternal, "cache key",
				fmt.Sprintf("compute key for %s", tool.descriptor.Name), err))
		}
		cacheKey = key
		if value, ok := d.cache.Get(cacheKey); ok {
			d.observeCacheProbe(tool.descriptor.Name, true)
			return domain.ExecutionResult{OK: true, Value: value, FromCache: true}
		}
		d.observeCacheProbe(tool.descriptor.Name, false)
	}

	if tool.descriptor.RateLimited && d.limiter != nil {
		if derr := d.limiter.TryAcquire(tool.descriptor.LimiterID, 1); derr != nil {
			return failure(derr)
		}
	}

	value, err := d.execute(ctx, tool, args)
	if err != nil {
		return failure(d.classify(tool.descriptor.Name, err))
	}

	if cacheKey != "" {
		ttl := tool.descriptor.CacheTTL
		if ttl <= 0 {
			ttl = d.defaultCacheTTL
		}
		d.cache.Put(cacheKey, value, ttl)
	}
	return domain.ExecutionResult{OK: true, Value: value}
}

// validateArgs checks the arguments against the tool's resolved input
// schema before any side-effecting stage runs.
func (d *Dispatcher) validateArgs(tool *registeredTool, args map[string]any) *domain.Error {
	if tool.schema == nil {
		return nil
	}
	if err := tool.schema.Validate(args); err != nil {
		return domain.E(domain.CodeInvalidArgument, "validate arguments",
			fmt.Sprintf("%s: %v", tool.descriptor.Name, err), err)
	}
	return nil
}

// checkPolicy runs the allowlist gate over every declared secret and URL
// argument. Absent arguments are skipped; the schema decides whether they
// were required. Denial reports which identifier was rejected but the
// invocation never proceeds past it.
func (d *Dispatcher) checkPolicy(tool *registeredTool, args map[string]any) *domain.Error {
	if d.gate == nil {
		return nil
	}
	for _, key := range tool.descriptor.SecretArgs {
		name, ok := stringArg(args, key)
		if !ok {
			continue
		}
		if derr := d.gate.Check(domain.IdentifierSecret, name); derr != nil {
			d.observePolicyDenial(domain.IdentifierSecret)
			return derr
		}
	}
	for _, key := range tool.descriptor.URLArgs {
		raw, ok := stringArg(args, key)
		if !ok {
			continue
		}
		host, err := hostOf(raw)
		if err != nil {
			return domain.E(domain.CodeInvalidArgument, "validate arguments",
				fmt.Sprintf("%s: argument %q is not a valid URL", tool.descriptor.Name, key), err)
		}
		if derr := d.gate.Check(domain.IdentifierDomain, host); derr != nil {
			d.observePolicyDenial(domain.IdentifierDomain)
			return derr
		}
	}
	return nil
}

func (d *Dispatcher) execute(ctx context.Context, tool *registeredTool, args map[string]any) (any, error) {
	op := func(ctx context.Context) (any, error) {
		return tool.handler.Invoke(ctx, args)
	}
	if tool.descriptor.Retryable && d.retrier != nil {
		return d.retrier.Run(ctx, tool.descriptor.Name, op)
	}
	return op(ctx)
}

// classify coerces a handler error into the typed taxonomy. Deadline expiry
// surfaces as Timeout regardless of how the handler reported it; anything
// without a domain code is internal.
func (d *Dispatcher) classify(toolName string, err error) *domain.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.E(domain.CodeDeadlineExceeded, "invoke",
			fmt.Sprintf("%s deadline expired", toolName), err)
	}
	if derr := domain.Wrap(domain.CodeInternal, "invoke", err); derr != nil {
		return derr
	}
	return domain.E(domain.CodeInternal, "invoke", fmt.Sprintf("%s failed", toolName), err)
}

func (d *Dispatcher) observe(toolName string, result domain.ExecutionResult, duration time.Duration) {
	code := domain.CodeOK
	if result.Err != nil {
		code = result.Err.Code
	}
	if d.metrics != nil {
		d.metrics.ObserveInvocation(toolName, code, result.FromCache, duration)
	}
	if result.Err != nil {
		d.logger.Warn("invocation failed",
			zap.String("tool", toolName),
			zap.String("code", string(code)),
			zap.Duration("duration", duration),
			zap.Error(result.Err),
		)
		return
	}
	d.logger.Debug("invocation complete",
		zap.String("tool", toolName),
		zap.Bool("from_cache", result.FromCache),
		zap.Duration("duration", duration),
	)
}

func (d *Dispatcher) observeCacheProbe(toolName string, hit bool) {
	if d.metrics != nil {
		d.metrics.ObserveCacheProbe(toolName, hit)
	}
}

func (d *Dispatcher) observePolicyDenial(kind domain.IdentifierKind) {
	if d.metrics != nil {
		d.metrics.ObservePolicyDenial(kind)
	}
}

func failure(err *domain.Error) domain.ExecutionResult {
	return domain.ExecutionResult{Err: err}
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// hostOf extracts the full authority (host, with port when present) from a
// URL argument. The allowlist matches the authority exactly: an allowlisted
// host does not admit the same host on another port, and path or query can't
// smuggle a denied domain past the gate.
func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	return u.Host, nil
}
