package app

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"atomd/internal/domain"
	"atomd/internal/infra/aitool"
	"atomd/internal/infra/cache"
	"atomd/internal/infra/catalog"
	"atomd/internal/infra/httptool"
	"atomd/internal/infra/pipeline"
	"atomd/internal/infra/policy"
	"atomd/internal/infra/ratelimit"
	"atomd/internal/infra/retry"
	"atomd/internal/infra/telemetry"
	"atomd/internal/infra/tools"
	"atomd/internal/infra/vault"
	"atomd/internal/server"
)

type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
}

type ValidateConfig struct {
	ConfigPath string
}

func New(logger *zap.Logger) *App {
	return &App{
		logger: logger.Named("app"),
	}
}

// Serve wires the full pipeline from configuration and serves it over MCP
// stdio until the context is cancelled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	loader := catalog.NewLoader(a.logger)

	config, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	a.logger.Info("configuration loaded",
		zap.String("config", cfg.ConfigPath),
		zap.Int("allowlisted_secrets", len(config.Allowlists.Secrets)),
		zap.Int("allowlisted_domains", len(config.Allowlists.Domains)),
	)

	promRegistry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(promRegistry)

	registry, dispatcher, closeVault, err := a.buildPipeline(ctx, config, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeVault(); err != nil {
			a.logger.Warn("vault close failed", zap.Error(err))
		}
	}()

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	obsErr := make(chan error, 1)
	go func() {
		obsErr <- telemetry.StartHTTPServer(serveCtx, telemetry.HTTPServerOptions{
			Addr:     config.Observability.ListenAddress,
			Registry: promRegistry,
		}, a.logger)
	}()

	mcpServer := server.New(server.Options{
		Registry:   registry,
		Dispatcher: dispatcher,
		Logger:     a.logger,
		Version:    Version,
	})

	runErr := mcpServer.Run(serveCtx)
	cancel()
	if err := <-obsErr; err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil && serveCtx.Err() != nil {
		// Shutdown via signal, not a failure.
		return nil
	}
	return runErr
}

// ValidateConfig loads and validates the catalog without serving. Tool
// overrides are checked against the registered tool set so a typo in a
// tool name fails here instead of being silently ignored.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	loader := catalog.NewLoader(a.logger)

	config, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	registry := pipeline.NewRegistry()
	if err := tools.RegisterBuiltins(registry, tools.Dependencies{
		Cache:      cache.NewStore(),
		Vault:      vault.NewEnvVault(config.Vault.Prefix, zap.NewNop()),
		HTTP:       httptool.NewClient(time.Duration(config.HTTPTimeoutSeconds)*time.Second, zap.NewNop()),
		Completion: nil,
		Allowlists: newAllowlists(config),
		Logger:     zap.NewNop(),
	}); err != nil {
		return err
	}
	if err := applyOverrides(registry, config, zap.NewNop()); err != nil {
		return err
	}

	a.logger.Info("configuration valid",
		zap.String("config", cfg.ConfigPath),
		zap.Int("tools", registry.Len()),
	)
	return nil
}

func (a *App) buildPipeline(ctx context.Context, config domain.Config, metrics domain.Metrics) (*pipeline.Registry, *pipeline.Dispatcher, func() error, error) {
	allowlists := newAllowlists(config)
	store := cache.NewStore()

	secretVault, closeVault, err := vault.New(config.Vault, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	httpClient := httptool.NewClient(time.Duration(config.HTTPTimeoutSeconds)*time.Second, a.logger)

	var completion domain.CompletionClient
	einoClient, err := aitool.NewEinoClient(ctx, config.AI, a.logger)
	if err != nil {
		// No AI key means no ai_completion tool; everything else serves.
		a.logger.Info("ai completion disabled", zap.Error(err))
	} else {
		completion = einoClient
	}

	registry := pipeline.NewRegistry()
	if err := tools.RegisterBuiltins(registry, tools.Dependencies{
		Cache:      store,
		Vault:      secretVault,
		HTTP:       httpClient,
		Completion: completion,
		Allowlists: allowlists,
		Logger:     a.logger,
	}); err != nil {
		_ = closeVault()
		return nil, nil, nil, err
	}
	if err := applyOverrides(registry, config, a.logger); err != nil {
		_ = closeVault()
		return nil, nil, nil, err
	}

	dispatcher := pipeline.NewDispatcher(pipeline.DispatcherOptions{
		Registry: registry,
		Gate:     policy.NewGate(allowlists, a.logger),
		Cache:    store,
		Limiter: ratelimit.NewLimiter(ratelimit.Options{
			Capacity:        config.RateLimit.Capacity,
			RefillPerSecond: config.RateLimit.RefillPerSecond,
			Logger:          a.logger,
			Metrics:         metrics,
		}),
		Retrier: retry.NewExecutor(retry.Options{
			MaxAttempts: config.Retry.MaxAttempts,
			BaseDelay:   time.Duration(config.Retry.BaseDelaySeconds) * time.Second,
			Logger:      a.logger,
			Metrics:     metrics,
		}),
		Logger:          a.logger,
		Metrics:         metrics,
		InvokeTimeout:   time.Duration(config.InvokeTimeoutSeconds) * time.Second,
		DefaultCacheTTL: time.Duration(config.CacheTTLSeconds) * time.Second,
	})

	a.logger.Info("pipeline ready", zap.Int("tools", registry.Len()))
	return registry, dispatcher, closeVault, nil
}

func newAllowlists(config domain.Config) *domain.Allowlists {
	return domain.NewAllowlists(
		config.Allowlists.Secrets,
		config.Allowlists.Domains,
		config.Allowlists.CachePatterns,
	)
}

func applyOverrides(registry *pipeline.Registry, config domain.Config, logger *zap.Logger) error {
	names := make([]string, 0, len(config.Tools))
	for name := range config.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		override := config.Tools[name]
		if err := registry.Override(name, override); err != nil {
			// Disabling a tool that never registered (no AI key, no
			// vault) is a no-op, not a config error.
			if override.Disabled {
				logger.Debug("tool already absent", zap.String("tool", name))
				continue
			}
			return err
		}
		if override.Disabled {
			logger.Info("tool disabled by configuration", zap.String("tool", name))
		}
	}
	return nil
}
