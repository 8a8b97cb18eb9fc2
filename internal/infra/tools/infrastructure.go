package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"atomd/internal/domain"
	"atomd/internal/infra/pipeline"
)

// Infrastructure tools: secret retrieval, explicit caching, and echo.
func registerInfrastructureTools(registry *pipeline.Registry, deps Dependencies) error {
	logger := deps.Logger.Named("tools")

	if deps.Vault != nil {
		if err := registry.Register(domain.ToolDescriptor{
			Name:        "get_secret",
			Description: "Retrieve a named secret from the configured vault",
			InputSchema: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"secret_name"},
				Properties: map[string]*jsonschema.Schema{
					"secret_name": {Type: "string", Description: "Name of the secret to retrieve"},
				},
			},
			SecretArgs: []string{"secret_name"},
			Cacheable:  true,
			Retryable:  true,
		}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requiredString(args, "secret_name")
			if err != nil {
				return nil, err
			}
			value, err := deps.Vault.Fetch(ctx, name)
			if err != nil {
				return nil, err
			}
			logger.Info("secret retrieved", zap.String("name", name))
			return value, nil
		})); err != nil {
			return err
		}
	}

	if deps.Cache != nil {
		if err := registerCacheTools(registry, deps, logger); err != nil {
			return err
		}
	}

	return registry.Register(domain.ToolDescriptor{
		Name:        "echo",
		Description: "Echo the message back, useful for pipeline verification",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"message"},
			Properties: map[string]*jsonschema.Schema{
				"message": {Type: "string"},
			},
		},
		Cacheable: true,
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		message, err := requiredString(args, "message")
		if err != nil {
			return nil, err
		}
		return message, nil
	}))
}

func registerCacheTools(registry *pipeline.Registry, deps Dependencies, logger *zap.Logger) error {
	if err := registry.Register(domain.ToolDescriptor{
		Name:        "cache_data",
		Description: "Store data in the shared cache under an explicit key",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"key", "data"},
			Properties: map[string]*jsonschema.Schema{
				"key":         {Type: "string"},
				"data":        {Type: "object"},
				"ttl_seconds": {Type: "integer", Description: "Time to live, default 300"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		key, err := requiredString(args, "key")
		if err != nil {
			return nil, err
		}
		data, ok := objectArg(args, "data")
		if !ok {
			return nil, invalidArg("data", "must be an object")
		}
		ttlSeconds, ok := intArg(args, "ttl_seconds")
		if !ok || ttlSeconds <= 0 {
			ttlSeconds = domain.DefaultCacheTTLSeconds
		}
		deps.Cache.Put(key, data, time.Duration(ttlSeconds)*time.Second)
		logger.Debug("data cached", zap.String("key", key), zap.Int("ttl_seconds", ttlSeconds))
		return true, nil
	})); err != nil {
		return err
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "get_cached_data",
		Description: "Retrieve cached data by key, nil when absent or expired",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"key"},
			Properties: map[string]*jsonschema.Schema{
				"key": {Type: "string"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		key, err := requiredString(args, "key")
		if err != nil {
			return nil, err
		}
		value, ok := deps.Cache.Get(key)
		if !ok {
			return nil, nil
		}
		return value, nil
	})); err != nil {
		return err
	}

	return registry.Register(domain.ToolDescriptor{
		Name:        "clear_cache",
		Description: "Clear cache entries, optionally by key substring pattern",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {Type: "string", Description: "Substring to match; must start with an allowlisted prefix"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		pattern, ok := stringArg(args, "pattern")
		if !ok || pattern == "" {
			count := deps.Cache.Clear()
			logger.Info("cache cleared", zap.Int("entries", count))
			return count, nil
		}
		if deps.Allowlists != nil && !deps.Allowlists.CachePatternAllowed(pattern) {
			return nil, &domain.Error{
				Code:       domain.CodePolicyViolation,
				Op:         "clear cache",
				Message:    fmt.Sprintf("pattern %q is not allowlisted", pattern),
				Identifier: pattern,
			}
		}
		count := deps.Cache.ClearPattern(pattern)
		logger.Info("cache entries cleared", zap.String("pattern", pattern), zap.Int("entries", count))
		return count, nil
	}))
}
