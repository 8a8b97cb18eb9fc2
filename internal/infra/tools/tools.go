package tools

import (
	"fmt"

	"go.uber.org/zap"

	"atomd/internal/domain"
	"atomd/internal/infra/cache"
	"atomd/internal/infra/httptool"
	"atomd/internal/infra/pipeline"
)

// Dependencies are the collaborators the builtin tools close over. Any
// nil collaborator disables the tools that need it rather than failing
// registration, so a deployment without an AI key still serves the rest.
type Dependencies struct {
	Cache      *cache.Store
	Vault      domain.SecretVault
	HTTP       *httptool.Client
	Completion domain.CompletionClient
	Allowlists *domain.Allowlists
	Logger     *zap.Logger
}

// RegisterBuiltins registers the full atomic tool set.
func RegisterBuiltins(registry *pipeline.Registry, deps Dependencies) error {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	groups := []func(*pipeline.Registry, Dependencies) error{
		registerInfrastructureTools,
		registerHTTPTools,
		registerProcessingTools,
		registerWeatherTools,
	}
	for _, register := range groups {
		if err := register(registry, deps); err != nil {
			return err
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key].(string)
	return value, ok
}

func requiredString(args map[string]any, key string) (string, error) {
	value, ok := stringArg(args, key)
	if !ok || value == "" {
		return "", invalidArg(key, "must be a non-empty string")
	}
	return value, nil
}

func objectArg(args map[string]any, key string) (map[string]any, bool) {
	value, ok := args[key].(map[string]any)
	return value, ok
}

func listArg(args map[string]any, key string) ([]any, bool) {
	value, ok := args[key].([]any)
	return value, ok
}

func numberArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	value, ok := numberArg(args, key)
	if !ok {
		return 0, false
	}
	return int(value), true
}

func stringList(args map[string]any, key string) ([]string, error) {
	raw, ok := listArg(args, key)
	if !ok {
		return nil, invalidArg(key, "must be an array of strings")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, invalidArg(key, "must be an array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMap(args map[string]any, key string) (map[string]string, error) {
	raw, ok := objectArg(args, key)
	if !ok {
		return nil, invalidArg(key, "must be an object of strings")
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, invalidArg(key, "must be an object of strings")
		}
		out[k] = s
	}
	return out, nil
}

func invalidArg(key, reason string) *domain.Error {
	return domain.E(domain.CodeInvalidArgument, "invoke",
		fmt.Sprintf("argument %q %s", key, reason), nil)
}
