package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"atomd/internal/domain"
)

// Loader reads the YAML catalog, expands environment references, applies
// defaults, and validates everything in one pass. All validation errors
// are collected and reported together so a broken config fails once, not
// one field at a time.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setConfigDefaults(v)
	return v
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("retry.maxAttempts", domain.DefaultRetryMaxAttempts)
	v.SetDefault("retry.baseDelaySeconds", domain.DefaultRetryBaseDelaySeconds)
	v.SetDefault("rateLimit.capacity", domain.DefaultRateLimitCapacity)
	v.SetDefault("rateLimit.refillPerSecond", domain.DefaultRateLimitRefill)
	v.SetDefault("invokeTimeoutSeconds", domain.DefaultInvokeTimeoutSeconds)
	v.SetDefault("cacheTTLSeconds", domain.DefaultCacheTTLSeconds)
	v.SetDefault("httpTimeoutSeconds", domain.DefaultHTTPTimeoutSeconds)
	v.SetDefault("vault.backend", domain.DefaultVaultBackend)
	v.SetDefault("vault.prefix", domain.DefaultVaultEnvPrefix)
	v.SetDefault("ai.provider", domain.DefaultAIProvider)
	v.SetDefault("ai.model", domain.DefaultAIModel)
	v.SetDefault("ai.maxTokens", domain.DefaultAIMaxTokens)
	v.SetDefault("ai.temperature", domain.DefaultAITemperature)
	v.SetDefault("ai.timeoutSeconds", domain.DefaultAITimeoutSeconds)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
}

type rawConfig struct {
	Allowlists           rawAllowlists              `mapstructure:"allowlists"`
	Tools                map[string]rawToolOverride `mapstructure:"tools"`
	Retry                rawRetry                   `mapstructure:"retry"`
	RateLimit            rawRateLimit               `mapstructure:"rateLimit"`
	InvokeTimeoutSeconds int                        `mapstructure:"invokeTimeoutSeconds"`
	CacheTTLSeconds      int                        `mapstructure:"cacheTTLSeconds"`
	HTTPTimeoutSeconds   int                        `mapstructure:"httpTimeoutSeconds"`
	Vault                rawVault                   `mapstructure:"vault"`
	AI                   rawAI                      `mapstructure:"ai"`
	Observability        rawObservability           `mapstructure:"observability"`
}

type rawAllowlists struct {
	Secrets       []string `mapstructure:"secrets"`
	Domains       []string `mapstructure:"domains"`
	CachePatterns []string `mapstructure:"cachePatterns"`
}

type rawToolOverride struct {
	CacheTTLSeconds int  `mapstructure:"cacheTTLSeconds"`
	Disabled        bool `mapstructure:"disabled"`
}

type rawRetry struct {
	MaxAttempts      int `mapstructure:"maxAttempts"`
	BaseDelaySeconds int `mapstructure:"baseDelaySeconds"`
}

type rawRateLimit struct {
	Capacity        float64 `mapstructure:"capacity"`
	RefillPerSecond float64 `mapstructure:"refillPerSecond"`
}

type rawVault struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Prefix  string `mapstructure:"prefix"`
}

type rawAI struct {
	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"apiKey"`
	APIKeyEnvVar   string  `mapstructure:"apiKeyEnvVar"`
	BaseURL        string  `mapstructure:"baseURL"`
	MaxTokens      int     `mapstructure:"maxTokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeoutSeconds"`
}

type rawObservability struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return domain.Config{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.Config{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config",
			zap.String("path", path),
			zap.Strings("missing", missing),
		)
	}

	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg rawConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	normalized, errs := normalizeConfig(cfg)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return normalized, nil
}

func normalizeConfig(cfg rawConfig) (domain.Config, []string) {
	var errs []string

	allowlists := domain.AllowlistConfig{
		Secrets:       trimmedList(cfg.Allowlists.Secrets),
		Domains:       trimmedList(cfg.Allowlists.Domains),
		CachePatterns: trimmedList(cfg.Allowlists.CachePatterns),
	}
	for i, d := range allowlists.Domains {
		// host or host:port only; a scheme, path, or space means someone
		// pasted a URL instead of an authority.
		if strings.Contains(d, "://") || strings.ContainsAny(d, "/ ") {
			errs = append(errs, fmt.Sprintf("allowlists.domains[%d]: %q must be a bare host, not a URL", i, d))
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.maxAttempts must be >= 1")
	}
	if cfg.Retry.BaseDelaySeconds < 0 {
		errs = append(errs, "retry.baseDelaySeconds must be >= 0")
	}
	if cfg.RateLimit.Capacity <= 0 {
		errs = append(errs, "rateLimit.capacity must be > 0")
	}
	if cfg.RateLimit.RefillPerSecond <= 0 {
		errs = append(errs, "rateLimit.refillPerSecond must be > 0")
	}
	if cfg.InvokeTimeoutSeconds <= 0 {
		errs = append(errs, "invokeTimeoutSeconds must be > 0")
	}
	if cfg.CacheTTLSeconds <= 0 {
		errs = append(errs, "cacheTTLSeconds must be > 0")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, "httpTimeoutSeconds must be > 0")
	}

	vault := domain.VaultConfig{
		Backend: strings.ToLower(strings.TrimSpace(cfg.Vault.Backend)),
		Path:    strings.TrimSpace(cfg.Vault.Path),
		Prefix:  cfg.Vault.Prefix,
	}
	switch vault.Backend {
	case domain.VaultBackendEnv:
	case domain.VaultBackendBolt:
		if vault.Path == "" {
			errs = append(errs, "vault.path is required when vault.backend is bolt")
		}
	default:
		errs = append(errs, "vault.backend must be env or bolt")
	}

	ai := domain.AIConfig{
		Provider:       strings.ToLower(strings.TrimSpace(cfg.AI.Provider)),
		Model:          strings.TrimSpace(cfg.AI.Model),
		APIKey:         cfg.AI.APIKey,
		APIKeyEnvVar:   strings.TrimSpace(cfg.AI.APIKeyEnvVar),
		BaseURL:        strings.TrimSpace(cfg.AI.BaseURL),
		MaxTokens:      cfg.AI.MaxTokens,
		Temperature:    cfg.AI.Temperature,
		TimeoutSeconds: cfg.AI.TimeoutSeconds,
	}
	if ai.Provider != "openai" {
		errs = append(errs, "ai.provider must be openai")
	}
	if ai.Model == "" {
		errs = append(errs, "ai.model must not be empty")
	}
	if ai.MaxTokens <= 0 {
		errs = append(errs, "ai.maxTokens must be > 0")
	}
	if ai.Temperature < 0 || ai.Temperature > 2 {
		errs = append(errs, "ai.temperature must be between 0 and 2")
	}
	if ai.TimeoutSeconds <= 0 {
		errs = append(errs, "ai.timeoutSeconds must be > 0")
	}

	tools := make(map[string]domain.ToolOverride, len(cfg.Tools))
	for name, override := range cfg.Tools {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			errs = append(errs, "tools: empty tool name")
			continue
		}
		if override.CacheTTLSeconds < 0 {
			errs = append(errs, fmt.Sprintf("tools.%s: cacheTTLSeconds must be >= 0", trimmed))
		}
		tools[trimmed] = domain.ToolOverride{
			CacheTTLSeconds: override.CacheTTLSeconds,
			Disabled:        override.Disabled,
		}
	}

	listenAddress := strings.TrimSpace(cfg.Observability.ListenAddress)
	if listenAddress == "" {
		listenAddress = domain.DefaultObservabilityListenAddress
	}

	return domain.Config{
		Allowlists:           allowlists,
		Tools:                tools,
		Retry:                domain.RetryConfig{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelaySeconds: cfg.Retry.BaseDelaySeconds},
		RateLimit:            domain.RateLimitConfig{Capacity: cfg.RateLimit.Capacity, RefillPerSecond: cfg.RateLimit.RefillPerSecond},
		InvokeTimeoutSeconds: cfg.InvokeTimeoutSeconds,
		CacheTTLSeconds:      cfg.CacheTTLSeconds,
		HTTPTimeoutSeconds:   cfg.HTTPTimeoutSeconds,
		Vault:                vault,
		AI:                   ai,
		Observability:        domain.ObservabilityConfig{ListenAddress: listenAddress},
	}, errs
}

func trimmedList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
