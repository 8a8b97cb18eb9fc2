package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"atomd/internal/domain"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atomd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
allowlists:
  secrets: [api_key]
  domains: [api.example.com]
`)

	cfg, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, []string{"api_key"}, cfg.Allowlists.Secrets)
	require.Equal(t, []string{"api.example.com"}, cfg.Allowlists.Domains)
	require.Equal(t, domain.DefaultRetryMaxAttempts, cfg.Retry.MaxAttempts)
	require.Equal(t, domain.DefaultCacheTTLSeconds, cfg.CacheTTLSeconds)
	require.InDelta(t, domain.DefaultRateLimitCapacity, cfg.RateLimit.Capacity, 1e-9)
	require.Equal(t, domain.VaultBackendEnv, cfg.Vault.Backend)
	require.Equal(t, domain.DefaultVaultEnvPrefix, cfg.Vault.Prefix)
	require.Equal(t, domain.DefaultAIModel, cfg.AI.Model)
	require.Equal(t, domain.DefaultObservabilityListenAddress, cfg.Observability.ListenAddress)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
allowlists:
  secrets: [weather_api_key, openai_api_key]
  domains: [api.openweathermap.org, api.openai.com]
  cachePatterns: [weather_, forecast_]
tools:
  http_request:
    cacheTTLSeconds: 120
  ai_completion:
    disabled: true
retry:
  maxAttempts: 5
  baseDelaySeconds: 2
rateLimit:
  capacity: 4
  refillPerSecond: 0.25
invokeTimeoutSeconds: 15
vault:
  backend: bolt
  path: /var/lib/atomd/secrets.db
ai:
  model: gpt-4o
  apiKeyEnvVar: OPENAI_API_KEY
`)

	cfg, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	expect := domain.Config{
		Allowlists: domain.AllowlistConfig{
			Secrets:       []string{"weather_api_key", "openai_api_key"},
			Domains:       []string{"api.openweathermap.org", "api.openai.com"},
			CachePatterns: []string{"weather_", "forecast_"},
		},
		Tools: map[string]domain.ToolOverride{
			"http_request":  {CacheTTLSeconds: 120},
			"ai_completion": {Disabled: true},
		},
		Retry:                domain.RetryConfig{MaxAttempts: 5, BaseDelaySeconds: 2},
		RateLimit:            domain.RateLimitConfig{Capacity: 4, RefillPerSecond: 0.25},
		InvokeTimeoutSeconds: 15,
		CacheTTLSeconds:      domain.DefaultCacheTTLSeconds,
		HTTPTimeoutSeconds:   domain.DefaultHTTPTimeoutSeconds,
		Vault: domain.VaultConfig{
			Backend: domain.VaultBackendBolt,
			Path:    "/var/lib/atomd/secrets.db",
			Prefix:  domain.DefaultVaultEnvPrefix,
		},
		AI: domain.AIConfig{
			Provider:       domain.DefaultAIProvider,
			Model:          "gpt-4o",
			APIKeyEnvVar:   "OPENAI_API_KEY",
			MaxTokens:      domain.DefaultAIMaxTokens,
			Temperature:    domain.DefaultAITemperature,
			TimeoutSeconds: domain.DefaultAITimeoutSeconds,
		},
		Observability: domain.ObservabilityConfig{ListenAddress: domain.DefaultObservabilityListenAddress},
	}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("ATOMD_TEST_DOMAIN", "api.example.com")
	t.Setenv("ATOMD_TEST_ATTEMPTS", "4")
	path := writeConfig(t, `
allowlists:
  domains: [$ATOMD_TEST_DOMAIN]
retry:
  maxAttempts: $ATOMD_TEST_ATTEMPTS
`)

	cfg, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, []string{"api.example.com"}, cfg.Allowlists.Domains)
	require.Equal(t, 4, cfg.Retry.MaxAttempts)
}

func TestLoadCollectsValidationErrors(t *testing.T) {
	path := writeConfig(t, `
retry:
  maxAttempts: 0
rateLimit:
  capacity: -1
vault:
  backend: consul
`)

	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "retry.maxAttempts must be >= 1")
	require.Contains(t, err.Error(), "rateLimit.capacity must be > 0")
	require.Contains(t, err.Error(), "vault.backend must be env or bolt")
}

func TestLoadRejectsURLsInDomainAllowlist(t *testing.T) {
	path := writeConfig(t, `
allowlists:
  domains: ["https://api.example.com"]
`)

	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a bare host")
}

func TestLoadAcceptsHostWithPortInDomainAllowlist(t *testing.T) {
	path := writeConfig(t, `
allowlists:
  domains: ["api.example.com:8443"]
`)

	cfg, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"api.example.com:8443"}, cfg.Allowlists.Domains)
}

func TestLoadRejectsBoltWithoutPath(t *testing.T) {
	path := writeConfig(t, `
vault:
  backend: bolt
`)

	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "vault.path is required")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
