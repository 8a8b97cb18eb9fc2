package domain

// Config is the normalized runtime configuration. Loaded once at startup
// from the YAML catalog; nothing mutates it afterwards.
type Config struct {
	Allowlists           AllowlistConfig
	Tools                map[string]ToolOverride
	Retry                RetryConfig
	RateLimit            RateLimitConfig
	InvokeTimeoutSeconds int
	CacheTTLSeconds      int
	HTTPTimeoutSeconds   int
	Vault                VaultConfig
	AI                   AIConfig
	Observability        ObservabilityConfig
}

type AllowlistConfig struct {
	Secrets       []string
	Domains       []string
	CachePatterns []string
}

// ToolOverride adjusts one registered tool without touching its handler.
type ToolOverride struct {
	CacheTTLSeconds int
	Disabled        bool
}

type RetryConfig struct {
	MaxAttempts      int
	BaseDelaySeconds int
}

type RateLimitConfig struct {
	Capacity        float64
	RefillPerSecond float64
}

const (
	VaultBackendEnv  = "env"
	VaultBackendBolt = "bolt"
)

type VaultConfig struct {
	Backend string
	Path    string
	Prefix  string
}

type AIConfig struct {
	Provider       string
	Model          string
	APIKey         string
	APIKeyEnvVar   string
	BaseURL        string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

type ObservabilityConfig struct {
	ListenAddress string
}
