package domain

const (
	DefaultCacheTTLSeconds       = 300
	DefaultRetryMaxAttempts      = 3
	DefaultRetryBaseDelaySeconds = 1
	DefaultRateLimitCapacity     = 10.0
	DefaultRateLimitRefill       = 0.5
	DefaultInvokeTimeoutSeconds  = 30
	DefaultHTTPTimeoutSeconds    = 30
	DefaultAITimeoutSeconds      = 60

	DefaultAIProvider    = "openai"
	DefaultAIModel       = "gpt-4o-mini"
	DefaultAIMaxTokens   = 1000
	DefaultAITemperature = 0.7

	DefaultVaultBackend   = "env"
	DefaultVaultEnvPrefix = "ATOMD_SECRET_"

	DefaultObservabilityListenAddress = "0.0.0.0:9090"
)
