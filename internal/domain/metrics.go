package domain

import "time"

// Metrics receives pipeline observations. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveInvocation(tool string, code ErrorCode, fromCache bool, duration time.Duration)
	ObserveCacheProbe(tool string, hit bool)
	ObserveRateLimitRejection(limiterID string)
	ObserveRetryAttempts(tool string, attempts int)
	ObservePolicyDenial(kind IdentifierKind)
}
