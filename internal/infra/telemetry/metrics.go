package telemetry

import (
	"time"

	"atomd/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveInvocation(_ string, _ domain.ErrorCode, _ bool, _ time.Duration) {}

func (n *NoopMetrics) ObserveCacheProbe(_ string, _ bool) {}

func (n *NoopMetrics) ObserveRateLimitRejection(_ string) {}

func (n *NoopMetrics) ObserveRetryAttempts(_ string, _ int) {}

func (n *NoopMetrics) ObservePolicyDenial(_ domain.IdentifierKind) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
