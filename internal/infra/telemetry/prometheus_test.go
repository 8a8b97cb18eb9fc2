package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atomd/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.invocationDuration)
	assert.NotNil(t, m.invocations)
	assert.NotNil(t, m.cacheProbes)
	assert.NotNil(t, m.rateLimitRejections)
	assert.NotNil(t, m.retryAttempts)
	assert.NotNil(t, m.policyDenials)
}

func TestPrometheusMetricsUsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveInvocation("http_request", domain.CodeOK, false, 10*time.Millisecond)
	m.ObserveInvocation("http_request", domain.CodeUnavailable, false, 50*time.Millisecond)
	m.ObserveCacheProbe("http_request", true)
	m.ObserveRateLimitRejection("ai_completion")
	m.ObserveRetryAttempts("http_request", 2)
	m.ObservePolicyDenial(domain.IdentifierDomain)

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, mf := range metrics {
		names = append(names, mf.GetName())
	}

	assert.Contains(t, names, "atomd_invocation_duration_seconds")
	assert.Contains(t, names, "atomd_invocations_total")
	assert.Contains(t, names, "atomd_cache_probes_total")
	assert.Contains(t, names, "atomd_rate_limit_rejections_total")
	assert.Contains(t, names, "atomd_retry_attempts")
	assert.Contains(t, names, "atomd_policy_denials_total")
}
