package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"atomd/internal/domain"
)

type PrometheusMetrics struct {
	invocationDuration  *prometheus.HistogramVec
	invocations         *prometheus.CounterVec
	cacheProbes         *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec
	retryAttempts       *prometheus.HistogramVec
	policyDenials       *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		invocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atomd_invocation_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool", "code"},
		),
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomd_invocations_total",
				Help: "Total number of tool invocations by outcome and source",
			},
			[]string{"tool", "code", "source"},
		),
		cacheProbes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomd_cache_probes_total",
				Help: "Total number of cache probes for cacheable tools",
			},
			[]string{"tool", "result"},
		),
		rateLimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomd_rate_limit_rejections_total",
				Help: "Total number of invocations rejected by a token bucket",
			},
			[]string{"limiter"},
		),
		retryAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atomd_retry_attempts",
				Help:    "Handler attempts consumed per invocation of retryable tools",
				Buckets: []float64{1, 2, 3, 4, 5},
			},
			[]string{"tool"},
		),
		policyDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomd_policy_denials_total",
				Help: "Total number of allowlist denials by identifier kind",
			},
			[]string{"kind"},
		),
	}
}

func (p *PrometheusMetrics) ObserveInvocation(tool string, code domain.ErrorCode, fromCache bool, duration time.Duration) {
	source := "live"
	if fromCache {
		source = "cache"
	}
	p.invocations.WithLabelValues(tool, string(code), source).Inc()
	p.invocationDuration.WithLabelValues(tool, string(code)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCacheProbe(tool string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheProbes.WithLabelValues(tool, result).Inc()
}

func (p *PrometheusMetrics) ObserveRateLimitRejection(limiterID string) {
	p.rateLimitRejections.WithLabelValues(limiterID).Inc()
}

func (p *PrometheusMetrics) ObserveRetryAttempts(tool string, attempts int) {
	p.retryAttempts.WithLabelValues(tool).Observe(float64(attempts))
}

func (p *PrometheusMetrics) ObservePolicyDenial(kind domain.IdentifierKind) {
	p.policyDenials.WithLabelValues(string(kind)).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
