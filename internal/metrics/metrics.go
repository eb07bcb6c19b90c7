// Package metrics registers the service's Prometheus collectors and exposes
// them over HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "careerops"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Language model calls by provider, operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	llmDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Language model call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider", "operation"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_total",
		Help:      "Tokens consumed by direction.",
	}, []string{"provider", "direction"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "llm_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	editOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edit_operations_total",
		Help:      "Edit session operations by kind and outcome.",
	}, []string{"operation", "outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Live resume sessions held in memory.",
	})
)

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveLLM records one model call.
func ObserveLLM(provider, operation string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	llmRequests.WithLabelValues(provider, operation, outcome).Inc()
	llmDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// AddTokens records token usage reported by a provider.
func AddTokens(provider string, input, output int64) {
	if input > 0 {
		llmTokens.WithLabelValues(provider, "input").Add(float64(input))
	}
	if output > 0 {
		llmTokens.WithLabelValues(provider, "output").Add(float64(output))
	}
}

// SetBreakerState publishes a breaker transition.
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveEdit records an apply, undo or redo.
func ObserveEdit(operation, outcome string) {
	editOperations.WithLabelValues(operation, outcome).Inc()
}

// SetActiveSessions publishes the live session count.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
