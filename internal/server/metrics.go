package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_http_requests_total",
		Help: "HTTP requests by method, route pattern, and status code.",
	}, []string{"method", "pattern", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settleup_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "pattern"})

	expensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_expenses_created_total",
		Help: "Expenses successfully recorded.",
	})

	// ledgerIntegrityAlarms counts UnbalancedLedger failures: stored shares
	// that no longer sum to their expense total. Any increment here means
	// corrupted data and deserves paging, not retrying.
	ledgerIntegrityAlarms = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_ledger_integrity_alarms_total",
		Help: "Balance computations that found an unbalanced ledger.",
	})
)

func observeRequest(method, pattern string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, pattern).Observe(duration.Seconds())
}
