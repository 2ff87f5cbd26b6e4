// Package observability holds prometheus collectors and OpenTelemetry tracing setup.
package observability

import (
	"time"

	"docvault/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationSubmissions counts submit attempts by outcome code ("ok" on success).
	RegistrationSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_registration_submissions_total",
		Help: "Total registration submissions by outcome",
	}, []string{"outcome"})

	// RegistrationDecisions counts administrator decisions by decision and outcome.
	RegistrationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_registration_decisions_total",
		Help: "Total registration decisions by decision and outcome",
	}, []string{"decision", "outcome"})

	// AccountsProvisioned counts accounts created from approved requests.
	AccountsProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_accounts_provisioned_total",
		Help: "Total accounts provisioned from approved registration requests",
	})

	// AuthenticationFailures counts failed logins by differentiated reason.
	AuthenticationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_authentication_failures_total",
		Help: "Total failed authentications by reason",
	}, []string{"reason"})

	// AuditWriteFailures counts audit records that could not be written.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_audit_write_failures_total",
		Help: "Total audit records that failed to persist",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docvault_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketBackpressureDrops counts messages dropped due to slow websocket clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Outcome returns the metric label for err: "ok" for nil, otherwise the error code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := models.AsAppError(err); ok {
		return appErr.Code
	}
	return models.CodeInternal
}
