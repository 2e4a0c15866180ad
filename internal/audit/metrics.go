package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink failures never surface to the operation being audited; they are only
// visible here and in the logs.
var (
	appendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_audit_append_failures_total",
		Help: "Total number of audit events that failed to persist",
	})
	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_audit_events_dropped_total",
		Help: "Total number of audit events dropped because the async buffer was full",
	})
	eventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_audit_events_emitted_total",
		Help: "Total number of audit events accepted for persistence",
	})
)
