package violation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodia_violation_dispatch_total",
		Help: "Containment action dispatches, labeled by action and outcome",
	}, []string{"action", "outcome"})

	clientRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_violation_client_retries_total",
		Help: "Retried deliveries to containment collaborators",
	})
)
