package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the contact collection.
var (
	contactsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contactbook_active_contacts",
			Help: "Number of contacts in the active collection",
		},
	)

	deletesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contactbook_pending_deletions",
			Help: "Number of deletions awaiting undo-window expiry (0 or 1)",
		},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactbook_operations_total",
			Help: "Total number of collection operations by outcome",
		},
		[]string{"operation", "result"},
	)
)
