package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadrouter_assignments_total",
		Help: "Leads auto-assigned to an attorney.",
	})

	OverflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadrouter_overflows_total",
		Help: "Leads routed to the overflow pool, by reason class.",
	}, []string{"reason"})

	EscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadrouter_escalations_total",
		Help: "Overflow entries escalated past their deadline.",
	})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadrouter_dispatch_duration_seconds",
		Help:    "End-to-end dispatch latency.",
		Buckets: prometheus.DefBuckets,
	})
)
