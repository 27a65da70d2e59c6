package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcomes.
const (
	OutcomeIdle     = "idle"
	OutcomeSkipped  = "unparsed"
	OutcomeRecorded = "recorded"
	OutcomeFailed   = "failed"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractbot_cycles_total",
		Help: "Ingestion cycles by outcome.",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contractbot_cycle_duration_seconds",
		Help:    "Duration of ingestion cycles, sleeps included.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	ContractsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contractbot_contracts_recorded_total",
		Help: "Contracts written to the ledger.",
	})

	CreditedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contractbot_credited_amount_total",
		Help: "Sum of credited amounts of recorded contracts.",
	})

	ExtractionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractbot_extraction_total",
		Help: "Successful composition extractions by source.",
	}, []string{"source"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractbot_notifications_total",
		Help: "Notification deliveries by result.",
	}, []string{"result"})
)
