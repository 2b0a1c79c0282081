// Package metrics defines the Prometheus collectors exposed on /metrics.
// Counters are registered with the default registry so the promhttp
// handler picks them up without extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts successfully committed bookings (one per
	// slot, so a two-slot request counts twice).
	ReservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyroom_reservations_total",
		Help: "Number of booked slots committed.",
	})

	// CancellationsTotal counts successfully cancelled bookings.
	CancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyroom_cancellations_total",
		Help: "Number of bookings cancelled.",
	})

	// RejectionsTotal counts admission rejections by reason.
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyroom_rejections_total",
		Help: "Number of rejected reservation requests by reason.",
	}, []string{"reason"})

	// TxRetries counts ledger transaction retries after lock conflicts.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyroom_tx_retries_total",
		Help: "Number of ledger transactions retried after a lock conflict.",
	})
)
