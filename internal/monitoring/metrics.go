package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts reservation attempts by terminal outcome
	// (success, insufficient_seats, slot_not_open, duplicate_booking,
	// quota_exceeded, host_suspended, event_not_found, invalid_price, error).
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SeatRollbacksTotal counts compensating seat releases. A failed
	// rollback leaves the seat counter short until operators intervene,
	// so failures get their own series.
	SeatRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_rollbacks_total",
			Help: "Compensating seat releases by result",
		},
		[]string{"result"},
	)

	// ReserveConflictsTotal counts conditional updates lost to a
	// concurrent reserver.
	ReserveConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reserve_conflicts_total",
			Help: "Conditional reserve attempts that lost the seat race",
		},
	)

	// SideEffectFailuresTotal counts best-effort side effects that failed
	// (passes, email, host_notify, publish).
	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "side_effect_failures_total",
			Help: "Failed fire-and-forget side effects by effect",
		},
		[]string{"effect"},
	)

	// ReservationDuration observes the full admission-to-intent latency.
	ReservationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reservation_duration_seconds",
			Help:    "Duration of the reservation pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)
)
