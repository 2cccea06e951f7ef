package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Agenda engine metrics, exposed on /metrics.
var (
	SlotsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_slots_created_total",
			Help: "Slots created (single and batch)",
		},
	)

	SlotsMoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_slots_moved_total",
			Help: "Slots moved or resized",
		},
	)

	SlotsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_slots_deleted_total",
			Help: "Slots deleted",
		},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_bookings_created_total",
			Help: "Bookings created",
		},
	)

	BookingsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_bookings_deleted_total",
			Help: "Bookings deleted",
		},
	)

	ConflictsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_conflicts_rejected_total",
			Help: "Mutations rejected by the overlap check",
		},
		[]string{"operation"},
	)

	WeeksCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_weeks_copied_total",
			Help: "Target weeks filled by week replication",
		},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_operation_duration_seconds",
			Help:    "Engine operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
