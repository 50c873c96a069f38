// Package metrics exposes prometheus collectors for the reminder engine
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchTotal counts notification dispatch outcomes by status
	// (sent, skipped, failed)
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medimate",
		Name:      "notification_dispatch_total",
		Help:      "Notification dispatch outcomes by status.",
	}, []string{"status"})

	// CyclesTotal counts scheduler detection-and-dispatch cycles
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medimate",
		Name:      "scheduler_cycles_total",
		Help:      "Completed scheduler cycles.",
	})

	// CycleDuration observes how long each scheduler cycle takes
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "medimate",
		Name:      "scheduler_cycle_duration_seconds",
		Help:      "Duration of scheduler detection-and-dispatch cycles.",
		Buckets:   prometheus.DefBuckets,
	})

	// RemindersDue reports how many reminders matched the last cycle
	RemindersDue = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "medimate",
		Name:      "reminders_due",
		Help:      "Reminders matched in the most recent cycle.",
	})

	// CalendarEventsCreated counts calendar events created at reminder
	// creation time
	CalendarEventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medimate",
		Name:      "calendar_events_created_total",
		Help:      "Calendar events created for reminder time slots.",
	})
)
