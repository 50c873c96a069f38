package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/metrics"
	"github.com/pharmez/medimate/internal/reminder"
)

// eventDuration is the blocked-out window for one dose slot
const eventDuration = 15 * time.Minute

// SyncResult reports how many per-slot events were created out of those
// attempted
type SyncResult struct {
	Total   int            `json:"total"`
	Created int            `json:"created"`
	Events  []CreatedEvent `json:"events,omitempty"`
}

// Sync creates recurring calendar events for a reminder's dose slots.
// It runs only at reminder-creation time, never on scheduler ticks.
type Sync struct {
	client *Client
	logger *zap.Logger
}

// NewSync creates a new calendar sync
func NewSync(client *Client, logger *zap.Logger) *Sync {
	return &Sync{client: client, logger: logger}
}

// Available reports whether the underlying client is configured
func (s *Sync) Available() bool {
	return s.client.Available()
}

// SyncReminder creates one recurring daily event per configured time
// slot, from the reminder's start date through its end date. A failure
// for one slot never blocks the attempts for the others.
func (s *Sync) SyncReminder(ctx context.Context, r *reminder.Reminder) SyncResult {
	result := SyncResult{Total: len(r.Times)}

	description := fmt.Sprintf("Take %s", r.Dosage)
	if r.Instructions != "" {
		description += "\n\nInstructions: " + r.Instructions
	}

	for _, slot := range r.Times {
		start, err := time.Parse(reminder.DateLayout+" "+reminder.SlotLayout, r.StartDate+" "+slot)
		if err != nil {
			s.logger.Warn("Skipping calendar event for invalid slot",
				zap.String("reminder_id", r.ID),
				zap.String("slot", slot),
				zap.Error(err),
			)
			continue
		}

		created, err := s.client.CreateDailyEvent(ctx,
			"Medication: "+r.MedicineName,
			description,
			start,
			start.Add(eventDuration),
			r.EndDate,
		)
		if err != nil {
			s.logger.Warn("Failed to create calendar event",
				zap.String("reminder_id", r.ID),
				zap.String("slot", slot),
				zap.Error(err),
			)
			continue
		}

		result.Created++
		result.Events = append(result.Events, *created)
		metrics.CalendarEventsCreated.Inc()
	}

	return result
}
