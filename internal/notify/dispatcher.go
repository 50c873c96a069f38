package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/metrics"
	"github.com/pharmez/medimate/internal/reminder"
)

// Status is the outcome of one dispatch attempt
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result carries the dispatch outcome. Err is set only for failed.
type Result struct {
	Status Status
	Reason string
	Err    error
}

// markerTTL bounds how long sent markers live; anything past the dose's
// own day is irrelevant
const markerTTL = 48 * time.Hour

// Dispatcher turns a due reminder into an outbound email. Sent markers
// in Badger make dispatch idempotent per (reminder, date, slot) across
// restarts within the marker TTL.
type Dispatcher struct {
	transport Transport
	markers   *badger.DB
	logger    *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(transport Transport, markers *badger.DB, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		markers:   markers,
		logger:    logger,
	}
}

// Dispatch sends a dose reminder for the matched slot. A disabled
// transport and an already-sent dose both yield skipped, never an error;
// transport failures yield failed with the error attached and are left
// to the caller to log and move past.
func (d *Dispatcher) Dispatch(ctx context.Context, r *reminder.Reminder, slot string) Result {
	if !d.transport.Enabled() {
		metrics.DispatchTotal.WithLabelValues(string(StatusSkipped)).Inc()
		return Result{Status: StatusSkipped, Reason: "mail transport disabled"}
	}

	date := time.Now().Format(reminder.DateLayout)
	key := markerKey(r.ID, date, slot)

	sent, err := d.hasMarker(key)
	if err != nil {
		d.logger.Warn("Failed to read sent marker", zap.Error(err))
	}
	if sent {
		metrics.DispatchTotal.WithLabelValues(string(StatusSkipped)).Inc()
		return Result{Status: StatusSkipped, Reason: "already sent"}
	}

	msg := Message{
		To:       r.NotificationEmail,
		Subject:  fmt.Sprintf("Reminder: Time for %s", r.MedicineName),
		HTMLBody: renderDoseReminder(r.MedicineName, r.Dosage, r.Instructions, slot),
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		metrics.DispatchTotal.WithLabelValues(string(StatusFailed)).Inc()
		return Result{Status: StatusFailed, Err: err}
	}

	if err := d.setMarker(key); err != nil {
		d.logger.Warn("Failed to write sent marker",
			zap.String("reminder_id", r.ID),
			zap.Error(err),
		)
	}

	metrics.DispatchTotal.WithLabelValues(string(StatusSent)).Inc()
	return Result{Status: StatusSent}
}

func markerKey(reminderID, date, slot string) []byte {
	return []byte("sent|" + reminderID + "|" + date + "|" + slot)
}

func (d *Dispatcher) hasMarker(key []byte) (bool, error) {
	err := d.markers.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) setMarker(key []byte) error {
	return d.markers.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, []byte{1}).WithTTL(markerTTL)
		return txn.SetEntry(entry)
	})
}
