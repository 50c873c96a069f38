package reminder

import (
	"time"

	"go.uber.org/zap"
)

// Detector finds reminders due at a given wall-clock instant. A dose is
// due for the entire minute its slot names; seconds are not considered
// and no tolerance window is applied.
type Detector struct {
	store  *Store
	logger *zap.Logger
}

// NewDetector creates a new due-reminder detector
func NewDetector(store *Store, logger *zap.Logger) *Detector {
	return &Detector{store: store, logger: logger}
}

// FindDue returns reminders whose configured times match now, truncated
// to minute resolution
func (d *Detector) FindDue(now time.Time) ([]Reminder, error) {
	date := now.Format(DateLayout)
	slot := now.Format(SlotLayout)

	due, err := d.store.ListDueCandidates(date, slot)
	if err != nil {
		return nil, err
	}

	if len(due) > 0 {
		d.logger.Info("Found due reminders",
			zap.Int("count", len(due)),
			zap.String("slot", slot),
		)
	}

	return due, nil
}
