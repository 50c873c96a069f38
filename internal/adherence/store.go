package adherence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store handles adherence log persistence. The log is append-only:
// there is no update or delete, and no uniqueness constraint on
// (user, medicine, date, slot) -- duplicate submissions are tolerated
// and show up in aggregation as-is.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new adherence log store
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	if err := db.AutoMigrate(&LogEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate adherence schema: %w", err)
	}

	return store, nil
}

// Append writes one log entry
func (s *Store) Append(entry *LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Timestamp = time.Now()

	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append adherence entry: %w", err)
	}
	return nil
}

// ListForUser returns a user's entries with date >= sinceDate
func (s *Store) ListForUser(userID, sinceDate string) ([]LogEntry, error) {
	var entries []LogEntry
	err := s.db.Where("user_id = ? AND date >= ?", userID, sinceDate).
		Order("date ASC, scheduled_time ASC").
		Find(&entries).Error
	return entries, err
}

// ListForDate returns a user's entries for one calendar date
func (s *Store) ListForDate(userID, date string) ([]LogEntry, error) {
	var entries []LogEntry
	err := s.db.Where("user_id = ? AND date = ?", userID, date).
		Find(&entries).Error
	return entries, err
}

// HasTaken reports whether a dose slot was marked taken
func (s *Store) HasTaken(userID, medicineName, date, slot string) (bool, error) {
	var count int64
	err := s.db.Model(&LogEntry{}).Where(
		"user_id = ? AND medicine_name = ? AND date = ? AND scheduled_time = ? AND status = ?",
		userID, medicineName, date, slot, StatusTaken,
	).Count(&count).Error
	return count > 0, err
}
