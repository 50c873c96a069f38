package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store handles reminder persistence
type Store struct {
	db *gorm.DB
}

// NewStore creates a new reminder store
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	if err := db.AutoMigrate(&Reminder{}); err != nil {
		return nil, fmt.Errorf("failed to migrate reminder schema: %w", err)
	}

	return store, nil
}

// Create validates the reminder, computes its end date and persists it.
// The end date is computed exactly once; schedule fields are never
// updated afterwards.
func (s *Store) Create(r *Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.IsActive = true
	r.CreatedAt = time.Now()

	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return &ValidationError{Errors: []string{fmt.Sprintf("invalid start date: %s", r.StartDate)}}
	}
	r.EndDate = start.AddDate(0, 0, r.DurationDays).Format(DateLayout)

	sort.Strings(r.Times)
	serializeTimes(r)

	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// Get retrieves a reminder by ID
func (s *Store) Get(id string) (*Reminder, error) {
	var r Reminder
	err := s.db.Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	deserializeTimes(&r)
	return &r, nil
}

// ListActive lists a user's active reminders, newest first
func (s *Store) ListActive(userID string) ([]Reminder, error) {
	return s.list(s.db.Where("user_id = ? AND is_active = ?", userID, true))
}

// ListAll lists all of a user's reminders regardless of active state
func (s *Store) ListAll(userID string) ([]Reminder, error) {
	return s.list(s.db.Where("user_id = ?", userID))
}

func (s *Store) list(query *gorm.DB) ([]Reminder, error) {
	var reminders []Reminder
	if err := query.Order("created_at DESC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	for i := range reminders {
		deserializeTimes(&reminders[i])
	}
	return reminders, nil
}

// ListForDate lists a user's active reminders whose date range covers the
// given date, used for the daily schedule view
func (s *Store) ListForDate(userID, date string) ([]Reminder, error) {
	return s.list(s.db.Where(
		"user_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?",
		userID, true, date, date,
	))
}

// ListDueCandidates returns active reminders with email notifications
// enabled whose date range covers date and whose times include slot.
// Matching is exact string equality on the "HH:MM" slot.
func (s *Store) ListDueCandidates(date, slot string) ([]Reminder, error) {
	return s.list(s.db.Where(
		"is_active = ? AND email_notification = ? AND start_date <= ? AND end_date >= ? AND times_json LIKE ?",
		true, true, date, date, fmt.Sprintf("%%%q%%", slot),
	))
}

// SetActive toggles a reminder's active flag
func (s *Store) SetActive(id string, active bool) error {
	res := s.db.Model(&Reminder{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a reminder
func (s *Store) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&Reminder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func serializeTimes(r *Reminder) {
	if len(r.Times) > 0 {
		timesJSON, _ := json.Marshal(r.Times)
		r.TimesJSON = string(timesJSON)
	}
}

func deserializeTimes(r *Reminder) {
	if r.TimesJSON != "" {
		json.Unmarshal([]byte(r.TimesJSON), &r.Times)
	}
}
