package reminder

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date format used for start/end dates.
	// ISO dates compare lexicographically, so range queries use plain
	// string comparison.
	DateLayout = "2006-01-02"

	// SlotLayout is the 24-hour time-of-day format for dose slots
	SlotLayout = "15:04"
)

// ErrNotFound is returned when a reminder id does not exist
var ErrNotFound = errors.New("reminder not found")

// Reminder is a persisted medication dosing schedule for one user.
// Schedule fields are immutable after creation; only IsActive is toggled.
// Corrections require creating a replacement reminder.
type Reminder struct {
	ID           string `json:"id" gorm:"primaryKey"`
	UserID       string `json:"user_id" gorm:"index"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
	WithFood     bool   `json:"with_food,omitempty"`

	// Dose slots as "HH:MM" strings, serialized to a text column
	Times     []string `json:"times" gorm:"-"`
	TimesJSON string   `json:"-" gorm:"column:times_json;type:text"`

	// EndDate is computed from StartDate + DurationDays once at creation
	// and never recalculated
	DurationDays int    `json:"duration_days"`
	StartDate    string `json:"start_date" gorm:"index"`
	EndDate      string `json:"end_date" gorm:"index"`

	EmailNotification bool   `json:"email_notification"`
	NotificationEmail string `json:"notification_email,omitempty"`

	IsActive  bool      `json:"is_active" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidationError aggregates input validation failures. It is returned
// before any store mutation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid reminder: " + strings.Join(e.Errors, "; ")
}

// Validate checks the reminder's invariants
func (r *Reminder) Validate() error {
	var errs []string

	if len(strings.TrimSpace(r.MedicineName)) < 2 {
		errs = append(errs, "medicine name is required and must be at least 2 characters")
	}

	if len(r.Times) == 0 {
		errs = append(errs, "at least one timing is required")
	}
	for _, t := range r.Times {
		if _, err := time.Parse(SlotLayout, t); err != nil {
			errs = append(errs, fmt.Sprintf("invalid time format: %s, use HH:MM", t))
		}
	}

	if r.DurationDays <= 0 {
		errs = append(errs, "duration must be a positive number of days")
	}

	if _, err := time.Parse(DateLayout, r.StartDate); err != nil {
		errs = append(errs, fmt.Sprintf("invalid start date: %s, use YYYY-MM-DD", r.StartDate))
	}

	if r.EmailNotification && r.NotificationEmail == "" {
		errs = append(errs, "email is required if notifications are enabled")
	}
	if r.NotificationEmail != "" {
		if _, err := mail.ParseAddress(r.NotificationEmail); err != nil {
			errs = append(errs, "invalid email format")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// DoseSlot is one scheduled dose on a given day, used by the daily
// schedule view
type DoseSlot struct {
	ReminderID   string `json:"reminder_id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Time         string `json:"time"`
	Frequency    string `json:"frequency"`
	WithFood     bool   `json:"with_food"`
	Instructions string `json:"instructions,omitempty"`
	Taken        bool   `json:"taken"`
}
