package adherence

import (
	"time"
)

// Dose statuses
const (
	StatusTaken   = "taken"
	StatusSkipped = "skipped"
)

// LogEntry records a user marking one dose slot taken or skipped.
// Entries are append-only and reference a reminder by medicine name
// rather than id: the name is a join key, not a foreign key, so history
// stays attributable when a reminder is replaced.
type LogEntry struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"index"`
	MedicineName  string    `json:"medicine_name" gorm:"index"`
	ScheduledTime string    `json:"scheduled_time"` // "HH:MM" dose slot
	Date          string    `json:"date" gorm:"index"` // "YYYY-MM-DD"
	Status        string    `json:"status"`
	ActualTime    string    `json:"actual_time,omitempty"` // set when taken
	Reason        string    `json:"reason,omitempty"`      // optional, when skipped
	Timestamp     time.Time `json:"timestamp"`
}

// MedicineStats is the per-medicine slice of an adherence report
type MedicineStats struct {
	MedicineName  string   `json:"medicine_name"`
	Dosage        string   `json:"dosage"`
	Times         []string `json:"times"`
	TotalDoses    int      `json:"total_doses"`
	TakenCount    int      `json:"taken_count"`
	MissedCount   int      `json:"missed_count"`
	AdherenceRate float64  `json:"adherence_rate"`
}

// Stats aggregates adherence over a trailing window
type Stats struct {
	TotalReminders int             `json:"total_reminders"`
	TotalDoses     int             `json:"total_doses"`
	TakenCount     int             `json:"taken_count"`
	MissedCount    int             `json:"missed_count"`
	AdherenceRate  float64         `json:"adherence_rate"`
	PeriodDays     int             `json:"period_days"`
	Details        []MedicineStats `json:"reminder_details"`
}
