package adherence

import (
	"math"
	"time"

	"github.com/pharmez/medimate/internal/reminder"
)

// Aggregator computes adherence statistics from the reminder and
// adherence log stores. It is stateless and read-only: identical inputs
// yield identical results, so it is safe to call concurrently.
type Aggregator struct {
	reminders *reminder.Store
	logs      *Store
}

// NewAggregator creates a new adherence aggregator
func NewAggregator(reminders *reminder.Store, logs *Store) *Aggregator {
	return &Aggregator{reminders: reminders, logs: logs}
}

// ComputeStats aggregates adherence for the trailing windowDays days.
// The per-medicine breakdown covers the user's active reminders; counts
// include every log entry in the window, duplicates included.
func (a *Aggregator) ComputeStats(userID string, windowDays int) (*Stats, error) {
	reminders, err := a.reminders.ListActive(userID)
	if err != nil {
		return nil, err
	}

	sinceDate := time.Now().AddDate(0, 0, -windowDays).Format(reminder.DateLayout)
	entries, err := a.logs.ListForUser(userID, sinceDate)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalReminders: len(reminders),
		PeriodDays:     windowDays,
		Details:        make([]MedicineStats, 0, len(reminders)),
	}

	for _, e := range entries {
		stats.TotalDoses++
		switch e.Status {
		case StatusTaken:
			stats.TakenCount++
		case StatusSkipped:
			stats.MissedCount++
		}
	}
	stats.AdherenceRate = rate(stats.TakenCount, stats.TotalDoses)

	for _, r := range reminders {
		med := MedicineStats{
			MedicineName: r.MedicineName,
			Dosage:       r.Dosage,
			Times:        r.Times,
		}
		for _, e := range entries {
			if e.MedicineName != r.MedicineName {
				continue
			}
			med.TotalDoses++
			switch e.Status {
			case StatusTaken:
				med.TakenCount++
			case StatusSkipped:
				med.MissedCount++
			}
		}
		med.AdherenceRate = rate(med.TakenCount, med.TotalDoses)
		stats.Details = append(stats.Details, med)
	}

	return stats, nil
}

// rate returns taken/total as a percentage rounded to one decimal place,
// and 0 when total is zero
func rate(taken, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(taken)/float64(total)*1000) / 10
}
