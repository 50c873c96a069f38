package reminder

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func setupTestStore(t *testing.T) *Store {
	store, err := NewStore(setupTestDB(t))
	require.NoError(t, err)
	return store
}

func validReminder() *Reminder {
	return &Reminder{
		UserID:       "user_123",
		MedicineName: "Lisinopril",
		Dosage:       "10mg",
		Frequency:    "twice daily",
		Times:        []string{"20:00", "08:00"},
		DurationDays: 5,
		StartDate:    time.Now().Format(DateLayout),
	}
}

func TestStore_CreateComputesEndDate(t *testing.T) {
	store := setupTestStore(t)

	r := validReminder()
	r.StartDate = "2026-03-01"
	r.DurationDays = 5

	require.NoError(t, store.Create(r))
	assert.NotEmpty(t, r.ID)
	assert.True(t, r.IsActive)
	assert.Equal(t, "2026-03-06", r.EndDate)

	// End date must be stable across reads
	got, err := store.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-06", got.EndDate)
	assert.Equal(t, []string{"08:00", "20:00"}, got.Times)
}

func TestStore_CreateValidation(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name   string
		mutate func(r *Reminder)
	}{
		{"short name", func(r *Reminder) { r.MedicineName = "X" }},
		{"no times", func(r *Reminder) { r.Times = nil }},
		{"bad time format", func(r *Reminder) { r.Times = []string{"8 o'clock"} }},
		{"zero duration", func(r *Reminder) { r.DurationDays = 0 }},
		{"negative duration", func(r *Reminder) { r.DurationDays = -3 }},
		{"bad start date", func(r *Reminder) { r.StartDate = "03/01/2026" }},
		{"notification without email", func(r *Reminder) {
			r.EmailNotification = true
			r.NotificationEmail = ""
		}},
		{"bad email", func(r *Reminder) { r.NotificationEmail = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReminder()
			tt.mutate(r)

			err := store.Create(r)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.NotEmpty(t, verr.Errors)
		})
	}

	// Nothing was persisted
	all, err := store.ListAll("user_123")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_ListActiveAndAll(t *testing.T) {
	store := setupTestStore(t)

	r1 := validReminder()
	require.NoError(t, store.Create(r1))

	r2 := validReminder()
	r2.MedicineName = "Metformin"
	require.NoError(t, store.Create(r2))
	require.NoError(t, store.SetActive(r2.ID, false))

	active, err := store.ListActive("user_123")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Lisinopril", active[0].MedicineName)

	all, err := store.ListAll("user_123")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Other users see nothing
	other, err := store.ListAll("user_456")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_SetActiveNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.SetActive("missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.Delete("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)

	r := validReminder()
	require.NoError(t, store.Create(r))
	require.NoError(t, store.Delete(r.ID))

	_, err := store.Get(r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListDueCandidates(t *testing.T) {
	store := setupTestStore(t)

	base := func() *Reminder {
		r := validReminder()
		r.StartDate = "2026-03-01"
		r.DurationDays = 10
		r.EmailNotification = true
		r.NotificationEmail = "patient@example.com"
		return r
	}

	matching := base()
	require.NoError(t, store.Create(matching))

	noEmail := base()
	noEmail.MedicineName = "Metformin"
	noEmail.EmailNotification = false
	noEmail.NotificationEmail = ""
	require.NoError(t, store.Create(noEmail))

	inactive := base()
	inactive.MedicineName = "Aspirin"
	require.NoError(t, store.Create(inactive))
	require.NoError(t, store.SetActive(inactive.ID, false))

	tests := []struct {
		name string
		date string
		slot string
		want int
	}{
		{"match at start date", "2026-03-01", "08:00", 1},
		{"match at end date", "2026-03-11", "20:00", 1},
		{"wrong slot", "2026-03-05", "08:01", 0},
		{"before start", "2026-02-28", "08:00", 0},
		{"after end", "2026-03-12", "08:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, err := store.ListDueCandidates(tt.date, tt.slot)
			require.NoError(t, err)
			assert.Len(t, due, tt.want)
			if tt.want == 1 {
				assert.Equal(t, matching.ID, due[0].ID)
			}
		})
	}
}
