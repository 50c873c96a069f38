package adherence

import (
	"database/sql"
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

func entry(date, slot, status string) *LogEntry {
	return &LogEntry{
		UserID:        "user_123",
		MedicineName:  "Lisinopril",
		ScheduledTime: slot,
		Date:          date,
		Status:        status,
	}
}

func TestStore_Append(t *testing.T) {
	store := setupTestStore(t)

	e := entry("2026-03-05", "08:00", StatusTaken)
	e.ActualTime = "08:04"

	require.NoError(t, store.Append(e))
	assert.NotEmpty(t, e.ID)
	assert.WithinDuration(t, time.Now(), e.Timestamp, time.Minute)
}

func TestStore_ListForUserWindow(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Append(entry("2026-03-01", "08:00", StatusTaken)))
	require.NoError(t, store.Append(entry("2026-03-05", "08:00", StatusSkipped)))
	require.NoError(t, store.Append(entry("2026-03-09", "08:00", StatusTaken)))

	entries, err := store.ListForUser("user_123", "2026-03-05")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-03-05", entries[0].Date)
	assert.Equal(t, "2026-03-09", entries[1].Date)

	entries, err = store.ListForUser("user_456", "2026-03-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_HasTaken(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Append(entry("2026-03-05", "08:00", StatusTaken)))
	require.NoError(t, store.Append(entry("2026-03-05", "20:00", StatusSkipped)))

	taken, err := store.HasTaken("user_123", "Lisinopril", "2026-03-05", "08:00")
	require.NoError(t, err)
	assert.True(t, taken)

	// Skipped does not count as taken
	taken, err = store.HasTaken("user_123", "Lisinopril", "2026-03-05", "20:00")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = store.HasTaken("user_123", "Lisinopril", "2026-03-06", "08:00")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestStore_DuplicateEntriesTolerated(t *testing.T) {
	store := setupTestStore(t)

	// The store enforces no uniqueness on (user, medicine, date, slot);
	// re-logging the same dose appends a second entry
	require.NoError(t, store.Append(entry("2026-03-05", "08:00", StatusTaken)))
	require.NoError(t, store.Append(entry("2026-03-05", "08:00", StatusTaken)))

	entries, err := store.ListForDate("user_123", "2026-03-05")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
