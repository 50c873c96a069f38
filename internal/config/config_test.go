package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "medimate.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, filepath.Join(dataDir, "badger"), cfg.Storage.BadgerPath)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 60, cfg.Mail.RatePerMinute)
	assert.Equal(t, "UTC", cfg.Calendar.Timezone)
	assert.Equal(t, 30, cfg.Scheduler.DispatchTimeout)
	assert.Equal(t, 4, cfg.Scheduler.MaxConcurrent)
	assert.NotEmpty(t, cfg.Security.JWTSecret)

	assert.False(t, cfg.Mail.Enabled())
	assert.False(t, cfg.Calendar.Available())
}

func TestLoadFromFile(t *testing.T) {
	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "medimate.yaml")

	content := `
server:
  port: 9090
mail:
  username: reminders@example.com
  password: app-password
scheduler:
  max_concurrent: 8
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath, dataDir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Scheduler.MaxConcurrent)
	assert.True(t, cfg.Mail.Enabled())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MEDIMATE_SERVER_PORT", "3000")
	t.Setenv("MEDIMATE_MAIL_USERNAME", "reminders@example.com")
	t.Setenv("MEDIMATE_MAIL_PASSWORD", "app-password")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.True(t, cfg.Mail.Enabled())
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("MEDIMATE_SERVER_PORT", "-1")

	_, err := Load("", t.TempDir())
	assert.ErrorContains(t, err, "invalid server port")
}

func TestMailSenderFallsBackToUsername(t *testing.T) {
	m := MailConfig{Username: "reminders@example.com"}
	assert.Equal(t, "reminders@example.com", m.Sender())

	m.From = "MediMate <noreply@example.com>"
	assert.Equal(t, "MediMate <noreply@example.com>", m.Sender())
}

func TestCalendarAvailableNeedsAllCredentials(t *testing.T) {
	c := CalendarConfig{ClientID: "id", ClientSecret: "secret"}
	assert.False(t, c.Available())

	c.RefreshToken = "token"
	assert.True(t, c.Available())
}
