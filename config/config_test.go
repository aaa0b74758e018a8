package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Reminders.MedicationInterval)
	assert.Equal(t, 5*time.Minute, cfg.Reminders.AppointmentInterval)
	assert.Equal(t, 60, cfg.Reminders.AppointmentLeadMinutes)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, "reminders.db", cfg.Database.DSN)
	assert.NotNil(t, cfg.Reminders.Location)
}

func TestLoad_Overrides(t *testing.T) {
	body := `
reminders:
  timezone: "UTC"
  medication_interval_seconds: 30
  appointment_interval_seconds: 120
  appointment_lead_minutes: 90
worker_pool:
  size: 4
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, time.UTC, cfg.Reminders.Location)
	assert.Equal(t, 30*time.Second, cfg.Reminders.MedicationInterval)
	assert.Equal(t, 2*time.Minute, cfg.Reminders.AppointmentInterval)
	assert.Equal(t, 90, cfg.Reminders.AppointmentLeadMinutes)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
}

func TestLoad_BadTimezone(t *testing.T) {
	_, err := Load(writeConfig(t, "reminders:\n  timezone: \"Nowhere/Atlantis\"\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
