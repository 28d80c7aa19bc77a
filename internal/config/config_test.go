package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.App.Env)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, 180, cfg.Reminder.FeedingThreshold)
	assert.Equal(t, time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, "granted", cfg.Reminder.Permission)
	assert.Equal(t, time.Second, cfg.Timer.TickInterval)
	assert.Equal(t, 2*time.Hour, cfg.Reminder.SessionMaxAge)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("BABYLOG_REMINDER_FEEDING_THRESHOLD", "150")
	t.Setenv("BABYLOG_DB_PATH", "/tmp/baby.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Reminder.FeedingThreshold)
	assert.Equal(t, "/tmp/baby.db", cfg.DB.Path)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  env: dev
reminder:
  feeding_threshold: 120
  interval: 30s
metrics:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Development, cfg.App.Env)
	assert.Equal(t, 120, cfg.Reminder.FeedingThreshold)
	assert.Equal(t, 30*time.Second, cfg.Reminder.Interval)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("BABYLOG_APP_ENV", "staging")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrConfigNotLoaded)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("BABYLOG_REMINDER_INTERVAL", "0s")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrConfigNotLoaded)
	assert.Panics(t, func() { MustLoad("") })
}
