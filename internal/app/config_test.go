package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 6543, cfg.Database.Postgres.Port)
	require.Equal(t, "notifeed", cfg.Database.Postgres.Database)
	require.Equal(t, "notifeed", cfg.Database.Postgres.Username)
	require.Equal(t, "secret", cfg.Database.Postgres.Password)

	require.Equal(t, 50, cfg.Notifications.FeedLimit)
	require.Equal(t, 14, cfg.Notifications.RetentionDays)
	require.Equal(t, "@hourly", cfg.Notifications.SweepSchedule)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.Equal(t, "https://feed.example.com", cfg.Panel.BaseURL)
	require.Equal(t, "user-42", cfg.Panel.UserID)
	require.Equal(t, 30*time.Second, cfg.Panel.PollInterval)
	require.Equal(t, 7, cfg.Panel.VisibleRows)
	require.Equal(t, 5*time.Second, cfg.Panel.RequestTimeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 25, cfg.Notifications.FeedLimit)
	require.Equal(t, 30, cfg.Notifications.RetentionDays)
	require.Equal(t, "@daily", cfg.Notifications.SweepSchedule)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, 60*time.Second, cfg.Panel.PollInterval)
	require.Equal(t, 5, cfg.Panel.VisibleRows)
	require.Equal(t, 10*time.Second, cfg.Panel.RequestTimeout)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("NOTIFEED_SERVER_PORT", "9001")
	t.Setenv("NOTIFEED_PANEL_POLL_INTERVAL", "15s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Panel.PollInterval)
}
