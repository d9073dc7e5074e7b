package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/lingua")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "https://api.zoom.us/v2", cfg.Zoom.APIURL)
	assert.False(t, cfg.Zoom.Enabled())

	hour, minute := cfg.Scheduler.DailyTime()
	assert.Equal(t, 6, hour)
	assert.Equal(t, 0, minute)

	day, hour, minute := cfg.Scheduler.WeeklyTime()
	assert.Equal(t, time.Sunday, day)
	assert.Equal(t, 5, hour)
	assert.Equal(t, 0, minute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/lingua")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SCHEDULER_DAILY_AT", "07:15")
	t.Setenv("SCHEDULER_WEEKLY_DAY", "sat")
	t.Setenv("ZOOM_ACCOUNT_ID", "acc")
	t.Setenv("ZOOM_CLIENT_ID", "id")
	t.Setenv("ZOOM_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.Zoom.Enabled())

	hour, minute := cfg.Scheduler.DailyTime()
	assert.Equal(t, 7, hour)
	assert.Equal(t, 15, minute)

	day, _, _ := cfg.Scheduler.WeeklyTime()
	assert.Equal(t, time.Saturday, day)
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoad_InvalidDailyTime(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/lingua")
	t.Setenv("SCHEDULER_DAILY_AT", "25:99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_DAILY_AT")
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]time.Weekday{
		"monday":  time.Monday,
		"Mon":     time.Monday,
		" SUNDAY": time.Sunday,
		"6":       time.Saturday,
		"0":       time.Sunday,
	}
	for in, want := range tests {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
	_, err = ParseWeekday("7")
	assert.Error(t, err)
}
