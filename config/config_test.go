package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "traffic.db", c.DBPath)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, c.AllowedOrigins)
	assert.Equal(t, 10, c.KeepUploads)
	assert.Equal(t, attendance.DefaultParams(), c.Params)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	// GIVEN: environment settings
	t.Setenv("TRAFFIC_PORT", "9000")
	t.Setenv("TRAFFIC_DB", ":memory:")
	t.Setenv("TRAFFIC_LOG_FORMAT", "json")
	t.Setenv("TRAFFIC_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TRAFFIC_MERGE_INTERVAL", "15")
	t.Setenv("TRAFFIC_REFERENCE_MONTH", "earliest_date")

	// WHEN: a flag overrides one of them
	c, err := config.Load([]string{"-port", "9100", "-limit", "4"})

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 9100, c.Port, "flag wins")
	assert.Equal(t, ":memory:", c.DBPath)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, attendance.Params{
		MergeIntervalMinutes: 15,
		TrafficLimit:         4,
		ReferenceMonth:       attendance.EarliestDate,
	}, c.Params)
}

func TestLoad_ClampsParams(t *testing.T) {
	c, err := config.Load([]string{"-interval", "500", "-limit", "0"})
	require.NoError(t, err)
	assert.Equal(t, attendance.MaxMergeInterval, c.Params.MergeIntervalMinutes)
	assert.Equal(t, attendance.MinTrafficLimit, c.Params.TrafficLimit)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad env int", func(t *testing.T) {
		t.Setenv("TRAFFIC_PORT", "eighty")
		_, err := config.Load(nil)
		assert.ErrorContains(t, err, "TRAFFIC_PORT")
	})
	t.Run("bad level", func(t *testing.T) {
		_, err := config.Load([]string{"-log-level", "loud"})
		assert.Error(t, err)
	})
	t.Run("bad strategy", func(t *testing.T) {
		_, err := config.Load([]string{"-reference-month", "latest"})
		assert.Error(t, err)
	})
	t.Run("bad port", func(t *testing.T) {
		_, err := config.Load([]string{"-port", "0"})
		assert.Error(t, err)
	})
}
