package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/logging"
)

func TestParseLevel(t *testing.T) {
	l, err := logging.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	l, err = logging.ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, slog.LevelInfo, "json")
	log.Debug("hidden")
	log.Info("upload published", "rows", 12)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "upload published", rec["msg"])
	assert.Equal(t, float64(12), rec["rows"])
}

func TestNew_TextFallback(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, slog.LevelDebug, "pretty").Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello k=v")
}
