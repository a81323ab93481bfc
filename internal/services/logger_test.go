package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSlogLogger_StructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, "gemchat", slog.LevelInfo, true)

	logger.Debug("hidden")
	logger.Info("chat created", "title", "Chat #1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "chat created", entry["msg"])
	require.Equal(t, "gemchat", entry["service"])
	require.Equal(t, "Chat #1", entry["title"])
	require.False(t, logger.Enabled(slog.LevelDebug))
}

func TestNewLogger_TestEnvIsSilent(t *testing.T) {
	_, ok := NewLogger("gemchat", "test", "").(*NoOpLogger)
	require.True(t, ok)
}
