package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line: %s", line)
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_WritesFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "debug")

	logger.Info("fetched", logging.Field{Key: "status", Value: 200}, logging.Field{Key: "error", Value: errors.New("boom")})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "info", lines[0]["level"])
	require.Equal(t, "fetched", lines[0]["message"])
	require.EqualValues(t, 200, lines[0]["status"])
	require.Equal(t, "boom", lines[0]["error"])
}

func TestZerologLogger_LevelFilters(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "shown", lines[0]["message"])
}

func TestZerologLogger_WithCarriesFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "info").With(logging.Field{Key: "component", Value: "view"})

	logger.Error("render")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "view", lines[0]["component"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}
