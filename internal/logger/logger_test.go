package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestNew_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Environment: "production"})

	l.Info("catalog ready", "genres", 3)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"), "production output should be JSON: %s", out)
	assert.Contains(t, out, `"msg":"catalog ready"`)
	assert.Contains(t, out, `"genres":3`)
}

func TestNew_DevelopmentUsesPretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Environment: "development"})

	l.Info("catalog ready", "genres", 3)

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"), "development output should not be JSON")
	assert.Contains(t, out, "catalog ready")
	assert.Contains(t, out, "genres=3")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatPretty, Level: slog.LevelWarn})

	l.Debug("not shown")
	l.Info("not shown either")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatPretty})

	l.With("request_id", "abc").WithGroup("genre").Info("created", "id", "genre-1")

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "genre.id=genre-1")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatPretty})

	l.WithError(assert.AnError).Error("lookup failed")

	require.Contains(t, buf.String(), "error="+assert.AnError.Error())
}
