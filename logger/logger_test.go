package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRedactsSensitiveKeys(t *testing.T) {
	got := sanitizeKeyvals([]any{
		"api_key", "sk-secret",
		"token", "123:abc",
		"maxTokens", 4096,
		"Authorization", "Bearer x",
		"conn", "web:1",
	})

	assert.Equal(t, []any{
		"api_key", "[REDACTED]",
		"token", "[REDACTED]",
		"maxTokens", 4096,
		"Authorization", "[REDACTED]",
		"conn", "web:1",
	}, got)
}

func TestSanitizeOddArgs(t *testing.T) {
	assert.Equal(t, []any{"dangling", "(missing)"}, sanitizeKeyvals([]any{"dangling"}))
	assert.Empty(t, sanitizeKeyvals(nil))
}

func TestSetOutputAndLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(func() { SetOutput(os.Stderr, "info") })

	Info("hidden message")
	Warn("visible message", "token", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "token=[REDACTED]")
	assert.NotContains(t, out, "abc")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { SetOutput(os.Stderr, "info") })

	require.NoError(t, Init(Config{Enabled: true, Level: "debug", Format: "json", File: "logs/test.log"}, dir))
	Debug("written to file", "conn", "web:1")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"conn":"web:1"`)
}

func TestInitDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(os.Stderr, "info") })

	require.NoError(t, Init(Config{Enabled: false}, t.TempDir()))
	Error("dropped")
	assert.Empty(t, buf.String())
}

func TestColorHandler(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	h := newHandler("pretty", &buf, slog.LevelInfo, nil)
	l := slog.New(h).With("conn", "web:1").WithGroup("task")

	l.Debug("skipped")
	l.Warn("slow client", "buffer", 256)

	line := strings.TrimSpace(buf.String())
	assert.NotContains(t, line, "skipped")
	assert.Contains(t, line, "WRN slow client")
	assert.Contains(t, line, "conn=web:1")
	assert.Contains(t, line, "task.buffer=256")
}
