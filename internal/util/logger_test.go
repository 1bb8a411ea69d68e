package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferOutput collects rendered lines for assertions
type bufferOutput struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	inner Output
}

func newBufferOutput(format LogFormat) *bufferOutput {
	b := &bufferOutput{}
	b.inner = NewConsoleOutput(&b.buf, format)
	return b
}

func (b *bufferOutput) Write(entry LogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inner.Write(entry)
}

func (b *bufferOutput) Close() error { return nil }

func (b *bufferOutput) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(level LogLevel, format LogFormat) (*Logger, *bufferOutput) {
	out := newBufferOutput(format)
	logger := &Logger{level: level, fields: map[string]interface{}{}}
	logger.AddOutput(out)
	return logger, out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	logger, out := newTestLogger(LevelWarn, FormatText)

	logger.Info("hidden")
	logger.Warn("shown", F("subject", "AH"))
	logger.Errorf("failed %d", 3)

	text := out.String()
	assert.NotContains(t, text, "hidden")
	assert.Contains(t, text, "[WARN] shown subject=AH")
	assert.Contains(t, text, "[ERROR] failed 3")
}

func TestLoggerWithFields(t *testing.T) {
	logger, out := newTestLogger(LevelDebug, FormatText)

	child := logger.With(F("component", "store"))
	child.Debug("reloaded", F("events", 4))
	logger.Debug("plain")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=store events=4")
	assert.NotContains(t, lines[1], "component=store")
}

func TestLoggerJSONFormat(t *testing.T) {
	logger, out := newTestLogger(LevelInfo, FormatJSON)
	logger.Info("snapshot", F("version", 2))

	var entry LogEntry
	require.NoError(t, sonic.UnmarshalString(strings.TrimSpace(out.String()), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "snapshot", entry.Message)
	assert.EqualValues(t, 2, entry.Fields["version"])
}

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dose.log")

	logger, err := NewLogger("info", path, false, FormatText)
	require.NoError(t, err)
	logger.Info("written to file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewLoggerInvalidFile(t *testing.T) {
	_, err := NewLogger("info", filepath.Join(t.TempDir(), "missing", "dose.log"), false, FormatText)
	require.Error(t, err)
}

func TestGlobalLoggerAndWriter(t *testing.T) {
	logger, out := newTestLogger(LevelDebug, FormatText)
	SetLogger(logger)
	defer SetLogger(nil)

	LogInfof("hello %s", "world")
	LogWarn("careful")

	n, err := LogWriter(LevelInfo).Write([]byte("GET /health 200\nGET /stats 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 31, n)

	text := out.String()
	assert.Contains(t, text, "[INFO] hello world")
	assert.Contains(t, text, "[WARN] careful")
	assert.Contains(t, text, "[INFO] GET /health 200")
	assert.Contains(t, text, "[INFO] GET /stats 200")
}

func TestGlobalHelpersWithoutLogger(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		LogInfo("nothing")
		LogErrorf("nothing %d", 1)
		_, _ = LogWriter(LevelError).Write([]byte("x"))
	})
}

func TestComponentLogger(t *testing.T) {
	store := Component("store")

	// created before any logger is installed
	SetLogger(nil)
	assert.NotPanics(t, func() { store.Info("dropped") })

	logger, out := newTestLogger(LevelInfo, FormatText)
	SetLogger(logger)
	defer SetLogger(nil)

	store.Debug("below level")
	store.Warn("reload failed", F("path", "intakes.jsonl"))
	store.Errorf("watch error: %v", "boom")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN] reload failed")
	assert.Contains(t, lines[0], "component=store")
	assert.Contains(t, lines[0], "path=intakes.jsonl")
	assert.Contains(t, lines[1], "[ERROR] watch error: boom")
	assert.Contains(t, lines[1], "component=store")
}
