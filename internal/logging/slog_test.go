package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "dbg", lines[0]["msg"])
	assert.Equal(t, float64(1), lines[0]["a"])

	assert.Equal(t, "INFO", lines[1]["level"])
	assert.Equal(t, "WARN", lines[2]["level"])
	assert.Equal(t, "ERROR", lines[3]["level"])
	assert.Equal(t, float64(4), lines[3]["d"])
}

func TestSlogLogger_WithAddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("component", "sync", "device", "dev-1")
	child.Info(context.Background(), "push applied", "count", 3)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "sync", lines[0]["component"])
	assert.Equal(t, "dev-1", lines[0]["device"])
	assert.Equal(t, float64(3), lines[0]["count"])

	// The parent logger is unchanged.
	log.Info(context.Background(), "plain")
	lines = decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[1], "component")
}
