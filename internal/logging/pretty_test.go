package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Handle WARN level log", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelWarn, "words left unplaced", 0)
		record.AddAttrs(slog.Int("unplaced", 2))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "WARN:")
		assert.Contains(t, output, "words left unplaced")
		assert.Contains(t, output, "unplaced")
		assert.Contains(t, output, "2")
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0)

		assert.NoError(t, handler.Handle(ctx, record))
		assert.Contains(t, buf.String(), "INFO:")
		assert.Contains(t, buf.String(), "{}")
	})

	t.Run("WithAttrs carries attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{})).With("puzzle", "abc")

		logger.Info("puzzle created")

		assert.Contains(t, buf.String(), "puzzle created")
		assert.Contains(t, buf.String(), "abc")
	})
}

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
