package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogger(t *testing.T) {
	t.Run("TickIDFromContext", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "debug")

		ctx := WithTickID(context.Background(), "tick-1")
		log.Info(ctx, "tick completed", map[string]interface{}{"status": "HEALTHY"})

		line := decodeLine(t, &buf)
		assert.Equal(t, "tick-1", line["tick_id"])
		assert.Equal(t, "HEALTHY", line["status"])
		assert.Equal(t, "tick completed", line["message"])
	})

	t.Run("LevelFiltering", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "warn")

		log.Info(context.Background(), "should not be logged", nil)
		assert.Zero(t, buf.Len())

		log.Warn(context.Background(), "should be logged", nil)
		assert.NotZero(t, buf.Len())
	})

	t.Run("UnknownLevelFallsBackToInfo", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "loud")

		log.Debug(context.Background(), "hidden", nil)
		assert.Zero(t, buf.Len())

		log.Info(context.Background(), "shown", nil)
		assert.NotZero(t, buf.Len())
	})

	t.Run("ErrorField", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "info")

		log.Error(context.Background(), "sink failed", errors.New("connection refused"), nil)

		line := decodeLine(t, &buf)
		assert.Equal(t, "connection refused", line["error"])
		assert.Equal(t, "error", line["level"])
	})

	t.Run("NopIsSilent", func(t *testing.T) {
		log := Nop()
		assert.NotPanics(t, func() {
			log.Info(context.Background(), "ignored", map[string]interface{}{"k": 1})
		})
	})
}
