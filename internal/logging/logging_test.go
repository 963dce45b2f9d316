package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("warn", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "records", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, 3, entry["records"])
}

func TestNewTextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("debug", FormatText, &buf)
	require.NoError(t, err)

	logger.Debug("computed day", "busy_slots", 2)
	assert.Contains(t, buf.String(), "msg=\"computed day\"")
	assert.Contains(t, buf.String(), "busy_slots=2")
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	t.Parallel()

	_, err := New("loud", FormatJSON, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", Format("xml"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, logger, FromContextOr(ctx, nil))

	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOr(context.Background(), nil))

	assert.Equal(t, ctx, ContextWithLogger(ctx, nil))
}
