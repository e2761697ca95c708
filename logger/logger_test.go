package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		in  []interface{}
		out map[string]interface{}
	}{
		{[]interface{}{"key", "value"}, map[string]interface{}{"key": "value"}},
		{[]interface{}{"this is a message"}, map[string]interface{}{"extra": "this is a message"}},
		{[]interface{}{"key", "value", "message"}, map[string]interface{}{"key": "value", "extra": "message"}},
		{[]interface{}{"count", 1}, map[string]interface{}{"count": float64(1)}},
		{[]interface{}{"error", errors.New("boom")}, map[string]interface{}{"error": "boom"}},
		{[]interface{}{}, map[string]interface{}{}},
	}

	for _, tt := range tests {
		entry := testInfo(t, "message", tt.in...)
		assert.Equal(t, "message", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		for k, v := range tt.out {
			assert.Equal(t, v, entry[k], "field %q", k)
		}
	}
}

func TestLogger_Crit(t *testing.T) {
	b := new(bytes.Buffer)
	l := logrus.New()
	l.SetOutput(b)
	l.SetFormatter(&logrus.JSONFormatter{})

	New(l).Crit(context.Background(), "tampered", "key", "value")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, true, entry["crit"])
}

func TestNoLoggerInContext(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(context.Background(), "message", "key", "value")
	})
}

func TestNewFromLevel(t *testing.T) {
	l := NewFromLevel("debug").(*logger)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = NewFromLevel("nonsense").(*logger)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func testInfo(t *testing.T, msg string, pairs ...interface{}) map[string]interface{} {
	b := new(bytes.Buffer)
	l := logrus.New()
	l.SetOutput(b)
	l.SetFormatter(&logrus.JSONFormatter{})

	ctx := WithLogger(context.Background(), New(l))
	Info(ctx, msg, pairs...)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &entry))
	return entry
}
