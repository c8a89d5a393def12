package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
		AddSource:   false,
	}

	InitLoggerWithWriter(config, &buf)

	Info("test message", "key", "value", "number", 42)

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	assert.Equal(t, "test-service", logEntry["service"])
	assert.Equal(t, "1.0.0", logEntry["version"])
	assert.Equal(t, "test", logEntry["environment"])
	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "value", logEntry["key"])
}

func TestFromContextCarriesRunIDAndJob(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "info", Format: "json"}, &buf)

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithJobName(ctx, "auto-finalize")

	FromContext(ctx).Info("iteration complete")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	assert.Equal(t, "run-123", logEntry["run_id"])
	assert.Equal(t, "auto-finalize", logEntry["job"])
}

func TestRunIDRoundTrip(t *testing.T) {
	id := GenerateRunID()
	assert.NotEmpty(t, id)

	ctx := WithRunID(context.Background(), id)
	got, ok := RunIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = RunIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestLogLevelParsing(t *testing.T) {
	assert.Equal(t, "DEBUG", Config{Level: "debug"}.LogLevel().String())
	assert.Equal(t, "WARN", Config{Level: "warning"}.LogLevel().String())
	assert.Equal(t, "INFO", Config{Level: "bogus"}.LogLevel().String())
}
