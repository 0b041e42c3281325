package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerMasksSensitiveFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := newLogger(&buf, "jarvisgate", nil, []string{"password", "otpToken", " "})
	ctx := SetCorrelationID(context.Background(), "cid-1")

	// Act
	logger.InfoContext(ctx, "request",
		"password", "open-sesame",
		"body", `{"password":"open-sesame","nested":{"otptoken":"abc"},"otp":"482913"}`,
		"raw", []byte(`[{"password":"x"}]`),
		"path", "/api/v1/auth/login",
	)

	// Assert
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "***", line["password"])
	assert.JSONEq(t, `{"password":"***","nested":{"otptoken":"***"},"otp":"482913"}`, line["body"].(string))
	assert.JSONEq(t, `[{"password":"***"}]`, line["raw"].(string))
	assert.Equal(t, "/api/v1/auth/login", line["path"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "jarvisgate", line["service"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Contains(t, line["file"], "internal/pkg/instrument/logging_test.go:")
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNewDisabledIsNoop(t *testing.T) {
	// Act
	ins, err := New(context.Background(), Config{Enabled: false, ServiceName: "test"})

	// Assert
	require.NoError(t, err)
	_, span := ins.Tracer("test").Start(context.Background(), "span")
	span.End()
	assert.NoError(t, ins.Shutdown(context.Background()))
}
