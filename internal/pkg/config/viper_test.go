package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
modules:
  auth:
    otp_ttl_minutes: 5
    session_ttl_days: 7
    lockout_threshold: 5
    password: from-file
  jarvis:
    policies: "admin:*:*, service:*:* ,,"
server:
  read_timeout: 15
instrument:
  trace_sample_ratio: 0.25
`

func TestNewViperFromBytes(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		// Act
		cfg, err := NewViperFromBytes(" ", []byte(sampleYAML))

		// Assert
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrConfigType)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		// Act
		_, err := NewViperFromBytes("yaml", []byte("modules: [unclosed"))

		// Assert
		assert.Error(t, err)
	})
}

func TestViperGetters(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 5*time.Minute, cfg.GetMinute("modules.auth.otp_ttl_minutes"))
	assert.Equal(t, 7*24*time.Hour, cfg.GetDay("modules.auth.session_ttl_days"))
	assert.Equal(t, 15*time.Second, cfg.GetSecond("server.read_timeout"))
	assert.Equal(t, 5, cfg.GetInt("modules.auth.lockout_threshold"))
	assert.Equal(t, int64(5), cfg.GetInt64("modules.auth.lockout_threshold"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.False(t, cfg.GetBool("modules.auth.enabled"))
	assert.Equal(t, []string{"admin:*:*", "service:*:*"}, cfg.GetArray("modules.jarvis.policies"))
	assert.Empty(t, cfg.GetArray("modules.unknown"))
	assert.NoError(t, cfg.Close())
}

func TestViperEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("MODULES_AUTH_PASSWORD", "from-env")
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	// Act
	got := cfg.GetString("modules.auth.password")

	// Assert
	assert.Equal(t, "from-env", got)
}
