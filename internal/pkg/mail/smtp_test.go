package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Host: "localhost"})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
	require.NoError(t, err)
	assert.Equal(t, "localhost:1025", s.addr)
	assert.NoError(t, s.Close())
}

func TestSMTP_SendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = s.Send(context.Background(), Message{To: []string{"ops@example.com"}})
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestCompose(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		// Act
		raw := string(compose("gate@example.com", Message{
			To:       []string{"ops@example.com", "me@example.com"},
			Subject:  "Login locked",
			TextBody: "5 failed attempts",
		}))

		// Assert
		assert.Contains(t, raw, "From: gate@example.com\r\n")
		assert.Contains(t, raw, "To: ops@example.com, me@example.com\r\n")
		assert.Contains(t, raw, "Subject: Login locked\r\n")
		assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\n5 failed attempts\r\n")
	})

	t.Run("alternative parts", func(t *testing.T) {
		// Act
		raw := string(compose("gate@example.com", Message{
			To:       []string{"ops@example.com"},
			Subject:  "🔐 Code",
			TextBody: "code 482913",
			HTMLBody: "<b>482913</b>",
		}))

		// Assert
		assert.Contains(t, raw, "multipart/alternative; boundary=jarvisgate-")
		assert.Contains(t, raw, "Subject: =?utf-8?q?")
		assert.Equal(t, 1, strings.Count(raw, "text/plain"))
		assert.Equal(t, 1, strings.Count(raw, "text/html"))
	})
}
