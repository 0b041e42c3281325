package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_PasswordCheck(t *testing.T) {
	t.Run("correct password issues and delivers a challenge", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		// Act
		out, err := h.login(t, testPassword)

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, out.OTPToken)
		assert.NotContains(t, out.OTPToken, "482913")
		assert.Equal(t, testEpoch.Add(5*time.Minute), out.ExpiresAt)
		assert.Equal(t, []string{"482913"}, h.delivery.codes)

		ch, err := h.store.GetChallenge(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), ch.Attempts)
		assert.Equal(t, out.ExpiresAt, ch.ExpiresAt)
	})

	t.Run("wrong password yields nothing", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		// Act
		out, err := h.login(t, "wrong")

		// Assert
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrInvalidCredential)
		assert.Empty(t, h.delivery.codes)
		_, err = h.store.GetChallenge(context.Background())
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("empty password counts as a failure", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		// Act
		_, err := h.login(t, "")

		// Assert
		assert.ErrorIs(t, err, ErrInvalidCredential)
		assertStatus(t, err, http.StatusUnauthorized)
		attempt, err := h.store.GetLoginAttempt(context.Background(), testIP)
		require.NoError(t, err)
		assert.Equal(t, int64(1), attempt.Count)
		assert.Empty(t, h.delivery.codes)
	})

	t.Run("expiry keeps sub second precision", func(t *testing.T) {
		h := newHarness(t)
		issued := testEpoch.Add(700 * time.Millisecond)
		h.clock.Set(issued)

		out, err := h.login(t, testPassword)

		require.NoError(t, err)
		assert.Equal(t, issued.Add(5*time.Minute), out.ExpiresAt)
	})

	t.Run("five failures lock the address for fifteen minutes", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		for i := range 5 {
			_, err := h.login(t, "wrong")
			require.ErrorIs(t, err, ErrInvalidCredential, "attempt %d", i+1)
		}

		// Act
		_, errLocked := h.login(t, testPassword)
		h.clock.Advance(15*time.Minute - time.Second)
		_, errStillLocked := h.login(t, testPassword)
		h.clock.Advance(time.Second)
		out, errAfter := h.login(t, testPassword)

		// Assert
		assert.ErrorIs(t, errLocked, ErrRateLimited)
		assert.ErrorIs(t, errStillLocked, ErrRateLimited)
		require.NoError(t, errAfter)
		assert.NotEmpty(t, out.OTPToken)

		require.Len(t, h.mq.locked, 1)
		assert.Equal(t, testIP, h.mq.locked[0].ClientKey)
		assert.Equal(t, int64(5), h.mq.locked[0].Failures)
		assert.Equal(t, testEpoch.Add(15*time.Minute), h.mq.locked[0].BlockedUntil)
	})

	t.Run("lockout is per address", func(t *testing.T) {
		h := newHarness(t)
		for range 5 {
			_, _ = h.login(t, "wrong")
		}

		out, err := h.uc.PasswordCheck(context.Background(), PasswordCheckInput{Password: testPassword, ClientIP: "198.51.100.1"})

		require.NoError(t, err)
		assert.NotEmpty(t, out.OTPToken)
	})

	t.Run("missing address shares the unknown bucket", func(t *testing.T) {
		h := newHarness(t)
		for range 5 {
			_, _ = h.uc.PasswordCheck(context.Background(), PasswordCheckInput{Password: "wrong"})
		}

		_, err := h.uc.PasswordCheck(context.Background(), PasswordCheckInput{Password: testPassword})

		assert.ErrorIs(t, err, ErrRateLimited)
		require.Len(t, h.mq.locked, 1)
		assert.Equal(t, "unknown", h.mq.locked[0].ClientKey)
	})

	t.Run("success resets the failure counter", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		_, _ = h.login(t, "wrong")
		_, _ = h.login(t, "wrong")
		h.mustLogin(t)

		// Act
		var errs []error
		for range 4 {
			_, err := h.login(t, "wrong")
			errs = append(errs, err)
		}
		_, err := h.login(t, testPassword)

		// Assert
		for _, e := range errs {
			assert.ErrorIs(t, e, ErrInvalidCredential)
		}
		assert.NoError(t, err)
		assert.Empty(t, h.mq.locked)
	})

	t.Run("failures far apart do not add up", func(t *testing.T) {
		h := newHarness(t)
		for range 4 {
			_, _ = h.login(t, "wrong")
		}
		h.clock.Advance(15 * time.Minute)

		_, err := h.login(t, "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredential)
		assert.Empty(t, h.mq.locked)
	})

	t.Run("failed delivery leaves no challenge", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		previous := h.mustLogin(t)
		h.delivery.err = errors.New("telegram down")

		// Act
		out, err := h.login(t, testPassword)

		// Assert
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		_, err = h.store.GetChallenge(context.Background())
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		_, err = h.verify(previous, "482913")
		assert.ErrorIs(t, err, ErrNoPendingChallenge)

		require.Len(t, h.mq.failed, 1)
		assert.Equal(t, "telegram", h.mq.failed[0].Channel)
		assert.Equal(t, "telegram down", h.mq.failed[0].Reason)
	})

	t.Run("concurrent issuance keeps only the last challenge", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		tokens := make([]string, 2)
		var wg sync.WaitGroup
		for i := range tokens {
			wg.Go(func() {
				out, err := h.login(t, testPassword)
				if assert.NoError(t, err) {
					tokens[i] = out.OTPToken
				}
			})
		}
		wg.Wait()

		// Act
		var succeeded int
		for _, tok := range tokens {
			if _, err := h.verify(tok, "482913"); err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrNoPendingChallenge)
			}
		}

		// Assert
		assert.Equal(t, 1, succeeded)
	})
}

func TestNewCredential(t *testing.T) {
	hmac, err := hash.NewHMACSHA256([]byte(testHMACKey))
	require.NoError(t, err)

	t.Run("plaintext", func(t *testing.T) {
		c, err := NewCredential("pw", "", "", hmac)

		require.NoError(t, err)
		assert.True(t, c.Match("pw"))
		assert.False(t, c.Match("pW"))
		assert.False(t, c.Match(""))
	})

	t.Run("bcrypt hash wins over plaintext", func(t *testing.T) {
		encoded, err := hash.NewBcrypt(4, "pepper").Hash("hashed-pw")
		require.NoError(t, err)

		c, err := NewCredential("plain-pw", string(encoded), "pepper", hmac)

		require.NoError(t, err)
		assert.True(t, c.Match("hashed-pw"))
		assert.False(t, c.Match("plain-pw"))
	})

	t.Run("argon2id hash", func(t *testing.T) {
		encoded, err := hash.NewArgon2id("").Hash("pw")
		require.NoError(t, err)

		c, err := NewCredential("", string(encoded), "", hmac)

		require.NoError(t, err)
		assert.True(t, c.Match("pw"))
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := NewCredential("", " ", "", hmac)

		assert.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("unknown hash format", func(t *testing.T) {
		_, err := NewCredential("", "md5:abc", "", hmac)

		assert.ErrorIs(t, err, hash.ErrUnknownFormat)
	})
}
