package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authStore interface {
	GetLoginAttempt(ctx context.Context, key string) (*entity.LoginAttempt, error)
	IncrLoginFailure(ctx context.Context, key string, at time.Time, window time.Duration) (int64, error)
	BlockLogin(ctx context.Context, key string, until time.Time) error
	ResetLoginAttempt(ctx context.Context, key string) error
	SaveChallenge(ctx context.Context, ch entity.Challenge, ttl time.Duration) error
	GetChallenge(ctx context.Context) (*entity.Challenge, error)
	IncrChallengeAttempts(ctx context.Context) (int64, error)
	DeleteChallenge(ctx context.Context) error
}

var (
	_ authStore = (*Memory)(nil)
	_ authStore = (*Redis)(nil)
)

// testStoreContract checks behavior every store driver shares. now must be
// the current time of the store clock.
func testStoreContract(t *testing.T, s authStore, now time.Time) {
	ctx := context.Background()

	t.Run("login attempts count and reset", func(t *testing.T) {
		// Arrange
		key := "10.0.0.1"
		_, err := s.GetLoginAttempt(ctx, key)
		require.ErrorIs(t, err, goerror.ErrNotFound)

		// Act
		first, err1 := s.IncrLoginFailure(ctx, key, now, time.Minute)
		second, err2 := s.IncrLoginFailure(ctx, key, now.Add(time.Second), time.Minute)
		got, err3 := s.GetLoginAttempt(ctx, key)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.NoError(t, err3)
		assert.Equal(t, int64(1), first)
		assert.Equal(t, int64(2), second)
		assert.Equal(t, int64(2), got.Count)
		assert.Equal(t, now.Add(time.Second).UnixMilli(), got.LastFailureAt.UnixMilli())
		assert.True(t, got.BlockedUntil.IsZero())

		require.NoError(t, s.ResetLoginAttempt(ctx, key))
		_, err = s.GetLoginAttempt(ctx, key)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("failure outside the window starts over", func(t *testing.T) {
		key := "10.0.0.2"
		_, err := s.IncrLoginFailure(ctx, key, now.Add(-2*time.Minute), time.Hour)
		require.NoError(t, err)

		n, err := s.IncrLoginFailure(ctx, key, now, time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("block is stored", func(t *testing.T) {
		key := "10.0.0.3"
		until := now.Add(15 * time.Minute)
		_, err := s.IncrLoginFailure(ctx, key, now, 15*time.Minute)
		require.NoError(t, err)

		require.NoError(t, s.BlockLogin(ctx, key, until))
		got, err := s.GetLoginAttempt(ctx, key)

		require.NoError(t, err)
		assert.Equal(t, until.UnixMilli(), got.BlockedUntil.UnixMilli())
		assert.True(t, got.Blocked(now))
	})

	t.Run("addresses are independent", func(t *testing.T) {
		_, err := s.IncrLoginFailure(ctx, "10.0.0.4", now, time.Minute)
		require.NoError(t, err)

		_, err = s.GetLoginAttempt(ctx, "10.0.0.5")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("challenge lifecycle", func(t *testing.T) {
		// Arrange
		require.NoError(t, s.DeleteChallenge(ctx))
		_, err := s.GetChallenge(ctx)
		require.ErrorIs(t, err, goerror.ErrNotFound)
		expiresAt := now.Add(5 * time.Minute)

		// Act
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "h1", ExpiresAt: expiresAt}, 10*time.Minute))
		a1, err1 := s.IncrChallengeAttempts(ctx)
		a2, err2 := s.IncrChallengeAttempts(ctx)
		got, err3 := s.GetChallenge(ctx)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.NoError(t, err3)
		assert.Equal(t, int64(1), a1)
		assert.Equal(t, int64(2), a2)
		assert.Equal(t, "h1", got.TokenHash)
		assert.Equal(t, int64(2), got.Attempts)
		assert.Equal(t, expiresAt.UnixMilli(), got.ExpiresAt.UnixMilli())
	})

	t.Run("new challenge supersedes the previous one", func(t *testing.T) {
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "old"}, time.Minute))
		_, err := s.IncrChallengeAttempts(ctx)
		require.NoError(t, err)

		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "new"}, time.Minute))
		got, err := s.GetChallenge(ctx)

		require.NoError(t, err)
		assert.Equal(t, "new", got.TokenHash)
		assert.Equal(t, int64(0), got.Attempts)
	})

	t.Run("attempts never resurrect a deleted challenge", func(t *testing.T) {
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "h"}, time.Minute))
		require.NoError(t, s.DeleteChallenge(ctx))

		_, err := s.IncrChallengeAttempts(ctx)
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		_, err = s.GetChallenge(ctx)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("concurrent attempt increments are not lost", func(t *testing.T) {
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "h"}, time.Minute))

		var wg sync.WaitGroup
		for range 20 {
			wg.Go(func() {
				_, err := s.IncrChallengeAttempts(ctx)
				assert.NoError(t, err)
			})
		}
		wg.Wait()

		got, err := s.GetChallenge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(20), got.Attempts)
	})
}
