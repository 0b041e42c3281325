package store

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMemory_Contract(t *testing.T) {
	testStoreContract(t, NewMemory(clock.NewFake(baseTime)), baseTime)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("failure counter expires after the window", func(t *testing.T) {
		// Arrange
		clk := clock.NewFake(baseTime)
		s := NewMemory(clk)
		_, err := s.IncrLoginFailure(ctx, "ip", clk.Now(), time.Minute)
		require.NoError(t, err)

		// Act
		clk.Advance(time.Minute)
		_, err = s.GetLoginAttempt(ctx, "ip")

		// Assert
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("block keeps the record until it ends", func(t *testing.T) {
		// Arrange
		clk := clock.NewFake(baseTime)
		s := NewMemory(clk)
		_, err := s.IncrLoginFailure(ctx, "ip", clk.Now(), time.Minute)
		require.NoError(t, err)
		require.NoError(t, s.BlockLogin(ctx, "ip", clk.Now().Add(15*time.Minute)))

		// Act
		clk.Advance(14 * time.Minute)
		during, errDuring := s.GetLoginAttempt(ctx, "ip")
		clk.Advance(time.Minute)
		_, errAfter := s.GetLoginAttempt(ctx, "ip")

		// Assert
		require.NoError(t, errDuring)
		assert.True(t, during.Blocked(clk.Now().Add(-time.Minute)))
		assert.ErrorIs(t, errAfter, goerror.ErrNotFound)
	})

	t.Run("challenge record expires after its ttl", func(t *testing.T) {
		// Arrange
		clk := clock.NewFake(baseTime)
		s := NewMemory(clk)
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "h"}, 10*time.Minute))

		// Act
		clk.Advance(10*time.Minute - time.Millisecond)
		_, errBefore := s.GetChallenge(ctx)
		clk.Advance(time.Millisecond)
		_, errAfter := s.IncrChallengeAttempts(ctx)

		// Assert
		assert.NoError(t, errBefore)
		assert.ErrorIs(t, errAfter, goerror.ErrNotFound)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		s := NewMemory(clock.NewFake(baseTime))
		require.NoError(t, s.SaveChallenge(ctx, entity.Challenge{TokenHash: "h"}, time.Minute))

		got, err := s.GetChallenge(ctx)
		require.NoError(t, err)
		got.Attempts = 99

		again, err := s.GetChallenge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), again.Attempts)
	})
}
