package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Exec(t *testing.T) {
	ctx := context.Background()

	t.Run("runs once per key", func(t *testing.T) {
		// Arrange
		m := NewMemory(clock.NewFake(time.Unix(0, 0)))
		calls := 0
		fn := func(context.Context) error { calls++; return nil }

		// Act
		errFirst := m.Exec(ctx, "update:1", fn)
		errSecond := m.Exec(ctx, "update:1", fn)
		errOther := m.Exec(ctx, "update:2", fn)

		// Assert
		require.NoError(t, errFirst)
		assert.ErrorIs(t, errSecond, ErrAlreadyCompleted)
		require.NoError(t, errOther)
		assert.Equal(t, 2, calls)
	})

	t.Run("failure releases the key", func(t *testing.T) {
		// Arrange
		m := NewMemory(clock.NewFake(time.Unix(0, 0)))
		boom := errors.New("upstream down")

		// Act
		errFirst := m.Exec(ctx, "k", func(context.Context) error { return boom })
		errRetry := m.Exec(ctx, "k", func(context.Context) error { return nil })

		// Assert
		assert.ErrorIs(t, errFirst, boom)
		assert.NoError(t, errRetry)
	})

	t.Run("in progress key is reported", func(t *testing.T) {
		m := NewMemory(clock.NewFake(time.Unix(0, 0)))

		err := m.Exec(ctx, "k", func(ctx context.Context) error {
			return m.Exec(ctx, "k", func(context.Context) error { return nil })
		})

		assert.ErrorIs(t, err, ErrAlreadyInProgress)
	})

	t.Run("completed state expires", func(t *testing.T) {
		// Arrange
		clk := clock.NewFake(time.Unix(0, 0))
		m := NewMemory(clk)
		require.NoError(t, m.Exec(ctx, "k", func(context.Context) error { return nil }, WithStateTTL(time.Hour)))

		// Act
		clk.Advance(time.Hour - time.Second)
		errBefore := m.Exec(ctx, "k", func(context.Context) error { return nil })
		clk.Advance(time.Second)
		errAfter := m.Exec(ctx, "k", func(context.Context) error { return nil })

		// Assert
		assert.ErrorIs(t, errBefore, ErrAlreadyCompleted)
		assert.NoError(t, errAfter)
	})

	t.Run("stale lock can be taken over", func(t *testing.T) {
		clk := clock.NewFake(time.Unix(0, 0))
		m := NewMemory(clk)
		state, err := m.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.Equal(t, StateNone, state)

		clk.Advance(time.Minute)
		state, err = m.Acquire(ctx, "k", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, StateNone, state)
	})
}

func TestParseState(t *testing.T) {
	for raw, want := range map[string]State{"in_progress": StateInProgress, "completed": StateCompleted} {
		got, err := parseState(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseState("failed")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExec_DuplicateSentinel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(clock.NewFake(time.Unix(0, 0)))
	require.NoError(t, m.Exec(ctx, "k", func(context.Context) error { return nil }))

	err := m.Exec(ctx, "k", func(context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, ErrAlreadyInProgress, ErrDuplicate)
	assert.NotErrorIs(t, ErrInvalidState, ErrDuplicate)
}

type brokenTracker struct{ Tracker }

func (brokenTracker) Acquire(context.Context, string, time.Duration) (State, error) {
	return StateError, nil
}

func TestExec_UnknownState(t *testing.T) {
	called := false

	err := exec(context.Background(), brokenTracker{}, "k", func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, called)
}
