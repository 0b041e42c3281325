// Package idempotency runs an operation at most once per key across retries.
//
// A key moves none -> in_progress -> completed. A failed operation releases
// its key so the caller's retry runs again.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDuplicate matches both refusal reasons below.
	ErrDuplicate         = errors.New("idempotency: duplicate key")
	ErrAlreadyInProgress = fmt.Errorf("%w: operation already in progress", ErrDuplicate)
	ErrAlreadyCompleted  = fmt.Errorf("%w: operation already completed", ErrDuplicate)
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

func (s State) String() string {
	return string(s)
}

// Tracker is the storage side, Exec is built on top of it.
type Tracker interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type Idempotency interface {
	Tracker
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	keyPrefix           = "jarvisgate:idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long a crashed run keeps the key in progress.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long a completed key keeps refusing repeats.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

func newExecOptions(opts []Option) execOptions {
	o := execOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	return o
}

func exec(ctx context.Context, t Tracker, key string, fn func(context.Context) error, opts ...Option) error {
	o := newExecOptions(opts)

	state, err := t.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateNone:
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	default:
		return ErrInvalidState
	}

	if err := fn(ctx); err != nil {
		if relErr := t.Release(ctx, key); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}

	return t.MarkCompleted(ctx, key, o.stateTTL)
}

func parseState(raw string) (State, error) {
	switch State(raw) {
	case StateInProgress, StateCompleted:
		return State(raw), nil
	default:
		return StateError, ErrInvalidState
	}
}
