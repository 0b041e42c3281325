package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

// Memory keeps auth state in process. Each call is atomic on its own;
// a sequence of calls is not.
type Memory struct {
	clock clock.Clocker

	mu        sync.Mutex
	attempts  map[string]memoryAttempt
	challenge *memoryChallenge
}

type memoryAttempt struct {
	entity.LoginAttempt
	expiresAt time.Time
}

type memoryChallenge struct {
	entity.Challenge
	expiresAt time.Time
}

func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		clock:    clk,
		attempts: make(map[string]memoryAttempt),
	}
}

func (m *Memory) GetLoginAttempt(_ context.Context, key string) (*entity.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.liveAttempt(key)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	out := a.LoginAttempt
	return &out, nil
}

// IncrLoginFailure starts a new count when the previous failure is older than window.
func (m *Memory) IncrLoginFailure(_ context.Context, key string, at time.Time, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.liveAttempt(key)
	if !ok || at.Sub(a.LastFailureAt) >= window {
		a = memoryAttempt{}
	}

	a.Count++
	a.LastFailureAt = at
	a.expiresAt = at.Add(window)
	m.attempts[key] = a

	return a.Count, nil
}

func (m *Memory) BlockLogin(_ context.Context, key string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, _ := m.liveAttempt(key)
	a.BlockedUntil = until
	a.expiresAt = until
	m.attempts[key] = a

	return nil
}

func (m *Memory) ResetLoginAttempt(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.attempts, key)
	return nil
}

// SaveChallenge replaces the current challenge.
func (m *Memory) SaveChallenge(_ context.Context, ch entity.Challenge, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.challenge = &memoryChallenge{Challenge: ch, expiresAt: m.clock.Now().Add(ttl)}
	return nil
}

func (m *Memory) GetChallenge(_ context.Context) (*entity.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.liveChallenge()
	if !ok {
		return nil, goerror.ErrNotFound
	}

	out := ch.Challenge
	return &out, nil
}

// IncrChallengeAttempts never recreates a deleted challenge.
func (m *Memory) IncrChallengeAttempts(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.liveChallenge()
	if !ok {
		return 0, goerror.ErrNotFound
	}

	ch.Attempts++
	return ch.Attempts, nil
}

func (m *Memory) DeleteChallenge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.challenge = nil
	return nil
}

// liveAttempt must be called with mu held.
func (m *Memory) liveAttempt(key string) (memoryAttempt, bool) {
	a, ok := m.attempts[key]
	if !ok {
		return memoryAttempt{}, false
	}
	if !m.clock.Now().Before(a.expiresAt) {
		delete(m.attempts, key)
		return memoryAttempt{}, false
	}
	return a, true
}

// liveChallenge must be called with mu held.
func (m *Memory) liveChallenge() (*memoryChallenge, bool) {
	if m.challenge == nil {
		return nil, false
	}
	if !m.clock.Now().Before(m.challenge.expiresAt) {
		m.challenge = nil
		return nil, false
	}
	return m.challenge, true
}
