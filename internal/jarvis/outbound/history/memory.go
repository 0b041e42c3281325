// Package history keeps the web chat exchanges, newest last, bounded in size.
package history

import (
	"context"
	"slices"
	"sync"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
)

type Memory struct {
	mu       sync.Mutex
	messages []entity.ChatMessage
}

func NewMemory() *Memory {
	return &Memory{}
}

// Append adds msg and drops the oldest entries beyond limit.
func (m *Memory) Append(_ context.Context, msg entity.ChatMessage, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	if over := len(m.messages) - limit; limit > 0 && over > 0 {
		m.messages = slices.Clone(m.messages[over:])
	}

	return nil
}

func (m *Memory) List(_ context.Context) ([]entity.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.messages), nil
}
