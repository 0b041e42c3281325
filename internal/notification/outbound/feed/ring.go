package feed

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
)

// DefaultSize is the number of alerts kept when NewRing gets a non-positive size.
const DefaultSize = 100

// Ring keeps the most recent alerts in memory; the oldest is dropped once full.
type Ring struct {
	mu    sync.RWMutex
	size  int
	items []entity.Alert
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{size: size, items: make([]entity.Alert, 0, size)}
}

func (r *Ring) Add(_ context.Context, a entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == r.size {
		copy(r.items, r.items[1:])
		r.items = r.items[:r.size-1]
	}
	r.items = append(r.items, a)

	return nil
}

// List returns up to limit alerts, newest first. A non-positive limit returns all.
func (r *Ring) List(_ context.Context, limit int) ([]entity.Alert, error) {
	r.mu.RLock()
	out := lo.Reverse(slices.Clone(r.items))
	r.mu.RUnlock()

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
