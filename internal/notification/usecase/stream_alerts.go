package usecase

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
	"go.uber.org/atomic"
)

const streamBuffer = 16

type subscriber struct {
	ch     chan entity.Alert
	closed atomic.Bool
}

// StreamAlerts subscribes to new alerts until ctx is done, then closes the channel.
// Slow readers miss alerts instead of blocking the consumers.
func (s *Usecase) StreamAlerts(ctx context.Context) <-chan entity.Alert {
	sub := &subscriber{ch: make(chan entity.Alert, streamBuffer)}

	s.streamMu.Lock()
	s.streams[sub] = struct{}{}
	s.streamMu.Unlock()

	context.AfterFunc(ctx, func() {
		s.streamMu.Lock()
		delete(s.streams, sub)
		sub.closed.Store(true)
		close(sub.ch)
		s.streamMu.Unlock()
	})

	return sub.ch
}

func (s *Usecase) broadcast(a entity.Alert) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	for sub := range s.streams {
		if sub.closed.Load() {
			continue
		}

		select {
		case sub.ch <- a:
		default:
		}
	}
}
