package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/stacktrace"
)

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			paths := stacktrace.InternalPaths(stack)
			if len(paths) == 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", string(stack))
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", paths)
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}

// dispatch runs handler for d and applies auto-ack unless the handler already
// responded.
func dispatch(ctx context.Context, kind string, d *delivery, handler Handler, autoAck bool) {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, d)
	})
	if !autoAck || d.hasResponded() {
		return
	}

	var err error
	if herr == nil {
		err = d.Ack(ctx)
	} else {
		err = d.Nack(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to respond to message", "kind", kind, "source", d.source, "error", err)
	}
}
