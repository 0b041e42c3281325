package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

func (s *Usecase) authorize(ctx context.Context, obj, act string) (*token.Principal, error) {
	p := token.GetAuth(ctx)
	if p == nil {
		return nil, ErrUnauthenticated
	}

	ok, err := s.enforcer.Enforce(p.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "subject", p.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "access denied", "subject", p.Subject, "role", p.Role, "object", obj, "action", act)
		return nil, ErrForbidden
	}

	return p, nil
}
