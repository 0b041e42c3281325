package usecase

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

// Session returns the principal the router attached to ctx.
func (s *Usecase) Session(ctx context.Context) (*token.Principal, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	p := token.GetAuth(ctx)
	if p == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return p, nil
}
