package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

var ErrUnauthenticated = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)

type ListAlertsInput struct {
	// Limit of zero lists the whole feed.
	Limit int `validate:"min=0,max=1000"`
}

func (s *Usecase) ListAlerts(ctx context.Context, in ListAlertsInput) ([]entity.Alert, error) {
	ctx, span := s.startSpan(ctx, "ListAlerts")
	defer span.End()

	if token.GetAuth(ctx) == nil {
		return nil, ErrUnauthenticated
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	alerts, err := s.repoFeed.List(ctx, in.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list alerts", "error", err)
		return nil, goerror.NewServer(err)
	}

	return alerts, nil
}
