package inbound

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
	"github.com/shandysiswandi/jarvisgate/internal/notification/usecase"
)

type ucConsumer interface {
	ConsumeLoginLocked(ctx context.Context, in usecase.ConsumeLoginLockedInput) error
	ConsumeLoginSucceeded(ctx context.Context, in usecase.ConsumeLoginSucceededInput) error
	ConsumeOTPDeliveryFailed(ctx context.Context, in usecase.ConsumeOTPDeliveryFailedInput) error
}

type ucStream interface {
	StreamAlerts(ctx context.Context) <-chan entity.Alert
}

type uc interface {
	ucConsumer
	ucStream

	ListAlerts(ctx context.Context, in usecase.ListAlertsInput) ([]entity.Alert, error)
}
