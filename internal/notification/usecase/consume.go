package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
)

type ConsumeLoginLockedInput struct {
	ClientIP     string
	Failures     int64
	BlockedUntil time.Time
}

type ConsumeLoginSucceededInput struct {
	ClientIP  string
	Subject   string
	ExpiresAt time.Time
}

type ConsumeOTPDeliveryFailedInput struct {
	ClientIP string
	Channel  string
	Reason   string
}

// ConsumeLoginLocked records a lockout and emails it when a mailer is configured.
// A failed email is logged only; redelivering the event would duplicate the alert.
func (s *Usecase) ConsumeLoginLocked(ctx context.Context, in ConsumeLoginLockedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeLoginLocked")
	defer span.End()

	a := s.record(ctx, entity.KindLoginLocked, in.ClientIP,
		fmt.Sprintf("Login locked for %s after %d failed attempts until %s UTC",
			in.ClientIP, in.Failures, in.BlockedUntil.UTC().Format("15:04:05")))

	if s.repoMail == nil {
		return nil
	}

	if err := s.repoMail.SendAlert(ctx, a); err != nil {
		slog.ErrorContext(ctx, "failed to email lockout alert", "alert_id", a.ID, "client_ip", in.ClientIP, "error", err)
	}

	return nil
}

func (s *Usecase) ConsumeLoginSucceeded(ctx context.Context, in ConsumeLoginSucceededInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeLoginSucceeded")
	defer span.End()

	s.record(ctx, entity.KindLoginSucceeded, in.ClientIP,
		fmt.Sprintf("Login succeeded for %s from %s", in.Subject, in.ClientIP))

	return nil
}

func (s *Usecase) ConsumeOTPDeliveryFailed(ctx context.Context, in ConsumeOTPDeliveryFailedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPDeliveryFailed")
	defer span.End()

	s.record(ctx, entity.KindOTPDeliveryFailed, in.ClientIP,
		fmt.Sprintf("OTP delivery via %s failed for %s: %s", in.Channel, in.ClientIP, in.Reason))

	return nil
}
