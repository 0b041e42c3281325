package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoRecipient is returned when no OTP recipient is configured.
var ErrNoRecipient = errors.New("email: otp recipient is required")

// Mail delivers OTP codes by email to the configured owner address.
type Mail struct {
	client mail.Mail
	to     []string
	ins    instrument.Instrumentation
}

func New(client mail.Mail, to []string, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, to: to, ins: ins}
}

func (m *Mail) Channel() string { return "email" }

func (m *Mail) SendOTP(ctx context.Context, code string, expiresAt time.Time) error {
	ctx, span := m.ins.Tracer("auth.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	if len(m.to) == 0 {
		span.RecordError(ErrNoRecipient)
		span.SetStatus(codes.Error, ErrNoRecipient.Error())
		return ErrNoRecipient
	}

	exp := expiresAt.UTC().Format("15:04:05")
	if err := m.client.Send(ctx, mail.Message{
		To:       m.to,
		Subject:  "Mark01 login code",
		TextBody: fmt.Sprintf("Your Mark01 login code is %s.\n\nIt expires at %s UTC.", code, exp),
		HTMLBody: fmt.Sprintf("<p>Your Mark01 login code is <strong>%s</strong>.</p><p>It expires at %s UTC.</p>", code, exp),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
