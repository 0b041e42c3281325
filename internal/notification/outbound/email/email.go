package email

import (
	"context"
	"fmt"
	"html"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// Mail emails security alerts to the owner.
type Mail struct {
	client mail.Mail
	to     []string
	ins    instrument.Instrumentation
}

func New(client mail.Mail, to []string, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, to: to, ins: ins}
}

func (m *Mail) SendAlert(ctx context.Context, a entity.Alert) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendAlert")
	defer span.End()

	at := a.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	if err := m.client.Send(ctx, mail.Message{
		To:       m.to,
		Subject:  "Jarvis Gate security alert: " + a.Kind.String(),
		TextBody: fmt.Sprintf("%s\n\nClient: %s\nTime: %s UTC", a.Message, a.ClientIP, at),
		HTMLBody: fmt.Sprintf("<p>%s</p><p>Client: %s<br>Time: %s UTC</p>",
			html.EscapeString(a.Message), html.EscapeString(a.ClientIP), at),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
