package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/jarvisgate/internal/auth/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishLoginLocked(ctx context.Context, msg usecase.LoginLockedEvent) error {
	return m.publish(ctx, "PublishLoginLocked", event.AuthLoginLockedDestination, msg.ClientKey, event.AuthLoginLockedMessage{
		ClientKey:    msg.ClientKey,
		Failures:     msg.Failures,
		BlockedUntil: msg.BlockedUntil.UnixMilli(),
	})
}

func (m *Messaging) PublishLoginSucceeded(ctx context.Context, msg usecase.LoginSucceededEvent) error {
	return m.publish(ctx, "PublishLoginSucceeded", event.AuthLoginSucceededDestination, msg.ClientKey, event.AuthLoginSucceededMessage{
		ClientKey: msg.ClientKey,
		Subject:   msg.Subject,
		ExpiresAt: msg.ExpiresAt.UnixMilli(),
	})
}

func (m *Messaging) PublishOTPDeliveryFailed(ctx context.Context, msg usecase.OTPDeliveryFailedEvent) error {
	return m.publish(ctx, "PublishOTPDeliveryFailed", event.AuthOTPDeliveryFailedDestination, msg.ClientKey, event.AuthOTPDeliveryFailedMessage{
		ClientKey: msg.ClientKey,
		Channel:   msg.Channel,
		Reason:    msg.Reason,
	})
}

func (m *Messaging) publish(ctx context.Context, spanName, destination, key string, payload any) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, spanName)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: map[string]string{keyOfCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
