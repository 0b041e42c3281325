package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/notification/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cid := msg.Header(keyOfCorrelationID); cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// decode returns false for a malformed body; such messages are dropped since a retry cannot fix them.
func decode[T any](ctx context.Context, msg messaging.Message, name string) (T, bool) {
	var payload T
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of "+name, "msg_body", string(msg.Body()), "error", err)
		return payload, false
	}
	return payload, true
}

func (h *MQHandler) LoginLockedAlert(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "LoginLockedAlert")
	defer span.End()

	slog.InfoContext(ctx, "consume: login locked alert", "msg_body", string(msg.Body()))

	payload, ok := decode[event.AuthLoginLockedMessage](ctx, msg, "login locked alert")
	if !ok {
		return nil
	}

	if err := h.uc.ConsumeLoginLocked(ctx, usecase.ConsumeLoginLockedInput{
		ClientIP:     payload.ClientKey,
		Failures:     payload.Failures,
		BlockedUntil: time.UnixMilli(payload.BlockedUntil),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume login locked", "msg_body", string(msg.Body()), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) LoginSucceededAlert(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "LoginSucceededAlert")
	defer span.End()

	slog.InfoContext(ctx, "consume: login succeeded alert", "msg_body", string(msg.Body()))

	payload, ok := decode[event.AuthLoginSucceededMessage](ctx, msg, "login succeeded alert")
	if !ok {
		return nil
	}

	if err := h.uc.ConsumeLoginSucceeded(ctx, usecase.ConsumeLoginSucceededInput{
		ClientIP:  payload.ClientKey,
		Subject:   payload.Subject,
		ExpiresAt: time.UnixMilli(payload.ExpiresAt),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume login succeeded", "msg_body", string(msg.Body()), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) OTPDeliveryFailedAlert(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPDeliveryFailedAlert")
	defer span.End()

	slog.InfoContext(ctx, "consume: otp delivery failed alert", "msg_body", string(msg.Body()))

	payload, ok := decode[event.AuthOTPDeliveryFailedMessage](ctx, msg, "otp delivery failed alert")
	if !ok {
		return nil
	}

	if err := h.uc.ConsumeOTPDeliveryFailed(ctx, usecase.ConsumeOTPDeliveryFailedInput{
		ClientIP: payload.ClientKey,
		Channel:  payload.Channel,
		Reason:   payload.Reason,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp delivery failed", "msg_body", string(msg.Body()), "error", err)
		return err
	}

	return nil
}
