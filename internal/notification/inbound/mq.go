package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/shared/event"
)

const defaultConsumerConcurrency = 4

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = defaultConsumerConcurrency
	}

	var consumers = []struct {
		name    string // also the consumer group on every driver
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.AuthLoginLockedConsumerAlert,
			topic:   event.AuthLoginLockedDestination,
			handler: mqHandler.LoginLockedAlert,
		},
		{
			name:    event.AuthLoginSucceededConsumerAlert,
			topic:   event.AuthLoginSucceededDestination,
			handler: mqHandler.LoginSucceededAlert,
		},
		{
			name:    event.AuthOTPDeliveryFailedConsumerAlert,
			topic:   event.AuthOTPDeliveryFailedDestination,
			handler: mqHandler.OTPDeliveryFailedAlert,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
			)
		})
	}
}
