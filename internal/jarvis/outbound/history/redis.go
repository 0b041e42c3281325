package history

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const redisKey = "jarvisgate:jarvis:chat_history"

// Redis shares the history between instances as a capped list.
type Redis struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (r *Redis) Append(ctx context.Context, msg entity.ChatMessage, limit int) (err error) {
	ctx, span := r.startSpan(ctx, "Append")
	defer func() { r.endSpan(span, err) }()

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, redisKey, raw)
		if limit > 0 {
			pipe.LTrim(ctx, redisKey, int64(-limit), -1)
		}
		return nil
	})

	return err
}

func (r *Redis) List(ctx context.Context) (_ []entity.ChatMessage, err error) {
	ctx, span := r.startSpan(ctx, "List")
	defer func() { r.endSpan(span, err) }()

	items, err := r.client.LRange(ctx, redisKey, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]entity.ChatMessage, 0, len(items))
	for _, item := range items {
		var msg entity.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}

	return out, nil
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("jarvis.outbound.history").Start(ctx, name)
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
