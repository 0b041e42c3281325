package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/idempotency"
)

var (
	webhookUnreachable = []byte(`{"ok":false,"error":"Mark2 unreachable"}`)
	webhookDuplicate   = []byte(`{"ok":true,"duplicate":true}`)
)

// TelegramWebhook relays a bot update to Mark2. Updates carrying an update_id
// are delivered at most once; a failed delivery may be retried by Telegram.
func (s *Usecase) TelegramWebhook(ctx context.Context, update []byte) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "TelegramWebhook")
	defer span.End()

	var meta struct {
		UpdateID *int64 `json:"update_id"`
	}
	if err := json.Unmarshal(update, &meta); err != nil || meta.UpdateID == nil {
		return s.forwardUpdate(ctx, update), nil
	}

	key := "telegram:update:" + strconv.FormatInt(*meta.UpdateID, 10)

	var reply *entity.Reply
	err := s.idempotency.Exec(ctx, key, func(ctx context.Context) error {
		reply = s.forwardUpdate(ctx, update)
		if !reply.OK() {
			return errUpdateNotDelivered
		}
		return nil
	}, idempotency.WithStateTTL(s.webhookDedupeTTL()))

	switch {
	case err == nil:
		return reply, nil

	case errors.Is(err, idempotency.ErrDuplicate):
		slog.InfoContext(ctx, "duplicate telegram update skipped", "update_id", *meta.UpdateID)
		return &entity.Reply{Status: http.StatusOK, ContentType: jsonContentType, Body: webhookDuplicate}, nil

	case reply != nil:
		//nolint:errorlint // anything beyond the bare sentinel carries a release failure
		if err != errUpdateNotDelivered {
			slog.ErrorContext(ctx, "failed to record telegram update state", "update_id", *meta.UpdateID, "error", err)
		}
		return reply, nil

	default:
		slog.ErrorContext(ctx, "failed to acquire telegram update", "update_id", *meta.UpdateID, "error", err)
		return s.forwardUpdate(ctx, update), nil
	}
}

func (s *Usecase) forwardUpdate(ctx context.Context, update []byte) *entity.Reply {
	reply, err := s.repoMark2.TelegramWebhook(ctx, update)
	if err != nil || !json.Valid(reply.Body) {
		slog.ErrorContext(ctx, "failed to forward telegram update", "error", err)
		return &entity.Reply{Status: http.StatusBadGateway, ContentType: jsonContentType, Body: webhookUnreachable}
	}

	return asJSON(reply)
}
