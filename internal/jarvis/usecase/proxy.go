package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

const jsonContentType = "application/json; charset=utf-8"

var healthUnreachable = []byte(`{"status":"error","error":"Mark2 unreachable"}`)

type HistoryInput struct {
	AgentID string `json:"agentId" validate:"required"`
	Limit   int    `json:"limit" validate:"min=1,max=1000"`
}

// Health reports Mark2 liveness. A dead upstream is an answer, not an error.
func (s *Usecase) Health(ctx context.Context) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "Health")
	defer span.End()

	reply, err := s.repoMark2.Health(ctx)
	if err == nil && json.Valid(reply.Body) {
		return asJSON(reply), nil
	}

	slog.WarnContext(ctx, "mark2 health check failed", "error", err)

	return &entity.Reply{Status: http.StatusBadGateway, ContentType: jsonContentType, Body: healthUnreachable}, nil
}

func (s *Usecase) Agents(ctx context.Context) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "Agents")
	defer span.End()

	return s.relay(ctx, "agents", "read", s.repoMark2.Agents)
}

func (s *Usecase) History(ctx context.Context, in HistoryInput) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "History")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.relay(ctx, "history", "read", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.History(ctx, in.AgentID, in.Limit)
	})
}

func (s *Usecase) DeleteHistory(ctx context.Context, agentID string) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "DeleteHistory")
	defer span.End()

	return s.relay(ctx, "history", "delete", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.DeleteHistory(ctx, agentID)
	})
}

func (s *Usecase) Models(ctx context.Context) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "Models")
	defer span.End()

	return s.relay(ctx, "models", "read", s.repoMark2.Models)
}

func (s *Usecase) SwitchModel(ctx context.Context, body []byte) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "SwitchModel")
	defer span.End()

	return s.relay(ctx, "models", "write", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.SwitchModel(ctx, body)
	})
}

func (s *Usecase) Job(ctx context.Context, jobID string) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "Job")
	defer span.End()

	return s.relay(ctx, "jobs", "read", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.Job(ctx, jobID)
	})
}

func (s *Usecase) ChatAsync(ctx context.Context, body []byte) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "ChatAsync")
	defer span.End()

	return s.relay(ctx, "chat", "write", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.ChatAsync(ctx, body)
	})
}

func (s *Usecase) Voice(ctx context.Context, body []byte) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "Voice")
	defer span.End()

	return s.relay(ctx, "voice", "write", func(ctx context.Context) (*entity.Reply, error) {
		return s.repoMark2.Voice(ctx, body)
	})
}

// relay authorizes the caller, runs call and passes a JSON reply through with its status.
func (s *Usecase) relay(ctx context.Context, obj, act string, call func(context.Context) (*entity.Reply, error)) (*entity.Reply, error) {
	if _, err := s.authorize(ctx, obj, act); err != nil {
		return nil, err
	}

	reply, err := call(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call mark2", "object", obj, "action", act, "error", err)
		return nil, errUnreachable(err)
	}

	if !json.Valid(reply.Body) {
		slog.ErrorContext(ctx, "mark2 reply is not json", "object", obj, "status", reply.Status, "content_type", reply.ContentType)
		return nil, ErrInvalidReply
	}

	return asJSON(reply), nil
}

func asJSON(reply *entity.Reply) *entity.Reply {
	return &entity.Reply{Status: reply.Status, ContentType: jsonContentType, Body: reply.Body}
}
