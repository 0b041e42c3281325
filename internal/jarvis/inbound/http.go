package inbound

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
)

type uc interface {
	Health(ctx context.Context) (*entity.Reply, error)
	TelegramWebhook(ctx context.Context, update []byte) (*entity.Reply, error)

	Agents(ctx context.Context) (*entity.Reply, error)
	History(ctx context.Context, in usecase.HistoryInput) (*entity.Reply, error)
	DeleteHistory(ctx context.Context, agentID string) (*entity.Reply, error)
	Models(ctx context.Context) (*entity.Reply, error)
	SwitchModel(ctx context.Context, body []byte) (*entity.Reply, error)
	Job(ctx context.Context, jobID string) (*entity.Reply, error)
	ChatAsync(ctx context.Context, body []byte) (*entity.Reply, error)
	Voice(ctx context.Context, body []byte) (*entity.Reply, error)
	TTS(ctx context.Context, in usecase.TTSInput) (*entity.Reply, error)

	Chat(ctx context.Context, in usecase.ChatInput) (*usecase.ChatOutput, error)
	ChatHistory(ctx context.Context) ([]entity.ChatMessage, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Public
	r.GET("/api/v1/jarvis/health", end.Health)
	r.POST("/api/v1/jarvis/telegram/webhook", end.TelegramWebhook)

	// Mark2 proxy (need authenticated & authorization)
	r.GET("/api/v1/jarvis/agents", end.Agents)
	r.GET("/api/v1/jarvis/history/:agentId", end.History)
	r.DELETE("/api/v1/jarvis/history/:agentId", end.DeleteHistory)
	r.GET("/api/v1/jarvis/models", end.Models)
	r.POST("/api/v1/jarvis/model", end.SwitchModel)
	r.GET("/api/v1/jarvis/jobs/:jobId", end.Job)
	r.POST("/api/v1/jarvis/chat/async", end.ChatAsync)
	r.POST("/api/v1/jarvis/voice", end.Voice)
	r.POST("/api/v1/jarvis/tts", end.TTS)

	// Mark01 chat (need authenticated & authorization)
	r.GET("/api/v1/jarvis/chat", end.ChatHistory)
	r.POST("/api/v1/jarvis/chat", end.Chat)
}
