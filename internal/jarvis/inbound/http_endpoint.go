package inbound

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
)

const defaultHistoryLimit = 100

// HTTPEndpoint exposes the Mark2/Mark01 proxy handlers.
type HTTPEndpoint struct {
	uc uc
}

// Health reports whether Mark2 answers.
// @Summary Mark2 health
// @Tags Jarvis
// @Produce json
// @Success 200 {object} map[string]any "Upstream health"
// @Failure 502 {object} map[string]any "Mark2 unreachable"
// @Router /api/v1/jarvis/health [get]
func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	return raw(h.uc.Health(r.Context()))
}

// TelegramWebhook relays a bot update to Mark2.
// @Summary Telegram webhook
// @Tags Jarvis
// @Accept json
// @Produce json
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 502 {object} map[string]any "Mark2 unreachable"
// @Router /api/v1/jarvis/telegram/webhook [post]
func (h *HTTPEndpoint) TelegramWebhook(r *router.Request) (any, error) {
	return h.withBody(r, h.uc.TelegramWebhook)
}

// Agents lists the Mark2 agents.
// @Summary List agents
// @Tags Jarvis
// @Security BearerAuth
// @Router /api/v1/jarvis/agents [get]
func (h *HTTPEndpoint) Agents(r *router.Request) (any, error) {
	return raw(h.uc.Agents(r.Context()))
}

// History reads an agent conversation.
// @Summary Agent history
// @Tags Jarvis
// @Security BearerAuth
// @Param agentId path string true "Agent id"
// @Param limit query int false "Max entries" default(100)
// @Router /api/v1/jarvis/history/{agentId} [get]
func (h *HTTPEndpoint) History(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit", defaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	return raw(h.uc.History(r.Context(), usecase.HistoryInput{
		AgentID: r.GetParam("agentId"),
		Limit:   limit,
	}))
}

// DeleteHistory clears an agent conversation.
// @Summary Clear agent history
// @Tags Jarvis
// @Security BearerAuth
// @Param agentId path string true "Agent id"
// @Router /api/v1/jarvis/history/{agentId} [delete]
func (h *HTTPEndpoint) DeleteHistory(r *router.Request) (any, error) {
	return raw(h.uc.DeleteHistory(r.Context(), r.GetParam("agentId")))
}

func (h *HTTPEndpoint) Models(r *router.Request) (any, error) {
	return raw(h.uc.Models(r.Context()))
}

func (h *HTTPEndpoint) SwitchModel(r *router.Request) (any, error) {
	return h.withBody(r, h.uc.SwitchModel)
}

func (h *HTTPEndpoint) Job(r *router.Request) (any, error) {
	return raw(h.uc.Job(r.Context(), r.GetParam("jobId")))
}

func (h *HTTPEndpoint) ChatAsync(r *router.Request) (any, error) {
	return h.withBody(r, h.uc.ChatAsync)
}

func (h *HTTPEndpoint) Voice(r *router.Request) (any, error) {
	return h.withBody(r, h.uc.Voice)
}

// TTS synthesizes speech.
// @Summary Text to speech
// @Tags Jarvis
// @Security BearerAuth
// @Accept json
// @Produce audio/mpeg
// @Param request body TTSRequest true "Text to speak"
// @Failure 400 {object} router.errorResponse "Text is required"
// @Router /api/v1/jarvis/tts [post]
func (h *HTTPEndpoint) TTS(r *router.Request) (any, error) {
	var req TTSRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return raw(h.uc.TTS(r.Context(), usecase.TTSInput{Text: req.Text, Voice: req.Voice}))
}

// Chat sends a message to Mark01.
// @Summary Send chat message
// @Tags Jarvis
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Message"
// @Success 200 {object} router.successResponse{data=ChatResponse}
// @Failure 400 {object} router.errorResponse "Message is empty"
// @Router /api/v1/jarvis/chat [post]
func (h *HTTPEndpoint) Chat(r *router.Request) (any, error) {
	var req ChatRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Chat(r.Context(), usecase.ChatInput{Message: req.Message})
	if err != nil {
		return nil, err
	}

	return ChatResponse{ID: resp.ID, Response: resp.Response}, nil
}

// ChatHistory lists the web chat exchanges.
// @Summary Chat history
// @Tags Jarvis
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ChatHistoryResponse}
// @Router /api/v1/jarvis/chat [get]
func (h *HTTPEndpoint) ChatHistory(r *router.Request) (any, error) {
	msgs, err := h.uc.ChatHistory(r.Context())
	if err != nil {
		return nil, err
	}

	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatMessage{
			ID:             m.ID,
			Source:         string(m.Source),
			UserMessage:    m.UserMessage,
			JarvisResponse: m.JarvisResponse,
			Timestamp:      m.Timestamp,
		})
	}

	return ChatHistoryResponse{Messages: out}, nil
}

func (h *HTTPEndpoint) withBody(r *router.Request, fn func(context.Context, []byte) (*entity.Reply, error)) (any, error) {
	body, err := r.JSONBody()
	if err != nil {
		return nil, err
	}

	return raw(fn(r.Context(), body))
}

func raw(reply *entity.Reply, err error) (any, error) {
	if err != nil {
		return nil, err
	}

	return &router.RawResponse{
		Status:      reply.Status,
		ContentType: reply.ContentType,
		Header:      reply.Header,
		Body:        reply.Body,
	}, nil
}
