package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

const (
	chatFallbackResponse = "Could not reach Jarvis."
	chatErrorBodyRunes   = 200
)

type ChatInput struct {
	Message string `json:"message" validate:"notblank"`
}

type ChatOutput struct {
	ID       string
	Response string
}

// Chat sends a message to Mark01 and records the exchange. An upstream error
// status still produces an entry whose response describes the failure.
func (s *Usecase) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	ctx, span := s.startSpan(ctx, "Chat")
	defer span.End()

	if _, err := s.authorize(ctx, "chat", "write"); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	prompt := strings.TrimSpace(in.Message)

	reply, err := s.repoMark01.VoiceCode(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call mark01 voice code", "error", err)
		return nil, goerror.NewServer(err)
	}

	msg := entity.ChatMessage{
		ID:             "web-" + strconv.FormatInt(s.uid.Generate(), 10),
		Source:         entity.SourceWeb,
		UserMessage:    prompt,
		JarvisResponse: chatResponse(reply),
		Timestamp:      s.clock.Now().UnixMilli(),
	}

	if err := s.repoHistory.Append(ctx, msg, s.historyLimit()); err != nil {
		slog.ErrorContext(ctx, "failed to repo append chat history", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ChatOutput{ID: msg.ID, Response: msg.JarvisResponse}, nil
}

// ChatHistory lists the recorded exchanges, oldest first.
func (s *Usecase) ChatHistory(ctx context.Context) ([]entity.ChatMessage, error) {
	ctx, span := s.startSpan(ctx, "ChatHistory")
	defer span.End()

	if _, err := s.authorize(ctx, "chat", "read"); err != nil {
		return nil, err
	}

	msgs, err := s.repoHistory.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list chat history", "error", err)
		return nil, goerror.NewServer(err)
	}

	return msgs, nil
}

func chatResponse(reply *entity.Reply) string {
	if !reply.OK() {
		body := []rune(string(reply.Body))
		if len(body) > chatErrorBodyRunes {
			body = body[:chatErrorBodyRunes]
		}
		return fmt.Sprintf("Error %d: %s", reply.Status, string(body))
	}

	var out struct {
		Response string `json:"response"`
		Details  string `json:"details"`
	}
	_ = json.Unmarshal(reply.Body, &out)

	switch {
	case out.Response != "":
		return out.Response
	case out.Details != "":
		return out.Details
	default:
		return chatFallbackResponse
	}
}
