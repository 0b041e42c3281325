package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

type TTSInput struct {
	Text  string `json:"text" validate:"notblank"`
	Voice string `json:"voice"`
}

// TTS turns text into speech. Audio comes back as audio/mpeg; an upstream
// failure keeps its status with the upstream body folded into the error text.
func (s *Usecase) TTS(ctx context.Context, in TTSInput) (*entity.Reply, error) {
	ctx, span := s.startSpan(ctx, "TTS")
	defer span.End()

	if _, err := s.authorize(ctx, "tts", "write"); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	voice := strings.TrimSpace(in.Voice)
	if voice == "" {
		voice = defaultTTSVoice
	}

	reply, err := s.repoMark2.TTS(ctx, in.Text, voice)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call mark2 tts", "error", err)
		return nil, errUnreachable(err)
	}

	if !reply.OK() {
		slog.WarnContext(ctx, "mark2 tts rejected", "status", reply.Status)

		body, err := json.Marshal(map[string]string{
			"error": fmt.Sprintf("TTS error: %d - %s", reply.Status, reply.Body),
		})
		if err != nil {
			return nil, goerror.NewServer(err)
		}

		return &entity.Reply{Status: reply.Status, ContentType: jsonContentType, Body: body}, nil
	}

	return &entity.Reply{
		Status:      http.StatusOK,
		ContentType: "audio/mpeg",
		Header:      http.Header{"Cache-Control": []string{"no-cache"}},
		Body:        reply.Body,
	}, nil
}
