// Package mark01 is the HTTP client of the Mark01 text chat API.
package mark01

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "https://mark01-api.jarvisfirstproto.cloud"
	defaultTimeout = 60 * time.Second
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	ins     instrument.Instrumentation
}

func New(cfg Config, ins instrument.Instrumentation) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		ins:     ins,
	}
}

type voiceCodeRequest struct {
	Prompt         string `json:"prompt"`
	Mode           string `json:"mode"`
	ResponseFormat string `json:"response_format"`
}

// VoiceCode sends a text prompt and returns the raw reply.
func (c *Client) VoiceCode(ctx context.Context, prompt string) (_ *entity.Reply, err error) {
	ctx, span := c.ins.Tracer("jarvis.outbound.mark01").Start(ctx, "VoiceCode")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(voiceCodeRequest{Prompt: prompt, Mode: "text", ResponseFormat: "text"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voice-code", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mark01: voice code: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("mark01: read reply: %w", err)
	}

	return &entity.Reply{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}
