// Package mark2 is the HTTP client of the Mark2 agent API.
package mark2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 30 * time.Second
	maxReplyBytes  = 16 << 20
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

func (c *Client) Health(ctx context.Context) (*entity.Reply, error) {
	return c.do(ctx, "Health", http.MethodGet, "/health", nil, false)
}

// TelegramWebhook forwards a bot update; Telegram calls this without credentials.
func (c *Client) TelegramWebhook(ctx context.Context, update []byte) (*entity.Reply, error) {
	return c.do(ctx, "TelegramWebhook", http.MethodPost, "/telegram/webhook", update, false)
}

func (c *Client) Agents(ctx context.Context) (*entity.Reply, error) {
	return c.do(ctx, "Agents", http.MethodGet, "/agents", nil, true)
}

func (c *Client) History(ctx context.Context, agentID string, limit int) (*entity.Reply, error) {
	path := "/history/" + url.PathEscape(agentID) + "?limit=" + strconv.Itoa(limit)
	return c.do(ctx, "History", http.MethodGet, path, nil, true)
}

func (c *Client) DeleteHistory(ctx context.Context, agentID string) (*entity.Reply, error) {
	return c.do(ctx, "DeleteHistory", http.MethodDelete, "/history/"+url.PathEscape(agentID), nil, true)
}

func (c *Client) Models(ctx context.Context) (*entity.Reply, error) {
	return c.do(ctx, "Models", http.MethodGet, "/models", nil, true)
}

func (c *Client) SwitchModel(ctx context.Context, body []byte) (*entity.Reply, error) {
	return c.do(ctx, "SwitchModel", http.MethodPost, "/model", body, true)
}

func (c *Client) Job(ctx context.Context, jobID string) (*entity.Reply, error) {
	return c.do(ctx, "Job", http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, true)
}

func (c *Client) ChatAsync(ctx context.Context, body []byte) (*entity.Reply, error) {
	return c.do(ctx, "ChatAsync", http.MethodPost, "/chat/async", body, true)
}

func (c *Client) Voice(ctx context.Context, body []byte) (*entity.Reply, error) {
	return c.do(ctx, "Voice", http.MethodPost, "/voice", body, true)
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (c *Client) TTS(ctx context.Context, text, voice string) (*entity.Reply, error) {
	body, err := json.Marshal(ttsRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, err
	}

	return c.do(ctx, "TTS", http.MethodPost, "/tts", body, true)
}

func (c *Client) do(ctx context.Context, name, method, path string, body []byte, auth bool) (_ *entity.Reply, err error) {
	ctx, span := c.ins.Tracer("jarvis.outbound.mark2").Start(ctx, name,
		trace.WithAttributes(attribute.String("http.method", method)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mark2: %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("mark2: %s: read reply: %w", name, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return &entity.Reply{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}
