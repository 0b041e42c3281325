package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Relay(t *testing.T) {
	body := []byte(`{"model":"gpt"}`)

	tests := []struct {
		name string
		run  func(uc *Usecase) (*entity.Reply, error)
		want call
	}{
		{name: "agents", run: func(uc *Usecase) (*entity.Reply, error) { return uc.Agents(asAdmin()) }, want: call{name: "Agents"}},
		{name: "history", run: func(uc *Usecase) (*entity.Reply, error) {
			return uc.History(asAdmin(), HistoryInput{AgentID: "jarvis", Limit: 100})
		}, want: call{name: "History", args: []any{"jarvis", 100}}},
		{name: "delete history", run: func(uc *Usecase) (*entity.Reply, error) { return uc.DeleteHistory(asAdmin(), "jarvis") }, want: call{name: "DeleteHistory", args: []any{"jarvis"}}},
		{name: "models", run: func(uc *Usecase) (*entity.Reply, error) { return uc.Models(asAdmin()) }, want: call{name: "Models"}},
		{name: "switch model", run: func(uc *Usecase) (*entity.Reply, error) { return uc.SwitchModel(asAdmin(), body) }, want: call{name: "SwitchModel", args: []any{string(body)}}},
		{name: "job", run: func(uc *Usecase) (*entity.Reply, error) { return uc.Job(asAdmin(), "j-9") }, want: call{name: "Job", args: []any{"j-9"}}},
		{name: "chat async", run: func(uc *Usecase) (*entity.Reply, error) { return uc.ChatAsync(asAdmin(), body) }, want: call{name: "ChatAsync", args: []any{string(body)}}},
		{name: "voice", run: func(uc *Usecase) (*entity.Reply, error) { return uc.Voice(asAdmin(), body) }, want: call{name: "Voice", args: []any{string(body)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name+" passes the reply through", func(t *testing.T) {
			// Arrange
			h := newHarness(t, "app: {}")
			h.mark2.reply = &entity.Reply{Status: http.StatusConflict, ContentType: "application/json", Body: []byte(`{"error":"busy"}`)}

			// Act
			reply, err := tt.run(h.uc)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, http.StatusConflict, reply.Status)
			assert.Equal(t, jsonContentType, reply.ContentType)
			assert.JSONEq(t, `{"error":"busy"}`, string(reply.Body))
			assert.Equal(t, tt.want, h.mark2.last())
		})

		t.Run(tt.name+" unreachable", func(t *testing.T) {
			h := newHarness(t, "app: {}")
			h.mark2.err = errors.New("dial tcp 10.0.0.1:3456: connection refused")

			_, err := tt.run(h.uc)

			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, http.StatusBadGateway, gerr.StatusCode())
			assert.Equal(t, "Mark2 unreachable", gerr.Msg())
		})

		t.Run(tt.name+" non json reply", func(t *testing.T) {
			h := newHarness(t, "app: {}")
			h.mark2.reply = &entity.Reply{Status: http.StatusOK, ContentType: "text/html", Body: []byte(`<html>`)}

			_, err := tt.run(h.uc)

			assert.ErrorIs(t, err, ErrInvalidReply)
		})
	}

	t.Run("history limit is bounded", func(t *testing.T) {
		h := newHarness(t, "app: {}")

		for _, limit := range []int{0, -1, 1001} {
			_, err := h.uc.History(asAdmin(), HistoryInput{AgentID: "jarvis", Limit: limit})
			assertStatus(t, err, http.StatusBadRequest)
		}
		assert.Zero(t, h.mark2.count())
	})
}

func TestUsecase_Health(t *testing.T) {
	t.Run("passes upstream status", func(t *testing.T) {
		h := newHarness(t, "app: {}")
		h.mark2.reply = &entity.Reply{Status: http.StatusServiceUnavailable, Body: []byte(`{"status":"degraded"}`)}

		reply, err := h.uc.Health(context.Background())

		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, reply.Status)
		assert.JSONEq(t, `{"status":"degraded"}`, string(reply.Body))
	})

	t.Run("unreachable is a 502 answer", func(t *testing.T) {
		// Arrange
		h := newHarness(t, "app: {}")
		h.mark2.err = errors.New("connection refused")

		// Act
		reply, err := h.uc.Health(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, reply.Status)
		assert.JSONEq(t, `{"status":"error","error":"Mark2 unreachable"}`, string(reply.Body))
	})

	t.Run("garbage reply", func(t *testing.T) {
		h := newHarness(t, "app: {}")
		h.mark2.reply = &entity.Reply{Status: http.StatusOK, Body: []byte(`ok`)}

		reply, err := h.uc.Health(context.Background())

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, reply.Status)
	})
}

func TestUsecase_TelegramWebhook(t *testing.T) {
	update := []byte(`{"update_id":7001,"message":{"text":"hi"}}`)

	t.Run("an update is delivered once", func(t *testing.T) {
		// Arrange
		h := newHarness(t, "app: {}")

		// Act
		first, errFirst := h.uc.TelegramWebhook(context.Background(), update)
		second, errSecond := h.uc.TelegramWebhook(context.Background(), update)

		// Assert
		require.NoError(t, errFirst)
		require.NoError(t, errSecond)
		assert.Equal(t, http.StatusOK, first.Status)
		assert.Equal(t, http.StatusOK, second.Status)
		assert.JSONEq(t, `{"ok":true,"duplicate":true}`, string(second.Body))
		assert.Equal(t, 1, h.mark2.count())
		assert.Equal(t, call{name: "TelegramWebhook", args: []any{string(update)}}, h.mark2.last())
	})

	t.Run("dedupe window ends", func(t *testing.T) {
		h := newHarness(t, "modules: {jarvis: {webhook_dedupe_minutes: 10}}")
		_, _ = h.uc.TelegramWebhook(context.Background(), update)

		h.clock.Advance(10 * time.Minute)
		_, err := h.uc.TelegramWebhook(context.Background(), update)

		require.NoError(t, err)
		assert.Equal(t, 2, h.mark2.count())
	})

	t.Run("rejected update can be retried", func(t *testing.T) {
		// Arrange
		h := newHarness(t, "app: {}")
		h.mark2.reply = &entity.Reply{Status: http.StatusInternalServerError, Body: []byte(`{"ok":false}`)}

		// Act
		first, _ := h.uc.TelegramWebhook(context.Background(), update)
		h.mark2.reply = &entity.Reply{Status: http.StatusOK, Body: []byte(`{"ok":true}`)}
		second, _ := h.uc.TelegramWebhook(context.Background(), update)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, first.Status)
		assert.Equal(t, http.StatusOK, second.Status)
		assert.Equal(t, 2, h.mark2.count())
	})

	t.Run("unreachable", func(t *testing.T) {
		h := newHarness(t, "app: {}")
		h.mark2.err = errors.New("connection refused")

		reply, err := h.uc.TelegramWebhook(context.Background(), update)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, reply.Status)
		assert.JSONEq(t, `{"ok":false,"error":"Mark2 unreachable"}`, string(reply.Body))
	})

	t.Run("updates without id are always forwarded", func(t *testing.T) {
		h := newHarness(t, "app: {}")

		for range 2 {
			_, err := h.uc.TelegramWebhook(context.Background(), []byte(`[1,2]`))
			require.NoError(t, err)
		}

		assert.Equal(t, 2, h.mark2.count())
	})
}
