package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/email"
	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/telegram"
	"github.com/shandysiswandi/jarvisgate/internal/auth/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// inbox collects every OTP message the fake delivery endpoints receive.
type inbox struct {
	mu    sync.Mutex
	texts []string
}

func (b *inbox) add(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, text)
}

func (b *inbox) lastCode(t *testing.T) string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.texts, "no otp delivered")
	m := codePattern.FindStringSubmatch(b.texts[len(b.texts)-1])
	require.Len(t, m, 2)
	return m[1]
}

func (b *inbox) Send(_ context.Context, msg mail.Message) error {
	b.add(msg.TextBody)
	return nil
}

func (b *inbox) Close() error { return nil }

func newTelegramServer(t *testing.T, box *inbox) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		box.add(body.Text)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDependency(t *testing.T, yaml string) (Dependency, *router.Router) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	val, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.New()
	uuid := uid.NewUUID()
	hmac, err := hash.NewHMACSHA256([]byte("hmac-key-0123456789abcdef01234567"))
	require.NoError(t, err)

	newCodec := func(purpose string) *token.Symmetric {
		c, err := token.NewHS256(token.Config{
			Secret:  []byte("0123456789abcdef0123456789abcdef"),
			Purpose: purpose,
			Issuer:  "jarvisgate",
			Clock:   clk,
			UUID:    uuid,
		})
		require.NoError(t, err)
		return c
	}

	session := token.NewSession(token.SessionConfig{
		Codec:   newCodec("session"),
		TTL:     7 * 24 * time.Hour,
		Subject: "mark01-user",
		Role:    "admin",
	})

	r := router.NewRouter(router.Config{
		Config:        cfg,
		UUID:          uuid,
		Authenticator: session,
		Instrument:    instrument.NewNoop(),
	})

	mq := messaging.NewMemory(messaging.MemoryConfig{})
	t.Cleanup(func() { _ = mq.Close() })

	return Dependency{
		Messaging:  mq,
		Router:     r,
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		Validator:  val,
		Clock:      clk,
		UUID:       uuid,
		HMAC:       hmac,
		Session:    session,
		OTPCodec:   newCodec("otp"),
	}, r
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()

	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(raw)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data: %v", resp)
	return d
}

func TestNew_LoginFlow(t *testing.T) {
	// Arrange
	box := &inbox{}
	srv := newTelegramServer(t, box)
	dep, r := newDependency(t, `
modules:
  auth:
    password: s3cret
    telegram:
      base_url: `+srv.URL+`
      bot_token: "123:abc"
      chat_id: "42"
`)
	require.NoError(t, New(dep))

	// Act
	code, resp := do(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"password": "s3cret"})
	require.Equal(t, http.StatusOK, code, resp)
	otpToken, _ := data(t, resp)["otpToken"].(string)
	require.NotEmpty(t, otpToken)
	assert.NotEmpty(t, data(t, resp)["expiresAt"])

	otp := box.lastCode(t)
	wrong := "111111"
	if otp == wrong {
		wrong = "222222"
	}

	code, resp = do(t, r, http.MethodPost, "/api/v1/auth/verify", "",
		map[string]any{"otp": wrong, "password": "s3cret", "otpToken": otpToken})
	require.Equal(t, http.StatusUnauthorized, code, resp)

	code, resp = do(t, r, http.MethodPost, "/api/v1/auth/verify", "",
		map[string]any{"otp": otp, "password": "s3cret", "otpToken": otpToken})
	require.Equal(t, http.StatusOK, code, resp)
	sessionToken, _ := data(t, resp)["token"].(string)

	// Assert
	code, resp = do(t, r, http.MethodGet, "/api/v1/auth/session", sessionToken, nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, map[string]any{"subject": "mark01-user", "role": "admin"}, data(t, resp))

	code, _ = do(t, r, http.MethodGet, "/api/v1/auth/session", otpToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestNew_Boundary(t *testing.T) {
	box := &inbox{}
	srv := newTelegramServer(t, box)
	dep, r := newDependency(t, `
modules:
  auth:
    password: s3cret
    telegram: {base_url: `+srv.URL+`, bot_token: "1:a", chat_id: "1"}
`)
	require.NoError(t, New(dep))

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{name: "wrong password", path: "/api/v1/auth/login", body: map[string]any{"password": "nope"}, want: http.StatusUnauthorized},
		{name: "missing password", path: "/api/v1/auth/login", body: map[string]any{}, want: http.StatusUnauthorized},
		{name: "unknown field", path: "/api/v1/auth/login", body: map[string]any{"password": "s3cret", "x": 1}, want: http.StatusBadRequest},
		{name: "not json", path: "/api/v1/auth/login", body: "s3cret", want: http.StatusBadRequest},
		{name: "verify without otp", path: "/api/v1/auth/verify", body: map[string]any{"password": "s3cret"}, want: http.StatusBadRequest},
		{name: "verify wrong password without otp", path: "/api/v1/auth/verify", body: map[string]any{"password": "nope"}, want: http.StatusUnauthorized},
		{name: "verify bad format", path: "/api/v1/auth/verify", body: map[string]any{"otp": "12ab56", "password": "s3cret"}, want: http.StatusBadRequest},
		{name: "verify without challenge", path: "/api/v1/auth/verify", body: map[string]any{"otp": "123456", "password": "s3cret"}, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, r, http.MethodPost, tt.path, "", tt.body)

			assert.Equal(t, tt.want, code, resp)
			assert.NotEmpty(t, resp["message"])
		})
	}

	t.Run("session without bearer", func(t *testing.T) {
		code, resp := do(t, r, http.MethodGet, "/api/v1/auth/session", "", nil)

		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Authentication required", resp["message"])
	})
}

func TestNew_EmailDelivery(t *testing.T) {
	// Arrange
	box := &inbox{}
	dep, r := newDependency(t, `
modules:
  auth:
    password: s3cret
    delivery: email
    email: {to: "owner@example.com"}
`)
	dep.Mail = box
	require.NoError(t, New(dep))

	// Act
	code, resp := do(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"password": "s3cret"})

	// Assert
	require.Equal(t, http.StatusOK, code, resp)
	assert.Len(t, box.lastCode(t), 6)
}

func TestNew_Config(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		mail    bool
		wantErr error
	}{
		{name: "no credential", yaml: `modules: {auth: {telegram: {bot_token: "1:a", chat_id: "1"}}}`, wantErr: usecase.ErrNoCredential},
		{name: "unknown store", yaml: `modules: {auth: {password: x, store: etcd}}`, wantErr: ErrUnknownStore},
		{name: "redis without cache", yaml: `modules: {auth: {password: x, store: redis}}`, wantErr: ErrCacheRequired},
		{name: "telegram not configured", yaml: `modules: {auth: {password: x}}`, wantErr: telegram.ErrNotConfigured},
		{name: "unknown delivery", yaml: `modules: {auth: {password: x, delivery: sms}}`, wantErr: ErrUnknownDelivery},
		{name: "email without client", yaml: `modules: {auth: {password: x, delivery: email, email: {to: a@b.c}}}`, wantErr: ErrMailRequired},
		{name: "email without recipient", yaml: `modules: {auth: {password: x, delivery: email}}`, mail: true, wantErr: email.ErrNoRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			dep, _ := newDependency(t, tt.yaml)
			if tt.mail {
				dep.Mail = &inbox{}
			}

			// Act
			err := New(dep)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing dependency", func(t *testing.T) {
		dep, _ := newDependency(t, `modules: {auth: {password: x}}`)
		dep.Session = nil

		assert.Error(t, New(dep))
	})
}
