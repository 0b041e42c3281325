package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
)

type staticAuthenticator map[string]token.Principal

func (s staticAuthenticator) Authenticate(_ context.Context, credential string) (token.Principal, error) {
	p, ok := s[credential]
	if !ok {
		return token.Principal{}, token.ErrInvalidToken
	}
	return p, nil
}

type payload struct {
	Subject string `json:"subject"`
}

func (payload) Message() string { return "ok" }

type created struct{}

func (created) StatusCode() int { return http.StatusCreated }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{
		Config:        cfg,
		UUID:          uid.NewUUID(),
		Authenticator: staticAuthenticator{"good": {Subject: "mark01-user", Role: "admin"}},
		Instrument:    instrument.NewNoop(),
	})
}

func serve(r http.Handler, method, target, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Authentication(t *testing.T) {
	// Arrange
	r := newTestRouter(t, "app: {}")
	r.GET("/api/v1/auth/session", func(req *Request) (any, error) {
		return payload{Subject: token.GetAuth(req.Context()).Subject}, nil
	})
	r.POST("/api/v1/auth/login", func(*Request) (any, error) {
		return created{}, nil
	})

	t.Run("public route needs no credential", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/api/v1/auth/login", "", "")
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("welcome is public", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
	})

	for name, bearer := range map[string]string{"missing": "", "invalid": "bad"} {
		t.Run(name+" credential", func(t *testing.T) {
			// Act
			rec := serve(r, http.MethodGet, "/api/v1/auth/session", bearer, "")

			// Assert
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Authentication required"}`, rec.Body.String())
		})
	}

	t.Run("valid credential reaches handler", func(t *testing.T) {
		// Act
		rec := serve(r, http.MethodGet, "/api/v1/auth/session", "good", "")

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"ok","data":{"subject":"mark01-user"}}`, rec.Body.String())
	})
}

func TestRouter_Responses(t *testing.T) {
	// Arrange
	r := newTestRouter(t, "app: {maintenance: {endpoints: \"/down\"}}")
	r.GET("/raw", func(*Request) (any, error) {
		return &RawResponse{Status: http.StatusAccepted, ContentType: "audio/mpeg", Body: []byte{0xff, 0xfb}}, nil
	})
	r.GET("/business", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Too many attempts", goerror.CodeTooManyRequest)
	})
	r.GET("/validation", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"otp": "otp is a required field"})
	})
	r.GET("/plain", func(*Request) (any, error) {
		return nil, errors.New("db exploded")
	})
	r.GET("/panic", func(*Request) (any, error) {
		panic("boom")
	})
	r.DELETE("/empty", func(*Request) (any, error) {
		return nil, nil
	})
	r.GET("/down", func(*Request) (any, error) {
		return payload{}, nil
	})

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
	}{
		{name: "business error", method: http.MethodGet, target: "/business", wantCode: 429, wantBody: `{"message":"Too many attempts"}`},
		{name: "validation error", method: http.MethodGet, target: "/validation", wantCode: 400, wantBody: `{"message":"Validation error","error":{"otp":"otp is a required field"}}`},
		{name: "unknown error hides detail", method: http.MethodGet, target: "/plain", wantCode: 500, wantBody: `{"message":"Internal server error"}`},
		{name: "panic", method: http.MethodGet, target: "/panic", wantCode: 500, wantBody: `{"message":"Internal server error"}`},
		{name: "maintenance", method: http.MethodGet, target: "/down", wantCode: 503, wantBody: `{"message":"service is under maintenance"}`},
		{name: "not found", method: http.MethodGet, target: "/nope", wantCode: 404, wantBody: `{"message":"endpoint not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := serve(r, tt.method, tt.target, "good", "")

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("raw response", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/raw", "good", "")

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, []byte{0xff, 0xfb}, rec.Body.Bytes())
	})

	t.Run("nil payload is no content", func(t *testing.T) {
		rec := serve(r, http.MethodDelete, "/empty", "good", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequest_DecodeBody(t *testing.T) {
	type body struct {
		Password string `json:"password"`
	}

	tests := []struct {
		in string
		ok bool
	}{
		{in: `{"password":"x"}`, ok: true},
		{in: `{"password":"x"} {}`},
		{in: `{"password":"x","other":1}`},
		{in: `{"password":`},
		{in: `["password"]`},
		{in: ``},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			// Arrange
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.in))}
			var dst body

			// Act
			err := req.DecodeBody(&dst)

			// Assert
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
		})
	}
}

func TestRequest_ClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "forwarded first hop", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, want: "203.0.113.9"},
		{name: "real ip wins over forwarded", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Real-IP": "198.51.100.2", "X-Forwarded-For": "203.0.113.9"}, want: "198.51.100.2"},
		{name: "garbage header ignored", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "10.0.0.1"},
		{name: "unknown", remoteAddr: "pipe", want: UnknownClientIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var got string
			h := middlewareIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = (&Request{Request: r}).ClientIP()
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			// Act
			h.ServeHTTP(httptest.NewRecorder(), req)

			// Assert
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetQueryInt(t *testing.T) {
	req := &Request{Request: httptest.NewRequest(http.MethodGet, "/?limit=25&bad=x", nil)}

	v, err := req.GetQueryInt("limit", 100)
	require.NoError(t, err)
	assert.Equal(t, 25, v)

	v, err = req.GetQueryInt("missing", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	_, err = req.GetQueryInt("bad", 100)
	assert.Error(t, err)
}

func TestMasker(t *testing.T) {
	m := masker{"password": {}, "authorization": {}}

	got := m.body([]byte(`{"password":"x","nested":[{"Password":"y"}],"ok":1}`), false)
	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"***","nested":[{"Password":"***"}],"ok":1}`, string(b))

	assert.Equal(t, "<binary body omitted>", m.body([]byte{0xff, 0xfe, 0xfd}, false))
	assert.Equal(t, map[string]any{"body": "abc", "truncated": true}, m.body([]byte("abc"), true))

	h := m.headers(http.Header{"Authorization": {"Bearer x"}, "Accept": {"*/*"}})
	assert.Equal(t, "***", h.Get("Authorization"))
	assert.Equal(t, "*/*", h.Get("Accept"))
}

func TestRequest_JSONBody(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{in: `{"update_id":1}`, ok: true},
		{in: `[1,2]`, ok: true},
		{in: ` "text" `, ok: true},
		{in: `{"a":1} {"b":2}`},
		{in: `{"a":`},
		{in: ``},
		{in: strings.Repeat(" ", maxBodyBytes) + `{}`},
	}

	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.in))}

			raw, err := req.JSONBody()

			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.in, string(raw))
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestIncomingCID(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{name: "none", header: http.Header{}, want: ""},
		{name: "correlation id wins", header: http.Header{HeaderCorrelationID: {"abc"}, HeaderRequestID: {"xyz"}}, want: "abc"},
		{name: "request id fallback", header: http.Header{HeaderRequestID: {" xyz "}}, want: "xyz"},
		{name: "header injection skipped", header: http.Header{HeaderCorrelationID: {"a\r\nSet-Cookie: x"}, HeaderRequestID: {"ok"}}, want: "ok"},
		{name: "long id truncated", header: http.Header{HeaderCorrelationID: {strings.Repeat("a", 200)}}, want: strings.Repeat("a", maxCorrelationIDLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, incomingCID(tt.header))
		})
	}
}

func TestRouter_CorrelationIDEcho(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "from-proxy")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}
