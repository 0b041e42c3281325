package token

import (
	"context"
	"crypto/subtle"
	"time"
)

const (
	// ServiceSubject and ServiceRole identify callers using the static service key.
	ServiceSubject = "service"
	ServiceRole    = "service"
)

// SessionConfig defines a Session.
type SessionConfig struct {
	Codec   Codec
	TTL     time.Duration
	Subject string
	Role    string
	// ServiceKey is a static bearer credential for machine callers, empty disables it.
	ServiceKey string
}

// Session issues the single-user login session and authenticates bearer credentials.
type Session struct {
	codec      Codec
	ttl        time.Duration
	subject    string
	role       string
	serviceKey []byte
}

func NewSession(cfg SessionConfig) *Session {
	return &Session{
		codec:      cfg.Codec,
		ttl:        cfg.TTL,
		subject:    cfg.Subject,
		role:       cfg.Role,
		serviceKey: []byte(cfg.ServiceKey),
	}
}

// Issue signs a session token for the configured principal.
func (s *Session) Issue() (string, error) {
	return s.codec.Sign(map[string]any{"sub": s.subject, "role": s.role}, s.ttl)
}

// Subject is the principal subject of issued sessions.
func (s *Session) Subject() string {
	return s.subject
}

// TTL is the lifetime of issued sessions.
func (s *Session) TTL() time.Duration {
	return s.ttl
}

// Authenticate accepts the static service key or a valid, unexpired session token.
func (s *Session) Authenticate(_ context.Context, credential string) (Principal, error) {
	if credential == "" {
		return Principal{}, ErrInvalidToken
	}

	if len(s.serviceKey) > 0 && subtle.ConstantTimeCompare([]byte(credential), s.serviceKey) == 1 {
		return Principal{Subject: ServiceSubject, Role: ServiceRole}, nil
	}

	claims, err := s.codec.Verify(credential)
	if err != nil {
		return Principal{}, err
	}

	sub, _ := claims.Payload["sub"].(string)
	role, _ := claims.Payload["role"].(string)
	if sub == "" || role == "" {
		return Principal{}, ErrInvalidToken
	}

	return Principal{Subject: sub, Role: role}, nil
}
