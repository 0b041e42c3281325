package token

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSecretTooShort is returned when the master secret is shorter than MinSecretLength.
	ErrSecretTooShort = errors.New("token: secret must be at least 32 bytes")

	// ErrReservedClaim is returned when a payload tries to set iat, exp, nbf, jti or iss.
	ErrReservedClaim = errors.New("token: payload uses a reserved claim")

	// ErrInvalidTTL is returned when a token would be born expired.
	ErrInvalidTTL = errors.New("token: ttl must be positive")

	// ErrInvalidSignature is returned when the signature does not match the key.
	ErrInvalidSignature = errors.New("token: invalid signature")

	// ErrTokenExpired is returned when now is at or after the expiry.
	ErrTokenExpired = errors.New("token: expired")

	// ErrInvalidToken is returned for malformed tokens, foreign issuers or algorithms.
	ErrInvalidToken = errors.New("token: invalid token")
)

// MinSecretLength is the minimum master secret size in bytes.
const MinSecretLength = 32

// Codec signs a payload into a token and verifies it back.
type Codec interface {
	Sign(payload map[string]any, ttl time.Duration) (string, error)
	Verify(token string) (Claims, error)
}

// Claims is the verified content of a token.
//
// Payload holds only caller supplied claims. Values round trip through JSON,
// so numbers come back as float64.
type Claims struct {
	ID        string
	Payload   map[string]any
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a protected route.
type Principal struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type authContextKey struct{}

// SetAuth stores the authenticated principal in ctx.
func SetAuth(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, authContextKey{}, p)
}

// GetAuth returns the principal stored in ctx, or nil for anonymous requests.
func GetAuth(ctx context.Context) *Principal {
	p, ok := ctx.Value(authContextKey{}).(Principal)
	if !ok {
		return nil
	}

	return &p
}
