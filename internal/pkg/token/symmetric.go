package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var reservedClaims = map[string]struct{}{
	"iat": {},
	"exp": {},
	"nbf": {},
	"jti": {},
	"iss": {},
}

// Config defines the inputs of a Symmetric codec.
type Config struct {
	// Secret is the shared master secret, at least MinSecretLength bytes.
	Secret []byte
	// Purpose separates keys: the signing key is HKDF-SHA256(Secret, info=Purpose).
	Purpose string
	Issuer  string
	Clock   clocker
	UUID    generator
}

// Symmetric is an HS256 Codec.
type Symmetric struct {
	key    []byte
	issuer string
	clock  clocker
	uuid   generator
}

func NewHS256(cfg Config) (*Symmetric, error) {
	key, err := DeriveKey(cfg.Secret, cfg.Purpose)
	if err != nil {
		return nil, err
	}

	return &Symmetric{
		key:    key,
		issuer: cfg.Issuer,
		clock:  cfg.Clock,
		uuid:   cfg.UUID,
	}, nil
}

// DeriveKey expands the master secret into a 32 byte key for one purpose,
// HKDF-SHA256 with info "jarvisgate:<purpose>".
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("jarvisgate:"+purpose)), key); err != nil {
		return nil, fmt.Errorf("token: derive %s key: %w", purpose, err)
	}

	return key, nil
}

// Sign embeds iss, jti, iat and exp = now+ttl next to payload.
func (s *Symmetric) Sign(payload map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	claims := make(libJWT.MapClaims, len(payload)+4)
	for k, v := range payload {
		if _, ok := reservedClaims[k]; ok {
			return "", fmt.Errorf("%w: %s", ErrReservedClaim, k)
		}
		claims[k] = v
	}

	now := s.clock.Now()
	claims["iss"] = s.issuer
	claims["jti"] = s.uuid.Generate()
	claims["iat"] = libJWT.NewNumericDate(now)
	claims["exp"] = libJWT.NewNumericDate(ceilSecond(now.Add(ttl)))

	return libJWT.NewWithClaims(libJWT.SigningMethodHS256, claims).SignedString(s.key)
}

// ceilSecond rounds up to whole seconds, exp is serialized without fractions
// and must never fall before now+ttl.
func ceilSecond(t time.Time) time.Time {
	if whole := t.Truncate(time.Second); !whole.Equal(t) {
		return whole.Add(time.Second)
	}
	return t
}

// Verify checks the signature first, then expiry: a token is valid iff now < exp.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	claims := libJWT.MapClaims{}

	_, err := libJWT.ParseWithClaims(tokenStr, claims,
		func(*libJWT.Token) (any, error) { return s.key, nil },
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithIssuer(s.issuer),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)

	switch {
	case err == nil:
	case errors.Is(err, libJWT.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSignature
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return Claims{}, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)

	payload := maps.Clone(map[string]any(claims))
	for k := range reservedClaims {
		delete(payload, k)
	}

	return Claims{
		ID:        jti,
		Payload:   payload,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
