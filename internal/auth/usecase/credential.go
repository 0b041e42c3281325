package usecase

import (
	"errors"
	"strings"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
)

// ErrNoCredential is returned when neither a password nor a password hash is configured.
var ErrNoCredential = errors.New("auth: password or password hash must be configured")

// Credential checks a submitted password against the configured one.
type Credential interface {
	Match(password string) bool
}

type plainCredential struct {
	hmac   hash.Hash
	digest string
}

// Match compares HMAC digests of both sides in constant time.
func (c plainCredential) Match(password string) bool {
	return c.hmac.Verify(c.digest, password)
}

type hashedCredential struct {
	verifier hash.Hash
	encoded  string
}

func (c hashedCredential) Match(password string) bool {
	return c.verifier.Verify(c.encoded, password)
}

// NewCredential prefers passwordHash (bcrypt or argon2id) over the plaintext password.
func NewCredential(password, passwordHash, pepper string, hmac hash.Hash) (Credential, error) {
	if encoded := strings.TrimSpace(passwordHash); encoded != "" {
		verifier, err := hash.Detect(encoded, pepper)
		if err != nil {
			return nil, err
		}
		return hashedCredential{verifier: verifier, encoded: encoded}, nil
	}

	if password == "" {
		return nil, ErrNoCredential
	}

	digest, err := hmac.Hash(password)
	if err != nil {
		return nil, err
	}

	return plainCredential{hmac: hmac, digest: string(digest)}, nil
}
