package hash

import (
	"errors"
	"strings"
)

// ErrUnknownFormat is returned by Detect for strings that are not a supported hash.
var ErrUnknownFormat = errors.New("hash: unknown encoded format")

// Hash hashes a plaintext and verifies a plaintext against a previous result.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Detect picks the verifier matching an encoded hash produced by bcrypt or argon2id.
func Detect(encoded, pepper string) (Hash, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return NewArgon2id(pepper), nil
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return NewBcrypt(0, pepper), nil
	default:
		return nil, ErrUnknownFormat
	}
}
