package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// MinHMACKeyLength is the shortest accepted key.
const MinHMACKeyLength = 32

var ErrKeyTooShort = errors.New("hash: hmac key must be at least 32 bytes")

// HMACSHA256 produces hex encoded HMAC-SHA256 digests under a secret key.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(key []byte) (*HMACSHA256, error) {
	if len(key) < MinHMACKeyLength {
		return nil, ErrKeyTooShort
	}

	return &HMACSHA256{key: key}, nil
}

func (s *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return s.sum(plaintext), nil
}

// Verify compares in constant time.
func (s *HMACSHA256) Verify(hashed, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), s.sum(plaintext)) == 1
}

func (s *HMACSHA256) sum(plaintext string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(plaintext))

	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
