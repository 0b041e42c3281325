package otp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
)

const (
	// Length is the number of digits of a code.
	Length = 6

	minCode = 100000
	maxCode = 999999
)

// Generator produces codes uniformly distributed over 100000-999999.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// Generate returns a fresh code; it fails only if the entropy source fails.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}

// ValidFormat reports whether code is exactly Length ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != Length {
		return false
	}

	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
