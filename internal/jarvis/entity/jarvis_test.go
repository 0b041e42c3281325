package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply_OK(t *testing.T) {
	for status, want := range map[int]bool{199: false, 200: true, 204: true, 299: true, 300: false, 502: false} {
		assert.Equal(t, want, (&Reply{Status: status}).OK(), status)
	}
}
