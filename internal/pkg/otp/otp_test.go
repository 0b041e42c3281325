package otp

import (
	"errors"
	"strconv"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Run("codes stay in range", func(t *testing.T) {
		// Arrange
		g := NewGenerator()

		for range 2000 {
			// Act
			code, err := g.Generate()

			// Assert
			require.NoError(t, err)
			require.True(t, ValidFormat(code), code)
			n, _ := strconv.Atoi(code)
			require.GreaterOrEqual(t, n, minCode)
			require.LessOrEqual(t, n, maxCode)
		}
	})

	t.Run("entropy failure", func(t *testing.T) {
		// Arrange
		errRead := errors.New("no entropy")
		g := &Generator{rand: iotest.ErrReader(errRead)}

		// Act
		code, err := g.Generate()

		// Assert
		assert.ErrorIs(t, err, errRead)
		assert.Empty(t, code)
	})
}

func TestValidFormat(t *testing.T) {
	tests := map[string]bool{
		"482913":  true,
		"000000":  true,
		"48291":   false,
		"4829134": false,
		"48291a":  false,
		"+48291":  false,
		"４８２９１３":  false,
		"":        false,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, ValidFormat(code))
		})
	}
}
