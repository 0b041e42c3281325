package config

import (
	"io"
	"time"
)

// Config is the read-only view of application settings.
//
// Missing keys resolve to the zero value of the requested type; callers are
// expected to validate anything that must be present.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond, GetMinute and GetDay read an integer and scale it to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration

	// GetArray reads a comma separated list, trimming blanks and dropping empty items.
	GetArray(key string) []string
}
