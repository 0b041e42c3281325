// Package uid generates identifiers: UUIDv7 strings for correlation ids and
// token ids, snowflake numbers for chat and alert ids.
package uid

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates unique, time ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}
