package store

import "time"

const (
	keyPrefix       = "jarvisgate:auth:"
	attemptPrefix   = keyPrefix + "attempt:"
	challengeKey    = keyPrefix + "challenge:"
	fieldCount      = "count"
	fieldLastFail   = "last_failure_at"
	fieldBlocked    = "blocked_until"
	fieldTokenHash  = "token_hash"
	fieldAttempts   = "attempts"
	fieldExpiresAt  = "expires_at"
	missingSentinel = -1
)

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
