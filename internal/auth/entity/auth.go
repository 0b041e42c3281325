package entity

import "time"

// CurrentChallenge is the key of the single outstanding OTP challenge.
const CurrentChallenge = "current"

// LoginAttempt counts failed password checks of one client address.
type LoginAttempt struct {
	Count         int64
	LastFailureAt time.Time
	BlockedUntil  time.Time
}

// Blocked reports whether the address is locked out at now.
func (a LoginAttempt) Blocked(now time.Time) bool {
	return !a.BlockedUntil.IsZero() && now.Before(a.BlockedUntil)
}

// BlockLapsed reports whether a previous lockout has ended at now.
func (a LoginAttempt) BlockLapsed(now time.Time) bool {
	return !a.BlockedUntil.IsZero() && !now.Before(a.BlockedUntil)
}

// Challenge is the server side record paired with an issued OTP token.
type Challenge struct {
	TokenHash string
	Attempts  int64
	ExpiresAt time.Time
}

// Expired reports whether the challenge window has closed at now.
func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
