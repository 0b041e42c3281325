package entity

import "time"

// Kind classifies a security alert.
type Kind string

const (
	KindLoginLocked       Kind = "login_locked"
	KindLoginSucceeded    Kind = "login_succeeded"
	KindOTPDeliveryFailed Kind = "otp_delivery_failed"
)

func (k Kind) String() string {
	return string(k)
}

// Alert is one entry of the security feed.
type Alert struct {
	ID        int64
	Kind      Kind
	ClientIP  string
	Message   string
	CreatedAt time.Time
}
