package event

// Destinations published by the auth module.
const (
	AuthLoginLockedDestination         string = "auth_login_locked"
	AuthLoginSucceededDestination      string = "auth_login_succeeded"
	AuthOTPDeliveryFailedDestination   string = "auth_otp_delivery_failed"
	AuthLoginLockedConsumerAlert       string = "auth_login_locked_alert"
	AuthLoginSucceededConsumerAlert    string = "auth_login_succeeded_alert"
	AuthOTPDeliveryFailedConsumerAlert string = "auth_otp_delivery_failed_alert"
)

type AuthLoginLockedMessage struct {
	ClientKey    string `json:"client_key"`
	Failures     int64  `json:"failures"`
	BlockedUntil int64  `json:"blocked_until"`
}

type AuthLoginSucceededMessage struct {
	ClientKey string `json:"client_key"`
	Subject   string `json:"subject"`
	ExpiresAt int64  `json:"expires_at"`
}

type AuthOTPDeliveryFailedMessage struct {
	ClientKey string `json:"client_key"`
	Channel   string `json:"channel"`
	Reason    string `json:"reason"`
}
