package inbound

import "time"

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	OTPToken  string    `json:"otpToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (LoginResponse) Message() string {
	return "A login code has been sent."
}

type VerifyRequest struct {
	OTP      string `json:"otp"`
	Password string `json:"password"`
	OTPToken string `json:"otpToken"`
}

type VerifyResponse struct {
	Token string `json:"token"`
}

func (VerifyResponse) Message() string {
	return "Login successful."
}

type SessionResponse struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}
