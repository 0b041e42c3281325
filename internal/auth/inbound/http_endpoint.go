package inbound

import (
	"github.com/shandysiswandi/jarvisgate/internal/auth/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
)

// HTTPEndpoint exposes the password + OTP login handlers.
type HTTPEndpoint struct {
	uc uc
}

// Login checks the password and sends a one-time code out of band.
// @Summary Start login
// @Description Validates the password and delivers a 6 digit code. The returned otpToken must be sent back on verify.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid password"
// @Failure 429 {object} router.errorResponse "Too many failed attempts"
// @Failure 500 {object} router.errorResponse "Code could not be delivered"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.PasswordCheck(r.Context(), usecase.PasswordCheckInput{
		Password: req.Password,
		ClientIP: r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{OTPToken: resp.OTPToken, ExpiresAt: resp.ExpiresAt}, nil
}

// Verify exchanges a one-time code for a session token.
// @Summary Complete login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Session token"
// @Failure 400 {object} router.errorResponse "Invalid request body or code format"
// @Failure 401 {object} router.errorResponse "Invalid, expired or missing challenge"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Router /api/v1/auth/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		OTP:      req.OTP,
		Password: req.Password,
		OTPToken: req.OTPToken,
		ClientIP: r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{Token: resp.Token}, nil
}

// Session reports who the bearer token belongs to.
// @Summary Current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=SessionResponse}
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/auth/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	p, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{Subject: p.Subject, Role: p.Role}, nil
}
