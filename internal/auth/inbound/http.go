package inbound

import (
	"context"

	"github.com/shandysiswandi/jarvisgate/internal/auth/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

type uc interface {
	PasswordCheck(ctx context.Context, in usecase.PasswordCheckInput) (*usecase.PasswordCheckOutput, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	Session(ctx context.Context) (*token.Principal, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/verify", end.Verify)
	r.GET("/api/v1/auth/session", end.Session) // need authenticated
}
