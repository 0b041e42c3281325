package usecase

import "github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"

var (
	ErrInvalidCredential  = goerror.NewBusiness("Invalid password", goerror.CodeUnauthorized)
	ErrRateLimited        = goerror.NewBusiness("Too many failed attempts, try again later", goerror.CodeTooManyRequest)
	ErrSessionInvalid     = goerror.NewBusiness("Session invalid, please log in again", goerror.CodeUnauthorized)
	ErrInvalidFormat      = goerror.NewBusiness("OTP must be 6 digits", goerror.CodeInvalidFormat)
	ErrNoPendingChallenge = goerror.NewBusiness("No pending OTP, please log in again", goerror.CodeUnauthorized)
	ErrTooManyAttempts    = goerror.NewBusiness("Too many attempts, please log in again", goerror.CodeTooManyRequest)
	ErrExpired            = goerror.NewBusiness("OTP expired, please log in again", goerror.CodeUnauthorized)
	ErrInvalidCode        = goerror.NewBusiness("Invalid OTP", goerror.CodeUnauthorized)
	ErrDeliveryFailed     = goerror.NewBusiness("Failed to send OTP", goerror.CodeInternal)
)
