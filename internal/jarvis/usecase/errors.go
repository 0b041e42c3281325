package usecase

import (
	"errors"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

var (
	ErrUnauthenticated = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	ErrForbidden       = goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	ErrInvalidReply    = goerror.NewBadGateway("Mark2 returned an invalid reply", nil)

	errUpdateNotDelivered = errors.New("telegram update not delivered")
)

// errUnreachable hides the transport detail from the caller and keeps it for logs.
func errUnreachable(err error) error {
	return goerror.NewBadGateway("Mark2 unreachable", err)
}
