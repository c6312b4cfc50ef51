package apperr

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// GRPCCode maps the error onto the closest gRPC status code, so the same
// taxonomy can back gRPC handlers. It lets status.FromError and status.Code
// recognise *Error values directly.
func (e *Error) GRPCCode() codes.Code {
	switch e.statusCode {
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusUnprocessableEntity, http.StatusPaymentRequired:
		return codes.FailedPrecondition
	}
	switch errcodes.CategoryOf(e.code) {
	case errcodes.CategoryValidation:
		return codes.InvalidArgument
	case errcodes.CategoryAuthentication:
		return codes.Unauthenticated
	case errcodes.CategoryNotFound:
		return codes.NotFound
	case errcodes.CategoryBusiness:
		if e.code == errcodes.ResourceConflict || e.code == errcodes.DatabaseConstraintViolation {
			return codes.AlreadyExists
		}
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// GRPCStatus implements the interface consumed by status.FromError. The
// status message is the safe user message.
func (e *Error) GRPCStatus() *status.Status {
	msg := e.userMessage
	if msg == "" {
		msg = e.message
	}
	return status.New(e.GRPCCode(), msg)
}
