package apperr

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// Subtype names, as rendered in the "error" field of the wire response.
const (
	NameBadRequest             = "BadRequestError"
	NameValidation             = "ValidationError"
	NameUnauthorized           = "UnauthorizedError"
	NameForbidden              = "ForbiddenError"
	NameNotFound               = "NotFoundError"
	NameConflict               = "ConflictError"
	NameDatabaseConstraint     = "DatabaseConstraintError"
	NameInsufficientStock      = "InsufficientStockError"
	NamePaymentFailed          = "PaymentFailedError"
	NameOrderNotProcessable    = "OrderNotProcessableError"
	NameInvalidStateTransition = "InvalidStateTransitionError"
	NameRateLimitExceeded      = "RateLimitExceededError"
	NameInternalServer         = "InternalServerError"
	NameDatabase               = "DatabaseError"
	NameDatabaseConnection     = "DatabaseConnectionError"
	NameExternalService        = "ExternalServiceError"
	NameServiceUnavailable     = "ServiceUnavailableError"
)

// fieldErrorsKey is the context key holding a ValidationError's field map.
const fieldErrorsKey = "errors"

var (
	badRequestSpec = spec{NameBadRequest, errcodes.BadRequest, http.StatusBadRequest, true, SeverityLow,
		"Invalid request. Please check your input."}
	validationSpec = spec{NameValidation, errcodes.ValidationFailed, http.StatusBadRequest, true, SeverityLow,
		"Validation failed. Please check your input."}
	unauthorizedSpec = spec{NameUnauthorized, errcodes.Unauthorized, http.StatusUnauthorized, true, SeverityMedium,
		"Please log in to continue."}
	forbiddenSpec = spec{NameForbidden, errcodes.Forbidden, http.StatusForbidden, true, SeverityMedium,
		"You do not have permission to access this resource."}
	notFoundSpec = spec{NameNotFound, errcodes.ResourceNotFound, http.StatusNotFound, true, SeverityLow,
		"The requested resource was not found."}
	conflictSpec = spec{NameConflict, errcodes.ResourceConflict, http.StatusConflict, true, SeverityMedium,
		"This operation conflicts with existing data."}
	constraintSpec = spec{NameDatabaseConstraint, errcodes.DatabaseConstraintViolation, http.StatusConflict, true, SeverityMedium,
		"This operation violates a data constraint."}
	stockSpec = spec{NameInsufficientStock, errcodes.InsufficientStock, http.StatusConflict, true, SeverityLow,
		""}
	paymentSpec = spec{NamePaymentFailed, errcodes.PaymentFailed, http.StatusPaymentRequired, true, SeverityHigh,
		"Payment failed. Please check your payment method."}
	notProcessableSpec = spec{NameOrderNotProcessable, errcodes.OrderNotProcessable, http.StatusUnprocessableEntity, true, SeverityMedium,
		""}
	transitionSpec = spec{NameInvalidStateTransition, errcodes.InvalidStateTransition, http.StatusConflict, true, SeverityMedium,
		""}
	rateLimitSpec = spec{NameRateLimitExceeded, errcodes.RateLimitExceeded, http.StatusTooManyRequests, true, SeverityLow,
		"Too many requests. Please try again later."}
	internalSpec = spec{NameInternalServer, errcodes.InternalServerError, http.StatusInternalServerError, false, SeverityCritical,
		"An unexpected error occurred. Please try again later."}
	databaseSpec = spec{NameDatabase, errcodes.DatabaseError, http.StatusInternalServerError, false, SeverityCritical,
		"A database error occurred. Please try again."}
	dbConnSpec = spec{NameDatabaseConnection, errcodes.DatabaseConnectionFailed, http.StatusServiceUnavailable, false, SeverityCritical,
		"Database connection error. Please try again later."}
	externalSpec = spec{NameExternalService, errcodes.ExternalServiceError, http.StatusBadGateway, false, SeverityHigh,
		"An external service is currently unavailable. Please try again later."}
	unavailableSpec = spec{NameServiceUnavailable, errcodes.ServiceUnavailable, http.StatusServiceUnavailable, false, SeverityHigh,
		"Service temporarily unavailable. Please try again later."}
)

// NewBadRequest reports a malformed request.
func NewBadRequest(message string, opts ...Option) *Error {
	return build(badRequestSpec, message, opts, nil)
}

// NewValidation reports field-level validation failures. fieldErrors maps a
// field name to a description of what is wrong with it and is rendered as the
// top-level "errors" object of the response.
func NewValidation(message string, fieldErrors map[string]string, opts ...Option) *Error {
	fe := make(map[string]string, len(fieldErrors))
	for k, v := range fieldErrors {
		fe[k] = v
	}
	return build(validationSpec, message, opts, map[string]any{fieldErrorsKey: fe})
}

// NewUnauthorized reports a missing or invalid credential.
func NewUnauthorized(message string, opts ...Option) *Error {
	if message == "" {
		message = "authentication required"
	}
	return build(unauthorizedSpec, message, opts, nil)
}

// NewForbidden reports an authenticated caller without permission.
func NewForbidden(message string, opts ...Option) *Error {
	if message == "" {
		message = "access denied"
	}
	return build(forbiddenSpec, message, opts, nil)
}

// NewNotFound reports a missing resource.
func NewNotFound(message string, opts ...Option) *Error {
	return build(notFoundSpec, message, opts, nil)
}

// NotFoundFor reports that resource with the given id does not exist.
func NotFoundFor(resource string, id any, opts ...Option) *Error {
	e := build(notFoundSpec, fmt.Sprintf("%s with ID %v not found", resource, id), opts,
		map[string]any{"resource": resource, "id": id})
	if e.userMessage == notFoundSpec.userMessage {
		e.userMessage = fmt.Sprintf("The requested %s was not found.", strings.ToLower(resource))
	}
	return e
}

// NewConflict reports a request that clashes with the current resource state.
func NewConflict(message string, opts ...Option) *Error {
	return build(conflictSpec, message, opts, nil)
}

// NewDatabaseConstraint reports a violated constraint on table.
func NewDatabaseConstraint(constraint, table string, opts ...Option) *Error {
	return build(constraintSpec,
		fmt.Sprintf("database constraint violation: %s on table %s", constraint, table),
		opts, map[string]any{"constraint": constraint, "table": table})
}

// NewInsufficientStock reports that fewer than requested units are available.
func NewInsufficientStock(productID int64, requested, available int, opts ...Option) *Error {
	e := build(stockSpec,
		fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", productID, requested, available),
		opts, map[string]any{"productId": productID, "requested": requested, "available": available})
	if e.userMessage == "" {
		e.userMessage = fmt.Sprintf("Only %d units available. Please adjust quantity.", available)
	}
	return e
}

// NewPaymentFailed reports a declined or failed payment.
func NewPaymentFailed(reason string, opts ...Option) *Error {
	return build(paymentSpec, "payment failed: "+reason, opts, map[string]any{"reason": reason})
}

// NewOrderNotProcessable reports an order that cannot move forward.
func NewOrderNotProcessable(orderID any, reason string, opts ...Option) *Error {
	e := build(notProcessableSpec, fmt.Sprintf("order %v cannot be processed: %s", orderID, reason),
		opts, map[string]any{"orderId": orderID, "reason": reason})
	if e.userMessage == "" {
		e.userMessage = "Order cannot be processed: " + reason
	}
	return e
}

// NewInvalidStateTransition reports a disallowed change of entity state.
func NewInvalidStateTransition(entity, from, to string, opts ...Option) *Error {
	e := build(transitionSpec, fmt.Sprintf("invalid state transition for %s: %s -> %s", entity, from, to),
		opts, map[string]any{"entity": entity, "currentState": from, "targetState": to})
	if e.userMessage == "" {
		e.userMessage = fmt.Sprintf("Cannot change %s from %s to %s.", entity, from, to)
	}
	return e
}

// NewRateLimitExceeded reports that a caller exceeded limit requests per window.
func NewRateLimitExceeded(limit float64, window time.Duration, opts ...Option) *Error {
	return build(rateLimitSpec, fmt.Sprintf("rate limit exceeded: %g requests per %s", limit, window),
		opts, map[string]any{"limit": limit, "window": window.String()})
}

// NewInternalServer reports a programming defect or an unclassified failure.
func NewInternalServer(message string, opts ...Option) *Error {
	return build(internalSpec, message, opts, nil)
}

// NewDatabase reports a failed database operation (SELECT, INSERT, …) on table.
func NewDatabase(operation, table string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithCause(cause)}, opts...)
	return build(databaseSpec,
		fmt.Sprintf("database %s failed on table %s: %s", operation, table, causeText(cause)),
		opts, map[string]any{"operation": operation, "table": table, "originalError": causeText(cause)})
}

// NewDatabaseConnection reports a lost or refused database connection.
func NewDatabaseConnection(cause error, opts ...Option) *Error {
	opts = append([]Option{WithCause(cause)}, opts...)
	return build(dbConnSpec, "database connection failed: "+causeText(cause),
		opts, map[string]any{"originalError": causeText(cause)})
}

// NewExternalService reports a failed call to a third-party service.
func NewExternalService(service, operation string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithCause(cause)}, opts...)
	return build(externalSpec,
		fmt.Sprintf("external service %s failed during %s: %s", service, operation, causeText(cause)),
		opts, map[string]any{"service": service, "operation": operation, "originalError": causeText(cause)})
}

// NewServiceUnavailable reports that service cannot take requests right now.
func NewServiceUnavailable(service string, opts ...Option) *Error {
	return build(unavailableSpec, fmt.Sprintf("service %s is currently unavailable", service),
		opts, map[string]any{"service": service})
}

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
