// Package errcodes is the closed registry of numeric API error codes.
//
// Every code belongs to exactly one Category, determined purely by its
// numeric range:
//
//	1000–1999  validation
//	2000–2999  authentication
//	3000–3999  not_found
//	4000–4999  business
//	5000+      server
//
// The registry itself is read-only. It is loaded once at package init from
// the embedded codes.yaml catalog and exposed only through lookup functions,
// so callers cannot register or patch codes at runtime.
package errcodes

import "net/http"

// Code is a numeric, machine-readable error code.
type Code int

// Category is the bucket a Code falls into.
type Category string

const (
	CategoryValidation     Category = "validation"
	CategoryAuthentication Category = "authentication"
	CategoryNotFound       Category = "not_found"
	CategoryBusiness       Category = "business"
	CategoryServer         Category = "server"

	// CategoryUnknown is returned for codes outside every published range.
	CategoryUnknown Category = "unknown"
)

// Categories lists the five published categories in range order.
func Categories() []Category {
	return []Category{
		CategoryValidation,
		CategoryAuthentication,
		CategoryNotFound,
		CategoryBusiness,
		CategoryServer,
	}
}

// Registered codes. Each constant has a matching entry in codes.yaml.
const (
	// Validation (400)
	ValidationFailed     Code = 1001
	InvalidInput         Code = 1002
	MissingRequiredField Code = 1003
	InvalidFormat        Code = 1004
	BadRequest           Code = 1005

	// Authentication (401/403)
	Unauthorized Code = 2001
	InvalidToken Code = 2002
	TokenExpired Code = 2003
	Forbidden    Code = 2004

	// Not found (404)
	ResourceNotFound Code = 3001
	UserNotFound     Code = 3002
	ProductNotFound  Code = 3003
	OrderNotFound    Code = 3004
	OccasionNotFound Code = 3005
	RouteNotFound    Code = 3006

	// Business rules (4xx, usually 409)
	InsufficientStock           Code = 4001
	PaymentFailed               Code = 4002
	OrderNotProcessable         Code = 4003
	InvalidStateTransition      Code = 4004
	DatabaseConstraintViolation Code = 4005
	ResourceConflict            Code = 4006
	RateLimitExceeded           Code = 4007

	// Server (5xx)
	InternalServerError      Code = 5001
	DatabaseError            Code = 5002
	ExternalServiceError     Code = 5003
	ServiceUnavailable       Code = 5004
	DatabaseConnectionFailed Code = 5005
)

// CategoryOf returns the category of code from its numeric range alone.
// Codes below 1000 yield CategoryUnknown. Registration is checked separately
// by IsRegistered.
func CategoryOf(code Code) Category {
	switch {
	case IsValidationError(code):
		return CategoryValidation
	case IsAuthError(code):
		return CategoryAuthentication
	case IsNotFoundCode(code):
		return CategoryNotFound
	case IsBusinessError(code):
		return CategoryBusiness
	case IsServerError(code):
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// IsValidationError reports whether code is in the 1000-1999 range.
func IsValidationError(code Code) bool { return code >= 1000 && code <= 1999 }

// IsAuthError reports whether code is in the 2000-2999 range.
func IsAuthError(code Code) bool { return code >= 2000 && code <= 2999 }

// IsNotFoundCode reports whether code is in the 3000-3999 range.
func IsNotFoundCode(code Code) bool { return code >= 3000 && code <= 3999 }

// IsBusinessError reports whether code is in the 4000-4999 range.
func IsBusinessError(code Code) bool { return code >= 4000 && code <= 4999 }

// IsServerError reports whether code is 5000 or above.
func IsServerError(code Code) bool { return code >= 5000 }

// HTTPStatus returns the conventional HTTP status for a category.
// CategoryUnknown maps to 500.
func HTTPStatus(c Category) int {
	switch c {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryBusiness:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Valid reports whether c is one of the five published categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryValidation, CategoryAuthentication, CategoryNotFound, CategoryBusiness, CategoryServer:
		return true
	}
	return false
}

// String returns the category name.
func (c Category) String() string { return string(c) }
