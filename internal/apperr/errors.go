// Package apperr is the typed error taxonomy of the API.
//
// Business code returns *Error values built by the named constructors in
// constructors.go (NewValidation, NewNotFound, NewInsufficientStock, …). Each
// constructor pins the code, HTTP status and operational flag of its subtype.
// Errors are immutable once built: fields are unexported and read through
// accessors, and Status is computed from StatusCode on every call.
//
// At the transport boundary an *Error is rendered into the wire Response by
// Format (see response.go).
package apperr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// Severity ranks an error for alerting and log level selection.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// now is the clock used for error timestamps. Tests replace it.
var now = time.Now

const maxStackDepth = 32

// Error is a taxonomy error.
type Error struct {
	name        string
	message     string
	userMessage string
	code        errcodes.Code
	statusCode  int
	operational bool
	severity    Severity
	context     map[string]any
	timestamp   time.Time
	cause       error
	stack       []uintptr
}

// Option customizes an Error at construction time.
type Option func(*Error)

// WithContext merges debugging metadata into the error context.
func WithContext(ctx map[string]any) Option {
	return func(e *Error) {
		for k, v := range ctx {
			e.context[k] = v
		}
	}
}

// WithCause records the underlying error. It is exposed through Unwrap and
// never rendered to callers.
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

// WithCode overrides the subtype's default code. The override must stay in
// the subtype's category; the compliance suite checks this, the constructor
// does not.
func WithCode(code errcodes.Code) Option {
	return func(e *Error) { e.code = code }
}

// WithUserMessage replaces the safe, caller-facing message.
func WithUserMessage(msg string) Option {
	return func(e *Error) { e.userMessage = msg }
}

type spec struct {
	name        string
	code        errcodes.Code
	statusCode  int
	operational bool
	severity    Severity
	userMessage string
}

func build(s spec, message string, opts []Option, ctx map[string]any) *Error {
	e := &Error{
		name:        s.name,
		message:     message,
		userMessage: s.userMessage,
		code:        s.code,
		statusCode:  s.statusCode,
		operational: s.operational,
		severity:    s.severity,
		context:     make(map[string]any, len(ctx)),
		timestamp:   now().UTC(),
	}
	for k, v := range ctx {
		e.context[k] = v
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pcs)
	e.stack = pcs[:n]
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.name, e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s (%d): %s", e.name, e.code, e.message)
}

// Unwrap returns the cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Name returns the error class name, such as "ValidationError".
func (e *Error) Name() string { return e.name }

// Message returns the developer-facing message.
func (e *Error) Message() string { return e.message }

// UserMessage returns the message safe to show to end users.
func (e *Error) UserMessage() string { return e.userMessage }

// Code returns the numeric taxonomy code.
func (e *Error) Code() errcodes.Code { return e.code }

// StatusCode returns the HTTP status the error renders with.
func (e *Error) StatusCode() int { return e.statusCode }

// IsOperational reports whether the error is an expected runtime condition
// rather than a programming defect.
func (e *Error) IsOperational() bool { return e.operational }

// Severity returns the error severity.
func (e *Error) Severity() Severity { return e.severity }

// Timestamp returns when the error was created, in UTC.
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Category returns the taxonomy category derived from the code.
func (e *Error) Category() errcodes.Category { return errcodes.CategoryOf(e.code) }

// Status is "fail" for 4xx status codes and "error" for everything else.
func (e *Error) Status() string {
	if e.statusCode >= 400 && e.statusCode <= 499 {
		return "fail"
	}
	return "error"
}

// Context returns a copy of the error metadata.
func (e *Error) Context() map[string]any {
	out := make(map[string]any, len(e.context))
	for k, v := range e.context {
		out[k] = v
	}
	return out
}

// FieldErrors returns the field → violation map carried by validation errors.
func (e *Error) FieldErrors() map[string]string {
	raw, ok := e.context[fieldErrorsKey]
	if !ok {
		return nil
	}
	src, ok := raw.(map[string]string)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Stack renders the construction call stack, one "function file:line" per line.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// ToJSON renders the wire response with the default formatter. The stack is
// attached only when includeStack is set and never for validation errors.
func (e *Error) ToJSON(includeStack bool) Response {
	return defaultFormatter.render(e, "", includeStack)
}

// From converts any error into a taxonomy error. Errors that already are (or
// wrap) an *Error are returned as is; anything else becomes an
// InternalServerError carrying the original as its cause. From(nil) is nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return NewInternalServer("unhandled error", WithCause(err))
}

// HasCode reports whether err is a taxonomy error with the given code.
func HasCode(err error, code errcodes.Code) bool {
	var ae *Error
	return errors.As(err, &ae) && ae != nil && ae.code == code
}
