package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-order-errors/internal/apperr"
)

const (
	errorWriterKey   = "errorWriter"
	renderedErrorKey = "renderedError"
)

// ErrorRecorder persists rendered error responses, e.g. for compliance
// audits. Failures are logged and never change the response.
type ErrorRecorder interface {
	RecordError(ctx context.Context, resp apperr.Response, requestID string) error
}

// ErrorOptions configures ErrorHandler.
type ErrorOptions struct {
	Formatter apperr.Formatter
	// IncludeStack attaches the construction stack to non-validation
	// responses. Never enable it in production.
	IncludeStack bool
	Recorder     ErrorRecorder
}

type errorWriter struct {
	opts ErrorOptions
}

var defaultErrorWriter = &errorWriter{}

// ErrorHandler renders the last error pushed with c.Error into the standard
// error response, unless a response was already rendered by WriteError.
// It also makes its options available to WriteError for the rest of the
// chain, so middleware that short-circuits (rate limiting, recovery,
// NoRoute) renders errors the same way.
func ErrorHandler(opts ErrorOptions) gin.HandlerFunc {
	w := &errorWriter{opts: opts}
	return func(c *gin.Context) {
		c.Set(errorWriterKey, w)
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if _, done := c.Get(renderedErrorKey); done {
			return
		}
		w.write(c, apperr.From(c.Errors.Last().Err))
	}
}

// WriteError renders err as the response and aborts the chain. Errors that
// are not taxonomy errors are rendered as InternalServerError.
func WriteError(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae == nil {
		ae = apperr.NewInternalServer("nil error written")
	}
	w := defaultErrorWriter
	if v, ok := c.Get(errorWriterKey); ok {
		if ew, ok := v.(*errorWriter); ok {
			w = ew
		}
	}
	w.write(c, ae)
}

func (w *errorWriter) write(c *gin.Context, ae *apperr.Error) {
	var resp apperr.Response
	if w.opts.IncludeStack {
		resp = w.opts.Formatter.FormatWithStack(ae, c.Request.URL.Path)
	} else {
		resp = w.opts.Formatter.Format(ae, c.Request.URL.Path)
	}
	c.Set(renderedErrorKey, ae)
	rid := RequestIDFrom(c)

	lg := LoggerFrom(c)
	ev := lg.Warn()
	if resp.Status >= 500 {
		ev = lg.Error()
	}
	ev.Err(ae.Unwrap()).
		Str("error", ae.Name()).
		Int("code", int(ae.Code())).
		Str("category", string(resp.Category)).
		Str("severity", string(ae.Severity())).
		Int("status", resp.Status).
		Str("detail", ae.Message()).
		Msg("api error")

	apiErrors.WithLabelValues(string(resp.Category), strconv.Itoa(int(resp.Code))).Inc()

	span := trace.SpanFromContext(c.Request.Context())
	span.RecordError(ae, trace.WithAttributes(
		attribute.Int("error.code", int(ae.Code())),
		attribute.String("error.category", string(resp.Category)),
	))
	if resp.Status >= 500 {
		span.SetStatus(otelcodes.Error, ae.Name())
	}

	if w.opts.Recorder != nil {
		if err := w.opts.Recorder.RecordError(c.Request.Context(), resp, rid); err != nil {
			lg.Warn().Err(err).Msg("record error event failed")
		}
	}

	if c.Writer.Written() {
		c.Abort()
		return
	}
	if rid != "" {
		c.Header(requestIDHeader, rid)
	}
	c.AbortWithStatusJSON(resp.Status, resp)
}

// renderedError returns the error rendered for this request, if any.
func renderedError(c *gin.Context) (*apperr.Error, bool) {
	v, ok := c.Get(renderedErrorKey)
	if !ok {
		return nil, false
	}
	ae, ok := v.(*apperr.Error)
	return ae, ok
}
