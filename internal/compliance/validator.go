// Package compliance audits error responses and taxonomy errors against the
// error code registry and the wire contract of apperr.Response.
//
// Nothing in this package panics on bad input. Every check is a guarded read
// that appends a human-readable violation, so the validator can be pointed at
// half-built or deliberately broken values in tests, or at response payloads
// captured from live traffic.
package compliance

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// Result is the outcome of a single validation.
type Result struct {
	IsValid    bool     `json:"isValid"`
	Violations []string `json:"violations"`
}

// responseChecks is the number of checks ValidateErrorResponse runs; each
// contributes at most one violation.
const responseChecks = 17

// requiredFields lists the wire fields in order with their expected JSON kind.
var requiredFields = []struct {
	name string
	kind string
}{
	{"success", "boolean"},
	{"error", "string"},
	{"code", "number"},
	{"message", "string"},
	{"category", "string"},
	{"type", "string"},
	{"title", "string"},
	{"status", "number"},
	{"detail", "string"},
	{"instance", "string"},
	{"timestamp", "string"},
}

// ValidateErrorResponse checks a wire response. It accepts an apperr.Response,
// a decoded JSON object (map[string]any), raw JSON ([]byte, json.RawMessage
// or string) or any value that marshals to a JSON object.
func ValidateErrorResponse(response any) (res Result) {
	v := &violations{}
	defer func() {
		if rec := recover(); rec != nil {
			v.add("response could not be inspected: %v", rec)
		}
		res = v.result()
	}()

	m, err := asObject(response)
	if err != nil {
		v.add("response must be a JSON object: %v", err)
		return
	}
	checkResponse(m, v)
	return
}

func checkResponse(m map[string]any, v *violations) {
	for _, f := range requiredFields {
		val, ok := m[f.name]
		if !ok {
			v.add("Missing required field: %s", f.name)
			continue
		}
		switch f.kind {
		case "boolean":
			if b, isBool := val.(bool); !isBool || b {
				v.add("success must be false for errors")
			}
		case "number":
			if _, isNum := asNumber(val); !isNum {
				v.add("%s must be a number", f.name)
			}
		case "string":
			if _, isStr := val.(string); !isStr {
				v.add("%s must be a string", f.name)
			}
		}
	}

	code, codeOK := asInt(m["code"])
	status, statusOK := asInt(m["status"])
	category, _ := m["category"].(string)

	// Registered code.
	if _, present := m["code"]; present && (!codeOK || !errcodes.IsRegistered(errcodes.Code(code))) {
		v.add("code %v is not in ERROR_CODES", display(m["code"]))
	}

	// Category agrees with the code range.
	expected := errcodes.CategoryUnknown
	if codeOK {
		expected = errcodes.CategoryOf(errcodes.Code(code))
	}
	if errcodes.Category(category) != expected || !expected.Valid() {
		v.add("category %v doesn't match code %v", display(m["category"]), display(m["code"]))
	}

	// Status agrees with the category.
	if codeOK && statusOK {
		if msg := statusViolation(errcodes.Code(code), status); msg != "" {
			v.add("%s", msg)
		}
	}

	// Type is an absolute URI.
	if s, ok := m["type"].(string); ok {
		if u, err := url.Parse(s); err != nil || !u.IsAbs() || u.Host == "" {
			v.add("type must be an absolute URI")
		}
	}

	// Timestamp is ISO-8601.
	if s, ok := m["timestamp"].(string); ok {
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			v.add("timestamp must be in ISO 8601 format")
		}
	}

	// Validation responses carry field errors.
	if (codeOK && errcodes.IsValidationError(errcodes.Code(code))) || category == string(errcodes.CategoryValidation) {
		if _, ok := m["errors"].(map[string]any); !ok {
			v.add("validation errors must include errors field with field-specific messages")
		}
	}
}

// statusViolation pins validation to 400 and only requires a plausible
// 4xx/5xx for the other categories.
func statusViolation(code errcodes.Code, status int) string {
	switch errcodes.CategoryOf(code) {
	case errcodes.CategoryValidation:
		if status != 400 {
			return "validation errors must have status 400"
		}
	case errcodes.CategoryAuthentication:
		if status < 400 || status > 499 {
			return "authentication errors must have a 4xx status"
		}
	case errcodes.CategoryNotFound:
		if status < 400 || status > 499 {
			return "not found errors must have a 4xx status"
		}
	case errcodes.CategoryBusiness:
		if status < 400 || status > 499 {
			return "business errors must have a 4xx status"
		}
	case errcodes.CategoryServer:
		if status < 500 || status > 599 {
			return "server errors must have status >= 500"
		}
	}
	return ""
}

// ErrorObject is the read surface of a taxonomy error. *apperr.Error
// implements it.
type ErrorObject interface {
	Name() string
	Message() string
	Code() errcodes.Code
	StatusCode() int
	Status() string
	IsOperational() bool
}

// ValidateErrorObject checks a taxonomy error: presence and type of name,
// message, code, statusCode, status and isOperational, that code is
// registered, and that status is "fail" for 4xx and "error" for 5xx. Besides
// ErrorObject values it accepts maps keyed by those attribute names.
func ValidateErrorObject(obj any) (res Result) {
	v := &violations{}
	defer func() {
		if rec := recover(); rec != nil {
			v.add("error object could not be inspected: %v", rec)
		}
		res = v.result()
	}()

	var attrs map[string]any
	switch o := obj.(type) {
	case nil:
		v.add("error object must not be nil")
		return
	case ErrorObject:
		attrs = map[string]any{
			"name":          o.Name(),
			"message":       o.Message(),
			"code":          int(o.Code()),
			"statusCode":    o.StatusCode(),
			"status":        o.Status(),
			"isOperational": o.IsOperational(),
		}
	case map[string]any:
		attrs = o
	default:
		m, err := asObject(obj)
		if err != nil {
			v.add("error object must be an object: %v", err)
			return
		}
		attrs = m
	}
	checkObject(attrs, v)
	return
}

func checkObject(m map[string]any, v *violations) {
	for _, p := range []string{"name", "message", "code", "statusCode", "status", "isOperational"} {
		if _, ok := m[p]; !ok {
			v.add("Missing required property: %s", p)
		}
	}
	if name, ok := m["name"].(string); !ok || name == "" {
		if _, present := m["name"]; present {
			v.add("name must be a non-empty string")
		}
	}
	if _, ok := m["message"].(string); !ok {
		if _, present := m["message"]; present {
			v.add("message must be a string")
		}
	}

	code, codeOK := asInt(m["code"])
	if !codeOK {
		v.add("code must be a number")
	} else if !errcodes.IsRegistered(errcodes.Code(code)) {
		v.add("code %d is not in ERROR_CODES", code)
	}

	statusCode, scOK := asInt(m["statusCode"])
	if !scOK {
		v.add("statusCode must be a number")
	}
	if _, ok := m["isOperational"].(bool); !ok {
		v.add("isOperational must be a boolean")
	}

	if scOK {
		status, _ := m["status"].(string)
		switch {
		case statusCode >= 400 && statusCode <= 499:
			if status != "fail" {
				v.add("status must be 'fail' for statusCode %d", statusCode)
			}
		case statusCode >= 500 && statusCode <= 599:
			if status != "error" {
				v.add("status must be 'error' for statusCode %d", statusCode)
			}
		default:
			v.add("statusCode %d is not a 4xx or 5xx status", statusCode)
		}
	}
}

type violations struct{ list []string }

func (v *violations) add(format string, args ...any) {
	v.list = append(v.list, fmt.Sprintf(format, args...))
}

func (v *violations) result() Result {
	out := v.list
	if out == nil {
		out = []string{}
	}
	return Result{IsValid: len(out) == 0, Violations: out}
}

// asObject normalizes supported inputs into a decoded JSON object.
func asObject(in any) (map[string]any, error) {
	switch t := in.(type) {
	case nil:
		return nil, fmt.Errorf("got nil")
	case map[string]any:
		return t, nil
	case []byte:
		return decodeObject(t)
	case json.RawMessage:
		return decodeObject(t)
	case string:
		return decodeObject([]byte(t))
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

func decodeObject(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("got null")
	}
	return m, nil
}

// asNumber reports whether v is a JSON-compatible number.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case errcodes.Code:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// asInt reports whether v is an integral number.
func asInt(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func display(v any) string {
	if v == nil {
		return "undefined"
	}
	if f, ok := asNumber(v); ok && f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

var _ ErrorObject = (*apperr.Error)(nil)
