package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// RedactOptions configures additional scrub behavior for Logger and
// ProtectSensitiveData.
//
// MaskHeaders lists extra header names whose values are replaced with
// "[REDACTED]". Matching is case-insensitive and merged with the built-in
// set (Authorization, Cookie, Set-Cookie).
//
// MaskFields lists extra JSON body keys whose values are replaced with
// "[REDACTED]" in the logging copy of a request body.
type RedactOptions struct {
	MaskHeaders []string
	MaskFields  []string
}

// UUIDs are redacted before phone numbers so the phone pattern never eats the
// digit groups of a UUID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

const redacted = "[REDACTED]"

// redactor scrubs PII out of strings, headers and decoded JSON values.
type redactor struct {
	maskHeaders map[string]struct{}
	maskFields  map[string]struct{}
}

func newRedactor(opts RedactOptions) *redactor {
	r := &redactor{
		maskHeaders: map[string]struct{}{
			"authorization": {},
			"cookie":        {},
			"set-cookie":    {},
		},
		maskFields: map[string]struct{}{
			"password":    {},
			"token":       {},
			"card_number": {},
			"cvv":         {},
			"secret":      {},
		},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.maskHeaders[h] = struct{}{}
		}
	}
	for _, f := range opts.MaskFields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			r.maskFields[f] = struct{}{}
		}
	}
	return r
}

func (r *redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

func (r *redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = redacted
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}

// Value returns a scrubbed deep copy of a decoded JSON value.
func (r *redactor) Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if _, ok := r.maskFields[strings.ToLower(k)]; ok {
				out[k] = redacted
				continue
			}
			out[k] = r.Value(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = r.Value(vv)
		}
		return out
	case string:
		return r.String(t)
	}
	return v
}
