package apperr

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// DefaultTypeBaseURI prefixes the "type" URI of every rendered error.
const DefaultTypeBaseURI = "https://api.floresya.com/errors/"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Response is the wire shape of an error.
//
// Errors is rendered only for the validation category, where it is always
// present (an empty object when there are no field errors). Stack is an
// operator-only field and is empty unless explicitly requested.
type Response struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Code      errcodes.Code     `json:"code"`
	Message   string            `json:"message"`
	Category  errcodes.Category `json:"category"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance"`
	Timestamp string            `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
	Stack     string            `json:"stack,omitempty"`
}

type wireResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Code      errcodes.Code     `json:"code"`
	Message   string            `json:"message"`
	Category  errcodes.Category `json:"category"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance"`
	Timestamp string            `json:"timestamp"`
	Errors    any               `json:"errors,omitempty"`
	Stack     string            `json:"stack,omitempty"`
}

// MarshalJSON emits "errors" for the validation category only.
func (r Response) MarshalJSON() ([]byte, error) {
	w := wireResponse{
		Success:   r.Success,
		Error:     r.Error,
		Code:      r.Code,
		Message:   r.Message,
		Category:  r.Category,
		Type:      r.Type,
		Title:     r.Title,
		Status:    r.Status,
		Detail:    r.Detail,
		Instance:  r.Instance,
		Timestamp: r.Timestamp,
		Stack:     r.Stack,
	}
	if r.Category == errcodes.CategoryValidation {
		errs := r.Errors
		if errs == nil {
			errs = map[string]string{}
		}
		w.Errors = errs
	}
	return json.Marshal(w)
}

// Formatter renders taxonomy errors into wire responses.
type Formatter struct {
	// BaseURI prefixes the "type" field. Defaults to DefaultTypeBaseURI.
	BaseURI string
	// Production hides the technical message of server errors from "detail".
	Production bool
	// Now is the clock for "timestamp". Defaults to time.Now.
	Now func() time.Time
}

var defaultFormatter = Formatter{}

// Format renders err for the request at requestPath using default settings.
func Format(err *Error, requestPath string) Response {
	return defaultFormatter.Format(err, requestPath)
}

// Format renders err for the request at requestPath.
func (f Formatter) Format(err *Error, requestPath string) Response {
	return f.render(err, requestPath, false)
}

// FormatWithStack is Format plus the construction stack for non-validation
// errors. Use it for operator-facing output only.
func (f Formatter) FormatWithStack(err *Error, requestPath string) Response {
	return f.render(err, requestPath, true)
}

func (f Formatter) render(err *Error, requestPath string, includeStack bool) Response {
	if err == nil {
		err = NewInternalServer("nil error rendered")
	}
	clock := f.Now
	if clock == nil {
		clock = time.Now
	}
	category := errcodes.CategoryOf(err.code)

	detail := err.message
	if f.Production && category == errcodes.CategoryServer {
		detail = err.userMessage
	}
	message := err.userMessage
	if message == "" {
		message = err.message
	}

	r := Response{
		Success:   false,
		Error:     err.name,
		Code:      err.code,
		Message:   message,
		Category:  category,
		Type:      TypeURI(f.BaseURI, category, err.name),
		Title:     Title(err.name),
		Status:    err.statusCode,
		Detail:    detail,
		Instance:  requestPath,
		Timestamp: clock().UTC().Format(TimestampLayout),
	}
	if category == errcodes.CategoryValidation {
		r.Errors = map[string]string{}
		if err.name == NameValidation {
			if fe := err.FieldErrors(); fe != nil {
				r.Errors = fe
			}
		}
	} else if includeStack {
		r.Stack = err.Stack()
	}
	return r
}

// TypeURI builds the dereferenceable identifier of an error kind:
// base + category + "/" + slug(name). An empty base uses DefaultTypeBaseURI.
func TypeURI(base string, category errcodes.Category, name string) string {
	if base == "" {
		base = DefaultTypeBaseURI
	}
	return strings.TrimRight(base, "/") + "/" + string(category) + "/" + Slug(name)
}

// Slug turns a subtype name into a URI segment: "DatabaseConstraintError"
// becomes "database-constraint".
func Slug(name string) string {
	words := splitWords(name)
	if len(words) > 1 && words[len(words)-1] == "Error" {
		words = words[:len(words)-1]
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// Title humanizes a subtype name: "InsufficientStockError" becomes
// "Insufficient Stock Error".
func Title(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return "Error"
	}
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// splitWords splits CamelCase, keeping acronym runs together ("HTTPError" →
// "HTTP", "Error").
func splitWords(s string) []string {
	rs := []rune(strings.TrimSpace(s))
	var words []string
	start := 0
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		boundary := false
		switch {
		case !unicode.IsLetter(cur) && !unicode.IsDigit(cur):
			if start < i {
				words = append(words, string(rs[start:i]))
			}
			start = i + 1
			continue
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			boundary = true
		}
		if boundary && start < i {
			words = append(words, string(rs[start:i]))
			start = i
		}
	}
	if start < len(rs) {
		words = append(words, string(rs[start:]))
	}
	return words
}
