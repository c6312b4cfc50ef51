package sanitize

import (
	"regexp"
	"strings"
)

type nameRule struct {
	pattern *regexp.Regexp
	typ     Type
}

// nameRules infers a type from a field name when no schema is known. Rules
// are tried in order and the first match wins.
var nameRules = []nameRule{
	{regexp.MustCompile(`(^|_)id$`), TypeInteger},
	{regexp.MustCompile(`quantity|(^|_)count($|_)`), TypeInteger},
	{regexp.MustCompile(`amount|price|(^|_)rate($|_)`), TypeNumeric},
	{regexp.MustCompile(`(^|_)date$`), TypeDate},
	{regexp.MustCompile(`_at$`), TypeTimestamp},
	{regexp.MustCompile(`(^|_)status$`), TypeEnum},
	{regexp.MustCompile(`^(is|has)_`), TypeBoolean},
	{regexp.MustCompile(`email|phone|address|(^|_)name$|(^|_)notes?$`), TypeString},
}

// Infer returns the type a field name maps to. ok is false for names no
// rule recognizes; such fields are passed through untouched.
func Infer(name string) (typ Type, ok bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, r := range nameRules {
		if r.pattern.MatchString(n) {
			return r.typ, true
		}
	}
	return "", false
}

// SanitizeFields sanitizes a copy of a flat object using the name heuristic.
// Enum fields default to "" since no schema names their default.
func SanitizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if typ, ok := Infer(k); ok {
			v = sanitizeValue(v, typ, "")
		}
		out[k] = v
	}
	return out
}
