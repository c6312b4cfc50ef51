package sanitize

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// now is the clock behind date and timestamp defaults. Tests replace it.
var now = time.Now

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Info describes what sanitizing one field did.
type Info struct {
	Original     any  `json:"original"`
	Sanitized    any  `json:"sanitized"`
	Type         Type `json:"type"`
	WasSanitized bool `json:"wasSanitized"`
}

// SanitizeOrderData applies the orders schema to record. Anything that is not
// a JSON object yields an empty map.
func SanitizeOrderData(record any) map[string]any {
	return SanitizeRecord(record, orderSchema)
}

// SanitizeOrderItems applies the order items schema to every element. A
// non-array yields an empty slice and non-object elements become empty maps.
func SanitizeOrderItems(items any) []any {
	var in []any
	switch t := items.(type) {
	case []any:
		in = t
	case []map[string]any:
		in = make([]any, len(t))
		for i, m := range t {
			in[i] = m
		}
	default:
		return []any{}
	}
	out := make([]any, len(in))
	for i, item := range in {
		out[i] = SanitizeRecord(item, orderItemSchema)
	}
	return out
}

// SanitizeRecord applies s to a copy of record. Fields outside the schema are
// copied unchanged.
func SanitizeRecord(record any, s Schema) map[string]any {
	m, ok := record.(map[string]any)
	if !ok || m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for field, typ := range s.Columns {
		if v, present := out[field]; present {
			out[field] = sanitizeValue(v, typ, s.EnumDefaults[field])
		}
	}
	return out
}

// NeedsSanitization reports whether value would be replaced by its type's
// default. Only missing values qualify; an empty string does not.
func NeedsSanitization(value any, _ Type) bool {
	return value == nil
}

// GetSanitizationInfo reports, for every field of columnTypes present in
// data, the value before and after sanitization. Enum fields use "" as their
// default; use Schema.Inspect for schema-owned enum defaults.
func GetSanitizationInfo(data map[string]any, columnTypes ColumnTypes) map[string]Info {
	return Schema{Columns: columnTypes}.Inspect(data)
}

// Inspect is GetSanitizationInfo with the schema's enum defaults.
func (s Schema) Inspect(data map[string]any) map[string]Info {
	info := make(map[string]Info)
	for field, typ := range s.Columns {
		orig, present := data[field]
		if !present {
			continue
		}
		got := sanitizeValue(orig, typ, s.EnumDefaults[field])
		info[field] = Info{
			Original:     orig,
			Sanitized:    got,
			Type:         typ,
			WasSanitized: !reflect.DeepEqual(orig, got),
		}
	}
	return info
}

// ChangedFields lists, sorted, the keys of before whose value differs in
// after. Numbers compare by value, so json.Number("2") and int64(2) are equal.
func ChangedFields(before, after map[string]any) []string {
	var out []string
	for k, v := range before {
		if !sameValue(v, after[k]) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	x, okA := numberValue(a)
	y, okB := numberValue(b)
	return okA && okB && x.Equal(y)
}

func numberValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	}
	return decimal.Decimal{}, false
}

func sanitizeValue(v any, typ Type, enumDefault string) any {
	if v == nil {
		return defaultFor(typ, enumDefault)
	}
	switch typ {
	case TypeString:
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return ""
		}
	case TypeNumeric:
		if s, ok := numericText(v); ok {
			return parseNumeric(s)
		}
	case TypeInteger:
		if s, ok := numericText(v); ok {
			return parseInteger(s)
		}
	case TypeBoolean:
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	}
	return v
}

func defaultFor(typ Type, enumDefault string) any {
	switch typ {
	case TypeString:
		return ""
	case TypeNumeric:
		return float64(0)
	case TypeInteger:
		return int64(0)
	case TypeDate:
		return now().UTC().Format(dateLayout)
	case TypeTimestamp:
		return now().UTC().Format(timestampLayout)
	case TypeEnum:
		return enumDefault
	case TypeBoolean:
		// Booleans are never defaulted.
		return nil
	}
	return ""
}

// numericText returns the text of string-shaped numbers, including the
// json.Number values produced by a decoder in UseNumber mode.
func numericText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// parseNumeric returns 0 for text that is not a number or does not fit a
// finite float64.
func parseNumeric(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// parseInteger truncates fractional text toward zero and returns 0 for text
// outside the int64 range.
func parseInteger(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	if i := d.Truncate(0).BigInt(); i.IsInt64() {
		return i.Int64()
	}
	return 0
}
