package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		ok   bool
	}{
		{"id", TypeInteger, true},
		{"user_id", TypeInteger, true},
		{"status_id", TypeInteger, true},
		{"quantity", TypeInteger, true},
		{"item_count", TypeInteger, true},
		{"total_amount_usd", TypeNumeric, true},
		{"unit_price_ves", TypeNumeric, true},
		{"currency_rate", TypeNumeric, true},
		{"delivery_date", TypeDate, true},
		{"date", TypeDate, true},
		{"created_at", TypeTimestamp, true},
		{"status", TypeEnum, true},
		{"order_status", TypeEnum, true},
		{"is_gift", TypeBoolean, true},
		{"customer_email", TypeString, true},
		{"customer_name", TypeString, true},
		{"delivery_address", TypeString, true},
		{"notes", TypeString, true},
		{"Customer_Phone", TypeString, true},
		{"update", "", false},
		{"separate", "", false},
		{"payload", "", false},
	}
	for _, tc := range cases {
		typ, ok := Infer(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.typ, typ, tc.name)
	}
}

func TestSanitizeFields(t *testing.T) {
	freezeClock(t)
	in := map[string]any{
		"amount":        nil,
		"product_id":    "7",
		"delivery_date": nil,
		"status":        nil,
		"customer_name": nil,
		"payload":       nil,
		"meta":          map[string]any{"user_id": nil},
	}
	got := SanitizeFields(in)

	assert.Equal(t, float64(0), got["amount"])
	assert.Equal(t, int64(7), got["product_id"])
	assert.Equal(t, "2025-11-25", got["delivery_date"])
	assert.Equal(t, "", got["status"], "no schema, so no enum default")
	assert.Equal(t, "", got["customer_name"])
	assert.Nil(t, got["payload"], "unknown names pass through")
	assert.Contains(t, got, "payload")
	assert.Equal(t, map[string]any{"user_id": nil}, got["meta"], "no recursion")
	assert.Nil(t, in["amount"], "input is not mutated")
}

func TestSanitizeFields_Nil(t *testing.T) {
	assert.Equal(t, map[string]any{}, SanitizeFields(nil))
}
