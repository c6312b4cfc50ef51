// Package sanitize normalizes untrusted request data before it reaches
// business validation.
//
// Every field is driven by a type tag. A missing value (null) is replaced by
// the tag's default, a present value of the wrong shape is coerced, and a
// value that fails coercion falls back to the default. Only keys that are
// present are touched; absent keys are never added.
package sanitize

// Type is a column type tag.
type Type string

const (
	TypeString    Type = "string"
	TypeNumeric   Type = "numeric"
	TypeInteger   Type = "integer"
	TypeDate      Type = "date"
	TypeTimestamp Type = "timestamp"
	TypeEnum      Type = "enum"
	TypeBoolean   Type = "boolean"
)

// ColumnTypes maps a field name to its type tag.
type ColumnTypes map[string]Type

// Schema is the sanitization contract of one entity. EnumDefaults holds the
// value used for a missing enum field; enum fields without an entry default
// to "".
type Schema struct {
	Columns      ColumnTypes
	EnumDefaults map[string]string
}

// DefaultOrderStatus is the status of an order submitted without one.
const DefaultOrderStatus = "pending"

var orderSchema = Schema{
	Columns: ColumnTypes{
		"customer_email":     TypeString,
		"customer_name":      TypeString,
		"customer_phone":     TypeString,
		"delivery_address":   TypeString,
		"delivery_time_slot": TypeString,
		"delivery_notes":     TypeString,
		"notes":              TypeString,
		"admin_notes":        TypeString,
		"delivery_date":      TypeDate,
		"user_id":            TypeInteger,
		"id":                 TypeInteger,
		"total_amount_usd":   TypeNumeric,
		"total_amount_ves":   TypeNumeric,
		"currency_rate":      TypeNumeric,
		"status":             TypeEnum,
		"created_at":         TypeTimestamp,
		"updated_at":         TypeTimestamp,
	},
	EnumDefaults: map[string]string{"status": DefaultOrderStatus},
}

var orderItemSchema = Schema{
	Columns: ColumnTypes{
		"product_name":    TypeString,
		"product_summary": TypeString,
		"product_id":      TypeInteger,
		"quantity":        TypeInteger,
		"id":              TypeInteger,
		"order_id":        TypeInteger,
		"unit_price_usd":  TypeNumeric,
		"unit_price_ves":  TypeNumeric,
		"subtotal_usd":    TypeNumeric,
		"subtotal_ves":    TypeNumeric,
		"created_at":      TypeTimestamp,
		"updated_at":      TypeTimestamp,
	},
}

// OrderSchema returns a copy of the orders schema.
func OrderSchema() Schema { return orderSchema.clone() }

// OrderItemSchema returns a copy of the order items schema.
func OrderItemSchema() Schema { return orderItemSchema.clone() }

func (s Schema) clone() Schema {
	out := Schema{
		Columns:      make(ColumnTypes, len(s.Columns)),
		EnumDefaults: make(map[string]string, len(s.EnumDefaults)),
	}
	for k, v := range s.Columns {
		out.Columns[k] = v
	}
	for k, v := range s.EnumDefaults {
		out.EnumDefaults[k] = v
	}
	return out
}
