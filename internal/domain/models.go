// Package domain defines the persistence models for products, orders and
// captured error responses. These types are mapped with GORM and shared by
// the repository and service layers.
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. New orders always start as OrderStatusPending.
const (
	OrderStatusPending   = "pending"
	OrderStatusVerified  = "verified"
	OrderStatusPreparing = "preparing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Product is a sellable item with a stock counter. Stock can never go
// negative; the check constraint backs the conditional decrement done when
// an order is placed.
type Product struct {
	ID        int64           `json:"id"         gorm:"primaryKey;autoIncrement"`
	Name      string          `json:"name"       gorm:"type:varchar(255);not null;uniqueIndex:ux_products_name"`
	Summary   string          `json:"summary"    gorm:"type:text"`
	PriceUSD  decimal.Decimal `json:"price_usd"  gorm:"type:decimal(10,2);not null"`
	Stock     int             `json:"stock"      gorm:"not null;default:0;check:stock >= 0"`
	Active    bool            `json:"active"     gorm:"not null;default:true"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Order is a customer order. Items are cascade-deleted with their order.
type Order struct {
	ID              int64           `json:"id"               gorm:"primaryKey;autoIncrement"`
	UserID          int64           `json:"user_id"          gorm:"not null;default:0;index:idx_orders_user"`
	CustomerName    string          `json:"customer_name"    gorm:"type:varchar(255);not null"`
	CustomerEmail   string          `json:"customer_email"   gorm:"type:varchar(255);not null;index:idx_orders_email"`
	CustomerPhone   string          `json:"customer_phone"   gorm:"type:varchar(32)"`
	DeliveryAddress string          `json:"delivery_address" gorm:"type:text;not null"`
	DeliveryDate    string          `json:"delivery_date"    gorm:"type:char(10)"`
	DeliveryNotes   string          `json:"delivery_notes"   gorm:"type:text"`
	Status          string          `json:"status"           gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','verified','preparing','shipped','delivered','cancelled')"`
	TotalAmountUSD  decimal.Decimal `json:"total_amount_usd" gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is one line of an order. Product name, summary and unit price are
// copied from the product when the order is placed.
type OrderItem struct {
	ID             int64           `json:"id"              gorm:"primaryKey;autoIncrement"`
	OrderID        int64           `json:"order_id"        gorm:"not null;index:idx_order_items_order"`
	ProductID      int64           `json:"product_id"      gorm:"not null;index:idx_order_items_product"`
	ProductName    string          `json:"product_name"    gorm:"type:varchar(255);not null"`
	ProductSummary string          `json:"product_summary" gorm:"type:text"`
	UnitPriceUSD   decimal.Decimal `json:"unit_price_usd"  gorm:"type:decimal(10,2);not null"`
	Quantity       int             `json:"quantity"        gorm:"not null;check:quantity > 0"`
	SubtotalUSD    decimal.Decimal `json:"subtotal_usd"    gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// ErrorEvent is an error response captured from live traffic. Payload holds
// the response exactly as it was sent, so it can be re-audited later.
type ErrorEvent struct {
	ID        string          `json:"id"         gorm:"type:char(26);primaryKey"`
	RequestID string          `json:"request_id" gorm:"type:varchar(64);index:idx_error_events_request"`
	Code      int             `json:"code"       gorm:"not null;index:idx_error_events_code"`
	Category  string          `json:"category"   gorm:"type:varchar(32);not null"`
	Name      string          `json:"name"       gorm:"type:varchar(64);not null"`
	Status    int             `json:"status"     gorm:"not null"`
	Instance  string          `json:"instance"   gorm:"type:text"`
	Payload   string          `json:"-"          gorm:"type:text;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"index:idx_error_events_created"`
}

// TableName returns the database table name for ErrorEvent.
func (ErrorEvent) TableName() string { return "error_events" }

// RawPayload returns the captured response as raw JSON.
func (e ErrorEvent) RawPayload() json.RawMessage { return json.RawMessage(e.Payload) }
