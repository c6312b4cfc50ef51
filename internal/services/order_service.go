package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// OrderRepo defines the repository contract required by OrderService.
type OrderRepo interface {
	// ListProductsByIDs returns the existing products among ids.
	ListProductsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error)
	// CreateOrder persists an order and decrements stock atomically.
	CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error
	// GetOrder fetches an order with its items.
	GetOrder(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error)
}

// OrderInput is the "order" object of a create request, after sanitization.
type OrderInput struct {
	UserID          int64  `json:"user_id"          validate:"gte=0"`
	CustomerName    string `json:"customer_name"    validate:"required,max=255"`
	CustomerEmail   string `json:"customer_email"   validate:"required,email,max=255"`
	CustomerPhone   string `json:"customer_phone"   validate:"max=32"`
	DeliveryAddress string `json:"delivery_address" validate:"required,max=1000"`
	DeliveryDate    string `json:"delivery_date"    validate:"omitempty,datetime=2006-01-02"`
	DeliveryNotes   string `json:"delivery_notes"   validate:"max=1000"`
	Status          string `json:"status"           validate:"omitempty,oneof=pending verified preparing shipped delivered cancelled"`
}

// OrderItemInput is one element of the "items" array of a create request.
// Prices are always taken from the product catalog.
type OrderItemInput struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity"   validate:"gt=0,lte=1000"`
}

// CreateOrderInput is the body of POST /orders.
type CreateOrderInput struct {
	Order OrderInput       `json:"order" validate:"required"`
	Items []OrderItemInput `json:"items" validate:"required,min=1,max=50,dive"`
}

// OrderService places and reads orders.
type OrderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the order repository used by this service.
	Repo OrderRepo
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, r OrderRepo) *OrderService {
	return &OrderService{DB: db, Repo: r}
}

// Create validates in, checks the catalog and stock, prices the order and
// persists it. Quantities of repeated products are merged into one line.
//
// Errors: ValidationError for malformed input, InvalidStateTransitionError
// for a non-pending initial status, NotFoundError (PRODUCT_NOT_FOUND) for
// unknown products, OrderNotProcessableError for inactive products and
// InsufficientStockError when stock is short.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateStruct(in, "order validation failed"); err != nil {
		return nil, err
	}
	if in.Order.Status != "" && in.Order.Status != domain.OrderStatusPending {
		return nil, apperr.NewInvalidStateTransition("order", "new", in.Order.Status)
	}

	ids := make([]int64, 0, len(in.Items))
	qty := make(map[int64]int, len(in.Items))
	for _, it := range in.Items {
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}

	products, err := s.Repo.ListProductsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &domain.Order{
		UserID:          in.Order.UserID,
		CustomerName:    in.Order.CustomerName,
		CustomerEmail:   in.Order.CustomerEmail,
		CustomerPhone:   in.Order.CustomerPhone,
		DeliveryAddress: in.Order.DeliveryAddress,
		DeliveryDate:    in.Order.DeliveryDate,
		DeliveryNotes:   in.Order.DeliveryNotes,
		Status:          domain.OrderStatusPending,
	}
	total := decimal.Zero
	for _, id := range ids {
		p, ok := byID[id]
		switch {
		case !ok:
			return nil, apperr.NotFoundFor("Product", id, apperr.WithCode(errcodes.ProductNotFound))
		case !p.Active:
			return nil, apperr.NewOrderNotProcessable("new", fmt.Sprintf("product %q is no longer available", p.Name))
		case p.Stock < qty[id]:
			return nil, apperr.NewInsufficientStock(id, qty[id], p.Stock)
		}

		subtotal := p.PriceUSD.Mul(decimal.NewFromInt(int64(qty[id]))).Round(2)
		total = total.Add(subtotal)
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductSummary: p.Summary,
			UnitPriceUSD:   p.PriceUSD,
			Quantity:       qty[id],
			SubtotalUSD:    subtotal,
		})
	}
	order.TotalAmountUSD = total

	if err := s.Repo.CreateOrder(ctx, s.DB, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns an order by id.
func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, apperr.NotFoundFor("Order", id, apperr.WithCode(errcodes.OrderNotFound))
	}
	return s.Repo.GetOrder(ctx, s.DB, id)
}
