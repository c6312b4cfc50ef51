package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// CreateOrder persists o with its items and takes the ordered quantities out
// of stock, all in one transaction. The decrement is conditional, so two
// concurrent orders can never oversell: the loser gets an
// InsufficientStockError and nothing is written.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range o.Items {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return Translate(res.Error, "UPDATE", "products")
			}
			if res.RowsAffected == 1 {
				continue
			}

			var p domain.Product
			if err := tx.Select("id", "stock").First(&p, "id = ?", it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return productNotFound(it.ProductID)
				}
				return Translate(err, "SELECT", "products")
			}
			return apperr.NewInsufficientStock(it.ProductID, it.Quantity, p.Stock)
		}
		return Translate(tx.Create(o).Error, "INSERT", "orders")
	})
}

// GetOrder returns the order with its items, or a NotFoundError with code
// ORDER_NOT_FOUND.
func GetOrder(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id asc") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundFor("Order", id, apperr.WithCode(errcodes.OrderNotFound))
		}
		return nil, Translate(err, "SELECT", "orders")
	}
	return &o, nil
}
