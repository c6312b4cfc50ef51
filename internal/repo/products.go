package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// CreateProduct inserts p and fills its ID.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return Translate(db.WithContext(ctx).Create(p).Error, "INSERT", "products")
}

// GetProduct returns the product with the given id or a NotFoundError with
// code PRODUCT_NOT_FOUND.
func GetProduct(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(id)
		}
		return nil, Translate(err, "SELECT", "products")
	}
	return &p, nil
}

// ListProductsByIDs returns the products among ids that exist, ordered by id.
// Missing ids are simply absent from the result.
func ListProductsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&out).Error
	return out, Translate(err, "SELECT", "products")
}

func productNotFound(id int64) *apperr.Error {
	return apperr.NotFoundFor("Product", id, apperr.WithCode(errcodes.ProductNotFound))
}
