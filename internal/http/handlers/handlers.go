package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
	"github.com/tbourn/go-order-errors/internal/services"
	"github.com/tbourn/go-order-errors/internal/utils"
)

//
// Service contracts (context-aware)
//

// OrderService defines order operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. Returned errors are
// expected to be taxonomy errors (see package apperr).
type OrderService interface {
	// Create validates, prices and persists a new order.
	Create(ctx context.Context, in services.CreateOrderInput) (*domain.Order, error)
	// Get returns an order with its items.
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// ComplianceService defines the error-format audit operations.
type ComplianceService interface {
	// Audit validates the most recently captured error responses.
	Audit(ctx context.Context) (services.Audit, error)
	// ListEventsPage returns a page of captured error events and the total.
	ListEventsPage(ctx context.Context, page, pageSize int) ([]domain.ErrorEvent, int64, error)
	// Template returns the canonical response for a category.
	Template(category string) (apperr.Response, error)
	// Catalog lists registered codes, optionally for one category and
	// ranked against a free-text query.
	Catalog(category, query string) ([]errcodes.Definition, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for orders and error compliance.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	orderSvc      OrderService
	complianceSvc ComplianceService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(orderSvc OrderService, complianceSvc ComplianceService) *Handlers {
	return &Handlers{orderSvc: orderSvc, complianceSvc: complianceSvc}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}
