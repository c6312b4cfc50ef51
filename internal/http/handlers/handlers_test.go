package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/http/middleware"
	"github.com/tbourn/go-order-errors/internal/repo"
	"github.com/tbourn/go-order-errors/internal/services"
)

// ---------- test DB + repo shims ----------

func newHandlersDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shims implementing the service repo contracts (like router.go).
type testOrderRepo struct{}

func (testOrderRepo) ListProductsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error) {
	return repo.ListProductsByIDs(ctx, db, ids)
}

func (testOrderRepo) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return repo.CreateOrder(ctx, db, o)
}

func (testOrderRepo) GetOrder(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, id)
}

type testEventRepo struct{}

func (testEventRepo) CountErrorEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountErrorEvents(ctx, db)
}

func (testEventRepo) ListErrorEventsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEvent, error) {
	return repo.ListErrorEventsPage(ctx, db, offset, limit)
}

// ---------- router ----------

// newTestRouter wires the handlers behind the error middleware, recording
// rendered errors into db like the production router does.
func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(
		services.NewOrderService(db, testOrderRepo{}),
		services.NewComplianceService(db, testEventRepo{}),
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(middleware.ErrorOptions{
		Recorder: &repo.ErrorEventStore{DB: db},
	}))
	r.Use(middleware.Recovery())

	api := r.Group("/api/v1")
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.GET("/compliance/report", h.ComplianceReport)
	api.GET("/compliance/events", h.ListErrorEvents)
	api.GET("/compliance/templates/:category", h.ErrorTemplate)
	api.GET("/errors/codes", h.ErrorCodes)
	return r
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, PriceUSD: decimal.RequireFromString(price), Stock: stock, Active: true}
	if err := repo.CreateProduct(context.Background(), db, p); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return p
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// errBody is the subset of the error response the tests assert on.
type errBody struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error"`
	Code     int               `json:"code"`
	Category string            `json:"category"`
	Status   int               `json:"status"`
	Instance string            `json:"instance"`
	Errors   map[string]string `json:"errors"`
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errBody {
	t.Helper()
	var e errBody
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e
}
