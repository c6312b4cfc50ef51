// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, error rendering, panic
// recovery, metrics, rate limiting, CORS, security headers, compression and
// request sanitization.
//
// Design goals:
//   - Every failure leaves the service in the standard error format
//   - Safe-by-default middleware ordering (RequestID → logging → errors → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/config"
	"github.com/tbourn/go-order-errors/internal/docs"
	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
	"github.com/tbourn/go-order-errors/internal/http/handlers"
	"github.com/tbourn/go-order-errors/internal/http/middleware"
	"github.com/tbourn/go-order-errors/internal/repo"
	"github.com/tbourn/go-order-errors/internal/services"
)

// orderRepoShim adapts the repository free functions to the
// services.OrderRepo interface expected by the OrderService.
type orderRepoShim struct{}

// ListProductsByIDs proxies repo.ListProductsByIDs.
func (orderRepoShim) ListProductsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error) {
	return repo.ListProductsByIDs(ctx, db, ids)
}

// CreateOrder proxies repo.CreateOrder.
func (orderRepoShim) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return repo.CreateOrder(ctx, db, o)
}

// GetOrder proxies repo.GetOrder.
func (orderRepoShim) GetOrder(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, id)
}

// eventRepoShim adapts the error event functions to services.EventRepo.
type eventRepoShim struct{}

// CountErrorEvents proxies repo.CountErrorEvents.
func (eventRepoShim) CountErrorEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountErrorEvents(ctx, db)
}

// ListErrorEventsPage proxies repo.ListErrorEventsPage.
func (eventRepoShim) ListErrorEventsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEvent, error) {
	return repo.ListErrorEventsPage(ctx, db, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs with PII scrubbing
//  4. Compression: wraps the writer, so every later write is compressed
//  5. ErrorHandler: render c.Error() values and record them for audits
//  6. Recovery: panics become InternalServerError (needs 3 and 5 above it)
//  7. Body size limiter
//  8. Metrics
//  9. Rate limiter (per IP, /health and /metrics exempt)
//  10. CORS and security headers
//  11. Sensitive data protection and request sanitization
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	redact := middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
		MaskFields:  []string{"customer_phone", "delivery_address"},
	}
	r.Use(middleware.Logger(redact))

	// 4) Response compression; must wrap the error renderer below
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 5) Standard error responses, persisted for compliance audits
	r.Use(middleware.ErrorHandler(middleware.ErrorOptions{
		Formatter: apperr.Formatter{
			BaseURI:    cfg.ErrorTypeBaseURI,
			Production: cfg.IsProduction(),
		},
		IncludeStack: cfg.ExposeStack && !cfg.IsProduction(),
		Recorder:     &repo.ErrorEventStore{DB: db},
	}))

	// 6) Panic recovery to the standard 500 response
	r.Use(middleware.Recovery())

	// 7) Global body size limit
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))

	// 8) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Request-ID", "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Location", "Retry-After"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 11) Scrubbed body copy for logs, then body sanitization
	r.Use(middleware.ProtectSensitiveData(redact))
	r.Use(middleware.SanitizeRequestData())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, apperr.NewNotFound("route "+c.Request.Method+" "+c.Request.URL.Path+" not found",
			apperr.WithCode(errcodes.RouteNotFound)))
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.WriteError(c, apperr.NewNotFound("method "+c.Request.Method+" not supported on "+c.Request.URL.Path,
			apperr.WithCode(errcodes.RouteNotFound),
			apperr.WithContext(map[string]any{"method": c.Request.Method})))
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	orderSvc := services.NewOrderService(db, orderRepoShim{})
	complianceSvc := services.NewComplianceService(db, eventRepoShim{})
	complianceSvc.BaseURI = cfg.ErrorTypeBaseURI
	if cfg.AuditWindow > 0 {
		complianceSvc.Window = cfg.AuditWindow
	}
	h := handlers.New(orderSvc, complianceSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Orders
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)

		// Error compliance
		api.GET("/compliance/report", h.ComplianceReport)
		api.GET("/compliance/events", h.ListErrorEvents)
		api.GET("/compliance/templates/:category", h.ErrorTemplate)
		api.GET("/errors/codes", h.ErrorCodes)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
