// Compliance HTTP handlers.
//
// This file exposes read-only endpoints over the error taxonomy and over the
// error responses the API actually sent:
//   - GET    /compliance/report               (audit of recent errors)
//   - GET    /compliance/events               (captured errors, paginated, ETag)
//   - GET    /compliance/templates/{category} (canonical response per category)
//   - GET    /errors/codes                    (registered codes)
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/domain"
	"github.com/tbourn/go-order-errors/internal/errcodes"
	"github.com/tbourn/go-order-errors/internal/repo"
	"github.com/tbourn/go-order-errors/internal/services"
)

//
// DTOs
//

// ErrorEventView is a captured error response as exposed by the API.
type ErrorEventView struct {
	ID        string          `json:"id" example:"01JDQ3W3W6V9X5S8R2M1Q0ZKPA"`
	RequestID string          `json:"request_id,omitempty"`
	Code      int             `json:"code" example:"4001"`
	Category  string          `json:"category" example:"business"`
	Name      string          `json:"error" example:"InsufficientStockError"`
	Status    int             `json:"status" example:"409"`
	Instance  string          `json:"instance" example:"/api/v1/orders"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
}

// ListErrorEventsResponse wraps a page of captured errors.
type ListErrorEventsResponse struct {
	Events     []ErrorEventView `json:"events"`
	Pagination Pagination       `json:"pagination"`
}

// ErrorCodesResponse lists registered error codes.
type ErrorCodesResponse struct {
	Codes []errcodes.Definition `json:"codes"`
}

func eventView(ev domain.ErrorEvent) ErrorEventView {
	return ErrorEventView{
		ID:        ev.ID,
		RequestID: ev.RequestID,
		Code:      ev.Code,
		Category:  ev.Category,
		Name:      ev.Name,
		Status:    ev.Status,
		Instance:  ev.Instance,
		CreatedAt: ev.CreatedAt,
		Payload:   ev.RawPayload(),
	}
}

//
// Handlers
//

// ComplianceReport godoc
// @ID          complianceReport
// @Summary     Audit recent error responses
// @Description Re-validates the most recently captured error responses against the standard format and returns an aggregate report.
// @Tags        Compliance
// @Produce     json
//
// @Success     200  {object}  services.Audit
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /compliance/report [get]
func (h *Handlers) ComplianceReport(c *gin.Context) {
	audit, err := h.complianceSvc.Audit(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, audit)
}

// ListErrorEvents godoc
// @ID          listErrorEvents
// @Summary     List captured error responses (paginated)
// @Description Returns captured error responses, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Compliance
// @Produce     json
//
// @Param       page           query   int     false  "Page number (>=1)"           minimum(1)  default(1)
// @Param       page_size      query   int     false  "Page size (1..100)"          minimum(1)  maximum(100)  default(20)
// @Param       If-None-Match  header  string  false  "Weak ETag from a previous response"
//
// @Success     200  {object}  handlers.ListErrorEventsResponse
// @Success     304  "Not Modified"
// @Header      200  {string}  ETag  "Weak ETag for the event log"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /compliance/events [get]
func (h *Handlers) ListErrorEvents(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.complianceSvc.(*services.ComplianceService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ErrorEventsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixMilli()
			}
			etag := fmt.Sprintf(`W/"error-events:%d:%d:%d:%d"`, count, ts, page, pageSize)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.complianceSvc.ListEventsPage(ctx, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	views := make([]ErrorEventView, len(items))
	for i, ev := range items {
		views[i] = eventView(ev)
	}
	ok(c, http.StatusOK, ListErrorEventsResponse{
		Events:     views,
		Pagination: newPagination(page, pageSize, total),
	})
}

// ErrorTemplate godoc
// @ID          errorTemplate
// @Summary     Canonical error response for a category
// @Description Returns a fully populated error response for the category, useful to client authors.
// @Tags        Compliance
// @Produce     json
//
// @Param       category  path  string  true  "Error category"  Enums(validation, authentication, not_found, business, server)
//
// @Success     200  {object}  handlers.ErrorResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown category"
// @Router      /compliance/templates/{category} [get]
func (h *Handlers) ErrorTemplate(c *gin.Context) {
	tpl, err := h.complianceSvc.Template(c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// ErrorCodes godoc
// @ID          listErrorCodes
// @Summary     List registered error codes
// @Description Returns the error code registry, optionally filtered by category. With q the codes are ranked by how well their name and description match.
// @Tags        Compliance
// @Produce     json
//
// @Param       category  query  string  false  "Error category"  Enums(validation, authentication, not_found, business, server)
// @Param       q         query  string  false  "Free-text search over code names and descriptions"
//
// @Success     200  {object}  handlers.ErrorCodesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown category"
// @Router      /errors/codes [get]
func (h *Handlers) ErrorCodes(c *gin.Context) {
	codes, err := h.complianceSvc.Catalog(strings.TrimSpace(c.Query("category")), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, ErrorCodesResponse{Codes: codes})
}
