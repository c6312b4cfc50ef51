// Order HTTP handlers.
//
// This file exposes REST endpoints for orders:
//   - POST   /orders        (create)
//   - GET    /orders/{id}   (fetch with items)
//
// Request bodies have already been normalized by the SanitizeRequestData
// middleware, so null fields arrive as their type defaults.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-order-errors/internal/services"
)

// CreateOrder godoc
// @ID          createOrder
// @Summary     Place an order
// @Description Validates the order, checks catalog and stock, prices it from the catalog and persists it as pending.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.CreateOrderInput  true  "Order payload"
//
// @Success     201  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Insufficient stock or invalid state"
// @Failure     422  {object}  handlers.ErrorResponse  "Order not processable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, bindError(err))
		return
	}

	o, err := h.orderSvc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+strconv.FormatInt(o.ID, 10))
	ok(c, http.StatusCreated, o)
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Fetch an order
// @Description Returns the order with its line items.
// @Tags        Orders
// @Produce     json
//
// @Param       id  path  int  true  "Order ID"  example(42)
//
// @Success     200  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	o, err := h.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}
