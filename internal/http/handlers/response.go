// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Success
// bodies are written directly as JSON. Failures are never written here:
// handlers push the error onto the Gin context with fail() and the
// ErrorHandler middleware renders it in the standard error format, logs it,
// counts it and records it for compliance audits.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "error": "NotFoundError",
//	  "message": "The requested resource was not found",
//	  "code": 3004,
//	  "category": "not_found",
//	  "status": 404,
//	  "timestamp": "2025-11-25T10:04:05.000Z",
//	  "type": "https://api.floresya.com/errors/not_found/not-found",
//	  "title": "Not Found",
//	  "detail": "Order with id 42 not found",
//	  "instance": "/api/v1/orders/42"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse documents the error body produced by the ErrorHandler
// middleware (see apperr.Response). It exists for the OpenAPI spec only.
type ErrorResponse struct {
	Success   bool              `json:"success" example:"false"`
	Error     string            `json:"error" example:"NotFoundError"`
	Message   string            `json:"message" example:"The requested resource was not found"`
	Code      int               `json:"code" example:"3004"`
	Category  string            `json:"category" example:"not_found"`
	Status    int               `json:"status" example:"404"`
	Timestamp string            `json:"timestamp" example:"2025-11-25T10:04:05.000Z"`
	Type      string            `json:"type" example:"https://api.floresya.com/errors/not_found/not-found"`
	Title     string            `json:"title" example:"Not Found"`
	Detail    string            `json:"detail" example:"Order with id 42 not found"`
	Instance  string            `json:"instance" example:"/api/v1/orders/42"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// fail records err on the context and aborts the chain. The response itself
// is rendered by middleware.ErrorHandler once the handler returns.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
