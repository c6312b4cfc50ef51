// Package docs registers the OpenAPI document served by Swagger UI.
//
// The document mirrors the godoc annotations on the handlers in
// internal/http/handlers; regenerate with `swag init -g cmd/server/main.go
// -o internal/docs` after changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/orders": {
            "post": {
                "description": "Validates the order, checks catalog and stock, prices it from the catalog and persists it as pending.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "Place an order",
                "operationId": "createOrder",
                "parameters": [
                    {"description": "Order payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateOrderInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Insufficient stock or invalid state", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Order not processable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "description": "Returns the order with its line items.",
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "Fetch an order",
                "operationId": "getOrder",
                "parameters": [
                    {"type": "integer", "example": 42, "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Order not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/compliance/report": {
            "get": {
                "description": "Re-validates the most recently captured error responses against the standard format and returns an aggregate report.",
                "produces": ["application/json"],
                "tags": ["Compliance"],
                "summary": "Audit recent error responses",
                "operationId": "complianceReport",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Audit"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/compliance/events": {
            "get": {
                "description": "Returns captured error responses, newest first. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Compliance"],
                "summary": "List captured error responses (paginated)",
                "operationId": "listErrorEvents",
                "parameters": [
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number (>=1)", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Page size (1..100)", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "Weak ETag from a previous response", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListErrorEventsResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for the event log"}}},
                    "304": {"description": "Not Modified"},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/compliance/templates/{category}": {
            "get": {
                "description": "Returns a fully populated error response for the category, useful to client authors.",
                "produces": ["application/json"],
                "tags": ["Compliance"],
                "summary": "Canonical error response for a category",
                "operationId": "errorTemplate",
                "parameters": [
                    {"enum": ["validation", "authentication", "not_found", "business", "server"], "type": "string", "description": "Error category", "name": "category", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "400": {"description": "Unknown category", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/errors/codes": {
            "get": {
                "description": "Returns the error code registry, optionally filtered by category. With q the codes are ranked by how well their name and description match.",
                "produces": ["application/json"],
                "tags": ["Compliance"],
                "summary": "List registered error codes",
                "operationId": "listErrorCodes",
                "parameters": [
                    {"enum": ["validation", "authentication", "not_found", "business", "server"], "type": "string", "description": "Error category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Free-text search over code names and descriptions", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ErrorCodesResponse"}},
                    "400": {"description": "Unknown category", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "customer_name": {"type": "string"},
                "customer_email": {"type": "string"},
                "customer_phone": {"type": "string"},
                "delivery_address": {"type": "string"},
                "delivery_date": {"type": "string"},
                "delivery_notes": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "verified", "preparing", "shipped", "delivered", "cancelled"]},
                "total_amount_usd": {"type": "string", "example": "46.80"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.OrderItem"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.OrderItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "order_id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "product_name": {"type": "string"},
                "product_summary": {"type": "string"},
                "unit_price_usd": {"type": "string", "example": "23.40"},
                "quantity": {"type": "integer"},
                "subtotal_usd": {"type": "string", "example": "46.80"}
            }
        },
        "errcodes.Definition": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 4001},
                "name": {"type": "string", "example": "INSUFFICIENT_STOCK"},
                "category": {"type": "string", "example": "business"},
                "description": {"type": "string"}
            }
        },
        "handlers.ErrorCodesResponse": {
            "type": "object",
            "properties": {
                "codes": {"type": "array", "items": {"$ref": "#/definitions/errcodes.Definition"}}
            }
        },
        "handlers.ErrorEventView": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "01JDQ3W3W6V9X5S8R2M1Q0ZKPA"},
                "request_id": {"type": "string"},
                "code": {"type": "integer", "example": 4001},
                "category": {"type": "string", "example": "business"},
                "error": {"type": "string", "example": "InsufficientStockError"},
                "status": {"type": "integer", "example": 409},
                "instance": {"type": "string", "example": "/api/v1/orders"},
                "created_at": {"type": "string"},
                "payload": {"type": "object"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"type": "string", "example": "NotFoundError"},
                "message": {"type": "string", "example": "The requested resource was not found"},
                "code": {"type": "integer", "example": 3004},
                "category": {"type": "string", "example": "not_found"},
                "status": {"type": "integer", "example": 404},
                "timestamp": {"type": "string", "example": "2025-11-25T10:04:05.000Z"},
                "type": {"type": "string", "example": "https://api.floresya.com/errors/not_found/not-found"},
                "title": {"type": "string", "example": "Not Found"},
                "detail": {"type": "string", "example": "Order with id 42 not found"},
                "instance": {"type": "string", "example": "/api/v1/orders/42"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.ListErrorEventsResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/handlers.ErrorEventView"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "services.Audit": {
            "type": "object",
            "properties": {
                "window": {"type": "integer", "example": 500},
                "event_ids": {"type": "array", "items": {"type": "string"}},
                "report": {
                    "type": "object",
                    "properties": {
                        "totalErrors": {"type": "integer"},
                        "validErrors": {"type": "integer"},
                        "invalidErrors": {"type": "integer"},
                        "averageComplianceScore": {"type": "number"},
                        "violationsByError": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                        "passed": {"type": "boolean"},
                        "message": {"type": "string"}
                    }
                }
            }
        },
        "services.CreateOrderInput": {
            "type": "object",
            "required": ["order", "items"],
            "properties": {
                "order": {"$ref": "#/definitions/services.OrderInput"},
                "items": {"type": "array", "minItems": 1, "maxItems": 50, "items": {"$ref": "#/definitions/services.OrderItemInput"}}
            }
        },
        "services.OrderInput": {
            "type": "object",
            "required": ["customer_name", "customer_email", "delivery_address"],
            "properties": {
                "user_id": {"type": "integer"},
                "customer_name": {"type": "string", "maxLength": 255},
                "customer_email": {"type": "string", "maxLength": 255},
                "customer_phone": {"type": "string", "maxLength": 32},
                "delivery_address": {"type": "string", "maxLength": 1000},
                "delivery_date": {"type": "string", "example": "2025-12-01"},
                "delivery_notes": {"type": "string", "maxLength": 1000},
                "status": {"type": "string", "enum": ["pending"]}
            }
        },
        "services.OrderItemInput": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1, "maximum": 1000}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Order Errors API",
	Description:      "Order intake with a standardized error taxonomy and error-format compliance auditing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
