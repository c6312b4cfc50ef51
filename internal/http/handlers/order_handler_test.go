package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-order-errors/internal/compliance"
	"github.com/tbourn/go-order-errors/internal/domain"
)

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"order": map[string]any{
			"customer_name":    "Ana Pérez",
			"customer_email":   "ana@example.com",
			"delivery_address": "Av. Reforma 100",
			"delivery_date":    "2025-12-01",
		},
		"items": items,
	}
}

func TestCreateOrder_Created(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)
	rosas := seedProduct(t, db, "Rosas", "12.50", 10)

	w := doJSON(r, http.MethodPost, "/api/v1/orders", orderBody(
		map[string]any{"product_id": rosas.ID, "quantity": 3},
	))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}

	var o domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.ID == 0 || o.Status != domain.OrderStatusPending || len(o.Items) != 1 {
		t.Fatalf("unexpected order: %+v", o)
	}
	if !o.TotalAmountUSD.Equal(decimal.RequireFromString("37.50")) {
		t.Fatalf("total = %s; want 37.50", o.TotalAmountUSD)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/orders/"+strconv.FormatInt(o.ID, 10) {
		t.Fatalf("Location = %q", loc)
	}

	// And it can be read back.
	w = doJSON(r, http.MethodGet, "/api/v1/orders/"+strconv.FormatInt(o.ID, 10), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"customer_email":"ana@example.com"`) {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateOrder_ValidationError(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)

	body := orderBody(map[string]any{"product_id": 1, "quantity": 0})
	body["order"].(map[string]any)["customer_email"] = "nope"

	w := doJSON(r, http.MethodPost, "/api/v1/orders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	e := decodeErr(t, w)
	if e.Error != "ValidationError" || e.Code != 1001 || e.Category != "validation" || e.Instance != "/api/v1/orders" {
		t.Fatalf("unexpected error: %+v", e)
	}
	if e.Errors["order.customer_email"] == "" || e.Errors["items[0].quantity"] == "" {
		t.Fatalf("missing field errors: %v", e.Errors)
	}
	if res := compliance.ValidateErrorResponse(w.Body.Bytes()); !res.IsValid {
		t.Fatalf("response not compliant: %v", res.Violations)
	}
}

func TestCreateOrder_MalformedBodies(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"syntax", `{"order": `, 1004},
		{"type", `{"order": {"user_id": "abc"}, "items": []}`, 1004},
		{"empty", ``, 1003},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/v1/orders", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
			}
			if e := decodeErr(t, w); e.Code != tc.code {
				t.Fatalf("code = %d; want %d (%+v)", e.Code, tc.code, e)
			}
		})
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)
	p := seedProduct(t, db, "Girasoles", "8.00", 1)

	w := doJSON(r, http.MethodPost, "/api/v1/orders", orderBody(
		map[string]any{"product_id": p.ID, "quantity": 2},
	))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	if e := decodeErr(t, w); e.Error != "InsufficientStockError" || e.Code != 4001 || e.Category != "business" {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/v1/orders", orderBody(
		map[string]any{"product_id": 999, "quantity": 1},
	))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; body=%s", w.Code, w.Body.String())
	}
	if e := decodeErr(t, w); e.Code != 3003 {
		t.Fatalf("code = %d; want 3003", e.Code)
	}
}

func TestGetOrder_Errors(t *testing.T) {
	db := newHandlersDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodGet, "/api/v1/orders/42", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErr(t, w); e.Code != 3004 || e.Error != "NotFoundError" {
		t.Fatalf("unexpected error: %+v", e)
	}

	for _, id := range []string{"abc", "0", "-3"} {
		w = doJSON(r, http.MethodGet, "/api/v1/orders/"+id, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: status = %d", id, w.Code)
		}
		e := decodeErr(t, w)
		if e.Code != 1004 || e.Errors["id"] != "must be a positive integer" {
			t.Fatalf("id %q: unexpected error %+v", id, e)
		}
	}
}
