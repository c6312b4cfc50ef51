package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// echoRouter returns a router whose handler echoes the body it received.
func echoRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.POST("/orders", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.Data(http.StatusOK, "application/json", b)
	})
	return r
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSanitizeRequestData_OrderAndItems(t *testing.T) {
	r := echoRouter(SanitizeRequestData())
	w := postJSON(r, `{
		"order": {"customer_email": null, "total_amount_usd": "150.75", "user_id": "456", "status": null},
		"items": [{"product_name": "Rosas", "quantity": "2", "unit_price_usd": 12.5}, "junk"],
		"amount": null
	}`)

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	order := got["order"].(map[string]any)
	if order["customer_email"] != "" || order["total_amount_usd"] != 150.75 || order["user_id"] != float64(456) || order["status"] != "pending" {
		t.Fatalf("order not sanitized: %v", order)
	}
	items := got["items"].([]any)
	first := items[0].(map[string]any)
	if first["quantity"] != float64(2) || first["unit_price_usd"] != 12.5 {
		t.Fatalf("items not sanitized: %v", items)
	}
	if len(items[1].(map[string]any)) != 0 {
		t.Fatalf("non-object item should become {}: %v", items[1])
	}
	// With order/items present the top level is left alone.
	if v, ok := got["amount"]; !ok || v != nil {
		t.Fatalf("top-level field should be untouched, got %v", v)
	}
}

func TestSanitizeRequestData_TopLevelHeuristic(t *testing.T) {
	before := testutil.ToFloat64(sanitizedFields.WithLabelValues("body"))

	r := echoRouter(SanitizeRequestData())
	w := postJSON(r, `{"amount": null, "product_id": "7", "status": null, "payload": null}`)

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if got["amount"] != float64(0) || got["product_id"] != float64(7) || got["status"] != "" {
		t.Fatalf("heuristic not applied: %v", got)
	}
	if v, ok := got["payload"]; !ok || v != nil {
		t.Fatalf("unknown field should pass through, got %v", v)
	}
	if after := testutil.ToFloat64(sanitizedFields.WithLabelValues("body")); after != before+3 {
		t.Fatalf("sanitized_fields_total{scope=body} = %v; want %v", after, before+3)
	}
}

func TestSanitizeRequestData_LeavesBodyUntouched(t *testing.T) {
	r := echoRouter(SanitizeRequestData())
	cases := []string{
		`[1, 2, 3]`,
		`{"broken": `,
		`{"order": {"total_amount_usd": 10.50}}`,
		`{"a": 1} {"b": 2}`,
		`"string"`,
	}
	for _, body := range cases {
		w := postJSON(r, body)
		if w.Body.String() != body {
			t.Fatalf("body %q changed to %q", body, w.Body.String())
		}
	}
}

func TestSanitizeRequestData_NonJSONAndEmpty(t *testing.T) {
	r := echoRouter(SanitizeRequestData())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`amount=`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Body.String() != "amount=" {
		t.Fatalf("form body changed: %q", w.Body.String())
	}

	w = postJSON(r, "")
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("empty body: %d %q", w.Code, w.Body.String())
	}
}

type explodingReader struct{}

func (explodingReader) Read([]byte) (int, error) { panic("reader exploded") }

func TestSanitizeRequestData_AlwaysContinues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.Use(SanitizeRequestData())
	r.POST("/orders", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusNoContent)
	})

	// The body reader panics; the sanitizer must swallow it and continue.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", explodingReader{})
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.ServeHTTP(w, req)
	if !reached || w.Code != http.StatusNoContent {
		t.Fatalf("chain did not continue: reached=%v code=%d", reached, w.Code)
	}
}

func TestSanitizeBody_ReportsChangedFields(t *testing.T) {
	out, changed, ok := sanitizeBody([]byte(`{"order":{"user_id":"4","notes":"hi"},"items":[null,{"quantity":null}]}`))
	if !ok {
		t.Fatalf("expected ok")
	}
	want := []string{"order.user_id", "items[0]", "items[1].quantity"}
	if strings.Join(changed, ",") != strings.Join(want, ",") {
		t.Fatalf("changed = %v; want %v", changed, want)
	}
	if !bytes.Contains(out, []byte(`"user_id":4`)) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestSanitizeRequestData_LogsPathOnce(t *testing.T) {
	buf := captureLogger(t)
	r := echoRouter(Logger(RedactOptions{}), SanitizeRequestData())
	postJSON(r, `{"order": {"user_id": "7"}}`)

	gin.SetMode(gin.TestMode)
	pr := gin.New()
	pr.Use(Logger(RedactOptions{}), SanitizeRequestData())
	pr.POST("/orders", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodPost, "/orders", explodingReader{})
	req.Header.Set("Content-Type", "application/json")
	pr.ServeHTTP(httptest.NewRecorder(), req)

	seen := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		for _, msg := range []string{"request data sanitized", "sanitization middleware error"} {
			if !strings.Contains(line, `"message":"`+msg+`"`) {
				continue
			}
			seen[msg] = true
			if n := strings.Count(line, `"path":`); n != 1 {
				t.Fatalf("%q has %d path fields: %s", msg, n, line)
			}
			if n := strings.Count(line, `"method":`); n != 1 {
				t.Fatalf("%q has %d method fields: %s", msg, n, line)
			}
		}
	}
	if !seen["request data sanitized"] || !seen["sanitization middleware error"] {
		t.Fatalf("missing log lines: %v\n%s", seen, buf.String())
	}
}
