package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-order-errors/internal/sanitize"
)

// SanitizeRequestData normalizes JSON request bodies before they reach
// binding and validation.
//
// When the body is an object with an "order" object and/or an "items"
// array, those are sanitized with the order and order item schemas and the
// rest of the body is left alone. Otherwise the field-name heuristic is
// applied to the top-level fields. Numbers keep their exact text while
// decoding.
//
// The middleware never aborts: on any failure (unreadable body, non-object
// JSON, panic) the original body is put back and the chain continues.
func SanitizeRequestData() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || !isJSON(c) {
			c.Next()
			return
		}

		func() {
			orig := c.Request.Body
			var raw []byte
			defer func() {
				if rec := recover(); rec != nil {
					if raw != nil {
						restoreBody(c, raw)
					} else {
						c.Request.Body = orig
					}
					LoggerFrom(c).Error().
						Str("error", fmt.Sprint(rec)).
						Msg("sanitization middleware error")
				}
			}()

			raw, err := peekBody(c)
			if err != nil || len(bytes.TrimSpace(raw)) == 0 {
				return
			}
			out, changed, ok := sanitizeBody(raw)
			if !ok || len(changed) == 0 {
				restoreBody(c, raw)
				return
			}
			replaceBody(c, out)
			LoggerFrom(c).Debug().
				Strs("fields", changed).
				Msg("request data sanitized")
		}()

		c.Next()
	}
}

// sanitizeBody returns the re-encoded body and the dotted names of the
// fields that changed. ok is false when raw is not a JSON object.
func sanitizeBody(raw []byte) (out []byte, changed []string, ok bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		// Trailing data after the object.
		return nil, nil, false
	}

	order, hasOrder := body["order"].(map[string]any)
	items, hasItems := body["items"].([]any)

	if hasOrder || hasItems {
		if hasOrder {
			clean := sanitize.SanitizeOrderData(order)
			for _, f := range sanitize.ChangedFields(order, clean) {
				changed = append(changed, "order."+f)
			}
			sanitizedFields.WithLabelValues("order").Add(float64(len(changed)))
			body["order"] = clean
		}
		if hasItems {
			clean := sanitize.SanitizeOrderItems(items)
			n := 0
			for i := range items {
				before, _ := items[i].(map[string]any)
				after, _ := clean[i].(map[string]any)
				if before == nil {
					changed = append(changed, fmt.Sprintf("items[%d]", i))
					n++
					continue
				}
				for _, f := range sanitize.ChangedFields(before, after) {
					changed = append(changed, fmt.Sprintf("items[%d].%s", i, f))
					n++
				}
			}
			sanitizedFields.WithLabelValues("items").Add(float64(n))
			body["items"] = clean
		}
	} else {
		clean := sanitize.SanitizeFields(body)
		changed = sanitize.ChangedFields(body, clean)
		sanitizedFields.WithLabelValues("body").Add(float64(len(changed)))
		body = clean
	}

	if len(changed) == 0 {
		return raw, nil, true
	}
	out, err := json.Marshal(body)
	if err != nil {
		return nil, nil, false
	}
	return out, changed, true
}

func restoreBody(c *gin.Context, raw []byte) {
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
}
