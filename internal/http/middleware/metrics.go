package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tbourn/go-order-errors/internal/apperr"
)

// Prometheus instrumentation. Labels stay bounded:
//
//   - method:   HTTP method verb
//   - path:     the registered Gin route (e.g. /api/v1/orders/:id), or the
//     raw URL path when no route matched
//   - status:   numeric status code as a string
//   - category/code: the taxonomy category and numeric error code, both
//     drawn from the closed registry; "none" for requests without an error
//   - scope:    which part of a body the sanitizer rewrote (order, items, body)

const noCategory = "none"

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by route, status and error category.",
	}, []string{"method", "path", "status", "category"})

	// Status is left out to keep the histogram small.
	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Current number of in-flight HTTP requests.",
	})

	// Error bodies are a few hundred bytes; order bodies grow with items.
	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: prometheus.ExponentialBuckets(128, 2, 12), // 128B..256KiB
	}, []string{"method", "path"})

	apiErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of error responses by taxonomy category and code.",
	}, []string{"category", "code"})

	sanitizedFields = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sanitized_fields_total",
		Help: "Total number of request body fields rewritten by the sanitizer.",
	}, []string{"scope"})
)

// Metrics instruments requests with Prometheus.
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// The category label comes from the error already rendered for the request
// (rate limiting, recovery) or, failing that, from the last error a handler
// pushed with c.Error. api_errors_total and sanitized_fields_total are fed by
// ErrorHandler and SanitizeRequestData.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(responseStatus(c)), requestCategory(c)).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

// responseStatus is the status the client gets. When ErrorHandler wraps this
// middleware the error body is written after Metrics returns, so the status
// is taken from the pending error.
func responseStatus(c *gin.Context) int {
	if !c.Writer.Written() {
		if last := c.Errors.Last(); last != nil {
			return apperr.From(last.Err).StatusCode()
		}
	}
	return c.Writer.Status()
}

func requestCategory(c *gin.Context) string {
	if ae, ok := renderedError(c); ok {
		return string(ae.Category())
	}
	if last := c.Errors.Last(); last != nil {
		return string(apperr.From(last.Err).Category())
	}
	return noCategory
}
