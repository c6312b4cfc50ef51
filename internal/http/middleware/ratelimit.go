package middleware

// In-memory per-client token-bucket rate limiter built on
// golang.org/x/time/rate. Buckets are process-local and idle ones are
// evicted opportunistically. Rejections are rendered as
// RateLimitExceededError (4007) in the standard error shape.

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-order-errors/internal/apperr"
)

// KeyFunc selects the identity that keys a rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByClientIP keys buckets by client IP, or by the X-API-Key header when a
// caller sends one. Keys are prefixed so the two namespaces never collide.
func KeyByClientIP() KeyFunc {
	return func(c *gin.Context) string {
		if k := c.GetHeader("X-API-Key"); k != "" {
			return "key:" + k
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    KeyFunc
	exempt   map[string]struct{}
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter builds a limiter refilling rps tokens per second with the
// given burst (values <= 0 become 1). Requests whose route is listed in
// exemptPaths (e.g. /health, /metrics) are never limited.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc, exemptPaths ...string) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	ex := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		ex[p] = struct{}{}
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		exempt:   ex,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Every 5000
// lookups idle buckets are evicted; this runs before the requested bucket is
// touched so a stale bucket can be evicted even when it is the one fetched.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler returns the middleware. A rejected request gets 429, a
// Retry-After header and a RateLimitExceededError body.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	window := time.Second
	retryAfter := "1"
	if rl.rps > 0 && rl.rps < 1 {
		window = time.Duration(float64(time.Second) / float64(rl.rps))
		retryAfter = strconv.Itoa(int(window.Round(time.Second) / time.Second))
	}
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.FullPath()]; ok {
			c.Next()
			return
		}
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfter)
		WriteError(c, apperr.NewRateLimitExceeded(float64(rl.rps), window))
	}
}
