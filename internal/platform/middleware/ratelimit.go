package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig tunes the per-client throttle on the API group.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig is the throttle used when the environment does not
// configure one.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// bucket tracks one client's remaining allowance. Tokens accrue continuously
// at the configured rate up to the burst ceiling.
type bucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// take spends one token if available. When the bucket is empty it reports
// the whole seconds until the next token accrues, for the Retry-After
// header.
func (b *bucket) take(rate, burst float64) (allowed bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if rate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/rate) + 1
}

// RateLimit throttles requests per client IP with a token bucket. Rejected
// requests get a 429 carrying Retry-After and the X-RateLimit-* headers the
// clinic front end uses to back off.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*bucket)
	)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			mu.Lock()
			b, ok := clients[ip]
			if !ok {
				b = &bucket{tokens: float64(cfg.BurstSize), last: time.Now()}
				clients[ip] = b
			}
			mu.Unlock()

			allowed, retryAfter := b.take(cfg.RequestsPerSecond, float64(cfg.BurstSize))
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			if !allowed {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
