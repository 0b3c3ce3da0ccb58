package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/enterprise/taskboard/internal/api/handler"
)

// LoginRateLimiter throttles login attempts per client IP to slow down
// credential stuffing. Limiters are created lazily and never expire; the
// keyspace is bounded by the set of distinct client IPs seen.
type LoginRateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLoginRateLimiter allows ratePerMinute attempts per minute with the given
// burst per client IP.
func NewLoginRateLimiter(ratePerMinute float64, burst int) *LoginRateLimiter {
	return &LoginRateLimiter{
		limit:    rate.Limit(ratePerMinute / 60.0),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LoginRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *LoginRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.limiter(c.RealIP()).Allow() {
				return handler.Fail(c, http.StatusTooManyRequests, "too many login attempts")
			}
			return next(c)
		}
	}
}
