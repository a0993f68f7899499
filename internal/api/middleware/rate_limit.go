package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket pool — client abuse protection,
// distinct from the circuit breaker's upstream protection (spec §5).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter builds a pool handing out requestsPerMinute/burst token buckets
// keyed by client id.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[clientID]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[clientID] = l
	}
	return l
}

// RateLimit enforces requestsPerMinute/burst per tenant (falling back to
// remote address when no tenant header is present, so unauthenticated
// routes are still protected).
func RateLimit(requestsPerMinute, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requestsPerMinute, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(TenantHeader)
			if clientID == "" {
				clientID = r.RemoteAddr
			}

			if !limiter.limiterFor(clientID).Allow() {
				w.Header().Set(RateLimitLimitHeader, strconv.Itoa(requestsPerMinute))
				w.Header().Set(RateLimitResetHeader, strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
				w.Header().Set("Retry-After", "60")
				http.Error(w, `{"error":{"code":"RATE_LIMIT_EXCEEDED","message":"rate limit exceeded"}}`, http.StatusTooManyRequests)
				return
			}

			w.Header().Set(RateLimitLimitHeader, strconv.Itoa(requestsPerMinute))
			next.ServeHTTP(w, r)
		})
	}
}
