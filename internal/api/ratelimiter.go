package api

import (
	"math"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/eugenenazirov/servicekit/internal/config"
)

type rateLimiter interface {
	Allow() bool
}

// tokenBucket limits requests across all clients of the diagnostics API.
type tokenBucket struct {
	limiter *rate.Limiter
}

// newRateLimiter builds the limiter described by cfg, or nil when cfg
// disables limiting. A missing burst allows one second's worth of requests.
func newRateLimiter(cfg config.RateLimitConfig) rateLimiter {
	if !cfg.Enabled() {
		return nil
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(math.Ceil(cfg.RPS)))
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burst)}
}

func (b *tokenBucket) Allow() bool {
	return b.limiter.Allow()
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
