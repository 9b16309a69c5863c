package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eugenenazirov/servicekit/internal/config"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow() bool {
	return s.allow
}

func TestRateLimitMiddlewareRejectsWithRetryAfter(t *testing.T) {
	handler := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("limited request reached the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthPath, nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestNewRateLimiterFollowsConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		limit   config.RateLimitConfig
		allowed int
	}{
		{name: "defaults", limit: config.DefaultRateLimit(), allowed: config.DefaultRateLimit().Burst},
		{name: "explicit burst", limit: config.RateLimitConfig{RPS: 0.5, Burst: 3}, allowed: 3},
		{name: "burst from rps", limit: config.RateLimitConfig{RPS: 2.5}, allowed: 3},
		{name: "fractional rps", limit: config.RateLimitConfig{RPS: 0.1}, allowed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := newRateLimiter(tt.limit)
			if limiter == nil {
				t.Fatalf("expected a limiter for %+v", tt.limit)
			}
			for i := 0; i < tt.allowed; i++ {
				if !limiter.Allow() {
					t.Fatalf("request %d of %d denied", i+1, tt.allowed)
				}
			}
			if limiter.Allow() {
				t.Fatalf("request beyond burst %d allowed", tt.allowed)
			}
		})
	}
}

func TestNewRateLimiterDisabled(t *testing.T) {
	for _, limit := range []config.RateLimitConfig{{}, {RPS: 0, Burst: 10}, {RPS: -1}} {
		if limiter := newRateLimiter(limit); limiter != nil {
			t.Fatalf("expected no limiter for %+v", limit)
		}
	}

	var called bool
	handler := rateLimitMiddleware(newRateLimiter(config.RateLimitConfig{}), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, healthPath, nil))
	if !called {
		t.Fatalf("expected request to pass with limiting disabled")
	}
}
