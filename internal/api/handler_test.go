package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/servicekit/internal/config"
	"github.com/eugenenazirov/servicekit/internal/identity"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfiguration(t *testing.T) config.Configuration {
	t.Helper()

	name, err := identity.ParseServiceName("support-kit")
	if err != nil {
		t.Fatalf("ParseServiceName: %v", err)
	}
	cfg := config.Defaults(name)
	cfg.Environment = identity.Production
	cfg.Secret = "hunter2"
	return cfg
}

func testManifest() sources.Manifest {
	return sources.NewManifest(
		sources.NotFound("/home/user/support-kit.yaml"),
		sources.EnvVar("SUPPORT_KIT__"),
		sources.NotFound("/srv/support-kit.production.toml"),
		sources.EnvVar("SUPPORT_KIT__PRODUCTION__"),
	)
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))
	handler := NewHandler(testConfiguration(t), testManifest(), WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)
	clock.Advance(90 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" || body.Service != "support-kit" || body.Environment != "production" {
		t.Fatalf("unexpected body %+v", body)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
	if body.Uptime != "1m30s" {
		t.Fatalf("expected uptime 1m30s, got %s", body.Uptime)
	}
}

func TestConfigEndpointRedactsSecret(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("secret leaked: %s", rec.Body.String())
	}

	var body struct {
		Environment string `json:"environment"`
		Secret      string `json:"secret"`
		Server      struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		} `json:"server"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Environment != "production" || body.Server.Host != "0.0.0.0" || body.Server.Port != 80 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Secret != "[redacted]" {
		t.Fatalf("expected redacted secret, got %q", body.Secret)
	}
}

func TestConfigEndpointFormats(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("yaml", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/config?format=yaml", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
			t.Fatalf("unexpected content type %s", ct)
		}
		var body map[string]any
		if err := yaml.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid yaml: %v", err)
		}
		if body["environment"] != "production" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("toml", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/config?format=toml", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var body map[string]any
		if err := toml.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid toml: %v", err)
		}
		if body["environment"] != "production" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/config?format=ini", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSourcesEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body sourcesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(body.Known) != 2 || len(body.Missing) != 2 {
		t.Fatalf("unexpected partition %+v", body)
	}
	if body.Known[0].Kind != "env" || body.Known[0].Prefix != "SUPPORT_KIT__" {
		t.Fatalf("unexpected first known source %+v", body.Known[0])
	}
	if body.Known[1].Prefix != "SUPPORT_KIT__PRODUCTION__" {
		t.Fatalf("expected scoped prefix last, got %+v", body.Known[1])
	}
	if body.Missing[1].Path != "/srv/support-kit.production.toml" || body.Missing[1].Kind != "missing" {
		t.Fatalf("unexpected missing source %+v", body.Missing[1])
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "GET,OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	generated := rec.Header().Get("X-Request-ID")
	if len(generated) != 21 {
		t.Fatalf("expected a 21 character generated id, got %q", generated)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-id" {
		t.Fatalf("expected client id to be echoed, got %q", got)
	}
}
