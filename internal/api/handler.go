package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/eugenenazirov/servicekit/internal/config"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves the configuration and the manifest it was resolved from.
type Handler struct {
	cfg      config.Configuration
	manifest sources.Manifest

	clock   func() time.Time
	started time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler for a resolved configuration.
func NewHandler(cfg config.Configuration, manifest sources.Manifest, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg:      cfg,
		manifest: manifest,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.started = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	now := h.clock()
	resp := healthResponse{
		Status:      "ok",
		Service:     h.cfg.Service.Name,
		Environment: h.cfg.Environment.String(),
		Timestamp:   now,
		Uptime:      now.Sub(h.started).String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" || raw == "json" {
		writeJSON(w, http.StatusOK, h.cfg)
		return
	}

	format, err := sources.ParseFormat(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err.Error())
		return
	}
	body, err := config.Marshal(h.cfg, format)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleSources(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := sourcesResponse{
		Known:   describe(h.manifest.Known()),
		Missing: describe(h.manifest.Missing()),
	}
	writeJSON(w, http.StatusOK, resp)
}

var contentTypes = map[sources.Format]string{
	sources.FormatYAML: "application/yaml",
	sources.FormatJSON: "application/json",
	sources.FormatTOML: "application/toml",
}

func describe(m sources.Manifest) []sourceEntry {
	defs := m.Definitions()
	out := make([]sourceEntry, 0, len(defs))
	for _, def := range defs {
		entry := sourceEntry{Kind: def.Kind().String()}
		switch def.Kind() {
		case sources.KindEnvVar:
			entry.Prefix = def.Prefix()
		case sources.KindFile:
			entry.Path = def.Path()
			entry.Format = def.Format().String()
		default:
			entry.Path = def.Path()
		}
		out = append(out, entry)
	}
	return out
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
}

type sourceEntry struct {
	Kind   string `json:"kind"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

type sourcesResponse struct {
	Known   []sourceEntry `json:"known"`
	Missing []sourceEntry `json:"missing"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
