package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/eugenenazirov/servicekit/internal/api"
	"github.com/eugenenazirov/servicekit/internal/config"
	"github.com/eugenenazirov/servicekit/internal/sources"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg      config.Configuration
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
	listener net.Listener
}

// New initializes the application from a resolved configuration and the
// manifest it came from.
func New(cfg config.Configuration, manifest sources.Manifest, logger *zap.Logger) (*App, error) {
	handler := api.NewHandler(cfg, manifest)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.Verbosity >= config.VerbosityInfo),
		api.WithRateLimit(cfg.Server.RateLimit),
	)

	server, err := NewServer(cfg, BuildRootHandler(apiRouter))
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	return &App{
		cfg:     cfg,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  server,
	}, nil
}

// BuildRootHandler routes /api/ traffic to apiHandler and answers / with an
// index of the diagnostics endpoints.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, "GET /api/health\nGET /api/config[?format=yaml|json|toml]\nGET /api/sources\n")
	}))
	return mux
}

// NewServer creates an HTTP server bound to the configured address.
func NewServer(cfg config.Configuration, handler http.Handler) (*http.Server, error) {
	addr, err := cfg.Server.Address()
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.Timeouts.ReadHeader,
		WriteTimeout:      cfg.Server.Timeouts.Write,
		IdleTimeout:       cfg.Server.Timeouts.Idle,
	}, nil
}

// Start binds the listener and serves in a goroutine. Bind errors are
// returned; serve errors are logged.
func (a *App) Start() error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = listener

	a.logger.Info("server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("service", a.cfg.Service.Name),
		zap.String("environment", a.cfg.Environment.String()),
	)
	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once Start succeeded, or the configured one.
func (a *App) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.server.Addr
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
