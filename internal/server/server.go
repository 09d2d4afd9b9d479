// Package server is the HTTP boundary: it mounts module routes, renders
// successful payloads as JSON, and funnels every failure through a Formatter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/HerbHall/wakdex/internal/config"
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/metrics"
	"github.com/HerbHall/wakdex/internal/plugin"
	"github.com/HerbHall/wakdex/internal/version"
)

const healthTimeout = 2 * time.Second

// Deps are the collaborators a Server mounts. Metrics is optional.
type Deps struct {
	Registry  *plugin.Registry
	Store     docstore.Store
	Formatter *Formatter
	Metrics   *metrics.Metrics
}

// Server is the wakdex HTTP server.
type Server struct {
	httpServer *http.Server
	deps       Deps
	settings   config.ServerSettings
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a Server and mounts every route.
func New(settings config.ServerSettings, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		deps:     deps,
		settings: settings,
		logger:   logger,
		mux:      mux,
	}

	s.registerCoreRoutes()
	s.mountModuleRoutes()

	s.httpServer = &http.Server{
		Addr:         settings.Addr(),
		Handler:      s.middleware(mux),
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
		IdleTimeout:  settings.IdleTimeout,
	}
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) middleware(h http.Handler) http.Handler {
	mws := []Middleware{
		withRequestID(),
		withLogging(s.logger),
		withRecover(s.deps.Formatter),
	}
	if rl := s.settings.RateLimit; rl.RPS > 0 {
		mws = append(mws, withRateLimit(newClientLimiter(rl.RPS, rl.Burst, nil), s.deps.Formatter))
	}
	if s.deps.Metrics != nil {
		mws = append(mws, withMetrics(s.deps.Metrics))
	}
	return chain(h, mws...)
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
	if s.deps.Metrics != nil {
		s.mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}
	s.mux.Handle("/", s.adapt(nil, func(r *http.Request) (any, error) {
		return nil, notFound(r)
	}))
}

// mountModuleRoutes registers every enabled module's routes at the root.
func (s *Server) mountModuleRoutes() {
	if s.deps.Registry == nil {
		return
	}
	for name, routes := range s.deps.Registry.AllRoutes() {
		for _, route := range routes {
			s.mux.Handle(route.Pattern(), s.adapt(wildcards(route.Path), route.Handler))
			s.logger.Debug("mounted route",
				zap.String("module", name),
				zap.String("pattern", route.Pattern()),
			)
		}
	}
}

// adapt encodes a handler's payload as a 200 response or hands its error to
// the formatter.
func (s *Server) adapt(params []string, h plugin.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = withPathParams(r, params)
		payload, err := h(r)
		if err != nil {
			s.deps.Formatter.Write(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, capped at max_connections when set.
func (s *Server) Serve(ln net.Listener) error {
	if n := s.settings.MaxConnections; n > 0 {
		ln = netutil.LimitListener(ln, n)
	}
	s.logger.Info("starting HTTP server",
		zap.String("addr", ln.Addr().String()),
		zap.Int("max_connections", s.settings.MaxConnections),
	)
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth reports liveness and store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, storeState, code := "ok", "ok", http.StatusOK
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.logger.Warn("health check: store unreachable", zap.Error(err))
			status, storeState, code = "degraded", "unreachable", http.StatusServiceUnavailable
		}
	}

	modules := []string{}
	if s.deps.Registry != nil {
		modules = s.deps.Registry.Names()
	}
	w.Header().Set("X-Wakdex-Version", version.Short())
	writeJSON(w, code, map[string]any{
		"status":  status,
		"service": "wakdex",
		"store":   storeState,
		"modules": modules,
		"version": version.Current(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-Wakdex-Version", version.Short())
	writeJSON(w, http.StatusOK, version.Current())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
