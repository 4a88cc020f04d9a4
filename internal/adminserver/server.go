// Package adminserver is the engine's optional observability surface:
// a chi-routed HTTP server exposing /metrics and a bearer-gated /ws
// dashboard feed. Disabled unless Config.Server.Enabled is true; no
// core engine operation depends on it being up.
package adminserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercadolab/workflow-engine/internal/adminserver/websocket"
	adminMiddleware "github.com/mercadolab/workflow-engine/internal/adminserver/middleware"
	"github.com/mercadolab/workflow-engine/internal/config"
	"github.com/mercadolab/workflow-engine/internal/events"
)

// Server is the admin/observability HTTP server
type Server struct {
	router    *chi.Mux
	config    *config.Config
	wsHub     *websocket.Hub
	wsHandler *websocket.Handler
	publisher *events.RedisPubSub
}

// NewServer creates a new admin server wired to publisher for /ws.
func NewServer(cfg *config.Config, publisher *events.RedisPubSub) *Server {
	wsHub := websocket.NewHub(publisher)

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		wsHub:     wsHub,
		wsHandler: websocket.NewHandler(wsHub),
		publisher: publisher,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Heartbeat("/health"))
	s.router.Use(adminMiddleware.RateLimit(100))
}

func (s *Server) setupRoutes() {
	if s.config.Server.MetricsPath != "" {
		s.router.Handle(s.config.Server.MetricsPath, promhttp.Handler())
	}

	s.router.Group(func(r chi.Router) {
		r.Use(adminMiddleware.Auth(&s.config.Auth))
		r.Get("/ws", s.wsHandler.ServeWS)
	})
}

// Start starts the WebSocket hub's Redis subscription loop
func (s *Server) Start(ctx context.Context) {
	go s.wsHub.Run(ctx)
}

// Stop stops the WebSocket hub
func (s *Server) Stop() {
	s.wsHub.Stop()
}

// Router returns the chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on Config.Server.Host:Port.
func (s *Server) ListenAndServe() error {
	port := s.config.Server.Port
	if port <= 0 {
		port = 8090
	}
	addr := s.config.Server.Host + ":" + strconv.Itoa(port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	return srv.ListenAndServe()
}
