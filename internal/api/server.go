// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wires the analysis handlers into an HTTP server.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates the HTTP server.
func NewServer(config ServerConfig, handlers *Handlers) *Server {
	if config.Addr == "" {
		config.Addr = DefaultServerConfig().Addr
	}

	router := mux.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/wallets/analyze", s.handlers.AnalyzeWallet).Methods(http.MethodPost)
	v1.HandleFunc("/tokens/analyze", s.handlers.AnalyzeToken).Methods(http.MethodPost)
	v1.HandleFunc("/wallets/{id}/metrics", s.handlers.PortfolioMetrics).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/{id}/transactions", s.handlers.TransactionHistory).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handlers.Health).Methods(http.MethodGet)
}

// Router returns the underlying router, used in tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown performs a graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
