package ingress

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rickgao/refbox-bridge/internal/connection"
	"github.com/rickgao/refbox-bridge/internal/model"
)

// Bridge is the subset of the connection manager used by the HTTP handlers.
type Bridge interface {
	SendOrder(order model.Order) (bool, error)
	Connect() error
	Disconnect()
	State() connection.ConnectionState
	Host() string
	Port() uint32
}

// ServerConfig configures the ingress HTTP server.
type ServerConfig struct {
	Addr            string        // Listen address (e.g., ":8080")
	ShutdownTimeout time.Duration // Grace period for in-flight requests
	MaxBodyBytes    int64         // Request body limit for POST /orders
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
}

// Server serves the order ingress API.
type Server struct {
	cfg    ServerConfig
	bridge Bridge
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates a server backed by the given bridge.
func NewServer(cfg ServerConfig, bridge Bridge, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultServerConfig().MaxBodyBytes
	}

	s := &Server{
		cfg:    cfg,
		bridge: bridge,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /orders", s.handleOrder)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /connect", s.handleConnect)
	s.mux.HandleFunc("POST /disconnect", s.handleDisconnect)

	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting ingress server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down ingress server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
