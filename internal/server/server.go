// ABOUTME: HTTP server assembly and lifecycle for paramspec-gateway.
// ABOUTME: Wires the API, docs, and MCP routes and manages graceful shutdown.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsnet"

	"github.com/fabworks/paramspec-gateway/internal/config"
	"github.com/fabworks/paramspec-gateway/internal/mcp"
	"github.com/fabworks/paramspec-gateway/internal/specs"
	"github.com/fabworks/paramspec-gateway/internal/store"
)

// maxRequestBodySize caps POST bodies (1MB); spec records are tiny.
const maxRequestBodySize = 1 << 20

// Server hosts the REST API, the docs endpoints, and the MCP endpoint on a
// single HTTP listener.
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	store       store.Store
	service     *specs.Service
	mcpServer   *mcp.Server
	httpServer  *http.Server
	tsnetServer *tsnet.Server
}

// New creates a fully wired server from the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.NewCSVStore(cfg.Storage.Path, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	service, err := specs.NewService(st, logger.With("component", "specs"))
	if err != nil {
		return nil, fmt.Errorf("creating spec service: %w", err)
	}

	srv := &Server{
		config:  cfg,
		logger:  logger,
		store:   st,
		service: service,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/parameter-specs", srv.handleParameterSpecs)
	mux.HandleFunc("/healthz", srv.handleHealth)

	if cfg.Docs.Enabled {
		srv.registerDocsRoutes(mux)
		logger.Info("docs endpoints enabled at /docs and /openapi.yaml")
	}

	// MCP endpoint lets external agents (like Claude Code) call the same
	// engine operations as the REST API
	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: service,
		Logger:  logger.With("component", "mcp"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}
	srv.mcpServer = mcpServer
	srv.mcpServer.RegisterRoutes(mux)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// Service exposes the validation service, mainly for tests.
func (s *Server) Service() *specs.Service {
	return s.service
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupTCPListener creates a standard TCP listener for the HTTP server.
func (s *Server) setupTCPListener() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr,
			)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and releases held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
	}
	if s.tsnetServer != nil {
		if err := s.tsnetServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing tailscale node: %w", err))
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}

	return errors.Join(errs...)
}
