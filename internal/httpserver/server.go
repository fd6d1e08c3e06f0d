// Package httpserver is bifrost's HTTP edge: one endpoint that serves the
// GraphQL Playground on GET and executes queries on POST, plus /healthz
// and /metrics. Its lifecycle (Setup/Start/Stop, the ready channel, the
// stopOnce-guarded stop channel) follows the teacher's
// gateway/graphql.Server pattern, generalized from a NATS-backed gateway
// to a GraphQL schema served directly over HTTP.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
	"github.com/psychonautwiki/bifrost/internal/config"
	"github.com/psychonautwiki/bifrost/internal/metrics"
)

// Server owns the listening socket and routes for bifrost's HTTP edge.
type Server struct {
	cfg           config.Config
	schema        *graphql.Schema
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	logger        *slog.Logger
	debugRequests bool

	httpServer *http.Server
	mux        *http.ServeMux

	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewServer builds a Server. schema must already be parsed (see
// resolver.Schema) against the bound root resolver. registry, if non-nil,
// is the registry m was constructed against; it is served at /metrics.
func NewServer(cfg config.Config, schema *graphql.Schema, m *metrics.Metrics, registry *prometheus.Registry, logger *slog.Logger, debugRequests bool) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, bferrors.WrapInvalid(err, "httpserver", "NewServer", "config validation")
	}
	if schema == nil {
		return nil, bferrors.WrapFatal(bferrors.ErrMissingConfig, "httpserver", "NewServer", "schema is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:           cfg,
		schema:        schema,
		metrics:       m,
		registry:      registry,
		logger:        logger,
		debugRequests: debugRequests,
		mux:           http.NewServeMux(),
		stopChan:      make(chan struct{}),
	}, nil
}

// Setup registers routes and builds the underlying *http.Server. Must be
// called once before Start.
func (s *Server) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graphHandler := &relay.Handler{Schema: s.schema}
	playgroundHandler := playground.Handler("Bifrost", "/")

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if !s.cfg.EnablePlayground {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			playgroundHandler.ServeHTTP(w, r)
		case http.MethodPost:
			graphHandler.ServeHTTP(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	s.mux.HandleFunc("/healthz", s.handleHealth)

	if s.registry != nil {
		s.mux.Handle("/metrics", metrics.Handler(s.registry))
	}

	var handler http.Handler = s.mux
	handler = s.metricsMiddleware(handler)
	if s.debugRequests {
		handler = s.loggingMiddleware(handler)
	}
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  s.cfg.RequestTimeout,
		WriteTimeout: s.cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server configured", "address", s.cfg.Addr(), "playground", s.cfg.EnablePlayground)
	return nil
}

// Start runs the HTTP server, closing ready once the socket is listening.
// It blocks until the context is cancelled, Stop is called, or the server
// fails to serve.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return bferrors.WrapFatal(bferrors.ErrInvalidConfig, "httpserver", "Start", "server already running")
	}
	s.running = true
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("server starting", "address", s.cfg.Addr())

		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			s.logger.Error("http server error", "error", err)
			errChan <- err
			return
		}

		if ready != nil {
			close(ready)
		}

		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
			select {
			case errChan <- err:
			case <-ctx.Done():
			case <-s.stopChan:
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("server context cancelled, shutting down")
		return s.Stop(30 * time.Second)

	case <-s.stopChan:
		s.logger.Info("server stop requested")
		return nil

	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return bferrors.WrapFatal(err, "httpserver", "Start", "http server failed")
	}
}

// Stop gracefully shuts the server down, waiting at most timeout.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info("server stopping")

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down gracefully", "error", err)
		return bferrors.WrapTransient(err, "httpserver", "Stop", "graceful shutdown failed")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !running {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, `{"status":"unavailable"}`)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, `{"status":"healthy"}`)
}

// IsRunning reports whether the server is currently accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
