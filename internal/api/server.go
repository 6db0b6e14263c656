// Package api implements the HTTP surface of the youth-policy service:
// policy listing and detail reads, per-user bookmark management, a
// readiness endpoint, and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"youthpolicy/internal/config"
	"youthpolicy/internal/db"
	"youthpolicy/internal/metrics"
	"youthpolicy/internal/types"
)

// PolicyStore is the policy read surface the handlers need.
type PolicyStore interface {
	List(ctx context.Context, params db.ListPoliciesParams) ([]*types.Policy, error)
	GetByID(ctx context.Context, id string) (*types.Policy, error)
}

// BookmarkStore is the bookmark surface the handlers need.
type BookmarkStore interface {
	Create(ctx context.Context, b *types.Bookmark) error
	Delete(ctx context.Context, userID, policyID string) error
	ListByUser(ctx context.Context, userID string) ([]types.BookmarkedPolicy, error)
}

// Pinger is a named dependency the readiness endpoint probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the router and handler dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	clock      types.Clock

	policies  PolicyStore
	bookmarks BookmarkStore
	pingers   map[string]Pinger

	defaultLeadDays int
	maxLeadDays     int

	shutdownTimeout time.Duration
}

// ServerConfig carries Server dependencies.
type ServerConfig struct {
	Config    *config.Config
	Policies  PolicyStore
	Bookmarks BookmarkStore
	// Pingers maps dependency names ("database", "redis") to readiness
	// probes. Optional dependencies are simply omitted.
	Pingers map[string]Pinger
	Logger  *slog.Logger
	Clock   types.Clock
}

// NewServer creates the Server and mounts all routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}

	s := &Server{
		logger:          logger,
		clock:           clock,
		policies:        cfg.Policies,
		bookmarks:       cfg.Bookmarks,
		pingers:         cfg.Pingers,
		defaultLeadDays: cfg.Config.Notify.DefaultLeadDays,
		maxLeadDays:     cfg.Config.Notify.MaxLeadDays,
		shutdownTimeout: cfg.Config.Server.ShutdownTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/policies", s.handleListPolicies)
		r.Get("/policies/{policyID}", s.handleGetPolicy)

		r.Get("/bookmarks", s.handleListBookmarks)
		r.Post("/bookmarks", s.handleCreateBookmark)
		r.Delete("/bookmarks/{policyID}", s.handleDeleteBookmark)
	})

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Config.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, used by httptest in handler tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is canceled, then drains in-flight requests within
// the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

// healthResponse is the readiness envelope.
type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// handleHealth probes every registered dependency concurrently with a
// short deadline. Any failed dependency turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(s.pingers))
	var g errgroup.Group
	results := make(chan [2]string, len(s.pingers))

	for name, p := range s.pingers {
		name, p := name, p
		g.Go(func() error {
			if err := p.Ping(ctx); err != nil {
				results <- [2]string{name, "unhealthy"}
				return err
			}
			results <- [2]string{name, "ok"}
			return nil
		})
	}
	err := g.Wait()
	close(results)
	for res := range results {
		deps[res[0]] = res[1]
	}

	if err != nil {
		s.logger.WarnContext(r.Context(), "readiness probe failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Dependencies: deps})
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Dependencies: deps})
}

// requestLogger logs one line per request with latency and status.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			// The route pattern keeps metric cardinality bounded; raw paths
			// would mint a series per policy id.
			route := chi.RouteContext(r.Context()).RoutePattern()
			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
