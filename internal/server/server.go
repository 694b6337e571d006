// Package server exposes the typing engine over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/generator"
	"github.com/verte-zerg/typeref/internal/history"
	"github.com/verte-zerg/typeref/internal/metrics"
	"github.com/verte-zerg/typeref/internal/store"
)

// Defaults for Options left at zero.
const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultMaxSessions = 256
	DefaultIdleTTL     = 30 * time.Minute

	requestTimeout = 30 * time.Second
	userHeader     = "X-User-ID"
)

// Options configures a Handler.
type Options struct {
	Store       *store.Store
	Generator   *generator.Generator
	History     *history.Service
	Metrics     *metrics.Manager
	Logger      *zap.Logger
	MaxSessions int
	IdleTTL     time.Duration
	// Now overrides the session clock.
	Now func() time.Time
}

// Handler serves the HTTP API.
type Handler struct {
	store    *store.Store
	gen      *generator.Generator
	history  *history.Service
	metrics  *metrics.Manager
	logger   *zap.Logger
	sessions *Registry
	router   chi.Router
}

// New creates a Handler.
func New(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewManager()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.History == nil {
		opts.History = history.NewService(opts.Store, history.WithLogger(opts.Logger), history.WithObserver(opts.Metrics))
	}
	if opts.Generator == nil {
		opts.Generator = generator.New(generator.DefaultBanks())
	}
	h := &Handler{
		store:   opts.Store,
		gen:     opts.Generator,
		history: opts.History,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	h.sessions = NewRegistry(opts.Generator, opts.MaxSessions, opts.IdleTTL, opts.Metrics, opts.Logger, opts.Now)
	h.sessions.OnDiscard(h.history.Forget)
	h.router = h.buildRouter()
	return h
}

// Router returns the HTTP router.
func (h *Handler) Router() chi.Router {
	return h.router
}

// Sessions returns the live session registry.
func (h *Handler) Sessions() *Registry {
	return h.sessions
}

// Close stops the session timers.
func (h *Handler) Close() {
	h.sessions.Close()
}

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/sessions", h.handleCreateSession)
		r.Get("/sessions/{id}", h.handleGetSession)
		r.Post("/sessions/{id}/input", h.handleInput)
		r.Post("/sessions/{id}/reset", h.handleReset)
		r.Post("/sessions/{id}/commit", h.handleCommit)
		r.Delete("/sessions/{id}", h.handleDeleteSession)

		r.Get("/history", h.handleHistory)
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handlePutSettings)
		r.Get("/category", h.handleGetCategory)
		r.Put("/category", h.handlePutCategory)
		r.Get("/categories", h.handleCategories)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			h.logger.Debug("health write failed", zap.Error(err))
		}
	})
	r.Handle("/metrics", h.metrics.Handler())

	return r
}

// logRequests logs every request with zap and counts it by route pattern.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.HTTPRequest(route, r.Method, strconv.Itoa(status))
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Serve listens on addr until ctx is cancelled.
func (h *Handler) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	h.logger.Info("typeref server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	h.Close()
	return nil
}
