// Package web serves the QuestLog dashboard: server-rendered pages plus the
// htmx endpoints that swap fragments in place.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"questlog/internal/engine"
	"questlog/internal/metrics"
)

// Server is the HTTP front end of the service.
type Server struct {
	svc     *engine.Service
	metrics *metrics.Metrics
	log     *zap.Logger
	views   *renderer

	router     *chi.Mux
	httpServer *http.Server
}

type Config struct {
	Addr    string
	Service *engine.Service
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("web: service is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:     cfg.Service,
		metrics: cfg.Metrics,
		log:     log,
		views:   views,
	}
	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
		ExposedHeaders: []string{"HX-Redirect", "HX-Trigger"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/settings", s.handleSettingsPage)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/onboarding/submit", s.handleOnboard)

		r.Post("/ai/suggest-goal", s.handleSuggestGoal)
		r.Post("/ai/architect", s.handleArchitect)

		r.Route("/quest", func(r chi.Router) {
			r.Post("/add", s.handleAddQuest)
			r.Post("/reorder", s.handleReorder)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/complete", s.handleComplete)
				r.Post("/toggle", s.handleComplete)
				r.Get("/edit", s.handleEditForm)
				r.Get("/cancel", s.handleCancelEdit)
				r.Put("/", s.handleUpdateQuest)
				r.Delete("/", s.handleDeleteQuest)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Post("/update", s.handleUpdateSettings)
			r.Get("/export", s.handleExport)
			r.Post("/reset", s.handleReset)
		})
	})

	s.router = r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
