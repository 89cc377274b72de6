// Package api exposes generation, storage and worker control over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/generator/batch"
	"headline-generator/internal/models"
	generateheadlines "headline-generator/internal/workers/generation/generate-headlines"
)

type Generator interface {
	Generate(ctx context.Context, req batch.Request) ([]models.Headline, error)
}

type HeadlineStore interface {
	SaveBatch(ctx context.Context, headlines []models.Headline) ([]string, error)
	Find(ctx context.Context, filter models.HeadlineFilter, page models.Page) ([]models.Headline, error)
	SearchText(ctx context.Context, text string, limit int) ([]models.Headline, error)
	Count(ctx context.Context, filter models.HeadlineFilter) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type TemplateCatalog interface {
	All() []models.Template
	Categories() []string
}

type KeywordWriter interface {
	AddKeywordsBatch(ctx context.Context, category string, words []string) error
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task *models.Task) error
}

type WorkerControl interface {
	Start() error
	Stop() error
	Status() generateheadlines.Status
}

// CheckFunc reports a dependency's readiness.
type CheckFunc func(ctx context.Context) error

// Deps are the collaborators behind the routes. Store, Keywords, Queue and
// Worker are optional; their routes answer 503 when unset.
type Deps struct {
	Generator Generator
	Templates TemplateCatalog
	Store     HeadlineStore
	Keywords  KeywordWriter
	Queue     TaskQueue
	Worker    WorkerControl
	Checks    map[string]CheckFunc

	// EnhanceRatio is applied when a generate request sets enhance=true.
	EnhanceRatio float64
}

type Server struct {
	deps   Deps
	logger logger.Logger
}

// NewRouter creates a chi router with all routes mounted.
func NewRouter(deps Deps, log logger.Logger) chi.Router {
	if deps.EnhanceRatio <= 0 {
		deps.EnhanceRatio = 0.3
	}
	s := &Server{deps: deps, logger: log.WithFields(map[string]interface{}{"component": "api"})}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/generate", s.Generate)

	r.Get("/headlines", s.ListHeadlines)
	r.Get("/headlines/search", s.SearchHeadlines)
	r.Delete("/headlines/{id}", s.DeleteHeadline)

	r.Get("/templates", s.ListTemplates)
	r.Post("/keywords/{category}", s.AddKeywords)

	r.Post("/tasks", s.EnqueueTask)

	r.Route("/worker", func(r chi.Router) {
		r.Post("/start", s.StartWorker)
		r.Post("/stop", s.StopWorker)
		r.Get("/status", s.WorkerStatus)
	})

	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served", map[string]interface{}{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start).String(),
			"requestId": middleware.GetReqID(r.Context()),
		})
	})
}
