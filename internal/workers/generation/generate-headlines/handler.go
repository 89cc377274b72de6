// internal/workers/generation/generate-headlines/handler.go
package generateheadlines

import (
	"context"
	"time"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
	"headline-generator/internal/common/observability"
	"headline-generator/internal/generator/batch"
	"headline-generator/internal/models"
)

const (
	TaskType = "generate-headlines"
)

// Generator produces one batch of headlines.
type Generator interface {
	Generate(ctx context.Context, req batch.Request) ([]models.Headline, error)
}

// HeadlineStore persists a batch and returns the assigned ids in order.
type HeadlineStore interface {
	SaveBatch(ctx context.Context, headlines []models.Headline) ([]string, error)
}

// Indexer mirrors persisted headlines into a search index.
type Indexer interface {
	IndexBatch(ctx context.Context, headlines []models.Headline) error
}

// Notifier is told about every completed task.
type Notifier interface {
	TaskCompleted(ctx context.Context, result models.TaskResult) error
}

type Handler struct {
	config    *Config
	generator Generator
	store     HeadlineStore
	indexer   Indexer
	notifier  Notifier
	obs       *observability.Observability
	logger    logger.Logger
}

type HandlerOption func(*Handler)

func WithIndexer(ix Indexer) HandlerOption {
	return func(h *Handler) { h.indexer = ix }
}

func WithNotifier(n Notifier) HandlerOption {
	return func(h *Handler) { h.notifier = n }
}

func WithObservability(o *observability.Observability) HandlerOption {
	return func(h *Handler) { h.obs = o }
}

func NewHandler(config *Config, generator Generator, store HeadlineStore, log logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		config:    config,
		generator: generator,
		store:     store,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle generates the task's headlines in chunks of BatchSize, persists
// each chunk and then indexes and announces the result. Index and notify
// failures are logged and do not fail the task.
func (h *Handler) Handle(ctx context.Context, task *models.Task) (models.TaskResult, error) {
	start := time.Now()
	result := models.TaskResult{TaskID: task.ID}

	h.logger.Info("processing task", map[string]interface{}{
		"taskId":   task.ID,
		"count":    task.Count,
		"category": task.Category,
	})

	total := task.Count
	if total <= 0 {
		total = h.config.BatchSize
	}
	ratio := task.EnhanceRatio
	if ratio <= 0 {
		ratio = h.config.EnhanceRatio
	}

	for remaining := total; remaining > 0; {
		n := remaining
		if n > h.config.BatchSize {
			n = h.config.BatchSize
		}

		headlines, err := h.generator.Generate(ctx, batch.Request{
			Count:        n,
			Category:     task.Category,
			EnhanceRatio: ratio,
		})
		if err != nil {
			h.record(ctx, start, "failed")
			return result, err
		}
		result.Generated += len(headlines)

		ids, err := h.store.SaveBatch(ctx, headlines)
		if err != nil {
			h.record(ctx, start, "failed")
			return result, apperrors.NewPersistenceError("save_batch", err)
		}
		for i := range headlines {
			if i < len(ids) {
				headlines[i].ID = ids[i]
			}
			if headlines[i].Enhanced {
				result.Enhanced++
			}
		}
		result.Saved += len(ids)

		if h.indexer != nil {
			if err := h.indexer.IndexBatch(ctx, headlines); err != nil {
				h.logger.Warn("search indexing failed", map[string]interface{}{
					"taskId": task.ID,
					"error":  err.Error(),
				})
			}
		}

		remaining -= n
	}

	result.ExecutionTime = time.Since(start).Seconds()

	if h.notifier != nil {
		if err := h.notifier.TaskCompleted(ctx, result); err != nil {
			h.logger.Warn("task notification failed", map[string]interface{}{
				"taskId": task.ID,
				"error":  err.Error(),
			})
		}
	}

	h.record(ctx, start, "completed")
	h.logger.Info("task completed", map[string]interface{}{
		"taskId":        task.ID,
		"generated":     result.Generated,
		"saved":         result.Saved,
		"enhanced":      result.Enhanced,
		"executionTime": result.ExecutionTime,
	})
	return result, nil
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	metrics.WorkerTasks.WithLabelValues(status).Inc()
	if h.obs != nil {
		h.obs.RecordTaskProcessed(ctx, status)
		h.obs.RecordTaskDuration(ctx, time.Since(start), status)
	}
}
