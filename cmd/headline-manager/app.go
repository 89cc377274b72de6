// cmd/headline-manager/app.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"headline-generator/internal/common/config"
	"headline-generator/internal/common/database"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/observability"
	"headline-generator/internal/generator/batch"
	"headline-generator/internal/generator/enhance"
	"headline-generator/internal/generator/keywords"
	"headline-generator/internal/generator/substitute"
	"headline-generator/internal/generator/templates"
	"headline-generator/internal/notify"
	"headline-generator/internal/repository"
	"headline-generator/internal/search"
	"headline-generator/internal/tasksource"
	generateheadlines "headline-generator/internal/workers/generation/generate-headlines"
	"headline-generator/pkg/catalog"
)

// app holds every component built from the configuration. Optional
// components are nil when their backing service is disabled.
type app struct {
	cfg *config.Config
	log logger.Logger

	db    *sql.DB
	rdb   *redis.Client
	es    *elasticsearch.Client
	zeebe zbc.Client

	templates    *templates.Store
	templateRepo *repository.TemplateRepository
	keywords     *keywords.Provider
	enhancer     *enhance.Service
	orchestrator *batch.Orchestrator
	headlines    *repository.HeadlineRepository
	index        *search.HeadlineIndex
	queue        *tasksource.RedisQueue
	source       generateheadlines.TaskSource
	notifier     notify.Notifier
	worker       *generateheadlines.Worker

	obs    *observability.Observability
	tracer *observability.Tracer
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func buildApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	tracer, err := observability.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.tracer = tracer
	a.obs = observability.New(cfg.App.Name, log)

	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildGenerator(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildWorker(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	cfg := a.cfg.Database

	if cfg.Postgres.Enabled {
		err := retryWithBackoff(func() error {
			var err error
			a.db, err = database.NewPostgres(ctx, cfg.Postgres)
			return err
		}, 5, 2*time.Second, a.log, "PostgreSQL connection")
		if err != nil {
			return err
		}
		if err := repository.CreateSchema(ctx, a.db); err != nil {
			return err
		}
		a.headlines = repository.NewHeadlineRepository(a.db, a.log)
		a.templateRepo = repository.NewTemplateRepository(a.db, a.log)
		a.log.Info("postgres connected", map[string]interface{}{"host": cfg.Postgres.Host})
	}

	if cfg.Redis.Enabled {
		err := retryWithBackoff(func() error {
			var err error
			a.rdb, err = database.NewRedis(ctx, cfg.Redis)
			return err
		}, 5, time.Second, a.log, "Redis connection")
		if err != nil {
			return err
		}
		a.queue = tasksource.NewRedisQueue(a.rdb, cfg.Redis.QueueKey, cfg.Redis.DeadLetter, a.log)
	}

	if cfg.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(ctx, cfg.Elasticsearch)
		if err != nil {
			return err
		}
		a.es = es
		a.index = search.NewHeadlineIndex(es, cfg.Elasticsearch.Index, a.log)
		if err := a.index.EnsureIndex(ctx); err != nil {
			// search is a mirror; generation does not depend on it
			a.log.Warn("search index unavailable", map[string]interface{}{"error": err.Error()})
			a.index = nil
		}
	}

	n, err := notify.New(ctx, a.cfg.Notifications, a.log)
	if err != nil {
		return err
	}
	a.notifier = n
	return nil
}

func (a *app) keywordSource() keywords.Source {
	if a.db == nil {
		return keywords.NewMemorySource()
	}
	var src keywords.Source = repository.NewKeywordRepository(a.db)
	if a.rdb != nil {
		src = repository.NewCachedKeywordSource(src, a.rdb, a.cfg.Database.Redis.KeywordKeys,
			time.Duration(a.cfg.Database.Redis.KeywordTTL)*time.Second, a.log)
	}
	return src
}

// loadTemplates fills the store from, in order of preference, the catalog
// file, the templates table, or the built-in set.
func (a *app) loadTemplates(ctx context.Context) error {
	if path := a.cfg.Generator.TemplatesFile; path != "" {
		cat, err := catalog.Load(path)
		if err != nil {
			return fmt.Errorf("load template catalog: %w", err)
		}
		a.log.Info("templates loaded from catalog", map[string]interface{}{"path": path, "count": len(cat.Templates)})
		return a.templates.Load(cat.Templates)
	}

	if a.templateRepo != nil {
		stored, err := a.templateRepo.All(ctx)
		if err != nil {
			return err
		}
		if len(stored) > 0 {
			a.log.Info("templates loaded from database", map[string]interface{}{"count": len(stored)})
			return a.templates.Load(stored)
		}
	}

	a.templates.LoadDefaults()
	return nil
}

func (a *app) buildGenerator(ctx context.Context) error {
	a.templates = templates.NewStore(a.log)
	if err := a.loadTemplates(ctx); err != nil {
		return err
	}

	src := a.keywordSource()
	a.keywords = keywords.NewProvider(src, a.log)
	if _, ok := src.(*keywords.MemorySource); ok || a.cfg.Generator.SeedKeywords {
		n, err := a.keywords.EnsureSeeded(ctx)
		if err != nil {
			return err
		}
		a.log.Info("keyword categories ready", map[string]interface{}{"categories": n})
	}

	a.enhancer = enhance.NewService(enhance.LoadConfig(a.cfg.Enhancement), nil, a.log)
	a.orchestrator = batch.New(
		a.templates,
		substitute.New(a.keywords, a.cfg.Generator.FallbackPrefix),
		a.enhancer,
		a.log,
		batch.WithMaxConcurrent(a.cfg.Enhancement.MaxConcurrent),
	)
	return nil
}

func (a *app) buildWorker(ctx context.Context) error {
	switch a.cfg.Worker.TaskSource {
	case "zeebe":
		if a.cfg.Camunda.BrokerAddress == "" {
			return nil
		}
		client, err := tasksource.NewZeebeClient(ctx, a.cfg.Camunda)
		if err != nil {
			return err
		}
		a.zeebe = client
		a.source = tasksource.NewZeebeSource(client, a.cfg.Camunda, a.log)
	default:
		if a.queue != nil {
			a.source = a.queue
		}
	}

	if a.source == nil || a.headlines == nil {
		a.log.Info("worker loop unavailable", map[string]interface{}{
			"taskSource": a.source != nil,
			"postgres":   a.headlines != nil,
		})
		return nil
	}

	wcfg := generateheadlines.LoadConfig(a.cfg.Worker)
	opts := []generateheadlines.HandlerOption{
		generateheadlines.WithNotifier(a.notifier),
		generateheadlines.WithObservability(a.obs),
	}
	if a.index != nil {
		opts = append(opts, generateheadlines.WithIndexer(a.index))
	}
	handler := generateheadlines.NewHandler(wcfg, a.orchestrator, a.headlines, a.log, opts...)
	a.worker = generateheadlines.NewWorker(wcfg, a.source, handler, a.log)
	return nil
}

// Close stops the worker and releases connections.
func (a *app) Close() {
	if a.worker != nil && a.worker.State() == generateheadlines.StateRunning {
		if err := a.worker.Stop(); err != nil {
			a.log.Warn("worker stop failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.zeebe != nil {
		if err := a.zeebe.Close(); err != nil {
			a.log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.obs != nil {
		a.obs.Shutdown()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(); err != nil {
			a.log.Warn("tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
