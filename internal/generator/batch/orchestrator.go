// Package batch produces headline batches from templates, keywords and the
// optional enhancement stage.
package batch

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
	"headline-generator/internal/generator/enhance"
	"headline-generator/internal/models"
)

const tracerName = "headline-generator/batch"

// TemplateSource selects templates.
type TemplateSource interface {
	RandomTemplate() (models.Template, error)
	TemplateByCategory(category string) (models.Template, error)
}

// Filler substitutes placeholders.
type Filler interface {
	Fill(ctx context.Context, text string) (string, map[string]string)
}

// Enhancer rewrites a subset of the batch.
type Enhancer interface {
	IsAvailable() bool
	BatchEnhanceResults(ctx context.Context, headlines []string, maxConcurrent int) []enhance.Result
}

// Request describes one batch.
type Request struct {
	Count        int
	Category     string
	EnhanceRatio float64
}

type Orchestrator struct {
	templates     TemplateSource
	filler        Filler
	enhancer      Enhancer
	maxConcurrent int
	perm          func(n int) []int
	now           func() time.Time
	tracer        trace.Tracer
	logger        logger.Logger
}

type Option func(*Orchestrator)

// WithPermutation replaces the subset shuffle.
func WithPermutation(perm func(n int) []int) Option {
	return func(o *Orchestrator) { o.perm = perm }
}

// WithClock replaces the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithMaxConcurrent bounds the enhancement pool for each batch.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) { o.maxConcurrent = n }
}

// New wires an orchestrator. enhancer may be nil.
func New(templates TemplateSource, filler Filler, enhancer Enhancer, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		templates: templates,
		filler:    filler,
		enhancer:  enhancer,
		perm:      rand.Perm,
		now:       time.Now,
		tracer:    otel.Tracer(tracerName),
		logger:    log.WithFields(map[string]interface{}{"component": "batch_orchestrator"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateBatch produces count headlines drawn from the whole template set,
// enhancing roughly enhanceRatio of them.
func (o *Orchestrator) GenerateBatch(ctx context.Context, count int, enhanceRatio float64) ([]models.Headline, error) {
	return o.Generate(ctx, Request{Count: count, EnhanceRatio: enhanceRatio})
}

// Generate produces req.Count headlines. The only error is an empty
// template store; enhancement failures only leave Enhanced false.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]models.Headline, error) {
	ctx, span := o.tracer.Start(ctx, "batch.generate", trace.WithAttributes(
		attribute.Int("batch.count", req.Count),
		attribute.String("batch.category", req.Category),
		attribute.Float64("batch.enhance_ratio", req.EnhanceRatio),
	))
	defer span.End()

	start := time.Now()
	if req.Count <= 0 {
		// An empty store is still an error for an empty batch.
		if _, err := o.selectTemplate(req.Category); err != nil {
			return nil, o.abort(span, req, err)
		}
		return []models.Headline{}, nil
	}

	headlines := make([]models.Headline, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		tpl, err := o.selectTemplate(req.Category)
		if err != nil {
			return nil, o.abort(span, req, err)
		}

		text, used := o.filler.Fill(ctx, tpl.Text)
		headlines = append(headlines, models.Headline{
			Text:         text,
			Category:     tpl.Category,
			CreatedAt:    o.now(),
			KeywordsUsed: used,
		})
	}

	enhanced := o.enhanceSubset(ctx, headlines, req.EnhanceRatio)
	span.SetAttributes(attribute.Int("batch.enhanced", enhanced))

	for _, h := range headlines {
		metrics.HeadlinesGenerated.WithLabelValues(h.Category, strconv.FormatBool(h.Enhanced)).Inc()
	}
	metrics.BatchDuration.WithLabelValues(strconv.FormatBool(enhanced > 0)).Observe(time.Since(start).Seconds())

	o.logger.Info("batch generated", map[string]interface{}{
		"count":    len(headlines),
		"enhanced": enhanced,
		"category": req.Category,
		"duration": time.Since(start).String(),
	})
	return headlines, nil
}

func (o *Orchestrator) abort(span trace.Span, req Request, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	o.logger.Error("batch aborted", map[string]interface{}{
		"error":     err,
		"requested": req.Count,
	})
	return err
}

func (o *Orchestrator) selectTemplate(category string) (models.Template, error) {
	if category == "" {
		return o.templates.RandomTemplate()
	}
	return o.templates.TemplateByCategory(category)
}

// SubsetSize is round(count*ratio) kept within [0, count].
func SubsetSize(count int, ratio float64) int {
	if ratio <= 0 || count <= 0 {
		return 0
	}
	if ratio >= 1 {
		return count
	}
	n := int(math.Round(float64(count) * ratio))
	return min(max(n, 0), count)
}

func (o *Orchestrator) enhanceSubset(ctx context.Context, headlines []models.Headline, ratio float64) int {
	size := SubsetSize(len(headlines), ratio)
	if size == 0 || o.enhancer == nil || !o.enhancer.IsAvailable() {
		return 0
	}

	idx := o.perm(len(headlines))[:size]
	texts := make([]string, size)
	for i, j := range idx {
		texts[i] = headlines[j].Text
	}

	results := o.enhancer.BatchEnhanceResults(ctx, texts, o.maxConcurrent)

	enhanced := 0
	for i, j := range idx {
		if i >= len(results) || !results[i].Enhanced {
			continue
		}
		headlines[j].Text = results[i].Text
		headlines[j].Enhanced = true
		enhanced++
	}
	return enhanced
}
