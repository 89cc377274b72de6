// Package keywords resolves placeholder names to concrete words.
package keywords

import (
	"context"
	"fmt"
	"math/rand/v2"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
	"headline-generator/internal/models"
)

// Source is the backing keyword store. GetKeywordsByCategory returns nil, nil
// for an unknown category.
type Source interface {
	GetKeywordsByCategory(ctx context.Context, category string) (*models.KeywordCategory, error)
	SaveKeywordCategory(ctx context.Context, category string, words []string) error
	AppendKeywords(ctx context.Context, category string, words ...string) error
	CountCategories(ctx context.Context) (int, error)
}

// Provider picks keywords from a Source.
type Provider struct {
	source Source
	intN   func(n int) int
	logger logger.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithRand replaces the uniform index source.
func WithRand(intN func(n int) int) Option {
	return func(p *Provider) { p.intN = intN }
}

func NewProvider(source Source, log logger.Logger, opts ...Option) *Provider {
	p := &Provider{
		source: source,
		intN:   rand.IntN,
		logger: log.WithFields(map[string]interface{}{"component": "keyword_provider"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RandomKeyword returns a word of category not in exclude, or "[category]"
// when nothing is eligible. It never fails.
func (p *Provider) RandomKeyword(ctx context.Context, category string, exclude map[string]struct{}) string {
	if kw, ok := p.Keyword(ctx, category, exclude); ok {
		return kw
	}
	return "[" + category + "]"
}

// Keyword is RandomKeyword without the fallback: ok is false when the
// category is unknown, empty, fully excluded or the source failed.
func (p *Provider) Keyword(ctx context.Context, category string, exclude map[string]struct{}) (string, bool) {
	kc, err := p.source.GetKeywordsByCategory(ctx, category)
	if err != nil {
		p.fallback(category, "source error", err)
		return "", false
	}
	if kc == nil || len(kc.Words) == 0 {
		p.fallback(category, "category missing or empty", nil)
		return "", false
	}

	eligible := kc.Words
	if len(exclude) > 0 {
		eligible = make([]string, 0, len(kc.Words))
		for _, w := range kc.Words {
			if _, used := exclude[w]; !used {
				eligible = append(eligible, w)
			}
		}
	}
	if len(eligible) == 0 {
		p.fallback(category, "all words excluded", nil)
		return "", false
	}

	return eligible[p.intN(len(eligible))], true
}

func (p *Provider) fallback(category, reason string, err error) {
	metrics.KeywordFallbacks.WithLabelValues(category).Inc()

	fields := map[string]interface{}{
		"category":  category,
		"reason":    reason,
		"errorCode": "NOT_FOUND_FALLBACK",
	}
	if err != nil {
		fields["error"] = err
	}
	p.logger.Warn("no keyword available", fields)
}

// AddKeyword appends one word to category, creating it if needed.
func (p *Provider) AddKeyword(ctx context.Context, category, word string) error {
	return p.AddKeywordsBatch(ctx, category, []string{word})
}

// AddKeywordsBatch appends words to category, creating it if needed.
func (p *Provider) AddKeywordsBatch(ctx context.Context, category string, words []string) error {
	if len(words) == 0 {
		return nil
	}
	if err := p.source.AppendKeywords(ctx, category, words...); err != nil {
		return fmt.Errorf("append keywords to %q: %w", category, err)
	}
	p.logger.Debug("keywords added", map[string]interface{}{
		"category": category,
		"count":    len(words),
	})
	return nil
}

// EnsureSeeded loads the default categories when the source has none and
// returns the resulting category count. Calling it again is a no-op.
func (p *Provider) EnsureSeeded(ctx context.Context) (int, error) {
	count, err := p.source.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count keyword categories: %w", err)
	}
	if count > 0 {
		return count, nil
	}

	p.logger.Info("no keywords found, loading defaults", nil)
	for _, kc := range DefaultCategories() {
		if err := p.source.SaveKeywordCategory(ctx, kc.Name, kc.Words); err != nil {
			return 0, fmt.Errorf("seed keyword category %q: %w", kc.Name, err)
		}
	}

	count, err = p.source.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count keyword categories: %w", err)
	}
	p.logger.Info("default keywords loaded", map[string]interface{}{"categories": count})
	return count, nil
}
