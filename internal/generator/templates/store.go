// Package templates holds the active set of headline templates.
package templates

import (
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
	"headline-generator/internal/models"
)

// Store serves templates from an immutable snapshot. Load and Add publish a
// new snapshot; readers never block.
type Store struct {
	snapshot atomic.Pointer[[]models.Template]
	writeMu  sync.Mutex
	intN     func(n int) int
	logger   logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRand replaces the uniform index source, mainly for tests.
func WithRand(intN func(n int) int) Option {
	return func(s *Store) { s.intN = intN }
}

// NewStore returns an empty store.
func NewStore(log logger.Logger, opts ...Option) *Store {
	s := &Store{
		intN:   rand.IntN,
		logger: log.WithFields(map[string]interface{}{"component": "template_store"}),
	}
	empty := []models.Template{}
	s.snapshot.Store(&empty)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) current() []models.Template {
	return *s.snapshot.Load()
}

// LoadDefaults replaces the active set with the built-in templates.
func (s *Store) LoadDefaults() {
	defaults := DefaultTemplates()
	s.writeMu.Lock()
	s.snapshot.Store(&defaults)
	s.writeMu.Unlock()

	s.logger.Info("loaded default templates", map[string]interface{}{"count": len(defaults)})
}

// Load swaps in templates wholesale. Loading nothing into an empty store is
// an error; loading nothing over an existing set keeps that set.
func (s *Store) Load(templates []models.Template) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if len(templates) == 0 {
		if len(s.current()) == 0 {
			return apperrors.NewEmptyInputError("template load with no templates into an empty store")
		}
		s.logger.Warn("ignoring empty template load", map[string]interface{}{
			"active": len(s.current()),
		})
		return nil
	}

	for i, t := range templates {
		if err := t.Validate(); err != nil {
			return apperrors.NewInvalidTemplateError(i, err)
		}
	}

	next := make([]models.Template, len(templates))
	copy(next, templates)
	s.snapshot.Store(&next)

	s.logger.Info("loaded templates", map[string]interface{}{"count": len(next)})
	return nil
}

// Add appends a single template.
func (s *Store) Add(t models.Template) error {
	if err := t.Validate(); err != nil {
		return apperrors.NewInvalidTemplateError(len(s.current()), err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	next := make([]models.Template, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, t)
	s.snapshot.Store(&next)

	s.logger.Info("added template", map[string]interface{}{
		"template": t.Text,
		"category": t.Category,
	})
	return nil
}

// RandomTemplate picks uniformly from the whole set.
func (s *Store) RandomTemplate() (models.Template, error) {
	return s.pick(s.current())
}

// TemplateByCategory picks uniformly among templates of category, falling
// back to RandomTemplate when none match.
func (s *Store) TemplateByCategory(category string) (models.Template, error) {
	all := s.current()

	var matching []models.Template
	for _, t := range all {
		if t.Category == category {
			matching = append(matching, t)
		}
	}

	if len(matching) == 0 {
		metrics.TemplateFallbacks.Inc()
		s.logger.Warn("no template for category, using random template", map[string]interface{}{
			"category": category,
		})
		return s.pick(all)
	}
	return s.pick(matching)
}

func (s *Store) pick(from []models.Template) (models.Template, error) {
	if len(from) == 0 {
		return models.Template{}, apperrors.NewNoTemplatesError()
	}
	return from[s.intN(len(from))], nil
}

// All returns a copy of the active set.
func (s *Store) All() []models.Template {
	cur := s.current()
	out := make([]models.Template, len(cur))
	copy(out, cur)
	return out
}

// Count returns the number of active templates.
func (s *Store) Count() int {
	return len(s.current())
}

// Categories returns the distinct categories in sorted order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	for _, t := range s.current() {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
