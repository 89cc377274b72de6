package keywords

import (
	"context"
	"sync"

	"headline-generator/internal/models"
)

// MemorySource keeps keyword categories in process.
type MemorySource struct {
	mu         sync.RWMutex
	categories map[string][]string
}

func NewMemorySource() *MemorySource {
	return &MemorySource{categories: make(map[string][]string)}
}

func (m *MemorySource) GetKeywordsByCategory(_ context.Context, category string) (*models.KeywordCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	words, ok := m.categories[category]
	if !ok {
		return nil, nil
	}
	out := make([]string, len(words))
	copy(out, words)
	return &models.KeywordCategory{Name: category, Words: out}, nil
}

func (m *MemorySource) SaveKeywordCategory(_ context.Context, category string, words []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]string, len(words))
	copy(cp, words)
	m.categories[category] = cp
	return nil
}

func (m *MemorySource) AppendKeywords(_ context.Context, category string, words ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories[category] = append(m.categories[category], words...)
	return nil
}

func (m *MemorySource) CountCategories(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.categories), nil
}
