package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/generator/batch"
	"headline-generator/internal/generator/templates"
	"headline-generator/internal/models"
	generateheadlines "headline-generator/internal/workers/generation/generate-headlines"
)

// ==========================
// Test Doubles
// ==========================

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req batch.Request) ([]models.Headline, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Headline), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveBatch(ctx context.Context, headlines []models.Headline) ([]string, error) {
	args := m.Called(ctx, headlines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Find(ctx context.Context, filter models.HeadlineFilter, page models.Page) ([]models.Headline, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]models.Headline), args.Error(1)
}

func (m *MockStore) SearchText(ctx context.Context, text string, limit int) ([]models.Headline, error) {
	args := m.Called(ctx, text, limit)
	return args.Get(0).([]models.Headline), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context, filter models.HeadlineFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type fakeKeywords struct {
	category string
	words    []string
}

func (f *fakeKeywords) AddKeywordsBatch(ctx context.Context, category string, words []string) error {
	f.category, f.words = category, words
	return nil
}

type fakeQueue struct {
	tasks []*models.Task
}

func (f *fakeQueue) Enqueue(ctx context.Context, task *models.Task) error {
	task.ID = "task-1"
	f.tasks = append(f.tasks, task)
	return nil
}

type fakeWorker struct {
	state generateheadlines.State
}

func (f *fakeWorker) Start() error {
	if f.state == generateheadlines.StateRunning {
		return apperrors.NewWorkerStateError(apperrors.ErrCodeWorkerAlreadyRunning, f.state.String())
	}
	f.state = generateheadlines.StateRunning
	return nil
}

func (f *fakeWorker) Stop() error {
	if f.state != generateheadlines.StateRunning {
		return apperrors.NewWorkerStateError(apperrors.ErrCodeWorkerNotRunning, f.state.String())
	}
	f.state = generateheadlines.StateStopped
	return nil
}

func (f *fakeWorker) Status() generateheadlines.Status {
	return generateheadlines.Status{State: f.state}
}

func newTemplates(t *testing.T) *templates.Store {
	s := templates.NewStore(logger.NewTestLogger(t))
	s.LoadDefaults()
	return s
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ==========================
// Generate Tests
// ==========================

func TestGenerate(t *testing.T) {
	gen := new(MockGenerator)
	store := new(MockStore)
	gen.On("Generate", mock.Anything, batch.Request{Count: 2, Category: "科技", EnhanceRatio: 0.3}).
		Return([]models.Headline{{Text: "a", Category: "科技"}, {Text: "b", Category: "科技"}}, nil)
	store.On("SaveBatch", mock.Anything, mock.Anything).Return([]string{"id-1", "id-2"}, nil)

	r := NewRouter(Deps{Generator: gen, Templates: newTemplates(t), Store: store}, logger.NewTestLogger(t))
	w := do(t, r, http.MethodPost, "/generate", map[string]interface{}{"count": 2, "category": "科技", "enhance": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "id-1", resp.Headlines[0].ID)
	gen.AssertExpectations(t)
}

func TestGenerate_DefaultsToOne(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, batch.Request{Count: 1}).Return([]models.Headline{{Text: "a"}}, nil)

	r := NewRouter(Deps{Generator: gen, Templates: newTemplates(t)}, logger.NewTestLogger(t))
	w := do(t, r, http.MethodPost, "/generate", map[string]interface{}{})
	assert.Equal(t, http.StatusOK, w.Code)
	gen.AssertExpectations(t)
}

func TestGenerate_Validation(t *testing.T) {
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t)}, logger.NewTestLogger(t))

	for _, count := range []int{0, -1, 1001} {
		w := do(t, r, http.MethodPost, "/generate", map[string]interface{}{"count": count})
		assert.Equal(t, http.StatusBadRequest, w.Code, "count %d", count)
	}

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_NoTemplates(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, apperrors.NewNoTemplatesError())

	r := NewRouter(Deps{Generator: gen, Templates: newTemplates(t)}, logger.NewTestLogger(t))
	w := do(t, r, http.MethodPost, "/generate", map[string]interface{}{"count": 3})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrCodeConfiguration))
}

// ==========================
// Headline Tests
// ==========================

func TestListHeadlines(t *testing.T) {
	store := new(MockStore)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := models.HeadlineFilter{Category: "政治", From: &from}
	page := models.Page{Limit: 10, Skip: 20, SortBy: models.SortByCategory, Descending: false}

	store.On("Find", mock.Anything, filter, page).Return([]models.Headline{{ID: "x", Text: "t"}}, nil)
	store.On("Count", mock.Anything, filter).Return(int64(31), nil)

	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Store: store}, logger.NewTestLogger(t))
	w := do(t, r, http.MethodGet, "/headlines?category=政治&from=2026-01-01T00:00:00Z&limit=10&skip=20&sort=category&desc=false", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":31`)
	store.AssertExpectations(t)

	w = do(t, r, http.MethodGet, "/headlines?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHeadlines(t *testing.T) {
	store := new(MockStore)
	store.On("SearchText", mock.Anything, "辭職", 20).Return([]models.Headline{{ID: "x"}}, nil)

	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Store: store}, logger.NewTestLogger(t))
	w := do(t, r, http.MethodGet, "/headlines/search?q=辭職", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/headlines/search", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/headlines/search?q=x&limit=500", nil).Code)
}

func TestDeleteHeadline(t *testing.T) {
	store := new(MockStore)
	store.On("Delete", mock.Anything, "known").Return(true, nil)
	store.On("Delete", mock.Anything, "unknown").Return(false, nil)
	store.On("Delete", mock.Anything, "broken").Return(false, errors.New("db down"))

	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Store: store}, logger.NewTestLogger(t))
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/headlines/known", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/headlines/unknown", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodDelete, "/headlines/broken", nil).Code)
}

func TestStoreRoutesWithoutStore(t *testing.T) {
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t)}, logger.NewTestLogger(t))
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/headlines", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodPost, "/tasks", map[string]int{"count": 1}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/worker/status", nil).Code)
}

// ==========================
// Templates, Keywords, Tasks
// ==========================

func TestListTemplates(t *testing.T) {
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t)}, logger.NewTestLogger(t))

	w := do(t, r, http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count      int               `json:"count"`
		Categories []string          `json:"categories"`
		Templates  []models.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 41, body.Count)
	assert.Len(t, body.Categories, 8)

	w = do(t, r, http.MethodGet, "/templates?category=科技", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, tmpl := range body.Templates {
		assert.Equal(t, "科技", tmpl.Category)
	}
}

func TestAddKeywords(t *testing.T) {
	kw := &fakeKeywords{}
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Keywords: kw}, logger.NewTestLogger(t))

	w := do(t, r, http.MethodPost, "/keywords/城市", map[string]interface{}{"words": []string{"台北", "高雄"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "城市", kw.category)
	assert.Equal(t, []string{"台北", "高雄"}, kw.words)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/keywords/城市", map[string]interface{}{"words": []string{}}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/keywords/城市", map[string]interface{}{"words": []string{""}}).Code)

	w = do(t, r, http.MethodPost, "/keywords/動作", map[string]interface{}{"words": []string{"辭職", "[人物]"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "城市", kw.category)
}

func TestEnqueueTask(t *testing.T) {
	q := &fakeQueue{}
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Queue: q}, logger.NewTestLogger(t))

	w := do(t, r, http.MethodPost, "/tasks", map[string]interface{}{"count": 500, "category": "政治", "enhance_ratio": 0.1})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")
	require.Len(t, q.tasks, 1)
	assert.Equal(t, 500, q.tasks[0].Count)

	w = do(t, r, http.MethodPost, "/tasks", map[string]interface{}{"count": 5, "enhance_ratio": 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==========================
// Worker & Health Tests
// ==========================

func TestWorkerControl(t *testing.T) {
	wk := &fakeWorker{}
	r := NewRouter(Deps{Generator: new(MockGenerator), Templates: newTemplates(t), Worker: wk}, logger.NewTestLogger(t))

	w := do(t, r, http.MethodPost, "/worker/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"RUNNING"`)

	w = do(t, r, http.MethodPost, "/worker/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrCodeWorkerAlreadyRunning))

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/worker/stop", nil).Code)
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/worker/stop", nil).Code)

	w = do(t, r, http.MethodGet, "/worker/status", nil)
	assert.Contains(t, w.Body.String(), `"state":"STOPPED"`)
}

func TestHealthAndReady(t *testing.T) {
	healthy := true
	deps := Deps{
		Generator: new(MockGenerator),
		Templates: newTemplates(t),
		Checks: map[string]CheckFunc{
			"postgres": func(ctx context.Context) error {
				if !healthy {
					return errors.New("connection refused")
				}
				return nil
			},
		},
	}
	r := NewRouter(deps, logger.NewTestLogger(t))

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", nil).Code)

	healthy = false
	w := do(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/metrics", nil).Code)
}
