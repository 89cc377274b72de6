package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/generator/enhance"
	"headline-generator/internal/generator/keywords"
	"headline-generator/internal/generator/substitute"
	"headline-generator/internal/generator/templates"
	"headline-generator/internal/models"
)

type mockEnhancer struct {
	mock.Mock
}

func (m *mockEnhancer) IsAvailable() bool {
	return m.Called().Bool(0)
}

func (m *mockEnhancer) BatchEnhanceResults(ctx context.Context, headlines []string, maxConcurrent int) []enhance.Result {
	args := m.Called(ctx, headlines, maxConcurrent)
	return args.Get(0).([]enhance.Result)
}

func newPipeline(t *testing.T, tpls []models.Template, enhancer Enhancer, opts ...Option) *Orchestrator {
	t.Helper()
	log := logger.NewTestLogger(t)
	ctx := context.Background()

	store := templates.NewStore(log)
	if len(tpls) > 0 {
		require.NoError(t, store.Load(tpls))
	}

	src := keywords.NewMemorySource()
	require.NoError(t, src.SaveKeywordCategory(ctx, "人物", []string{"記者", "將軍"}))
	require.NoError(t, src.SaveKeywordCategory(ctx, "動作", []string{"辭職"}))

	filler := substitute.New(keywords.NewProvider(src, log), "")
	return New(store, filler, enhancer, log, opts...)
}

func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func TestGenerateBatch_EmptyStore(t *testing.T) {
	o := newPipeline(t, nil, nil)

	out, err := o.GenerateBatch(context.Background(), 5, 0.5)
	assert.ErrorIs(t, err, apperrors.ErrNoTemplates)
	assert.Nil(t, out)
}

func TestGenerateBatch_NoEnhancement(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := newPipeline(t, []models.Template{{Text: "[人物]突然[動作]", Category: "政治"}}, nil, WithClock(func() time.Time { return fixed }))

	out, err := o.GenerateBatch(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, out, 10)

	for _, h := range out {
		assert.False(t, h.Enhanced)
		assert.Equal(t, "政治", h.Category)
		assert.Equal(t, fixed, h.CreatedAt)
		assert.NotContains(t, h.Text, "[")
		assert.Contains(t, []string{"記者", "將軍"}, h.KeywordsUsed["人物"])
		assert.Equal(t, "辭職", h.KeywordsUsed["動作"])
	}
}

func TestGenerateBatch_ZeroCount(t *testing.T) {
	o := newPipeline(t, []models.Template{{Text: "[人物]", Category: "政治"}}, nil)
	out, err := o.GenerateBatch(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	empty := newPipeline(t, nil, nil)
	out, err = empty.GenerateBatch(context.Background(), 0, 1)
	assert.ErrorIs(t, err, apperrors.ErrNoTemplates)
	assert.Nil(t, out)
}

func TestGenerateBatch_EnhancedFlagFollowsOutcome(t *testing.T) {
	enh := new(mockEnhancer)
	enh.On("IsAvailable").Return(true)
	enh.On("BatchEnhanceResults", mock.Anything, mock.MatchedBy(func(in []string) bool { return len(in) == 5 }), 2).
		Return([]enhance.Result{
			{Text: "增強0", Enhanced: true, Outcome: enhance.OutcomeEnhanced},
			{Text: "原0", Outcome: enhance.OutcomeExhausted},
			{Text: "增強2", Enhanced: true, Outcome: enhance.OutcomeEnhanced},
			{Text: "原1", Outcome: enhance.OutcomePermanent},
			{Text: "增強4", Enhanced: true, Outcome: enhance.OutcomeEnhanced},
		})

	o := newPipeline(t, []models.Template{{Text: "[人物]突然[動作]", Category: "政治"}}, enh,
		WithPermutation(identityPerm), WithMaxConcurrent(2))

	out, err := o.GenerateBatch(context.Background(), 10, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 10)

	enhanced := 0
	for i, h := range out {
		if h.Enhanced {
			enhanced++
			assert.True(t, strings.HasPrefix(h.Text, "增強"), "item %d", i)
		} else {
			assert.NotContains(t, h.Text, "增強")
		}
	}
	assert.Equal(t, 3, enhanced)
	assert.True(t, out[0].Enhanced)
	assert.False(t, out[1].Enhanced)
	assert.False(t, out[5].Enhanced)
	enh.AssertExpectations(t)
}

func TestGenerateBatch_EnhancesRatioThroughService(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"text":"增強標題"}]}`))
	}))
	defer srv.Close()

	cfg := enhance.DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"
	svc := enhance.NewService(cfg, enhance.NewCompletionClient(cfg, srv.Client()), logger.NewTestLogger(t))

	o := newPipeline(t, []models.Template{{Text: "[人物]突然[動作]", Category: "政治"}}, svc)

	out, err := o.GenerateBatch(context.Background(), 10, 0.3)
	require.NoError(t, err)
	require.Len(t, out, 10)

	enhanced := 0
	for _, h := range out {
		if h.Enhanced {
			enhanced++
			assert.Equal(t, "增強標題", h.Text)
		} else {
			assert.NotEqual(t, "增強標題", h.Text)
		}
	}
	assert.Equal(t, 3, enhanced)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerateBatch_UnavailableEnhancerSkipped(t *testing.T) {
	enh := new(mockEnhancer)
	enh.On("IsAvailable").Return(false)

	o := newPipeline(t, []models.Template{{Text: "[人物]", Category: "政治"}}, enh)
	out, err := o.GenerateBatch(context.Background(), 4, 1)
	require.NoError(t, err)
	for _, h := range out {
		assert.False(t, h.Enhanced)
	}
	enh.AssertNotCalled(t, "BatchEnhanceResults", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_Category(t *testing.T) {
	o := newPipeline(t, []models.Template{
		{Text: "[人物]宣布", Category: "政治"},
		{Text: "[動作]事件", Category: "社會"},
	}, nil)

	out, err := o.Generate(context.Background(), Request{Count: 20, Category: "社會"})
	require.NoError(t, err)
	for _, h := range out {
		assert.Equal(t, "社會", h.Category)
		assert.Equal(t, "辭職事件", h.Text)
	}
}

func TestSubsetSize(t *testing.T) {
	tests := []struct {
		count int
		ratio float64
		want  int
	}{
		{10, 0, 0},
		{10, 0.3, 3},
		{10, 0.25, 3},
		{3, 0.5, 2},
		{10, 1, 10},
		{10, 1.7, 10},
		{10, -0.2, 0},
		{0, 0.5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubsetSize(tt.count, tt.ratio), "count=%d ratio=%v", tt.count, tt.ratio)
	}
}
