package templates

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	return NewStore(logger.NewTestLogger(t), opts...)
}

func TestStore_LoadDefaults(t *testing.T) {
	s := newTestStore(t)
	s.LoadDefaults()

	assert.Equal(t, 41, s.Count())
	assert.Equal(t, []string{"健康", "國際", "娛樂", "政治", "教育", "社會", "科技", "經濟"}, s.Categories())

	for _, tpl := range s.All() {
		assert.NoError(t, tpl.Validate(), tpl.Text)
	}
}

func TestStore_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RandomTemplate()
	assert.ErrorIs(t, err, apperrors.ErrNoTemplates)

	_, err = s.TemplateByCategory("政治")
	assert.ErrorIs(t, err, apperrors.ErrNoTemplates)
}

func TestStore_Load(t *testing.T) {
	t.Run("replaces the active set", func(t *testing.T) {
		s := newTestStore(t)
		s.LoadDefaults()

		err := s.Load([]models.Template{{Text: "[人物]說話", Category: "測試"}})
		require.NoError(t, err)

		assert.Equal(t, 1, s.Count())
		tpl, err := s.RandomTemplate()
		require.NoError(t, err)
		assert.Equal(t, "[人物]說話", tpl.Text)
	})

	t.Run("empty input into empty store", func(t *testing.T) {
		s := newTestStore(t)
		err := s.Load(nil)
		assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
		assert.Equal(t, 0, s.Count())
	})

	t.Run("empty input keeps existing set", func(t *testing.T) {
		s := newTestStore(t)
		s.LoadDefaults()
		require.NoError(t, s.Load([]models.Template{}))
		assert.Equal(t, 41, s.Count())
	})

	t.Run("invalid template rejected without swapping", func(t *testing.T) {
		s := newTestStore(t)
		s.LoadDefaults()

		err := s.Load([]models.Template{
			{Text: "[人物]說話", Category: "測試"},
			{Text: "壞[]模板", Category: "測試"},
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidTemplate, apperrors.CodeOf(err))
		assert.Equal(t, 41, s.Count())
	})

	t.Run("caller slice is copied", func(t *testing.T) {
		s := newTestStore(t)
		in := []models.Template{{Text: "[人物]說話", Category: "測試"}}
		require.NoError(t, s.Load(in))

		in[0].Text = "changed"
		assert.Equal(t, "[人物]說話", s.All()[0].Text)
	})
}

func TestStore_TemplateByCategory(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Load([]models.Template{
		{Text: "A[x]", Category: "政治"},
		{Text: "B[x]", Category: "科技"},
		{Text: "C[x]", Category: "科技"},
	}))

	for i := 0; i < 50; i++ {
		tpl, err := s.TemplateByCategory("科技")
		require.NoError(t, err)
		assert.Equal(t, "科技", tpl.Category)
	}

	tpl, err := s.TemplateByCategory("不存在")
	require.NoError(t, err)
	assert.Contains(t, []string{"A[x]", "B[x]", "C[x]"}, tpl.Text)
}

func TestStore_RandomTemplateUsesIndexSource(t *testing.T) {
	var bounds []int
	s := newTestStore(t, WithRand(func(n int) int {
		bounds = append(bounds, n)
		return n - 1
	}))
	require.NoError(t, s.Load([]models.Template{
		{Text: "A[x]", Category: "a"},
		{Text: "B[x]", Category: "b"},
	}))

	tpl, err := s.RandomTemplate()
	require.NoError(t, err)
	assert.Equal(t, "B[x]", tpl.Text)
	assert.Equal(t, []int{2}, bounds)
}

func TestStore_Add(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(models.Template{Text: "[人物]到訪", Category: "國際"}))
	assert.Equal(t, 1, s.Count())

	err := s.Add(models.Template{Text: "", Category: "國際"})
	assert.Error(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestStore_ConcurrentReadersDuringLoad(t *testing.T) {
	s := newTestStore(t)
	s.LoadDefaults()

	alt := []models.Template{{Text: "[人物]說話", Category: "測試"}}
	defaults := DefaultTemplates()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tpl, err := s.RandomTemplate()
				if !assert.NoError(t, err) {
					return
				}
				// Every pick must come from one complete snapshot or the other.
				if tpl.Category != "測試" {
					assert.Contains(t, defaults, tpl)
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			require.NoError(t, s.Load(alt))
		} else {
			s.LoadDefaults()
		}
	}
	wg.Wait()
}
