package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

var sample = []models.Template{
	{Text: "[人物]宣布[動作]", Category: "政治"},
	{Text: "[公司]推出[產品]", Category: "科技"},
}

// ==========================
// Load / Save Tests
// ==========================

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"templates.json", "templates.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, sample))

			cat, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sample, cat.Templates)
			assert.Equal(t, "1", cat.Version)
			assert.NotEmpty(t, cat.LastUpdated)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		yaml    bool
		want    int
		wantErr string
	}{
		{
			name: "json object",
			doc:  `{"version":"2","templates":[{"template":"[人物]辭職","category":"政治"}]}`,
			want: 1,
		},
		{
			name: "bare json list",
			doc:  `[{"template":"[人物]辭職","category":"政治"},{"template":"[城市]停電","category":"社會"}]`,
			want: 2,
		},
		{
			name: "yaml",
			doc:  "templates:\n  - template: \"[人物]辭職\"\n    category: 政治\n",
			yaml: true,
			want: 1,
		},
		{
			name:    "unknown field",
			doc:     `{"templates":[{"text":"[人物]辭職","category":"政治"}]}`,
			wantErr: "catalog validation failed",
		},
		{
			name:    "empty list",
			doc:     `{"templates":[]}`,
			wantErr: "catalog validation failed",
		},
		{
			name:    "empty placeholder",
			doc:     `{"templates":[{"template":"[]辭職","category":"政治"}]}`,
			wantErr: string(apperrors.ErrCodeInvalidTemplate),
		},
		{
			name:    "malformed json",
			doc:     `{"templates":`,
			wantErr: "parse json catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Parse([]byte(tt.doc), tt.yaml)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cat.Templates, tt.want)
		})
	}
}

func TestSave_EmptyInput(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "x.json"), nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, os.IsNotExist(err))
}

// ==========================
// Watch Tests
// ==========================

type recordingLoader struct {
	mu    sync.Mutex
	loads [][]models.Template
}

func (r *recordingLoader) Load(templates []models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, templates)
	return nil
}

func (r *recordingLoader) last() []models.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.loads) == 0 {
		return nil
	}
	return r.loads[len(r.loads)-1]
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, Save(path, sample[:1]))

	loader := &recordingLoader{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, loader, logger.NewNoOpLogger()) }()

	// give the watcher time to register
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"templates":[`), 0o644))
	require.NoError(t, Save(path, sample))

	assert.Eventually(t, func() bool {
		return len(loader.last()) == 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
