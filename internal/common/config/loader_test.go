package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: headline-generator
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "completion", cfg.Enhancement.Provider)
	assert.Equal(t, 3, cfg.Enhancement.MaxRetries)
	assert.Equal(t, 10000, cfg.Enhancement.Timeout)
	assert.Equal(t, 5, cfg.Enhancement.MaxConcurrent)
	require.NotNil(t, cfg.Enhancement.RetryTransient)
	assert.True(t, *cfg.Enhancement.RetryTransient)
	assert.Equal(t, []int{502, 503, 504}, cfg.Enhancement.TransientStatusCodes)
	assert.Equal(t, 1000, cfg.Worker.BatchSize)
	assert.Equal(t, 5*time.Second, GetDuration(cfg.Worker.StopTimeout))
	assert.Equal(t, time.Second, GetDuration(cfg.Worker.IdleBackoff))
	assert.Equal(t, "某", cfg.Generator.FallbackPrefix)
	assert.Equal(t, "headlines", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "generate-headlines", cfg.Camunda.JobType)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	path := writeConfig(t, `
enhancement:
  enabled: true
  endpoint: http://llm.local/v1/completions
  api_key: ${TEST_LLM_KEY}
  retry_transient: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Enhancement.APIKey)
	assert.True(t, cfg.Enhancement.Enabled)
	require.NotNil(t, cfg.Enhancement.RetryTransient)
	assert.False(t, *cfg.Enhancement.RetryTransient)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "postgres enabled without host",
			body: `
database:
  postgres:
    enabled: true
    database: headlines
    user: app
`,
			wantErr: "database.postgres",
		},
		{
			name: "unknown provider",
			body: `
enhancement:
  provider: gemini
`,
			wantErr: "enhancement",
		},
		{
			name: "worker needs redis",
			body: `
worker:
  enabled: true
  task_source: redis
`,
			wantErr: "requires database.redis.enabled",
		},
		{
			name: "zeebe needs broker",
			body: `
worker:
  enabled: true
  task_source: zeebe
`,
			wantErr: "camunda.broker_address",
		},
		{
			name: "ratio out of range",
			body: `
worker:
  enhance_ratio: 1.5
`,
			wantErr: "worker",
		},
		{
			name: "sns without topic",
			body: `
notifications:
  channel: sns
`,
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}
