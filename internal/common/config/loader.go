// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, and lets environment variables override any key.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys makes AutomaticEnv see keys that may be absent from the file.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.postgres.host", "database.postgres.user", "database.postgres.password",
		"database.postgres.database", "database.redis.address", "database.redis.password",
		"enhancement.enabled", "enhancement.endpoint", "enhancement.api_key", "enhancement.provider",
		"enhancement.model", "worker.enabled", "worker.task_source", "camunda.broker_address",
		"notifications.channel", "notifications.sns.topic_arn", "logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working dir.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders inside string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from conventional env names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Enhancement.APIKey == "" {
		if val := os.Getenv("LLM_API_KEY"); val != "" {
			cfg.Enhancement.APIKey = val
		}
	}
	if cfg.Enhancement.Endpoint == "" {
		if val := os.Getenv("LLM_API_URL"); val != "" {
			cfg.Enhancement.Endpoint = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "headline-generator"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "headlines"
	}
	if cfg.Database.Redis.QueueKey == "" {
		cfg.Database.Redis.QueueKey = "headline:tasks"
	}
	if cfg.Database.Redis.DeadLetter == "" {
		cfg.Database.Redis.DeadLetter = "headline:tasks:dead"
	}
	if cfg.Database.Redis.KeywordTTL == 0 {
		cfg.Database.Redis.KeywordTTL = 300
	}
	if cfg.Database.Redis.KeywordKeys == "" {
		cfg.Database.Redis.KeywordKeys = "headline:keywords:"
	}

	if cfg.Generator.FallbackPrefix == "" {
		cfg.Generator.FallbackPrefix = "某"
	}

	// Enhancement defaults
	if cfg.Enhancement.Provider == "" {
		cfg.Enhancement.Provider = "completion"
	}
	if cfg.Enhancement.MaxRetries == 0 {
		cfg.Enhancement.MaxRetries = 3
	}
	if cfg.Enhancement.Timeout == 0 {
		cfg.Enhancement.Timeout = 10000
	}
	if cfg.Enhancement.RetryDelay == 0 {
		cfg.Enhancement.RetryDelay = 1000
	}
	if cfg.Enhancement.MaxTokens == 0 {
		cfg.Enhancement.MaxTokens = 50
	}
	if cfg.Enhancement.Temperature == 0 {
		cfg.Enhancement.Temperature = 0.7
	}
	if cfg.Enhancement.MaxConcurrent == 0 {
		cfg.Enhancement.MaxConcurrent = 5
	}
	if cfg.Enhancement.RetryTransient == nil {
		retry := true
		cfg.Enhancement.RetryTransient = &retry
	}
	if len(cfg.Enhancement.TransientStatusCodes) == 0 {
		cfg.Enhancement.TransientStatusCodes = []int{502, 503, 504}
	}

	// Worker defaults
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 1000
	}
	if cfg.Worker.IdleBackoff == 0 {
		cfg.Worker.IdleBackoff = 1000
	}
	if cfg.Worker.StopTimeout == 0 {
		cfg.Worker.StopTimeout = 5000
	}
	if cfg.Worker.TaskSource == "" {
		cfg.Worker.TaskSource = "redis"
	}

	if cfg.Camunda.JobType == "" {
		cfg.Camunda.JobType = "generate-headlines"
	}
	if cfg.Camunda.WorkerName == "" {
		cfg.Camunda.WorkerName = cfg.App.Name
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 5000
	}
	if cfg.Camunda.MaxRetries == 0 {
		cfg.Camunda.MaxRetries = 3
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = cfg.App.Name
	}
}

// validateConfig checks cross-field requirements of enabled components.
func validateConfig(cfg *Config) error {
	if err := validation.ValidateStruct(&cfg.HTTP,
		validation.Field(&cfg.HTTP.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("http: %w", err)
	}

	pg := &cfg.Database.Postgres
	if pg.Enabled {
		if err := validation.ValidateStruct(pg,
			validation.Field(&pg.Host, validation.Required),
			validation.Field(&pg.Database, validation.Required),
			validation.Field(&pg.User, validation.Required),
		); err != nil {
			return fmt.Errorf("database.postgres: %w", err)
		}
	}

	rd := &cfg.Database.Redis
	if rd.Enabled {
		if err := validation.ValidateStruct(rd,
			validation.Field(&rd.Address, validation.Required),
		); err != nil {
			return fmt.Errorf("database.redis: %w", err)
		}
	}

	es := &cfg.Database.Elasticsearch
	if es.Enabled {
		if err := validation.ValidateStruct(es,
			validation.Field(&es.Addresses, validation.Required),
		); err != nil {
			return fmt.Errorf("database.elasticsearch: %w", err)
		}
	}

	en := &cfg.Enhancement
	if err := validation.ValidateStruct(en,
		validation.Field(&en.Provider, validation.In("completion", "openai")),
		validation.Field(&en.MaxRetries, validation.Min(1)),
		validation.Field(&en.MaxConcurrent, validation.Min(1)),
		validation.Field(&en.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return fmt.Errorf("enhancement: %w", err)
	}

	w := &cfg.Worker
	if err := validation.ValidateStruct(w,
		validation.Field(&w.TaskSource, validation.In("redis", "zeebe")),
		validation.Field(&w.EnhanceRatio, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&w.BatchSize, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	if w.Enabled && w.TaskSource == "redis" && !rd.Enabled {
		return fmt.Errorf("worker.task_source redis requires database.redis.enabled")
	}
	if w.Enabled && w.TaskSource == "zeebe" && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required for worker.task_source zeebe")
	}

	n := &cfg.Notifications
	if err := validation.Validate(n.Channel, validation.In("", "sns", "ses")); err != nil {
		return fmt.Errorf("notifications.channel: %w", err)
	}
	if n.Channel == "sns" && n.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required")
	}
	if n.Channel == "ses" && (n.SES.FromEmail == "" || len(n.SES.To) == 0) {
		return fmt.Errorf("notifications.ses.from_email and to are required")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
