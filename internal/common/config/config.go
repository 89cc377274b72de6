// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Generator     GeneratorConfig    `mapstructure:"generator"`
	Enhancement   EnhancementConfig  `mapstructure:"enhancement"`
	Worker        WorkerConfig       `mapstructure:"worker"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Tracing       TracingConfig      `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// Address returns the listen address.
func (h HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	QueueKey    string `mapstructure:"queue_key"`
	DeadLetter  string `mapstructure:"dead_letter_key"`
	KeywordTTL  int    `mapstructure:"keyword_ttl"` // seconds
	KeywordKeys string `mapstructure:"keyword_prefix"`
}

// --- Generation ---

// GeneratorConfig controls template loading and placeholder fallback.
type GeneratorConfig struct {
	TemplatesFile  string `mapstructure:"templates_file"`
	WatchTemplates bool   `mapstructure:"watch_templates"`
	FallbackPrefix string `mapstructure:"fallback_prefix"`
	SeedKeywords   bool   `mapstructure:"seed_keywords"`
}

// EnhancementConfig configures the optional rewrite stage.
type EnhancementConfig struct {
	Enabled              bool    `mapstructure:"enabled"`
	Provider             string  `mapstructure:"provider"` // "completion" or "openai"
	Endpoint             string  `mapstructure:"endpoint"`
	APIKey               string  `mapstructure:"api_key"`
	Model                string  `mapstructure:"model"`
	MaxRetries           int     `mapstructure:"max_retries"`
	Timeout              int     `mapstructure:"timeout"`     // milliseconds
	RetryDelay           int     `mapstructure:"retry_delay"` // milliseconds
	MaxTokens            int     `mapstructure:"max_tokens"`
	Temperature          float64 `mapstructure:"temperature"`
	MaxConcurrent        int     `mapstructure:"max_concurrent"`
	RetryTransient       *bool   `mapstructure:"retry_transient"`
	TransientStatusCodes []int   `mapstructure:"transient_status_codes"`
	Prompt               string  `mapstructure:"prompt"`
}

// WorkerConfig holds the settings of the batch-production loop.
type WorkerConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	BatchSize    int     `mapstructure:"batch_size"`
	IdleBackoff  int     `mapstructure:"idle_backoff"` // milliseconds
	StopTimeout  int     `mapstructure:"stop_timeout"` // milliseconds
	EnhanceRatio float64 `mapstructure:"enhance_ratio"`
	TaskSource   string  `mapstructure:"task_source"` // "redis" or "zeebe"
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	JobType        string `mapstructure:"job_type"`
	WorkerName     string `mapstructure:"worker_name"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	MaxRetries     int    `mapstructure:"max_retries"`
}

// NotificationConfig holds settings for batch-completion notices.
type NotificationConfig struct {
	Channel string `mapstructure:"channel"` // "", "sns" or "ses"
	AWS     struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig enables the jaeger span exporter.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}
