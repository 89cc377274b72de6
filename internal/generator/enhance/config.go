package enhance

import (
	"time"

	"headline-generator/internal/common/config"
)

// DefaultPrompt is prefixed to the headline in every rewrite request.
const DefaultPrompt = "增強以下假新聞標題的可信度和吸引力，但保持相同的主題：\n"

const (
	ProviderCompletion = "completion"
	ProviderOpenAI     = "openai"
)

type Config struct {
	Enabled              bool
	Provider             string
	Endpoint             string
	APIKey               string
	Model                string
	MaxRetries           int
	Timeout              time.Duration
	BaseDelay            time.Duration
	MaxTokens            int
	Temperature          float64
	MaxConcurrent        int
	RetryTransient       bool
	TransientStatusCodes []int
	Prompt               string
}

// DefaultConfig returns the built-in policy with enhancement switched off.
func DefaultConfig() Config {
	return Config{
		Provider:             ProviderCompletion,
		MaxRetries:           3,
		Timeout:              10 * time.Second,
		BaseDelay:            time.Second,
		MaxTokens:            50,
		Temperature:          0.7,
		MaxConcurrent:        5,
		RetryTransient:       true,
		TransientStatusCodes: []int{502, 503, 504},
		Prompt:               DefaultPrompt,
	}
}

// LoadConfig maps the application settings onto the service configuration.
func LoadConfig(cfg config.EnhancementConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	c.Endpoint = cfg.Endpoint
	c.APIKey = cfg.APIKey
	c.Model = cfg.Model

	if cfg.Provider != "" {
		c.Provider = cfg.Provider
	}
	if cfg.MaxRetries > 0 {
		c.MaxRetries = cfg.MaxRetries
	}
	if cfg.Timeout > 0 {
		c.Timeout = config.GetDuration(cfg.Timeout)
	}
	if cfg.RetryDelay > 0 {
		c.BaseDelay = config.GetDuration(cfg.RetryDelay)
	}
	if cfg.MaxTokens > 0 {
		c.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		c.Temperature = cfg.Temperature
	}
	if cfg.MaxConcurrent > 0 {
		c.MaxConcurrent = cfg.MaxConcurrent
	}
	if cfg.RetryTransient != nil {
		c.RetryTransient = *cfg.RetryTransient
	}
	if cfg.TransientStatusCodes != nil {
		c.TransientStatusCodes = cfg.TransientStatusCodes
	}
	if cfg.Prompt != "" {
		c.Prompt = cfg.Prompt
	}
	return c
}
