// internal/workers/generation/generate-headlines/config.go
package generateheadlines

import (
	"time"

	"headline-generator/internal/common/config"
)

type Config struct {
	BatchSize    int
	IdleBackoff  time.Duration
	StopTimeout  time.Duration
	EnhanceRatio float64
}

func LoadConfig(cfg config.WorkerConfig) *Config {
	c := &Config{
		BatchSize:    1000,
		IdleBackoff:  time.Second,
		StopTimeout:  5 * time.Second,
		EnhanceRatio: cfg.EnhanceRatio,
	}
	if cfg.BatchSize > 0 {
		c.BatchSize = cfg.BatchSize
	}
	if cfg.IdleBackoff > 0 {
		c.IdleBackoff = config.GetDuration(cfg.IdleBackoff)
	}
	if cfg.StopTimeout > 0 {
		c.StopTimeout = config.GetDuration(cfg.StopTimeout)
	}
	return c
}
