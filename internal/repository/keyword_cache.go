package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/generator/keywords"
	"headline-generator/internal/models"
)

// CachedKeywordSource keeps category lookups in Redis for ttl in front of
// another source. Writes go to the backing source and evict the entry.
// Cache failures are logged and bypassed.
type CachedKeywordSource struct {
	next   keywords.Source
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedKeywordSource(next keywords.Source, rdb redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *CachedKeywordSource {
	return &CachedKeywordSource{
		next:   next,
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "keyword_cache"}),
	}
}

func (c *CachedKeywordSource) key(category string) string {
	return c.prefix + category
}

func (c *CachedKeywordSource) GetKeywordsByCategory(ctx context.Context, category string) (*models.KeywordCategory, error) {
	raw, err := c.rdb.Get(ctx, c.key(category)).Result()
	switch {
	case err == nil:
		var kc models.KeywordCategory
		if jerr := json.Unmarshal([]byte(raw), &kc); jerr == nil {
			return &kc, nil
		}
		c.logger.Warn("dropping undecodable cache entry", map[string]interface{}{"category": category})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("keyword cache read failed", map[string]interface{}{
			"category": category,
			"error":    err,
		})
	}

	kc, err := c.next.GetKeywordsByCategory(ctx, category)
	if err != nil || kc == nil {
		return kc, err
	}

	if data, jerr := json.Marshal(kc); jerr == nil {
		if serr := c.rdb.Set(ctx, c.key(category), string(data), c.ttl).Err(); serr != nil {
			c.logger.Warn("keyword cache write failed", map[string]interface{}{
				"category": category,
				"error":    serr,
			})
		}
	}
	return kc, nil
}

func (c *CachedKeywordSource) SaveKeywordCategory(ctx context.Context, category string, words []string) error {
	if err := c.next.SaveKeywordCategory(ctx, category, words); err != nil {
		return err
	}
	c.evict(ctx, category)
	return nil
}

func (c *CachedKeywordSource) AppendKeywords(ctx context.Context, category string, words ...string) error {
	if err := c.next.AppendKeywords(ctx, category, words...); err != nil {
		return err
	}
	c.evict(ctx, category)
	return nil
}

func (c *CachedKeywordSource) CountCategories(ctx context.Context) (int, error) {
	return c.next.CountCategories(ctx)
}

func (c *CachedKeywordSource) evict(ctx context.Context, category string) {
	if err := c.rdb.Del(ctx, c.key(category)).Err(); err != nil {
		c.logger.Warn("keyword cache eviction failed", map[string]interface{}{
			"category": category,
			"error":    err,
		})
	}
}
