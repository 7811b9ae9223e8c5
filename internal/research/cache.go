package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// Cache is a topic-keyed read-through cache for research results. Redis
// failures are tolerated by callers and behave as cache misses; the cache
// only exists to spare the external search tiers on repeated topics.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

// NewCache creates a research cache with the given TTL.
func NewCache(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: log}
}

func (c *Cache) key(topic string) string {
	return fmt.Sprintf("research:topic:%s", domain.Slugify(topic))
}

// Get returns the cached research for a topic, or nil on miss or error.
func (c *Cache) Get(ctx context.Context, topic string) *domain.ResearchData {
	key := c.key(topic)

	data, getErr := c.client.Get(ctx, key).Bytes()
	if getErr != nil {
		if !errors.Is(getErr, redis.Nil) {
			c.logger.Warn("Research cache read failed",
				logger.String("redis_key", key),
				logger.Error(getErr),
			)
		}
		return nil
	}

	var research domain.ResearchData
	if unmarshalErr := json.Unmarshal(data, &research); unmarshalErr != nil {
		c.logger.Warn("Research cache entry corrupt, ignoring",
			logger.String("redis_key", key),
			logger.Error(unmarshalErr),
		)
		return nil
	}

	return &research
}

// Set stores research for a topic. Failures are logged, not returned: a
// write miss only costs a future re-fetch.
func (c *Cache) Set(ctx context.Context, topic string, research *domain.ResearchData) {
	key := c.key(topic)

	data, marshalErr := json.Marshal(research)
	if marshalErr != nil {
		c.logger.Warn("Research cache marshal failed",
			logger.String("redis_key", key),
			logger.Error(marshalErr),
		)
		return
	}

	if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
		c.logger.Warn("Research cache write failed",
			logger.String("redis_key", key),
			logger.Error(setErr),
		)
	}
}
