package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"uwgate/internal/platform/redis"
	"uwgate/internal/underwriting/models"
	"uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
)

const decisionKeyPrefix = "uwgate:decision:"

// RedisCache keeps recent decisions in Redis with a TTL so repeated status
// polls never hit the durable store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing Redis client as a decision cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached decision, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, id domain.ApplicationID) (*models.UnderwritingDecision, error) {
	raw, err := c.client.Get(ctx, decisionKeyPrefix+id.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache read")
	}

	var d models.UnderwritingDecision
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode cached decision")
	}
	return &d, nil
}

// Set caches a decision for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, d *models.UnderwritingDecision) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode decision")
	}
	if err := c.client.Set(ctx, decisionKeyPrefix+d.ApplicationID.String(), raw, c.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache write")
	}
	return nil
}
