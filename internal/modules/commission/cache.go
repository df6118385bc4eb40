// README: Redis snapshot cache for commission settings, invalidated on update.
package commission

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const settingsCacheKey = "commission:settings"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context) (Settings, bool, error) {
	val, err := c.redis.Get(ctx, settingsCacheKey).Result()
	if err == redis.Nil {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, err
	}
	var st Settings
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return Settings{}, false, err
	}
	return st, true, nil
}

func (c *Cache) Set(ctx context.Context, st Settings) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, settingsCacheKey, b, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, settingsCacheKey).Err()
}
