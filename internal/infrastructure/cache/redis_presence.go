package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

const defaultPresenceTTL = 24 * time.Hour

// presence key: chatdash:presence:<uid>
// hash fields: status, lastSeen (unix millis)
func presenceKey(uid string) string { return "chatdash:presence:" + uid }

func presenceTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultPresenceTTL
	}
	return ttl
}

func encodePresence(status string, lastSeen time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":   status,
		"lastSeen": lastSeen.UnixMilli(),
	}
}

func decodeLastSeen(val string) (time.Time, error) {
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cached lastSeen %q: %v", val, err)
	}
	return time.UnixMilli(millis), nil
}

// RedisPresenceCache keeps each user's latest status and lastSeen so last-active
// lookups do not hit the document store.
type RedisPresenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPresenceCache(ctx context.Context, c Config) (*RedisPresenceCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %v", c.Addr, err)
	}

	return &RedisPresenceCache{client: rdb, ttl: presenceTTL(c.TTL)}, nil
}

func (c *RedisPresenceCache) SetLastSeen(ctx context.Context, uid string, lastSeen time.Time, status string) error {
	key := presenceKey(uid)

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, encodePresence(status, lastSeen))
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetLastSeen reports false when nothing is cached for uid.
func (c *RedisPresenceCache) GetLastSeen(ctx context.Context, uid string) (time.Time, bool, error) {
	val, err := c.client.HGet(ctx, presenceKey(uid), "lastSeen").Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	lastSeen, err := decodeLastSeen(val)
	if err != nil {
		return time.Time{}, false, err
	}
	return lastSeen, true, nil
}

func (c *RedisPresenceCache) Close() error {
	return c.client.Close()
}
