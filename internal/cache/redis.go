package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/config"
)

// Route cache keys
const (
	RouteKeyFmt     = "route:%d"
	RouteListKey    = "route:list:%s"
	RouteLockKeyFmt = "lock:route:%d"
)

var client *redis.Client

// Init initializes the Redis connection. On failure the package keeps working
// without Redis: cache reads miss and locks fall back to process-local ones.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// SetClient replaces the Redis client, nil disables Redis
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close releases the Redis connection
func Close() {
	if client != nil {
		client.Close()
	}
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Debug("Cache write failed")
	}
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// ============================================
// Route Cache Functions
// ============================================

func RouteKey(id int) string {
	return fmt.Sprintf(RouteKeyFmt, id)
}

// InvalidateRouteCaches clears the cached route and every cached route list
func InvalidateRouteCaches(ctx context.Context, id int) {
	InvalidateKeys(ctx, RouteKey(id))
	InvalidatePattern(ctx, "route:list:*")
}
