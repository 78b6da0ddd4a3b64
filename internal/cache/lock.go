package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLocked is returned when another edit of the same route is in flight
var ErrLocked = errors.New("route is locked by another edit")

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RouteLocker serializes edits per route id. It uses Redis so every replica sees
// the lock and falls back to a process-local lock set when Redis is unavailable.
type RouteLocker struct {
	ttl time.Duration

	mu    sync.Mutex
	local map[int]struct{}
}

func NewRouteLocker(ttl time.Duration) *RouteLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RouteLocker{ttl: ttl, local: make(map[int]struct{})}
}

// Acquire takes the lock of routeID without waiting. The returned func releases it.
func (l *RouteLocker) Acquire(ctx context.Context, routeID int) (func(), error) {
	if c := client; c != nil {
		release, err := l.acquireRedis(ctx, c, routeID)
		if err == nil || errors.Is(err, ErrLocked) {
			return release, err
		}
		logrus.WithError(err).WithField("route_id", routeID).Warn("Redis lock unavailable, using local lock")
	}
	return l.acquireLocal(routeID)
}

func (l *RouteLocker) acquireRedis(ctx context.Context, c *redis.Client, routeID int) (func(), error) {
	key := fmt.Sprintf(RouteLockKeyFmt, routeID)
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ok, err := c.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, c, []string{key}, token).Err(); err != nil {
			logrus.WithError(err).WithField("route_id", routeID).Warn("Failed to release route lock")
		}
	}, nil
}

func (l *RouteLocker) acquireLocal(routeID int) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.local[routeID]; held {
		return nil, ErrLocked
	}
	l.local[routeID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.local, routeID)
			l.mu.Unlock()
		})
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
