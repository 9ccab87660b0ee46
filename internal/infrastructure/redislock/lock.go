// Package redislock serializes synchronization passes per owner across
// service instances with Redis SETNX + TTL.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"vn.io.arda/reminder/internal/domain"
)

const (
	defaultTTL    = 2 * time.Minute
	defaultPrefix = "reminder:sync:"
)

type cmdable interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
}

// releaseScript deletes KEYS[1] only while it holds ARGV[1], in one step.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements application.SyncLocker.
type Locker struct {
	client cmdable
	prefix string
	ttl    time.Duration
}

// New constructs a Redis-backed Locker. The TTL bounds how long a crashed
// pass can block the next one.
func New(client *redis.Client, ttl time.Duration) (*Locker, error) {
	if client == nil {
		return nil, errors.New("redis client required for sync lock")
	}
	return newLocker(client, ttl), nil
}

func newLocker(client cmdable, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{client: client, prefix: defaultPrefix, ttl: ttl}
}

// TryLock acquires the owner's lock or returns domain.ErrSyncInProgress.
func (l *Locker) TryLock(ctx context.Context, owner string) (func(context.Context) error, error) {
	key := l.prefix + owner
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, domain.ErrSyncInProgress
	}
	return func(ctx context.Context) error { return l.release(ctx, key, token) }, nil
}

// release deletes the key only while it still holds our token.
func (l *Locker) release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
