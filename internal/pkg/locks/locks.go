// Package locks provides short-lived named locks for work that must not run
// twice at the same time, such as two imports of the same gradesheet batch.
package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the lock
var ErrNotObtained = errors.New("lock is held by another operation")

// Release frees an obtained lock
type Release func(ctx context.Context)

// Locker obtains named locks with a TTL
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// RedisLocker implements Locker on top of redislock
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a RedisLocker from a go-redis client
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain tries once to take the lock
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) { _ = lock.Release(ctx) }, nil
}

// LocalLocker is a process-local Locker used when Redis is not configured
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewLocalLocker creates an empty LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time)}
}

// Obtain takes the lock unless a live holder exists
func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, ErrNotObtained
	}
	l.held[key] = now.Add(ttl)
	return func(context.Context) {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}
