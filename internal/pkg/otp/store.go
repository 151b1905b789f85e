package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var takeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
return 0
`)

var failScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[2])
if n == 1 then
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl <= 0 then
		ttl = tonumber(ARGV[1])
	end
	redis.call("PEXPIRE", KEYS[2], ttl)
end
return n
`)

// RedisStore keeps codes in Redis with native key expiry
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a go-redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func attemptsKey(key string) string {
	return key + ":attempts"
}

// Set stores the code under key, replacing any previous value
func (s *RedisStore) Set(ctx context.Context, key, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code, ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

// Get returns the active code for key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	code, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

// Take compares and deletes in one script so only one caller wins
func (s *RedisStore) Take(ctx context.Context, key, code string) (bool, error) {
	n, err := takeScript.Run(ctx, s.client, []string{key, attemptsKey(key)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Fail increments the failure counter, expiring it with the code
func (s *RedisStore) Fail(ctx context.Context, key string) (int, error) {
	return failScript.Run(ctx, s.client, []string{key, attemptsKey(key)}, DefaultTTL.Milliseconds()).Int()
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key, attemptsKey(key)).Err()
}

// MemoryStore is an in-process Store for development without Redis
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	codes map[string]*memoryEntry
}

type memoryEntry struct {
	code      string
	failures  int
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, codes: make(map[string]*memoryEntry)}
}

// active returns the unexpired entry for key. Callers hold s.mu.
func (s *MemoryStore) active(key string) (*memoryEntry, bool) {
	entry, ok := s.codes[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.codes, key)
		return nil, false
	}
	return entry, true
}

// Set stores the code under key
func (s *MemoryStore) Set(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = &memoryEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the active code for key, dropping it once expired
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active(key)
	if !ok {
		return "", false, nil
	}
	return entry.code, true, nil
}

// Take deletes key if it still holds code
func (s *MemoryStore) Take(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active(key)
	if !ok || entry.code != code {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}

// Fail records a wrong submission against the active code
func (s *MemoryStore) Fail(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.active(key)
	if !ok {
		return 0, nil
	}
	entry.failures++
	return entry.failures, nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, key)
	return nil
}
