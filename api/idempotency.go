package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "cmd"

// RedisDeduper stores applied idempotency keys in Redis so a retried command
// batch does not replay gestures that were already applied.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(sessionID, key string) string {
	return fmt.Sprintf("%s:%s:%s", sessionID, dedupeKeyPrefix, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, sessionID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(sessionID, key), 1, r.ttl).Result()
}

// Remove deletes a previously recorded key so the command may be retried.
func (r *RedisDeduper) Remove(ctx context.Context, sessionID, key string) error {
	return r.client.Del(ctx, r.key(sessionID, key)).Err()
}

// MemoryDeduper is the in-process fallback used when Redis is not configured.
type MemoryDeduper struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryDeduper creates an in-memory deduper whose keys expire after ttl.
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (m *MemoryDeduper) Add(_ context.Context, sessionID, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := sessionID + ":" + key
	if exp, ok := m.seen[k]; ok && now.Before(exp) {
		return false, nil
	}
	m.seen[k] = now.Add(m.ttl)
	if len(m.seen)%256 == 0 {
		for sk, exp := range m.seen {
			if !now.Before(exp) {
				delete(m.seen, sk)
			}
		}
	}
	return true, nil
}

func (m *MemoryDeduper) Remove(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	delete(m.seen, sessionID+":"+key)
	m.mu.Unlock()
	return nil
}
