// Package idempotency guarantees that a decision request is applied at most
// once, independent of how its controls are rendered.
package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims one-shot tokens.
type Store interface {
	// Claim returns true if the caller is the first to claim key.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release gives a claimed key back so it can be claimed again.
	Release(ctx context.Context, key string) error
}

// DecisionKey is the token for one decision request message.
func DecisionKey(guildID, messageID string) string {
	return fmt.Sprintf("decision:%s:%s", guildID, messageID)
}

// RedisStore claims tokens with SETNX, shared by every bot process.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

// MemoryStore claims tokens in process. Only correct with a single bot process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, ok := s.entries[key]; ok && now.Before(expires) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)

	// opportunistic sweep
	for k, expires := range s.entries {
		if !now.Before(expires) {
			delete(s.entries, k)
		}
	}
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
