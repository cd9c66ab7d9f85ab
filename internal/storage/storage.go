// Package storage provides the durable string key-value store that cart
// snapshots are written to.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgredis "github.com/angelmondragon/amglow-storefront/pkg/redis"
)

// Store is a durable string key-value store. Get reports ok=false when the
// key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(sessionID, storageKey string) string
}

// RedisStore scopes every key to one browser session.
type RedisStore struct {
	client    redisKV
	sessionID string
	ttl       time.Duration
}

// NewRedisStore returns a Store whose keys live under the given session. A
// positive ttl is refreshed on every write.
func NewRedisStore(client redisKV, sessionID string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	return &RedisStore{client: client, sessionID: sessionID, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.client.CartKey(s.sessionID, key))
	if err != nil {
		if pkgredis.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.CartKey(s.sessionID, key), value, s.ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
