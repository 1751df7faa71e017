// Package dedupe remembers webhook event keys for a bounded window so a
// redelivered event can be recognised and skipped.
package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// keyPrefix namespaces dedupe keys in a shared Redis
const keyPrefix = "pageguard:event:"

// Store records event keys. Seen reports whether key was already recorded
// within ttl, recording it when it was not.
type Store interface {
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// New builds the store selected by configuration. It returns nil when
// deduplication is disabled.
func New(ctx context.Context, cfg config.DedupeSettings) (Store, func() error, error) {
	if !cfg.Enabled {
		return nil, func() error { return nil }, nil
	}

	if cfg.RedisAddr == "" {
		log.Info().Dur("window", cfg.Window).Msg("Webhook dedupe using in-memory store")
		return NewMemoryStore(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.DBHealthCheckTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Info().
		Str("addr", cfg.RedisAddr).
		Dur("window", cfg.Window).
		Msg("Webhook dedupe using Redis store")

	return NewRedisStore(client), client.Close, nil
}

// setNXer is the part of the Redis client the store needs
type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps event keys in Redis with SET NX EX, so several
// instances share one window.
type RedisStore struct {
	client setNXer
}

// NewRedisStore creates a store backed by a Redis client
func NewRedisStore(client setNXer) *RedisStore {
	return &RedisStore{client: client}
}

// Seen implements Store
func (s *RedisStore) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	created, err := s.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

// MemoryStore keeps event keys in process memory
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Seen implements Store
func (s *MemoryStore) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.expires[key]; ok && now.Before(expiry) {
		return true, nil
	}

	s.expires[key] = now.Add(ttl)
	s.sweep(now)
	return false, nil
}

// Len returns the number of remembered keys, expired ones included until the next sweep
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// sweep drops expired keys. Callers must hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	for key, expiry := range s.expires {
		if !now.Before(expiry) {
			delete(s.expires, key)
		}
	}
}
