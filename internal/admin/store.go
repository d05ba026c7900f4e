package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// memoryStore keeps flags for the lifetime of the process.
type memoryStore struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

// NewMemoryStore creates an in-process flag store.
func NewMemoryStore() FlagStore {
	return &memoryStore{flags: make(map[string]struct{})}
}

func (s *memoryStore) Get(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.flags[key]
	return ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = struct{}{}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, key)
	return nil
}

// redisStore keeps flags in Redis so they survive a restart.
type redisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a flag store whose keys are prefixed with namespace.
func NewRedisStore(client *redis.Client, namespace string) FlagStore {
	return &redisStore{client: client, namespace: namespace}
}

// ConnectRedis opens a client for addr and pings it.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *redisStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (s *redisStore) Set(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.key(key), "true", 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
