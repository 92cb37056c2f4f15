package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Client defines the interface for cache operations.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisClient is a wrapper around the Redis client.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Get retrieves a value from cache.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set stores a value in cache with expiration.
func (r *RedisClient) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys from cache.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Ping checks the connection.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// MemoryCache is an in-process Client used when redis is not configured.
type MemoryCache struct {
	mu    sync.Mutex
	store map[string]cacheItem
	now   func() time.Time
}

type cacheItem struct {
	value      string
	expiration time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[string]cacheItem),
		now:   time.Now,
	}
}

// Get retrieves a value from memory cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.store[key]
	if !ok {
		return "", ErrMiss
	}
	if !item.expiration.IsZero() && m.now().After(item.expiration) {
		delete(m.store, key)
		return "", ErrMiss
	}
	return item.value, nil
}

// Set stores a value. A zero expiration keeps it until deleted.
func (m *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exp time.Time
	if expiration > 0 {
		exp = m.now().Add(expiration)
	}
	m.store[key] = cacheItem{value: value, expiration: exp}
	return nil
}

// Delete removes keys from memory cache.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

// Ping always succeeds.
func (m *MemoryCache) Ping(context.Context) error {
	return nil
}

// Close drops every entry.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]cacheItem)
	return nil
}

// SetJSON stores a JSON-serialized value in cache.
func SetJSON(ctx context.Context, c Client, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), expiration)
}

// GetJSON retrieves and deserializes a JSON value from cache.
func GetJSON(ctx context.Context, c Client, key string, dest interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}
