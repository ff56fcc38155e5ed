// Package redisstore keeps local-storage values in Redis, one string key per item.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
)

// DefaultPrefix namespaces storefront keys.
const DefaultPrefix = "storefront:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	// TTL expires values after the given duration; 0 keeps them forever.
	TTL time.Duration
}

// Store implements storage.Storage on Redis.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.Storage = (*Store)(nil)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return New(client, cfg.Prefix, cfg.TTL), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Client exposes the connection so other per-instance state, such as
// consumed event IDs, can share it.
func (s *Store) Client() *redis.Client {
	return s.client
}
