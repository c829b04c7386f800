// Package redisstore persists the state as one Redis string key.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/trader-sentinel/internal/logger"
)

// Store keeps the blob under a single key.
type Store struct {
	client *redis.Client
	key    string
	logger logger.LoggerInterface
}

// New creates a Store.
func New(client *redis.Client, key string, log logger.LoggerInterface) *Store {
	return &Store{
		client: client,
		key:    key,
		logger: log,
	}
}

// Ping checks the connection to the Redis server.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load implements app.Persister. A missing key yields nil.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

// Save implements app.Persister.
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.Error(ctx, "failed to save state to redis", "key", s.key, "error", err)
		return err
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
