// ABOUTME: Redis-backed session slot for shared or kiosk hosts
// ABOUTME: Keeps the serialized session under a single prefixed key

package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores the session in Redis
type RedisSlot struct {
	client *redis.Client
	key    string
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a go-redis client from options
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedisSlot creates a slot under storefront:user-storage
func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{client: client, key: "storefront:" + StorageKey}
}

// Load reads the slot contents
func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the slot contents. No expiry: the server decides when a
// token is no longer valid.
func (s *RedisSlot) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Clear deletes the key
func (s *RedisSlot) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close releases the underlying connection pool
func (s *RedisSlot) Close() error {
	return s.client.Close()
}
