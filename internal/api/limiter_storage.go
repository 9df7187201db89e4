package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const redisStorageTimeout = 2 * time.Second

// redisStorage lets several instances share the HTTP limiter counters.
type redisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiterStorage stores limiter state in redis under prefix.
func NewRedisLimiterStorage(client *redis.Client, prefix string) fiber.Storage {
	return &redisStorage{client: client, prefix: prefix}
}

func (storage *redisStorage) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisStorageTimeout)
	defer cancel()

	value, err := storage.client.Get(ctx, storage.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

func (storage *redisStorage) Set(key string, value []byte, expiration time.Duration) error {
	if key == "" || len(value) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisStorageTimeout)
	defer cancel()
	return storage.client.Set(ctx, storage.prefix+key, value, expiration).Err()
}

func (storage *redisStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisStorageTimeout)
	defer cancel()
	return storage.client.Del(ctx, storage.prefix+key).Err()
}

// Reset removes only keys under the storage prefix.
func (storage *redisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisStorageTimeout)
	defer cancel()

	iterator := storage.client.Scan(ctx, 0, storage.prefix+"*", 100).Iterator()
	for iterator.Next(ctx) {
		if err := storage.client.Del(ctx, iterator.Val()).Err(); err != nil {
			return err
		}
	}
	return iterator.Err()
}

func (storage *redisStorage) Close() error {
	return storage.client.Close()
}
