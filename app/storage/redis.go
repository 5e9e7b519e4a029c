package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per device, keyed "device:<id>".
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func deviceKey(device string) string {
	return "device:" + device
}

func (r *RedisStore) Get(ctx context.Context, device, key string) ([]byte, bool, error) {
	if err := validate(device, key); err != nil {
		return nil, false, err
	}

	value, err := r.client.HGet(ctx, deviceKey(device), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, device, key string, value []byte) error {
	if err := validate(device, key); err != nil {
		return err
	}

	if err := r.client.HSet(ctx, deviceKey(device), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, device, key string) error {
	if err := validate(device, key); err != nil {
		return err
	}

	if err := r.client.HDel(ctx, deviceKey(device), key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Keys(ctx context.Context, device string) ([]string, error) {
	if err := validate(device); err != nil {
		return nil, err
	}

	keys, err := r.client.HKeys(ctx, deviceKey(device)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
