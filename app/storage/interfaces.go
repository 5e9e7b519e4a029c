package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned for an empty device id or key.
var ErrInvalidKey = errors.New("device and key must not be empty")

// Store is a per-device key-value store. Values are opaque bytes; callers
// that need typed documents go through GetJSON and SetJSON.
type Store interface {
	Get(ctx context.Context, device, key string) ([]byte, bool, error)
	Set(ctx context.Context, device, key string, value []byte) error
	Delete(ctx context.Context, device, key string) error
	Keys(ctx context.Context, device string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

func validate(device string, keys ...string) error {
	if strings.TrimSpace(device) == "" {
		return ErrInvalidKey
	}
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
