package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by GetJSON when a stored value is not valid for dst.
var ErrMalformed = errors.New("malformed document")

// GetJSON decodes the stored value into dst. It reports false, leaving dst
// untouched, when the key is absent.
func GetJSON(ctx context.Context, s Store, device, key string, dst any) (bool, error) {
	data, ok, err := s.Get(ctx, device, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, device, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, device, key, data)
}
