package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "news.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		redisStore, err := NewRedisStore(context.Background(), addr)
		if err != nil {
			t.Fatalf("Failed to connect to redis: %v", err)
		}
		t.Cleanup(func() { redisStore.Close() })
		stores["redis"] = redisStore
	}

	return stores
}

func TestStoreOperations(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			device := "device-" + name + "-" + t.Name()

			_, ok, err := store.Get(ctx, device, "missing")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok {
				t.Error("Expected missing key to be absent")
			}

			if err := store.Set(ctx, device, "b", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := store.Set(ctx, device, "a", []byte(`[]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := store.Set(ctx, device, "b", []byte(`{"v":2}`)); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}

			value, ok, err := store.Get(ctx, device, "b")
			if err != nil || !ok {
				t.Fatalf("Expected key b, got ok=%v err=%v", ok, err)
			}
			if string(value) != `{"v":2}` {
				t.Errorf("Expected overwritten value, got %s", value)
			}

			keys, err := store.Keys(ctx, device)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
				t.Errorf("Expected sorted keys [a b], got %v", keys)
			}

			other, err := store.Keys(ctx, device+"-other")
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(other) != 0 {
				t.Errorf("Expected devices to be isolated, got %v", other)
			}

			if err := store.Delete(ctx, device, "b"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := store.Delete(ctx, device, "b"); err != nil {
				t.Errorf("Expected deleting a missing key to succeed, got %v", err)
			}
			if _, ok, _ := store.Get(ctx, device, "b"); ok {
				t.Error("Expected key b to be deleted")
			}

			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
		})
	}
}

func TestStoreRejectsEmptyKeys(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "device", "", []byte("1")); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Expected ErrInvalidKey for empty key, got %v", err)
			}
			if _, _, err := store.Get(ctx, " ", "key"); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Expected ErrInvalidKey for blank device, got %v", err)
			}
			if _, err := store.Keys(ctx, ""); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Expected ErrInvalidKey for empty device, got %v", err)
			}
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Set(ctx, "device", "userProfile", []byte(`{"name":"Asha"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "device", "userProfile")
	if err != nil || !ok {
		t.Fatalf("Expected persisted value, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"name":"Asha"}` {
		t.Errorf("Unexpected value %s", value)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	store.Set(ctx, "device", "key", value)
	value[0] = 'x'

	got, _, _ := store.Get(ctx, "device", "key")
	if string(got) != "abc" {
		t.Errorf("Expected stored value to be isolated from caller, got %s", got)
	}
}
