package storage

import (
	"context"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{devices: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, device, key string) ([]byte, bool, error) {
	if err := validate(device, key); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.devices[device][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(value), true, nil
}

func (m *MemoryStore) Set(_ context.Context, device, key string, value []byte) error {
	if err := validate(device, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.devices[device]
	if !ok {
		values = make(map[string][]byte)
		m.devices[device] = values
	}
	values[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, device, key string) error {
	if err := validate(device, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.devices[device], key)
	if len(m.devices[device]) == 0 {
		delete(m.devices, device)
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, device string) ([]string, error) {
	if err := validate(device); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.devices[device]))
	for key := range m.devices[device] {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
