package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Memory struct {
	mu    sync.Mutex
	items *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{items: gocache.New(time.Hour, 10*time.Minute)}
}

func (m *Memory) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key = keyPrefix + key
	if err := m.items.Add(key, int64(1), window); err == nil {
		return 1, nil
	}
	n, err := m.items.IncrementInt64(key, 1)
	if err != nil {
		// expired between Add and Increment
		m.items.Set(key, int64(1), window)
		return 1, nil
	}
	return n, nil
}

func (m *Memory) SetFlag(_ context.Context, key string, ttl time.Duration) error {
	m.items.Set(keyPrefix+key, true, ttl)
	return nil
}

func (m *Memory) HasFlag(_ context.Context, key string) (bool, error) {
	_, found := m.items.Get(keyPrefix + key)
	return found, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.items.Get(keyPrefix + key)
	if !found {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(keyPrefix+key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.items.Delete(keyPrefix + k)
	}
	return nil
}
