package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process Cache. Values are stored JSON-encoded so callers
// see the same copy semantics as with Redis.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string, dest interface{}) bool {
	if ctx.Err() != nil {
		return false
	}
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}
