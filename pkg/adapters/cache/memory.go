package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

// Memory is a per-process cache used when no Redis URL is configured.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a cache whose entries live for ttl (zero: until restart).
func NewMemory(ttl time.Duration) *Memory {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &Memory{store: gocache.New(expiration, cleanup)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.store.SetDefault(key, value)
	return nil
}

func (m *Memory) Close() error {
	m.store.Flush()
	return nil
}

var _ ports.Cache = (*Memory)(nil)
