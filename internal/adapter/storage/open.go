package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/spf13/afero"
)

var _ port.BasketStoreProvider = (*Backend)(nil)

type Options struct {
	Driver    string
	FileDir   string
	RedisAddr string
	SQLDB     string

	// Fs backs the file driver. The OS filesystem is used when nil.
	Fs afero.Fs
}

// A Backend hands out basket stores that share one connection, one store
// per basket key.
type Backend struct {
	store func(key string) port.BasketStore
	close func()
}

// BasketStore returns the store for key, or for [DefaultKey] when key is
// empty.
func (b *Backend) BasketStore(key string) port.BasketStore {
	return b.store(keyOrDefault(key))
}

// Close releases the backend connections.
func (b *Backend) Close() {
	b.close()
}

// Open builds the backend for o.Driver.
func Open(ctx context.Context, o Options) (*Backend, error) {
	const op = "storage.Open"
	noop := func() {}

	switch o.Driver {
	case DriverMemory:
		return &Backend{store: memoryStores(), close: noop}, nil
	case DriverFile:
		fsys := o.Fs
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		store := func(key string) port.BasketStore {
			return NewFileStore(fsys, o.FileDir, key)
		}
		return &Backend{store: store, close: noop}, nil
	case DriverRedis:
		s, err := NewRedisStore(ctx, o.RedisAddr, DefaultKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store := func(key string) port.BasketStore { return s.WithKey(key) }
		return &Backend{store: store, close: s.Close}, nil
	case DriverPostgres:
		s, err := NewSQLStore(ctx, o.SQLDB, DefaultKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store := func(key string) port.BasketStore { return s.WithKey(key) }
		return &Backend{store: store, close: s.Close}, nil
	}
	return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDriver, o.Driver)
}

// memoryStores keeps one MemoryStore per key for the process lifetime.
func memoryStores() func(key string) port.BasketStore {
	var (
		mu     sync.Mutex
		stores = make(map[string]*MemoryStore)
	)
	return func(key string) port.BasketStore {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[key]
		if !ok {
			s = NewMemoryStore()
			stores[key] = s
		}
		return s
	}
}
