package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
)

var _ port.BasketStore = (*MemoryStore)(nil)

// A MemoryStore keeps the encoded basket in process memory. It goes through
// the same codec as the durable stores.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return new(MemoryStore)
}

func (s *MemoryStore) Load(ctx context.Context) domain.Basket {
	const op = "MemoryStore.Load"

	s.mu.Lock()
	data := s.data
	s.mu.Unlock()

	if data == nil {
		return domain.Basket{}
	}
	return basketOrEmpty(op, data)
}

func (s *MemoryStore) Save(ctx context.Context, b domain.Basket) error {
	const op = "MemoryStore.Save"

	data, err := encodeBasket(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
