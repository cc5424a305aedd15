package service_test

import (
	"context"
	"sync"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBasketStore struct {
	mock.Mock
}

func (s *MockBasketStore) Load(ctx context.Context) domain.Basket {
	args := s.Called(ctx)
	return args.Get(0).(domain.Basket)
}

func (s *MockBasketStore) Save(ctx context.Context, b domain.Basket) error {
	args := s.Called(ctx, b)
	return args.Error(0)
}

// fakeStore keeps the last saved basket and counts writes.
type fakeStore struct {
	mu     sync.Mutex
	basket domain.Basket
	saves  int
}

func (s *fakeStore) Load(context.Context) domain.Basket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basket.Clone()
}

func (s *fakeStore) Save(_ context.Context, b domain.Basket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.basket = b.Clone()
	s.saves++
	return nil
}

func (s *fakeStore) nSaves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type MockLinkOpener struct {
	mock.Mock
}

func (o *MockLinkOpener) Open(ctx context.Context, link string) error {
	args := o.Called(ctx, link)
	return args.Error(0)
}

type MockProductsFetcher struct {
	mock.Mock
}

func (f *MockProductsFetcher) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := f.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockProductsAdmin struct {
	mock.Mock
}

func (a *MockProductsAdmin) Login(
	ctx context.Context, username, password string,
) (string, error) {
	args := a.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (a *MockProductsAdmin) CreateProduct(
	ctx context.Context, token string, p domain.NewProduct,
) (domain.Product, error) {
	args := a.Called(ctx, token, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (a *MockProductsAdmin) DeleteProduct(
	ctx context.Context, token, productID string,
) error {
	args := a.Called(ctx, token, productID)
	return args.Error(0)
}

func product(id, name, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Unit:     "kg",
		Category: domain.CategoryVegetables,
	}
}

// fakeStores hands out one fakeStore per key.
type fakeStores struct {
	mu     sync.Mutex
	stores map[string]*fakeStore
}

func (p *fakeStores) BasketStore(key string) port.BasketStore {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stores == nil {
		p.stores = make(map[string]*fakeStore)
	}
	s, ok := p.stores[key]
	if !ok {
		s = new(fakeStore)
		p.stores[key] = s
	}
	return s
}

func (p *fakeStores) keys() (out []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.stores {
		out = append(out, k)
	}
	return out
}
