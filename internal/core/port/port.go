package port

import (
	"context"

	"github.com/niksmo/farmstore/internal/core/domain"
)

// A BasketStore keeps the basket between sessions.
//
// Load never fails: missing or malformed data yields an empty basket.
// Save overwrites the stored basket as a whole.
type BasketStore interface {
	Load(context.Context) domain.Basket
	Save(context.Context, domain.Basket) error
}

// A BasketStoreProvider hands out stores over one backend, one per basket
// key.
type BasketStoreProvider interface {
	BasketStore(key string) BasketStore
}

// A LinkOpener hands a checkout link to the external messaging channel.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// A CheckoutObserver is notified after a basket has been handed off and
// cleared.
type CheckoutObserver interface {
	CheckoutDispatched(context.Context, domain.Receipt) error
}

type CheckoutObserverFunc func(context.Context, domain.Receipt) error

func (f CheckoutObserverFunc) CheckoutDispatched(
	ctx context.Context, r domain.Receipt,
) error {
	return f(ctx, r)
}

type ProductsFetcher interface {
	FetchProducts(context.Context) ([]domain.Product, error)
}

type ProductsAdmin interface {
	Login(ctx context.Context, username, password string) (token string, err error)
	CreateProduct(ctx context.Context, token string, p domain.NewProduct) (domain.Product, error)
	DeleteProduct(ctx context.Context, token, productID string) error
}

type OrderProducer interface {
	ProduceOrder(context.Context, domain.Receipt) error
}

// Inbound ports, driven by the storefront HTTP API.
type (
	BasketEditor interface {
		Basket() domain.Basket
		AddItem(context.Context, domain.Product) domain.Basket
		RemoveItem(ctx context.Context, productID string) domain.Basket
		UpdateQuantity(ctx context.Context, productID string, delta int) domain.Basket
		Clear(context.Context) domain.Basket
	}

	ProductsReader interface {
		Product(id string) (domain.Product, bool)
		TopProducts() []domain.Product
		Query(domain.ProductQuery) []domain.Product
	}

	CatalogEditor interface {
		Login(ctx context.Context, username, password string) (token string, err error)
		CreateProduct(ctx context.Context, token string, p domain.NewProduct) (domain.Product, error)
		DeleteProduct(ctx context.Context, token, productID string) error
	}

	CheckoutDispatcher interface {
		Dispatch(context.Context, domain.CustomerDetails) (domain.Receipt, error)
		Preview(domain.CustomerDetails) string
	}

	// A BasketSession is one customer's basket and its checkout.
	BasketSession interface {
		BasketEditor
		CheckoutDispatcher
	}

	BasketSessions interface {
		Session(ctx context.Context, sessionID string) (BasketSession, error)
	}
)
