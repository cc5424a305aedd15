package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
)

var (
	_ port.ProductsReader = (*Catalog)(nil)
	_ port.CatalogEditor  = (*Catalog)(nil)
)

// A Catalog caches the product list. A failed refresh keeps the previous
// list.
type Catalog struct {
	fetcher port.ProductsFetcher
	admin   port.ProductsAdmin

	mu       sync.RWMutex
	products []domain.Product
}

func NewCatalog(fetcher port.ProductsFetcher, admin port.ProductsAdmin) *Catalog {
	return &Catalog{fetcher: fetcher, admin: admin}
}

func (c *Catalog) Refresh(ctx context.Context) error {
	const op = "Catalog.Refresh"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ps, err := c.fetcher.FetchProducts(ctx)
	if err != nil {
		slog.Warn("catalog left stale", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.products = ps
	c.mu.Unlock()

	slog.Info("catalog refreshed", "op", op, "nProducts", len(ps))
	return nil
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

func (c *Catalog) Product(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.products, func(p domain.Product) bool {
		return p.ID == id
	})
	if i < 0 {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) TopProducts() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var top []domain.Product
	for _, p := range c.products {
		if p.IsTopProduct {
			top = append(top, p)
		}
	}
	return top
}

// Query filters by category and case-insensitive name search, then sorts.
// An empty sort order keeps catalog order.
func (c *Catalog) Query(q domain.ProductQuery) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	var out []domain.Product
	for _, p := range c.Products() {
		if category != "" && category != domain.CategoryAll &&
			!strings.EqualFold(string(p.Category), category) {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case domain.SortByName:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case domain.SortByPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case domain.SortByPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	}
	return out
}

// Login exchanges admin credentials for a bearer token.
func (c *Catalog) Login(ctx context.Context, username, password string) (string, error) {
	const op = "Catalog.Login"

	token, err := c.admin.Login(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// CreateProduct creates the product remotely and puts it first in the
// cached list.
func (c *Catalog) CreateProduct(
	ctx context.Context, token string, np domain.NewProduct,
) (domain.Product, error) {
	const op = "Catalog.CreateProduct"

	p, err := c.admin.CreateProduct(ctx, token, np.WithDefaults())
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.products = append([]domain.Product{p}, c.products...)
	c.mu.Unlock()
	return p, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, token, id string) error {
	const op = "Catalog.DeleteProduct"

	if err := c.admin.DeleteProduct(ctx, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.products = slices.DeleteFunc(c.products, func(p domain.Product) bool {
		return p.ID == id
	})
	c.mu.Unlock()
	return nil
}
