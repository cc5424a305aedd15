package service

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.BasketEditor = (*Cart)(nil)

// A Cart owns the basket and writes every change through to its store.
//
// Operations never fail. They run one at a time and return the resulting
// basket.
type Cart struct {
	mu     sync.Mutex
	basket domain.Basket
	store  port.BasketStore
}

// NewCart loads the stored basket before returning.
func NewCart(ctx context.Context, store port.BasketStore) *Cart {
	const op = "NewCart"
	b := store.Load(ctx).Clone()
	slog.Debug("basket loaded", "op", op, "nItems", b.Len())
	return &Cart{basket: b, store: store}
}

// AddItem puts one unit of p into the basket. A product already in the
// basket gets its quantity raised and keeps the price it was first added at.
func (c *Cart) AddItem(ctx context.Context, p domain.Product) domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.basket.Clone().Items
	if i := c.basket.Find(p.ID); i >= 0 {
		items[i].Quantity = addQuantity(items[i].Quantity, 1)
	} else {
		items = append(items, domain.LineItem{Product: p, Quantity: 1})
	}
	return c.commit(ctx, "Cart.AddItem", items)
}

// RemoveItem drops the line item whatever its quantity.
func (c *Cart) RemoveItem(ctx context.Context, productID string) domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.basket.Find(productID)
	if i < 0 {
		return c.basket.Clone()
	}

	items := make([]domain.LineItem, 0, c.basket.Len()-1)
	items = append(items, c.basket.Items[:i]...)
	items = append(items, c.basket.Items[i+1:]...)
	return c.commit(ctx, "Cart.RemoveItem", items)
}

// UpdateQuantity shifts the quantity by delta, never below 1.
func (c *Cart) UpdateQuantity(
	ctx context.Context, productID string, delta int,
) domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.basket.Find(productID)
	if i < 0 {
		return c.basket.Clone()
	}

	q := max(1, addQuantity(c.basket.Items[i].Quantity, delta))
	if q == c.basket.Items[i].Quantity {
		return c.basket.Clone()
	}

	items := c.basket.Clone().Items
	items[i].Quantity = q
	return c.commit(ctx, "Cart.UpdateQuantity", items)
}

// Clear empties the basket.
func (c *Cart) Clear(ctx context.Context) domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, "Cart.Clear", nil)
}

// Basket returns a copy of the current basket.
func (c *Cart) Basket() domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.basket.Clone()
}

// Subtotal is recomputed from the line items on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.basket.Subtotal()
}

// ItemCount is the badge count: the sum of quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.basket.ItemCount()
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.basket.IsEmpty()
}

// ClearDispatched takes the dispatched line items out of the basket.
// Items added while the order was being handed off stay, as does any
// quantity above the dispatched one.
func (c *Cart) ClearDispatched(
	ctx context.Context, dispatched domain.Basket,
) domain.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.LineItem, 0, c.basket.Len())
	changed := false
	for _, li := range c.basket.Items {
		i := dispatched.Find(li.ID)
		if i < 0 {
			items = append(items, li)
			continue
		}
		changed = true
		if left := li.Quantity - dispatched.Items[i].Quantity; left > 0 {
			li.Quantity = left
			items = append(items, li)
		}
	}
	if !changed {
		return c.basket.Clone()
	}
	if len(items) == 0 {
		items = nil
	}
	return c.commit(ctx, "Cart.ClearDispatched", items)
}

// commit must be called with c.mu held.
func (c *Cart) commit(
	ctx context.Context, op string, items []domain.LineItem,
) domain.Basket {
	c.basket = domain.Basket{Items: items}
	if err := c.store.Save(ctx, c.basket.Clone()); err != nil {
		slog.Error("failed to persist basket", "op", op, "err", err)
	}
	return c.basket.Clone()
}

func addQuantity(q, delta int) int {
	switch {
	case delta > 0 && q > math.MaxInt-delta:
		return math.MaxInt
	case delta < 0 && q < math.MinInt-delta:
		return math.MinInt
	}
	return q + delta
}
