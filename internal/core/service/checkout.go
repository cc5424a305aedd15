package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
)

var _ port.CheckoutDispatcher = (*Checkout)(nil)

const DefaultMessagingBaseURL = "https://wa.me"

var ErrHandoff = errors.New("failed to hand off checkout link")

type CheckoutConfig struct {
	// MessagingBaseURL is the deep link host, e.g. "https://wa.me".
	MessagingBaseURL string

	// DestinationID identifies the vendor on the messaging service.
	DestinationID string

	Formatter ordermsg.Formatter
	Opener    port.LinkOpener
	Observers []port.CheckoutObserver
}

// A Checkout turns the cart into a deep link, hands it off and clears the
// dispatched items once the hand-off succeeded.
type Checkout struct {
	mu        sync.Mutex
	cart      *Cart
	baseURL   string
	destID    string
	formatter ordermsg.Formatter
	opener    port.LinkOpener
	observers []port.CheckoutObserver
	now       func() time.Time
}

func NewCheckout(cart *Cart, cfg CheckoutConfig) *Checkout {
	baseURL := strings.TrimRight(cfg.MessagingBaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultMessagingBaseURL
	}
	return &Checkout{
		cart:      cart,
		baseURL:   baseURL,
		destID:    strings.Trim(cfg.DestinationID, "/"),
		formatter: cfg.Formatter,
		opener:    cfg.Opener,
		observers: cfg.Observers,
		now:       time.Now,
	}
}

// Dispatch validates the basket and details, opens the checkout link and
// takes the dispatched items out of the cart.
//
// On a validation or hand-off error the cart is left as it was. Items added
// while the link is being opened are not part of the order and stay.
func (c *Checkout) Dispatch(
	ctx context.Context, details domain.CustomerDetails,
) (domain.Receipt, error) {
	const op = "Checkout.Dispatch"
	log := slog.With("op", op)

	c.mu.Lock()
	defer c.mu.Unlock()

	basket := c.cart.Basket()
	if err := validate(basket, details); err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	details = details.Normalize()
	link := c.link(basket, details)

	if err := c.opener.Open(ctx, link); err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w: %w", op, ErrHandoff, err)
	}

	c.cart.ClearDispatched(ctx, basket)

	receipt := domain.Receipt{
		OrderID:      uuid.NewString(),
		Link:         link,
		Basket:       basket,
		Subtotal:     basket.Subtotal(),
		Customer:     details,
		DispatchedAt: c.now().UTC(),
	}
	log.Info("checkout dispatched",
		"orderID", receipt.OrderID,
		"nItems", basket.ItemCount(),
		"subtotal", receipt.Subtotal.StringFixed(2),
	)

	for _, o := range c.observers {
		if err := o.CheckoutDispatched(ctx, receipt); err != nil {
			log.Error("checkout observer failed", "err", err)
		}
	}
	return receipt, nil
}

// Preview returns the link Dispatch would open, without side effects.
func (c *Checkout) Preview(details domain.CustomerDetails) string {
	return c.link(c.cart.Basket(), details.Normalize())
}

func (c *Checkout) link(b domain.Basket, d domain.CustomerDetails) string {
	return c.baseURL + "/" + c.destID + "?text=" + c.formatter.Format(b, d)
}

func validate(b domain.Basket, d domain.CustomerDetails) error {
	var errs []error
	if b.IsEmpty() {
		errs = append(errs, domain.ErrEmptyBasket)
	}
	if err := d.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
