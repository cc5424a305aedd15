package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// A LineItem is a product snapshot and its quantity. Quantity is at least 1.
type LineItem struct {
	Product
	Quantity int
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// A Basket is an ordered list of line items keyed by product id.
//
// Items keep the order in which their products were first added.
type Basket struct {
	Items []LineItem
}

func (b Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// Len returns the number of distinct line items.
func (b Basket) Len() int {
	return len(b.Items)
}

// Subtotal is recomputed from the items on every call.
func (b Basket) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range b.Items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// ItemCount is the sum of quantities, not the number of line items.
func (b Basket) ItemCount() int {
	var n int
	for _, li := range b.Items {
		n += li.Quantity
	}
	return n
}

// Find returns the index of the line item for productID or -1.
func (b Basket) Find(productID string) int {
	for i, li := range b.Items {
		if li.ID == productID {
			return i
		}
	}
	return -1
}

func (b Basket) Clone() Basket {
	if b.Items == nil {
		return Basket{}
	}
	return Basket{Items: append([]LineItem(nil), b.Items...)}
}

type CustomerDetails struct {
	Name  string
	Phone string
	Notes string
}

// Normalize trims surrounding whitespace from every field.
func (d CustomerDetails) Normalize() CustomerDetails {
	return CustomerDetails{
		Name:  strings.TrimSpace(d.Name),
		Phone: strings.TrimSpace(d.Phone),
		Notes: strings.TrimSpace(d.Notes),
	}
}

// HasNotes reports whether the notes contain anything but whitespace.
func (d CustomerDetails) HasNotes() bool {
	return strings.TrimSpace(d.Notes) != ""
}

// Validate returns every missing required field joined into one error.
func (d CustomerDetails) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if strings.TrimSpace(d.Phone) == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	return errors.Join(errs...)
}

// A Receipt describes a basket that was handed off for fulfilment.
type Receipt struct {
	OrderID      string
	Link         string
	Basket       Basket
	Subtotal     decimal.Decimal
	Customer     CustomerDetails
	DispatchedAt time.Time
}
