package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrMalformedBasket = errors.New("malformed basket")
)

// lineItem is the persisted layout of a [domain.LineItem].
type lineItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        json.Number `json:"price"`
	Unit         string      `json:"unit"`
	Image        string      `json:"image"`
	Category     string      `json:"category"`
	IsTopProduct bool        `json:"isTopProduct"`
	Quantity     int         `json:"quantity"`
}

func encodeBasket(b domain.Basket) ([]byte, error) {
	const op = "encodeBasket"

	vs := make([]lineItem, 0, b.Len())
	for _, li := range b.Items {
		vs = append(vs, toLineItem(li))
	}

	data, err := json.Marshal(vs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// decodeBasket rejects the whole basket when any item does not fit the
// layout.
func decodeBasket(data []byte) (domain.Basket, error) {
	const op = "decodeBasket"

	var vs []lineItem
	if err := json.Unmarshal(data, &vs); err != nil {
		return domain.Basket{}, fmt.Errorf("%s: %w: %w", op, ErrMalformedBasket, err)
	}

	seen := make(map[string]struct{}, len(vs))
	var b domain.Basket
	for i, v := range vs {
		li, err := v.toDomain()
		if err != nil {
			return domain.Basket{}, fmt.Errorf(
				"%s: %w: item %d: %w", op, ErrMalformedBasket, i, err,
			)
		}
		if _, ok := seen[li.ID]; ok {
			return domain.Basket{}, fmt.Errorf(
				"%s: %w: duplicate id %q", op, ErrMalformedBasket, li.ID,
			)
		}
		seen[li.ID] = struct{}{}
		b.Items = append(b.Items, li)
	}
	return b, nil
}

func toLineItem(li domain.LineItem) lineItem {
	return lineItem{
		ID:           li.ID,
		Name:         li.Name,
		Description:  li.Description,
		Price:        json.Number(li.Price.String()),
		Unit:         li.Unit,
		Image:        li.Image,
		Category:     string(li.Category),
		IsTopProduct: li.IsTopProduct,
		Quantity:     li.Quantity,
	}
}

func (v lineItem) toDomain() (domain.LineItem, error) {
	if v.ID == "" {
		return domain.LineItem{}, errors.New("empty id")
	}
	if v.Quantity < 1 {
		return domain.LineItem{}, fmt.Errorf("quantity %d", v.Quantity)
	}

	price, err := decimal.NewFromString(v.Price.String())
	if err != nil {
		return domain.LineItem{}, err
	}
	if price.IsNegative() {
		return domain.LineItem{}, fmt.Errorf("negative price %s", price)
	}

	category, err := domain.ParseCategory(v.Category)
	if err != nil {
		return domain.LineItem{}, err
	}

	return domain.LineItem{
		Product: domain.Product{
			ID:           v.ID,
			Name:         v.Name,
			Description:  v.Description,
			Price:        price,
			Unit:         v.Unit,
			Image:        v.Image,
			Category:     category,
			IsTopProduct: v.IsTopProduct,
		},
		Quantity: v.Quantity,
	}, nil
}
