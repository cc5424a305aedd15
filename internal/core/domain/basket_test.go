package domain_test

import (
	"testing"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, price string, qty int) domain.LineItem {
	return domain.LineItem{
		Product: domain.Product{
			ID:       id,
			Name:     "name-" + id,
			Price:    decimal.RequireFromString(price),
			Category: domain.CategoryOther,
		},
		Quantity: qty,
	}
}

func TestBasket(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var b domain.Basket
		assert.True(t, b.IsEmpty())
		assert.True(t, b.Subtotal().Equal(decimal.Zero))
		assert.Equal(t, 0, b.ItemCount())
		assert.Equal(t, -1, b.Find("a"))
	})

	t.Run("Aggregates", func(t *testing.T) {
		b := domain.Basket{Items: []domain.LineItem{
			item("a", "10.00", 2),
			item("b", "5.50", 3),
		}}
		assert.Equal(t, 2, b.Len())
		assert.Equal(t, 5, b.ItemCount())
		assert.Equal(t, "36.5", b.Subtotal().String())
		assert.Equal(t, 1, b.Find("b"))
	})

	t.Run("CloneIsDetached", func(t *testing.T) {
		b := domain.Basket{Items: []domain.LineItem{item("a", "1", 1)}}
		c := b.Clone()
		c.Items[0].Quantity = 9
		assert.Equal(t, 1, b.Items[0].Quantity)
	})
}

func TestCustomerDetailsValidate(t *testing.T) {
	tests := []struct {
		name    string
		details domain.CustomerDetails
		wantErr []error
	}{
		{"Valid", domain.CustomerDetails{Name: "Ade", Phone: "0800"}, nil},
		{"BlankName", domain.CustomerDetails{Name: "  ", Phone: "0800"},
			[]error{domain.ErrNameRequired}},
		{"NoPhone", domain.CustomerDetails{Name: "Ade"},
			[]error{domain.ErrPhoneRequired}},
		{"Nothing", domain.CustomerDetails{},
			[]error{domain.ErrNameRequired, domain.ErrPhoneRequired}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.details.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := domain.ParseCategory(" fruits ")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryFruits, c)

	_, err = domain.ParseCategory("Meat")
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestNewProductWithDefaults(t *testing.T) {
	p := domain.NewProduct{Name: "Yam"}.WithDefaults()
	assert.Equal(t, domain.DefaultProductDescription, p.Description)
	assert.Equal(t, domain.DefaultProductUnit, p.Unit)
	assert.Equal(t, domain.CategoryVegetables, p.Category)
	assert.Equal(t, domain.DefaultProductImage, p.Image)
}
