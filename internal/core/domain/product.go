package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryDairy      Category = "Dairy"
	CategoryGrains     Category = "Grains"
	CategoryOther      Category = "Other"
)

var categories = []Category{
	CategoryVegetables,
	CategoryFruits,
	CategoryDairy,
	CategoryGrains,
	CategoryOther,
}

// Categories returns the closed set of product categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding spaces.
func ParseCategory(s string) (Category, error) {
	const op = "domain.ParseCategory"
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s: %w: %q", op, ErrInvalidCategory, s)
}

type (
	// A Product is a catalog entry. Line items hold copies of it, so changes
	// made to the catalog later never reach an existing basket.
	Product struct {
		ID           string
		Name         string
		Description  string
		Price        decimal.Decimal
		Unit         string
		Image        string
		Category     Category
		IsTopProduct bool
	}

	// A NewProduct carries the admin form fields for product creation.
	NewProduct struct {
		Name         string
		Description  string
		Price        decimal.Decimal
		Unit         string
		Category     Category
		IsTopProduct bool
		Image        string
	}
)

const (
	DefaultProductDescription = "Freshly harvested produce."
	DefaultProductUnit        = "kg"
	DefaultProductImage       = "https://images.unsplash.com/photo-1542838132-92c53300491e?w=400"
)

// WithDefaults fills the optional admin form fields.
func (p NewProduct) WithDefaults() NewProduct {
	if strings.TrimSpace(p.Description) == "" {
		p.Description = DefaultProductDescription
	}
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = DefaultProductUnit
	}
	if p.Category == "" {
		p.Category = CategoryVegetables
	}
	if strings.TrimSpace(p.Image) == "" {
		p.Image = DefaultProductImage
	}
	return p
}
