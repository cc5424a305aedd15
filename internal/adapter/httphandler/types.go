package httphandler

import (
	"fmt"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/shopspring/decimal"
)

// Handlers are the core services behind the storefront API.
type Handlers struct {
	Products port.ProductsReader
	Sessions port.BasketSessions
	Admin    port.CatalogEditor
}

type (
	Product struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Price        string `json:"price"`
		Unit         string `json:"unit"`
		Image        string `json:"image"`
		Category     string `json:"category"`
		IsTopProduct bool   `json:"is_top_product"`
	}

	LineItem struct {
		Product
		Quantity  int    `json:"quantity"`
		LineTotal string `json:"line_total"`
	}

	Basket struct {
		Items     []LineItem `json:"items"`
		Subtotal  string     `json:"subtotal"`
		ItemCount int        `json:"item_count"`
	}

	ErrorResponse struct {
		Error   string   `json:"error"`
		Details []string `json:"details,omitempty"`
	}
)

type (
	AddItemRequest struct {
		ProductID string `json:"product_id" validate:"required"`
	}

	UpdateQuantityRequest struct {
		Delta int `json:"delta" validate:"required"`
	}

	// CheckoutRequest is validated by the checkout itself so that an empty
	// basket and missing details are reported together.
	CheckoutRequest struct {
		Name  string `json:"name" validate:"max=200"`
		Phone string `json:"phone" validate:"max=50"`
		Notes string `json:"notes" validate:"max=2000"`
	}

	CheckoutResponse struct {
		OrderID string `json:"order_id"`
		Link    string `json:"link"`
		Total   string `json:"total"`
	}

	PreviewResponse struct {
		Link string `json:"link"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	CreateProductRequest struct {
		Name         string `json:"name" validate:"required,max=200"`
		Description  string `json:"description" validate:"max=2000"`
		Price        string `json:"price" validate:"required,numeric"`
		Unit         string `json:"unit" validate:"max=50"`
		Category     string `json:"category" validate:"omitempty,oneof=Vegetables Fruits Dairy Grains Other"`
		IsTopProduct bool   `json:"is_top_product"`
		Image        string `json:"image" validate:"omitempty,url"`
	}
)

func fromProduct(p domain.Product) Product {
	return Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        ordermsg.Amount(p.Price),
		Unit:         p.Unit,
		Image:        p.Image,
		Category:     string(p.Category),
		IsTopProduct: p.IsTopProduct,
	}
}

func fromProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = fromProduct(p)
	}
	return out
}

func fromBasket(b domain.Basket) Basket {
	items := make([]LineItem, len(b.Items))
	for i, li := range b.Items {
		items[i] = LineItem{
			Product:   fromProduct(li.Product),
			Quantity:  li.Quantity,
			LineTotal: ordermsg.Amount(li.LineTotal()),
		}
	}
	return Basket{
		Items:     items,
		Subtotal:  ordermsg.Amount(b.Subtotal()),
		ItemCount: b.ItemCount(),
	}
}

func (r CheckoutRequest) toDomain() domain.CustomerDetails {
	return domain.CustomerDetails{Name: r.Name, Phone: r.Phone, Notes: r.Notes}
}

// toDomain expects a validated request.
func (r CreateProductRequest) toDomain() (domain.NewProduct, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.NewProduct{}, err
	}
	if price.IsNegative() {
		return domain.NewProduct{}, fmt.Errorf("negative price %s", price)
	}

	var category domain.Category
	if r.Category != "" {
		if category, err = domain.ParseCategory(r.Category); err != nil {
			return domain.NewProduct{}, err
		}
	}

	return domain.NewProduct{
		Name:         r.Name,
		Description:  r.Description,
		Price:        price,
		Unit:         r.Unit,
		Category:     category,
		IsTopProduct: r.IsTopProduct,
		Image:        r.Image,
	}.WithDefaults(), nil
}
