package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
)

// GET v1/products?category=&search=&sort= (200 OK)
// GET v1/products/top (200 OK)

type ProductsHandler struct {
	products port.ProductsReader
}

func RegisterProducts(mux *http.ServeMux, products port.ProductsReader) {
	h := ProductsHandler{products}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/top", h.GetTopProducts)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	q := r.URL.Query()
	ps := h.products.Query(domain.ProductQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     domain.ParseSortOrder(q.Get("sort")),
	})
	writeJSON(w, http.StatusOK, fromProducts(ps), log)
}

func (h ProductsHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetTopProducts"
	log := slog.With("op", op)

	writeJSON(w, http.StatusOK, fromProducts(h.products.TopProducts()), log)
}

// Basket routes are scoped to the session in the X-Basket-Session header
// or the farm_session cookie. A new session is issued when neither is set.
//
// GET v1/basket (200 OK)
// POST v1/basket/items JSON {"product_id"} (200 OK, 400 Bad request, 404 Not found)
// PATCH v1/basket/items/{id} JSON {"delta"} (200 OK, 400 Bad request)
// DELETE v1/basket/items/{id} (200 OK)
// DELETE v1/basket (200 OK)

type BasketHandler struct {
	sessions port.BasketSessions
	products port.ProductsReader
}

func RegisterBasket(
	mux *http.ServeMux, sessions port.BasketSessions, products port.ProductsReader,
) {
	h := BasketHandler{sessions, products}
	mux.HandleFunc("GET /v1/basket", h.GetBasket)
	mux.HandleFunc("POST /v1/basket/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/basket/items/{id}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/basket/items/{id}", h.DeleteItem)
	mux.HandleFunc("DELETE /v1/basket", h.DeleteBasket)
}

func (h BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.GetBasket"
	log := slog.With("op", op)

	basket, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fromBasket(basket.Basket()), log)
}

func (h BasketHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.PostItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}

	basket, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	p, ok := h.products.Product(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found", log)
		return
	}

	b := basket.AddItem(r.Context(), p)
	writeJSON(w, http.StatusOK, fromBasket(b), log)
}

func (h BasketHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.PatchItem"
	log := slog.With("op", op)

	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}

	basket, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	b := basket.UpdateQuantity(r.Context(), r.PathValue("id"), req.Delta)
	writeJSON(w, http.StatusOK, fromBasket(b), log)
}

func (h BasketHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.DeleteItem"
	log := slog.With("op", op)

	basket, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	b := basket.RemoveItem(r.Context(), r.PathValue("id"))
	writeJSON(w, http.StatusOK, fromBasket(b), log)
}

func (h BasketHandler) DeleteBasket(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.DeleteBasket"
	log := slog.With("op", op)

	basket, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	b := basket.Clear(r.Context())
	writeJSON(w, http.StatusOK, fromBasket(b), log)
}
