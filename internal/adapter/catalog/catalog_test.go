package catalog_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/niksmo/farmstore/internal/adapter/catalog"
	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{"_id": "65f1", "name": "Yam", "price": 500, "unit": "tuber",
	 "category": "Vegetables", "isTopProduct": true, "image": "yam.jpg"},
	{"id": 7, "name": "Mango", "price": "350.50", "category": "Fruits"},
	{"_id": "65f3", "name": "Honey", "price": 1200, "category": "Sweets",
	 "isTopProduct": "false"},
	{"name": "Ghost", "price": 1, "category": "Other"},
	{"_id": "65f5", "name": "Debt", "price": -1, "category": "Other"},
	{"_id": "65f6", "name": "Free", "price": "n/a", "category": "Other"}
]`

func TestNormalize(t *testing.T) {
	ps, err := catalog.Normalize([]byte(productsJSON), "")
	require.NoError(t, err)
	require.Len(t, ps, 3)

	assert.Equal(t, "65f1", ps[0].ID)
	assert.Equal(t, domain.CategoryVegetables, ps[0].Category)
	assert.True(t, ps[0].IsTopProduct)
	assert.True(t, decimal.NewFromInt(500).Equal(ps[0].Price))

	assert.Equal(t, "7", ps[1].ID, "fallback id, number accepted")
	assert.False(t, ps[1].IsTopProduct)
	assert.Equal(t, "350.5", ps[1].Price.String())

	assert.Equal(t, domain.CategoryOther, ps[2].Category, "unknown category")
	assert.False(t, ps[2].IsTopProduct)

	t.Run("CustomIDField", func(t *testing.T) {
		ps, err := catalog.Normalize(
			[]byte(`[{"sku": "A-1", "_id": "x", "price": 1, "category": "Dairy"}]`),
			"sku",
		)
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, "A-1", ps[0].ID)
	})

	t.Run("NotAnArray", func(t *testing.T) {
		_, err := catalog.Normalize([]byte(`{"products": []}`), "")
		assert.Error(t, err)
	})
}

func newClient(t *testing.T, h http.Handler) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := catalog.NewClient(srv.URL+"/api/",
		catalog.RetryOpt(3, func(int) time.Duration { return 0 }),
	)
	require.NoError(t, err)
	return c
}

func TestClientFetchProducts(t *testing.T) {
	t.Run("Ok", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/products", r.URL.Path)
			_, _ = io.WriteString(w, productsJSON)
		}))

		ps, err := c.FetchProducts(t.Context())
		require.NoError(t, err)
		assert.Len(t, ps, 3)
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = io.WriteString(w, `[]`)
		}))

		ps, err := c.FetchProducts(t.Context())
		require.NoError(t, err)
		assert.Empty(t, ps)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("AttemptsSpent", func(t *testing.T) {
		var calls atomic.Int32
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := c.FetchProducts(t.Context())
		assert.ErrorIs(t, err, catalog.ErrUnexpectedStatus)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		var calls atomic.Int32
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.FetchProducts(t.Context())
		assert.ErrorIs(t, err, catalog.ErrUnexpectedStatus)
		assert.EqualValues(t, 1, calls.Load())
	})
}

func TestNewClient(t *testing.T) {
	_, err := catalog.NewClient("not a url")
	assert.ErrorIs(t, err, catalog.ErrInvalidAPIURL)

	_, err = catalog.NewClient("http://api", catalog.IDFieldOpt(" "))
	assert.Error(t, err)

	_, err = catalog.NewClient("http://api", catalog.RetryOpt(0, nil))
	assert.Error(t, err)
}

func TestClientAdmin(t *testing.T) {
	const token = "s3cret"

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != "admin" || req.Password != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"_id":          "new-1",
			"name":         r.FormValue("name"),
			"description":  r.FormValue("description"),
			"price":        r.FormValue("price"),
			"unit":         r.FormValue("unit"),
			"category":     r.FormValue("category"),
			"isTopProduct": r.FormValue("isTopProduct"),
			"image":        r.FormValue("image"),
		})
	})
	mux.HandleFunc("DELETE /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("id") != "new-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, mux)

	t.Run("Login", func(t *testing.T) {
		got, err := c.Login(t.Context(), "admin", "pass")
		require.NoError(t, err)
		assert.Equal(t, token, got)

		_, err = c.Login(t.Context(), "admin", "wrong")
		assert.ErrorIs(t, err, catalog.ErrUnauthorized)
	})

	t.Run("CreateProduct", func(t *testing.T) {
		np := domain.NewProduct{
			Name:         "Plantain",
			Price:        decimal.RequireFromString("800"),
			Category:     domain.CategoryFruits,
			IsTopProduct: true,
		}.WithDefaults()

		p, err := c.CreateProduct(t.Context(), token, np)
		require.NoError(t, err)
		assert.Equal(t, "new-1", p.ID)
		assert.Equal(t, "Plantain", p.Name)
		assert.Equal(t, domain.DefaultProductDescription, p.Description)
		assert.Equal(t, domain.DefaultProductUnit, p.Unit)
		assert.Equal(t, domain.DefaultProductImage, p.Image)
		assert.Equal(t, domain.CategoryFruits, p.Category)
		assert.True(t, p.IsTopProduct)
		assert.Equal(t, "800", p.Price.String())

		_, err = c.CreateProduct(t.Context(), "bad", np)
		assert.ErrorIs(t, err, catalog.ErrUnauthorized)
	})

	t.Run("DeleteProduct", func(t *testing.T) {
		require.NoError(t, c.DeleteProduct(t.Context(), token, "new-1"))
		assert.ErrorIs(t,
			c.DeleteProduct(t.Context(), token, "missing"),
			catalog.ErrUnexpectedStatus,
		)
		assert.ErrorIs(t,
			c.DeleteProduct(t.Context(), "", "new-1"),
			catalog.ErrUnauthorized,
		)
	})
}
