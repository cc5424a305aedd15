package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBasket() domain.Basket {
	return domain.Basket{Items: []domain.LineItem{
		{
			Product: domain.Product{
				ID:           "65f1c0a7",
				Name:         "Yam",
				Description:  "Puna yam",
				Price:        decimal.RequireFromString("500.25"),
				Unit:         "tuber",
				Image:        "https://img/yam.jpg",
				Category:     domain.CategoryVegetables,
				IsTopProduct: true,
			},
			Quantity: 3,
		},
		{
			Product: domain.Product{
				ID:       "65f1c0a8",
				Name:     "Milk",
				Price:    decimal.RequireFromString("0"),
				Unit:     "l",
				Category: domain.CategoryDairy,
			},
			Quantity: 1,
		},
	}}
}

// assertSameBasket compares by id, quantity and price, in order.
func assertSameBasket(t *testing.T, want, got domain.Basket) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.True(t, w.Price.Equal(g.Price), "price %s != %s", w.Price, g.Price)
		assert.Equal(t, w.Name, g.Name)
		assert.Equal(t, w.Category, g.Category)
		assert.Equal(t, w.IsTopProduct, g.IsTopProduct)
	}
}

func TestCodec(t *testing.T) {
	t.Run("Layout", func(t *testing.T) {
		b := domain.Basket{Items: testBasket().Items[:1]}
		data, err := encodeBasket(b)
		require.NoError(t, err)
		assert.JSONEq(t, `[{
			"id": "65f1c0a7",
			"name": "Yam",
			"description": "Puna yam",
			"price": 500.25,
			"unit": "tuber",
			"image": "https://img/yam.jpg",
			"category": "Vegetables",
			"isTopProduct": true,
			"quantity": 3
		}]`, string(data))
	})

	t.Run("Malformed", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{"NotJSON", `{{{`},
			{"Object", `{"id":"a"}`},
			{"NoID", `[{"price":1,"category":"Other","quantity":1}]`},
			{"ZeroQuantity", `[{"id":"a","price":1,"category":"Other","quantity":0}]`},
			{"NoPrice", `[{"id":"a","category":"Other","quantity":1}]`},
			{"NegativePrice", `[{"id":"a","price":-1,"category":"Other","quantity":1}]`},
			{"BadCategory", `[{"id":"a","price":1,"category":"Meat","quantity":1}]`},
			{"Duplicate", `[{"id":"a","price":1,"category":"Other","quantity":1},
				{"id":"a","price":1,"category":"Other","quantity":2}]`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := decodeBasket([]byte(tt.data))
				assert.ErrorIs(t, err, ErrMalformedBasket)
				assert.True(t, basketOrEmpty("test", []byte(tt.data)).IsEmpty())
			})
		}
	})

	t.Run("LegacyStringPrice", func(t *testing.T) {
		b, err := decodeBasket([]byte(
			`[{"id":"a","price":"12.5","category":"Fruits","quantity":2}]`,
		))
		require.NoError(t, err)
		assert.Equal(t, "25", b.Subtotal().String())
	})
}

func TestStoresRoundTrip(t *testing.T) {
	stores := map[string]func(t *testing.T) port.BasketStore{
		"Memory": func(*testing.T) port.BasketStore {
			return NewMemoryStore()
		},
		"File": func(*testing.T) port.BasketStore {
			return NewFileStore(afero.NewMemMapFs(), "/var/farmstore", "")
		},
		"Redis": func(t *testing.T) port.BasketStore {
			mr := miniredis.RunT(t)
			s, err := NewRedisStore(t.Context(), mr.Addr(), "")
			require.NoError(t, err)
			t.Cleanup(s.Close)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			assert.True(t, s.Load(t.Context()).IsEmpty())

			require.NoError(t, s.Save(t.Context(), testBasket()))
			assertSameBasket(t, testBasket(), s.Load(t.Context()))

			one := domain.Basket{Items: testBasket().Items[1:]}
			require.NoError(t, s.Save(t.Context(), one))
			assertSameBasket(t, one, s.Load(t.Context()))

			require.NoError(t, s.Save(t.Context(), domain.Basket{}))
			assert.True(t, s.Load(t.Context()).IsEmpty())
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Run("CorruptFile", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		s := NewFileStore(fsys, "/data", "basket")
		require.NoError(t, afero.WriteFile(fsys, "/data/basket.json", []byte("oops"), 0o644))
		assert.True(t, s.Load(t.Context()).IsEmpty())
	})

	t.Run("NoTempFilesLeft", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		s := NewFileStore(fsys, "/data", "")
		require.NoError(t, s.Save(t.Context(), testBasket()))

		entries, err := afero.ReadDir(fsys, "/data")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, DefaultKey+".json", entries[0].Name())
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		s := NewFileStore(afero.NewMemMapFs(), "/data", "")
		assert.ErrorIs(t, s.Save(ctx, testBasket()), context.Canceled)
	})
}

func TestRedisStore(t *testing.T) {
	t.Run("KeyLayout", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := NewRedisStore(t.Context(), mr.Addr(), "")
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Save(t.Context(), testBasket()))
		raw, err := mr.Get(DefaultKey)
		require.NoError(t, err)
		assert.Contains(t, raw, `"id":"65f1c0a7"`)
	})

	t.Run("CorruptValue", func(t *testing.T) {
		mr := miniredis.RunT(t)
		require.NoError(t, mr.Set("cart", `[{"id":""}]`))
		s, err := NewRedisStore(t.Context(), mr.Addr(), "cart")
		require.NoError(t, err)
		defer s.Close()

		assert.True(t, s.Load(t.Context()).IsEmpty())
	})

	t.Run("Unavailable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := NewRedisStore(t.Context(), mr.Addr(), "")
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Save(t.Context(), testBasket()))

		mr.Close()
		assert.True(t, s.Load(t.Context()).IsEmpty())
	})
}

type fakeSQLDB struct {
	query string
	args  []any
	err   error
}

func (db *fakeSQLDB) ExecContext(
	_ context.Context, query string, args ...any,
) (sql.Result, error) {
	db.query, db.args = query, args
	return nil, db.err
}

func (db *fakeSQLDB) QueryRowContext(context.Context, string, ...any) *sql.Row {
	panic("not used")
}

func (db *fakeSQLDB) PingContext(context.Context) error { return nil }

func (db *fakeSQLDB) Close() error { return nil }

func TestSQLStoreSave(t *testing.T) {
	t.Run("Upsert", func(t *testing.T) {
		db := new(fakeSQLDB)
		s := newSQLStore(db, "")
		require.NoError(t, s.Save(t.Context(), testBasket()))

		assert.Contains(t, db.query, "ON CONFLICT (key) DO UPDATE")
		require.Len(t, db.args, 2)
		assert.Equal(t, DefaultKey, db.args[0])
		got, err := decodeBasket([]byte(db.args[1].(string)))
		require.NoError(t, err)
		assertSameBasket(t, testBasket(), got)
	})

	t.Run("ExecError", func(t *testing.T) {
		db := &fakeSQLDB{err: errors.New("conn reset")}
		s := newSQLStore(db, "")
		assert.Error(t, s.Save(t.Context(), testBasket()))
	})
}

func TestOpen(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		b, err := Open(t.Context(), Options{Driver: DriverMemory})
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.BasketStore("a").Save(t.Context(), testBasket()))
		assertSameBasket(t, testBasket(), b.BasketStore("a").Load(t.Context()))
		assert.True(t, b.BasketStore("b").Load(t.Context()).IsEmpty())
	})

	t.Run("File", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		b, err := Open(t.Context(), Options{
			Driver: DriverFile, FileDir: "/srv", Fs: fsys,
		})
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.BasketStore("k").Save(t.Context(), testBasket()))
		ok, err := afero.Exists(fsys, "/srv/k.json")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, b.BasketStore("").Save(t.Context(), testBasket()))
		ok, err = afero.Exists(fsys, "/srv/"+DefaultKey+".json")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := Open(t.Context(), Options{
			Driver: DriverRedis, RedisAddr: mr.Addr(),
		})
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.BasketStore("farm_cart_a").Save(t.Context(), testBasket()))
		assert.True(t, mr.Exists("farm_cart_a"))
		assert.False(t, mr.Exists(DefaultKey))
		assert.True(t, b.BasketStore("farm_cart_b").Load(t.Context()).IsEmpty())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Open(t.Context(), Options{Driver: "mongo"})
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})
}

func TestSQLStoreWithKey(t *testing.T) {
	db := new(fakeSQLDB)
	s := newSQLStore(db, "").WithKey("farm_cart_a")
	require.NoError(t, s.Save(t.Context(), testBasket()))
	require.NotEmpty(t, db.args)
	assert.Equal(t, "farm_cart_a", db.args[0])
}
