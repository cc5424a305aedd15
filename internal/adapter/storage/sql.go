package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
)

var _ port.BasketStore = (*SQLStore)(nil)

type sqldb interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PingContext(ctx context.Context) error
	Close() error
}

// A SQLStore keeps the basket in the baskets table, one row per key.
type SQLStore struct {
	sqldb sqldb
	key   string
}

func NewSQLStore(ctx context.Context, dsn, key string) (SQLStore, error) {
	const op = "NewSQLStore"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLStore{}, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLStore{}, fmt.Errorf("%s: %w", op, err)
	}

	s := newSQLStore(db, key)
	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return SQLStore{}, err
	}
	return s, nil
}

func newSQLStore(db sqldb, key string) SQLStore {
	return SQLStore{sqldb: db, key: keyOrDefault(key)}
}

// WithKey returns a store for another basket key over the same pool.
func (s SQLStore) WithKey(key string) SQLStore {
	return newSQLStore(s.sqldb, key)
}

func (s SQLStore) ping(ctx context.Context) error {
	const op = "SQLStore.ping"
	if err := s.sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: database unavailable: %w", op, err)
	}
	slog.Info("database is available", "op", op)
	return nil
}

func (s SQLStore) Load(ctx context.Context) domain.Basket {
	const op = "SQLStore.Load"
	log := slog.With("op", op)

	query := `SELECT items FROM baskets WHERE key = $1;`

	var data []byte
	err := s.sqldb.QueryRowContext(ctx, query, s.key).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn("failed to read basket", "err", err)
		}
		return domain.Basket{}
	}
	return basketOrEmpty(op, data)
}

func (s SQLStore) Save(ctx context.Context, b domain.Basket) error {
	const op = "SQLStore.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := encodeBasket(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO baskets (key, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.sqldb.ExecContext(ctx, query, s.key, string(data)); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

func (s SQLStore) Close() {
	const op = "SQLStore.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
