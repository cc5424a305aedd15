package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.BasketStore = (*RedisStore)(nil)

type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(ctx context.Context, addr, key string) (RedisStore, error) {
	const op = "NewRedisStore"

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return RedisStore{}, fmt.Errorf("%s: redis unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op)
	return RedisStore{rdb: rdb, key: keyOrDefault(key)}, nil
}

// WithKey returns a store for another basket key over the same client.
func (s RedisStore) WithKey(key string) RedisStore {
	return RedisStore{rdb: s.rdb, key: keyOrDefault(key)}
}

func (s RedisStore) Load(ctx context.Context) domain.Basket {
	const op = "RedisStore.Load"
	log := slog.With("op", op)

	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("failed to read basket", "err", err)
		}
		return domain.Basket{}
	}
	return basketOrEmpty(op, data)
}

func (s RedisStore) Save(ctx context.Context, b domain.Basket) error {
	const op = "RedisStore.Save"

	data, err := encodeBasket(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s RedisStore) Close() {
	const op = "RedisStore.Close"
	log := slog.With("op", op)

	if err := s.rdb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}
