// Package storage provides [port.BasketStore] implementations.
//
// All of them share one persisted layout: a JSON array of line items kept
// under the basket key and overwritten on every save. A [Backend] hands
// out one store per key.
package storage

import (
	"errors"
	"log/slog"

	"github.com/niksmo/farmstore/internal/core/domain"
)

const DefaultKey = "farm_cart"

var (
	ErrUnknownDriver = errors.New("unknown store driver")
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// basketOrEmpty decodes data, falling back to an empty basket.
func basketOrEmpty(op string, data []byte) domain.Basket {
	log := slog.With("op", op)

	b, err := decodeBasket(data)
	if err != nil {
		log.Warn("discarding stored basket", "err", err)
		return domain.Basket{}
	}
	log.Debug("basket loaded", "nItems", b.Len())
	return b
}

func keyOrDefault(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}
