package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultIDField  = "_id"
	fallbackIDField = "id"
)

var (
	ErrInvalidRecord = errors.New("invalid product record")
)

// record is the remote product layout without its identifier, which lives
// under a configurable key.
type record struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        json.Number `json:"price"`
	Unit         string      `json:"unit"`
	Image        string      `json:"image"`
	Category     string      `json:"category"`
	IsTopProduct flag        `json:"isTopProduct"`
}

// flag accepts true, false, "true" and "false". Form-backed servers echo
// booleans as strings.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("isTopProduct: %w", err)
	}
	*f = flag(v)
	return nil
}

// Normalize maps a JSON array of remote product records onto
// [domain.Product]. The identifier is read from idField and, when that is
// absent, from "id". Records that can not be mapped are skipped.
func Normalize(data []byte, idField string) ([]domain.Product, error) {
	const op = "catalog.Normalize"
	log := slog.With("op", op)

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]domain.Product, 0, len(raws))
	for i, raw := range raws {
		p, err := NormalizeOne(raw, idField)
		if err != nil {
			log.Warn("skip product record", "index", i, "err", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// NormalizeOne maps a single remote product record.
func NormalizeOne(data []byte, idField string) (domain.Product, error) {
	const op = "catalog.NormalizeOne"

	if idField == "" {
		idField = DefaultIDField
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
	}

	id, err := recordID(fields, idField)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
	}

	price, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return domain.Product{}, fmt.Errorf(
			"%s: %w: price %q", op, ErrInvalidRecord, r.Price,
		)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf(
			"%s: %w: negative price %s", op, ErrInvalidRecord, price,
		)
	}

	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		category = domain.CategoryOther
	}

	return domain.Product{
		ID:           id,
		Name:         r.Name,
		Description:  r.Description,
		Price:        price,
		Unit:         r.Unit,
		Image:        r.Image,
		Category:     category,
		IsTopProduct: bool(r.IsTopProduct),
	}, nil
}

func recordID(fields map[string]json.RawMessage, idField string) (string, error) {
	raw, ok := fields[idField]
	if !ok || isNull(raw) {
		raw, ok = fields[fallbackIDField]
	}
	if !ok || isNull(raw) {
		return "", fmt.Errorf("no %q or %q field", idField, fallbackIDField)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("id is neither string nor number: %s", raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
