package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/farmstore/internal/core/port"
)

var _ port.BasketSessions = (*Sessions)(nil)

var ErrInvalidSession = errors.New("invalid session id")

type SessionsConfig struct {
	// BaseKey prefixes every session's basket key.
	BaseKey string

	// IdleTimeout drops a session from memory after it has not been used
	// for that long. Its basket stays in the store. Zero keeps sessions
	// forever.
	IdleTimeout time.Duration

	Checkout CheckoutConfig
}

// session pairs a customer's cart with the checkout over it.
type session struct {
	*Cart
	*Checkout
}

type sessionEntry struct {
	session  session
	lastUsed time.Time
}

// Sessions keeps one cart and one checkout per customer session. Carts are
// created on first use and load the basket stored under the session key.
type Sessions struct {
	stores port.BasketStoreProvider
	cfg    SessionsConfig
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*sessionEntry
	lastSweep time.Time
}

func NewSessions(stores port.BasketStoreProvider, cfg SessionsConfig) *Sessions {
	return &Sessions{
		stores:  stores,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// SessionKey is the store key of a session's basket.
func SessionKey(baseKey, sessionID string) string {
	return baseKey + "_" + sessionID
}

// Session returns the basket session for sessionID, which must be a UUID.
func (s *Sessions) Session(
	ctx context.Context, sessionID string,
) (port.BasketSession, error) {
	const op = "Sessions.Session"

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}
	key := id.String()

	if sess, ok := s.lookup(key); ok {
		return sess, nil
	}

	// The store is read outside the lock. A concurrent first request for
	// the same session keeps whichever cart is registered first.
	cart := NewCart(ctx, s.stores.BasketStore(SessionKey(s.cfg.BaseKey, key)))
	created := session{cart, NewCheckout(cart, s.cfg.Checkout)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.lastUsed = s.now()
		return e.session, nil
	}
	s.entries[key] = &sessionEntry{session: created, lastUsed: s.now()}
	slog.Debug("session opened", "op", op, "nSessions", len(s.entries))
	return created, nil
}

// Len returns the number of sessions held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) lookup(key string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e, ok := s.entries[key]
	if !ok {
		return session{}, false
	}
	e.lastUsed = now
	return e.session, true
}

// sweep must be called with s.mu held.
func (s *Sessions) sweep(now time.Time) {
	ttl := s.cfg.IdleTimeout
	if ttl <= 0 || now.Sub(s.lastSweep) < ttl {
		return
	}
	s.lastSweep = now
	for key, e := range s.entries {
		if now.Sub(e.lastUsed) >= ttl {
			delete(s.entries, key)
		}
	}
}
