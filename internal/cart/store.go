package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/internal/notify"
	"github.com/angelmondragon/amglow-storefront/internal/storage"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	"github.com/angelmondragon/amglow-storefront/pkg/metrics"
)

// DefaultStorageKey is the key the cart snapshot is stored under.
const DefaultStorageKey = "amglow-cart"

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opClear  = "clear"
)

// Options wires the optional collaborators of a Store.
type Options struct {
	Key      string
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
}

// Store is one session's cart. Every mutation serializes the whole cart and
// writes it to the key-value store before the new state becomes visible; a
// failed write leaves the previous state in place.
type Store struct {
	kv       storage.Store
	key      string
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.CartMetrics

	mu    sync.Mutex
	state Cart
}

// Open rehydrates a Store from kv. A missing snapshot yields an empty cart, as
// does a malformed one (logged and counted, never returned as an error). Only
// a failing read is reported.
func Open(ctx context.Context, kv storage.Store, opts Options) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("key-value store required")
	}
	s := &Store{
		kv:       kv,
		key:      opts.Key,
		notifier: opts.Notifier,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.key == "" {
		s.key = DefaultStorageKey
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh replaces the in-memory cart with the latest stored snapshot, using
// the same fallback rules as Open.
func (s *Store) Refresh(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	loaded := Cart{}
	if ok {
		if loaded, err = DecodeSnapshot(raw); err != nil {
			s.metrics.IncSnapshotRejected()
			s.warn(ctx, "discarding malformed cart snapshot", err)
			loaded = Cart{}
		}
	}

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()
	return nil
}

// AddToCart adds quantity units of p. quantity must be at least 1.
func (s *Store) AddToCart(ctx context.Context, p Product, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	return s.apply(ctx, opAdd, func(c Cart) (Cart, *notify.Notification) {
		return Add(c, p, quantity)
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.apply(ctx, opRemove, func(c Cart) (Cart, *notify.Notification) {
		return Remove(c, productID)
	})
}

// UpdateQuantity sets an absolute quantity; below one it removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	op := opUpdate
	if quantity < 1 {
		op = opRemove
	}
	return s.apply(ctx, op, func(c Cart) (Cart, *notify.Notification) {
		return Update(c, productID, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.apply(ctx, opClear, Clear)
}

// Snapshot returns the current cart value.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Lines() []Line { return s.Snapshot().Lines() }

func (s *Store) Total() decimal.Decimal { return s.Snapshot().Total() }

func (s *Store) Count() int { return s.Snapshot().Count() }

func (s *Store) IsEmpty() bool { return s.Snapshot().IsEmpty() }

func (s *Store) apply(ctx context.Context, op string, transition func(Cart) (Cart, *notify.Notification)) error {
	s.mu.Lock()
	next, effect := transition(s.state)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		s.metrics.IncPersistFailure()
		s.logError(ctx, "persist cart snapshot", err)
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.metrics.IncMutation(op)
	if effect != nil {
		s.notifier.Notify(ctx, *effect)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, c Cart) error {
	encoded, err := EncodeSnapshot(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.key, encoded); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"storage_key": s.key, "reason": err.Error()})
	s.logg.Warn(ctx, msg)
}

func (s *Store) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "storage_key", s.key), msg, err)
}

// KVFactory returns the key-value store backing one session.
type KVFactory func(sessionID string) (storage.Store, error)

// Sessions opens per-session Stores that share one configuration.
type Sessions struct {
	kvFor   KVFactory
	key     string
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

func NewSessions(kvFor KVFactory, key string, logg *logger.Logger, m *metrics.CartMetrics) (*Sessions, error) {
	if kvFor == nil {
		return nil, fmt.Errorf("kv factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Sessions{kvFor: kvFor, key: key, logg: logg, metrics: m}, nil
}

// Open rehydrates the cart for sessionID, routing its notices to n.
func (s *Sessions) Open(ctx context.Context, sessionID string, n notify.Notifier) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	kv, err := s.kvFor(sessionID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open cart storage")
	}
	return Open(ctx, kv, Options{
		Key:      s.key,
		Notifier: n,
		Logger:   s.logg,
		Metrics:  s.metrics,
	})
}
