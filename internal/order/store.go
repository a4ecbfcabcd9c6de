package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"StoreFront/internal/cart"
	"StoreFront/internal/kv"
)

const Key = "orders"

const StatusConfirmed = "CONFIRMED"

// Order is the receipt written after every cart line was taken from stock.
type Order struct {
	ID        string      `json:"id"`
	Email     string      `json:"email,omitempty"`
	Items     []cart.Item `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store is an append-only order log kept under one key.
type Store struct {
	kv  kv.Storage
	log *zap.Logger
	w   *kv.Writer
}

type Option func(*Store)

// WithWriter shares w with other stores over the same storage.
func WithWriter(w *kv.Writer) Option {
	return func(s *Store) {
		if w != nil {
			s.w = w
		}
	}
}

func NewStore(storage kv.Storage, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: storage, log: log, w: kv.NewWriter()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	_, err := kv.GetJSON(ctx, s.kv, Key, &orders)
	if errors.Is(err, kv.ErrCorrupt) {
		s.log.Warn("corrupt order log, using empty", zap.Error(err))
		return []Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *Store) Create(ctx context.Context, o Order) error {
	return s.w.Do(ctx, func(ctx context.Context) error {
		orders, err := s.List(ctx)
		if err != nil {
			return err
		}
		return kv.SetJSON(ctx, s.kv, Key, append(orders, o))
	})
}

func (s *Store) Get(ctx context.Context, id string) (Order, bool, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}
