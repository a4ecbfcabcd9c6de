package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"StoreFront/internal/kv"
)

const Key = "cart"

// Item is one cart line. ID references a product but is not checked
// against the catalog.
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type ProductRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

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

func (s *Store) List(ctx context.Context) ([]Item, error) {
	var items []Item
	_, err := kv.GetJSON(ctx, s.kv, Key, &items)
	if errors.Is(err, kv.ErrCorrupt) {
		s.log.Warn("corrupt cart, using empty", zap.Error(err))
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Qty >= 1 {
			out = append(out, it)
		}
	}
	return out, nil
}

// Add puts one unit of ref in the cart, bumping qty when the id is already
// there. Stock is only checked at checkout.
func (s *Store) Add(ctx context.Context, ref ProductRef) ([]Item, error) {
	var items []Item
	err := s.w.Do(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.List(ctx)
		if err != nil {
			return err
		}

		found := false
		for i := range items {
			if items[i].ID == ref.ID {
				items[i].Qty++
				found = true
				break
			}
		}
		if !found {
			items = append(items, Item{ID: ref.ID, Name: ref.Name, Price: ref.Price, Qty: 1})
		}

		return kv.SetJSON(ctx, s.kv, Key, items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Remove(ctx context.Context, id string) ([]Item, error) {
	var out []Item
	err := s.w.Do(ctx, func(ctx context.Context) error {
		items, err := s.List(ctx)
		if err != nil {
			return err
		}

		out = items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return kv.SetJSON(ctx, s.kv, Key, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.w.Do(ctx, func(ctx context.Context) error {
		return s.kv.Remove(ctx, Key)
	})
}

func (s *Store) Count(ctx context.Context) (int, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		n += it.Qty
	}
	return n, nil
}

func (s *Store) Total(ctx context.Context) (float64, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return Total(items), nil
}

func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Qty)
	}
	return total
}
