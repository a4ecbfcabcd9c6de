package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StoreFront/internal/kv"
)

const Key = "db_products"

// CategoryAll disables the category filter.
const CategoryAll = "all"

type document struct {
	Products []Product `json:"products"`
}

// Store owns the product catalog. Every call reads the whole document,
// mutates it in memory and writes it back; mutations hold the store's Writer.
type Store struct {
	kv     kv.Storage
	log    *zap.Logger
	w      *kv.Writer
	pruned prometheus.Counter
}

type Option func(*Store)

// WithPruneCounter counts products removed because their stock ran out.
func WithPruneCounter(c prometheus.Counter) Option {
	return func(s *Store) { s.pruned = c }
}

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

// SeedIfAbsent persists the seed document verbatim when no catalog exists
// yet. An empty stored value counts as no catalog.
func (s *Store) SeedIfAbsent(ctx context.Context, src SeedSource) error {
	return s.w.Do(ctx, func(ctx context.Context) error {
		return s.seedIfAbsent(ctx, src)
	})
}

func (s *Store) seedIfAbsent(ctx context.Context, src SeedSource) error {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return err
	}
	if ok && raw != "" {
		return nil
	}

	body, err := src.Fetch(ctx)
	if err != nil {
		return &LoadError{Source: src.Name(), Err: err}
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return &LoadError{Source: src.Name(), Err: err}
	}

	if err := s.kv.Set(ctx, Key, string(body)); err != nil {
		return err
	}

	s.log.Info("catalog seeded", zap.String("source", src.Name()), zap.Int("products", len(doc.Products)))
	return nil
}

func (s *Store) load(ctx context.Context) (document, error) {
	var doc document
	_, err := kv.GetJSON(ctx, s.kv, Key, &doc)
	if errors.Is(err, kv.ErrCorrupt) {
		s.log.Warn("corrupt catalog, using empty", zap.Error(err))
		return document{}, nil
	}
	if err != nil {
		return document{}, err
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc document) error {
	if doc.Products == nil {
		doc.Products = []Product{}
	}
	return kv.SetJSON(ctx, s.kv, Key, doc)
}

func (s *Store) List(ctx context.Context) ([]Product, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Products == nil {
		return []Product{}, nil
	}
	return doc.Products, nil
}

func (s *Store) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == CategoryAll {
		return products, nil
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (Product, bool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return Product{}, false, err
	}
	i := indexOf(doc.Products, id)
	if i < 0 {
		return Product{}, false, nil
	}
	return doc.Products[i], true, nil
}

func (s *Store) Add(ctx context.Context, p Product) (Product, error) {
	err := s.w.Do(ctx, func(ctx context.Context) error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}
		if indexOf(doc.Products, p.ID) >= 0 {
			return ErrDuplicateID
		}

		doc.Products = append(doc.Products, p)
		return s.save(ctx, doc)
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update merges patch into the product. Field values are not validated here.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	var out Product
	err := s.w.Do(ctx, func(ctx context.Context) error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}
		i := indexOf(doc.Products, id)
		if i < 0 {
			return ErrNotFound
		}

		doc.Products[i].apply(patch)
		out = doc.Products[i]
		return s.save(ctx, doc)
	})
	if err != nil {
		return Product{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(ctx context.Context) error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}
		doc.Products = without(doc.Products, id)
		return s.save(ctx, doc)
	})
}

// DecreaseStock takes qty units of a product. It reports false, leaving the
// catalog untouched, when the product is missing or short. A product whose
// stock reaches zero is removed from the catalog.
func (s *Store) DecreaseStock(ctx context.Context, id string, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}

	var taken, pruned bool
	err := s.w.Do(ctx, func(ctx context.Context) error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}
		i := indexOf(doc.Products, id)
		if i < 0 || doc.Products[i].Stock < qty {
			return nil
		}

		doc.Products[i].Stock -= qty
		pruned = doc.Products[i].Stock <= 0
		if pruned {
			doc.Products = without(doc.Products, id)
		}

		if err := s.save(ctx, doc); err != nil {
			return err
		}
		taken = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if pruned {
		s.log.Info("product sold out, removed", zap.String("product_id", id))
		if s.pruned != nil {
			s.pruned.Inc()
		}
	}
	return taken, nil
}

func indexOf(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(products []Product, id string) []Product {
	out := products[:0]
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
