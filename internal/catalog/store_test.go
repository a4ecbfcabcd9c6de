package catalog_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"StoreFront/internal/catalog"
	"StoreFront/internal/kv"
)

type staticSeed struct {
	raw []byte
	err error
}

func (s staticSeed) Name() string { return "static" }

func (s staticSeed) Fetch(context.Context) ([]byte, error) { return s.raw, s.err }

func newStore(t *testing.T, products ...catalog.Product) (*catalog.Store, *kv.MemStorage) {
	t.Helper()

	mem := kv.NewMemStorage()
	s := catalog.NewStore(mem, zap.NewNop())
	for _, p := range products {
		if _, err := s.Add(context.Background(), p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}
	return s, mem
}

func TestStore_SeedIfAbsent(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t)

	raw := []byte(`{"products":[{"id":"p1","name":"Shoe","price":10,"image":"x","description":"d","stock":2,"category":"chaussure"}]}`)
	if err := s.SeedIfAbsent(ctx, staticSeed{raw: raw}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stored, ok, _ := mem.Get(ctx, catalog.Key)
	if !ok || stored != string(raw) {
		t.Fatalf("seed not persisted verbatim: %q", stored)
	}

	if err := s.SeedIfAbsent(ctx, staticSeed{raw: []byte(`{"products":[]}`)}); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	products, _ := s.List(ctx)
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("existing catalog overwritten: %+v", products)
	}
}

func TestStore_SeedFailureIsLoadError(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("boom")

	for _, src := range []staticSeed{{err: cause}, {raw: []byte("<html>")}} {
		s, mem := newStore(t)

		err := s.SeedIfAbsent(ctx, src)
		var le *catalog.LoadError
		if !errors.As(err, &le) {
			t.Fatalf("err=%v want LoadError", err)
		}
		if _, ok, _ := mem.Get(ctx, catalog.Key); ok {
			t.Fatalf("catalog persisted after failed seed")
		}
	}
}

func TestStore_EmbeddedSeed(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	if err := s.SeedIfAbsent(ctx, catalog.EmbeddedSeed{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	products, err := s.List(ctx)
	if err != nil || len(products) == 0 {
		t.Fatalf("products=%d err=%v", len(products), err)
	}
}

func TestStore_ListDefaultsToEmpty(t *testing.T) {
	s, _ := newStore(t)

	products, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("products=%v", products)
	}
}

func TestStore_CorruptCatalogReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t)
	_ = mem.Set(ctx, catalog.Key, "{{{")

	products, err := s.List(ctx)
	if err != nil || len(products) != 0 {
		t.Fatalf("products=%v err=%v", products, err)
	}
}

func TestStore_AddRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, catalog.Product{ID: "p1", Name: "A", Stock: 1, Category: "x"})

	if _, err := s.Add(ctx, catalog.Product{ID: "p1", Name: "B"}); !errors.Is(err, catalog.ErrDuplicateID) {
		t.Fatalf("err=%v want ErrDuplicateID", err)
	}
	if _, err := s.Add(ctx, catalog.Product{ID: "p2", Name: "B"}); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	products, _ := s.List(ctx)
	seen := map[string]bool{}
	for _, p := range products {
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, catalog.Product{ID: "p1", Name: "A", Price: 5, Stock: 4, Category: "x"})

	price := 7.5
	got, err := s.Update(ctx, "p1", catalog.Patch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Price != 7.5 || got.Name != "A" || got.Stock != 4 {
		t.Fatalf("got=%+v", got)
	}

	stored, _, _ := s.FindByID(ctx, "p1")
	if stored != got {
		t.Fatalf("stored=%+v got=%+v", stored, got)
	}

	if _, err := s.Update(ctx, "nope", catalog.Patch{Price: &price}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, catalog.Product{ID: "p1"}, catalog.Product{ID: "p2"})

	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete again: %v", err)
	}

	products, _ := s.List(ctx)
	if len(products) != 1 || products[0].ID != "p2" {
		t.Fatalf("products=%+v", products)
	}
}

func TestStore_DecreaseStock(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t, catalog.Product{ID: "p1", Stock: 3}, catalog.Product{ID: "p2", Stock: 5})

	before, _, _ := mem.Get(ctx, catalog.Key)

	for _, tc := range []struct {
		id  string
		qty int
	}{
		{"p1", 4},
		{"missing", 1},
		{"p1", 0},
	} {
		ok, err := s.DecreaseStock(ctx, tc.id, tc.qty)
		if err != nil || ok {
			t.Fatalf("%s x%d: ok=%v err=%v", tc.id, tc.qty, ok, err)
		}
	}

	after, _, _ := mem.Get(ctx, catalog.Key)
	if before != after {
		t.Fatalf("catalog changed by failed decrements")
	}

	ok, err := s.DecreaseStock(ctx, "p2", 2)
	if err != nil || !ok {
		t.Fatalf("decrease p2: ok=%v err=%v", ok, err)
	}
	p2, _, _ := s.FindByID(ctx, "p2")
	if p2.Stock != 3 {
		t.Fatalf("p2 stock=%d", p2.Stock)
	}
}

func TestStore_DecreaseStockPrunesSoldOut(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, catalog.Product{ID: "p1", Stock: 3}, catalog.Product{ID: "p2", Stock: 1})

	ok, err := s.DecreaseStock(ctx, "p1", 3)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if _, found, _ := s.FindByID(ctx, "p1"); found {
		t.Fatalf("p1 should be pruned")
	}
	if _, found, _ := s.FindByID(ctx, "p2"); !found {
		t.Fatalf("p2 should remain")
	}
}

func TestStore_ListByCategory(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t,
		catalog.Product{ID: "a", Category: "chaussure"},
		catalog.Product{ID: "b", Category: "vetement"},
		catalog.Product{ID: "c", Category: "chaussure"},
	)

	got, _ := s.ListByCategory(ctx, " Chaussure ")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("got=%+v", got)
	}

	all, _ := s.ListByCategory(ctx, catalog.CategoryAll)
	if len(all) != 3 {
		t.Fatalf("all=%d", len(all))
	}
}

func TestStore_SeedReplacesEmptyValue(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t)

	if err := mem.Set(ctx, catalog.Key, ""); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw := []byte(`{"products":[{"id":"p1","name":"Shoe","price":10,"stock":2,"category":"chaussure"}]}`)
	if err := s.SeedIfAbsent(ctx, staticSeed{raw: raw}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	products, err := s.List(ctx)
	if err != nil || len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("list after seed: %+v err=%v", products, err)
	}
}
