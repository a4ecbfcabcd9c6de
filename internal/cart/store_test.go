package cart_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"StoreFront/internal/cart"
	"StoreFront/internal/kv"
)

func newStore() (*cart.Store, *kv.MemStorage) {
	mem := kv.NewMemStorage()
	return cart.NewStore(mem, zap.NewNop()), mem
}

func TestStore_AddCoalescesSameID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	ref := cart.ProductRef{ID: "p1", Name: "Shoe", Price: 10}
	if _, err := s.Add(ctx, ref); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := s.Add(ctx, ref)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(items) != 1 || items[0].Qty != 2 {
		t.Fatalf("items=%+v", items)
	}

	stored, _ := s.List(ctx)
	if len(stored) != 1 || stored[0].Qty != 2 {
		t.Fatalf("stored=%+v", stored)
	}
}

func TestStore_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	for _, id := range []string{"b", "a", "b", "c"} {
		if _, err := s.Add(ctx, cart.ProductRef{ID: id}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	items, _ := s.List(ctx)
	if len(items) != 3 || items[0].ID != "b" || items[1].ID != "a" || items[2].ID != "c" {
		t.Fatalf("items=%+v", items)
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()
	_, _ = s.Add(ctx, cart.ProductRef{ID: "p1"})
	_, _ = s.Add(ctx, cart.ProductRef{ID: "p2"})

	items, err := s.Remove(ctx, "p1")
	if err != nil || len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("items=%+v err=%v", items, err)
	}
	items, err = s.Remove(ctx, "p1")
	if err != nil || len(items) != 1 {
		t.Fatalf("items=%+v err=%v", items, err)
	}
}

func TestStore_ClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore()
	_, _ = s.Add(ctx, cart.ProductRef{ID: "p1"})

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := mem.Get(ctx, cart.Key); ok {
		t.Fatalf("cart key still present")
	}

	items, err := s.List(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("items=%+v err=%v", items, err)
	}
}

func TestStore_CountAndTotal(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("empty count=%d", n)
	}

	_, _ = s.Add(ctx, cart.ProductRef{ID: "p1", Price: 2.5})
	_, _ = s.Add(ctx, cart.ProductRef{ID: "p1", Price: 2.5})
	_, _ = s.Add(ctx, cart.ProductRef{ID: "p2", Price: 10})

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count=%d err=%v", n, err)
	}
	total, err := s.Total(ctx)
	if err != nil || total != 15 {
		t.Fatalf("total=%v err=%v", total, err)
	}
}

func TestStore_CorruptOrInvalidLines(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore()

	_ = mem.Set(ctx, cart.Key, `{"not":"an array"}`)
	if items, err := s.List(ctx); err != nil || len(items) != 0 {
		t.Fatalf("items=%+v err=%v", items, err)
	}

	_ = mem.Set(ctx, cart.Key, `[{"id":"p1","qty":0},{"id":"p2","qty":2}]`)
	items, err := s.List(ctx)
	if err != nil || len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("items=%+v err=%v", items, err)
	}
}
