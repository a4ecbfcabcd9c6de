package kv_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"StoreFront/internal/kv"
)

func TestWriter_SerializesCallers(t *testing.T) {
	w := kv.NewWriter()

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Do(context.Background(), func(context.Context) error {
				n := active.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := peak.Load(); got != 1 {
		t.Fatalf("peak concurrent holders=%d want 1", got)
	}
}

func TestWriter_NestedDoDoesNotBlock(t *testing.T) {
	w := kv.NewWriter()

	ran := false
	err := w.Do(context.Background(), func(ctx context.Context) error {
		return w.Do(ctx, func(context.Context) error {
			ran = true
			return nil
		})
	})
	if err != nil || !ran {
		t.Fatalf("nested do: ran=%v err=%v", ran, err)
	}
}

func TestWriter_ReturnsFnError(t *testing.T) {
	want := errors.New("boom")
	if err := kv.NewWriter().Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("err=%v want %v", err, want)
	}
}

func TestWriter_WaitHonoursContext(t *testing.T) {
	w := kv.NewWriter()

	hold := make(chan struct{})
	acquired := make(chan struct{})
	go func() {
		_ = w.Do(context.Background(), func(context.Context) error {
			close(acquired)
			<-hold
			return nil
		})
	}()
	<-acquired
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := w.Do(ctx, func(context.Context) error {
		t.Fatal("fn ran while writer was held")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v want deadline exceeded", err)
	}
}

func TestWriter_NilRunsDirectly(t *testing.T) {
	var w *kv.Writer

	ran := false
	if err := w.Do(context.Background(), func(context.Context) error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("nil writer: ran=%v err=%v", ran, err)
	}
}
