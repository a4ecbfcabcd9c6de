package kv

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type heldKey struct{}

// Writer serializes read-modify-write cycles over a Storage. Stores that
// share documents, or that are driven together by one operation, must share
// one Writer. Nested Do calls made with the context passed to fn run
// without waiting again.
type Writer struct {
	sem *semaphore.Weighted
}

func NewWriter() *Writer {
	return &Writer{sem: semaphore.NewWeighted(1)}
}

// Do runs fn while holding the writer. A nil Writer runs fn unserialized.
func (w *Writer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if w == nil || ctx.Value(heldKey{}) == w {
		return fn(ctx)
	}

	if err := w.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer w.sem.Release(1)

	return fn(context.WithValue(ctx, heldKey{}, w))
}
