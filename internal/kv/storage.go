// Package kv is the string-keyed persistence port every store writes through.
// Each store keeps one whole JSON document per key and re-reads it on every call.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrCorrupt is returned by GetJSON when the stored value does not decode.
	ErrCorrupt = errors.New("kv: corrupt value")
	// ErrNotMigrated is returned by the Postgres backend when its table is missing.
	ErrNotMigrated = errors.New("kv: storage table missing")
)

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
