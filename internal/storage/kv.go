// Package storage holds the durable key-value backends a cart can be
// persisted to. Every backend stores opaque bytes under a string key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// KV is the small get/set surface the cart store persists through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

func CartKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}
