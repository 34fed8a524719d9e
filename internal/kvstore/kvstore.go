// Package kvstore is the local key-value store the progress engine persists
// into. Values are opaque strings; callers own the encoding.
package kvstore

import (
	"context"
	"errors"
)

var ErrUnknownDriver = errors.New("kvstore: unknown sql driver")

// Store is a string key-value store. A missing key is reported through found,
// never as an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
