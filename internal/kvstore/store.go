// Package kvstore is the key-value persistence layer behind the booking
// ledger and bookmarks.  Callers see only Get and Set over opaque byte
// values; backends that can update a key atomically also implement Swapper.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been written.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is the minimal contract every backend provides.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Swapper is implemented by stores that support optimistic updates.
// CompareAndSwap writes next only if the current value equals prev; a nil
// prev means the key must not exist yet.  swapped is false, with a nil
// error, when the precondition did not hold.
type Swapper interface {
	Store
	CompareAndSwap(ctx context.Context, key string, prev, next []byte) (swapped bool, err error)
}

// Namespace scopes every key of s under ns ("{ns}:{key}").  The result is a
// Swapper whenever s is.
func Namespace(s Store, ns string) Store {
	p := &prefixed{inner: s, prefix: ns + ":"}
	if sw, ok := s.(Swapper); ok {
		return &prefixedSwapper{prefixed: p, sw: sw}
	}
	return p
}

// ProfileNamespace is the namespace of one browser profile.
func ProfileNamespace(profileID string) string { return "profile:" + profileID }

type prefixed struct {
	inner  Store
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

type prefixedSwapper struct {
	*prefixed
	sw Swapper
}

func (p *prefixedSwapper) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	return p.sw.CompareAndSwap(ctx, p.prefix+key, prev, next)
}
