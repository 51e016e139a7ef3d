// Package store defines the key/value backend used by gencache.
//
// A Store holds both cached values and generation counters. Counters are kept
// as ASCII decimal strings so that native INCR/incr commands of redis and
// memcache can operate on them directly.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set/Add for a key.
package store

import (
	"context"
	"errors"
	"time"
)

// MaxTTL is the longest expiry handed to a backend. memcache treats larger
// values as absolute unix timestamps, so ~30 days is the usable ceiling.
const MaxTTL = 2591999 * time.Second

var (
	// ErrNotNumeric is returned by Incr when the existing value is not a
	// decimal counter. Counters are never silently reset.
	ErrNotNumeric = errors.New("store: value is not a numeric counter")

	// ErrClosed is returned by in-process stores after Close.
	ErrClosed = errors.New("store: closed")
)

// Store is a minimal memcache-style byte store with TTLs.
// Must be safe for concurrent use. ttl <= 0 means "no expiry" (subject to the
// backend's own eviction); ttl > MaxTTL is clamped.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMulti returns the subset of keys that exist. Missing keys are omitted.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value unconditionally.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores all items with the same TTL.
	SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error

	// Add stores value only if key is absent. stored=false means another
	// writer got there first.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (stored bool, err error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Incr atomically adds delta to the decimal counter at key and returns the
	// new value. An absent key is created with value delta. A non-numeric
	// value yields ErrNotNumeric.
	Incr(ctx context.Context, key string, delta uint64, ttl time.Duration) (uint64, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// ClampTTL normalizes ttl to the range accepted by every backend.
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return 0
	case ttl > MaxTTL:
		return MaxTTL
	default:
		return ttl
	}
}
