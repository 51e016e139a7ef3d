// Package genstore holds generation counters.
//
// A counter is a uint64 per generation suffix ("articles", "user_id:42").
// Counters are created lazily on first read with the current time in
// microseconds, so a counter that was lost (evicted, expired, flushed) comes
// back with a value larger than any it previously held. Bumping a counter
// orphans every cache key built with its old value.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generation counters live.
// Use KV to share counters through a store.Store (memcache, redis), or Local
// for in-process counters.
type GenStore interface {
	// Snapshot returns the counter of every suffix, creating missing ones.
	// The result has an entry for each distinct suffix.
	Snapshot(ctx context.Context, suffixes []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new counter. An absent
	// counter is created with value 1.
	Bump(ctx context.Context, suffix string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for KV).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}

// InitialValue is the value a fresh counter starts at.
func InitialValue(now time.Time) uint64 {
	return uint64(now.UnixMicro())
}

func dedupe(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
