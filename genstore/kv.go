package genstore

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/gencache/internal/keys"
	"github.com/unkn0wn-root/gencache/store"
)

// KVOptions tune a KV generation store.
type KVOptions struct {
	// TTL of counter keys. Zero means store.MaxTTL.
	TTL time.Duration

	// BatchInit writes all missing counters of a Snapshot with one SetMulti
	// instead of one Add per counter. Fewer round-trips, but concurrent
	// initializers race and the last write wins; readers that already built
	// keys with the losing value see one extra miss.
	BatchInit bool

	// MaxKeyLength bounds counter keys. Zero means keys.MaxLength.
	MaxKeyLength int

	// Now is the clock used for initial values. Nil means time.Now.
	Now func() time.Time
}

// KV keeps counters in a store.Store as ASCII decimals under
// "_gen_<suffix>", next to the cached values.
type KV struct {
	s         store.Store
	ttl       time.Duration
	batchInit bool
	maxKeyLen int
	now       func() time.Time
}

var _ GenStore = (*KV)(nil)

func NewKV(s store.Store, opts KVOptions) *KV {
	g := &KV{
		s:         s,
		ttl:       opts.TTL,
		batchInit: opts.BatchInit,
		maxKeyLen: opts.MaxKeyLength,
		now:       opts.Now,
	}
	if g.ttl <= 0 {
		g.ttl = store.MaxTTL
	}
	if g.maxKeyLen <= 0 {
		g.maxKeyLen = keys.MaxLength
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Key returns the store key holding the counter of suffix.
func (g *KV) Key(suffix string) string { return keys.GenerationKey(suffix, g.maxKeyLen) }

// Snapshot reads all counters with a single GetMulti and initializes the
// missing ones.
func (g *KV) Snapshot(ctx context.Context, suffixes []string) (map[string]uint64, error) {
	suffixes = dedupe(suffixes)
	out := make(map[string]uint64, len(suffixes))
	if len(suffixes) == 0 {
		return out, nil
	}

	ks := make([]string, len(suffixes))
	for i, s := range suffixes {
		ks[i] = g.Key(s)
	}
	vals, err := g.s.GetMulti(ctx, ks)
	if err != nil {
		return nil, err
	}

	var missing []int
	for i, k := range ks {
		b, ok := vals[k]
		if !ok {
			missing = append(missing, i)
			continue
		}
		v, err := store.ParseCounter(b)
		if err != nil {
			return nil, fmt.Errorf("genstore: counter %q: %w", k, err)
		}
		out[suffixes[i]] = v
	}
	if len(missing) == 0 {
		return out, nil
	}

	init := InitialValue(g.now())
	if g.batchInit {
		items := make(map[string][]byte, len(missing))
		for _, i := range missing {
			items[ks[i]] = store.FormatCounter(init)
			out[suffixes[i]] = init
		}
		if err := g.s.SetMulti(ctx, items, g.ttl); err != nil {
			return nil, err
		}
		return out, nil
	}

	for _, i := range missing {
		v, err := g.create(ctx, ks[i], init)
		if err != nil {
			return nil, err
		}
		out[suffixes[i]] = v
	}
	return out, nil
}

// create adds the counter if still absent. When another writer won, its
// value is read back so every reader agrees on one counter.
func (g *KV) create(ctx context.Context, key string, init uint64) (uint64, error) {
	stored, err := g.s.Add(ctx, key, store.FormatCounter(init), g.ttl)
	if err != nil {
		return 0, err
	}
	if stored {
		return init, nil
	}
	b, ok, err := g.s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		// gone again between Add and Get; our value is as good as any
		return init, nil
	}
	v, err := store.ParseCounter(b)
	if err != nil {
		return 0, fmt.Errorf("genstore: counter %q: %w", key, err)
	}
	return v, nil
}

// Bump increments the counter atomically in the store.
func (g *KV) Bump(ctx context.Context, suffix string) (uint64, error) {
	return g.s.Incr(ctx, g.Key(suffix), 1, g.ttl)
}

// Cleanup is not applicable; the store expires counters by TTL.
func (g *KV) Cleanup(time.Duration) {}

// Close is a no-op: the store is shared with cached values and owned by the caller.
func (g *KV) Close(context.Context) error { return nil }
