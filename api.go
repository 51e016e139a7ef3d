package gencache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/gencache/codec"
	"github.com/unkn0wn-root/gencache/genstore"
	"github.com/unkn0wn-root/gencache/settings"
	"github.com/unkn0wn-root/gencache/store"
)

// Cache is the generational cache API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Direct facade
	BuildKey(ctx context.Context, l Lookup) (string, error)
	Get(ctx context.Context, l Lookup) (v V, ok bool, err error)
	Set(ctx context.Context, value V, l Lookup, ttl time.Duration) error
	Delete(ctx context.Context, l Lookup) error

	// Invalidate bumps one generation, orphaning every key built with its
	// previous counter. A generation that never existed is created.
	Invalidate(ctx context.Context, generation string, params Params) (uint64, error)

	// Wrap returns a cached version of fn.
	Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error)
}

// Lookup addresses a value through the direct facade.
type Lookup struct {
	Generations []string
	Params      Params   // values for dynamic generations
	AddToKey    []string // free-form suffixes appended verbatim
	Suppress    Suppress
}

// Options tune a Cache. Only Store and Codec are required.
type Options[V any] struct {
	// Required
	Store store.Store
	Codec codec.Codec[V]

	GenStore     genstore.GenStore // nil => genstore.NewKV(Store) with matching MaxKeyLength
	Settings     settings.Source   // nil => process environment
	Logger       Logger            // nil => NopLogger
	Hooks        Hooks             // nil => NopHooks
	DefaultTTL   time.Duration     // 0 => no expiry (within store.MaxTTL)
	MaxKeyLength int               // 0 => 240
	Namespace    string            // optional key prefix, "ns:" + key
	Disabled     bool              // every read misses, nothing is written
	Debug        bool              // log keys and generations; also enabled by DEBUG_GENERATIONAL_CACHE
	CloseStore   bool              // Close also closes Store
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
