package gencache

import (
	"context"
	"time"
)

// Nop is a Cache that caches nothing: reads miss, writes and invalidations
// succeed without effect, and wrapped functions always run. Swap it in to
// disable caching without touching call sites.
type Nop[V any] struct{}

var _ Cache[struct{}] = Nop[struct{}]{}

func (Nop[V]) Enabled() bool                        { return false }
func (Nop[V]) Close(context.Context) error          { return nil }
func (Nop[V]) Delete(context.Context, Lookup) error { return nil }

func (Nop[V]) BuildKey(context.Context, Lookup) (string, error) { return "", nil }

func (Nop[V]) Get(context.Context, Lookup) (V, bool, error) {
	var zero V
	return zero, false, nil
}

func (Nop[V]) Set(context.Context, V, Lookup, time.Duration) error { return nil }

func (Nop[V]) Invalidate(context.Context, string, Params) (uint64, error) { return 0, nil }

func (Nop[V]) Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error) {
	if fn == nil {
		return nil, errNilFunc
	}
	return &Wrapped[V]{fn: fn, identity: identity(fn, opts.Name, opts.callerSkip+2)}, nil
}

// NopScope is the Scoper counterpart of Nop.
type NopScope[V any] struct{}

var _ Scoper[struct{}] = NopScope[struct{}]{}

func (NopScope[V]) BuildKey(context.Context, Params, ...string) (string, error) { return "", nil }

func (NopScope[V]) Get(context.Context, Params, ...string) (V, bool, error) {
	var zero V
	return zero, false, nil
}

func (NopScope[V]) Set(context.Context, V, Params, ...string) error            { return nil }
func (NopScope[V]) Delete(context.Context, Params, ...string) error            { return nil }
func (NopScope[V]) Invalidate(context.Context, string, Params) (uint64, error) { return 0, nil }

func (NopScope[V]) Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error) {
	opts.callerSkip++
	return Nop[V]{}.Wrap(fn, opts)
}
