package gencache

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"strconv"
	"time"
)

var errNilFunc = errors.New("gencache: nil function")

// Func is a unit of work whose result can be cached.
type Func[V any] func(ctx context.Context, args Args) (V, error)

// WrapOptions configure a wrapped function.
type WrapOptions struct {
	// Name is the function identity in keys. Defaults to the runtime name of
	// fn. The line of the Wrap call is always appended, so moving the Wrap
	// call orphans previously cached results.
	Name string

	// Generations the cached results depend on, "name" or "name:param".
	// Parameters of dynamic generations are excluded from the key
	// automatically; their value is part of the generation instead.
	Generations []string

	Signature Signature
	TTL       time.Duration // 0 => Options.DefaultTTL
	Exclude   []string      // argument names kept out of the key
	LogMisses bool
	Suppress  Suppress

	callerSkip int
}

// Wrapped is a cached function. Concurrent callers that miss the same key
// each run the function; there is no single-flight.
type Wrapped[V any] struct {
	c        *cache[V] // nil => passthrough
	fn       Func[V]
	identity string
	gens     []Generation
	sig      Signature
	exclude  map[string]struct{}
	ttl      time.Duration
	logMiss  bool
	suppress Suppress
}

func (c *cache[V]) Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error) {
	if fn == nil {
		return nil, errNilFunc
	}
	gens, err := parseGenerations(opts.Generations)
	if err != nil {
		return nil, err
	}
	if err := opts.Signature.validate(); err != nil {
		return nil, err
	}

	exclude := make(map[string]struct{}, len(opts.Exclude)+len(gens))
	for _, n := range opts.Exclude {
		exclude[n] = struct{}{}
	}
	for _, p := range dynamicParams(gens) {
		exclude[p] = struct{}{}
	}

	w := &Wrapped[V]{
		c:        c,
		fn:       fn,
		identity: identity(fn, opts.Name, opts.callerSkip+2),
		gens:     gens,
		sig:      opts.Signature,
		exclude:  exclude,
		ttl:      opts.TTL,
		logMiss:  opts.LogMisses,
		suppress: opts.Suppress,
	}
	return w, nil
}

// identity is name (or fn's runtime name) plus the line of the Wrap call.
func identity(fn any, name string, skip int) string {
	if name == "" {
		if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
			name = f.Name()
		}
	}
	line := 0
	if _, _, l, ok := runtime.Caller(skip); ok {
		line = l
	}
	return name + ":" + strconv.Itoa(line)
}

// Identity returns the function identity used in keys.
func (w *Wrapped[V]) Identity() string { return w.identity }

func (w *Wrapped[V]) passthrough() bool {
	if w.c == nil || !w.c.enabled {
		return true
	}
	if w.suppress.active(w.c.settings) {
		w.c.hooks.Suppressed(w.identity)
		return true
	}
	return false
}

// Call returns the cached result for args, running the function on a miss.
// A function error is returned as is and nothing is stored. A failure to
// store a computed value is logged; the value is still returned.
func (w *Wrapped[V]) Call(ctx context.Context, args Args) (V, error) {
	if w.passthrough() {
		return w.fn(ctx, args)
	}
	var zero V
	key, err := w.key(ctx, args)
	if err != nil {
		return zero, err
	}
	c := w.c
	v, ok, err := c.load(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		c.hooks.Hit(w.identity)
		return v, nil
	}

	c.hooks.Miss(w.identity)
	if w.logMiss || c.debugOn() {
		c.log.Debug("cache miss", Fields{"func": w.identity, "generations": w.genNames(), "key": key})
	}
	v, err = w.fn(ctx, args)
	if err != nil {
		return zero, err
	}
	if err := c.save(ctx, key, v, w.ttl); err != nil {
		c.log.Warn("store computed value failed", Fields{"func": w.identity, "key": key, "err": err})
	}
	return v, nil
}

// Invalidate deletes the entry Call would use for args. Unlike
// Cache.Invalidate this drops one result, not a generation.
func (w *Wrapped[V]) Invalidate(ctx context.Context, args Args) error {
	if w.passthrough() {
		return nil
	}
	key, err := w.key(ctx, args)
	if err != nil {
		return err
	}
	if w.c.debugOn() {
		w.c.log.Info("invalidating key", Fields{"func": w.identity, "key": key})
	}
	return w.c.del(ctx, key)
}

// Key returns the store key Call would use for args, resolving (and if
// needed creating) generation counters. Passthrough wrappers return "".
func (w *Wrapped[V]) Key(ctx context.Context, args Args) (string, error) {
	if w.c == nil {
		return "", nil
	}
	return w.key(ctx, args)
}

func (w *Wrapped[V]) key(ctx context.Context, args Args) (string, error) {
	b, err := w.sig.bind(args)
	if err != nil {
		return "", err
	}
	res, err := w.c.resolve(ctx, w.gens, Params(b.named))
	if err != nil {
		return "", err
	}
	variadic, named := w.sig.keyArgs(b, w.exclude)
	return w.c.callKey(w.identity, variadic, named, res)
}

func (w *Wrapped[V]) genNames() []string {
	out := make([]string, len(w.gens))
	for i, g := range w.gens {
		out[i] = g.String()
	}
	return out
}
