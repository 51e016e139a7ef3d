package gencache

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/gencache/codec"
	"github.com/unkn0wn-root/gencache/genstore"
	"github.com/unkn0wn-root/gencache/internal/keys"
	"github.com/unkn0wn-root/gencache/internal/wire"
	"github.com/unkn0wn-root/gencache/settings"
	"github.com/unkn0wn-root/gencache/store"
)

type cache[V any] struct {
	store      store.Store
	codec      codec.Codec[V]
	gen        genstore.GenStore
	settings   settings.Source
	log        Logger
	hooks      Hooks
	ns         string
	maxKeyLen  int
	defaultTTL time.Duration
	enabled    bool
	debug      bool
	closeStore bool
}

var _ Cache[struct{}] = (*cache[struct{}])(nil)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, errors.New("gencache: store is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("gencache: codec is required")
	}
	if opts.MaxKeyLength < 0 {
		return nil, errors.New("gencache: MaxKeyLength must be >= 0")
	}

	c := &cache[V]{
		store:      opts.Store,
		codec:      opts.Codec,
		ns:         opts.Namespace,
		enabled:    !opts.Disabled,
		debug:      opts.Debug,
		closeStore: opts.CloseStore,
		defaultTTL: store.ClampTTL(opts.DefaultTTL),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.settings = coalesce[settings.Source](opts.Settings, settings.Environ{})
	c.maxKeyLen = coalesce(opts.MaxKeyLength, keys.MaxLength)
	if c.ns != "" {
		c.log = WithFields(c.log, Fields{"namespace": c.ns})
	}

	if opts.GenStore != nil {
		c.gen = opts.GenStore
	} else {
		// counters live next to the values
		c.gen = genstore.NewKV(opts.Store, genstore.KVOptions{MaxKeyLength: c.maxKeyLen})
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	// gen store first (best effort)
	if c.gen != nil {
		_ = c.gen.Close(ctx)
	}
	if c.closeStore {
		return c.store.Close(ctx)
	}
	return nil
}

// debugOn is evaluated per call so the setting can be flipped at runtime.
func (c *cache[V]) debugOn() bool {
	return c.debug || settings.Bool(c.settings, settings.Debug, false)
}

func (c *cache[V]) BuildKey(ctx context.Context, l Lookup) (string, error) {
	gens, err := parseGenerations(l.Generations)
	if err != nil {
		return "", err
	}
	res, err := c.resolve(ctx, gens, l.Params)
	if err != nil {
		return "", err
	}
	return c.lookupKey(res, l.AddToKey)
}

func (c *cache[V]) Get(ctx context.Context, l Lookup) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	if l.Suppress.active(c.settings) {
		c.hooks.Suppressed(DirectIdentity)
		return zero, false, nil
	}
	key, err := c.BuildKey(ctx, l)
	if err != nil {
		return zero, false, err
	}
	v, ok, err := c.load(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if c.debugOn() {
		c.log.Debug("get", Fields{"key": key, "hit": ok})
	}
	if ok {
		c.hooks.Hit(DirectIdentity)
	} else {
		c.hooks.Miss(DirectIdentity)
	}
	return v, ok, nil
}

func (c *cache[V]) Set(ctx context.Context, value V, l Lookup, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	if l.Suppress.active(c.settings) {
		c.hooks.Suppressed(DirectIdentity)
		return nil
	}
	key, err := c.BuildKey(ctx, l)
	if err != nil {
		return err
	}
	if c.debugOn() {
		c.log.Debug("set", Fields{"key": key})
	}
	return c.save(ctx, key, value, ttl)
}

func (c *cache[V]) Delete(ctx context.Context, l Lookup) error {
	if !c.enabled {
		return nil
	}
	if l.Suppress.active(c.settings) {
		c.hooks.Suppressed(DirectIdentity)
		return nil
	}
	key, err := c.BuildKey(ctx, l)
	if err != nil {
		return err
	}
	if c.debugOn() {
		c.log.Debug("delete", Fields{"key": key})
	}
	return c.del(ctx, key)
}

func (c *cache[V]) Invalidate(ctx context.Context, generation string, params Params) (uint64, error) {
	if !c.enabled {
		return 0, nil
	}
	g, err := ParseGeneration(generation)
	if err != nil {
		return 0, err
	}
	sfx, _, err := suffix(g, params)
	if err != nil {
		return 0, err
	}
	v, err := c.gen.Bump(ctx, sfx)
	if err != nil {
		c.hooks.StoreError("bump", err)
		return 0, &StoreError{Op: "bump", Key: sfx, Err: err}
	}
	c.hooks.GenerationBumped(g.Name, sfx, v)
	if c.debugOn() {
		c.log.Debug("generation bumped", Fields{"generation": sfx, "value": v})
	}
	return v, nil
}

// load reads and decodes key. Unreadable entries are deleted and reported as
// a miss; only store failures are errors.
func (c *cache[V]) load(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.hooks.StoreError("get", err)
		return zero, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, key, "corrupt", err)
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, key, "value_decode", err)
		return zero, false, nil
	}
	return v, true, nil
}

func (c *cache[V]) selfHeal(ctx context.Context, key, reason string, cause error) {
	_ = c.store.Delete(ctx, key)
	c.hooks.SelfHeal(key, reason)
	c.log.Warn("dropped unreadable entry", Fields{"key": key, "reason": reason, "err": cause})
}

func (c *cache[V]) save(ctx context.Context, key string, value V, ttl time.Duration) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		c.hooks.StoreError("encode", err)
		return err
	}
	if err := c.store.Set(ctx, key, wire.Encode(payload), ttlOr(ttl, c.defaultTTL)); err != nil {
		c.hooks.StoreError("set", err)
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (c *cache[V]) del(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		c.hooks.StoreError("delete", err)
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
