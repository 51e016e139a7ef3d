package gencache

import (
	"context"
	"time"
)

// Scoper is the surface shared by Scope and NopScope.
type Scoper[V any] interface {
	BuildKey(ctx context.Context, params Params, addToKey ...string) (string, error)
	Get(ctx context.Context, params Params, addToKey ...string) (V, bool, error)
	Set(ctx context.Context, value V, params Params, addToKey ...string) error
	Delete(ctx context.Context, params Params, addToKey ...string) error
	Invalidate(ctx context.Context, generation string, params Params) (uint64, error)
	Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error)
}

// Scope fixes a set of generations and a default TTL for one use site:
//
//	tpl, _ := gencache.NewScope(c, []string{"templates", "template_user:user_id"}, 5*time.Minute)
//	html, ok, err := tpl.Get(ctx, gencache.Params{"user_id": 123}, "my/path.html")
//	_, err = tpl.Invalidate(ctx, "", gencache.Params{"user_id": 123}) // infers template_user:user_id
type Scope[V any] struct {
	c    Cache[V]
	gens []string
	ttl  time.Duration
}

var _ Scoper[struct{}] = (*Scope[struct{}])(nil)

func NewScope[V any](c Cache[V], generations []string, ttl time.Duration) (*Scope[V], error) {
	if _, err := parseGenerations(generations); err != nil {
		return nil, err
	}
	return &Scope[V]{c: c, gens: append([]string(nil), generations...), ttl: ttl}, nil
}

// Generations returns the scope's generations.
func (s *Scope[V]) Generations() []string { return append([]string(nil), s.gens...) }

func (s *Scope[V]) lookup(params Params, addToKey []string) Lookup {
	return Lookup{Generations: s.gens, Params: params, AddToKey: addToKey}
}

func (s *Scope[V]) BuildKey(ctx context.Context, params Params, addToKey ...string) (string, error) {
	return s.c.BuildKey(ctx, s.lookup(params, addToKey))
}

func (s *Scope[V]) Get(ctx context.Context, params Params, addToKey ...string) (V, bool, error) {
	return s.c.Get(ctx, s.lookup(params, addToKey))
}

// Set stores value with the scope TTL.
func (s *Scope[V]) Set(ctx context.Context, value V, params Params, addToKey ...string) error {
	return s.c.Set(ctx, value, s.lookup(params, addToKey), s.ttl)
}

// SetTTL is Set with an explicit TTL.
func (s *Scope[V]) SetTTL(ctx context.Context, value V, ttl time.Duration, params Params, addToKey ...string) error {
	return s.c.Set(ctx, value, s.lookup(params, addToKey), ttl)
}

func (s *Scope[V]) Delete(ctx context.Context, params Params, addToKey ...string) error {
	return s.c.Delete(ctx, s.lookup(params, addToKey))
}

// Invalidate bumps generation. With generation == "", the first scope
// generation whose dynamic parameter appears in params is bumped.
func (s *Scope[V]) Invalidate(ctx context.Context, generation string, params Params) (uint64, error) {
	if generation == "" {
		g, err := s.infer(params)
		if err != nil {
			return 0, err
		}
		generation = g
	}
	return s.c.Invalidate(ctx, generation, params)
}

func (s *Scope[V]) infer(params Params) (string, error) {
	for _, raw := range s.gens {
		g, err := ParseGeneration(raw)
		if err != nil {
			return "", err
		}
		if !g.Dynamic() {
			continue
		}
		if _, ok := params[g.Param]; ok {
			return raw, nil
		}
	}
	return "", ErrNoGeneration
}

// Wrap wraps fn on the scope generations followed by opts.Generations.
// opts.TTL defaults to the scope TTL.
func (s *Scope[V]) Wrap(fn Func[V], opts WrapOptions) (*Wrapped[V], error) {
	opts.Generations = append(append([]string(nil), s.gens...), opts.Generations...)
	if opts.TTL == 0 {
		opts.TTL = s.ttl
	}
	opts.callerSkip++
	return s.c.Wrap(fn, opts)
}
