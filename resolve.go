package gencache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/gencache/internal/keys"
)

// Params maps argument names to values. Dynamic generations read their
// parameter from it.
type Params map[string]any

// resolved is a generation with its counter for one call.
type resolved struct {
	gen    Generation
	suffix string // counter identity in the store: name, or param:value
	label  string // rendering in cache keys
	value  uint64
}

// Suffix returns the counter identity of g for params: the name for static
// generations, "param:value" for dynamic ones. Dynamic generations sharing a
// parameter share counters.
func (g Generation) Suffix(params Params) (string, error) {
	sfx, _, err := suffix(g, params)
	return sfx, err
}

// suffix also returns the label rendered in keys, which unlike the suffix
// names the generation.
func suffix(g Generation, params Params) (sfx, label string, err error) {
	if !g.Dynamic() {
		return g.Name, g.String(), nil
	}
	v, ok := params[g.Param]
	if !ok {
		return "", "", &MissingParamError{Generation: g.String(), Param: g.Param}
	}
	cv, err := keys.Coerce(v)
	if err != nil {
		return "", "", fmt.Errorf("%w: generation %q: %v", ErrBadArgs, g.String(), err)
	}
	return g.Param + ":" + cv, g.String() + "(" + cv + ")", nil
}

// resolve returns the current counter of every generation, in declaration
// order, initializing counters that do not exist yet. One Snapshot call is
// made regardless of how many generations are involved.
func (c *cache[V]) resolve(ctx context.Context, gens []Generation, params Params) ([]resolved, error) {
	if len(gens) == 0 {
		return nil, nil
	}
	out := make([]resolved, len(gens))
	suffixes := make([]string, len(gens))
	for i, g := range gens {
		sfx, label, err := suffix(g, params)
		if err != nil {
			return nil, err
		}
		out[i] = resolved{gen: g, suffix: sfx, label: label}
		suffixes[i] = sfx
	}

	vals, err := c.gen.Snapshot(ctx, suffixes)
	if err != nil {
		c.hooks.StoreError("snapshot", err)
		return nil, &StoreError{Op: "snapshot", Err: err}
	}
	for i := range out {
		v, ok := vals[out[i].suffix]
		if !ok {
			err := fmt.Errorf("generation store returned no counter for %q", out[i].suffix)
			c.hooks.StoreError("snapshot", err)
			return nil, &StoreError{Op: "snapshot", Err: err}
		}
		out[i].value = v
	}

	if c.debugOn() {
		f := make(Fields, len(out))
		for _, r := range out {
			f[r.suffix] = r.value
		}
		c.log.Debug("generations resolved", f)
	}
	return out, nil
}
