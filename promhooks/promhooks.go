// Package promhooks exports cache events as prometheus counters.
//
//	reg := prometheus.NewRegistry()
//	c, _ := gencache.New[User](gencache.Options[User]{
//	    Store: st,
//	    Codec: codec.JSON[User]{},
//	    Hooks: promhooks.New(reg, promhooks.Options{Namespace: "app"}),
//	})
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/unkn0wn-root/gencache"
)

type Options struct {
	Namespace string
	Subsystem string // default "gencache"

	// PerFunction labels hit/miss/suppressed counters with the wrapped
	// function identity. Off by default to keep cardinality bounded.
	PerFunction bool
}

// Hooks counts cache events. All methods are safe for concurrent use.
type Hooks struct {
	hits       *prometheus.CounterVec
	misses     *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	bumps      *prometheus.CounterVec
	selfHeals  *prometheus.CounterVec
	storeErrs  *prometheus.CounterVec

	perFunc bool
}

var _ gencache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them with reg. A nil reg leaves
// them unregistered, which is handy in tests.
func New(reg prometheus.Registerer, opts Options) *Hooks {
	sub := opts.Subsystem
	if sub == "" {
		sub = "gencache"
	}
	f := promauto.With(reg)
	vec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: sub,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &Hooks{
		hits:       vec("hits_total", "Lookups served from the store", "func"),
		misses:     vec("misses_total", "Lookups that found no usable entry", "func"),
		suppressed: vec("suppressed_total", "Calls that bypassed the cache because of a suppress rule", "func"),
		bumps:      vec("generation_bumps_total", "Generation counter increments", "generation"),
		selfHeals:  vec("self_heals_total", "Unreadable entries deleted on read", "reason"),
		storeErrs:  vec("store_errors_total", "Failed store calls", "op"),
		perFunc:    opts.PerFunction,
	}
}

func (h *Hooks) fn(identity string) string {
	if h.perFunc {
		return identity
	}
	return ""
}

func (h *Hooks) Hit(identity string)        { h.hits.WithLabelValues(h.fn(identity)).Inc() }
func (h *Hooks) Miss(identity string)       { h.misses.WithLabelValues(h.fn(identity)).Inc() }
func (h *Hooks) Suppressed(identity string) { h.suppressed.WithLabelValues(h.fn(identity)).Inc() }

// GenerationBumped labels by generation name only; parameter values never
// become label values.
func (h *Hooks) GenerationBumped(generation, _ string, _ uint64) {
	h.bumps.WithLabelValues(generation).Inc()
}

func (h *Hooks) SelfHeal(_ string, reason string) { h.selfHeals.WithLabelValues(reason).Inc() }
func (h *Hooks) StoreError(op string, _ error)    { h.storeErrs.WithLabelValues(op).Inc() }
