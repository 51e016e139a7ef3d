// Package sloghooks reports cache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/gencache"
)

type Options struct {
	// Hits and misses are only logged when set; they are high volume.
	LogHitsMisses bool

	// Sampling to avoid floods; 0/1 = log all.
	HitMissEvery  uint64
	SelfHealEvery uint64

	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitMissCtr  atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ gencache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(identity string) {
	if h.l == nil || !h.opts.LogHitsMisses || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("gencache.hit", "func", identity)
}

func (h *Hooks) Miss(identity string) {
	if h.l == nil || !h.opts.LogHitsMisses || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("gencache.miss", "func", identity)
}

func (h *Hooks) Suppressed(identity string) {
	if h.l == nil {
		return
	}
	h.l.Debug("gencache.suppressed", "func", identity)
}

func (h *Hooks) GenerationBumped(generation, suffix string, value uint64) {
	if h.l == nil {
		return
	}
	h.l.Info("gencache.generation_bumped",
		"generation", generation,
		"counter", suffix,
		"value", value)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("gencache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("gencache.store_error",
		"op", op,
		"err", err)
}
