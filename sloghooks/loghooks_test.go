package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{})

	h.Hit("f:1")
	h.Miss("f:1")
	assert.Empty(t, buf.String(), "hits and misses are opt-in")

	h.Suppressed("f:1")
	h.GenerationBumped("profile", "user_id:42", 3)
	h.SelfHeal("secret-key", "corrupt")
	h.StoreError("get", errors.New("down"))

	out := buf.String()
	assert.Contains(t, out, "gencache.suppressed")
	assert.Contains(t, out, "generation=profile")
	assert.Contains(t, out, "counter=user_id:42")
	assert.Contains(t, out, "value=3")
	assert.Contains(t, out, "reason=corrupt")
	assert.NotContains(t, out, "secret-key")
	assert.Contains(t, out, "op=get")
	assert.Contains(t, out, "err=down")
}

func TestSamplingAndRedact(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{
		LogHitsMisses: true,
		HitMissEvery:  3,
		Redact:        func(string) string { return "REDACTED" },
	})

	for i := 0; i < 6; i++ {
		h.Hit("f")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "gencache.hit"))

	h.SelfHeal("k", "value_decode")
	assert.Contains(t, buf.String(), "key=REDACTED")
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{LogHitsMisses: true})
	assert.NotPanics(t, func() {
		h.Hit("x")
		h.StoreError("set", errors.New("x"))
	})
}
