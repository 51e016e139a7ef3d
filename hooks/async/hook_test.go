package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(e string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) Hit(id string)                          { r.add("hit " + id) }
func (r *recorder) Miss(id string)                         { r.add("miss " + id) }
func (r *recorder) Suppressed(id string)                   { r.add("suppressed " + id) }
func (r *recorder) GenerationBumped(g, s string, _ uint64) { r.add("bump " + g + " " + s) }
func (r *recorder) SelfHeal(_ string, reason string)       { r.add("heal " + reason) }
func (r *recorder) StoreError(op string, _ error)          { r.add("err " + op) }

func TestDeliversAllEventsBeforeClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 16)

	h.Hit("f:1")
	h.Miss("f:1")
	h.Suppressed("f:1")
	h.GenerationBumped("profile", "user_id:7", 2)
	h.SelfHeal("k", "corrupt")
	h.StoreError("get", errors.New("down"))
	h.Close()

	assert.Equal(t, []string{"hit f:1", "miss f:1", "suppressed f:1", "bump profile user_id:7", "heal corrupt", "err get"}, rec.events)
	assert.Zero(t, h.Dropped())
}

func TestDropsWhenFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	for i := 0; i < 10; i++ {
		h.Hit("f")
	}
	// at most one in flight and one queued
	assert.GreaterOrEqual(t, h.Dropped(), uint64(8))
	close(rec.block)
	h.Close()
	require.LessOrEqual(t, len(rec.events), 2)
}

func TestEventsAfterCloseAreDropped(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 2, 4)
	h.Close()
	h.Close()

	assert.NotPanics(t, func() { h.Miss("late") })
	assert.Equal(t, uint64(1), h.Dropped())
	assert.Empty(t, rec.events)
}

func TestNilInner(t *testing.T) {
	h := New(nil, 0, 0)
	h.Hit("x")
	h.Close()
}
