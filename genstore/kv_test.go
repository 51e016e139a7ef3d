package genstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/gencache/internal/keys"
	"github.com/unkn0wn-root/gencache/store"
	"github.com/unkn0wn-root/gencache/store/memory"
)

// recStore records round-trips on top of an in-process store.
type recStore struct {
	store.Store

	mu        sync.Mutex
	getMulti  int
	adds      []string
	setMulti  [][]string
	beforeAdd func(key string) // runs before Add reaches the inner store
}

func (r *recStore) GetMulti(ctx context.Context, ks []string) (map[string][]byte, error) {
	r.mu.Lock()
	r.getMulti++
	r.mu.Unlock()
	return r.Store.GetMulti(ctx, ks)
}

func (r *recStore) Add(ctx context.Context, key string, v []byte, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	r.adds = append(r.adds, key)
	hook := r.beforeAdd
	r.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return r.Store.Add(ctx, key, v, ttl)
}

func (r *recStore) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	var ks []string
	for k := range items {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	r.mu.Lock()
	r.setMulti = append(r.setMulti, ks)
	r.mu.Unlock()
	return r.Store.SetMulti(ctx, items, ttl)
}

var testNow = time.Unix(1_700_000_000, 123000)

func newKV(t *testing.T, opts KVOptions) (*KV, *recStore) {
	t.Helper()
	mem := memory.New(memory.Options{})
	t.Cleanup(func() { _ = mem.Close(context.Background()) })
	rs := &recStore{Store: mem}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return NewKV(rs, opts), rs
}

func TestKVKeyLayout(t *testing.T) {
	g, _ := newKV(t, KVOptions{})
	if got := g.Key("user_id:42"); got != "_gen_user_id:42" {
		t.Fatalf("key = %q", got)
	}
	long := g.Key(string(make([]byte, 400)))
	if len(long) != keys.MaxLength {
		t.Fatalf("long key not bounded: %d", len(long))
	}
}

func TestKVSnapshotInitializesOnce(t *testing.T) {
	ctx := context.Background()
	g, rs := newKV(t, KVOptions{})

	got, err := g.Snapshot(ctx, []string{"a", "b", "a"})
	if err != nil {
		t.Fatal(err)
	}
	want := uint64(testNow.UnixMicro())
	if len(got) != 2 || got["a"] != want || got["b"] != want {
		t.Fatalf("got=%v want both=%d", got, want)
	}
	if rs.getMulti != 1 {
		t.Fatalf("expected one GetMulti, got %d", rs.getMulti)
	}

	// stored as ASCII decimal under the generation key
	b, ok, _ := rs.Get(ctx, "_gen_a")
	if !ok || string(b) != "1700000000000123" {
		t.Fatalf("stored counter %q ok=%v", b, ok)
	}

	// second snapshot reads, never re-initializes
	rs.adds = nil
	g.now = func() time.Time { return testNow.Add(time.Hour) }
	again, _ := g.Snapshot(ctx, []string{"a", "b"})
	if again["a"] != want || len(rs.adds) != 0 {
		t.Fatalf("re-initialized: %v adds=%v", again, rs.adds)
	}
}

func TestKVSnapshotAddRaceKeepsWinner(t *testing.T) {
	ctx := context.Background()
	g, rs := newKV(t, KVOptions{})

	rs.beforeAdd = func(key string) {
		_ = rs.Store.Set(ctx, key, store.FormatCounter(777), 0)
	}
	got, err := g.Snapshot(ctx, []string{"g"})
	if err != nil {
		t.Fatal(err)
	}
	if got["g"] != 777 {
		t.Fatalf("lost race must adopt the stored counter, got %d", got["g"])
	}
}

func TestKVBatchInitWritesOnlyMissing(t *testing.T) {
	ctx := context.Background()
	g, rs := newKV(t, KVOptions{BatchInit: true})

	if _, err := g.Bump(ctx, "present"); err != nil {
		t.Fatal(err)
	}
	got, err := g.Snapshot(ctx, []string{"present", "m1", "m2"})
	if err != nil {
		t.Fatal(err)
	}
	if got["present"] != 1 {
		t.Fatalf("present counter changed: %d", got["present"])
	}
	if len(rs.setMulti) != 1 {
		t.Fatalf("expected one SetMulti, got %d", len(rs.setMulti))
	}
	if w := rs.setMulti[0]; len(w) != 2 || w[0] != "_gen_m1" || w[1] != "_gen_m2" {
		t.Fatalf("SetMulti wrote %v", w)
	}
	if len(rs.adds) != 0 {
		t.Fatalf("batch mode must not Add, got %v", rs.adds)
	}
}

func TestKVBumpCreatesAndIncrements(t *testing.T) {
	ctx := context.Background()
	g, _ := newKV(t, KVOptions{})

	v, err := g.Bump(ctx, "never")
	if err != nil || v != 1 {
		t.Fatalf("bump of absent counter: v=%d err=%v", v, err)
	}

	before, _ := g.Snapshot(ctx, []string{"x"})
	after, _ := g.Bump(ctx, "x")
	if after != before["x"]+1 {
		t.Fatalf("bump: %d -> %d", before["x"], after)
	}
	snap, _ := g.Snapshot(ctx, []string{"x"})
	if snap["x"] != after {
		t.Fatalf("snapshot after bump: %d want %d", snap["x"], after)
	}
}

func TestKVNonNumericCounter(t *testing.T) {
	ctx := context.Background()
	g, rs := newKV(t, KVOptions{})
	_ = rs.Set(ctx, "_gen_bad", []byte("oops"), 0)

	if _, err := g.Snapshot(ctx, []string{"bad"}); !errors.Is(err, store.ErrNotNumeric) {
		t.Fatalf("snapshot: expected ErrNotNumeric, got %v", err)
	}
	if _, err := g.Bump(ctx, "bad"); !errors.Is(err, store.ErrNotNumeric) {
		t.Fatalf("bump: expected ErrNotNumeric, got %v", err)
	}
}

func TestKVEmptySnapshot(t *testing.T) {
	g, rs := newKV(t, KVOptions{})
	got, err := g.Snapshot(context.Background(), nil)
	if err != nil || len(got) != 0 || rs.getMulti != 0 {
		t.Fatalf("got=%v err=%v getMulti=%d", got, err, rs.getMulti)
	}
}
