package gencache

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/gencache/store/memory"
)

func TestNewScopeValidates(t *testing.T) {
	cc := newTestCache[string](t, newMem(t), nil)
	if _, err := NewScope(cc, []string{"ok", "bad:"}, 0); !errors.Is(err, ErrInvalidGeneration) {
		t.Fatalf("expected ErrInvalidGeneration, got %v", err)
	}
}

func TestScopeDirectOps(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache[string](t, newMem(t), nil)
	tpl, err := NewScope(cc, []string{"templates", "template_user:user_id"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	p := Params{"user_id": 123}

	if err := tpl.Set(ctx, "<html>", p, "my/path.html"); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := tpl.Get(ctx, p, "my/path.html"); err != nil || !ok || v != "<html>" {
		t.Fatalf("v=%q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := tpl.Get(ctx, p, "other.html"); ok {
		t.Fatal("different suffix must miss")
	}
	key, _ := tpl.BuildKey(ctx, p, "my/path.html")
	if !strings.HasPrefix(key, "templates=") || !strings.HasSuffix(key, ",my/path.html") {
		t.Fatalf("unexpected scope key %q", key)
	}

	if err := tpl.Delete(ctx, p, "my/path.html"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := tpl.Get(ctx, p, "my/path.html"); ok {
		t.Fatal("expected miss after Delete")
	}

	g := tpl.Generations()
	g[0] = "mutated"
	if tpl.Generations()[0] != "templates" {
		t.Fatal("Generations must return a copy")
	}
}

func TestScopeInvalidateInfersGeneration(t *testing.T) {
	ctx := context.Background()
	h := newRecHooks()
	cc := newTestCache[string](t, newMem(t), func(o *Options[string]) { o.Hooks = h })
	tpl, _ := NewScope(cc, []string{"templates", "template_user:user_id"}, 0)

	_ = tpl.Set(ctx, "u1", Params{"user_id": 1})
	_ = tpl.Set(ctx, "u2", Params{"user_id": 2})

	if _, err := tpl.Invalidate(ctx, "", Params{"user_id": 1}); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.bumps["user_id:1"]; !ok {
		t.Fatalf("expected user_id:1 to be bumped, got %v", h.bumps)
	}
	if len(h.bumpedGens) != 1 || h.bumpedGens[0] != "template_user" {
		t.Fatalf("hook should name the generation, got %v", h.bumpedGens)
	}
	if _, ok, _ := tpl.Get(ctx, Params{"user_id": 1}); ok {
		t.Fatal("user 1 must be invalidated")
	}
	if _, ok, _ := tpl.Get(ctx, Params{"user_id": 2}); !ok {
		t.Fatal("user 2 must survive")
	}

	if _, err := tpl.Invalidate(ctx, "", Params{"unrelated": 1}); !errors.Is(err, ErrNoGeneration) {
		t.Fatalf("expected ErrNoGeneration, got %v", err)
	}

	// an explicit generation bypasses inference
	if _, err := tpl.Invalidate(ctx, "templates", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := tpl.Get(ctx, Params{"user_id": 2}); ok {
		t.Fatal("bumping templates must invalidate the whole scope")
	}
}

func TestScopeWrap(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	mem := memory.New(memory.Options{Now: func() time.Time { return now }})
	t.Cleanup(func() { _ = mem.Close(ctx) })
	cc := newTestCache[string](t, mem, nil)
	sc, _ := NewScope(cc, []string{"pages"}, time.Minute)
	fn, calls := counting()

	w, err := sc.Wrap(fn, WrapOptions{Name: "render", Generations: []string{"nav"}})
	_, _, line, _ := runtime.Caller(0)
	if err != nil {
		t.Fatal(err)
	}
	if w.Identity() != "render:"+strconv.Itoa(line-1) {
		t.Fatalf("identity %q should carry the caller line %d", w.Identity(), line-1)
	}

	key, _ := w.Key(ctx, Pos(1))
	if !strings.Contains(key, "[pages="+epochGen+",nav="+epochGen+"]") {
		t.Fatalf("scope generations must come first: %q", key)
	}

	mustCall(t, w, Pos(1))
	mustCall(t, w, Pos(1))
	if *calls != 1 {
		t.Fatalf("runs=%d", *calls)
	}
	now = now.Add(2 * time.Minute)
	mustCall(t, w, Pos(1))
	if *calls != 2 {
		t.Fatal("wrapped entries should inherit the scope TTL")
	}

	if _, err := sc.Invalidate(ctx, "pages", nil); err != nil {
		t.Fatal(err)
	}
	mustCall(t, w, Pos(1))
	if *calls != 3 {
		t.Fatal("bumping a scope generation must reach wrapped functions")
	}
}

func TestScopeSetTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	mem := memory.New(memory.Options{Now: func() time.Time { return now }})
	t.Cleanup(func() { _ = mem.Close(ctx) })
	cc := newTestCache[string](t, mem, nil)
	sc, _ := NewScope(cc, []string{"pages"}, time.Minute)

	_ = sc.SetTTL(ctx, "long", time.Hour, nil, "a")
	_ = sc.Set(ctx, "short", nil, "b")
	now = now.Add(10 * time.Minute)

	if _, ok, _ := sc.Get(ctx, nil, "a"); !ok {
		t.Fatal("explicit TTL entry should be alive")
	}
	if _, ok, _ := sc.Get(ctx, nil, "b"); ok {
		t.Fatal("scope TTL entry should have expired")
	}
}
