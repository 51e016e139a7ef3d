package gencache

import (
	"context"
	"testing"
)

type entry struct {
	msg string
	f   Fields
}

type captureLogger struct{ entries []entry }

func (c *captureLogger) Debug(m string, f Fields) { c.entries = append(c.entries, entry{m, f}) }
func (c *captureLogger) Info(m string, f Fields)  { c.entries = append(c.entries, entry{m, f}) }
func (c *captureLogger) Warn(m string, f Fields)  { c.entries = append(c.entries, entry{m, f}) }
func (c *captureLogger) Error(m string, f Fields) { c.entries = append(c.entries, entry{m, f}) }

func TestWithFields(t *testing.T) {
	base := &captureLogger{}
	l := WithFields(WithFields(base, Fields{"a": 1, "b": 1}), Fields{"b": 2})

	l.Info("x", Fields{"c": 3})
	l.Warn("y", Fields{"a": "entry wins"})

	if len(base.entries) != 2 {
		t.Fatalf("entries=%d", len(base.entries))
	}
	got := base.entries[0].f
	if got["a"] != 1 || got["b"] != 2 || got["c"] != 3 {
		t.Fatalf("merged fields %v", got)
	}
	if base.entries[1].f["a"] != "entry wins" {
		t.Fatalf("per-entry field should win: %v", base.entries[1].f)
	}
	if WithFields(base, nil) != Logger(base) {
		t.Fatal("empty base should return the logger unchanged")
	}
}

func TestNamespaceInLogs(t *testing.T) {
	log := &captureLogger{}
	cc := newTestCache[article](t, newMem(t), func(o *Options[article]) {
		o.Logger = log
		o.Namespace = "blog"
		o.Debug = true
	})
	_, _, _ = cc.Get(context.Background(), Lookup{Generations: []string{"g"}})

	if len(log.entries) == 0 {
		t.Fatal("debug mode should log")
	}
	for _, e := range log.entries {
		if e.f["namespace"] != "blog" {
			t.Fatalf("%q lacks namespace: %v", e.msg, e.f)
		}
	}
}
