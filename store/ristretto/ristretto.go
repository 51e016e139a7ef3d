// Package ristretto is an in-process store.Store over dgraph-io/ristretto.
//
// Ristretto may refuse writes under memory pressure. A dropped value is a
// cache miss; a dropped generation counter is re-initialized on next use,
// which only orphans the entries built with the lost counter.
package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/gencache/store"
)

type Store struct {
	c *rc.Cache

	// serializes read-modify-write for Add and Incr
	mu sync.Mutex
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost of an entry is its length in bytes.
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if b, ok, _ := s.Get(ctx, k); ok {
			out[k] = b
		}
	}
	return out, nil
}

// set waits for the buffered write so a following Get observes it.
func (s *Store) set(key string, value []byte, ttl time.Duration) {
	s.c.SetWithTTL(key, value, int64(len(value)), store.ClampTTL(ttl))
	s.c.Wait()
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.set(key, value, ttl)
	return nil
}

func (s *Store) SetMulti(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	ttl = store.ClampTTL(ttl)
	for k, v := range items {
		s.c.SetWithTTL(k, v, int64(len(v)), ttl)
	}
	s.c.Wait()
	return nil
}

func (s *Store) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok, _ := s.Get(ctx, key); ok {
		return false, nil
	}
	s.set(key, value, ttl)
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

// Incr refreshes the expiry on every increment.
func (s *Store) Incr(ctx context.Context, key string, delta uint64, ttl time.Duration) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := uint64(0)
	if b, ok, _ := s.Get(ctx, key); ok {
		v, err := store.ParseCounter(b)
		if err != nil {
			return 0, err
		}
		cur = v
	}
	cur += delta
	s.set(key, store.FormatCounter(cur), ttl)
	return cur, nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
