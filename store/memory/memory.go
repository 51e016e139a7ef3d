// Package memory is an in-process store.Store for tests and for environments
// without a networked cache. Values are not shared between processes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/gencache/store"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// Store keeps entries in a map guarded by a mutex.
// An optional sweeper drops expired entries; reads ignore them regardless.
type Store struct {
	mu     sync.RWMutex
	m      map[string]entry
	closed bool

	now    func() time.Time
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

var _ store.Store = (*Store)(nil)

// Options tune the in-process store.
type Options struct {
	SweepInterval time.Duration    // 0 disables the background sweeper
	Now           func() time.Time // nil => time.Now
}

func New(opts Options) *Store {
	s := &Store{m: make(map[string]entry), now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.SweepInterval > 0 {
		s.ticker = time.NewTicker(opts.SweepInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Sweep()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Store) expiry(ttl time.Duration) time.Time {
	ttl = store.ClampTTL(ttl)
	if ttl == 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, store.ErrClosed
	}
	e, ok := s.m[key]
	if !ok || e.expired(now) {
		return nil, false, nil
	}
	return e.v, true, nil
}

// GetMulti reads all keys under a single read lock.
func (s *Store) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	now := s.now()
	out := make(map[string][]byte, len(keys))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	for _, k := range keys {
		if e, ok := s.m[k]; ok && !e.expired(now) {
			out[k] = e.v
		}
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	exp := s.expiry(ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.m[key] = entry{v: value, exp: exp}
	return nil
}

func (s *Store) SetMulti(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	exp := s.expiry(ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	for k, v := range items {
		s.m[k] = entry{v: v, exp: exp}
	}
	return nil
}

func (s *Store) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	now := s.now()
	exp := s.expiry(ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, store.ErrClosed
	}
	if e, ok := s.m[key]; ok && !e.expired(now) {
		return false, nil
	}
	s.m[key] = entry{v: value, exp: exp}
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	delete(s.m, key)
	return nil
}

// Incr keeps the existing expiry of a live counter; ttl only applies on create.
func (s *Store) Incr(_ context.Context, key string, delta uint64, ttl time.Duration) (uint64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, store.ErrClosed
	}
	e, ok := s.m[key]
	if !ok || e.expired(now) {
		s.m[key] = entry{v: store.FormatCounter(delta), exp: s.expiry(ttl)}
		return delta, nil
	}
	cur, err := store.ParseCounter(e.v)
	if err != nil {
		return 0, err
	}
	cur += delta
	e.v = store.FormatCounter(cur)
	s.m[key] = e
	return cur, nil
}

// Sweep drops expired entries.
func (s *Store) Sweep() {
	now := s.now()
	s.mu.Lock()
	for k, e := range s.m {
		if e.expired(now) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.stopCh != nil {
		close(s.stopCh)
		s.ticker.Stop()
		s.wg.Wait()
	}
	return nil
}
