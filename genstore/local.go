package genstore

import (
	"context"
	"sync"
	"time"
)

type localGenEntry struct {
	Gen       uint64
	UpdatedAt time.Time
}

// Local keeps counters in-process. Counters are not shared with other
// processes, so it only fits single-process deployments and tests.
// Optional cleanup loop prunes counters untouched for longer than retention;
// a pruned counter is re-created from the clock on next use.
type Local struct {
	mu     sync.Mutex
	gens   map[string]localGenEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	now       func() time.Time
	retention time.Duration
}

var _ GenStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		gens:      make(map[string]localGenEntry),
		now:       time.Now,
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

// Snapshot takes the lock once for all suffixes; reads refresh UpdatedAt so
// counters in use are never pruned.
func (s *Local) Snapshot(_ context.Context, suffixes []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(suffixes))
	now := s.now()
	s.mu.Lock()
	for _, k := range suffixes {
		e, ok := s.gens[k]
		if !ok {
			e.Gen = InitialValue(now)
		}
		e.UpdatedAt = now
		s.gens[k] = e
		out[k] = e.Gen
	}
	s.mu.Unlock()
	return out, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := s.now()
	s.mu.Lock()
	e := s.gens[k]
	e.Gen++
	e.UpdatedAt = now
	s.gens[k] = e
	s.mu.Unlock()
	return e.Gen, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.gens {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of live counters.
func (s *Local) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gens)
}

func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}
