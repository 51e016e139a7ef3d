// Package memcache adapts a gomemcache client to store.Store.
//
// The memcache client API has no context support; ctx is only checked for
// cancellation before each round-trip.
package memcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomc "github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/gencache/store"
)

var ErrNilClient = errors.New("memcache store: nil client")

// Client is the subset of *memcache.Client used by the store.
type Client interface {
	Get(key string) (*gomc.Item, error)
	GetMulti(keys []string) (map[string]*gomc.Item, error)
	Set(item *gomc.Item) error
	Add(item *gomc.Item) error
	Delete(key string) error
	Increment(key string, delta uint64) (uint64, error)
}

var _ Client = (*gomc.Client)(nil)

type Memcache struct {
	c           Client
	closeClient bool
}

var _ store.Store = (*Memcache)(nil)

type Config struct {
	Client      Client
	CloseClient bool
}

func New(cfg Config) (*Memcache, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Memcache{c: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// NewServers builds a client over the given "host:port" servers.
func NewServers(servers ...string) (*Memcache, error) {
	if len(servers) == 0 {
		return nil, errors.New("memcache store: no servers")
	}
	return New(Config{Client: gomc.New(servers...), CloseClient: true})
}

// expiration converts ttl to memcache's relative seconds. Sub-second TTLs
// round up to 1s because 0 means "never expire".
func expiration(ttl time.Duration) int32 {
	ttl = store.ClampTTL(ttl)
	if ttl == 0 {
		return 0
	}
	secs := int32(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}

func (s *Memcache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	it, err := s.c.Get(key)
	if errors.Is(err, gomc.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (s *Memcache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.c.GetMulti(keys)
	if err != nil {
		return nil, err
	}
	for k, it := range items {
		out[k] = it.Value
	}
	return out, nil
}

func (s *Memcache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.c.Set(&gomc.Item{Key: key, Value: value, Expiration: expiration(ttl)})
}

// SetMulti issues one set per item; the text protocol has no multi-set.
func (s *Memcache) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	exp := expiration(ttl)
	var errs []error
	for k, v := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.c.Set(&gomc.Item{Key: k, Value: v, Expiration: exp}); err != nil {
			errs = append(errs, fmt.Errorf("set %q: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Memcache) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.c.Add(&gomc.Item{Key: key, Value: value, Expiration: expiration(ttl)})
	if errors.Is(err, gomc.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Memcache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.c.Delete(key); err != nil && !errors.Is(err, gomc.ErrCacheMiss) {
		return err
	}
	return nil
}

// Incr uses the server's incr. memcache does not create missing counters, so a
// miss falls back to add(delta); losing that race means another writer created
// the counter and incr is retried once.
func (s *Memcache) Incr(ctx context.Context, key string, delta uint64, ttl time.Duration) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.c.Increment(key, delta)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, gomc.ErrCacheMiss) {
		return 0, mapIncrErr(err)
	}

	err = s.c.Add(&gomc.Item{Key: key, Value: store.FormatCounter(delta), Expiration: expiration(ttl)})
	if err == nil {
		return delta, nil
	}
	if !errors.Is(err, gomc.ErrNotStored) {
		return 0, err
	}
	v, err = s.c.Increment(key, delta)
	if err != nil {
		return 0, mapIncrErr(err)
	}
	return v, nil
}

func mapIncrErr(err error) error {
	if strings.Contains(err.Error(), "non-numeric") {
		return fmt.Errorf("%w: %v", store.ErrNotNumeric, err)
	}
	return err
}

// Close closes the client when owned and when the client version supports it.
func (s *Memcache) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if c, ok := s.c.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
