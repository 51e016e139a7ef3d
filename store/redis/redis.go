package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/gencache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// Redis shares values and generation counters across processes.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// GetMulti issues a single MGET. nil replies are misses and are omitted.
func (s *Redis) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
		case string:
			out[keys[i]] = []byte(vv)
		case []byte:
			out[keys[i]] = vv
		default:
			out[keys[i]] = []byte(fmt.Sprint(vv))
		}
	}
	return out, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, store.ClampTTL(ttl)).Err()
}

// SetMulti pipelines one SET per item; MSET cannot carry a TTL.
func (s *Redis) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	ttl = store.ClampTTL(ttl)
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for k, v := range items {
			p.Set(ctx, k, v, ttl)
		}
		return nil
	})
	return err
}

func (s *Redis) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, store.ClampTTL(ttl)).Result()
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Incr relies on INCRBY creating missing keys at 0. When ttl > 0, INCRBY and
// EXPIRE are pipelined in one round-trip, so the expiry is refreshed on every
// increment.
func (s *Redis) Incr(ctx context.Context, key string, delta uint64, ttl time.Duration) (uint64, error) {
	ttl = store.ClampTTL(ttl)
	if ttl == 0 {
		v, err := s.rdb.IncrBy(ctx, key, int64(delta)).Result()
		if err != nil {
			return 0, mapIncrErr(err)
		}
		return uint64(v), nil
	}

	var incr *goredis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.IncrBy(ctx, key, int64(delta))
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, mapIncrErr(err)
	}
	return uint64(incr.Val()), nil
}

func mapIncrErr(err error) error {
	if strings.Contains(err.Error(), "not an integer") {
		return fmt.Errorf("%w: %v", store.ErrNotNumeric, err)
	}
	return err
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
