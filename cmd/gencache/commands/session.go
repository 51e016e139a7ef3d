package commands

import (
	"context"
	"fmt"
	"io"

	gomc "github.com/bradfitz/gomemcache/memcache"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/gencache"
	"github.com/unkn0wn-root/gencache/codec"
	"github.com/unkn0wn-root/gencache/genstore"
	"github.com/unkn0wn-root/gencache/internal/config"
	zaplog "github.com/unkn0wn-root/gencache/log/zap"
	"github.com/unkn0wn-root/gencache/store"
	memcachestore "github.com/unkn0wn-root/gencache/store/memcache"
	"github.com/unkn0wn-root/gencache/store/memory"
	redisstore "github.com/unkn0wn-root/gencache/store/redis"
)

// session is everything one command invocation needs.
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	gen   *genstore.KV
	cache gencache.Cache[string]
}

func (c *CLI) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.NewLoader().
		WithConfigPath(c.configPath).
		WithOverride(func(cfg *config.Config) {
			if cmd.Flags().Changed("backend") {
				cfg.Store.Backend = c.backend
			}
			if cmd.Flags().Changed("namespace") {
				cfg.Cache.Namespace = c.namespace
			}
			if c.debug {
				cfg.Log.Level = "debug"
			}
		}).
		Load()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	gen := genstore.NewKV(st, genstore.KVOptions{
		TTL:          cfg.Cache.GenerationTTL,
		BatchInit:    cfg.Cache.BatchInit,
		MaxKeyLength: cfg.Cache.MaxKeyLength,
	})
	cc, err := gencache.New[string](gencache.Options[string]{
		Store:        st,
		Codec:        codec.String{},
		GenStore:     gen,
		Logger:       zaplog.New(log),
		Namespace:    cfg.Cache.Namespace,
		MaxKeyLength: cfg.Cache.MaxKeyLength,
		Debug:        c.debug,
		CloseStore:   true,
	})
	if err != nil {
		_ = st.Close(cmd.Context())
		return nil, err
	}
	log.Debug("session opened",
		zap.String("backend", cfg.Store.Backend),
		zap.String("namespace", cfg.Cache.Namespace))
	return &session{cfg: cfg, log: log, gen: gen, cache: cc}, nil
}

func (s *session) Close(ctx context.Context) {
	if err := s.cache.Close(ctx); err != nil {
		s.log.Warn("close store", zap.Error(err))
	}
	_ = s.log.Sync()
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:        []string{cfg.Redis.Addr},
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.Timeout,
			ReadTimeout:  cfg.Redis.Timeout,
			WriteTimeout: cfg.Redis.Timeout,
		})
		st, err := redisstore.New(redisstore.Config{Client: rdb, CloseClient: true})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMemcache:
		mc := gomc.New(cfg.Memcache.Servers...)
		mc.Timeout = cfg.Memcache.Timeout
		st, err := memcachestore.New(memcachestore.Config{Client: mc, CloseClient: true})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMemory:
		return memory.New(memory.Options{}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}
