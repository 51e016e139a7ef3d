package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 240, cfg.Cache.MaxKeyLength)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gencache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: redis
  redis:
    addr: cache:6379
    db: 2
cache:
  namespace: blog
  generation_ttl: 24h
log:
  level: debug
`), 0o600))

	t.Setenv("GENCACHE_STORE_REDIS_DB", "5")
	t.Setenv("GENCACHE_CACHE_BATCH_INIT", "true")
	t.Setenv("GENCACHE_LOG_FORMAT", "json")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 5, cfg.Store.Redis.DB, "env wins over file")
	assert.Equal(t, time.Second, cfg.Store.Redis.Timeout, "defaults survive")
	assert.Equal(t, "blog", cfg.Cache.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.Cache.GenerationTTL)
	assert.True(t, cfg.Cache.BatchInit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvSlicesAndPrefix(t *testing.T) {
	l := NewLoader().WithEnvPrefix("X")
	l.lookupEnv = func(k string) (string, bool) {
		v, ok := map[string]string{
			"X_STORE_BACKEND":          "memcache",
			"X_STORE_MEMCACHE_SERVERS": "a:11211, b:11211",
			"X_STORE_MEMCACHE_TIMEOUT": "2s",
			"GENCACHE_STORE_BACKEND":   "redis",
			"X_CACHE_MAX_KEY_LENGTH":   "200",
		}[k]
		return v, ok
	}
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemcache, cfg.Store.Backend)
	assert.Equal(t, []string{"a:11211", "b:11211"}, cfg.Store.Memcache.Servers)
	assert.Equal(t, 2*time.Second, cfg.Store.Memcache.Timeout)
	assert.Equal(t, 200, cfg.Cache.MaxKeyLength)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("store: [oops"), 0o600))
	_, err := NewLoader().WithConfigPath(bad).Load()
	assert.Error(t, err)

	t.Setenv("GENCACHE_STORE_REDIS_DB", "two")
	_, err = NewLoader().Load()
	assert.ErrorContains(t, err, "GENCACHE_STORE_REDIS_DB")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "etcd"
	cfg.Cache.MaxKeyLength = -1
	cfg.Cache.GenerationTTL = 365 * 24 * time.Hour
	cfg.Log.Level = "trace"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"store.backend", "max_key_length", "generation_ttl", "log.level", "log.format"} {
		assert.ErrorContains(t, err, want)
	}

	cfg = DefaultConfig()
	cfg.Store.Backend = BackendRedis
	cfg.Store.Redis.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "store.redis.addr")

	cfg = DefaultConfig()
	cfg.Store.Backend = BackendMemcache
	cfg.Store.Memcache.Servers = nil
	assert.ErrorContains(t, cfg.Validate(), "store.memcache.servers")
}

func TestOverrideBeforeValidation(t *testing.T) {
	l := NewLoader().WithOverride(func(c *Config) { c.Store.Backend = "etcd" })
	l.lookupEnv = func(string) (string, bool) { return "", false }
	_, err := l.Load()
	assert.ErrorContains(t, err, "store.backend")

	l = NewLoader().WithOverride(func(c *Config) { c.Cache.Namespace = "ns" })
	l.lookupEnv = func(string) (string, bool) { return "", false }
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "ns", cfg.Cache.Namespace)
}
