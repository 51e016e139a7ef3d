// Package config loads the gencache CLI configuration.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("gencache.yaml").
//	    Load()
//
// Precedence: DefaultConfig → YAML file → GENCACHE_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/gencache/internal/keys"
	"github.com/unkn0wn-root/gencache/store"
	"gopkg.in/yaml.v3"
)

// Store backends understood by the CLI.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMemcache = "memcache"
)

type Config struct {
	Store StoreConfig `yaml:"store" env:"STORE"`
	Cache CacheConfig `yaml:"cache" env:"CACHE"`
	Log   LogConfig   `yaml:"log" env:"LOG"`
}

type StoreConfig struct {
	// memory, redis or memcache
	Backend  string         `yaml:"backend" env:"BACKEND"`
	Redis    RedisConfig    `yaml:"redis" env:"REDIS"`
	Memcache MemcacheConfig `yaml:"memcache" env:"MEMCACHE"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type MemcacheConfig struct {
	Servers []string      `yaml:"servers" env:"SERVERS"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type CacheConfig struct {
	Namespace    string `yaml:"namespace" env:"NAMESPACE"`
	MaxKeyLength int    `yaml:"max_key_length" env:"MAX_KEY_LENGTH"`
	// TTL of generation counters; 0 means store.MaxTTL.
	GenerationTTL time.Duration `yaml:"generation_ttl" env:"GENERATION_TTL"`
	// Initialize missing counters with one SetMulti instead of Add per counter.
	BatchInit bool `yaml:"batch_init" env:"BATCH_INIT"`
}

type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// json or console
	Format string `yaml:"format" env:"FORMAT"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Timeout: time.Second,
			},
			Memcache: MemcacheConfig{
				Servers: []string{"localhost:11211"},
				Timeout: 500 * time.Millisecond,
			},
		},
		Cache: CacheConfig{
			MaxKeyLength: keys.MaxLength,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required"))
		}
	case BackendMemcache:
		if len(c.Store.Memcache.Servers) == 0 {
			errs = append(errs, errors.New("store.memcache.servers is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	if c.Cache.MaxKeyLength < 0 {
		errs = append(errs, errors.New("cache.max_key_length must be >= 0"))
	}
	if c.Cache.GenerationTTL < 0 || c.Cache.GenerationTTL > store.MaxTTL {
		errs = append(errs, fmt.Errorf("cache.generation_ttl must be within [0, %s]", store.MaxTTL))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Loader reads a Config.
type Loader struct {
	configPath string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
	overrides  []func(*Config)
}

func NewLoader() *Loader {
	return &Loader{envPrefix: "GENCACHE", lookupEnv: os.LookupEnv}
}

// WithConfigPath sets the YAML file. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithOverride registers a final adjustment, applied after the environment
// and before validation. The CLI applies its flags this way.
func (l *Loader) WithOverride(f func(*Config)) *Loader {
	l.overrides = append(l.overrides, f)
	return l
}

// Load builds the config and validates it.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}
	if err := setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix, l.lookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	for _, f := range l.overrides {
		f(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.configPath, err)
	}
	return nil
}

func setFieldsFromEnv(v reflect.Value, prefix string, lookup func(string) (string, bool)) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag

		if field.Kind() == reflect.Struct {
			if err := setFieldsFromEnv(field, key, lookup); err != nil {
				return err
			}
			continue
		}
		val, ok := lookup(key)
		if !ok || val == "" {
			continue
		}
		if err := setFieldValue(field, val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
