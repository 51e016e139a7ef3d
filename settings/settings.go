// Package settings looks up runtime settings by name.
//
// Names are case-insensitive; every source normalizes them to upper case
// ("debug_generational_cache" and "DEBUG_GENERATIONAL_CACHE" are the same
// setting). Sources are consulted on every call, so flipping a setting takes
// effect on the next cache operation.
package settings

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Well-known settings.
const (
	// Env names the deployment environment. Defaults to "local".
	Env = "ENV"
	// Debug turns on debug logging of keys and generations.
	Debug = "DEBUG_GENERATIONAL_CACHE"
)

// DefaultEnv is the value of Env when no source defines it.
const DefaultEnv = "local"

// Source resolves a setting. ok=false means the setting is undefined.
type Source interface {
	Lookup(name string) (value any, ok bool)
}

// Normalize returns the canonical form of a setting name.
func Normalize(name string) string { return strings.ToUpper(strings.TrimSpace(name)) }

// Func adapts a plain function to Source.
type Func func(name string) (any, bool)

func (f Func) Lookup(name string) (any, bool) { return f(Normalize(name)) }

// Environ reads settings from process environment variables, optionally
// namespaced by Prefix ("APP_" + "ENV").
type Environ struct {
	Prefix string
}

func (e Environ) Lookup(name string) (any, bool) {
	return os.LookupEnv(e.Prefix + Normalize(name))
}

// Map is a fixed set of settings. Keys are matched case-insensitively.
type Map map[string]any

func (m Map) Lookup(name string) (any, bool) {
	n := Normalize(name)
	if v, ok := m[n]; ok {
		return v, true
	}
	for k, v := range m {
		if Normalize(k) == n {
			return v, true
		}
	}
	return nil, false
}

// Chain consults sources in order; the first one defining a setting wins.
type Chain []Source

func (c Chain) Lookup(name string) (any, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Overrides is a mutable Source safe for concurrent use, typically placed
// first in a Chain to flip settings at runtime.
type Overrides struct {
	mu sync.RWMutex
	m  map[string]any
}

func NewOverrides() *Overrides { return &Overrides{m: make(map[string]any)} }

func (o *Overrides) Set(name string, value any) {
	o.mu.Lock()
	o.m[Normalize(name)] = value
	o.mu.Unlock()
}

func (o *Overrides) Unset(name string) {
	o.mu.Lock()
	delete(o.m, Normalize(name))
	o.mu.Unlock()
}

func (o *Overrides) Lookup(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.m[Normalize(name)]
	return v, ok
}

// String returns the setting as a string, or def if undefined.
func String(src Source, name, def string) string {
	if src == nil {
		return def
	}
	v, ok := src.Lookup(name)
	if !ok || v == nil {
		return def
	}
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.String:
		return rv.String()
	}
	return def
}

// Bool reports whether the setting is truthy, or def if undefined.
func Bool(src Source, name string, def bool) bool {
	if src == nil {
		return def
	}
	v, ok := src.Lookup(name)
	if !ok {
		return def
	}
	return Truthy(v)
}

// Truthy follows the usual dynamic-language rules: nil, false, zero numbers
// and empty strings/collections are false. Strings are additionally parsed as
// booleans so that ENV-style values like "false", "0" or "off" are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return truthyString(x)
	case []byte:
		return truthyString(string(x))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String:
		return truthyString(rv.String())
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func truthyString(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	switch strings.ToLower(s) {
	case "", "no", "off", "none", "null":
		return false
	}
	return true
}

// Environment returns the deployment environment name.
func Environment(src Source) string {
	return String(src, Env, DefaultEnv)
}

// IsLocal reports whether the deployment environment is "local".
func IsLocal(src Source) bool {
	return Environment(src) == DefaultEnv
}
