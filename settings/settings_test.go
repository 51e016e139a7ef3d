package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCaseInsensitive(t *testing.T) {
	m := Map{"ENV": "prod", "feature_off": true}

	v, ok := m.Lookup("env")
	assert.True(t, ok)
	assert.Equal(t, "prod", v)

	v, ok = m.Lookup("FEATURE_OFF")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestEnviron(t *testing.T) {
	t.Setenv("GCTEST_ENV", "qa")
	src := Environ{Prefix: "GCTEST_"}

	assert.Equal(t, "qa", Environment(src))
	assert.False(t, IsLocal(src))
	assert.Equal(t, "fallback", String(src, "unset_thing", "fallback"))
}

func TestChainFirstWins(t *testing.T) {
	over := NewOverrides()
	c := Chain{over, nil, Map{"ENV": "prod", "X": 1}}

	assert.Equal(t, "prod", Environment(c))
	over.Set("env", "local")
	assert.True(t, IsLocal(c))
	over.Unset("ENV")
	assert.Equal(t, "prod", Environment(c))
	assert.Equal(t, "1", String(c, "x", ""))
}

func TestEnvironmentDefaultsToLocal(t *testing.T) {
	assert.Equal(t, "local", Environment(Map{}))
	assert.True(t, IsLocal(nil))
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{0, false},
		{int64(3), true},
		{0.0, false},
		{"", false},
		{"false", false},
		{"0", false},
		{"off", false},
		{"None", false},
		{"yes", true},
		{"TRUE", true},
		{"anything", true},
		{[]int{}, false},
		{[]int{1}, true},
		{map[string]int{"a": 1}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Truthy(tc.in), "Truthy(%#v)", tc.in)
	}
}

func TestBoolDefaults(t *testing.T) {
	assert.True(t, Bool(Map{}, "nope", true))
	assert.False(t, Bool(nil, "nope", false))
	assert.True(t, Bool(Map{"FLAG": "1"}, "flag", false))
}

func TestFunc(t *testing.T) {
	var seen string
	f := Func(func(name string) (any, bool) {
		seen = name
		return "v", true
	})
	assert.Equal(t, "v", String(f, " debug ", ""))
	assert.Equal(t, "DEBUG", seen)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: prod\ndebug_generational_cache: true\nskip_cache: 0\n"), 0o600))

	m, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", Environment(m))
	assert.True(t, Bool(m, Debug, false))
	assert.False(t, Bool(m, "SKIP_CACHE", true))

	_, err = LoadYAML(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseYAML([]byte("a: [unclosed"))
	assert.Error(t, err)
}
