package gencache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/gencache/internal/keys"
)

const callKeyPrefix = "[cached]"

// callKey renders the key of a wrapped call:
//
//	[cached]<identity>(<variadic>,...{<name>=<value>,...}[<generation>=<counter>,...])
//
// Named arguments are sorted, so keyword order never matters.
func (c *cache[V]) callKey(identity string, variadic []any, named map[string]any, gens []resolved) (string, error) {
	var sb strings.Builder
	sb.WriteString(callKeyPrefix)
	sb.WriteString(identity)
	sb.WriteByte('(')
	for i, v := range variadic {
		cv, err := keys.Coerce(v)
		if err != nil {
			return "", fmt.Errorf("%w: positional argument %d: %v", ErrBadArgs, i, err)
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(cv)
	}

	sb.WriteByte('{')
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	for i, n := range names {
		cv, err := keys.Coerce(named[n])
		if err != nil {
			return "", fmt.Errorf("%w: argument %q: %v", ErrBadArgs, n, err)
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(token(n))
		sb.WriteByte('=')
		sb.WriteString(cv)
	}
	sb.WriteString("}[")
	writeGenerations(&sb, gens)
	sb.WriteString("])")
	return c.finalize(sb.String()), nil
}

// lookupKey renders the key of the direct facade:
//
//	<generation>=<counter>,...[,<addToKey>...]
//
// Argument names and AddToKey entries go through token.
func (c *cache[V]) lookupKey(gens []resolved, addToKey []string) (string, error) {
	if len(gens) == 0 && len(addToKey) == 0 {
		return "", fmt.Errorf("%w: lookup needs at least one generation or AddToKey", ErrBadArgs)
	}
	var sb strings.Builder
	writeGenerations(&sb, gens)
	for i, s := range addToKey {
		if i > 0 || len(gens) > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(token(s))
	}
	return c.finalize(sb.String()), nil
}

// keySyntax holds the bytes that delimit key sections.
const keySyntax = `,=()[]{}"`

// token returns s unchanged when it cannot be mistaken for key syntax and
// quoted otherwise. Plain tokens never start with '"', so the two forms
// cannot collide.
func token(s string) string {
	if s == "" || strings.ContainsAny(s, keySyntax) {
		return strconv.Quote(s)
	}
	return s
}

func writeGenerations(sb *strings.Builder, gens []resolved) {
	for i, r := range gens {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r.label)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(r.value, 10))
	}
}

// finalize applies the namespace and makes the key store-safe.
func (c *cache[V]) finalize(raw string) string {
	if c.ns != "" {
		raw = c.ns + ":" + raw
	}
	return keys.Sanitize(raw, c.maxKeyLen)
}
