package gencache

import (
	"fmt"
	"maps"
)

// Args are the arguments of one wrapped call.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Pos builds Args from positional values.
func Pos(vals ...any) Args { return Args{Positional: vals} }

// With returns a copy of a with an additional keyword argument.
func (a Args) With(name string, v any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	maps.Copy(kw, a.Keyword)
	kw[name] = v
	return Args{Positional: a.Positional, Keyword: kw}
}

// Signature declares how a wrapped function takes its arguments.
//
// Params are bound from positional values first, then from keywords.
// Receiver marks Positional[0] as the method receiver; it is neither bound
// nor part of the key. Variadic and Keywords name the catch-alls for extra
// positional and keyword arguments; without them extras are rejected.
// Naming a catch-all in WrapOptions.Exclude keeps its values out of the key.
//
// The zero Signature accepts anything: positionals are keyed in order and
// keywords by name.
type Signature struct {
	Params   []string
	Receiver bool
	Variadic string
	Keywords string
}

func (s Signature) zero() bool {
	return len(s.Params) == 0 && !s.Receiver && s.Variadic == "" && s.Keywords == ""
}

func (s Signature) validate() error {
	seen := make(map[string]struct{}, len(s.Params)+2)
	for _, n := range append(append([]string(nil), s.Params...), s.Variadic, s.Keywords) {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: signature declares %q twice", ErrBadArgs, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// binding is the outcome of matching Args against a Signature.
type binding struct {
	named    map[string]any // declared params + extra keywords
	extraKw  map[string]struct{}
	variadic []any
	receiver any
}

func (s Signature) bind(a Args) (binding, error) {
	if s.zero() {
		s = Signature{Variadic: "*", Keywords: "**"}
	}
	b := binding{named: make(map[string]any, len(s.Params)+len(a.Keyword))}

	pos := a.Positional
	if s.Receiver {
		if len(pos) == 0 {
			return binding{}, fmt.Errorf("%w: missing receiver", ErrBadArgs)
		}
		b.receiver, pos = pos[0], pos[1:]
	}
	for i, v := range pos {
		if i < len(s.Params) {
			b.named[s.Params[i]] = v
			continue
		}
		if s.Variadic == "" {
			return binding{}, fmt.Errorf("%w: %d positional arguments, signature takes %d", ErrBadArgs, len(pos), len(s.Params))
		}
		b.variadic = pos[i:]
		break
	}

	for k, v := range a.Keyword {
		if s.declares(k) {
			if _, dup := b.named[k]; dup {
				return binding{}, fmt.Errorf("%w: argument %q given twice", ErrBadArgs, k)
			}
			b.named[k] = v
			continue
		}
		if s.Keywords == "" {
			return binding{}, fmt.Errorf("%w: unexpected keyword %q", ErrBadArgs, k)
		}
		if b.extraKw == nil {
			b.extraKw = make(map[string]struct{})
		}
		b.extraKw[k] = struct{}{}
		b.named[k] = v
	}
	return b, nil
}

func (s Signature) declares(name string) bool {
	for _, p := range s.Params {
		if p == name {
			return true
		}
	}
	return false
}

// keyArgs filters a binding down to what goes into the key.
func (s Signature) keyArgs(b binding, exclude map[string]struct{}) (variadic []any, named map[string]any) {
	if s.zero() {
		s = Signature{Variadic: "*", Keywords: "**"}
	}
	_, noVariadic := exclude[s.Variadic]
	_, noKeywords := exclude[s.Keywords]
	if !noVariadic {
		variadic = b.variadic
	}
	named = make(map[string]any, len(b.named))
	for k, v := range b.named {
		if _, ex := exclude[k]; ex {
			continue
		}
		if _, extra := b.extraKw[k]; extra && noKeywords {
			continue
		}
		named[k] = v
	}
	return variadic, named
}
