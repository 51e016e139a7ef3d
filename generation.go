package gencache

import (
	"fmt"
	"strings"
)

// Generation is a named invalidation domain, parsed from "name" (static) or
// "name:param" (dynamic). A dynamic generation takes its effective identity
// from the value of param at call time, e.g. "profile:user_id" with
// user_id=42 resolves to the counter "user_id:42".
type Generation struct {
	Name  string
	Param string // empty for static generations

	raw string
}

// ParseGeneration parses a generation string. Empty names, empty parameters
// and more than one ':' are rejected.
func ParseGeneration(s string) (Generation, error) {
	name, param, dynamic := strings.Cut(s, ":")
	switch {
	case name == "":
		return Generation{}, fmt.Errorf("%w: %q has an empty name", ErrInvalidGeneration, s)
	case dynamic && param == "":
		return Generation{}, fmt.Errorf("%w: %q has an empty parameter", ErrInvalidGeneration, s)
	case strings.Contains(param, ":"):
		return Generation{}, fmt.Errorf("%w: %q has more than one ':'", ErrInvalidGeneration, s)
	}
	return Generation{Name: name, Param: param, raw: s}, nil
}

// MustParseGeneration is like ParseGeneration but panics on error.
func MustParseGeneration(s string) Generation {
	g, err := ParseGeneration(s)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Generation) Dynamic() bool { return g.Param != "" }

// String returns the generation as it was written.
func (g Generation) String() string {
	if g.raw != "" {
		return g.raw
	}
	if g.Param == "" {
		return g.Name
	}
	return g.Name + ":" + g.Param
}

func parseGenerations(specs []string) ([]Generation, error) {
	out := make([]Generation, 0, len(specs))
	for _, s := range specs {
		g, err := ParseGeneration(s)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// dynamicParams lists the parameters consumed by dynamic generations.
func dynamicParams(gens []Generation) []string {
	var out []string
	for _, g := range gens {
		if g.Dynamic() {
			out = append(out, g.Param)
		}
	}
	return out
}
