package gencache

import (
	"errors"
	"testing"
)

func TestParseGeneration(t *testing.T) {
	cases := []struct {
		in      string
		name    string
		param   string
		wantErr bool
	}{
		{in: "articles", name: "articles"},
		{in: "profile:user_id", name: "profile", param: "user_id"},
		{in: "", wantErr: true},
		{in: ":user_id", wantErr: true},
		{in: "profile:", wantErr: true},
		{in: "a:b:c", wantErr: true},
	}
	for _, tc := range cases {
		g, err := ParseGeneration(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidGeneration) {
				t.Errorf("%q: expected ErrInvalidGeneration, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if g.Name != tc.name || g.Param != tc.param || g.Dynamic() != (tc.param != "") {
			t.Errorf("%q: got %+v", tc.in, g)
		}
		if g.String() != tc.in {
			t.Errorf("%q: String() = %q", tc.in, g.String())
		}
	}
}

func TestMustParseGenerationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParseGeneration("a:")
}

func TestGenerationStringWithoutRaw(t *testing.T) {
	g := Generation{Name: "profile", Param: "user_id"}
	if g.String() != "profile:user_id" {
		t.Fatalf("got %q", g.String())
	}
}

func TestSuffixSharedAcrossNames(t *testing.T) {
	a, _ := ParseGeneration("a:x")
	b, _ := ParseGeneration("b:x")
	sa, la, _ := suffix(a, Params{"x": 1})
	sb, lb, _ := suffix(b, Params{"x": 1})
	if sa != "x:1" || sa != sb {
		t.Fatalf("dynamic counters are keyed by parameter and value: %q %q", sa, sb)
	}
	if la == lb {
		t.Fatal("labels must still name the generation")
	}
}

func TestGenerationSuffix(t *testing.T) {
	s, err := MustParseGeneration("articles").Suffix(nil)
	if err != nil || s != "articles" {
		t.Fatalf("static: %q %v", s, err)
	}
	s, err = MustParseGeneration("profile:user_id").Suffix(Params{"user_id": "ab"})
	if err != nil || s != `user_id:"ab"` {
		t.Fatalf("dynamic: %q %v", s, err)
	}
	if _, err := MustParseGeneration("profile:user_id").Suffix(Params{}); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
}
