package store

import (
	"errors"
	"testing"
	"time"
)

func TestCounterRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1700000000000000, ^uint64(0)} {
		got, err := ParseCounter(FormatCounter(v))
		if err != nil || got != v {
			t.Fatalf("ParseCounter(FormatCounter(%d))=%d,%v", v, got, err)
		}
	}
}

func TestParseCounterPaddingAndGarbage(t *testing.T) {
	if v, err := ParseCounter([]byte("12  ")); err != nil || v != 12 {
		t.Fatalf("padded: got %d,%v", v, err)
	}
	for _, in := range []string{"", "   ", "abc", "-1", "1.5"} {
		if _, err := ParseCounter([]byte(in)); !errors.Is(err, ErrNotNumeric) {
			t.Fatalf("ParseCounter(%q) err=%v want ErrNotNumeric", in, err)
		}
	}
}

func TestClampTTL(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		-time.Second:         0,
		0:                    0,
		time.Minute:          time.Minute,
		MaxTTL:               MaxTTL,
		365 * 24 * time.Hour: MaxTTL,
	}
	for in, want := range cases {
		if got := ClampTTL(in); got != want {
			t.Fatalf("ClampTTL(%v)=%v want %v", in, got, want)
		}
	}
}
