package normalize

import "testing"

func TestValueTrimAndCollapse(t *testing.T) {
	cfg := Config{TrimValues: true, IgnoreWhitespace: true}
	got := String("  Hello   world  \n", cfg)
	if got != "Hello world" {
		t.Errorf("got %q", got)
	}
}

func TestValueIgnoreNewlines(t *testing.T) {
	got := String("a\r\nb\nc", Config{IgnoreNewlines: true})
	if got != "abc" {
		t.Errorf("got %q", got)
	}
}

func TestValueIgnoreCase(t *testing.T) {
	if !Equal("HELLO", "hello", Config{IgnoreCase: true}) {
		t.Errorf("expected case-insensitive equality")
	}
}

func TestValueNilIsNil(t *testing.T) {
	if Value(nil, Config{TrimValues: true}) != nil {
		t.Errorf("expected nil passthrough")
	}
}

func TestUserNormalizerChain(t *testing.T) {
	upper := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := *v + "!"
		return &s
	}
	cfg := Config{UserNormalizers: []Normalizer{upper}}
	if got := String("hi", cfg); got != "hi!" {
		t.Errorf("got %q", got)
	}
}

func TestUserNormalizerCanSuppressValue(t *testing.T) {
	drop := func(*string) *string { return nil }
	cfg := Config{UserNormalizers: []Normalizer{drop}}
	if Value(strPtr("x"), cfg) != nil {
		t.Errorf("expected user normalizer to suppress the value")
	}
}

// TestIdempotence validates spec Testable Property 3: normalizing an
// already-normalized value is a no-op.
func TestIdempotence(t *testing.T) {
	cfg := Config{TrimValues: true, IgnoreWhitespace: true, IgnoreCase: true}
	inputs := []string{"  Hello   World  ", "a\t\tb", "ALREADY lower"}
	for _, in := range inputs {
		once := String(in, cfg)
		twice := String(once, cfg)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func strPtr(s string) *string { return &s }
