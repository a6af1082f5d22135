package value

import "testing"

func TestNumeric(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(3.5), 3.5, true},
		{"42", 42, true},
		{"not a number", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := Numeric(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("Numeric(%v) = (%v,%v), want (%v,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{true, "true"},
		{false, "false"},
		{float64(3), "3"},
		{float64(3.5), "3.5"},
	}
	for _, c := range cases {
		if got := String(c.in); got != c.want {
			t.Fatalf("String(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{false, false},
		{true, true},
		{float64(0), true},
		{[]any{}, false},
		{[]any{1}, true},
		{map[string]any{}, false},
	}
	for _, c := range cases {
		if got := Truthy(c.in); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestEqualZeroPadCoercion(t *testing.T) {
	// "sub=1" matches "sub-01" via zero-padding coercion.
	if !Equal("01", float64(1)) {
		t.Fatalf("expected Equal(%q, %v) to be true", "01", float64(1))
	}
	if Equal("02", float64(1)) {
		t.Fatalf("expected Equal(%q, %v) to be false", "02", float64(1))
	}
	if Equal(nil, float64(1)) {
		t.Fatalf("expected Equal to be false when either side is null")
	}
}

func TestEqualPlainStrings(t *testing.T) {
	if !Equal("func", "func") {
		t.Fatalf("expected plain string equality to hold")
	}
	if Equal("func", "anat") {
		t.Fatalf("expected unequal strings to compare false")
	}
}

func TestCompare(t *testing.T) {
	if Compare(float64(1), float64(2)) >= 0 {
		t.Fatalf("expected 1 < 2")
	}
	if Compare("a", "b") >= 0 {
		t.Fatalf("expected \"a\" < \"b\"")
	}
	if Compare(float64(5), float64(5)) != 0 {
		t.Fatalf("expected equal numerics to compare 0")
	}
}

func TestGlobToRegexp(t *testing.T) {
	re, err := GlobToRegexp("sub-*")
	if err != nil {
		t.Fatalf("GlobToRegexp error: %v", err)
	}
	if !re.MatchString("sub-01") {
		t.Fatalf("expected sub-* to match sub-01")
	}
	if re.MatchString("xsub-01") {
		t.Fatalf("expected sub-* to be anchored and not match xsub-01")
	}
}

func TestLikeToRegexp(t *testing.T) {
	re, err := LikeToRegexp("T1%")
	if err != nil {
		t.Fatalf("LikeToRegexp error: %v", err)
	}
	if !re.MatchString("T1w") {
		t.Fatalf("expected T1%% to match T1w")
	}
	if re.MatchString("aT1w") {
		t.Fatalf("expected T1%% to be anchored and not match aT1w")
	}
}

func TestIsWildcard(t *testing.T) {
	if !IsWildcard("sub-*") {
		t.Fatalf("expected sub-* to be a wildcard")
	}
	if IsWildcard("sub-01") {
		t.Fatalf("expected sub-01 to not be a wildcard")
	}
}

func TestDistinctKeyStructural(t *testing.T) {
	a := map[string]any{"x": float64(1), "y": []any{"a", "b"}}
	b := map[string]any{"y": []any{"a", "b"}, "x": float64(1)}
	if DistinctKey(a) != DistinctKey(b) {
		t.Fatalf("expected structurally equal maps to produce the same key")
	}
	c := []any{float64(1), float64(2)}
	d := []any{float64(1), float64(2)}
	if DistinctKey(c) != DistinctKey(d) {
		t.Fatalf("expected structurally equal lists to produce the same key")
	}
	if DistinctKey(nil) == DistinctKey("") {
		t.Fatalf("expected null and empty string to produce distinct keys")
	}
}
