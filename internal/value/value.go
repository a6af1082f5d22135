// Package value implements BIQL's dynamic runtime value model and the
// coercion/comparison rules operators use to evaluate predicates. Values
// flowing through the evaluator are heterogeneous — string, float64, bool,
// nil, []any, or map[string]any — exactly the shape produced by decoding
// BIDS sidecar JSON and entity maps, dispatched on via type switch rather
// than a discriminated wrapper struct. A small coercion lattice — string
// <-> number via strconv, anything <-> string via a canonical printer —
// backs every comparison and pattern operator.
package value

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// IsNull reports whether v represents BIQL's null: a literal nil, or an
// absent lookup.
func IsNull(v any) bool { return v == nil }

// Numeric attempts to interpret v as a float64, accepting float64, int,
// and numeric strings.
func Numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders v in its canonical textual form. Used for string-mode
// comparisons and for rendering scalars in tabular output formats.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Truthy reports whether v counts as "present" for a bare-field existence
// check: true iff the field resolves to a non-null, non-empty value.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return true
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// isAllDigits reports whether s consists entirely of ASCII digits and is
// non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// zeroPad left-pads s with '0' until it is at least width runes long.
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// numberLiteralToPaddedString renders a numeric literal as a string padded
// to match the width of an all-digit comparison target, so that "sub=1"
// matches "sub-01".
func numberLiteralToPaddedString(n float64, target string) string {
	var s string
	if n == float64(int64(n)) {
		s = strconv.FormatInt(int64(n), 10)
	} else {
		s = strconv.FormatFloat(n, 'g', -1, 64)
	}
	if isAllDigits(target) && isAllDigits(s) {
		return zeroPad(s, len(target))
	}
	return s
}

// Equal implements the `=` operator's equality-with-coercion rule: numeric
// literal vs. string left operand compares as strings, zero-padding the
// right side to the left side's width when the left side is all digits;
// otherwise it falls back to plain string equality.
func Equal(left, right any) bool {
	if IsNull(left) || IsNull(right) {
		return false
	}
	if ls, ok := left.(string); ok {
		if rn, ok := right.(float64); ok {
			return ls == numberLiteralToPaddedString(rn, ls)
		}
	}
	if lf, ok := left.(float64); ok {
		if rf, ok := right.(float64); ok {
			return lf == rf
		}
	}
	return String(left) == String(right)
}

// Compare orders a and b, trying a numeric comparison first and falling
// back to lexicographic string comparison. Returns -1, 0, 1. Both sides
// null is treated by callers via IsNull before calling Compare.
func Compare(a, b any) int {
	if af, aok := Numeric(a); aok {
		if bf, bok := Numeric(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := String(a), String(b)
	return strings.Compare(as, bs)
}

// GlobToRegexp translates a shell-style glob (`*` -> any run of characters,
// `?` -> any single character) into an anchored regular expression used by
// the `=` wildcard operator.
func GlobToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// LikeToRegexp translates a SQL LIKE pattern (`%` -> any run of characters,
// `_` -> any single character) into an anchored, case-sensitive regular
// expression.
func LikeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// IsWildcard reports whether an identifier lexeme should be interpreted as
// a glob pattern rather than a literal: it contains `*` or `?`.
func IsWildcard(lexeme string) bool {
	return strings.ContainsAny(lexeme, "*?")
}

// DistinctKey renders v into a value usable as a map key / set member for
// DISTINCT and auto-aggregation, comparing lists and maps structurally
// rather than by identity.
func DistinctKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00null"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = DistinctKey(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + DistinctKey(x[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprintf("%T:%v", x, x)
	}
}
