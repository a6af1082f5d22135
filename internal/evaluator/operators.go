package evaluator

import (
	"regexp"

	"github.com/astewartau/biql/internal/ast"
	"github.com/astewartau/biql/internal/value"
)

// EvalPredicate evaluates a boolean expression against env, implementing
// the operator semantics table for comparisons and membership. Evaluation
// is total: a runtime type mismatch degrades to false rather than
// erroring.
func EvalPredicate(env Resolver, e ast.Expr) bool {
	switch x := e.(type) {
	case ast.Exists:
		return evalExists(env, x.Field)
	case ast.Unary:
		return !EvalPredicate(env, x.Expr)
	case ast.Binary:
		switch x.Op {
		case ast.OpAnd:
			return EvalPredicate(env, x.Left) && EvalPredicate(env, x.Right)
		case ast.OpOr:
			return EvalPredicate(env, x.Left) || EvalPredicate(env, x.Right)
		default:
			return evalComparison(env, x.Op, x.Left, x.Right)
		}
	default:
		return false
	}
}

func evalExists(env Resolver, field ast.Expr) bool {
	fr, ok := field.(ast.FieldRef)
	if !ok {
		return false
	}
	return value.Truthy(env.Resolve(fr.Path))
}

func evalComparison(env Resolver, op ast.BinaryOp, left, rhs ast.Expr) bool {
	fr, ok := left.(ast.FieldRef)
	if !ok {
		return false
	}
	lv := env.Resolve(fr.Path)

	switch op {
	case ast.OpEq:
		return evalEq(lv, rhs)
	case ast.OpNeq:
		if value.IsNull(lv) {
			return false
		}
		return !evalEq(lv, rhs)
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if value.IsNull(lv) {
			return false
		}
		rv := literalValue(rhs)
		if value.IsNull(rv) {
			return false
		}
		c := value.Compare(lv, rv)
		switch op {
		case ast.OpLt:
			return c < 0
		case ast.OpLte:
			return c <= 0
		case ast.OpGt:
			return c > 0
		default:
			return c >= 0
		}
	case ast.OpRegex:
		if value.IsNull(lv) {
			return false
		}
		pattern, ok := literalValue(rhs).(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(value.String(lv))
	case ast.OpIn:
		return evalIn(lv, rhs)
	case ast.OpLike:
		if value.IsNull(lv) {
			return false
		}
		pattern, ok := literalValue(rhs).(string)
		if !ok {
			return false
		}
		re, err := value.LikeToRegexp(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(value.String(lv))
	default:
		return false
	}
}

func evalEq(left any, rhs ast.Expr) bool {
	switch r := rhs.(type) {
	case ast.WildcardPattern:
		if value.IsNull(left) {
			return false
		}
		re, err := value.GlobToRegexp(r.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(value.String(left))
	case ast.Literal:
		return value.Equal(left, r.Value)
	default:
		return false
	}
}

func evalIn(left any, rhs ast.Expr) bool {
	switch r := rhs.(type) {
	case ast.List:
		for _, elem := range r.Values {
			if evalEq(left, elem) {
				return true
			}
		}
		return false
	case ast.Range:
		n, ok := value.Numeric(left)
		if !ok {
			return false
		}
		return n >= r.Lo && n <= r.Hi
	default:
		return false
	}
}

// literalValue extracts the scalar carried by a Literal node (or the
// string form of a WildcardPattern, so glob identifiers used on the
// right-hand side of an ordering/regex operator still degrade gracefully
// rather than vanishing as null).
func literalValue(e ast.Expr) any {
	switch x := e.(type) {
	case ast.Literal:
		return x.Value
	case ast.WildcardPattern:
		return x.Pattern
	default:
		return nil
	}
}

// EvalValue evaluates a non-boolean expression (a SELECT item's field
// reference or literal) against env.
func EvalValue(env Resolver, e ast.Expr) any {
	switch x := e.(type) {
	case ast.FieldRef:
		return env.Resolve(x.Path)
	case ast.Literal:
		return x.Value
	default:
		return nil
	}
}
