// Package ast defines the BIQL abstract syntax tree produced by the parser
// and consumed by the evaluator: a Query plus its optional clauses, and the
// Expr sum type covering field references, literals, lists, ranges,
// wildcard patterns, unary/binary operators, and aggregate function calls.
// Expr is an empty marker interface implemented by a handful of plain
// structs, switched on by type assertion at evaluation time rather than a
// visitor interface.
package ast

import "fmt"

// Expr is the sum type of all BIQL expression nodes.
type Expr interface{ exprNode() }

// FieldRef names a dotted field path: a bare entity (`sub`), a namespaced
// pair (`metadata.RepetitionTime`, `participants.age`), or a computed
// built-in (`filename`, `filepath`, `relative_path`).
type FieldRef struct {
	Path []string
}

func (FieldRef) exprNode() {}

// String renders the dotted path as it would appear in source.
func (f FieldRef) String() string {
	out := f.Path[0]
	for _, p := range f.Path[1:] {
		if len(p) > 0 && p[0] == '#' {
			// "#N" index segments come from a "[N]" subscript.
			out += "[" + p[1:] + "]"
			continue
		}
		out += "." + p
	}
	return out
}

// Literal holds a constant scalar: float64, string, or bool.
type Literal struct{ Value any }

func (Literal) exprNode() {}

// List is a `[a, b, c]` literal, used with IN.
type List struct{ Values []Expr }

func (List) exprNode() {}

// Range is a `[lo:hi]` numeric range literal, used with IN.
type Range struct{ Lo, Hi float64 }

func (Range) exprNode() {}

// WildcardPattern is a glob (`*`, `?`) literal appearing on the right of
// `=`.
type WildcardPattern struct{ Pattern string }

func (WildcardPattern) exprNode() {}

// BinaryOp enumerates the binary operators: comparisons and boolean
// connectives plus membership/pattern operators.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpRegex
	OpIn
	OpLike
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpRegex:
		return "~="
	case OpIn:
		return "IN"
	case OpLike:
		return "LIKE"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
}

// Binary is a two-operand expression: field/expr op rhs, or expr AND/OR
// expr.
type Binary struct {
	Op          BinaryOp
	Left, Right Expr
}

func (Binary) exprNode() {}

// Exists is the bare-field existence predicate: true iff the field
// resolves to a non-null, non-empty value.
type Exists struct{ Field Expr }

func (Exists) exprNode() {}

// Unary is a NOT expression.
type Unary struct{ Expr Expr }

func (Unary) exprNode() {}

// AggFunc enumerates the aggregate functions.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggAvg
	AggMax
	AggMin
	AggSum
	AggArrayAgg
)

func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggAvg:
		return "AVG"
	case AggMax:
		return "MAX"
	case AggMin:
		return "MIN"
	case AggSum:
		return "SUM"
	case AggArrayAgg:
		return "ARRAY_AGG"
	default:
		return fmt.Sprintf("AggFunc(%d)", int(f))
	}
}

// DefaultColumn returns the lower-case short name used as a result column
// when an aggregate has no AS alias.
func (f AggFunc) DefaultColumn() string {
	switch f {
	case AggCount:
		return "count"
	case AggAvg:
		return "avg"
	case AggMax:
		return "max"
	case AggMin:
		return "min"
	case AggSum:
		return "sum"
	case AggArrayAgg:
		return "array_agg"
	default:
		return "agg"
	}
}

// FuncCall is an aggregate call: COUNT(*), COUNT(DISTINCT field),
// AVG/MIN/MAX/SUM(field), or ARRAY_AGG(field [WHERE inner]).
type FuncCall struct {
	Func     AggFunc
	Star     bool // COUNT(*)
	Distinct bool // COUNT(DISTINCT field)
	Arg      Expr // field expression; nil when Star
	Inner    Expr // ARRAY_AGG's inner WHERE, or nil
}

func (FuncCall) exprNode() {}

// CanonicalKey renders the call as "NAME(*)", "NAME(arg)" or
// "NAME(DISTINCT arg)"; ARRAY_AGG's inner WHERE is not included. It is not
// used as an output column name: an unaliased aggregate's only column is
// its short DefaultColumn name (see SelectItem.Key), and Print renders
// calls itself.
func (f FuncCall) CanonicalKey() string {
	switch {
	case f.Star:
		return f.Func.String() + "(*)"
	case f.Distinct:
		return f.Func.String() + "(DISTINCT " + exprText(f.Arg) + ")"
	case f.Arg != nil:
		return f.Func.String() + "(" + exprText(f.Arg) + ")"
	default:
		return f.Func.String() + "()"
	}
}

func exprText(e Expr) string {
	switch x := e.(type) {
	case FieldRef:
		return x.String()
	case *FieldRef:
		return x.String()
	default:
		return fmt.Sprintf("%v", e)
	}
}

// Dir is an ORDER BY sort direction.
type Dir int

const (
	Asc Dir = iota
	Desc
)

func (d Dir) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Field Expr
	Dir   Dir
}

// SelectItem is one projected column: a field reference, literal, or
// aggregate call, with an optional alias.
type SelectItem struct {
	Expr  Expr
	Alias string
	Star  bool // bare `*` projection
}

// Key returns the output column name for this item: the alias if present,
// else the dotted path of a field reference, the lower-case DefaultColumn
// name of an aggregate (e.g. "count"), or the text of any other expression.
func (si SelectItem) Key() string {
	if si.Alias != "" {
		return si.Alias
	}
	switch x := si.Expr.(type) {
	case FieldRef:
		return x.String()
	case *FieldRef:
		return x.String()
	case FuncCall:
		return x.Func.DefaultColumn()
	case *FuncCall:
		return x.Func.DefaultColumn()
	default:
		return exprText(si.Expr)
	}
}

// Select is the projection clause: DISTINCT flag plus an ordered item list.
type Select struct {
	Distinct bool
	Items    []SelectItem
}

// Query is the root AST node produced by Parse.
type Query struct {
	Select  *Select
	Where   Expr
	GroupBy []FieldRef
	Having  Expr
	OrderBy []OrderTerm
	Format  string
}
