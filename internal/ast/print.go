package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders q back into BIQL source text, such that re-parsing the
// result and evaluating it produces the same result as evaluating q
// directly: evaluate(parse(print(parse(Q))), I) == evaluate(parse(Q), I).
func Print(q *Query) string {
	var parts []string
	if q.Select != nil {
		parts = append(parts, printSelect(q.Select))
	}
	if q.Where != nil {
		parts = append(parts, "WHERE "+printExpr(q.Where))
	}
	if len(q.GroupBy) > 0 {
		fields := make([]string, len(q.GroupBy))
		for i, f := range q.GroupBy {
			fields[i] = f.String()
		}
		parts = append(parts, "GROUP BY "+strings.Join(fields, ", "))
	}
	if q.Having != nil {
		parts = append(parts, "HAVING "+printExpr(q.Having))
	}
	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, t := range q.OrderBy {
			terms[i] = printExpr(t.Field) + " " + t.Dir.String()
		}
		parts = append(parts, "ORDER BY "+strings.Join(terms, ", "))
	}
	if q.Format != "" {
		parts = append(parts, "FORMAT "+q.Format)
	}
	return strings.Join(parts, " ")
}

func printSelect(s *Select) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	items := make([]string, len(s.Items))
	for i, it := range s.Items {
		if it.Star {
			items[i] = "*"
			continue
		}
		text := printExpr(it.Expr)
		if it.Alias != "" {
			text += " AS " + it.Alias
		}
		items[i] = text
	}
	b.WriteString(strings.Join(items, ", "))
	return b.String()
}

func printExpr(e Expr) string {
	switch x := e.(type) {
	case FieldRef:
		return x.String()
	case *FieldRef:
		return x.String()
	case Literal:
		return printLiteral(x.Value)
	case *Literal:
		return printLiteral(x.Value)
	case List:
		parts := make([]string, len(x.Values))
		for i, v := range x.Values {
			parts[i] = printExpr(v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Range:
		return fmt.Sprintf("[%s:%s]", formatFloat(x.Lo), formatFloat(x.Hi))
	case WildcardPattern:
		return x.Pattern
	case Exists:
		return printExpr(x.Field)
	case *Exists:
		return printExpr(x.Field)
	case Unary:
		return "NOT (" + printExpr(x.Expr) + ")"
	case *Unary:
		return "NOT (" + printExpr(x.Expr) + ")"
	case Binary:
		return printBinary(x)
	case *Binary:
		return printBinary(*x)
	case FuncCall:
		return printFuncCall(x)
	case *FuncCall:
		return printFuncCall(*x)
	default:
		return fmt.Sprintf("%v", e)
	}
}

func printBinary(b Binary) string {
	switch b.Op {
	case OpAnd, OpOr:
		return "(" + printExpr(b.Left) + " " + b.Op.String() + " " + printExpr(b.Right) + ")"
	default:
		// A space is required around word operators (IN, LIKE) so the
		// printed text re-lexes as separate tokens rather than fusing
		// into the preceding identifier.
		return printExpr(b.Left) + " " + b.Op.String() + " " + printExpr(b.Right)
	}
}

func printFuncCall(f FuncCall) string {
	switch {
	case f.Star:
		return f.Func.String() + "(*)"
	case f.Func == AggArrayAgg && f.Inner != nil:
		return f.Func.String() + "(" + printExpr(f.Arg) + " WHERE " + printExpr(f.Inner) + ")"
	case f.Distinct:
		return f.Func.String() + "(DISTINCT " + printExpr(f.Arg) + ")"
	default:
		return f.Func.String() + "(" + printExpr(f.Arg) + ")"
	}
}

func printLiteral(v any) string {
	switch x := v.(type) {
	case string:
		return quoteLexable(x)
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// quoteLexable wraps s in whichever quote character it lacks, since the
// lexer has no backslash-escape syntax: a Go-style strconv.Quote would
// produce backslash escapes the lexer reads back as literal characters
// rather than escapes, breaking round-trip printing for strings containing
// a quote mark.
func quoteLexable(s string) string {
	if !strings.ContainsRune(s, '"') {
		return `"` + s + `"`
	}
	if !strings.ContainsRune(s, '\'') {
		return "'" + s + "'"
	}
	return strconv.Quote(s)
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
