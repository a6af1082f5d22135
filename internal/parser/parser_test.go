package parser

import (
	"testing"

	"github.com/astewartau/biql/internal/ast"
	"github.com/astewartau/biql/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Query {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	q, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return q
}

func TestParseBareWhereShorthand(t *testing.T) {
	q := mustParse(t, "sub=01 AND datatype=func")
	if q.Select != nil {
		t.Fatalf("expected no SELECT clause, got %+v", q.Select)
	}
	bin, ok := q.Where.(ast.Binary)
	if !ok || bin.Op != ast.OpAnd {
		t.Fatalf("expected top-level AND, got %#v", q.Where)
	}
}

func TestParseSelectStar(t *testing.T) {
	q := mustParse(t, "SELECT * WHERE sub=01")
	if q.Select == nil || len(q.Select.Items) != 1 || !q.Select.Items[0].Star {
		t.Fatalf("expected a single star select item, got %+v", q.Select)
	}
}

func TestParseSelectAggregateWithAlias(t *testing.T) {
	q := mustParse(t, "SELECT sub, COUNT(*) AS n GROUP BY sub")
	if len(q.Select.Items) != 2 {
		t.Fatalf("expected 2 select items, got %d", len(q.Select.Items))
	}
	fc, ok := q.Select.Items[1].Expr.(ast.FuncCall)
	if !ok || !fc.Star || fc.Func != ast.AggCount {
		t.Fatalf("expected COUNT(*), got %#v", q.Select.Items[1].Expr)
	}
	if q.Select.Items[1].Alias != "n" {
		t.Fatalf("expected alias %q, got %q", "n", q.Select.Items[1].Alias)
	}
	if len(q.GroupBy) != 1 || q.GroupBy[0].Path[0] != "sub" {
		t.Fatalf("expected GROUP BY sub, got %+v", q.GroupBy)
	}
}

func TestParseDuplicateUnaliasedAggregateIsError(t *testing.T) {
	toks, err := lexer.Tokenize("SELECT COUNT(*), COUNT(*) GROUP BY sub")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	_, err = Parse(toks)
	if err == nil {
		t.Fatalf("expected a parse error for duplicate unaliased COUNT(*)")
	}
}

func TestParseDuplicateAggregateWithAliasIsOK(t *testing.T) {
	q := mustParse(t, "SELECT COUNT(*) AS a, COUNT(*) AS b GROUP BY sub")
	if len(q.Select.Items) != 2 {
		t.Fatalf("expected 2 select items, got %d", len(q.Select.Items))
	}
}

func TestParseNotBindsAroundWholeComparison(t *testing.T) {
	q := mustParse(t, "NOT sub IN [1, 2]")
	un, ok := q.Where.(ast.Unary)
	if !ok {
		t.Fatalf("expected Unary at top level, got %#v", q.Where)
	}
	bin, ok := un.Expr.(ast.Binary)
	if !ok || bin.Op != ast.OpIn {
		t.Fatalf("expected NOT to wrap the whole IN comparison, got %#v", un.Expr)
	}
}

func TestParseInListNumericCoercion(t *testing.T) {
	q := mustParse(t, "sub IN [1, 2, 3]")
	bin, ok := q.Where.(ast.Binary)
	if !ok || bin.Op != ast.OpIn {
		t.Fatalf("expected top-level IN, got %#v", q.Where)
	}
	list, ok := bin.Right.(ast.List)
	if !ok || len(list.Values) != 3 {
		t.Fatalf("expected a 3-element list, got %#v", bin.Right)
	}
}

func TestParseRange(t *testing.T) {
	q := mustParse(t, "metadata.EchoTime IN [0.0:0.02]")
	bin, ok := q.Where.(ast.Binary)
	if !ok || bin.Op != ast.OpIn {
		t.Fatalf("expected top-level IN, got %#v", q.Where)
	}
	rng, ok := bin.Right.(ast.Range)
	if !ok || rng.Lo != 0.0 || rng.Hi != 0.02 {
		t.Fatalf("expected Range{0.0,0.02}, got %#v", bin.Right)
	}
}

func TestParseBareFieldExistence(t *testing.T) {
	q := mustParse(t, "run")
	ex, ok := q.Where.(ast.Exists)
	if !ok {
		t.Fatalf("expected Exists, got %#v", q.Where)
	}
	fr, ok := ex.Field.(ast.FieldRef)
	if !ok || fr.Path[0] != "run" {
		t.Fatalf("expected field 'run', got %#v", ex.Field)
	}
}

func TestParseMetadataSubscript(t *testing.T) {
	q := mustParse(t, "metadata.a[0] = 1")
	bin, ok := q.Where.(ast.Binary)
	if !ok {
		t.Fatalf("expected Binary, got %#v", q.Where)
	}
	fr, ok := bin.Left.(ast.FieldRef)
	if !ok || len(fr.Path) != 3 || fr.Path[2] != "#0" {
		t.Fatalf("expected path [metadata a #0], got %#v", fr.Path)
	}
}

func TestParseArrayAggWithInnerWhere(t *testing.T) {
	q := mustParse(t, `SELECT sub, ARRAY_AGG(filename WHERE part='mag') AS mag GROUP BY sub`)
	fc, ok := q.Select.Items[1].Expr.(ast.FuncCall)
	if !ok || fc.Func != ast.AggArrayAgg || fc.Inner == nil {
		t.Fatalf("expected ARRAY_AGG with inner WHERE, got %#v", q.Select.Items[1].Expr)
	}
}

func TestParseCountDistinctOnlyValidForCount(t *testing.T) {
	toks, err := lexer.Tokenize("SELECT SUM(DISTINCT x)")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatalf("expected error: DISTINCT is only valid inside COUNT()")
	}
}

func TestParseOrderByDefaultAsc(t *testing.T) {
	q := mustParse(t, "ORDER BY run, sub DESC")
	if len(q.OrderBy) != 2 {
		t.Fatalf("expected 2 order terms, got %d", len(q.OrderBy))
	}
	if q.OrderBy[0].Dir != ast.Asc {
		t.Fatalf("expected default ASC, got %v", q.OrderBy[0].Dir)
	}
	if q.OrderBy[1].Dir != ast.Desc {
		t.Fatalf("expected DESC, got %v", q.OrderBy[1].Dir)
	}
}

func TestParseFormatClause(t *testing.T) {
	q := mustParse(t, "sub=01 FORMAT json")
	if q.Format != "json" {
		t.Fatalf("expected format %q, got %q", "json", q.Format)
	}
}

func TestParseReservedWordAfterNamespaceQualifier(t *testing.T) {
	q := mustParse(t, "participants.group = 1")
	bin, ok := q.Where.(ast.Binary)
	if !ok {
		t.Fatalf("expected Binary, got %#v", q.Where)
	}
	fr, ok := bin.Left.(ast.FieldRef)
	if !ok || fr.Path[1] != "group" {
		t.Fatalf("expected participants.group, got %#v", fr.Path)
	}
}

func TestRoundTripPrinterReparses(t *testing.T) {
	srcs := []string{
		"SELECT sub, COUNT(*) AS n WHERE datatype=func GROUP BY sub HAVING n > 2 ORDER BY sub DESC",
		"NOT sub IN [1, 2, 3]",
		"metadata.EchoTime IN [0.0:0.02]",
	}
	for _, src := range srcs {
		q1 := mustParse(t, src)
		printed := ast.Print(q1)
		toks, err := lexer.Tokenize(printed)
		if err != nil {
			t.Fatalf("Tokenize(print(%q)) = %q: %v", src, printed, err)
		}
		if _, err := Parse(toks); err != nil {
			t.Fatalf("Parse(print(%q)) = %q: %v", src, printed, err)
		}
	}
}
