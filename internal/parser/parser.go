// Package parser implements BIQL's hand-written recursive-descent parser:
// it parses a token stream from internal/lexer into the AST defined in
// internal/ast, with no backtracking beyond single-token lookahead. A
// Parser struct tracks cur/peek tokens, expect helpers check expected
// kinds, and one function handles each grammar production, favoring clear
// error messages over generality.
package parser

import (
	"fmt"

	"github.com/astewartau/biql/internal/ast"
	"github.com/astewartau/biql/internal/lexer"
)

// Parser holds the token stream and current/peek cursor.
type Parser struct {
	toks []lexer.Token
	pos  int
	cur  lexer.Token
	peek lexer.Token
}

// New creates a Parser over a fully-tokenized query (see lexer.Tokenize).
func New(tokens []lexer.Token) *Parser {
	p := &Parser{toks: tokens}
	if len(tokens) > 0 {
		p.cur = tokens[0]
	}
	if len(tokens) > 1 {
		p.peek = tokens[1]
	}
	return p
}

// Parse tokenizes is not performed here; callers run lexer.Tokenize first.
// Parse is the package-level convenience entry point: parse(tokens) ->
// Query.
func Parse(tokens []lexer.Token) (*ast.Query, error) {
	return New(tokens).ParseQuery()
}

func (p *Parser) next() {
	p.pos++
	p.cur = p.peek
	if p.pos+1 < len(p.toks) {
		p.peek = p.toks[p.pos+1]
	} else {
		p.peek = lexer.Token{Kind: lexer.EOF}
	}
}

func (p *Parser) errf(format string, a ...any) error {
	return &Error{Token: p.cur, Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, a...)}
}

func (p *Parser) errExpected(expected ...string) error {
	return &Error{Token: p.cur, Line: p.cur.Line, Column: p.cur.Column, Expected: expected,
		Msg: fmt.Sprintf("unexpected token %q", p.cur.Lexeme)}
}

func (p *Parser) expect(kind lexer.Kind) error {
	if p.cur.Kind != kind {
		return p.errExpected(kind.String())
	}
	p.next()
	return nil
}

// isKeywordKind reports whether k is one of the reserved-word token kinds
// (as opposed to identifiers, literals, operators, or structure). Keyword
// kinds occupy a contiguous range in internal/lexer's Kind enum.
func isKeywordKind(k lexer.Kind) bool {
	return k >= lexer.SELECT && k <= lexer.STAR
}

// ParseQuery parses a single BIQL query: query := [select] [where]
// [group_by] [having] [order_by] [format] EOF.
func (p *Parser) ParseQuery() (*ast.Query, error) {
	q := &ast.Query{}

	if p.cur.Kind == lexer.SELECT {
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		q.Select = sel
	}

	switch {
	case p.cur.Kind == lexer.WHERE:
		p.next()
		where, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		q.Where = where
	case q.Select == nil && !isClauseStart(p.cur.Kind) && p.cur.Kind != lexer.EOF:
		// Omitted WHERE keyword: "sub=01" is shorthand for "WHERE sub=01".
		where, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		q.Where = where
	}

	if p.cur.Kind == lexer.GROUP {
		groupBy, err := p.parseGroupBy()
		if err != nil {
			return nil, err
		}
		q.GroupBy = groupBy
	}

	if p.cur.Kind == lexer.HAVING {
		p.next()
		having, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		q.Having = having
	}

	if p.cur.Kind == lexer.ORDER {
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		q.OrderBy = orderBy
	}

	if p.cur.Kind == lexer.FORMAT {
		p.next()
		if p.cur.Kind != lexer.IDENTIFIER {
			return nil, p.errExpected("format name")
		}
		q.Format = p.cur.Lexeme
		p.next()
	}

	if p.cur.Kind != lexer.EOF {
		return nil, p.errExpected("end of query")
	}
	return q, nil
}

func isClauseStart(k lexer.Kind) bool {
	switch k {
	case lexer.GROUP, lexer.HAVING, lexer.ORDER, lexer.FORMAT:
		return true
	default:
		return false
	}
}

// ------------------------------ SELECT ------------------------------

func (p *Parser) parseSelect() (*ast.Select, error) {
	p.next() // consume SELECT
	sel := &ast.Select{}
	if p.cur.Kind == lexer.DISTINCT {
		sel.Distinct = true
		p.next()
	}
	item, err := p.parseSelectItem()
	if err != nil {
		return nil, err
	}
	sel.Items = append(sel.Items, item)
	for p.cur.Kind == lexer.COMMA {
		p.next()
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		sel.Items = append(sel.Items, item)
	}
	if err := checkDuplicateKeys(sel.Items); err != nil {
		return nil, err
	}
	return sel, nil
}

func checkDuplicateKeys(items []ast.SelectItem) error {
	seen := map[string]bool{}
	for _, it := range items {
		if it.Star {
			continue
		}
		key := it.Key()
		if seen[key] {
			return &Error{Msg: fmt.Sprintf("duplicate select column %q: subsequent occurrence must carry an AS alias", key)}
		}
		seen[key] = true
	}
	return nil
}

func isAggKeyword(k lexer.Kind) bool {
	switch k {
	case lexer.COUNT, lexer.AVG, lexer.MAX, lexer.MIN, lexer.SUM, lexer.ARRAY_AGG:
		return true
	default:
		return false
	}
}

func aggFuncFor(k lexer.Kind) ast.AggFunc {
	switch k {
	case lexer.COUNT:
		return ast.AggCount
	case lexer.AVG:
		return ast.AggAvg
	case lexer.MAX:
		return ast.AggMax
	case lexer.MIN:
		return ast.AggMin
	case lexer.SUM:
		return ast.AggSum
	case lexer.ARRAY_AGG:
		return ast.AggArrayAgg
	default:
		return ast.AggCount
	}
}

func (p *Parser) parseSelectItem() (ast.SelectItem, error) {
	if p.cur.Kind == lexer.STAR {
		p.next()
		return ast.SelectItem{Star: true}, nil
	}

	var expr ast.Expr
	switch {
	case p.cur.Kind == lexer.NUMBER:
		expr = ast.Literal{Value: p.cur.Value}
		p.next()
	case p.cur.Kind == lexer.STRING:
		expr = ast.Literal{Value: p.cur.Value}
		p.next()
	case isAggKeyword(p.cur.Kind) && p.peek.Kind == lexer.LPAREN:
		fc, err := p.parseFuncCall()
		if err != nil {
			return ast.SelectItem{}, err
		}
		expr = fc
	default:
		field, err := p.parseField(false)
		if err != nil {
			return ast.SelectItem{}, err
		}
		expr = field
	}

	item := ast.SelectItem{Expr: expr}
	if p.cur.Kind == lexer.AS {
		p.next()
		if p.cur.Kind != lexer.IDENTIFIER && !isKeywordKind(p.cur.Kind) {
			return ast.SelectItem{}, p.errExpected("alias identifier")
		}
		item.Alias = p.cur.Lexeme
		p.next()
	}
	return item, nil
}

// parseFuncCall parses an aggregate call: COUNT(*) | COUNT(DISTINCT field) |
// AVG/MIN/MAX/SUM(field) | ARRAY_AGG(field [WHERE or_expr]).
func (p *Parser) parseFuncCall() (ast.FuncCall, error) {
	fn := aggFuncFor(p.cur.Kind)
	p.next() // consume function keyword
	if err := p.expect(lexer.LPAREN); err != nil {
		return ast.FuncCall{}, err
	}

	fc := ast.FuncCall{Func: fn}
	switch {
	case fn == ast.AggCount && p.cur.Kind == lexer.STAR:
		fc.Star = true
		p.next()
	case fn == ast.AggCount && p.cur.Kind == lexer.DISTINCT:
		p.next()
		fc.Distinct = true
		field, err := p.parseField(false)
		if err != nil {
			return ast.FuncCall{}, err
		}
		fc.Arg = field
	default:
		field, err := p.parseField(false)
		if err != nil {
			return ast.FuncCall{}, err
		}
		fc.Arg = field
	}

	if fc.Distinct && fn != ast.AggCount {
		return ast.FuncCall{}, p.errf("DISTINCT is only valid inside COUNT()")
	}

	if fn == ast.AggArrayAgg && p.cur.Kind == lexer.WHERE {
		p.next()
		inner, err := p.parseOrExpr()
		if err != nil {
			return ast.FuncCall{}, err
		}
		fc.Inner = inner
	}

	if err := p.expect(lexer.RPAREN); err != nil {
		return ast.FuncCall{}, err
	}
	return fc, nil
}

// ------------------------------ boolean expressions ------------------------------

func (p *Parser) parseOrExpr() (ast.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == lexer.OR {
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == lexer.AND {
		p.next()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

// parseNotExpr gives NOT precedence between AND/OR and comparisons: it
// binds tighter than AND/OR (it only wraps one primary) and looser than
// comparisons (a primary already consumes a whole "field IN list" form), so
// "NOT field IN list" parses as "NOT (field IN list)".
func (p *Parser) parseNotExpr() (ast.Expr, error) {
	if p.cur.Kind == lexer.NOT {
		p.next()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Expr: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	if p.cur.Kind == lexer.LPAREN {
		p.next()
		inner, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

var binOpByKind = map[lexer.Kind]ast.BinaryOp{
	lexer.EQ:    ast.OpEq,
	lexer.NEQ:   ast.OpNeq,
	lexer.LT:    ast.OpLt,
	lexer.LTE:   ast.OpLte,
	lexer.GT:    ast.OpGt,
	lexer.GTE:   ast.OpGte,
	lexer.REGEX: ast.OpRegex,
	lexer.IN:    ast.OpIn,
	lexer.LIKE:  ast.OpLike,
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	field, err := p.parseField(true)
	if err != nil {
		return nil, err
	}
	op, ok := binOpByKind[p.cur.Kind]
	if !ok {
		return ast.Exists{Field: field}, nil
	}
	p.next()
	rhs, err := p.parseRHS()
	if err != nil {
		return nil, err
	}
	return ast.Binary{Op: op, Left: field, Right: rhs}, nil
}

// parseField parses a dotted field path: IDENTIFIER ("." IDENTIFIER)*.
// After a namespace qualifier (a DOT), a reserved keyword is accepted as
// the next path segment so that e.g. "participants.group" resolves to the
// participants column literally named "group". When allowSubscript is set
// (WHERE-clause context only), "[N]" suffixes are accepted and recorded as
// index path segments. An aggregate keyword not followed by "(" is accepted
// as the first segment, so a result column such as "count" can be named in
// HAVING or ORDER BY.
func (p *Parser) parseField(allowSubscript bool) (ast.FieldRef, error) {
	if p.cur.Kind != lexer.IDENTIFIER && !(isAggKeyword(p.cur.Kind) && p.peek.Kind != lexer.LPAREN) {
		return ast.FieldRef{}, p.errExpected("field name")
	}
	segs := []string{p.cur.Lexeme}
	p.next()

	for {
		if p.cur.Kind == lexer.DOT {
			p.next()
			if p.cur.Kind != lexer.IDENTIFIER && !isKeywordKind(p.cur.Kind) {
				return ast.FieldRef{}, p.errExpected("field name after '.'")
			}
			segs = append(segs, p.cur.Lexeme)
			p.next()
			continue
		}
		if allowSubscript && p.cur.Kind == lexer.LBRACKET && p.peek.Kind == lexer.NUMBER {
			p.next()
			idx := int(p.cur.Value.(float64))
			p.next()
			if err := p.expect(lexer.RBRACKET); err != nil {
				return ast.FieldRef{}, err
			}
			segs = append(segs, fmt.Sprintf("#%d", idx))
			continue
		}
		break
	}
	return ast.FieldRef{Path: segs}, nil
}

// parseRHS parses a comparison's right-hand side: value | list | range |
// wildcard_pattern.
func (p *Parser) parseRHS() (ast.Expr, error) {
	if p.cur.Kind == lexer.LBRACKET {
		return p.parseListOrRange()
	}
	return p.parseScalar()
}

func (p *Parser) parseScalar() (ast.Expr, error) {
	switch p.cur.Kind {
	case lexer.NUMBER:
		v := p.cur.Value
		p.next()
		return ast.Literal{Value: v}, nil
	case lexer.STRING:
		v := p.cur.Value
		p.next()
		return ast.Literal{Value: v}, nil
	case lexer.IDENTIFIER:
		lexeme := p.cur.Lexeme
		p.next()
		if isGlob(lexeme) {
			return ast.WildcardPattern{Pattern: lexeme}, nil
		}
		return ast.Literal{Value: lexeme}, nil
	default:
		if isKeywordKind(p.cur.Kind) {
			// Bare words colliding with a reserved keyword (e.g. a task
			// named "count") are still usable as string literals on the
			// right-hand side of a comparison.
			lexeme := p.cur.Lexeme
			p.next()
			return ast.Literal{Value: lexeme}, nil
		}
		return nil, p.errExpected("value")
	}
}

func isGlob(s string) bool {
	for _, r := range s {
		if r == '*' || r == '?' {
			return true
		}
	}
	return false
}

func (p *Parser) parseListOrRange() (ast.Expr, error) {
	p.next() // consume '['
	if p.cur.Kind == lexer.NUMBER && p.peek.Kind == lexer.COLON {
		lo := p.cur.Value.(float64)
		p.next()
		p.next() // consume ':'
		if p.cur.Kind != lexer.NUMBER {
			return nil, p.errExpected("range upper bound")
		}
		hi := p.cur.Value.(float64)
		p.next()
		if err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return ast.Range{Lo: lo, Hi: hi}, nil
	}

	var values []ast.Expr
	if p.cur.Kind != lexer.RBRACKET {
		v, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		for p.cur.Kind == lexer.COMMA {
			p.next()
			v, err := p.parseScalar()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	if err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return ast.List{Values: values}, nil
}

// ------------------------------ GROUP BY / HAVING / ORDER BY / FORMAT ------------------------------

func (p *Parser) parseGroupBy() ([]ast.FieldRef, error) {
	p.next() // GROUP
	if err := p.expect(lexer.BY); err != nil {
		return nil, err
	}
	field, err := p.parseField(false)
	if err != nil {
		return nil, err
	}
	fields := []ast.FieldRef{field}
	for p.cur.Kind == lexer.COMMA {
		p.next()
		field, err := p.parseField(false)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (p *Parser) parseOrderBy() ([]ast.OrderTerm, error) {
	p.next() // ORDER
	if err := p.expect(lexer.BY); err != nil {
		return nil, err
	}
	term, err := p.parseOrderTerm()
	if err != nil {
		return nil, err
	}
	terms := []ast.OrderTerm{term}
	for p.cur.Kind == lexer.COMMA {
		p.next()
		term, err := p.parseOrderTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func (p *Parser) parseOrderTerm() (ast.OrderTerm, error) {
	field, err := p.parseField(false)
	if err != nil {
		return ast.OrderTerm{}, err
	}
	dir := ast.Asc
	switch p.cur.Kind {
	case lexer.ASC:
		p.next()
	case lexer.DESC:
		dir = ast.Desc
		p.next()
	}
	return ast.OrderTerm{Field: field, Dir: dir}, nil
}
