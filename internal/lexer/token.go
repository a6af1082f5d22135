// Package lexer turns BIQL query text into a token stream: a single-pass,
// rune-based tokenizer recognizing keywords, identifiers (including dotted
// and wildcard forms), numbers, quoted strings, and the dialect's
// operators/structure symbols. No regexp, a rune cursor, a keyword
// allow-list matched case-insensitively, with two-character operators
// checked before their one-character prefixes.
package lexer

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota

	IDENTIFIER
	NUMBER
	STRING

	// keywords
	SELECT
	DISTINCT
	WHERE
	GROUP
	BY
	HAVING
	ORDER
	ASC
	DESC
	FORMAT
	AND
	OR
	NOT
	IN
	LIKE
	COUNT
	AVG
	MAX
	MIN
	SUM
	ARRAY_AGG
	AS
	STAR

	// operators
	EQ    // =
	NEQ   // !=
	LT    // <
	LTE   // <=
	GT    // >
	GTE   // >=
	REGEX // ~=

	// structure
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	DOT
	COLON
)

var kindNames = map[Kind]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	SELECT:     "SELECT",
	DISTINCT:   "DISTINCT",
	WHERE:      "WHERE",
	GROUP:      "GROUP",
	BY:         "BY",
	HAVING:     "HAVING",
	ORDER:      "ORDER",
	ASC:        "ASC",
	DESC:       "DESC",
	FORMAT:     "FORMAT",
	AND:        "AND",
	OR:         "OR",
	NOT:        "NOT",
	IN:         "IN",
	LIKE:       "LIKE",
	COUNT:      "COUNT",
	AVG:        "AVG",
	MAX:        "MAX",
	MIN:        "MIN",
	SUM:        "SUM",
	ARRAY_AGG:  "ARRAY_AGG",
	AS:         "AS",
	STAR:       "STAR",
	EQ:         "=",
	NEQ:        "!=",
	LT:         "<",
	LTE:        "<=",
	GT:         ">",
	GTE:        ">=",
	REGEX:      "~=",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	DOT:        ".",
	COLON:      ":",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps the upper-cased lexeme to its Kind. Matching is
// case-insensitive; the lexeme recorded on the Token preserves the original
// casing exactly as written in the query text.
var keywords = map[string]Kind{
	"SELECT":    SELECT,
	"DISTINCT":  DISTINCT,
	"WHERE":     WHERE,
	"GROUP":     GROUP,
	"BY":        BY,
	"HAVING":    HAVING,
	"ORDER":     ORDER,
	"ASC":       ASC,
	"DESC":      DESC,
	"FORMAT":    FORMAT,
	"AND":       AND,
	"OR":        OR,
	"NOT":       NOT,
	"IN":        IN,
	"LIKE":      LIKE,
	"COUNT":     COUNT,
	"AVG":       AVG,
	"MAX":       MAX,
	"MIN":       MIN,
	"SUM":       SUM,
	"ARRAY_AGG": ARRAY_AGG,
	"AS":        AS,
}

// LookupKeyword reports the Kind for an upper-cased word, or (IDENTIFIER,
// false) when the word is not reserved.
func LookupKeyword(upper string) (Kind, bool) {
	if k, ok := keywords[upper]; ok {
		return k, true
	}
	return IDENTIFIER, false
}

// Token is one lexical unit of a BIQL query.
type Token struct {
	Kind   Kind
	Lexeme string // literal text as written
	Value  any    // decoded value: string for STRING, float64 for NUMBER
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
	}
	return t.Kind.String()
}
