package parser

import (
	"fmt"
	"strings"

	"github.com/astewartau/biql/internal/lexer"
)

// Error is a position-carrying parse error, mirroring the structured shape
// lexer.Error uses, with the message split into fields so a host can
// render its own presentation.
type Error struct {
	Token    lexer.Token
	Line     int
	Column   int
	Expected []string
	Msg      string
}

func (e *Error) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("parse error at %d:%d near %q: %s", e.Line, e.Column, e.Token.Lexeme, e.Msg)
	}
	return fmt.Sprintf("parse error at %d:%d near %q: %s (expected %s)",
		e.Line, e.Column, e.Token.Lexeme, e.Msg, strings.Join(e.Expected, ", "))
}
