package styx

import "fmt"

// ParseError is raised by the lexer or the parser when the source text
// does not conform to the grammar. It is fatal to the current parse; no
// recovery is attempted beyond the lexer's cosmetic skip-to-newline after
// a malformed "<<" (see Lexer.NextToken).
type ParseError struct {
	Message string
	Span    Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d-%d: %s", e.Span.Start, e.Span.End, e.Message)
}

func newError(span Span, format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Span: span}
}
