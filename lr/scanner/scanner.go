/*
Package scanner defines the tokenizer collaborator interface for parsers of
package clr, together with a default implementation backed by lexmachine.

Scanners produce a finite sequence of tokens, each carrying the name of a
declared terminal, a semantic value, the raw lexeme and its input position.
A scanner must never emit an explicit end-of-input token: it reports
purplex.EOF when the input is exhausted, and the parser appends the
end-of-input sentinel on its own.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package scanner

import (
	"github.com/gespiton/purplex"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'purplex.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("purplex.scanner")
}

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() purplex.Token
	SetErrorHandler(func(error))
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a plain token record, used by the lexmachine-backed
// scanner. The semantic value defaults to the lexeme, unless the scanner
// action set a different one.
type DefaultToken struct {
	kind   purplex.TokType
	name   string
	lexeme string
	Val    interface{}
	pos    purplex.Position
	span   purplex.Span
}

// MakeDefaultToken creates an immutable token record.
func MakeDefaultToken(typ purplex.TokType, name string, lexeme string,
	pos purplex.Position, span purplex.Span) DefaultToken {
	//
	return DefaultToken{
		kind:   typ,
		name:   name,
		lexeme: lexeme,
		Val:    lexeme,
		pos:    pos,
		span:   span,
	}
}

// MakeEOFToken creates the token a scanner hands out at end of input.
func MakeEOFToken(pos purplex.Position) DefaultToken {
	t := MakeDefaultToken(purplex.EOF, purplex.EOFName, "", pos, purplex.Span{})
	t.Val = nil
	return t
}

func (t DefaultToken) TokType() purplex.TokType {
	return t.kind
}

func (t DefaultToken) Name() string {
	return t.name
}

func (t DefaultToken) Value() interface{} {
	return t.Val
}

func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

func (t DefaultToken) Pos() purplex.Position {
	return t.pos
}

func (t DefaultToken) Span() purplex.Span {
	return t.span
}
