package purplex

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. Terminal symbols of a grammar carry
// token types as well, so that parser tables can be indexed by them. The only
// pre-defined value is EOF; all other values are assigned by a scanner
// vocabulary.
type TokType int

// EOF is the token type of the synthetic end-of-input token. Scanners report
// it when the input is exhausted, but must never emit an explicit end-of-input
// token themselves: the parser appends the sentinel on its own.
const EOF TokType = -1

// EOFName is the symbol name of the end-of-input sentinel.
const EOFName = "$end"

// Tokens represent input tokens. They are usually produced by a scanner and
// reflect terminals in a language.
//
// An example would be a token for a floating point number:
//
//	TokType = 4          // dense ID from the scanner vocabulary
//	Name    = "NUMBER"   // terminal name, as referenced by grammar rules
//	Lexeme  = "3.1416"   // lexeme as it appeared in the input stream
//	Value   = "3.1416"   // semantic value; the lexeme, unless the scanner set one
//	Pos     = 2:15       // line and column where the lexeme started
//
// Token.Value() is what a reduction handler will see for this terminal.
type Token interface {
	TokType() TokType
	Name() string
	Lexeme() string
	Value() interface{}
	Pos() Position
	Span() Span
}

// --- Positions and spans ----------------------------------------------------

// Position is a line/column input position, 1-based, as reported by scanners.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is a small type for capturing a length of input token run. A span
// denotes a start position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

func (s Span) IsNull() bool {
	return s == Span{}
}

func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
