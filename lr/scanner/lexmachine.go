package scanner

import (
	"strings"

	"github.com/gespiton/purplex"
	"github.com/gespiton/purplex/lr"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter

// TokenDef declares one terminal of a scanner vocabulary: a terminal name
// and the regular expression matching its lexemes. A TokenDef with an empty
// pattern declares a literal terminal, matching its name verbatim.
type TokenDef struct {
	Name    string
	Pattern string
}

// Literal is a convenience constructor for a literal terminal.
func Literal(name string) TokenDef {
	return TokenDef{Name: name}
}

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner.
// The adapter owns the terminal vocabulary of a grammar: token values are
// handed out densely, starting at 1, in declaration order.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
	defs  []TokenDef
	ids   map[string]int
	names map[int]string
}

// NewLMAdapter creates a new lexmachine adapter from an ordered terminal
// vocabulary. The optional init function may add skip rules (whitespace,
// comments) or other custom patterns to the underlying lexer before the
// vocabulary is entered.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), defs []TokenDef) (*LMAdapter, error) {
	adapter := &LMAdapter{
		defs:  defs,
		ids:   make(map[string]int),
		names: make(map[int]string),
	}
	adapter.Lexer = lexmachine.NewLexer()
	if init != nil {
		init(adapter.Lexer)
	}
	for n, def := range defs {
		id := n + 1
		adapter.ids[def.Name] = id
		adapter.names[id] = def.Name
		pattern := def.Pattern
		if pattern == "" { // literal terminal: escape every character
			pattern = "\\" + strings.Join(strings.Split(def.Name, ""), "\\")
		}
		adapter.Lexer.Add([]byte(pattern), adapter.makeToken(def.Name, id))
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Vocabulary returns the adapter's terminals in declaration order, for
// handing to lr.GrammarBuilder.Grammar.
func (lm *LMAdapter) Vocabulary() []lr.Terminal {
	vocab := make([]lr.Terminal, len(lm.defs))
	for n, def := range lm.defs {
		vocab[n] = lr.Terminal{Name: def.Name, Token: lm.ids[def.Name]}
	}
	return vocab
}

// TokenID returns the token value for a terminal name, or 0 if the name is
// not part of the vocabulary.
func (lm *LMAdapter) TokenID(name string) int {
	return lm.ids[name]
}

// TokenName returns the terminal name for a token value, or the empty
// string if the value is not part of the vocabulary.
func (lm *LMAdapter) TokenName(id int) string {
	return lm.names[id]
}

// Scanner creates a scanner for a given input. The scanner will implement
// the Tokenizer interface.
func (lm *LMAdapter) Scanner(input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{scanner: s, Error: logError}, nil
}

// LMScanner is a scanner type for lexmachine scanners, implementing the
// Tokenizer interface.
type LMScanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
}

var _ Tokenizer = (*LMScanner)(nil)

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// NextToken is part of the Tokenizer interface.
func (lms *LMScanner) NextToken() purplex.Token {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		return MakeEOFToken(purplex.Position{})
	}
	tracer().Debugf("tok is %T | %v", tok, tok)
	token := tok.(*namedToken)
	return MakeDefaultToken(
		purplex.TokType(token.id),
		token.name,
		token.lexeme,
		purplex.Position{Line: token.line, Col: token.col},
		purplex.Span{token.start, token.start + uint64(len(token.lexeme))},
	)
}

// ---------------------------------------------------------------------------

// namedToken is the intermediate value produced by vocabulary actions.
type namedToken struct {
	id     int
	name   string
	lexeme string
	line   int
	col    int
	start  uint64
}

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeToken wraps a scanned match into a named token.
func (lm *LMAdapter) makeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return &namedToken{
			id:     id,
			name:   name,
			lexeme: string(m.Bytes),
			line:   m.StartLine,
			col:    m.StartColumn,
			start:  uint64(m.TC),
		}, nil
	}
}
