/*
Package clr provides a canonical LR(1)-parser. Clients have to use the
tools of package lr to prepare the necessary parse tables. The parser
utilizes these tables to drive a shift-reduce-accept stack machine over a
token stream, folding it into a single semantic value by invoking the
semantic actions attached to grammar rules.

The main focus for this implementation is adaptability and on-the-fly
usage. Clients are able to construct the parse tables from a grammar and
use the parser directly, without a code-generation or compile step.

Usage

Clients construct a grammar with a grammar builder, using the vocabulary
of a scanner adapter:

	lm, _ := scanner.NewLMAdapter(nil, []scanner.TokenDef{
	    {Name: "a", Pattern: "a"},
	    {Name: "b", Pattern: "b"},
	})
	b := lr.NewGrammarBuilder("Nesting")
	b.Rule("S : a S b", wrap)
	b.Rule("S :", base)
	g, err := b.Grammar(lm.Vocabulary(), "S")

This grammar is subjected to grammar analysis and table generation:

	ga := lr.Analysis(g)
	lrgen := lr.NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil { ... }

Finally parse some input:

	p := clr.NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
	value, err := p.ParseText(lm, "aabb")

Compiled tables are immutable and may be shared by any number of
concurrent Parse calls; every call owns a private parse stack.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package clr

import (
	"fmt"

	"github.com/gespiton/purplex"
	"github.com/npillmayer/schuko/tracing"

	"github.com/gespiton/purplex/lr"
	"github.com/gespiton/purplex/lr/scanner"
)

// tracer traces with key 'purplex.lr'.
func tracer() tracing.Trace {
	return tracing.Select("purplex.lr")
}

// Parser is a canonical LR(1)-parser type. Create and initialize one with
// clr.NewParser(...). A Parser holds no mutable parse state and may be
// used from multiple goroutines at once.
type Parser struct {
	G       *lr.Grammar
	gotoT   *lr.Table // GOTO table
	actionT *lr.Table // ACTION table
	initial uint      // ID of the initial CFSM state
}

// We store triples of state-ID, symbol name and semantic value on the
// parse stack. The bottom of every stack is a sentinel frame.
type stackitem struct {
	stateID uint        // ID of a CFSM state
	sym     string      // name of the symbol the state was entered with
	value   interface{} // semantic value for the symbol
	span    purplex.Span
}

const (
	initialSymbol = "<initial>"
	initialValue  = "<begin>"
)

// NewParser creates a canonical LR(1) parser from compiled tables.
func NewParser(g *lr.Grammar, gotoTable, actionTable *lr.Table, initial uint) *Parser {
	return &Parser{
		G:       g,
		gotoT:   gotoTable,
		actionT: actionTable,
		initial: initial,
	}
}

// --- Parse errors -----------------------------------------------------

// UnexpectedTokenError is returned when no action is defined for the
// current parser state and lookahead token.
type UnexpectedTokenError struct {
	Token purplex.Token // the offending token
	State uint          // parser state the token was seen in
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %q (%s) at %s in state %d",
		e.Token.Lexeme(), e.Token.Name(), e.Token.Pos(), e.State)
}

// UnexpectedEndOfInputError is returned when the input is exhausted before
// an accept is reachable.
type UnexpectedEndOfInputError struct {
	State uint // parser state at end of input
}

func (e *UnexpectedEndOfInputError) Error() string {
	return fmt.Sprintf("unexpected end of input in state %d", e.State)
}

// TrailingInputError is returned when the accept action is reached with
// more than one semantic value left on the parse stack.
type TrailingInputError struct {
	Frames int // number of non-sentinel frames on the stack
}

func (e *TrailingInputError) Error() string {
	return fmt.Sprintf("unparsed input remaining (%d stack frames at accept)", e.Frames)
}

// --- Parsing ----------------------------------------------------------

// Parse starts a new parse, given a scanner tokenizing the input. It
// returns the semantic value produced by the reduction rooted at the start
// symbol.
//
// The scanner must not emit an explicit end-of-input token; the parser
// appends the end-of-input sentinel itself when the scanner reports
// purplex.EOF.
func (p *Parser) Parse(scan scanner.Tokenizer) (interface{}, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p.G == nil || p.gotoT == nil || p.actionT == nil {
		return nil, fmt.Errorf("LR(1)-parser not initialized")
	}
	stack := make([]stackitem, 0, 512) // parse stack, private to this call
	stack = append(stack, stackitem{p.initial, initialSymbol, initialValue, purplex.Span{}})
	token := scan.NextToken()
	for {
		tos := stack[len(stack)-1]
		tokval := token.TokType()
		tracer().Debugf("state %d, lookahead %q/%d", tos.stateID, token.Lexeme(), tokval)
		action := p.actionT.Value(tos.stateID, tokval)
		switch {
		case action == p.actionT.NullValue():
			if tokval == purplex.EOF {
				return nil, &UnexpectedEndOfInputError{State: tos.stateID}
			}
			return nil, &UnexpectedTokenError{Token: token, State: tos.stateID}
		case action == lr.AcceptAction:
			// the accept consumes the end-of-input sentinel
			if len(stack) != 2 {
				return nil, &TrailingInputError{Frames: len(stack) - 1}
			}
			tracer().Debugf("accept, result = %v", stack[1].value)
			return stack[1].value, nil
		case action == lr.ShiftAction:
			nextstate := p.gotoT.Value(tos.stateID, tokval)
			if nextstate == p.gotoT.NullValue() {
				return nil, fmt.Errorf("no shift target for token %d in state %d", tokval, tos.stateID)
			}
			tracer().Debugf("shifting %q, next state = %d", token.Lexeme(), nextstate)
			stack = append(stack, // push a terminal state onto stack
				stackitem{uint(nextstate), token.Name(), token.Value(), token.Span()})
			token = scan.NextToken()
		default: // action > 0, reduce rule with serial 'action'
			rule := p.G.Rule(int(action))
			var err error
			if stack, err = p.reduce(stack, rule, token); err != nil {
				return nil, err
			}
			// the lookahead token is not consumed
		}
	}
}

// ParseText tokenizes an input string with a scanner created from the
// given adapter, then parses the token stream.
func (p *Parser) ParseText(lm *scanner.LMAdapter, input string) (interface{}, error) {
	scan, err := lm.Scanner(input)
	if err != nil {
		return nil, err
	}
	return p.Parse(scan)
}

// reduce performs a reduce action for a rule
//
//	LHS --> X1 ... Xk   (with X being terminals or non-terminals)
//
// The top k frames of the stack hold the semantic values for X1 ... Xk.
// They are popped (none for an epsilon rule), their values are handed to
// the rule's action in left-to-right order, and the resulting value is
// pushed under the state GOTO(S, LHS), where S is the state uncovered by
// the pops.
func (p *Parser) reduce(stack []stackitem, rule *lr.Rule, lookahead purplex.Token) ([]stackitem, error) {
	tracer().Infof("reduce %v", rule)
	k := rule.Arity()
	var args []interface{}
	var handlespan purplex.Span
	if k > 0 { // epsilon rules pop nothing
		args = make([]interface{}, k)
		for n, frame := range stack[len(stack)-k:] {
			args[n] = frame.value
			if n == 0 {
				handlespan = frame.span
			} else {
				handlespan = handlespan.Extend(frame.span)
			}
		}
		stack = stack[:len(stack)-k]
	} else {
		// an epsilon handle sits just before the lookahead
		pos := lookahead.Span().From()
		handlespan = purplex.Span{pos, pos}
	}
	tos := stack[len(stack)-1]
	nextstate := p.gotoT.Value(tos.stateID, rule.LHS.TokenType())
	if nextstate == p.gotoT.NullValue() {
		// broken tables; cannot happen with a generated GOTO table
		return stack, fmt.Errorf("no GOTO entry for %s in state %d", rule.LHS.Name, tos.stateID)
	}
	var value interface{}
	if rule.Handler != nil {
		var err error
		if value, err = rule.Handler(args); err != nil {
			return stack, err
		}
	}
	tracer().Debugf("reduced to next state = %d", nextstate)
	stack = append(stack, // push a non-terminal state onto stack
		stackitem{uint(nextstate), rule.LHS.Name, value, handlespan})
	return stack, nil
}
