package clr

import (
	"strconv"
	"testing"

	"github.com/gespiton/purplex"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/gespiton/purplex/lr"
	"github.com/gespiton/purplex/lr/scanner"
)

// --- Test tokenizer ---------------------------------------------------------

// sliceTokenizer feeds a fixed sequence of tokens to the parser. It counts
// the calls to NextToken, so tests can check that every token has been
// consumed.
type sliceTokenizer struct {
	tokens []purplex.Token
	pos    int
	reads  int
}

func tokenize(vocab map[string]int, names ...string) *sliceTokenizer {
	s := &sliceTokenizer{}
	for _, name := range names {
		s.tokens = append(s.tokens, scanner.MakeDefaultToken(
			purplex.TokType(vocab[name]), name, name, purplex.Position{}, purplex.Span{}))
	}
	return s
}

func (s *sliceTokenizer) NextToken() purplex.Token {
	s.reads++
	if s.pos >= len(s.tokens) {
		return scanner.MakeEOFToken(purplex.Position{})
	}
	t := s.tokens[s.pos]
	s.pos++
	return t
}

func (s *sliceTokenizer) SetErrorHandler(func(error)) {}

var _ scanner.Tokenizer = (*sliceTokenizer)(nil)

// --- Grammars ---------------------------------------------------------------

var pairsVocab = map[string]int{"a": 1, "b": 2}

// makePairsParser builds a parser for nested pairs:
//
//	S ➞ a S b  |  ε
//
// The semantic value is the nesting depth.
func makePairsParser(t *testing.T) *Parser {
	b := lr.NewGrammarBuilder("Pairs")
	b.Rule("S : a S b", func(args []interface{}) (interface{}, error) {
		return args[1].(int) + 1, nil
	})
	b.Rule("S :", func(args []interface{}) (interface{}, error) {
		if len(args) != 0 {
			t.Errorf("Expected no arguments for an epsilon reduction, have %d", len(args))
		}
		return 0, nil
	})
	g, err := b.Grammar([]lr.Terminal{{Name: "a", Token: 1}, {Name: "b", Token: 2}}, "S")
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	return NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
}

// --- The tests --------------------------------------------------------------

func TestParsePairs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	parser := makePairsParser(t)
	inputs := []struct {
		tokens []string
		depth  int
	}{
		{nil, 0},
		{[]string{"a", "b"}, 1},
		{[]string{"a", "a", "b", "b"}, 2},
		{[]string{"a", "a", "a", "b", "b", "b"}, 3},
	}
	for _, input := range inputs {
		scan := tokenize(pairsVocab, input.tokens...)
		value, err := parser.Parse(scan)
		if err != nil {
			t.Errorf("Parse of %v failed: %v", input.tokens, err)
			continue
		}
		if value.(int) != input.depth {
			t.Errorf("Expected depth %d for %v, have %v", input.depth, input.tokens, value)
		}
		if scan.reads != len(input.tokens)+1 {
			t.Errorf("Expected %d token reads for %v, have %d", len(input.tokens)+1,
				input.tokens, scan.reads)
		}
	}
}

func TestParseUnexpectedToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	parser := makePairsParser(t)
	inputs := []struct {
		tokens    []string
		offending string
	}{
		{[]string{"b"}, "b"},
		{[]string{"a", "b", "a"}, "a"}, // complete pair with trailing garbage
	}
	for _, input := range inputs {
		_, err := parser.Parse(tokenize(pairsVocab, input.tokens...))
		if err == nil {
			t.Errorf("Expected a parse error for %v", input.tokens)
			continue
		}
		uerr, ok := err.(*UnexpectedTokenError)
		if !ok {
			t.Errorf("Expected an *UnexpectedTokenError for %v, have %T", input.tokens, err)
			continue
		}
		if uerr.Token.Lexeme() != input.offending {
			t.Errorf("Expected the offending token to be %q, is %q",
				input.offending, uerr.Token.Lexeme())
		}
	}
}

func TestParseUnexpectedEndOfInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	parser := makePairsParser(t)
	_, err := parser.Parse(tokenize(pairsVocab, "a")) // missing closing b
	if err == nil {
		t.Fatal("Expected a parse error for unterminated input")
	}
	if _, ok := err.(*UnexpectedEndOfInputError); !ok {
		t.Fatalf("Expected an *UnexpectedEndOfInputError, have %T", err)
	}
}

// An accepting parse has to leave exactly the start symbol's value on the
// stack. We provoke a premature accept with hand-made tables.
func TestParseTrailingInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Tiny")
	b.Rule("S : a", nil)
	g, err := b.Grammar([]lr.Terminal{{Name: "a", Token: 1}}, "S")
	if err != nil {
		t.Fatal(err)
	}
	min, max := g.TokenValueExtent()
	extent := max - min + 1
	actions := lr.NewTable(3, extent, purplex.TokType(min))
	gotos := lr.NewTable(3, extent, purplex.TokType(min))
	actions.Set(0, 1, lr.ShiftAction)
	gotos.Set(0, 1, 1)
	actions.Set(1, 1, lr.ShiftAction) // bogus: keeps shifting instead of reducing
	gotos.Set(1, 1, 2)
	actions.Set(2, purplex.EOF, lr.AcceptAction)
	parser := NewParser(g, gotos, actions, 0)
	_, err = parser.Parse(tokenize(map[string]int{"a": 1}, "a", "a"))
	if err == nil {
		t.Fatal("Expected an error for an accept with leftover stack frames")
	}
	terr, ok := err.(*TrailingInputError)
	if !ok {
		t.Fatalf("Expected a *TrailingInputError, have %T", err)
	}
	if terr.Frames != 2 {
		t.Errorf("Expected 2 leftover frames, have %d", terr.Frames)
	}
}

func TestParseSepList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	collect := func(args []interface{}) (interface{}, error) {
		switch len(args) {
		case 1:
			if list, ok := args[0].([]string); ok {
				return list, nil // pass-through of the inner list
			}
			return []string{args[0].(string)}, nil // first element
		case 3:
			return append(args[0].([]string), args[2].(string)), nil // list , element
		}
		return nil, nil
	}
	b := lr.NewGrammarBuilder("Args")
	b.SepList("Args", "x", ",", collect)
	vocab := map[string]int{"x": 1, ",": 2}
	g, err := b.Grammar([]lr.Terminal{{Name: "x", Token: 1}, {Name: ",", Token: 2}}, "Args")
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	parser := NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
	// elements get distinct lexemes, so element order is observable
	elements := func(lexemes ...string) *sliceTokenizer {
		s := &sliceTokenizer{}
		for n, lexeme := range lexemes {
			if n > 0 {
				s.tokens = append(s.tokens, scanner.MakeDefaultToken(
					2, ",", ",", purplex.Position{}, purplex.Span{}))
			}
			s.tokens = append(s.tokens, scanner.MakeDefaultToken(
				1, "x", lexeme, purplex.Position{}, purplex.Span{}))
		}
		return s
	}
	inputs := [][]string{
		{"first"},
		{"first", "second"},
		{"first", "second", "third"},
	}
	for _, lexemes := range inputs {
		value, err := parser.Parse(elements(lexemes...))
		if err != nil {
			t.Errorf("Parse of %v failed: %v", lexemes, err)
			continue
		}
		list := value.([]string)
		if len(list) != len(lexemes) {
			t.Errorf("Expected %d list elements, have %v", len(lexemes), list)
			continue
		}
		for n, lexeme := range lexemes {
			if list[n] != lexeme {
				t.Errorf("Expected element #%d to be %q, is %q", n, lexeme, list[n])
			}
		}
	}
	// a separated list has at least one element
	if _, err := parser.Parse(tokenize(vocab)); err == nil {
		t.Error("Expected an empty separated list to be rejected")
	} else if _, ok := err.(*UnexpectedEndOfInputError); !ok {
		t.Errorf("Expected an *UnexpectedEndOfInputError, have %T", err)
	}
}

func TestParseText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	lm, parser := makeExprParser(t)
	inputs := []struct {
		text  string
		value float64
	}{
		{"1", 1},
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10/4", 2.5},
	}
	for _, input := range inputs {
		value, err := parser.ParseText(lm, input.text)
		if err != nil {
			t.Errorf("Parse of %q failed: %v", input.text, err)
			continue
		}
		if value.(float64) != input.value {
			t.Errorf("Expected %q = %v, have %v", input.text, input.value, value)
		}
	}
}

func TestParseHandlerError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	lm, parser := makeExprParser(t)
	if _, err := parser.ParseText(lm, "1/0"); err == nil {
		t.Error("Expected the division handler to abort the parse")
	}
}

// With an ambiguous grammar the later table write wins, which resolves the
// shift/reduce conflict to reduce. Subtraction then associates to the left.
func TestAmbiguousReducePreference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Ambiguous")
	b.Rule("E : E - E", func(args []interface{}) (interface{}, error) {
		return args[0].(int) - args[2].(int), nil
	})
	b.Rule("E : n", func(args []interface{}) (interface{}, error) {
		return len(args[0].(string)), nil // token lexeme "n" has length 1
	})
	g, err := b.Grammar([]lr.Terminal{{Name: "n", Token: 1}, {Name: "-", Token: 2}}, "E")
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	if !lrgen.HasConflicts {
		t.Error("Expected conflicts to be flagged")
	}
	parser := NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
	vocab := map[string]int{"n": 1, "-": 2}
	value, err := parser.Parse(tokenize(vocab, "n", "-", "n", "-", "n"))
	if err != nil {
		t.Fatal(err)
	}
	if value.(int) != -1 { // (1-1)-1, not 1-(1-1)
		t.Errorf("Expected left-associative result -1, have %v", value)
	}
}

// --- Expression grammar with a lexmachine scanner ---------------------------

func makeExprParser(t *testing.T) (*scanner.LMAdapter, *Parser) {
	lm, err := scanner.NewLMAdapter(nil, []scanner.TokenDef{
		{Name: "NUMBER", Pattern: `[0-9]+(\.[0-9]+)?`},
		scanner.Literal("+"),
		scanner.Literal("*"),
		scanner.Literal("/"),
		scanner.Literal("("),
		scanner.Literal(")"),
	})
	if err != nil {
		t.Fatal(err)
	}
	pass := func(args []interface{}) (interface{}, error) { return args[0], nil }
	b := lr.NewGrammarBuilder("Expressions")
	b.Rule("Expr : Expr + Term", func(args []interface{}) (interface{}, error) {
		return args[0].(float64) + args[2].(float64), nil
	})
	b.Rule("Expr : Term", pass)
	b.Rule("Term : Term * Factor", func(args []interface{}) (interface{}, error) {
		return args[0].(float64) * args[2].(float64), nil
	})
	b.Rule("Term : Term / Factor", func(args []interface{}) (interface{}, error) {
		rhs := args[2].(float64)
		if rhs == 0 {
			return nil, &divisionByZero{}
		}
		return args[0].(float64) / rhs, nil
	})
	b.Rule("Term : Factor", pass)
	b.Rule("Factor : NUMBER", func(args []interface{}) (interface{}, error) {
		return strconv.ParseFloat(args[0].(string), 64)
	})
	b.Rule("Factor : ( Expr )", func(args []interface{}) (interface{}, error) {
		return args[1], nil
	})
	g, err := b.Grammar(lm.Vocabulary(), "Expr")
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	return lm, NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
}

type divisionByZero struct{}

func (e *divisionByZero) Error() string {
	return "division by zero"
}
