package scanner

import (
	"testing"

	"github.com/gespiton/purplex"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/timtadh/lexmachine"
)

func makeAdapter(t *testing.T) *LMAdapter {
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`( |\t|\n|\r)+`), Skip)
	}
	lm, err := NewLMAdapter(init, []TokenDef{
		{Name: "NUMBER", Pattern: `[0-9]+`},
		Literal("+"),
		Literal("*"),
		Literal("("),
		Literal(")"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return lm
}

func TestVocabulary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.scanner")
	defer teardown()
	//
	lm := makeAdapter(t)
	vocab := lm.Vocabulary()
	if len(vocab) != 5 {
		t.Fatalf("Expected 5 terminals, have %d", len(vocab))
	}
	// token values are dense, starting at 1, in declaration order
	for n, term := range vocab {
		if term.Token != n+1 {
			t.Errorf("Expected terminal #%d to have token value %d, has %d", n, n+1, term.Token)
		}
	}
	if lm.TokenID("NUMBER") != 1 || lm.TokenID("+") != 2 {
		t.Errorf("Unexpected token IDs: NUMBER=%d, +=%d", lm.TokenID("NUMBER"), lm.TokenID("+"))
	}
	if lm.TokenName(1) != "NUMBER" {
		t.Errorf("Expected token 1 to be named NUMBER, is %q", lm.TokenName(1))
	}
	if lm.TokenID("undeclared") != 0 {
		t.Errorf("Expected ID 0 for an undeclared terminal")
	}
}

func TestScanTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.scanner")
	defer teardown()
	//
	lm := makeAdapter(t)
	scan, err := lm.Scanner("1 + 22 * (333)")
	if err != nil {
		t.Fatal(err)
	}
	expect := []struct {
		name   string
		lexeme string
	}{
		{"NUMBER", "1"}, {"+", "+"}, {"NUMBER", "22"}, {"*", "*"},
		{"(", "("}, {"NUMBER", "333"}, {")", ")"},
	}
	for n, e := range expect {
		token := scan.NextToken()
		if token.Name() != e.name || token.Lexeme() != e.lexeme {
			t.Errorf("Token #%d: expected %s %q, have %s %q", n, e.name, e.lexeme,
				token.Name(), token.Lexeme())
		}
		if token.Value() != e.lexeme { // default semantic value is the lexeme
			t.Errorf("Token #%d: expected value %q, have %v", n, e.lexeme, token.Value())
		}
	}
	eof := scan.NextToken()
	if eof.TokType() != purplex.EOF {
		t.Errorf("Expected EOF after the last token, have %d", eof.TokType())
	}
	if eof.Value() != nil {
		t.Errorf("Expected the EOF token to carry no value")
	}
}

func TestScanSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.scanner")
	defer teardown()
	//
	lm := makeAdapter(t)
	scan, err := lm.Scanner("11+222")
	if err != nil {
		t.Fatal(err)
	}
	spans := []purplex.Span{{0, 2}, {2, 3}, {3, 6}}
	for n, expect := range spans {
		token := scan.NextToken()
		if token.Span() != expect {
			t.Errorf("Token #%d: expected span %v, have %v", n, expect, token.Span())
		}
	}
}

func TestScanErrorRecovery(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "purplex.scanner")
	defer teardown()
	//
	lm := makeAdapter(t)
	scan, err := lm.Scanner("1 @ 2")
	if err != nil {
		t.Fatal(err)
	}
	errcnt := 0
	scan.SetErrorHandler(func(error) { errcnt++ })
	var lexemes []string
	token := scan.NextToken()
	for token.TokType() != purplex.EOF {
		lexemes = append(lexemes, token.Lexeme())
		token = scan.NextToken()
	}
	if errcnt == 0 {
		t.Error("Expected the error handler to be called for '@'")
	}
	if len(lexemes) != 2 || lexemes[0] != "1" || lexemes[1] != "2" {
		t.Errorf("Expected scanning to recover and yield [1 2], have %v", lexemes)
	}
}
