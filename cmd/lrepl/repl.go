package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/timtadh/lexmachine"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/gespiton/purplex/lr"
	"github.com/gespiton/purplex/lr/clr"
	"github.com/gespiton/purplex/lr/scanner"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/

// tracer traces with key 'purplex.lr'.
func tracer() tracing.Trace {
	return tracing.Select("purplex.lr")
}

func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	dotfile := flag.String("dump", "", "Dump the CFSM to a GraphViz file")
	htmlfile := flag.String("html", "", "Export ACTION/GOTO tables to an HTML file")
	flag.Parse()
	tracer().SetTraceLevel(traceLevel(*tlevel))
	pterm.Info.Println("Welcome to LREPL") // colored welcome message
	//
	// set up grammar, tables and parser
	lm, parser, lrgen, err := buildExprParser()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	if lrgen.HasConflicts {
		pterm.Error.Println("grammar has conflicts; entries were overwritten")
	}
	if *dotfile != "" {
		lrgen.CFSM().CFSM2GraphViz(*dotfile)
		pterm.Info.Printf("CFSM written to %s\n", *dotfile)
	}
	if *htmlfile != "" {
		if err := exportTables(lrgen, *htmlfile); err != nil {
			pterm.Error.Println(err.Error())
		} else {
			pterm.Info.Printf("tables written to %s\n", *htmlfile)
		}
	}
	//
	// set up REPL
	repl, err := readline.New("lrepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			break
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		value, err := parser.ParseText(lm, input)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		pterm.Info.Println(fmt.Sprintf("= %v", value))
	}
}

// buildExprParser compiles the demo expression grammar into tables and
// wraps them in a runtime parser.
func buildExprParser() (*scanner.LMAdapter, *clr.Parser, *lr.TableGenerator, error) {
	lm, err := scanner.NewLMAdapter(skipSpace, []scanner.TokenDef{
		{Name: "NUMBER", Pattern: `[0-9]+(\.[0-9]+)?`},
		scanner.Literal("+"),
		scanner.Literal("-"),
		scanner.Literal("*"),
		scanner.Literal("/"),
		scanner.Literal("("),
		scanner.Literal(")"),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	b := lr.NewGrammarBuilder("Expressions")
	b.Rule("Expr : Expr + Term", binary)
	b.Rule("Expr : Expr - Term", binary)
	b.Rule("Expr : Term", pass)
	b.Rule("Term : Term * Factor", binary)
	b.Rule("Term : Term / Factor", binary)
	b.Rule("Term : Factor", pass)
	b.Rule("Factor : NUMBER", number)
	b.Rule("Factor : ( Expr )", parens)
	g, err := b.Grammar(lm.Vocabulary(), "Expr")
	if err != nil {
		return nil, nil, nil, err
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		return nil, nil, nil, err
	}
	parser := clr.NewParser(g, lrgen.GotoTable(), lrgen.ActionTable(), lrgen.InitialState())
	return lm, parser, lrgen, nil
}

// --- Semantic actions for the demo grammar ------------------------------

func number(args []interface{}) (interface{}, error) {
	return strconv.ParseFloat(args[0].(string), 64)
}

func pass(args []interface{}) (interface{}, error) {
	return args[0], nil
}

func parens(args []interface{}) (interface{}, error) {
	return args[1], nil
}

func binary(args []interface{}) (interface{}, error) {
	lhs, rhs := args[0].(float64), args[2].(float64)
	switch args[1].(string) {
	case "+":
		return lhs + rhs, nil
	case "-":
		return lhs - rhs, nil
	case "*":
		return lhs * rhs, nil
	case "/":
		if rhs == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lhs / rhs, nil
	}
	return nil, fmt.Errorf("unknown operator %v", args[1])
}

// ------------------------------------------------------------------------

// skipSpace adds a rule for ignoring whitespace to the lexer.
func skipSpace(lexer *lexmachine.Lexer) {
	lexer.Add([]byte(`( |\t|\n|\r)+`), scanner.Skip)
}

func exportTables(lrgen *lr.TableGenerator, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	lr.ActionTableAsHTML(lrgen, f)
	lr.GotoTableAsHTML(lrgen, f)
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func traceLevel(l string) tracing.TraceLevel {
	switch strings.ToLower(l) {
	case "debug":
		return tracing.LevelDebug
	case "error":
		return tracing.LevelError
	}
	return tracing.LevelInfo
}
