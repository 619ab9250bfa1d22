package lr

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gespiton/purplex"
)

// === Symbols ===============================================================

// Symbol is a grammar symbol, either a terminal or a non-terminal. Symbols
// carry a dense integer value: terminals the token value from the scanner
// vocabulary, non-terminals an ID from a region above the terminal range.
// The two value spaces never overlap, which lets a single GOTO matrix hold
// transitions on both kinds of symbols.
type Symbol struct {
	Name     string
	Value    int
	terminal bool
}

// IsTerminal returns true if the symbol represents a terminal.
func (s *Symbol) IsTerminal() bool {
	return s.terminal
}

// TokenType returns the symbol's value as a token type.
func (s *Symbol) TokenType() purplex.TokType {
	return purplex.TokType(s.Value)
}

func (s *Symbol) String() string {
	return s.Name
}

// === Rules =================================================================

// RuleAction is a semantic action attached to a grammar rule. On reduction
// the parser calls it with the semantic values of the rule's right-hand side,
// in left-to-right order (no arguments for an epsilon rule), and pushes the
// returned value. A non-nil error aborts the parse.
type RuleAction func(args []interface{}) (interface{}, error)

// Rule is a grammar production with an attached semantic action.
// Rule number 0 is always the synthetic start rule S' -> S.
type Rule struct {
	Serial  int     // order of appearance of this rule in the grammar
	LHS     *Symbol // left-hand side of the rule
	rhs     []*Symbol
	Handler RuleAction
}

func newRule(serial int, lhs *Symbol, rhs []*Symbol, handler RuleAction) *Rule {
	return &Rule{
		Serial:  serial,
		LHS:     lhs,
		rhs:     rhs,
		Handler: handler,
	}
}

// RHS returns the symbols of the right-hand side of a rule.
func (r *Rule) RHS() []*Symbol {
	return r.rhs
}

// Arity returns the number of right-hand side symbols. Epsilon rules have
// arity 0.
func (r *Rule) Arity() int {
	return len(r.rhs)
}

// IsEps returns true for an epsilon rule, i.e. a rule with an empty
// right-hand side.
func (r *Rule) IsEps() bool {
	return len(r.rhs) == 0
}

func (r *Rule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: [%s] ::= [", r.Serial, r.LHS.Name)
	for i, sym := range r.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym.Name)
	}
	b.WriteString("]")
	return b.String()
}

// === Grammar ===============================================================

// Terminal declares a terminal symbol of a grammar, pairing its name with
// the token value a scanner will report for it. Scanner adapters provide
// the full vocabulary of a grammar (see scanner.LMAdapter.Vocabulary).
type Terminal struct {
	Name  string
	Token int
}

// Grammar is a validated, augmented grammar, ready for analysis and table
// generation. Grammars are immutable; construct one with a GrammarBuilder.
type Grammar struct {
	Name         string // a grammar identifier, for documentation purposes
	rules        []*Rule
	symbols      map[string]*Symbol
	terminals    []*Symbol          // in vocabulary order
	nonterminals []*Symbol          // in declaration order, S' last
	rulesOf      map[*Symbol][]*Rule // rules grouped by LHS, in serial order
	eofSymbol    *Symbol             // pseudo-terminal for end of input
}

// GrammarError signals an inconsistent grammar definition. No partial
// grammar or tables result from a failed construction.
type GrammarError struct {
	Grammar string // name of the offending grammar
	Msg     string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar %q: %s", e.Grammar, e.Msg)
}

// Rule returns a grammar rule by its serial number, or nil if out of range.
// Rule(0) is the synthetic start rule.
func (g *Grammar) Rule(serial int) *Rule {
	if serial < 0 || serial >= len(g.rules) {
		return nil
	}
	return g.rules[serial]
}

// Size returns the number of rules in the grammar, including the synthetic
// start rule.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// SymbolByName gets the symbol for a given name, if it exists in the grammar.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.symbols[name]
}

// StartRule returns the synthetic start rule S' -> S.
func (g *Grammar) StartRule() *Rule {
	return g.rules[0]
}

// EOFSymbol returns the pseudo-terminal representing end of input.
func (g *Grammar) EOFSymbol() *Symbol {
	return g.eofSymbol
}

// EachSymbol iterates over all symbols of the grammar, terminals first
// (in vocabulary order), then non-terminals (in declaration order).
// The iteration order is fixed for a grammar, which makes automaton
// construction deterministic.
func (g *Grammar) EachSymbol(f func(A *Symbol) interface{}) []interface{} {
	var results []interface{}
	for _, t := range g.terminals {
		results = append(results, f(t))
	}
	for _, n := range g.nonterminals {
		results = append(results, f(n))
	}
	return results
}

// EachNonTerminal iterates over all non-terminal symbols of the grammar.
func (g *Grammar) EachNonTerminal(f func(N *Symbol) interface{}) []interface{} {
	var results []interface{}
	for _, n := range g.nonterminals {
		results = append(results, f(n))
	}
	return results
}

// FindNonTermRules returns all rules with a given non-terminal as their
// left-hand side, in serial order.
func (g *Grammar) FindNonTermRules(sym *Symbol) []*Rule {
	return g.rulesOf[sym]
}

// TokenValueExtent returns the lowest and highest symbol value in use,
// including the end-of-input pseudo-terminal. Parser tables are sized
// from this extent.
func (g *Grammar) TokenValueExtent() (int, int) {
	min, max := int(purplex.EOF), int(purplex.EOF)
	g.EachSymbol(func(A *Symbol) interface{} {
		if A.Value > max {
			max = A.Value
		} else if A.Value < min {
			min = A.Value
		}
		return nil
	})
	return min, max
}

// Dump is a debugging helper, listing all rules of the grammar.
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s --------------------------------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%v", r)
	}
	tracer().Debugf("-------------------------------------------")
}

// === Grammar builder =======================================================

// GrammarBuilder collects rule registrations before any table is built.
// Create one with NewGrammarBuilder. Registration does not validate symbol
// references; validation happens in Grammar().
type GrammarBuilder struct {
	name  string
	decls []ruleDecl
	errs  []string
}

type ruleDecl struct {
	lhs     string
	rhs     []string
	handler RuleAction
}

// NewGrammarBuilder gets a new grammar builder, given the name of the
// grammar to build.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{name: name}
}

// Rule registers a production, given as a rule string of the form
//
//	"LHS : SYM1 SYM2 ..."
//
// with an empty right-hand side denoting an epsilon production. Symbols are
// separated by whitespace. The same (LHS, RHS) pair may be registered more
// than once with different handlers; exact duplicates are dropped.
func (b *GrammarBuilder) Rule(rule string, handler RuleAction) *GrammarBuilder {
	parts := strings.SplitN(rule, ":", 2)
	if len(parts) != 2 {
		b.errs = append(b.errs, fmt.Sprintf("rule %q lacks a ':' separator", rule))
		return b
	}
	lhs := strings.TrimSpace(parts[0])
	if lhs == "" {
		b.errs = append(b.errs, fmt.Sprintf("rule %q has an empty left-hand side", rule))
		return b
	}
	rhs := strings.Fields(parts[1])
	decl := ruleDecl{lhs: lhs, rhs: rhs, handler: handler}
	for _, d := range b.decls {
		if d.equals(decl) {
			return b // duplicate registration
		}
	}
	b.decls = append(b.decls, decl)
	return b
}

// Identity of a production is (LHS, RHS, handler): the same rule string with
// a distinct handler is a distinct production.
func (d ruleDecl) equals(other ruleDecl) bool {
	if d.lhs != other.lhs || len(d.rhs) != len(other.rhs) {
		return false
	}
	for i := range d.rhs {
		if d.rhs[i] != other.rhs[i] {
			return false
		}
	}
	return handlerID(d.handler) == handlerID(other.handler)
}

func handlerID(h RuleAction) uintptr {
	if h == nil {
		return 0
	}
	return reflect.ValueOf(h).Pointer()
}

// List registers productions for a one-or-more repetition:
//
//	nonterminal : nonterminal singular
//	nonterminal : singular
//
// The handler is shared by both productions and receives either two
// arguments (list so far, next element) or one (the first element).
func (b *GrammarBuilder) List(nonterminal, singular string, handler RuleAction) *GrammarBuilder {
	b.Rule(fmt.Sprintf("%s : %s %s", nonterminal, nonterminal, singular), handler)
	b.Rule(fmt.Sprintf("%s : %s", nonterminal, singular), handler)
	return b
}

// OptList registers productions for a zero-or-more repetition:
//
//	nonterminal : nonterminal singular
//	nonterminal :
//
// The handler receives either two arguments or none (for the empty list).
func (b *GrammarBuilder) OptList(nonterminal, singular string, handler RuleAction) *GrammarBuilder {
	b.Rule(fmt.Sprintf("%s : %s %s", nonterminal, nonterminal, singular), handler)
	b.Rule(fmt.Sprintf("%s :", nonterminal), handler)
	return b
}

// SepList registers productions for a non-empty, separator-delimited list,
// using a helper non-terminal:
//
//	nonterminal : nonterminal&inner
//	nonterminal&inner : nonterminal&inner separator singular
//	nonterminal&inner : singular
//
// The handler is shared by all three productions and can distinguish them
// by argument count (1 for pass-through and first element, 3 for an
// extension step).
func (b *GrammarBuilder) SepList(nonterminal, singular, separator string, handler RuleAction) *GrammarBuilder {
	inner := nonterminal + "&inner"
	b.Rule(fmt.Sprintf("%s : %s", nonterminal, inner), handler)
	b.Rule(fmt.Sprintf("%s : %s %s %s", inner, inner, separator, singular), handler)
	b.Rule(fmt.Sprintf("%s : %s", inner, singular), handler)
	return b
}

// OptSepList is SepList plus an epsilon production for the empty list:
//
//	nonterminal :
func (b *GrammarBuilder) OptSepList(nonterminal, singular, separator string, handler RuleAction) *GrammarBuilder {
	b.SepList(nonterminal, singular, separator, handler)
	b.Rule(fmt.Sprintf("%s :", nonterminal), handler)
	return b
}

// Grammar validates the registered rules against a terminal vocabulary and
// a start symbol, and constructs an immutable, augmented grammar from them.
//
// Construction fails with a GrammarError if the start symbol has no
// production, if a right-hand side references a symbol that is neither a
// declared terminal nor the left-hand side of some rule, or if a rule's
// left-hand side collides with a terminal name.
func (b *GrammarBuilder) Grammar(vocab []Terminal, start string) (*Grammar, error) {
	if len(b.errs) > 0 {
		return nil, &GrammarError{Grammar: b.name, Msg: b.errs[0]}
	}
	g := &Grammar{
		Name:    b.name,
		symbols: make(map[string]*Symbol),
		rulesOf: make(map[*Symbol][]*Rule),
	}
	maxtok := 0
	for _, t := range vocab {
		if _, ok := g.symbols[t.Name]; ok {
			return nil, &GrammarError{b.name, fmt.Sprintf("terminal %q declared twice", t.Name)}
		}
		sym := &Symbol{Name: t.Name, Value: t.Token, terminal: true}
		g.symbols[t.Name] = sym
		g.terminals = append(g.terminals, sym)
		if t.Token > maxtok {
			maxtok = t.Token
		}
	}
	g.eofSymbol = &Symbol{Name: purplex.EOFName, Value: int(purplex.EOF), terminal: true}
	// non-terminals are derived from the set of left-hand sides
	ntValue := maxtok + 1
	for _, d := range b.decls {
		if t, ok := g.symbols[d.lhs]; ok && t.terminal {
			return nil, &GrammarError{b.name, fmt.Sprintf("symbol %q is declared as a terminal and used as a left-hand side", d.lhs)}
		}
		if _, ok := g.symbols[d.lhs]; !ok {
			sym := &Symbol{Name: d.lhs, Value: ntValue}
			ntValue++
			g.symbols[d.lhs] = sym
			g.nonterminals = append(g.nonterminals, sym)
		}
	}
	startSym, ok := g.symbols[start]
	if !ok || startSym.terminal {
		return nil, &GrammarError{b.name, fmt.Sprintf("start symbol %q has no production", start)}
	}
	// augment the grammar with S' -> S, serial 0
	augSym := &Symbol{Name: start + "'", Value: ntValue}
	g.symbols[augSym.Name] = augSym
	g.nonterminals = append(g.nonterminals, augSym)
	augment := newRule(0, augSym, []*Symbol{startSym}, nil)
	g.rules = append(g.rules, augment)
	g.rulesOf[augSym] = []*Rule{augment}
	// resolve right-hand sides
	for _, d := range b.decls {
		lhs := g.symbols[d.lhs]
		rhs := make([]*Symbol, 0, len(d.rhs))
		for _, name := range d.rhs {
			sym, ok := g.symbols[name]
			if !ok {
				return nil, &GrammarError{b.name,
					fmt.Sprintf("rule for %q references undefined symbol %q", d.lhs, name)}
			}
			rhs = append(rhs, sym)
		}
		r := newRule(len(g.rules), lhs, rhs, d.handler)
		g.rules = append(g.rules, r)
		g.rulesOf[lhs] = append(g.rulesOf[lhs], r)
	}
	tracer().Infof("grammar %q has %d rules, %d terminals, %d non-terminals",
		g.Name, len(g.rules), len(g.terminals), len(g.nonterminals))
	return g, nil
}
