package lr

import (
	"fmt"
	"io"
	"os"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/gespiton/purplex"
	"github.com/gespiton/purplex/lr/sparse"
)

// Actions for parser action tables. Reduce actions are encoded as the
// serial number of the rule to reduce, which is always positive (serial 0
// is the synthetic start rule, whose completion is reported as
// AcceptAction instead).
const (
	ShiftAction  = int32(-1)
	AcceptAction = int32(-2)
)

// === Closure and Goto-Set Operations =======================================

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 6.5.1 Canonical LR(1) Parsing.

// closure computes the fixed-point expansion of an item set: for every item
// [A -> alpha .B beta, a] with non-terminal B, items [B -> .gamma, b] are
// added for every rule B -> gamma and every b in FIRST(beta a). Distinct
// lookaheads produce distinct items.
//
// Rules are visited in serial order and lookaheads in increasing order, so
// the insertion order of the resulting set is reproducible.
func (ga *LRAnalysis) closure(S *itemSet) *itemSet {
	for n := 0; n < len(S.items); n++ { // S grows while we walk it
		item := S.items[n]
		B := item.PeekSymbol() // get symbol B after dot
		if B == nil || B.IsTerminal() {
			continue
		}
		lookaheads := ga.firstOfSeq(item.suffix(), item.la)
		for _, r := range ga.g.FindNonTermRules(B) {
			for _, la := range lookaheads {
				S.add(Item{rule: r, dot: 0, la: la})
			}
		}
	}
	return S
}

// gotoSet advances the dot over symbol A in every item of a closure where
// A is the symbol after the dot.
//
// for every item in closure C
// if item in C:  N -> ... *A ..., a
//     advance to N -> ... A * ..., a
func (ga *LRAnalysis) gotoSet(closure *itemSet, A *Symbol) *itemSet {
	gotoset := newItemSet()
	for _, i := range closure.items {
		if i.PeekSymbol() == A {
			ii := i.Advance()
			tracer().Debugf("goto(%s) -%s-> %s", i, A, ii)
			gotoset.add(ii)
		}
	}
	return gotoset
}

func (ga *LRAnalysis) gotoSetClosure(i *itemSet, A *Symbol) *itemSet {
	gotoset := ga.gotoSet(i, A)
	if gotoset.empty() {
		return gotoset
	}
	gclosure := ga.closure(gotoset)
	tracer().Debugf("goto(...) --%s--> %s", A, gclosure)
	return gclosure
}

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar, i.e. one closed
// LR(1) item set.
type CFSMState struct {
	ID     uint     // serial ID of this state
	items  *itemSet // configuration items within this state
	Accept bool     // is this an accepting state?
}

// CFSM edge between 2 states, directed and labelled with a symbol
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *Symbol
}

// Dump is a debugging helper
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	s.items.Dump()
	tracer().Debugf("-------------------------")
}

// Create a state from an item set
func state(id uint, iset *itemSet) *CFSMState {
	s := &CFSMState{ID: id}
	if iset == nil {
		s.items = newItemSet()
	} else {
		s.items = iset
	}
	return s
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.size())
}

// The start rule is completed in accepting states.
func (s *CFSMState) containsCompletedStartRule() bool {
	for _, i := range s.items.items {
		if i.rule.Serial == 0 && i.PeekSymbol() == nil {
			return true
		}
	}
	return false
}

// Create an edge
func edge(from, to *CFSMState, label *Symbol) *cfsmEdge {
	return &cfsmEdge{
		from:  from,
		to:    to,
		label: label,
	}
}

// We need this for the set of states. It sorts states by serial ID.
func stateComparator(s1, s2 interface{}) int {
	c1 := s1.(*CFSMState)
	c2 := s2.(*CFSMState)
	return utils.IntComparator(int(c1.ID), int(c2.ID))
}

// Add a state to the CFSM. Checks first if the state is present.
// State IDs are handed out on first admission, so the initial closure
// always becomes state 0 and repeated builds label states identically.
func (c *CFSM) addState(iset *itemSet) *CFSMState {
	s := c.findStateByItems(iset)
	if s == nil {
		s = state(c.cfsmIds, iset)
		c.cfsmIds++
		c.byHash[iset.hash()] = s
	}
	c.states.Add(s)
	return s
}

// Find a CFSM state by the contained item set.
func (c *CFSM) findStateByItems(iset *itemSet) *CFSMState {
	return c.byHash[iset.hash()]
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *Symbol) *cfsmEdge {
	e := edge(s0, s1, sym)
	c.edges.Add(e)
	return e
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	it := c.edges.Iterator()
	r := make([]*cfsmEdge, 0, 2)
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s {
			r = append(r, e)
		}
	}
	return r
}

// targetFor returns the goto-target of a state under a symbol, or nil if
// the goto function is undefined there.
func (c *CFSM) targetFor(s *CFSMState, sym *Symbol) *CFSMState {
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s && e.label == sym {
			return e.to
		}
	}
	return nil
}

// CFSM is the characteristic finite state machine for an LR grammar, i.e.
// the canonical collection of LR(1) item sets together with the goto graph
// between them. Will be constructed by a TableGenerator.
// Clients normally do not use it directly. Nevertheless, there are some
// methods defined on it, e.g, for debugging purposes, or even to
// compute your own tables from it.
type CFSM struct {
	g       *Grammar              // this CFSM is for Grammar g
	states  *treeset.Set          // all the states
	edges   *arraylist.List       // all the edges between states
	byHash  map[string]*CFSMState // states by item-set digest
	S0      *CFSMState            // start state
	cfsmIds uint                  // serial IDs for CFSM states
}

// create an empty (initial) CFSM automata.
func emptyCFSM(g *Grammar) *CFSM {
	c := &CFSM{g: g}
	c.states = treeset.NewWith(stateComparator)
	c.edges = arraylist.New()
	c.byHash = make(map[string]*CFSMState)
	return c
}

// StateCount returns the number of states of the CFSM.
func (c *CFSM) StateCount() int {
	return c.states.Size()
}

// TableGenerator is a generator object to construct LR parser tables.
// Clients usually create a Grammar G, then an LRAnalysis-object for G,
// and then a table generator. TableGenerator.CreateTables() constructs
// the CFSM and parser tables for an LR-parser recognizing grammar G.
//
// By default, conflicting ACTION entries overwrite each other silently
// (the later entry in the fixed iteration order of states and items wins)
// and HasConflicts is set. With Strict set, CreateTables reports the first
// conflict as a GrammarError instead and leaves no tables behind.
type TableGenerator struct {
	g            *Grammar
	ga           *LRAnalysis
	dfa          *CFSM
	gototable    *Table
	actiontable  *Table
	Strict       bool
	HasConflicts bool
}

// NewTableGenerator creates a new TableGenerator for a (previously
// analysed) grammar.
func NewTableGenerator(ga *LRAnalysis) *TableGenerator {
	lrgen := &TableGenerator{}
	lrgen.g = ga.Grammar()
	lrgen.ga = ga
	return lrgen
}

// CFSM returns the characteristic finite state machine (CFSM) for a grammar.
// Usually clients call lrgen.CreateTables() beforehand, but it is possible
// to call lrgen.CFSM() directly. The CFSM will be created, if it has not
// been constructed previously.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		lrgen.dfa = lrgen.buildCFSM()
	}
	return lrgen.dfa
}

// GotoTable returns the GOTO table for LR-parsing a grammar. The tables
// have to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) GotoTable() *Table {
	if lrgen.gototable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.gototable
}

// ActionTable returns the ACTION table for LR-parsing a grammar. The
// tables have to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) ActionTable() *Table {
	if lrgen.actiontable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.actiontable
}

// InitialState returns the ID of the start state of the CFSM.
// It is always 0.
func (lrgen *TableGenerator) InitialState() uint {
	return lrgen.CFSM().S0.ID
}

// CreateTables creates the necessary data structures for a canonical
// LR(1) parser. In Strict mode an unresolved table conflict is returned
// as a GrammarError and no tables are kept.
func (lrgen *TableGenerator) CreateTables() error {
	lrgen.dfa = lrgen.buildCFSM()
	lrgen.gototable = lrgen.BuildGotoTable()
	actions, err := lrgen.BuildActionTable()
	if err != nil {
		lrgen.gototable = nil
		lrgen.actiontable = nil
		return err
	}
	lrgen.actiontable = actions
	return nil
}

// Construct the characteristic finite state machine CFSM for a grammar.
// States are discovered breadth-first from the closure of the start item,
// iterating grammar symbols in their fixed enumeration order, so the
// resulting automaton is identical over repeated builds.
func (lrgen *TableGenerator) buildCFSM() *CFSM {
	tracer().Debugf("=== build CFSM ==================================================")
	G := lrgen.g
	cfsm := emptyCFSM(G)
	closure0 := lrgen.ga.closure(seedItemSet(StartItem(G)))
	closure0.Dump()
	cfsm.S0 = cfsm.addState(closure0)
	S := treeset.NewWith(stateComparator)
	S.Add(cfsm.S0)
	for S.Size() > 0 {
		s := S.Values()[0].(*CFSMState)
		S.Remove(s)
		G.EachSymbol(func(A *Symbol) interface{} {
			gotoset := lrgen.ga.gotoSetClosure(s.items, A)
			if gotoset.empty() {
				return nil
			}
			snew := cfsm.findStateByItems(gotoset)
			if snew == nil {
				snew = cfsm.addState(gotoset)
				S.Add(snew)
				if snew.containsCompletedStartRule() {
					snew.Accept = true
				}
				snew.Dump()
			}
			cfsm.addEdge(s, snew, A)
			return nil
		})
		tracer().Debugf("-----------------------------------------------------------------")
	}
	tracer().Infof("CFSM has %d states", cfsm.states.Size())
	return cfsm
}

func seedItemSet(i Item) *itemSet {
	S := newItemSet()
	S.add(i)
	return S
}

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format, given a filename.
func (c *CFSM) CFSM2GraphViz(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		panic(fmt.Sprintf("file open error: %v", err.Error()))
	}
	defer f.Close()
	f.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, x := range c.states.Values() {
		s := x.(*CFSMState)
		f.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s.ID, nodecolor(s), s.ID, forGraphviz(s.items)))
	}
	it := c.edges.Iterator()
	for it.Next() {
		edge := it.Value().(*cfsmEdge)
		f.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n",
			edge.from.ID, edge.to.ID, edge.label))
	}
	f.WriteString("}\n")
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}

func forGraphviz(S *itemSet) string {
	s := ""
	for _, i := range S.items {
		s = s + i.String() + "\\n"
	}
	return s
}

// ===========================================================================

// BuildGotoTable builds the GOTO table. This is normally not called
// directly, but rather via CreateTables(). The table covers transitions on
// terminals (shift targets) as well as on non-terminals (reduce targets);
// the two symbol-value spaces are disjoint by construction.
func (lrgen *TableGenerator) BuildGotoTable() *Table {
	statescnt := lrgen.CFSM().states.Size()
	mintok, maxtok := lrgen.g.TokenValueExtent()
	extent := maxtok - mintok + 1
	tracer().Infof("GOTO table of size %d x (%d-%d=%d)", statescnt, maxtok, mintok, extent)
	gototable := NewTable(statescnt, extent, purplex.TokType(mintok))
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		for _, e := range lrgen.dfa.allEdges(state) {
			gototable.Set(state.ID, e.label.TokenType(), int32(e.to.ID))
		}
	}
	return gototable
}

// For building an ACTION table we iterate over all the states of the CFSM,
// in ID order. An inner loop iterates over all the LR(1) items within a
// CFSM-state, in canonical item order (rule serial, dot, lookahead).
// If an item has a terminal immediately after the dot and the goto
// function is defined there, we produce a shift entry. If an item's dot is
// behind the complete RHS of a rule, we produce a reduce entry for the
// rule at the item's lookahead - or an accept entry, if the rule is the
// synthetic start rule.
//
// Shift entries are represented as -1, accept entries as -2. Reduce
// entries are encoded as the serial no. of the grammar rule to reduce.
//
// A slot receiving two different actions is a conflict. Without Strict,
// the later write wins and the conflict is only flagged; the fixed item
// order makes the outcome reproducible.
func (lrgen *TableGenerator) BuildActionTable() (*Table, error) {
	statescnt := lrgen.CFSM().states.Size()
	mintok, maxtok := lrgen.g.TokenValueExtent()
	extent := maxtok - mintok + 1
	tracer().Infof("ACTION table of size %d x (%d-%d=%d)", statescnt, maxtok, mintok, extent)
	actions := NewTable(statescnt, extent, purplex.TokType(mintok))
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		tracer().Debugf("--- state %d --------------------------------", state.ID)
		state.items.sortCanonical()
		for _, i := range state.items.items {
			tracer().Debugf("item in s%d = %v", state.ID, i)
			A := i.PeekSymbol()
			if A != nil && A.IsTerminal() {
				if lrgen.dfa.targetFor(state, A) == nil {
					continue
				}
				if err := lrgen.enterAction(actions, state, A.TokenType(), ShiftAction); err != nil {
					return nil, err
				}
			} else if A == nil { // we are at the end of a rule
				entry := int32(i.rule.Serial) // reduce rule
				if i.rule.Serial == 0 {
					entry = AcceptAction
				}
				if err := lrgen.enterAction(actions, state, i.la, entry); err != nil {
					return nil, err
				}
			}
		}
	}
	return actions, nil
}

// enterAction writes a single ACTION-table entry, handling a conflicting
// previous entry according to the generator's mode.
func (lrgen *TableGenerator) enterAction(actions *Table, state *CFSMState,
	la purplex.TokType, entry int32) error {
	//
	prev := actions.Value(state.ID, la)
	if prev != actions.NullValue() && prev != entry {
		lrgen.HasConflicts = true
		tracer().Infof("conflict in state %d at lookahead %d: %s vs %s", state.ID, la,
			valstring(prev, actions), valstring(entry, actions))
		if lrgen.Strict {
			return &GrammarError{lrgen.g.Name, fmt.Sprintf(
				"ACTION conflict in state %d at lookahead %d (%s vs %s)",
				state.ID, la, valstring(prev, actions), valstring(entry, actions))}
		}
	}
	actions.Set(state.ID, la, entry) // the later write wins
	tracer().Debugf("    ACTION(%d,%d) = %s", state.ID, la, valstring(entry, actions))
	return nil
}

// ActionTableAsHTML exports the ACTION-table in HTML-format.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.actiontable == nil {
		tracer().Errorf("ACTION table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "ACTION", lrgen.actiontable, w)
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.gototable == nil {
		tracer().Errorf("GOTO table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "GOTO", lrgen.gototable, w)
}

func parserTableAsHTML(lrgen *TableGenerator, tname string, table *Table, w io.Writer) {
	var symvec []*Symbol
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, fmt.Sprintf("%s table of size = %d<p>", tname, table.ValueCount()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td>\n")
	lrgen.g.EachSymbol(func(A *Symbol) interface{} {
		io.WriteString(w, fmt.Sprintf("<td>%s</td>", A))
		symvec = append(symvec, A)
		return nil
	})
	io.WriteString(w, "</tr>\n")
	states := lrgen.CFSM().states.Iterator()
	var td string // table cell
	for states.Next() {
		state := states.Value().(*CFSMState)
		io.WriteString(w, fmt.Sprintf("<tr><td>state %d</td>\n", state.ID))
		for _, A := range symvec {
			v := table.Value(state.ID, A.TokenType())
			if v == table.NullValue() {
				td = "&nbsp;"
			} else {
				td = fmt.Sprintf("%d", v)
			}
			io.WriteString(w, "<td>")
			io.WriteString(w, td)
			io.WriteString(w, "</td>\n")
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table></body></html>\n")
}

// ===========================================================================

// Table is a parser table, i.e. a sparse matrix of action- or state-
// entries, indexed by state ID and symbol value. Tables are usually built
// by a TableGenerator, but clients computing their own tables from the
// CFSM may construct and fill one directly.
type Table struct {
	matrix *sparse.IntMatrix
	mincol purplex.TokType // lowest symbol value => offset for access
}

// NewTable creates an empty parser table for a given number of states and
// symbol values, the latter starting at mincol.
func NewTable(states, extent int, mincol purplex.TokType) *Table {
	return &Table{
		matrix: sparse.NewIntMatrix(states, extent, sparse.DefaultNullValue),
		mincol: mincol,
	}
}

// Set enters a value for (state, symbol value), overwriting any previous
// entry at that slot.
func (t *Table) Set(i uint, tt purplex.TokType, val int32) {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.Set() with index < 0: %d", j))
	}
	t.matrix.Set(i, uint(j), val)
}

// NullValue returns the table's marker for an absent entry.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the entry at (state, symbol value), or NullValue if the
// slot is empty.
func (t *Table) Value(i uint, tt purplex.TokType) int32 {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.Value() with index < 0: %d", j))
	}
	return t.matrix.Value(i, uint(j))
}

// ValueCount returns the number of slots set in the table.
func (t *Table) ValueCount() int {
	return t.matrix.ValueCount()
}

// ----------------------------------------------------------------------

// valstring is a short helper to stringify an action table entry.
func valstring(v int32, m *Table) string {
	if v == m.NullValue() {
		return "<none>"
	} else if v == AcceptAction {
		return "<accept>"
	} else if v == ShiftAction {
		return "<shift>"
	}
	return fmt.Sprintf("<reduce %d>", v)
}
