/*
Package lr implements prerequisites for LR parsing.
It covers the grammar model, canonical LR(1) automaton construction and
the generation of ACTION- and GOTO-tables, which drive the runtime parser
of package clr.

Building a Grammar

Grammars are specified using a grammar builder object. Clients register
productions as rule strings of the form "LHS : SYM1 SYM2 ...", each paired
with a semantic action. An empty right-hand side denotes an epsilon
production. Convenience registrations exist for repetitions and
separator-delimited lists.

Example:

    b := lr.NewGrammarBuilder("Nesting")
    b.Rule("S : a S b", wrap)   // S  ->  a S b
    b.Rule("S :", base)         // S  ->
    g, err := b.Grammar(vocab, "S")

The terminal vocabulary is provided by the scanner (see package scanner),
mapping terminal names to dense token values. Grammar construction
validates all symbol references and augments the grammar with a synthetic
start rule S' -> S (serial 0), used to recognize acceptance.

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which computes FIRST sets
for the grammar and determines all epsilon-derivable non-terminals. Both
are needed for computing lookaheads during item-set closure.

    ga := lr.Analysis(g)

Parser Construction

Using grammar analysis as input, a bottom-up parser can be constructed.
First the canonical collection of LR(1) item sets is built as a
characteristic finite state machine (CFSM). The CFSM will then be
transformed into a GOTO table and an ACTION table for a canonical LR(1)
parser. The CFSM will not be thrown away, but is made available to the
client. This is intended for debugging purposes. It can be exported to
Graphviz's Dot-format.

Example:

    lrgen := lr.NewTableGenerator(ga)
    if err := lrgen.CreateTables(); err != nil { ... }

Repeated table generation for the same grammar is deterministic: state IDs
are assigned on first discovery during a breadth-first walk over the goto
graph, with the initial item set always receiving ID 0.

By default, conflicting ACTION entries are resolved by letting the later
write win, in the fixed iteration order of states and items; the generator
flags this in HasConflicts. Setting Strict makes CreateTables report the
first conflict as an error instead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'purplex.lr'.
func tracer() tracing.Trace {
	return tracing.Select("purplex.lr")
}
