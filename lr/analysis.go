package lr

import (
	"sort"

	"github.com/gespiton/purplex"
)

// === Token sets ============================================================

// tokset is a small set type for token values, used for FIRST sets and
// lookahead computation.
type tokset map[purplex.TokType]struct{}

var exists = struct{}{}

func (set tokset) add(t purplex.TokType) bool {
	if _, ok := set[t]; ok {
		return false
	}
	set[t] = exists
	return true
}

func (set tokset) union(other tokset) bool {
	changed := false
	for t := range other {
		if set.add(t) {
			changed = true
		}
	}
	return changed
}

// AppendTo appends the set's values to a slice, in increasing order.
func (set tokset) AppendTo(slice []purplex.TokType) []purplex.TokType {
	for t := range set {
		slice = append(slice, t)
	}
	sort.Slice(slice, func(i, j int) bool { return slice[i] < slice[j] })
	return slice
}

// === Grammar analysis ======================================================

// LRAnalysis is the result of a static grammar analysis: the FIRST sets of
// all non-terminals and the set of epsilon-derivable non-terminals. Both
// feed the lookahead computation for LR(1) item-set closures.
// Create one with Analysis(g).
type LRAnalysis struct {
	g          *Grammar
	derivesEps map[*Symbol]bool
	first      map[*Symbol]tokset
}

// Analysis analyses a grammar (fixed-point iteration over all rules).
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		g:          g,
		derivesEps: make(map[*Symbol]bool),
		first:      make(map[*Symbol]tokset),
	}
	ga.markEps()
	ga.initFirst()
	return ga
}

// Grammar returns the analysed grammar.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

// DerivesEpsilon returns true if a non-terminal can derive the empty string.
func (ga *LRAnalysis) DerivesEpsilon(sym *Symbol) bool {
	return ga.derivesEps[sym]
}

// First returns FIRST(sym) as a sorted slice of token values. For a
// terminal this is the terminal itself.
func (ga *LRAnalysis) First(sym *Symbol) []purplex.TokType {
	if sym.IsTerminal() {
		return []purplex.TokType{sym.TokenType()}
	}
	return ga.first[sym].AppendTo(nil)
}

// Compute the set of non-terminals which are able to derive epsilon:
// a non-terminal does, as soon as one of its rules consists entirely of
// epsilon-derivable symbols.
func (ga *LRAnalysis) markEps() {
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			if ga.derivesEps[r.LHS] {
				continue
			}
			all := true
			for _, sym := range r.rhs {
				if sym.IsTerminal() || !ga.derivesEps[sym] {
					all = false
					break
				}
			}
			if all {
				ga.derivesEps[r.LHS] = true
				changed = true
			}
		}
	}
}

// Compute FIRST for all non-terminals (fixed point over all rules).
func (ga *LRAnalysis) initFirst() {
	for _, n := range ga.g.nonterminals {
		ga.first[n] = tokset{}
	}
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			f := ga.first[r.LHS]
			for _, sym := range r.rhs {
				if sym.IsTerminal() {
					if f.add(sym.TokenType()) {
						changed = true
					}
					break
				}
				if f.union(ga.first[sym]) {
					changed = true
				}
				if !ga.derivesEps[sym] {
					break
				}
			}
		}
	}
}

// firstOfSeq computes FIRST(seq · la): the terminals which can begin a
// derivation of seq, plus la if all of seq can derive epsilon. This is the
// lookahead set for items spawned during closure. The result is sorted.
func (ga *LRAnalysis) firstOfSeq(seq []*Symbol, la purplex.TokType) []purplex.TokType {
	set := tokset{}
	nullable := true
	for _, sym := range seq {
		if sym.IsTerminal() {
			set.add(sym.TokenType())
			nullable = false
			break
		}
		set.union(ga.first[sym])
		if !ga.derivesEps[sym] {
			nullable = false
			break
		}
	}
	if nullable {
		set.add(la)
	}
	return set.AppendTo(nil)
}
