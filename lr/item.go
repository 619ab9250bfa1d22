package lr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cnf/structhash"
	"github.com/gespiton/purplex"
)

// === LR(1) items ===========================================================

// Item is an LR(1) item: a grammar rule with a dot position in [0, arity]
// and one lookahead terminal. Items with identical rule and dot but
// different lookaheads are distinct items; no LALR merging takes place.
type Item struct {
	rule *Rule
	dot  int
	la   purplex.TokType
}

// StartItem returns the initial item [S' -> .S, $] for a grammar.
func StartItem(g *Grammar) Item {
	return Item{rule: g.rules[0], dot: 0, la: purplex.EOF}
}

// Rule returns the rule of an item.
func (i Item) Rule() *Rule {
	return i.rule
}

// Lookahead returns the lookahead terminal of an item.
func (i Item) Lookahead() purplex.TokType {
	return i.la
}

// PeekSymbol returns the symbol after the dot, or nil if the item is at the
// end of its rule.
func (i Item) PeekSymbol() *Symbol {
	if i.dot >= len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot]
}

// Advance returns the item with the dot moved one symbol to the right.
// Advancing an item at the end of its rule is an error.
func (i Item) Advance() Item {
	if i.dot >= len(i.rule.rhs) {
		panic("cannot advance LR item: already at end of rule")
	}
	return Item{rule: i.rule, dot: i.dot + 1, la: i.la}
}

// suffix returns the rule symbols behind the symbol after the dot, i.e. the
// beta in [A -> alpha .B beta, a].
func (i Item) suffix() []*Symbol {
	if i.dot+1 >= len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot+1:]
}

func (i Item) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ::=", i.rule.LHS.Name)
	for pos, sym := range i.rule.rhs {
		if pos == i.dot {
			b.WriteString(" ∘")
		}
		b.WriteString(" ")
		b.WriteString(sym.Name)
	}
	if i.dot == len(i.rule.rhs) {
		b.WriteString(" ∘")
	}
	fmt.Fprintf(&b, " [%d]", i.la)
	return b.String()
}

// === Item sets =============================================================

// itemSet is an insertion-ordered set of LR(1) items. The canonical order
// for comparing, hashing and iterating completed sets is (rule serial, dot,
// lookahead); sortCanonical establishes it in place.
type itemSet struct {
	items []Item
	index map[Item]struct{}
}

func newItemSet() *itemSet {
	return &itemSet{index: make(map[Item]struct{})}
}

// add appends an item if not yet present; reports whether the set grew.
func (s *itemSet) add(i Item) bool {
	if _, ok := s.index[i]; ok {
		return false
	}
	s.index[i] = exists
	s.items = append(s.items, i)
	return true
}

func (s *itemSet) empty() bool {
	return len(s.items) == 0
}

func (s *itemSet) size() int {
	return len(s.items)
}

func (s *itemSet) sortCanonical() {
	sort.Slice(s.items, func(a, b int) bool {
		x, y := s.items[a], s.items[b]
		if x.rule.Serial != y.rule.Serial {
			return x.rule.Serial < y.rule.Serial
		}
		if x.dot != y.dot {
			return x.dot < y.dot
		}
		return x.la < y.la
	})
}

// itemKey is the hashable shape of an item. structhash needs exported
// fields to include them in the digest.
type itemKey struct {
	Serial int
	Dot    int
	La     int
}

// hash returns a digest of the canonically sorted item set. Two sets have
// equal hashes iff they contain the same items, which makes the digest
// usable as a state identity during automaton construction.
func (s *itemSet) hash() string {
	s.sortCanonical()
	var key struct {
		Items []itemKey
	}
	key.Items = make([]itemKey, len(s.items))
	for n, i := range s.items {
		key.Items[n] = itemKey{Serial: i.rule.Serial, Dot: i.dot, La: int(i.la)}
	}
	return string(structhash.Sha1(key, 1))
}

func (s *itemSet) String() string {
	var b strings.Builder
	b.WriteString("{")
	for n, i := range s.items {
		if n > 0 {
			b.WriteString(", ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(i.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Dump is a debugging helper, listing all items of a set to the tracer.
func (s *itemSet) Dump() {
	for n, i := range s.items {
		tracer().Debugf("  item %2d: %v", n, i)
	}
}
