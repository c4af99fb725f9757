// Package languages holds the per-language brace classification tables and
// the registry that resolves a file to its lexer and classifier.
package languages

import (
	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/tokens"
)

// Pair declares one open/close token pair.
type Pair struct {
	Open       tokens.Type
	Close      tokens.Type
	Structural bool
	Group      braces.Group
}

type pairKey struct {
	open, close tokens.Type
}

// PairTable is a braces.Classifier built from a fixed list of pairs.
// A type may take part in only one pair.
type PairTable struct {
	pairs   []Pair
	byOpen  map[tokens.Type]Pair
	byClose map[tokens.Type]Pair
	valid   map[pairKey]struct{}
}

// NewPairTable builds a table. When a type is listed twice the first pair wins.
func NewPairTable(pairs ...Pair) *PairTable {
	t := &PairTable{
		pairs:   make([]Pair, 0, len(pairs)),
		byOpen:  make(map[tokens.Type]Pair, len(pairs)),
		byClose: make(map[tokens.Type]Pair, len(pairs)),
		valid:   make(map[pairKey]struct{}, len(pairs)),
	}
	for _, p := range pairs {
		if p.Open == tokens.None || p.Close == tokens.None || p.Open == p.Close {
			continue
		}
		if _, dup := t.byOpen[p.Open]; dup {
			continue
		}
		if _, dup := t.byClose[p.Close]; dup {
			continue
		}
		t.pairs = append(t.pairs, p)
		t.byOpen[p.Open] = p
		t.byClose[p.Close] = p
		t.valid[pairKey{p.Open, p.Close}] = struct{}{}
	}
	return t
}

// Pairs returns the accepted pairs in declaration order.
func (t *PairTable) Pairs() []Pair {
	return append([]Pair(nil), t.pairs...)
}

func (t *PairTable) lookup(typ tokens.Type) (Pair, bool) {
	if p, ok := t.byOpen[typ]; ok {
		return p, true
	}
	p, ok := t.byClose[typ]
	return p, ok
}

func (t *PairTable) Group(typ tokens.Type) braces.Group {
	if p, ok := t.lookup(typ); ok {
		return p.Group
	}
	return braces.NoGroup
}

func (t *PairTable) IsOpen(it tokens.Iterator, _ []byte) bool {
	_, ok := t.byOpen[it.Type()]
	return ok
}

func (t *PairTable) IsClose(it tokens.Iterator, _ []byte) bool {
	_, ok := t.byClose[it.Type()]
	return ok
}

func (t *PairTable) IsPair(open, close tokens.Type) bool {
	_, ok := t.valid[pairKey{open, close}]
	return ok
}

func (t *PairTable) Opposite(typ tokens.Type) (tokens.Type, bool) {
	if p, ok := t.byOpen[typ]; ok {
		return p.Close, true
	}
	if p, ok := t.byClose[typ]; ok {
		return p.Open, true
	}
	return tokens.None, false
}

func (t *PairTable) IsStructural(it tokens.Iterator, _ []byte) bool {
	p, ok := t.lookup(it.Type())
	return ok && p.Structural
}

// bracketPairs is the common bracket set: curly braces delimit scopes,
// parentheses and square brackets do not.
func bracketPairs() []Pair {
	return []Pair{
		{Open: "{", Close: "}", Structural: true},
		{Open: "(", Close: ")"},
		{Open: "[", Close: "]"},
	}
}
