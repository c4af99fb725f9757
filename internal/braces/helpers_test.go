package braces

import (
	"strings"

	"github.com/standardbeagle/braces/internal/tokens"
)

const (
	typeWord     tokens.Type = "word"
	typeTagOpen  tokens.Type = "tag-open"
	typeTagClose tokens.Type = "tag-close"
)

// lexBrackets splits src into single-byte bracket tokens, whole-tag tokens
// and words. Whitespace produces no tokens.
func lexBrackets(src string) tokens.Stream {
	var out tokens.Stream
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\n' || c == '\t':
			i++
		case strings.IndexByte("()[]{}", c) >= 0:
			out = append(out, tokens.Token{Type: tokens.Type(src[i : i+1]), Start: i, End: i + 1})
			i++
		case c == '<':
			end := i + strings.IndexByte(src[i:], '>') + 1
			typ := typeTagOpen
			if i+1 < len(src) && src[i+1] == '/' {
				typ = typeTagClose
			}
			out = append(out, tokens.Token{Type: typ, Start: i, End: end})
			i = end
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \n\t()[]{}<", rune(src[j])) {
				j++
			}
			out = append(out, tokens.Token{Type: typeWord, Start: i, End: j})
			i = j
		}
	}
	return out
}

// testTable is a minimal TagClassifier: brackets in group 0, tags in group 1.
type testTable struct {
	pairs         map[tokens.Type]tokens.Type
	structural    map[tokens.Type]bool
	strict        bool
	caseSensitive bool
	optionalEnd   map[string]bool
}

// genericTable pairs all brackets in one group, every pair structural.
func genericTable() *testTable {
	return &testTable{
		pairs: map[tokens.Type]tokens.Type{"(": ")", "[": "]", "{": "}", typeTagOpen: typeTagClose},
		structural: map[tokens.Type]bool{
			"(": true, ")": true, "[": true, "]": true, "{": true, "}": true,
		},
		caseSensitive: true,
	}
}

// cLikeTable only treats curly braces as structural.
func cLikeTable() *testTable {
	tt := genericTable()
	tt.structural = map[tokens.Type]bool{"{": true, "}": true}
	return tt
}

func (tt *testTable) Group(t tokens.Type) Group {
	switch t {
	case typeTagOpen, typeTagClose:
		return 1
	case "(", ")", "[", "]", "{", "}":
		return 0
	}
	return NoGroup
}

func (tt *testTable) IsOpen(it tokens.Iterator, _ []byte) bool {
	_, ok := tt.pairs[it.Type()]
	return ok
}

func (tt *testTable) IsClose(it tokens.Iterator, _ []byte) bool {
	_, ok := tt.Opposite(it.Type())
	return ok && !tt.IsOpen(it, nil)
}

func (tt *testTable) IsPair(open, close tokens.Type) bool {
	return tt.pairs[open] == close && close != tokens.None
}

func (tt *testTable) Opposite(t tokens.Type) (tokens.Type, bool) {
	if c, ok := tt.pairs[t]; ok {
		return c, true
	}
	for o, c := range tt.pairs {
		if c == t {
			return o, true
		}
	}
	return tokens.None, false
}

func (tt *testTable) IsStructural(it tokens.Iterator, _ []byte) bool {
	return tt.structural[it.Type()]
}

func (tt *testTable) TagName(it tokens.Iterator, text []byte) string {
	t := it.Type()
	if t != typeTagOpen && t != typeTagClose {
		return ""
	}
	name := string(text[it.Start():it.End()])
	name = strings.TrimPrefix(name, "<")
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, ">")
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	return name
}

func (tt *testTable) OptionalEndTag(_ Group, name string) bool { return tt.optionalEnd[name] }

func (tt *testTable) TagNamesCaseSensitive(Group) bool { return tt.caseSensitive }

func (tt *testTable) StrictTagMatching(Group) bool { return tt.strict }

// indexOfOffset returns the stream index of the token starting at offset.
func indexOfOffset(stream tokens.Stream, offset int) int {
	for i, tok := range stream {
		if tok.Start == offset {
			return i
		}
	}
	return -1
}
