// Package braces implements brace and tag matching over token streams.
//
// The matcher is language agnostic: every decision about which tokens are
// braces, which pairs belong together and how tag names compare is
// delegated to a Classifier supplied by the caller. A Matcher value holds
// no mutable state, so a single value may be shared across goroutines;
// each call owns its own brace stack.
package braces

import (
	"strings"

	"github.com/standardbeagle/braces/internal/tokens"
)

// Group identifies a classification bucket. Tokens of different groups never pair.
type Group int

// NoGroup marks token types that take no part in matching.
const NoGroup Group = -1

// Classifier is the per-language brace classification table.
type Classifier interface {
	// Group returns the bucket of a token type, or NoGroup.
	Group(t tokens.Type) Group
	// IsOpen reports whether the token under the iterator opens a pair.
	IsOpen(it tokens.Iterator, text []byte) bool
	// IsClose reports whether the token under the iterator closes a pair.
	IsClose(it tokens.Iterator, text []byte) bool
	// IsPair reports whether open and close form a pair.
	IsPair(open, close tokens.Type) bool
	// Opposite returns the partner type of t, if t has a single partner.
	Opposite(t tokens.Type) (tokens.Type, bool)
	// IsStructural reports whether the brace under the iterator delimits a scope.
	IsStructural(it tokens.Iterator, text []byte) bool
}

// TagClassifier extends Classifier for languages whose braces carry names,
// such as XML and HTML tags.
type TagClassifier interface {
	Classifier
	// TagName extracts the name of the tag under the iterator, or "".
	TagName(it tokens.Iterator, text []byte) string
	TagNamesCaseSensitive(g Group) bool
	// StrictTagMatching reports whether pairs in g require equal names.
	StrictTagMatching(g Group) bool
}

// OptionalEndTagClassifier is implemented by markup dialects whose elements
// may omit their closing tag, such as HTML's <li> and <p>.
type OptionalEndTagClassifier interface {
	OptionalEndTag(g Group, name string) bool
}

// optionalEndTag reports whether name may be left unclosed in group g.
func optionalEndTag(c Classifier, g Group, name string) bool {
	if name == "" {
		return false
	}
	if oc, ok := c.(OptionalEndTagClassifier); ok {
		return oc.OptionalEndTag(g, name)
	}
	return false
}

// isPair orients the pair check for the scan direction. Scanning forward the
// stack holds openers; scanning backward it holds closers.
func isPair(c Classifier, stacked, current tokens.Type, forward bool) bool {
	if forward {
		return c.IsPair(stacked, current)
	}
	return c.IsPair(current, stacked)
}

func tagName(c Classifier, it tokens.Iterator, text []byte) string {
	if tc, ok := c.(TagClassifier); ok {
		return tc.TagName(it, text)
	}
	return ""
}

func sameName(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
