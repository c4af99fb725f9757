// Package tokens defines the lexical token model shared by lexers and the
// brace matcher, plus a bidirectional iterator over a token stream.
package tokens

import "sort"

// Type is an opaque token type tag. The empty Type means "no token".
type Type string

// None is returned by iterators that are not positioned on a token.
const None Type = ""

// Token is a lexical unit covering the half-open byte range [Start, End).
type Token struct {
	Type  Type
	Start int
	End   int
}

// Len returns the byte length of the token
func (t Token) Len() int {
	return t.End - t.Start
}

// Contains reports whether offset falls inside the token.
func (t Token) Contains(offset int) bool {
	return offset >= t.Start && offset < t.End
}

// Text returns the token's slice of text, or nil when the range is out of bounds.
func (t Token) Text(text []byte) []byte {
	if t.Start < 0 || t.End > len(text) || t.Start > t.End {
		return nil
	}
	return text[t.Start:t.End]
}

// Stream is an ordered, non-overlapping sequence of tokens for one buffer.
type Stream []Token

// IndexAt returns the index of the token containing offset, or -1.
func (s Stream) IndexAt(offset int) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].End > offset })
	if i < len(s) && s[i].Start <= offset {
		return i
	}
	return -1
}

// IndexBefore returns the index of the last token that starts before offset,
// or -1 when no token does.
func (s Stream) IndexBefore(offset int) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].Start >= offset })
	return i - 1
}

// IndexEndingAt returns the index of the token whose End equals offset, or -1.
func (s Stream) IndexEndingAt(offset int) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].End >= offset })
	if i < len(s) && s[i].End == offset {
		return i
	}
	return -1
}

// Iterator walks a token stream in either direction.
type Iterator interface {
	// Type returns the current token type, or None when AtEnd.
	Type() Type
	Start() int
	End() int
	Advance()
	Retreat()
	// AtEnd reports whether the iterator walked off either side of the stream.
	AtEnd() bool
}
