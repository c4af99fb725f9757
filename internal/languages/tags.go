package languages

import (
	"strings"

	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/parser"
	"github.com/standardbeagle/braces/internal/tokens"
)

// TagGroup is the group of every markup tag.
const TagGroup braces.Group = 0

// htmlVoidElements never take a closing tag.
var htmlVoidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
}

// htmlOptionalEndTags may omit their closing tag.
var htmlOptionalEndTags = []string{
	"li", "dt", "dd", "p", "rb", "rt", "rtc", "rp", "optgroup", "option",
	"colgroup", "caption", "thead", "tbody", "tfoot", "tr", "td", "th",
	"html", "head", "body",
}

// TagTable classifies markup tag tokens produced by parser.MarkupLexer.
type TagTable struct {
	caseSensitive bool
	strict        bool
	void          map[string]struct{}
	optionalEnd   map[string]struct{}
}

// NewTagTable creates a tag classifier. Void elements are compared
// case-insensitively and never open or close a pair.
func NewTagTable(caseSensitive, strict bool, void ...string) *TagTable {
	t := &TagTable{caseSensitive: caseSensitive, strict: strict, void: make(map[string]struct{}, len(void))}
	for _, v := range void {
		t.void[strings.ToLower(v)] = struct{}{}
	}
	return t
}

// HTMLTags: case-insensitive, non-strict, HTML void elements and optional
// end tags.
func HTMLTags() *TagTable {
	t := NewTagTable(false, false, htmlVoidElements...)
	t.optionalEnd = make(map[string]struct{}, len(htmlOptionalEndTags))
	for _, name := range htmlOptionalEndTags {
		t.optionalEnd[name] = struct{}{}
	}
	return t
}

// XMLTags: case-sensitive and strict.
func XMLTags() *TagTable {
	return NewTagTable(true, true)
}

func (t *TagTable) Group(typ tokens.Type) braces.Group {
	if typ == parser.TypeTagOpen || typ == parser.TypeTagClose {
		return TagGroup
	}
	return braces.NoGroup
}

func (t *TagTable) IsOpen(it tokens.Iterator, text []byte) bool {
	return it.Type() == parser.TypeTagOpen && !t.isVoid(it, text)
}

func (t *TagTable) IsClose(it tokens.Iterator, text []byte) bool {
	return it.Type() == parser.TypeTagClose && !t.isVoid(it, text)
}

func (t *TagTable) IsPair(open, close tokens.Type) bool {
	return open == parser.TypeTagOpen && close == parser.TypeTagClose
}

func (t *TagTable) Opposite(typ tokens.Type) (tokens.Type, bool) {
	switch typ {
	case parser.TypeTagOpen:
		return parser.TypeTagClose, true
	case parser.TypeTagClose:
		return parser.TypeTagOpen, true
	}
	return tokens.None, false
}

// IsStructural reports true for every tag: elements always delimit a scope.
func (t *TagTable) IsStructural(it tokens.Iterator, _ []byte) bool {
	return t.Group(it.Type()) == TagGroup
}

// TagName reads the element name from the tag's source text.
func (t *TagTable) TagName(it tokens.Iterator, text []byte) string {
	start, end := it.Start(), it.End()
	if start < 0 || end > len(text) || start >= end {
		return ""
	}
	return ParseTagName(text[start:end])
}

func (t *TagTable) TagNamesCaseSensitive(braces.Group) bool { return t.caseSensitive }

func (t *TagTable) StrictTagMatching(braces.Group) bool { return t.strict }

// OptionalEndTag reports whether the element may be left without a closing tag.
func (t *TagTable) OptionalEndTag(_ braces.Group, name string) bool {
	_, ok := t.optionalEnd[strings.ToLower(name)]
	return ok
}

func (t *TagTable) isVoid(it tokens.Iterator, text []byte) bool {
	if len(t.void) == 0 {
		return false
	}
	_, ok := t.void[strings.ToLower(t.TagName(it, text))]
	return ok
}

// ParseTagName extracts the element name from a raw tag such as
// `<div class="x">` or `</ns:item >`.
func ParseTagName(tag []byte) string {
	i := 0
	if i < len(tag) && tag[i] == '<' {
		i++
	}
	if i < len(tag) && tag[i] == '/' {
		i++
	}
	j := i
	for j < len(tag) {
		c := tag[j]
		if c == '>' || c == '/' || isTagSpace(c) {
			break
		}
		j++
	}
	return string(tag[i:j])
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
