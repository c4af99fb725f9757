package languages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/braces/internal/braces"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/parser"
	"github.com/standardbeagle/braces/internal/tokens"
)

// matchAt tokenizes src with lang and matches from the token starting at offset.
func matchAt(t *testing.T, lang *Language, src string, offset int, forward bool) (bool, int) {
	t.Helper()
	stream, err := lang.Lexer.Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	idx := -1
	for i, tok := range stream {
		if tok.Start == offset {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "no token starts at %d", offset)
	it := tokens.NewIterator(stream, idx)
	ok := lang.Matcher().MatchBrace([]byte(src), it, forward)
	return ok, it.Start()
}

func TestPairTable(t *testing.T) {
	table := NewPairTable(
		Pair{Open: "{", Close: "}", Structural: true},
		Pair{Open: "(", Close: ")"},
		Pair{Open: "{", Close: "]"}, // duplicate opener, ignored
		Pair{Open: "x", Close: "x"}, // degenerate, ignored
		Pair{Open: "begin", Close: "end", Group: 2},
	)

	assert.Len(t, table.Pairs(), 3)
	assert.Equal(t, braces.Group(0), table.Group("}"))
	assert.Equal(t, braces.Group(2), table.Group("begin"))
	assert.Equal(t, braces.NoGroup, table.Group("]"))

	assert.True(t, table.IsPair("{", "}"))
	assert.False(t, table.IsPair("{", ")"))
	assert.False(t, table.IsPair("}", "{"))

	opp, ok := table.Opposite("end")
	assert.True(t, ok)
	assert.Equal(t, tokens.Type("begin"), opp)
	_, ok = table.Opposite("x")
	assert.False(t, ok)

	stream := tokens.Stream{{Type: "{", Start: 0, End: 1}, {Type: ")", Start: 1, End: 2}}
	assert.True(t, table.IsStructural(tokens.NewIterator(stream, 0), nil))
	assert.False(t, table.IsStructural(tokens.NewIterator(stream, 1), nil))
	assert.True(t, table.IsClose(tokens.NewIterator(stream, 1), nil))
	assert.False(t, table.IsOpen(tokens.NewIterator(stream, 1), nil))
}

func TestParseTagName(t *testing.T) {
	tests := map[string]string{
		"<div>":           "div",
		`<div class="a">`: "div",
		"</ns:item >":     "ns:item",
		"<br/>":           "br",
		"<p\nid=x>":       "p",
		"":                "",
		"<>":              "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseTagName([]byte(raw)), raw)
	}
}

func TestHTMLMatching(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	html, err := reg.Lookup("html")
	require.NoError(t, err)

	src := "<ul><li>a<br></li></UL>"
	ok, at := matchAt(t, html, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "</UL>"), at)

	// non-strict: a misspelled close still pairs
	src = "<div><span>x</spam></div>"
	ok, at = matchAt(t, html, src, 5, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "</spam>"), at)

	// optional end tags do not block the enclosing pair
	src = "<ul><li>a<li>b</ul>"
	ok, at = matchAt(t, html, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "</ul>"), at)

	ok, at = matchAt(t, html, src, strings.Index(src, "</ul>"), false)
	require.True(t, ok)
	assert.Equal(t, 0, at)

	src = "<div><p>text</div>"
	ok, at = matchAt(t, html, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "</div>"), at)

	assert.True(t, HTMLTags().OptionalEndTag(TagGroup, "LI"))
	assert.False(t, XMLTags().OptionalEndTag(TagGroup, "li"))
}

func TestXMLMatchingIsStrict(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	xml, err := reg.Lookup("xml")
	require.NoError(t, err)

	ok, _ := matchAt(t, xml, "<a><b></a>", 0, true)
	assert.False(t, ok)

	src := "<a><B/><b></b></a>"
	ok, at := matchAt(t, xml, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "</a>"), at)

	ok, _ = matchAt(t, xml, "<a></A>", 0, true)
	assert.False(t, ok)
}

func TestGoMatching(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	golang, err := reg.ForPath("cmd/main.go")
	require.NoError(t, err)

	src := "package p\n\nfunc f() {\n\tif x { s := \"}\" }\n}\n"
	open := strings.Index(src, "{")
	ok, at := matchAt(t, golang, src, open, true)
	require.True(t, ok)
	assert.Equal(t, strings.LastIndex(src, "}"), at)
}

func TestShellKeywordPairs(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	sh, err := reg.ForPath("build.SH")
	require.NoError(t, err)

	src := "if true; then\n  for i in a; do echo \"fi\"; done\nfi # done\n"
	ok, at := matchAt(t, sh, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.LastIndex(src, "\nfi")+1, at)

	do := strings.Index(src, "do ")
	ok, at = matchAt(t, sh, src, do, true)
	require.True(t, ok)
	assert.Equal(t, strings.Index(src, "done"), at)
}

func TestRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	for _, name := range []string{"go", "java", "javascript", "typescript", "tsx", "python", "rust", "cpp", "csharp", "zig", "php", "html", "xml", "shell", "text"} {
		lang, err := reg.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, SourceBuiltin, lang.Source)
	}

	lang, err := reg.ForPath("/src/App.TSX")
	require.NoError(t, err)
	assert.Equal(t, "tsx", lang.Name)

	_, err = reg.ForPath("Makefile")
	assert.True(t, errors.Is(err, lcierrors.ErrUnknownLanguage))

	lang, err = reg.Resolve("PYTHON", "ignored.go")
	require.NoError(t, err)
	assert.Equal(t, "python", lang.Name)

	names := make([]string, 0)
	for _, l := range reg.Languages() {
		names = append(names, l.Name)
	}
	assert.IsIncreasing(t, names)

	assert.Error(t, reg.Register(&Language{Name: "broken"}))
}

func TestRegisterReplacesExtensions(t *testing.T) {
	reg := NewRegistry()
	first := &Language{Name: "a", Extensions: []string{".x", ".y"}, Lexer: parser.NewPlainLexer(parser.PlainConfig{}), Classifier: NewPairTable()}
	second := &Language{Name: "a", Extensions: []string{"y"}, Lexer: first.Lexer, Classifier: first.Classifier}
	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(second))

	_, err := reg.ForPath("f.x")
	assert.Error(t, err)
	got, err := reg.ForPath("f.y")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

const pascalTOML = `
name = "Pascal"
extensions = [".pas"]
line_comment = "//"
quotes = "'"

[[pairs]]
open = "begin"
close = "end"
structural = true
group = 1

[[pairs]]
open = "("
close = ")"
`

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage([]byte(pascalTOML), "pascal.toml")
	require.NoError(t, err)
	assert.Equal(t, "pascal", lang.Name)
	assert.Equal(t, "pascal.toml", lang.Source)

	src := "begin x := (1); begin end // end\nend"
	ok, at := matchAt(t, lang, src, 0, true)
	require.True(t, ok)
	assert.Equal(t, strings.LastIndex(src, "end"), at)
}

func TestParseLanguage_Errors(t *testing.T) {
	tests := map[string]string{
		"bad toml":       "name = ",
		"missing name":   "[[pairs]]\nopen='('\nclose=')'\n",
		"no pairs":       "name = 'x'\n",
		"equal spelling": "name = 'x'\n[[pairs]]\nopen='|'\nclose='|'\n",
		"multi-byte op":  "name = 'x'\n[[pairs]]\nopen='<%'\nclose='%>'\n",
		"bad grammar":    "name = 'x'\ngrammar = 'cobol'\n[[pairs]]\nopen='('\nclose=')'\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLanguage([]byte(src), "x.toml")
			var cfgErr *lcierrors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestParseLanguage_Grammar(t *testing.T) {
	src := "name = 'gotmpl'\ngrammar = 'go'\nextensions = ['.gotmpl']\n[[pairs]]\nopen='{'\nclose='}'\nstructural=true\n"
	lang, err := ParseLanguage([]byte(src), "gotmpl.toml")
	require.NoError(t, err)
	_, isTreeSitter := lang.Lexer.(*parser.TreeSitterLexer)
	assert.True(t, isTreeSitter)
}

func TestRegisterDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "pascal.toml"), []byte(pascalTOML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("name = 'b'\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg := NewRegistry()
	langs, err := reg.RegisterDir(dir)
	require.Error(t, err)
	var multi *lcierrors.MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 1)

	require.Len(t, langs, 1)
	lang, err := reg.ForPath("unit.pas")
	require.NoError(t, err)
	assert.Equal(t, "pascal", lang.Name)
}
