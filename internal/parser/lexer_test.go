package parser

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/tokens"
)

// types returns the token types of a stream, skipping types in skip.
func types(stream tokens.Stream, skip ...tokens.Type) []tokens.Type {
	out := make([]tokens.Type, 0, len(stream))
next:
	for _, tok := range stream {
		for _, s := range skip {
			if tok.Type == s {
				continue next
			}
		}
		out = append(out, tok.Type)
	}
	return out
}

// only returns the token types of a stream that appear in keep.
func only(stream tokens.Stream, keep ...tokens.Type) []tokens.Type {
	var out []tokens.Type
	for _, tok := range stream {
		for _, k := range keep {
			if tok.Type == k {
				out = append(out, tok.Type)
				break
			}
		}
	}
	return out
}

func assertOrdered(t *testing.T, stream tokens.Stream) {
	t.Helper()
	for i, tok := range stream {
		require.Less(t, tok.Start, tok.End, "token %d is empty", i)
		if i > 0 {
			require.LessOrEqual(t, stream[i-1].End, tok.Start, "token %d overlaps its predecessor", i)
		}
	}
}

func TestPlainLexer(t *testing.T) {
	lx := NewPlainLexer(PlainConfig{
		Punctuation: "()[]{};",
		Keywords:    []string{"if", "then", "fi"},
		LineComment: "#",
		Quotes:      `"'`,
	})
	src := `if [ -x f ]; then echo "a ) b"; fi # (`

	stream, err := lx.Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assertOrdered(t, stream)

	assert.Equal(t, []tokens.Type{
		"if", "[", TypeSymbol, TypeIdentifier, TypeIdentifier, "]", ";", "then",
		TypeIdentifier, TypeString, ";", "fi", TypeComment,
	}, types(stream))

	last := stream[len(stream)-1]
	assert.Equal(t, "# (", string(last.Text([]byte(src))))
}

func TestPlainLexer_UnterminatedString(t *testing.T) {
	lx := NewPlainLexer(PlainConfig{Punctuation: "()", Quotes: `"`})
	src := "\"abc ( \n )"

	stream, err := lx.Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []tokens.Type{TypeString, ")"}, types(stream))
}

func TestPlainLexer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPlainLexer(PlainConfig{}).Tokenize(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkupLexer_HTML(t *testing.T) {
	src := `<div class="a"><p>hi</p><br/></div>`
	stream, err := NewMarkupLexer(false).Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assertOrdered(t, stream)

	assert.Equal(t, tokens.Stream{
		{Type: TypeTagOpen, Start: 0, End: 15},
		{Type: TypeTagOpen, Start: 15, End: 18},
		{Type: TypeText, Start: 18, End: 20},
		{Type: TypeTagClose, Start: 20, End: 24},
		{Type: TypeTagSelfClosing, Start: 24, End: 29},
		{Type: TypeTagClose, Start: 29, End: 35},
	}, stream)
}

func TestMarkupLexer_CommentsAndDoctype(t *testing.T) {
	src := "<!DOCTYPE html>\n<!-- <b> -->\n<a>\n</a>\n"
	stream, err := NewMarkupLexer(false).Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assertOrdered(t, stream)

	assert.Equal(t, []tokens.Type{TypeDoctype, TypeComment, TypeTagOpen, TypeTagClose}, types(stream))
	assert.Equal(t, "<a>", string(stream[2].Text([]byte(src))))
}

func TestMarkupLexer_XMLCDATA(t *testing.T) {
	src := "<a><![CDATA[<b>]]></a>"
	stream, err := NewMarkupLexer(true).Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []tokens.Type{TypeTagOpen, TypeText, TypeTagClose}, types(stream))
	assert.Equal(t, len(src), stream[len(stream)-1].End)
}

func TestTreeSitterLexer_Go(t *testing.T) {
	lx, err := NewTreeSitterLexer(GrammarGo)
	require.NoError(t, err)

	src := "package p\n\n// a { comment\nfunc f() {\n\ts := \"{\"\n\t_ = s\n}\n"
	stream, err := lx.Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assertOrdered(t, stream)

	assert.Equal(t, []tokens.Type{"(", ")", "{", "}"}, only(stream, "(", ")", "{", "}", "[", "]"))

	var sawComment, sawString bool
	for _, tok := range stream {
		switch tok.Type {
		case TypeComment:
			sawComment = true
			assert.Equal(t, "// a { comment", string(tok.Text([]byte(src))))
		case TypeString:
			sawString = true
			assert.Equal(t, `"{"`, string(tok.Text([]byte(src))))
		}
	}
	assert.True(t, sawComment)
	assert.True(t, sawString)
}

func TestTreeSitterLexer_SkipsMissingNodes(t *testing.T) {
	lx, err := NewTreeSitterLexer(GrammarGo)
	require.NoError(t, err)

	src := "package p\nfunc f() {\n"
	stream, err := lx.Tokenize(context.Background(), []byte(src))
	require.NoError(t, err)
	assertOrdered(t, stream)

	for _, tok := range stream {
		assert.NotEqual(t, tokens.Type("}"), tok.Type)
	}
}

func TestTreeSitterLexer_Concurrent(t *testing.T) {
	lx, err := NewTreeSitterLexer(GrammarJavaScript)
	require.NoError(t, err)
	src := []byte("function f(a) { return [a, {b: (1)}]; }\n")

	want, err := lx.Tokenize(context.Background(), src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]tokens.Stream, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = lx.Tokenize(context.Background(), src)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestTreeSitterLexer_UnknownGrammar(t *testing.T) {
	_, err := NewTreeSitterLexer("cobol")
	var langErr *lcierrors.LanguageError
	assert.ErrorAs(t, err, &langErr)
}

func TestGrammars(t *testing.T) {
	names := Grammars()
	assert.Contains(t, names, GrammarGo)
	assert.Contains(t, names, GrammarZig)
	assert.IsIncreasing(t, names)
}
