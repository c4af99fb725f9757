package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/braces/internal/config"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

func newTestEngine(t *testing.T, mutate ...func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default(t.TempDir())
	for _, m := range mutate {
		m(cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func load(t *testing.T, e *Engine, path, src string) *Document {
	t.Helper()
	doc, err := e.Load(context.Background(), path, "", []byte(src))
	require.NoError(t, err)
	return doc
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Matching.StrictTags = "maybe"
	_, err := NewEngine(cfg)
	var cfgErr *lcierrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewEngine_CustomLanguages(t *testing.T) {
	dir := t.TempDir()
	langs := filepath.Join(dir, "langs")
	require.NoError(t, os.MkdirAll(langs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(langs, "pascal.toml"), []byte(`
name = "pascal"
extensions = [".pas"]

[[pairs]]
open = "begin"
close = "end"
structural = true
`), 0o644))

	cfg := config.Default(dir)
	cfg.LanguagesDir = "langs"
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	defer e.Close()

	doc := load(t, e, "unit.pas", "begin begin end end")
	res, err := e.Match(doc, 0)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, 16, res.Match.Start.Offset)

	require.NoError(t, os.WriteFile(filepath.Join(langs, "broken.toml"), []byte("name = 'x'\n"), 0o644))
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngine_TokenizeUsesCache(t *testing.T) {
	e := newTestEngine(t)
	lang, err := e.Registry().Lookup("text")
	require.NoError(t, err)

	content := []byte("(a [b])")
	first, err := e.Tokenize(context.Background(), lang, "a.txt", content)
	require.NoError(t, err)
	second, err := e.Tokenize(context.Background(), lang, "a.txt", content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), e.Cache().Stats().Hits)

	e.Invalidate("a.txt")
	assert.Equal(t, 0, e.Cache().Stats().Entries)
}

func TestEngine_TokenizeCanceled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Load(ctx, "a.txt", "", []byte("()"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	var lexErr *lcierrors.LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, "a.txt", lexErr.Path)
}

func TestEngine_UnknownLanguage(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Load(context.Background(), "Makefile", "", []byte("all:"))
	assert.True(t, errors.Is(err, lcierrors.ErrUnknownLanguage))

	doc, err := e.Load(context.Background(), "Makefile", "shell", []byte("if x; then y; fi"))
	require.NoError(t, err)
	assert.Equal(t, "shell", doc.Language.Name)
}

func TestEngine_Match(t *testing.T) {
	e := newTestEngine(t)
	doc := load(t, e, "a.txt", "( a )")

	res, err := e.Match(doc, 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.True(t, res.Matched)
	assert.True(t, res.Forward)
	assert.Equal(t, "(", res.Brace.Text)
	assert.Equal(t, 4, res.Match.Start.Offset)
	assert.Equal(t, 4, res.Target.Offset)

	// caret just after the closing paren jumps after the opener
	res, err = e.Match(doc, 5)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.False(t, res.Forward)
	assert.Equal(t, 0, res.Match.Start.Offset)
	assert.Equal(t, 1, res.Target.Offset)

	res, err = e.Match(doc, 2)
	require.NoError(t, err)
	assert.False(t, res.Found)

	_, err = e.Match(doc, 6)
	var qErr *lcierrors.QueryError
	assert.ErrorAs(t, err, &qErr)
}

func TestEngine_MatchUnmatched(t *testing.T) {
	e := newTestEngine(t)
	doc := load(t, e, "a.txt", "( a")

	res, err := e.Match(doc, 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.False(t, res.Matched)
	assert.Equal(t, "end-of-stream", res.Reason)
	assert.Nil(t, res.Target)
}

func TestEngine_StrictTags(t *testing.T) {
	src := "<div><span>x</spam></div>"

	auto := newTestEngine(t)
	res, err := auto.Match(load(t, auto, "a.html", src), 0)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, 19, res.Match.Start.Offset)

	strict := newTestEngine(t, func(c *config.Config) { c.Matching.StrictTags = config.StrictTagsOn })
	res, err = strict.Match(load(t, strict, "a.html", src), 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "name-mismatch", res.Reason)
}

func TestEngine_MaxSteps(t *testing.T) {
	e := newTestEngine(t, func(c *config.Config) { c.Matching.MaxSteps = 2 })
	res, err := e.Match(load(t, e, "a.txt", "( a b c )"), 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "step-budget", res.Reason)
}

func TestEngine_Scope(t *testing.T) {
	e := newTestEngine(t)
	doc := load(t, e, "a.txt", "{ a ( b ) }")

	res, err := e.Scope(doc, 6)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 0, res.Open.Start.Offset)
	require.True(t, res.Closed)
	assert.Equal(t, 10, res.Close.Start.Offset)

	res, err = e.Scope(doc, 0)
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestEngine_Paren(t *testing.T) {
	e := newTestEngine(t)
	doc := load(t, e, "a.txt", "((a)(bc))")

	tests := map[string]int{
		ParenLeft:      4,
		ParenLeftmost:  0,
		ParenRight:     7,
		ParenRightmost: 8,
	}
	for mode, want := range tests {
		res, err := e.Paren(doc, 5, mode, "")
		require.NoError(t, err, mode)
		require.True(t, res.Found, mode)
		assert.Equal(t, want, res.Paren.Start.Offset, mode)
	}

	res, err := e.Paren(doc, 5, ParenLeft, "[")
	require.NoError(t, err)
	assert.False(t, res.Found)

	_, err = e.Paren(doc, 5, "sideways", "")
	assert.Error(t, err)
}
