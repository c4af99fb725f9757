package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/security"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func treeEngine(t *testing.T, root string, mutate func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default(root)
	cfg.Check.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestCheckTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":           "ignored.txt\n",
		"ok.txt":               "(a)",
		"bad.txt":              "(a",
		"big.txt":              "(((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((((",
		"ignored.txt":          "(((",
		"notes.unknownext":     "(",
		"node_modules/x/y.txt": "((",
		"sub/page.html":        "<p></div>",
	})
	e := treeEngine(t, root, func(c *config.Config) { c.Check.MaxFileSize = 64 })

	report, err := e.CheckTree(context.Background(), root)
	require.NoError(t, err)

	paths := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"bad.txt", "big.txt", "ok.txt", "sub/page.html"}, paths)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Skipped) // .gitignore and notes.unknownext
	assert.Equal(t, 2, report.Diagnostics)
	assert.False(t, report.OK())

	assert.NotEmpty(t, report.Files[1].Error)
	assert.True(t, report.Files[2].OK())
	require.Len(t, report.Files[3].Diagnostics, 1)
	assert.Equal(t, KindMismatch, report.Files[3].Diagnostics[0].Kind)
}

func TestCheckTree_IncludeAndGitignoreSwitch(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":  "ignored.txt\n",
		"ignored.txt": "(",
		"page.html":   "<p>",
	})
	e := treeEngine(t, root, func(c *config.Config) {
		c.Check.RespectGitignore = false
		c.Check.Include = []string{"**/*.txt"}
	})

	report, err := e.CheckTree(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "ignored.txt", report.Files[0].Path)
	assert.Equal(t, 1, report.Diagnostics)
}

func TestCheckTree_Canceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "()"})
	e := treeEngine(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.CheckTree(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckTree_MissingRoot(t *testing.T) {
	root := t.TempDir()
	e := treeEngine(t, root, func(c *config.Config) { c.Check.RespectGitignore = false })
	_, err := e.CheckTree(context.Background(), filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestFileFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{".gitignore": "/out/\n*.log\n!keep.log\n"})
	e := treeEngine(t, root, func(c *config.Config) {
		c.Check.Exclude = append(c.Check.Exclude, "**/testdata/**", "**/*.gen.go")
	})
	f, err := e.NewFileFilter(root)
	require.NoError(t, err)

	assert.True(t, f.SkipDir("node_modules"))
	assert.True(t, f.SkipDir("web/node_modules"))
	assert.True(t, f.SkipDir("pkg/testdata"))
	assert.True(t, f.SkipDir("out"))
	assert.False(t, f.SkipDir("src/out"))
	assert.False(t, f.SkipDir("."))

	assert.True(t, f.Accept("main.go"))
	assert.False(t, f.Accept("api/types.gen.go"))
	assert.False(t, f.Accept("debug.log"))
	assert.True(t, f.Accept("keep.log"))

	rel, ok := f.Rel(filepath.Join(root, "a", "b.go"))
	require.True(t, ok)
	assert.Equal(t, "a/b.go", rel)
	_, ok = f.Rel(filepath.Dir(root))
	assert.False(t, ok)
}

func TestCheckTree_SkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.txt":   "()",
		"blob.txt": "(\x00\x01\x02",
		"logo.go":  "\x89PNG\r\n\x1a\nfunc",
	})
	e := treeEngine(t, root, nil)

	report, err := e.CheckTree(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "ok.txt", report.Files[0].Path)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.True(t, report.OK())

	_, err = e.CheckFile(context.Background(), filepath.Join(root, "blob.txt"))
	assert.ErrorIs(t, err, security.ErrBinary)
}
