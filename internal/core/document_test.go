package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/braces/internal/config"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

func TestDocument_Positions(t *testing.T) {
	doc := newDocument("a.txt", []byte("ab\ncd\n"), nil, nil)

	assert.Equal(t, 3, doc.Lines())
	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, doc.Position(0))
	assert.Equal(t, Position{Offset: 4, Line: 2, Column: 2}, doc.Position(4))
	assert.Equal(t, Position{Offset: 6, Line: 3, Column: 1}, doc.Position(6))
	assert.Equal(t, Position{Offset: 6, Line: 3, Column: 1}, doc.Position(99))

	tests := []struct {
		line, col int
		want      int
		ok        bool
	}{
		{1, 1, 0, true},
		{2, 3, 5, true}, // end of line 2
		{2, 4, 0, false},
		{3, 1, 6, true}, // end of buffer
		{4, 1, 0, false},
		{0, 1, 0, false},
		{1, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := doc.Offset(tt.line, tt.col)
		assert.Equal(t, tt.ok, ok, "%d:%d", tt.line, tt.col)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%d:%d", tt.line, tt.col)
		}
	}
}

func TestDocument_Resolve(t *testing.T) {
	doc := newDocument("a.txt", []byte("ab\ncd\n"), nil, nil)

	for spec, want := range map[string]int{"0": 0, "6": 6, " 2:1 ": 3, "1:3": 2} {
		got, err := doc.Resolve(spec)
		require.NoError(t, err, spec)
		assert.Equal(t, want, got, spec)
	}

	for _, spec := range []string{"7", "-1", "x", "x:1", "9:1", "1:9", ""} {
		_, err := doc.Resolve(spec)
		var qErr *lcierrors.QueryError
		assert.ErrorAs(t, err, &qErr, spec)
	}
}

func TestEngine_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("[x]"), 0o644))

	e := newTestEngine(t, func(c *config.Config) { c.Check.MaxFileSize = 8 })
	doc, err := e.Open(context.Background(), path, "")
	require.NoError(t, err)
	assert.Len(t, doc.Stream, 3)

	require.NoError(t, os.WriteFile(path, []byte("[0123456789]"), 0o644))
	_, err = e.Open(context.Background(), path, "")
	var fileErr *lcierrors.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, lcierrors.ErrorTypeFileTooLarge, fileErr.Type)

	_, err = e.Open(context.Background(), filepath.Join(dir, "missing.txt"), "")
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, lcierrors.ErrorTypeFileNotFound, fileErr.Type)
}
