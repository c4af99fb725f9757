package core

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strconv"
	"strings"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/languages"
	"github.com/standardbeagle/braces/internal/tokens"
)

// Position is a caret location. Line and Column are 1-based; Column counts bytes.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Document is one tokenized buffer.
type Document struct {
	Path     string
	Content  []byte
	Language *languages.Language
	Stream   tokens.Stream

	lineStarts []int
}

// Open reads path and tokenizes it. language overrides detection by
// extension when non-empty.
func (e *Engine) Open(ctx context.Context, path, language string) (*Document, error) {
	lang, err := e.registry.Resolve(language, path)
	if err != nil {
		return nil, err
	}
	content, err := e.readFile(path)
	if err != nil {
		return nil, err
	}
	return e.load(ctx, lang, path, content)
}

// Load tokenizes an in-memory buffer. path may name a file that does not
// exist; it is used for language detection and messages.
func (e *Engine) Load(ctx context.Context, path, language string, content []byte) (*Document, error) {
	lang, err := e.registry.Resolve(language, path)
	if err != nil {
		return nil, err
	}
	return e.load(ctx, lang, path, content)
}

func (e *Engine) load(ctx context.Context, lang *languages.Language, path string, content []byte) (*Document, error) {
	stream, err := e.Tokenize(ctx, lang, path, content)
	if err != nil {
		return nil, err
	}
	return newDocument(path, content, lang, stream), nil
}

func newDocument(path string, content []byte, lang *languages.Language, stream tokens.Stream) *Document {
	starts := make([]int, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{Path: path, Content: content, Language: lang, Stream: stream, lineStarts: starts}
}

// Lines returns the number of lines, counting a trailing partial line.
func (d *Document) Lines() int {
	return len(d.lineStarts)
}

// Position converts a byte offset into a Position. Offsets are clamped to
// the buffer.
func (d *Document) Position(offset int) Position {
	offset = max(0, min(offset, len(d.Content)))
	line := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	return Position{Offset: offset, Line: line + 1, Column: offset - d.lineStarts[line] + 1}
}

// Offset converts a 1-based line and column to a byte offset. The column may
// point one past the last byte of the line.
func (d *Document) Offset(line, column int) (int, bool) {
	if line < 1 || line > len(d.lineStarts) || column < 1 {
		return 0, false
	}
	start := d.lineStarts[line-1]
	end := len(d.Content)
	if line < len(d.lineStarts) {
		end = d.lineStarts[line] - 1
	}
	if start+column-1 > end {
		return 0, false
	}
	return start + column - 1, true
}

// Resolve parses a caret given as "OFFSET" or "LINE:COL" and checks it
// against the buffer. The end of the buffer is a valid caret.
func (d *Document) Resolve(spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	if line, col, ok := strings.Cut(spec, ":"); ok {
		l, err1 := strconv.Atoi(line)
		c, err2 := strconv.Atoi(col)
		if err1 == nil && err2 == nil {
			if off, ok := d.Offset(l, c); ok {
				return off, nil
			}
		}
		return 0, lcierrors.NewQueryError(d.Path, spec, len(d.Content))
	}

	off, err := strconv.Atoi(spec)
	if err != nil || off < 0 || off > len(d.Content) {
		return 0, lcierrors.NewQueryError(d.Path, spec, len(d.Content))
	}
	return off, nil
}

// CheckOffset validates a numeric caret.
func (d *Document) CheckOffset(offset int) error {
	if offset < 0 || offset > len(d.Content) {
		return lcierrors.NewQueryError(d.Path, strconv.Itoa(offset), len(d.Content))
	}
	return nil
}

// readFile reads path, refusing files above check.max_file_size (when set)
// and files that hold binary data.
func (e *Engine) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, lcierrors.NewFileError("stat", path, err)
	}
	if limit := e.cfg.Check.MaxFileSize; limit > 0 && info.Size() > limit {
		return nil, lcierrors.NewFileTooLargeError(path, info.Size(), limit)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lcierrors.NewFileError("read", path, err)
	}
	if err := e.validator.Validate(path, content); err != nil {
		return nil, lcierrors.NewFileError("validate", path, err)
	}
	return content, nil
}
