package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/braces/internal/debug"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/tokens"
)

var errNoTree = errors.New("parser returned no tree")

// grammarPool holds reusable parsers for one grammar. Parsers are not safe
// for concurrent use, so each Tokenize call takes its own.
type grammarPool struct {
	pool     sync.Pool
	once     sync.Once
	language func() unsafe.Pointer
	name     string
}

func (g *grammarPool) get() (*tree_sitter.Parser, error) {
	g.once.Do(func() {
		g.pool.New = func() any {
			parser := tree_sitter.NewParser()
			if err := parser.SetLanguage(tree_sitter.NewLanguage(g.language())); err != nil {
				debug.LogLex("failed to load %s grammar: %v", g.name, err)
				parser.Close()
				return nil
			}
			return parser
		}
	})
	parser, _ := g.pool.Get().(*tree_sitter.Parser)
	if parser == nil {
		return nil, fmt.Errorf("%s grammar unavailable", g.name)
	}
	return parser, nil
}

func (g *grammarPool) put(parser *tree_sitter.Parser) {
	parser.Reset()
	g.pool.Put(parser)
}

var (
	poolsMu sync.Mutex
	pools   = map[string]*grammarPool{}
)

func poolFor(name string) (*grammarPool, bool) {
	language, ok := grammars[name]
	if !ok {
		return nil, false
	}
	poolsMu.Lock()
	defer poolsMu.Unlock()
	p, ok := pools[name]
	if !ok {
		p = &grammarPool{language: language, name: name}
		pools[name] = p
	}
	return p, true
}

// Grammars lists the bundled tree-sitter grammar names.
func Grammars() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TreeSitterLexer emits the leaves of a tree-sitter syntax tree. Anonymous
// leaves are typed by their literal text ("{", "func"); named leaves by their
// node kind. Comments and string literals become single opaque tokens so
// braces inside them never take part in matching.
type TreeSitterLexer struct {
	pool *grammarPool
}

// NewTreeSitterLexer returns a lexer for a bundled grammar.
func NewTreeSitterLexer(grammar string) (*TreeSitterLexer, error) {
	p, ok := poolFor(grammar)
	if !ok {
		return nil, lcierrors.NewLanguageError(grammar, "")
	}
	return &TreeSitterLexer{pool: p}, nil
}

// Grammar returns the grammar name.
func (l *TreeSitterLexer) Grammar() string {
	return l.pool.name
}

// Tokenize implements Lexer.
func (l *TreeSitterLexer) Tokenize(ctx context.Context, content []byte) (stream tokens.Stream, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser, err := l.pool.get()
	if err != nil {
		return nil, lcierrors.NewLexError(l.pool.name, "", err)
	}

	healthy := false
	defer func() {
		if r := recover(); r != nil {
			debug.LogLex("TREE-SITTER PANIC in %s lexer: %v", l.pool.name, r)
			stream, err = nil, lcierrors.NewLexError(l.pool.name, "", fmt.Errorf("panic: %v", r))
			return
		}
		if healthy {
			l.pool.put(parser)
		}
	}()

	// Tree-sitter may touch the input through CGO; parse a private copy.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	healthy = true
	if tree == nil {
		return nil, lcierrors.NewLexError(l.pool.name, "", errNoTree)
	}
	defer tree.Close()

	w := leafWalker{ctx: ctx, out: make(tokens.Stream, 0, len(content)/4)}
	w.walk(tree.RootNode())
	if w.err != nil {
		return nil, w.err
	}
	debug.LogLex("%s: %d tokens from %d bytes\n", l.pool.name, len(w.out), len(content))
	return w.out, nil
}

type leafWalker struct {
	ctx context.Context
	out tokens.Stream
	err error
}

func (w *leafWalker) walk(node *tree_sitter.Node) {
	if node == nil || w.err != nil {
		return
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if node.IsMissing() || start == end {
		return
	}

	kind := node.Kind()
	count := node.ChildCount()
	if opaque, ok := opaqueType(kind); ok {
		w.emit(opaque, start, end)
		return
	}
	if count == 0 {
		typ := tokens.Type(kind)
		if kind == "ERROR" {
			typ = TypeSymbol
		}
		w.emit(typ, start, end)
		return
	}
	for i := uint(0); i < count; i++ {
		w.walk(node.Child(i))
	}
}

func (w *leafWalker) emit(typ tokens.Type, start, end int) {
	if len(w.out)%4096 == 0 && len(w.out) > 0 {
		if err := w.ctx.Err(); err != nil {
			w.err = err
			return
		}
	}
	w.out = append(w.out, tokens.Token{Type: typ, Start: start, End: end})
}

// opaqueType maps comment and string node kinds to their token type.
func opaqueType(kind string) (tokens.Type, bool) {
	switch {
	case strings.Contains(kind, "comment"):
		return TypeComment, true
	case strings.Contains(kind, "string"), kind == "char_literal", kind == "character_literal", kind == "rune_literal":
		return TypeString, true
	}
	return tokens.None, false
}
