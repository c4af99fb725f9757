// Package parser turns source buffers into token streams for brace matching.
//
// Three lexers are provided: a tree-sitter leaf lexer for programming
// languages with a bundled grammar, a markup lexer for HTML and XML, and a
// configurable plain lexer for everything else.
package parser

import (
	"context"

	"github.com/standardbeagle/braces/internal/tokens"
)

// Lexer produces an ordered, non-overlapping token stream for content.
// Implementations must be safe for concurrent use.
type Lexer interface {
	Tokenize(ctx context.Context, content []byte) (tokens.Stream, error)
}

// Token types shared by every lexer.
const (
	TypeComment    tokens.Type = "comment"
	TypeString     tokens.Type = "string"
	TypeIdentifier tokens.Type = "identifier"
	TypeSymbol     tokens.Type = "symbol"
)

// LexerFunc adapts a function to the Lexer interface.
type LexerFunc func(ctx context.Context, content []byte) (tokens.Stream, error)

func (f LexerFunc) Tokenize(ctx context.Context, content []byte) (tokens.Stream, error) {
	return f(ctx, content)
}
