package parser

import (
	"context"
	"strings"

	"github.com/standardbeagle/braces/internal/tokens"
)

// PlainConfig describes a language without a grammar.
type PlainConfig struct {
	// Punctuation lists bytes emitted as single-byte tokens typed by the byte itself.
	Punctuation string
	// Keywords are words emitted with the word as their type; other words are identifiers.
	Keywords []string
	// LineComment starts a comment running to end of line. Empty disables comments.
	LineComment string
	// Quotes lists bytes that open a string closed by the same byte.
	Quotes string
}

// PlainLexer is a table-driven lexer for languages without a tree-sitter grammar.
type PlainLexer struct {
	cfg      PlainConfig
	keywords map[string]struct{}
}

// NewPlainLexer creates a plain lexer from cfg.
func NewPlainLexer(cfg PlainConfig) *PlainLexer {
	kw := make(map[string]struct{}, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		kw[k] = struct{}{}
	}
	return &PlainLexer{cfg: cfg, keywords: kw}
}

// Tokenize implements Lexer. Whitespace produces no tokens.
func (l *PlainLexer) Tokenize(ctx context.Context, content []byte) (tokens.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out tokens.Stream
	n := len(content)
	for i := 0; i < n; {
		c := content[i]
		switch {
		case isSpace(c):
			i++

		case l.cfg.LineComment != "" && hasPrefixAt(content, i, l.cfg.LineComment):
			end := i
			for end < n && content[end] != '\n' {
				end++
			}
			out = append(out, tokens.Token{Type: TypeComment, Start: i, End: end})
			i = end

		case strings.IndexByte(l.cfg.Quotes, c) >= 0:
			end := scanQuoted(content, i)
			out = append(out, tokens.Token{Type: TypeString, Start: i, End: end})
			i = end

		case strings.IndexByte(l.cfg.Punctuation, c) >= 0:
			out = append(out, tokens.Token{Type: tokens.Type(content[i : i+1]), Start: i, End: i + 1})
			i++

		case isWordByte(c):
			end := i
			for end < n && isWordByte(content[end]) {
				end++
			}
			typ := TypeIdentifier
			if _, ok := l.keywords[string(content[i:end])]; ok {
				typ = tokens.Type(content[i:end])
			}
			out = append(out, tokens.Token{Type: typ, Start: i, End: end})
			i = end

		default:
			end := i + 1
			for end < n && l.isSymbolByte(content, end) {
				end++
			}
			out = append(out, tokens.Token{Type: TypeSymbol, Start: i, End: end})
			i = end
		}
	}
	return out, nil
}

func (l *PlainLexer) isSymbolByte(content []byte, i int) bool {
	c := content[i]
	if isSpace(c) || isWordByte(c) {
		return false
	}
	if strings.IndexByte(l.cfg.Punctuation, c) >= 0 || strings.IndexByte(l.cfg.Quotes, c) >= 0 {
		return false
	}
	return l.cfg.LineComment == "" || !hasPrefixAt(content, i, l.cfg.LineComment)
}

// scanQuoted returns the end of the string opened at i. Backslash escapes the
// next byte; an unterminated string stops at end of line.
func scanQuoted(content []byte, i int) int {
	quote := content[i]
	j := i + 1
	for j < len(content) {
		switch content[j] {
		case '\\':
			j += 2
			continue
		case quote:
			return j + 1
		case '\n':
			return j
		}
		j++
	}
	return len(content)
}

func hasPrefixAt(content []byte, i int, prefix string) bool {
	return len(content)-i >= len(prefix) && string(content[i:i+len(prefix)]) == prefix
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
