package parser

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/net/html"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/tokens"
)

// Markup token types. Each tag token spans the whole tag, brackets included.
const (
	TypeTagOpen        tokens.Type = "tag-open"
	TypeTagClose       tokens.Type = "tag-close"
	TypeTagSelfClosing tokens.Type = "tag-self-closing"
	TypeText           tokens.Type = "text"
	TypeDoctype        tokens.Type = "doctype"
)

// MarkupLexer tokenizes HTML and XML into whole-tag tokens.
type MarkupLexer struct {
	xml bool
}

// NewMarkupLexer returns a markup lexer. In XML mode CDATA sections are
// read as text.
func NewMarkupLexer(xml bool) *MarkupLexer {
	return &MarkupLexer{xml: xml}
}

// Tokenize implements Lexer. Offsets come from the raw length of each
// tokenizer token, so the stream covers content exactly; whitespace-only
// text produces no token.
func (l *MarkupLexer) Tokenize(ctx context.Context, content []byte) (tokens.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language := "html"
	if l.xml {
		language = "xml"
	}

	z := html.NewTokenizer(bytes.NewReader(content))
	z.AllowCDATA(l.xml)
	var out tokens.Stream
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, lcierrors.NewLexError(language, "", err)
			}
			break
		}
		raw := z.Raw()
		start := offset
		offset += len(raw)

		var typ tokens.Type
		switch tt {
		case html.StartTagToken:
			typ = TypeTagOpen
		case html.EndTagToken:
			typ = TypeTagClose
		case html.SelfClosingTagToken:
			typ = TypeTagSelfClosing
		case html.CommentToken:
			typ = TypeComment
		case html.DoctypeToken:
			typ = TypeDoctype
		case html.TextToken:
			if len(bytes.TrimSpace(raw)) == 0 {
				continue
			}
			typ = TypeText
		default:
			continue
		}
		out = append(out, tokens.Token{Type: typ, Start: start, End: offset})

		if len(out)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
