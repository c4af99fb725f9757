package core

import (
	"fmt"

	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/debug"
	"github.com/standardbeagle/braces/internal/tokens"
)

// Parenthesis search modes accepted by Paren.
const (
	ParenLeft      = "left"
	ParenLeftmost  = "leftmost"
	ParenRight     = "right"
	ParenRightmost = "rightmost"
)

// TokenInfo describes a token in query results.
type TokenInfo struct {
	Type  string   `json:"type"`
	Text  string   `json:"text"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (d *Document) tokenInfo(t tokens.Token) *TokenInfo {
	return &TokenInfo{
		Type:  string(t.Type),
		Text:  string(t.Text(d.Content)),
		Start: d.Position(t.Start),
		End:   d.Position(t.End),
	}
}

// MatchResult is the answer to "which brace pairs with the one at the caret".
type MatchResult struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Caret    Position `json:"caret"`
	// Found is false when no brace is adjacent to the caret.
	Found   bool       `json:"found"`
	Brace   *TokenInfo `json:"brace,omitempty"`
	Match   *TokenInfo `json:"match,omitempty"`
	Forward bool       `json:"forward"`
	Matched bool       `json:"matched"`
	Reason  string     `json:"reason,omitempty"`
	Steps   int        `json:"steps"`
	// Target is where "go to matching brace" moves the caret.
	Target *Position `json:"target,omitempty"`
}

// Match finds the brace adjacent to caret and its partner.
func (e *Engine) Match(doc *Document, caret int) (*MatchResult, error) {
	if err := doc.CheckOffset(caret); err != nil {
		return nil, err
	}
	res := &MatchResult{Path: doc.Path, Language: doc.Language.Name, Caret: doc.Position(caret)}

	ctx, ok := e.Matcher(doc.Language).ComputeContext(doc.Content, doc.Stream, caret)
	if !ok {
		return res, nil
	}
	res.Found = true
	res.Brace = doc.tokenInfo(ctx.Brace)
	res.Forward = ctx.Forward
	res.Matched = ctx.Matched
	res.Steps = ctx.Outcome.Steps
	if ctx.Matched {
		res.Match = doc.tokenInfo(ctx.Match)
		if target, ok := ctx.NavigationTarget(); ok {
			pos := doc.Position(target)
			res.Target = &pos
		}
	} else {
		res.Reason = ctx.Outcome.Reason.String()
	}
	debug.LogMatch("%s@%d: %q matched=%v reason=%s steps=%d", doc.Path, caret, res.Brace.Text, res.Matched, res.Reason, res.Steps)
	return res, nil
}

// ScopeResult is the innermost structural pair enclosing a caret.
type ScopeResult struct {
	Path     string     `json:"path"`
	Language string     `json:"language"`
	Caret    Position   `json:"caret"`
	Found    bool       `json:"found"`
	Open     *TokenInfo `json:"open,omitempty"`
	Close    *TokenInfo `json:"close,omitempty"`
	Closed   bool       `json:"closed"`
}

// Scope finds the structural scope around caret.
func (e *Engine) Scope(doc *Document, caret int) (*ScopeResult, error) {
	if err := doc.CheckOffset(caret); err != nil {
		return nil, err
	}
	res := &ScopeResult{Path: doc.Path, Language: doc.Language.Name, Caret: doc.Position(caret)}

	scope, ok := e.Matcher(doc.Language).EnclosingScope(doc.Content, doc.Stream, caret)
	if !ok {
		return res, nil
	}
	res.Found = true
	res.Open = doc.tokenInfo(scope.Open)
	if scope.Closed {
		res.Close = doc.tokenInfo(scope.Close)
		res.Closed = true
	}
	return res, nil
}

// ParenResult is the parenthesis found by a directional search.
type ParenResult struct {
	Path     string     `json:"path"`
	Language string     `json:"language"`
	Caret    Position   `json:"caret"`
	Mode     string     `json:"mode"`
	Found    bool       `json:"found"`
	Paren    *TokenInfo `json:"paren,omitempty"`
}

// Paren runs a directional parenthesis search from caret. Leftward searches
// start at the last token beginning before the caret; rightward searches at
// the first token beginning at or after it. parenType overrides the
// language's default parenthesis spelling when non-empty.
func (e *Engine) Paren(doc *Document, caret int, mode string, parenType string) (*ParenResult, error) {
	if err := doc.CheckOffset(caret); err != nil {
		return nil, err
	}
	res := &ParenResult{Path: doc.Path, Language: doc.Language.Name, Caret: doc.Position(caret), Mode: mode}
	m := e.Matcher(doc.Language)

	before := doc.Stream.IndexBefore(caret)
	left := tokens.NewIterator(doc.Stream, before)
	right := tokens.NewIterator(doc.Stream, before+1)

	pick := func(def tokens.Type) tokens.Type {
		if parenType != "" {
			return tokens.Type(parenType)
		}
		return def
	}

	var found int
	switch mode {
	case ParenLeft:
		found = m.FindLeftLParen(left, doc.Content, pick(doc.Language.ParenOpen))
	case ParenLeftmost:
		found = m.FindLeftmostLParen(left, doc.Content, pick(doc.Language.ParenOpen))
	case ParenRight:
		found = m.FindRightRParen(right, doc.Content, pick(doc.Language.ParenClose))
	case ParenRightmost:
		found = m.FindRightmostRParen(right, doc.Content, pick(doc.Language.ParenClose))
	default:
		return nil, fmt.Errorf("unknown paren mode %q (want %s, %s, %s or %s)", mode, ParenLeft, ParenLeftmost, ParenRight, ParenRightmost)
	}

	if found == braces.NotFound {
		return res, nil
	}
	if i := doc.Stream.IndexAt(found); i >= 0 {
		res.Found = true
		res.Paren = doc.tokenInfo(doc.Stream[i])
	}
	return res, nil
}
