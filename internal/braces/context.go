package braces

import "github.com/standardbeagle/braces/internal/tokens"

// Context describes the brace pair adjacent to a caret. It is computed per
// query and never updated in place.
type Context struct {
	// Brace is the anchor token the scan started from.
	Brace tokens.Token
	// Match is the partner token. Zero when Matched is false.
	Match   tokens.Token
	Forward bool
	Matched bool
	// CaretAfter is set when the anchor ends at the caret rather than covering it.
	CaretAfter bool
	// CaretInside is set when the caret falls strictly inside a multi-byte anchor.
	CaretInside bool
	Outcome     Outcome
}

// ComputeContext finds the brace to highlight for caret. Candidates are tried
// in order: a right brace ending at the caret, a left brace covering it, a
// left brace ending at it, then a right brace covering it. ok is false when
// no brace is adjacent to the caret.
func (m Matcher) ComputeContext(text []byte, stream tokens.Stream, caret int) (ctx Context, ok bool) {
	if m.classifier == nil || caret < 0 {
		return Context{}, false
	}
	before := stream.IndexEndingAt(caret)
	at := stream.IndexAt(caret)

	type candidate struct {
		index   int
		forward bool
		after   bool
	}
	candidates := []candidate{
		{index: before, forward: false, after: true},
		{index: at, forward: true},
		{index: before, forward: true, after: true},
		{index: at, forward: false},
	}
	for _, cand := range candidates {
		if cand.index < 0 {
			continue
		}
		it := tokens.NewIterator(stream, cand.index)
		if m.classifier.Group(it.Type()) == NoGroup || !m.opening(it, text, cand.forward) {
			continue
		}
		brace := stream[cand.index]
		ctx = Context{
			Brace:       brace,
			Forward:     cand.forward,
			CaretAfter:  cand.after,
			CaretInside: !cand.after && caret > brace.Start && caret < brace.End,
		}
		ctx.Outcome = m.Match(text, it, cand.forward)
		if ctx.Outcome.Matched() {
			ctx.Matched = true
			ctx.Match, _ = it.Token()
		}
		return ctx, true
	}
	return Context{}, false
}

// NavigationTarget returns where "go to matching brace" should put the caret.
// A caret after the anchor lands after the partner; otherwise it lands on the
// partner's start.
func (c Context) NavigationTarget() (int, bool) {
	if !c.Matched {
		return 0, false
	}
	if c.CaretAfter {
		return c.Match.End, true
	}
	return c.Match.Start, true
}

// Scope is an enclosing structural pair. Close is zero when Closed is false.
type Scope struct {
	Open   tokens.Token
	Close  tokens.Token
	Closed bool
}

// EnclosingScope finds the innermost structural left brace before caret and
// its forward partner. ok is false when the caret is not inside any scope.
func (m Matcher) EnclosingScope(text []byte, stream tokens.Stream, caret int) (Scope, bool) {
	if m.classifier == nil {
		return Scope{}, false
	}
	it := tokens.IteratorBefore(stream, caret)
	if !m.FindStructuralLeftBrace(it, text) {
		return Scope{}, false
	}
	open, _ := it.Token()
	scope := Scope{Open: open}
	if m.MatchBrace(text, it, true) {
		scope.Close, _ = it.Token()
		scope.Closed = true
	}
	return scope, true
}
