package braces

import "github.com/standardbeagle/braces/internal/tokens"

// NotFound is returned by the parenthesis searches when nothing qualifies.
const NotFound = -1

// FindStructuralLeftBrace walks backward from the current token (inclusive)
// to the innermost unbalanced structural left brace. On success it returns
// true with it positioned on that brace.
func (m Matcher) FindStructuralLeftBrace(it tokens.Iterator, text []byte) bool {
	return m.ScanStructuralLeftBrace(it, text).Matched()
}

// ScanStructuralLeftBrace is FindStructuralLeftBrace with the full outcome.
func (m Matcher) ScanStructuralLeftBrace(it tokens.Iterator, text []byte) Outcome {
	c := m.classifier
	if c == nil || it == nil {
		return unmatched(ReasonNotABrace, 0)
	}

	var stack []frame
	steps := 0
	for ; !it.AtEnd(); it.Retreat() {
		steps++
		if m.budgetExceeded(steps) {
			return unmatched(ReasonStepBudget, steps)
		}
		t := it.Type()
		if c.Group(t) == NoGroup || !c.IsStructural(it, text) {
			continue
		}
		if c.IsClose(it, text) {
			stack = append(stack, frame{typ: t, name: tagName(c, it, text), structural: true})
			continue
		}
		if !c.IsOpen(it, text) {
			continue
		}
		if len(stack) == 0 {
			return matched(steps)
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !c.IsPair(t, top.typ) {
			return unmatched(ReasonTypeMismatch, steps)
		}
		strict, caseSensitive := m.tagMode(c.Group(t))
		if strict && !sameName(top.name, tagName(c, it, text), caseSensitive) {
			return unmatched(ReasonNameMismatch, steps)
		}
	}
	return unmatched(ReasonEndOfStream, steps)
}

// FindLeftmostLParen walks backward and returns the start of the outermost
// lparen that opens an unfinished group around the current position, or NotFound.
func (m Matcher) FindLeftmostLParen(it tokens.Iterator, text []byte, lparen tokens.Type) int {
	return m.findParen(it, text, lparen, false, false)
}

// FindLeftLParen walks backward and returns the start of the closest
// unbalanced lparen, or NotFound.
func (m Matcher) FindLeftLParen(it tokens.Iterator, text []byte, lparen tokens.Type) int {
	return m.findParen(it, text, lparen, false, true)
}

// FindRightmostRParen walks forward and returns the start of the outermost
// rparen that closes an unfinished group around the current position, or NotFound.
func (m Matcher) FindRightmostRParen(it tokens.Iterator, text []byte, rparen tokens.Type) int {
	return m.findParen(it, text, rparen, true, false)
}

// FindRightRParen walks forward and returns the start of the closest
// unbalanced rparen, or NotFound.
func (m Matcher) FindRightRParen(it tokens.Iterator, text []byte, rparen tokens.Type) int {
	return m.findParen(it, text, rparen, true, true)
}

// findParen keeps a stack of braces facing away from the search direction.
// A brace facing the search direction with an empty stack is a candidate if
// it has the wanted type; any other brace at that point, or a mismatched pop,
// ends the scan.
func (m Matcher) findParen(it tokens.Iterator, text []byte, paren tokens.Type, searchingForRight, stopOnFirstFinishedGroup bool) int {
	c := m.classifier
	if c == nil || it == nil {
		return NotFound
	}

	found := NotFound
	var stack []tokens.Type
	steps := 0
	for ; !it.AtEnd(); step(it, searchingForRight) {
		steps++
		if m.budgetExceeded(steps) {
			break
		}
		t := it.Type()
		if c.Group(t) == NoGroup {
			continue
		}

		var facing, away bool
		if searchingForRight {
			facing, away = c.IsClose(it, text), c.IsOpen(it, text)
		} else {
			facing, away = c.IsOpen(it, text), c.IsClose(it, text)
		}

		switch {
		case facing:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if !isPair(c, top, t, searchingForRight) {
					return found
				}
				continue
			}
			if t != paren {
				return found
			}
			found = it.Start()
			if stopOnFirstFinishedGroup {
				return found
			}
		case away:
			stack = append(stack, t)
		}
	}
	return found
}
