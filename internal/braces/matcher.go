package braces

import "github.com/standardbeagle/braces/internal/tokens"

// Strictness overrides the classifier's tag matching mode.
type Strictness uint8

const (
	// StrictAuto asks the TagClassifier per group; plain classifiers are non-strict.
	StrictAuto Strictness = iota
	StrictOn
	StrictOff
)

// Matcher runs brace scans against one classifier. The zero MaxSteps means unbounded.
type Matcher struct {
	classifier Classifier
	maxSteps   int
	strictness Strictness
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMaxSteps bounds the number of tokens a single scan may visit.
func WithMaxSteps(n int) Option {
	return func(m *Matcher) {
		if n < 0 {
			n = 0
		}
		m.maxSteps = n
	}
}

// WithStrictness forces strict or non-strict tag matching.
func WithStrictness(s Strictness) Option {
	return func(m *Matcher) {
		m.strictness = s
	}
}

// New creates a Matcher for classifier c.
func New(c Classifier, opts ...Option) Matcher {
	m := Matcher{classifier: c}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Classifier returns the classifier the matcher was built with.
func (m Matcher) Classifier() Classifier {
	return m.classifier
}

// MaxSteps returns the scan budget, 0 when unbounded.
func (m Matcher) MaxSteps() int {
	return m.maxSteps
}

// frame is one entry of the brace stack.
type frame struct {
	typ        tokens.Type
	name       string
	structural bool
}

// MatchBrace scans from the brace under it towards its partner. On success it
// returns true and leaves it on the partner; otherwise it returns false and
// it is left wherever the scan stopped (at end-of-stream when input ran out).
func (m Matcher) MatchBrace(text []byte, it tokens.Iterator, forward bool) bool {
	return m.Match(text, it, forward).Matched()
}

// Match is MatchBrace with the full scan outcome.
func (m Matcher) Match(text []byte, it tokens.Iterator, forward bool) Outcome {
	c := m.classifier
	if c == nil || it == nil || it.AtEnd() {
		return unmatched(ReasonNotABrace, 0)
	}
	anchor := it.Type()
	group := c.Group(anchor)
	if anchor == tokens.None || group == NoGroup || !m.opening(it, text, forward) {
		return unmatched(ReasonNotABrace, 0)
	}

	strict, caseSensitive := m.tagMode(group)
	anchorName := tagName(c, it, text)
	stack := []frame{{typ: anchor, name: anchorName, structural: c.IsStructural(it, text)}}

	steps := 0
	for {
		step(it, forward)
		if it.AtEnd() {
			return unmatched(ReasonEndOfStream, steps)
		}
		steps++
		if m.budgetExceeded(steps) {
			return unmatched(ReasonStepBudget, steps)
		}

		t := it.Type()
		if c.Group(t) != group {
			continue
		}
		name := tagName(c, it, text)
		lenient := !strict && anchorName != ""
		if lenient && !sameName(anchorName, name, caseSensitive) && optionalEndTag(c, group, name) {
			// Elements whose end tag may be omitted cannot be counted reliably.
			continue
		}
		if m.opening(it, text, forward) {
			stack = append(stack, frame{typ: t, name: name, structural: c.IsStructural(it, text)})
			continue
		}
		if !m.closing(it, text, forward) {
			continue
		}

		if lenient && name != "" {
			if i := namedFrame(stack, name, caseSensitive); i >= 0 && i < len(stack)-1 && isPair(c, stack[i].typ, t, forward) {
				// Frames above the named one were left open; the closer ends them too.
				stack = stack[:i]
				if len(stack) == 0 {
					return matched(steps)
				}
				continue
			}
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !strict && !isPair(c, top.typ, t, forward) {
			if opposite, ok := c.Opposite(t); ok && containsType(stack, opposite) {
				// Recovery: a structural closer may skip unclosed decorative openers
				// on its way down to its partner.
				closerStructural := c.IsStructural(it, text)
				for !isPair(c, top.typ, t, forward) && closerStructural && !top.structural && len(stack) > 0 {
					top = stack[len(stack)-1]
					stack = stack[:len(stack)-1]
				}
			} else if !sameName(anchorName, name, caseSensitive) {
				// Unrelated closer; keep scanning as if it were not there.
				stack = append(stack, top)
				continue
			}
		}

		if !isPair(c, top.typ, t, forward) {
			return unmatched(ReasonTypeMismatch, steps)
		}
		if strict && !sameName(top.name, name, caseSensitive) {
			return unmatched(ReasonNameMismatch, steps)
		}
		if len(stack) == 0 {
			return matched(steps)
		}
	}
}

func (m Matcher) opening(it tokens.Iterator, text []byte, forward bool) bool {
	if forward {
		return m.classifier.IsOpen(it, text)
	}
	return m.classifier.IsClose(it, text)
}

func (m Matcher) closing(it tokens.Iterator, text []byte, forward bool) bool {
	if forward {
		return m.classifier.IsClose(it, text)
	}
	return m.classifier.IsOpen(it, text)
}

// tagMode resolves strictness and case sensitivity for a group.
func (m Matcher) tagMode(g Group) (strict, caseSensitive bool) {
	caseSensitive = true
	if tc, ok := m.classifier.(TagClassifier); ok {
		strict = tc.StrictTagMatching(g)
		caseSensitive = tc.TagNamesCaseSensitive(g)
	}
	switch m.strictness {
	case StrictOn:
		strict = true
	case StrictOff:
		strict = false
	}
	return strict, caseSensitive
}

func (m Matcher) budgetExceeded(steps int) bool {
	return m.maxSteps > 0 && steps > m.maxSteps
}

func step(it tokens.Iterator, forward bool) {
	if forward {
		it.Advance()
	} else {
		it.Retreat()
	}
}

// namedFrame returns the index of the innermost frame called name, or -1.
func namedFrame(stack []frame, name string, caseSensitive bool) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if sameName(stack[i].name, name, caseSensitive) {
			return i
		}
	}
	return -1
}

func containsType(stack []frame, t tokens.Type) bool {
	for i := range stack {
		if stack[i].typ == t {
			return true
		}
	}
	return false
}
