package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/debug"
	"github.com/standardbeagle/braces/internal/tokens"
)

// DiagnosticKind classifies a balance problem.
type DiagnosticKind string

const (
	// KindUnclosed is an opener that is never closed.
	KindUnclosed DiagnosticKind = "unclosed"
	// KindUnexpected is a closer with no opener it could pair with.
	KindUnexpected DiagnosticKind = "unexpected"
	// KindMismatch is a closing tag whose name differs from the open one.
	KindMismatch DiagnosticKind = "mismatch"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a tag name suggestion.
const suggestionThreshold = 0.7

// Diagnostic is one balance problem in a file.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Offset int            `json:"offset"`
	Line   int            `json:"line"`
	Column int            `json:"column"`
	// Token is the source text of the offending brace.
	Token string `json:"token"`
	// Expected is the closer that would have been valid here.
	Expected   string `json:"expected,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	// Related is the opener a mismatch refers to.
	Related *Position `json:"related,omitempty"`
	Message string    `json:"message"`
}

// FileReport is the result of checking one file.
type FileReport struct {
	Path        string       `json:"path"`
	Language    string       `json:"language,omitempty"`
	Tokens      int          `json:"tokens"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Error       string       `json:"error,omitempty"`
}

// OK reports whether the file was checked and is balanced.
func (r *FileReport) OK() bool {
	return r.Error == "" && len(r.Diagnostics) == 0
}

// Check tokenizes content (language picked by path) and reports every
// unbalanced brace.
func (e *Engine) Check(ctx context.Context, path string, content []byte) (*FileReport, error) {
	doc, err := e.Load(ctx, path, "", content)
	if err != nil {
		return nil, err
	}
	return e.CheckDocument(doc), nil
}

// CheckFile reads and checks path.
func (e *Engine) CheckFile(ctx context.Context, path string) (*FileReport, error) {
	doc, err := e.Open(ctx, path, "")
	if err != nil {
		return nil, err
	}
	return e.CheckDocument(doc), nil
}

// CheckDocument runs the balance pass over an already tokenized document.
func (e *Engine) CheckDocument(doc *Document) *FileReport {
	chk := &checker{doc: doc, c: doc.Language.Classifier, stacks: make(map[braces.Group][]openFrame)}
	if tc, ok := chk.c.(braces.TagClassifier); ok {
		chk.tags = tc
	}
	diags := chk.run()
	debug.LogCheck("%s: %d tokens, %d diagnostics", doc.Path, len(doc.Stream), len(diags))
	return &FileReport{
		Path:        doc.Path,
		Language:    doc.Language.Name,
		Tokens:      len(doc.Stream),
		Diagnostics: diags,
	}
}

type openFrame struct {
	tok  tokens.Token
	name string
}

// checker is a single linear pass keeping one stack of open braces per group.
type checker struct {
	doc    *Document
	c      braces.Classifier
	tags   braces.TagClassifier
	stacks map[braces.Group][]openFrame
	diags  []Diagnostic
}

func (k *checker) run() []Diagnostic {
	text := k.doc.Content
	for it := tokens.NewIterator(k.doc.Stream, 0); !it.AtEnd(); it.Advance() {
		g := k.c.Group(it.Type())
		if g == braces.NoGroup {
			continue
		}
		tok, _ := it.Token()
		switch {
		case k.c.IsOpen(it, text):
			k.stacks[g] = append(k.stacks[g], openFrame{tok: tok, name: k.name(it)})
		case k.c.IsClose(it, text):
			k.stacks[g] = k.close(g, k.stacks[g], tok, k.name(it))
		}
	}

	for _, stack := range k.stacks {
		for _, f := range stack {
			k.unclosed(f)
		}
	}
	sort.SliceStable(k.diags, func(i, j int) bool { return k.diags[i].Offset < k.diags[j].Offset })
	if k.diags == nil {
		return []Diagnostic{}
	}
	return k.diags
}

// close pairs tok with the innermost compatible opener. Openers skipped on
// the way down are reported unclosed unless their end tag is optional. A closer of the right kind whose tag
// name matches nothing is a mismatch and consumes the top opener; any other
// unpaired closer is unexpected and leaves the stack alone.
func (k *checker) close(g braces.Group, stack []openFrame, tok tokens.Token, name string) []openFrame {
	if len(stack) == 0 {
		k.add(KindUnexpected, tok, "", "", nil, fmt.Sprintf("unexpected %s", k.text(tok)))
		return stack
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if k.pairs(g, stack[i], tok, name) {
			for _, f := range stack[i+1:] {
				k.unclosed(f)
			}
			return stack[:i]
		}
	}

	top := stack[len(stack)-1]
	expected := k.expected(top)
	related := k.doc.Position(top.tok.Start)
	if k.tags != nil && k.c.IsPair(top.tok.Type, tok.Type) {
		msg := fmt.Sprintf("%s does not close %s opened at %d:%d", k.text(tok), k.text(top.tok), related.Line, related.Column)
		k.add(KindMismatch, tok, expected, k.suggest(stack, name), &related, msg)
		return stack[:len(stack)-1]
	}

	msg := fmt.Sprintf("unexpected %s, expected %s", k.text(tok), expected)
	k.add(KindUnexpected, tok, expected, "", &related, msg)
	return stack
}

func (k *checker) pairs(g braces.Group, f openFrame, tok tokens.Token, name string) bool {
	if !k.c.IsPair(f.tok.Type, tok.Type) {
		return false
	}
	if k.tags == nil {
		return true
	}
	if k.tags.TagNamesCaseSensitive(g) {
		return f.name == name
	}
	return strings.EqualFold(f.name, name)
}

// suggest returns the closing tag of the open element whose name is most
// similar to name, ignoring case, if any is similar enough.
func (k *checker) suggest(stack []openFrame, name string) string {
	if name == "" {
		return ""
	}
	name = strings.ToLower(name)
	best, bestScore := "", float32(0)
	for i := len(stack) - 1; i >= 0; i-- {
		score, err := edlib.StringsSimilarity(strings.ToLower(stack[i].name), name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = stack[i].name, score
		}
	}
	if best == "" || bestScore < suggestionThreshold {
		return ""
	}
	return "</" + best + ">"
}

func (k *checker) unclosed(f openFrame) {
	if oc, ok := k.c.(braces.OptionalEndTagClassifier); ok && f.name != "" && oc.OptionalEndTag(k.c.Group(f.tok.Type), f.name) {
		return
	}
	expected := k.expected(f)
	msg := fmt.Sprintf("unclosed %s", k.text(f.tok))
	if expected != "" {
		msg += ", expected " + expected
	}
	k.add(KindUnclosed, f.tok, expected, "", nil, msg)
}

// expected spells the closer for an open frame.
func (k *checker) expected(f openFrame) string {
	if k.tags != nil && f.name != "" {
		return "</" + f.name + ">"
	}
	if opp, ok := k.c.Opposite(f.tok.Type); ok {
		return string(opp)
	}
	return ""
}

func (k *checker) name(it tokens.Iterator) string {
	if k.tags == nil {
		return ""
	}
	return k.tags.TagName(it, k.doc.Content)
}

func (k *checker) text(tok tokens.Token) string {
	return string(tok.Text(k.doc.Content))
}

func (k *checker) add(kind DiagnosticKind, tok tokens.Token, expected, suggestion string, related *Position, msg string) {
	pos := k.doc.Position(tok.Start)
	k.diags = append(k.diags, Diagnostic{
		Kind:       kind,
		Offset:     tok.Start,
		Line:       pos.Line,
		Column:     pos.Column,
		Token:      k.text(tok),
		Expected:   expected,
		Suggestion: suggestion,
		Related:    related,
		Message:    msg,
	})
}
