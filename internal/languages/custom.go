package languages

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/braces/internal/braces"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/parser"
	"github.com/standardbeagle/braces/internal/tokens"
)

// languageFile is the TOML layout of a custom language:
//
//	name = "lua"
//	extensions = [".lua"]
//	line_comment = "--"
//	quotes = "\"'"
//
//	[[pairs]]
//	open = "function"
//	close = "end"
//	structural = true
//	group = 1
type languageFile struct {
	Name        string     `toml:"name"`
	Extensions  []string   `toml:"extensions"`
	Grammar     string     `toml:"grammar"`
	LineComment string     `toml:"line_comment"`
	Quotes      string     `toml:"quotes"`
	Punctuation string     `toml:"punctuation"`
	Keywords    []string   `toml:"keywords"`
	Paren       []string   `toml:"paren"`
	Pairs       []pairFile `toml:"pairs"`
}

type pairFile struct {
	Open       string `toml:"open"`
	Close      string `toml:"close"`
	Structural bool   `toml:"structural"`
	Group      int    `toml:"group"`
}

// ParseLanguage decodes a custom language definition. With a grammar the
// bundled tree-sitter lexer is used; otherwise a plain lexer is derived from
// the punctuation, keywords and pair spellings.
func ParseLanguage(data []byte, source string) (*Language, error) {
	var f languageFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, lcierrors.NewConfigError("languages", source, err)
	}

	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" {
		return nil, lcierrors.NewConfigError("languages.name", source, fmt.Errorf("name is required"))
	}
	if len(f.Pairs) == 0 {
		return nil, lcierrors.NewConfigError("languages."+name+".pairs", source, fmt.Errorf("at least one pair is required"))
	}

	pairs := make([]Pair, 0, len(f.Pairs))
	for i, p := range f.Pairs {
		if p.Open == "" || p.Close == "" || p.Open == p.Close {
			return nil, lcierrors.NewConfigError(fmt.Sprintf("languages.%s.pairs[%d]", name, i), source,
				fmt.Errorf("open and close must be distinct and non-empty"))
		}
		if p.Group < 0 {
			return nil, lcierrors.NewConfigError(fmt.Sprintf("languages.%s.pairs[%d].group", name, i), source,
				fmt.Errorf("group must not be negative"))
		}
		pairs = append(pairs, Pair{
			Open:       tokens.Type(p.Open),
			Close:      tokens.Type(p.Close),
			Structural: p.Structural,
			Group:      braces.Group(p.Group),
		})
	}

	lang := &Language{
		Name:       name,
		Extensions: f.Extensions,
		Classifier: NewPairTable(pairs...),
		ParenOpen:  "(",
		ParenClose: ")",
		Source:     source,
	}
	if len(f.Paren) == 2 {
		lang.ParenOpen, lang.ParenClose = tokens.Type(f.Paren[0]), tokens.Type(f.Paren[1])
	}

	if f.Grammar != "" {
		lx, err := parser.NewTreeSitterLexer(f.Grammar)
		if err != nil {
			return nil, lcierrors.NewConfigError("languages."+name+".grammar", f.Grammar, err)
		}
		lang.Lexer = lx
		return lang, nil
	}

	cfg := parser.PlainConfig{
		Punctuation: f.Punctuation,
		Keywords:    f.Keywords,
		LineComment: f.LineComment,
		Quotes:      f.Quotes,
	}
	for _, p := range f.Pairs {
		for _, spelling := range []string{p.Open, p.Close} {
			switch {
			case len(spelling) == 1 && !isWord(spelling):
				if !strings.Contains(cfg.Punctuation, spelling) {
					cfg.Punctuation += spelling
				}
			case isWord(spelling):
				cfg.Keywords = append(cfg.Keywords, spelling)
			default:
				return nil, lcierrors.NewConfigError("languages."+name+".pairs", spelling,
					fmt.Errorf("plain languages pair single punctuation bytes or words; set grammar for other tokens"))
			}
		}
	}
	lang.Lexer = parser.NewPlainLexer(cfg)
	return lang, nil
}

// LoadDir parses every *.toml file under dir, in path order.
func LoadDir(dir string) ([]*Language, error) {
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, "**/*.toml")
	if err != nil {
		return nil, lcierrors.NewFileError("glob", dir, err)
	}
	sort.Strings(matches)

	var out []*Language
	var errs []error
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			errs = append(errs, lcierrors.NewFileError("read", path, err))
			continue
		}
		lang, err := ParseLanguage(data, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, lang)
	}
	return out, lcierrors.NewMultiError(errs).ErrorOrNil()
}

// RegisterDir loads dir into r. Languages that parse are registered even
// when other files fail.
func (r *Registry) RegisterDir(dir string) ([]*Language, error) {
	langs, loadErr := LoadDir(dir)
	for _, lang := range langs {
		if err := r.Register(lang); err != nil {
			return langs, err
		}
	}
	return langs, loadErr
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80) {
			return false
		}
	}
	return true
}
