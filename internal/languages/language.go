package languages

import (
	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/parser"
	"github.com/standardbeagle/braces/internal/tokens"
)

// SourceBuiltin marks languages compiled into the binary.
const SourceBuiltin = "builtin"

// Language binds a lexer to the classifier that understands its tokens.
type Language struct {
	Name       string
	Extensions []string
	Lexer      parser.Lexer
	Classifier braces.Classifier
	// ParenOpen and ParenClose are the default types for parenthesis searches.
	ParenOpen  tokens.Type
	ParenClose tokens.Type
	// Source is SourceBuiltin or the file the language was loaded from.
	Source string
}

// Matcher returns a matcher for the language's classifier.
func (l *Language) Matcher(opts ...braces.Option) braces.Matcher {
	return braces.New(l.Classifier, opts...)
}

type treeSitterSpec struct {
	grammar    string
	extensions []string
	pairs      []Pair
}

var treeSitterLanguages = []treeSitterSpec{
	{parser.GrammarGo, []string{".go"}, bracketPairs()},
	{parser.GrammarJava, []string{".java"}, bracketPairs()},
	{parser.GrammarJavaScript, []string{".js", ".jsx", ".mjs", ".cjs"}, bracketPairs()},
	{parser.GrammarTypeScript, []string{".ts", ".mts", ".cts"}, bracketPairs()},
	{parser.GrammarTSX, []string{".tsx"}, bracketPairs()},
	{parser.GrammarRust, []string{".rs"}, bracketPairs()},
	{parser.GrammarCpp, []string{".c", ".h", ".cc", ".cpp", ".cxx", ".hh", ".hpp"}, bracketPairs()},
	{parser.GrammarCSharp, []string{".cs"}, bracketPairs()},
	{parser.GrammarZig, []string{".zig"}, bracketPairs()},
	{parser.GrammarPHP, []string{".php", ".phtml"}, bracketPairs()},
	// Python blocks are indentation-delimited; no bracket is structural.
	{parser.GrammarPython, []string{".py", ".pyi"}, []Pair{
		{Open: "{", Close: "}"},
		{Open: "(", Close: ")"},
		{Open: "[", Close: "]"},
	}},
}

// Builtins returns fresh instances of every compiled-in language.
func Builtins() ([]*Language, error) {
	out := make([]*Language, 0, len(treeSitterLanguages)+4)
	for _, spec := range treeSitterLanguages {
		lx, err := parser.NewTreeSitterLexer(spec.grammar)
		if err != nil {
			return nil, err
		}
		out = append(out, &Language{
			Name:       spec.grammar,
			Extensions: spec.extensions,
			Lexer:      lx,
			Classifier: NewPairTable(spec.pairs...),
			ParenOpen:  "(",
			ParenClose: ")",
			Source:     SourceBuiltin,
		})
	}

	out = append(out,
		&Language{
			Name:       "html",
			Extensions: []string{".html", ".htm", ".vue", ".svelte"},
			Lexer:      parser.NewMarkupLexer(false),
			Classifier: HTMLTags(),
			Source:     SourceBuiltin,
		},
		&Language{
			Name:       "xml",
			Extensions: []string{".xml", ".xhtml", ".svg", ".xsd", ".xsl", ".xslt", ".plist", ".csproj"},
			Lexer:      parser.NewMarkupLexer(true),
			Classifier: XMLTags(),
			Source:     SourceBuiltin,
		},
		&Language{
			Name:       "shell",
			Extensions: []string{".sh", ".bash", ".zsh"},
			Lexer: parser.NewPlainLexer(parser.PlainConfig{
				Punctuation: "()[]{};|&",
				Keywords:    []string{"if", "then", "elif", "else", "fi", "case", "esac", "for", "while", "until", "do", "done", "in"},
				LineComment: "#",
				Quotes:      `"'` + "`",
			}),
			Classifier: NewPairTable(append(bracketPairs(),
				Pair{Open: "if", Close: "fi", Structural: true, Group: 1},
				Pair{Open: "case", Close: "esac", Structural: true, Group: 1},
				Pair{Open: "do", Close: "done", Structural: true, Group: 1},
			)...),
			ParenOpen:  "(",
			ParenClose: ")",
			Source:     SourceBuiltin,
		},
		&Language{
			Name:       "text",
			Extensions: []string{".txt", ".md", ".rst"},
			Lexer:      parser.NewPlainLexer(parser.PlainConfig{Punctuation: "()[]{}"}),
			Classifier: NewPairTable(bracketPairs()...),
			ParenOpen:  "(",
			ParenClose: ")",
			Source:     SourceBuiltin,
		},
	)
	return out, nil
}
