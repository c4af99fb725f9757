package parser

import (
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar names
const (
	GrammarGo         = "go"
	GrammarPython     = "python"
	GrammarJavaScript = "javascript"
	GrammarTypeScript = "typescript"
	GrammarTSX        = "tsx"
	GrammarRust       = "rust"
	GrammarJava       = "java"
	GrammarCpp        = "cpp"
	GrammarCSharp     = "csharp"
	GrammarZig        = "zig"
	GrammarPHP        = "php"
)

// grammars is fixed at init; pools are created lazily on first use.
var grammars = map[string]func() unsafe.Pointer{
	GrammarGo:         tree_sitter_go.Language,
	GrammarPython:     tree_sitter_python.Language,
	GrammarJavaScript: tree_sitter_javascript.Language,
	GrammarTypeScript: tree_sitter_typescript.LanguageTypescript,
	GrammarTSX:        tree_sitter_typescript.LanguageTSX,
	GrammarRust:       tree_sitter_rust.Language,
	GrammarJava:       tree_sitter_java.Language,
	GrammarCpp:        tree_sitter_cpp.Language,
	GrammarCSharp:     tree_sitter_csharp.Language,
	GrammarZig:        tree_sitter_zig.Language,
	GrammarPHP:        tree_sitter_php.LanguagePHP,
}
