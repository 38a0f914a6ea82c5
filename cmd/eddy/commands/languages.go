package commands

import (
	"github.com/eddy-editor/eddy/econfig"
	"github.com/eddy-editor/eddy/lexer"
	"github.com/eddy-editor/eddy/mode"
)

// builtinGrammars maps the languages eddy ships lexer support for (as
// opposed to any language a user's .eddy.toml merely names an LSP
// server for) to a lexer.Language. Adding a new built-in language means
// adding a keyword table here; everything downstream -- indexing,
// highlighting, directive handling -- is generic over *lexer.Language.
var builtinGrammars = map[string]*lexer.Language{
	"go": {
		Name: "go",
		Keywords: []lexer.Keyword{
			{Text: "break", Code: 1}, {Text: "case", Code: 2}, {Text: "chan", Code: 3},
			{Text: "const", Code: 4}, {Text: "continue", Code: 5}, {Text: "default", Code: 6},
			{Text: "defer", Code: 7}, {Text: "else", Code: 8}, {Text: "fallthrough", Code: 9},
			{Text: "for", Code: 10}, {Text: "func", Code: 11}, {Text: "go", Code: 12},
			{Text: "goto", Code: 13}, {Text: "if", Code: 14}, {Text: "import", Code: 15},
			{Text: "interface", Code: 16}, {Text: "map", Code: 17}, {Text: "package", Code: 18},
			{Text: "range", Code: 19}, {Text: "return", Code: 20}, {Text: "select", Code: 21},
			{Text: "struct", Code: 22}, {Text: "switch", Code: 23}, {Text: "type", Code: 24},
			{Text: "var", Code: 25},
			{Text: "&&", Code: 26}, {Text: "||", Code: 27}, {Text: ":=", Code: 28},
			{Text: "<-", Code: 29}, {Text: "==", Code: 30}, {Text: "!=", Code: 31},
			{Text: "<=", Code: 32}, {Text: ">=", Code: 33}, {Text: "...", Code: 34},
		},
		PreprocessorTrigger: 0,
	},
	"c": {
		Name: "c",
		Keywords: []lexer.Keyword{
			{Text: "auto", Code: 1}, {Text: "break", Code: 2}, {Text: "case", Code: 3},
			{Text: "char", Code: 4}, {Text: "const", Code: 5}, {Text: "continue", Code: 6},
			{Text: "default", Code: 7}, {Text: "do", Code: 8}, {Text: "double", Code: 9},
			{Text: "else", Code: 10}, {Text: "enum", Code: 11}, {Text: "extern", Code: 12},
			{Text: "float", Code: 13}, {Text: "for", Code: 14}, {Text: "goto", Code: 15},
			{Text: "if", Code: 16}, {Text: "int", Code: 17}, {Text: "long", Code: 18},
			{Text: "return", Code: 19}, {Text: "short", Code: 20}, {Text: "sizeof", Code: 21},
			{Text: "static", Code: 22}, {Text: "struct", Code: 23}, {Text: "switch", Code: 24},
			{Text: "typedef", Code: 25}, {Text: "union", Code: 26}, {Text: "void", Code: 27},
			{Text: "while", Code: 28},
			{Text: "&&", Code: 29}, {Text: "||", Code: 30}, {Text: "==", Code: 31},
			{Text: "!=", Code: 32}, {Text: "<=", Code: 33}, {Text: ">=", Code: 34},
			{Text: "->", Code: 35},
		},
		Directives:          []string{"include", "define", "ifdef", "ifndef", "endif", "pragma"},
		PreprocessorTrigger:  '#',
		DirectiveHandler:     lexer.IncludeDirective{},
	},
}

var builtinExtensions = map[string][]string{
	"go": {".go"},
	"c":  {".c", ".h"},
}

// BuildRegistry constructs a mode.Registry from cfg's configured LSP
// servers, attaching a lexer grammar and file extensions for every
// language eddy ships one for. A server configured for a language
// without a built-in entry is registered with no extensions, so
// Registry.ForPath never selects it for any file.
func BuildRegistry(cfg *econfig.Config) *mode.Registry {
	reg := mode.NewRegistry()
	for _, srv := range cfg.Servers() {
		reg.Register(&mode.Language{
			Name:       srv.Language,
			Extensions: builtinExtensions[srv.Language],
			Grammar:    builtinGrammars[srv.Language],
			Command:    srv.Command,
			Args:       srv.Args,
		})
	}
	return reg
}
