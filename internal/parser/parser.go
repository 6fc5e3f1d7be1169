// Package parser turns SecreC source text into an internal/ast tree. The
// grammar itself (grammar.go) is a participle PEG; this file builds the
// participle parser once and drives it, converting its g* parse tree into
// ast nodes (convert.go) and rendering any participle.Error the same way
// semantic diagnostics are rendered, via internal/errors.Reporter.
package parser

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"

	"secrecc/internal/ast"
	"secrecc/internal/errors"
)

var build = participle.MustBuild[gProgram](
	participle.Lexer(SecrecLexer),
	participle.Elide("Whitespace", "Comment", "BlockComment", "DocComment"),
	participle.UseLookahead(4),
)

// ParseFile reads and parses the SecreC source at path.
func ParseFile(path string) (*ast.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseString(path, string(source))
}

// ParseString parses source text, attributed to filename in diagnostics.
func ParseString(filename, source string) (*ast.Module, error) {
	tree, err := build.ParseString(filename, source)
	if err != nil {
		return nil, renderParseError(filename, source, err)
	}
	return convertProgram(filename, tree)
}

// renderParseError prints a syntax failure in the same caret-annotated
// form used for semantic diagnostics, so syntax and semantic errors read
// identically on a terminal, then returns the original error for callers
// that want the raw participle.Error (e.g. to inspect Position()).
func renderParseError(filename, source string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return err
	}
	pos := pe.Position()
	reporter := errors.NewReporter(filename, source)
	rendered := reporter.Format(errors.Diagnostic{
		Level:    errors.LevelError,
		Code:     errors.ErrorSyntax,
		Message:  pe.Message(),
		Position: ast.Position{File: pos.Filename, Line: pos.Line, Col: pos.Column},
		Length:   1,
	})
	fmt.Fprint(os.Stderr, rendered)
	return err
}
