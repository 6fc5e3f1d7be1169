package errors

import (
	"fmt"
	"sort"
	"strings"

	"secrecc/internal/ast"
)

// DiagnosticBuilder provides a fluent interface for building a Diagnostic
// with suggestions, notes, and help text.
type DiagnosticBuilder struct {
	d Diagnostic
}

func NewError(code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{d: Diagnostic{Level: LevelError, Code: code, Message: message, Position: pos, Length: 1}}
}

func NewWarning(code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{d: Diagnostic{Level: LevelWarning, Code: code, Message: message, Position: pos, Length: 1}}
}

func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.d.Length = length
	return b
}

func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Message: message})
	return b
}

func (b *DiagnosticBuilder) WithReplacement(message, replacement string) *DiagnosticBuilder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.d.HelpText = help
	return b
}

func (b *DiagnosticBuilder) Build() Diagnostic { return b.d }

// UndefinedVariable builds the E0001 diagnostic, suggesting the closest
// in-scope names when any are within edit distance 2.
func UndefinedVariable(name string, pos ast.Position, inScope []string) Diagnostic {
	b := NewError(ErrorUndefinedVariable, fmt.Sprintf("cannot find variable `%s` in this scope", name), pos).
		WithLength(len(name))
	if similar := findSimilarNames(name, inScope); len(similar) > 0 {
		b.WithSuggestion(fmt.Sprintf("did you mean `%s`?", similar[0]))
	}
	return b.Build()
}

func UndefinedProcedure(name string, pos ast.Position, candidates []string) Diagnostic {
	b := NewError(ErrorUndefinedProcedure, fmt.Sprintf("no matching procedure or operator overload for `%s`", name), pos).
		WithLength(len(name))
	if similar := findSimilarNames(name, candidates); len(similar) > 0 {
		b.WithSuggestion(fmt.Sprintf("did you mean `%s`?", similar[0]))
	}
	return b.Build()
}

func TypeMismatch(expected, actual string, pos ast.Position) Diagnostic {
	return NewError(ErrorTypeMismatch, fmt.Sprintf("expected type `%s`, found `%s`", expected, actual), pos).
		WithHelp(fmt.Sprintf("convert the expression to `%s` or change the declared type", expected)).
		Build()
}

func InvalidClassify(dataType, domain, kind string, pos ast.Position) Diagnostic {
	return NewError(ErrorInvalidClassify, fmt.Sprintf("kind `%s` of domain `%s` does not admit data type `%s`", kind, domain, dataType), pos).
		Build()
}

func InvalidDeclassify(pos ast.Position) Diagnostic {
	return NewError(ErrorInvalidDeclassify, "declassify requires a private operand", pos).Build()
}

func UnsatisfiedConstraint(quantifier, constraint, argType string, pos ast.Position) Diagnostic {
	return NewError(ErrorUnsatisfiedConstraint,
		fmt.Sprintf("type argument `%s` for quantifier `%s` does not satisfy constraint `%s`", argType, quantifier, constraint), pos).
		Build()
}

func AmbiguousOverload(name string, pos ast.Position, candidates []string) Diagnostic {
	return NewError(ErrorAmbiguousOverload, fmt.Sprintf("call to `%s` is ambiguous between %d equally specific overloads", name, len(candidates)), pos).
		WithNote(strings.Join(candidates, ", ")).
		Build()
}

func UnusedVariable(name string, pos ast.Position) Diagnostic {
	return NewWarning(WarningUnusedVariable, fmt.Sprintf("variable `%s` is never read", name), pos).WithLength(len(name)).Build()
}

func UnreachableCode(pos ast.Position) Diagnostic {
	return NewWarning(WarningUnreachableCode, "unreachable code", pos).Build()
}

func MissingReturn(procName, returnType string, pos ast.Position) Diagnostic {
	return NewError(ErrorMissingReturn, fmt.Sprintf("procedure `%s` declares return type `%s` but has a path without a return statement", procName, returnType), pos).
		Build()
}

func FieldNotFound(structName, fieldName string, pos ast.Position, available []string) Diagnostic {
	b := NewError(ErrorFieldNotFound, fmt.Sprintf("struct `%s` has no field `%s`", structName, fieldName), pos).
		WithLength(len(fieldName))
	if similar := findSimilarNames(fieldName, available); len(similar) > 0 {
		b.WithSuggestion(fmt.Sprintf("did you mean `%s`?", similar[0]))
	}
	return b.Build()
}

func MissingField(structName, fieldName string, pos ast.Position) Diagnostic {
	return NewError(ErrorMissingField, fmt.Sprintf("missing field `%s` in literal of struct `%s`", fieldName, structName), pos).Build()
}

func InvalidOperation(op, leftType, rightType string, pos ast.Position) Diagnostic {
	return NewError(ErrorInvalidOperation, fmt.Sprintf("operator `%s` is not defined for `%s` and `%s`", op, leftType, rightType), pos).Build()
}

func DuplicateDeclaration(name string, pos ast.Position) Diagnostic {
	return NewError(ErrorDuplicateDeclaration, fmt.Sprintf("`%s` is already declared in this scope", name), pos).WithLength(len(name)).Build()
}

func InvalidArguments(procName string, expected, actual int, pos ast.Position) Diagnostic {
	return NewError(ErrorInvalidArguments, fmt.Sprintf("`%s` expects %d argument(s), found %d", procName, expected, actual), pos).Build()
}

func InvalidAssignment(message string, pos ast.Position) Diagnostic {
	return NewError(ErrorInvalidAssignment, message, pos).Build()
}

func ImportCycle(cycle []string, pos ast.Position) Diagnostic {
	return NewError(ErrorImportCycle, fmt.Sprintf("import cycle detected: %s", strings.Join(cycle, " -> ")), pos).Build()
}

func ModuleNotFound(name string, pos ast.Position) Diagnostic {
	return NewError(ErrorModuleNotFound, fmt.Sprintf("no module named %q found on any search path", name), pos).Build()
}

// findSimilarNames returns candidates within edit distance 2 of target,
// closest first.
func findSimilarNames(target string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, c := range candidates {
		if d := levenshteinDistance(target, c); d <= 2 && d > 0 {
			matches = append(matches, scored{c, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
