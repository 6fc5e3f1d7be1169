package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"secrecc/internal/ast"
)

func TestReporterFormatIncludesCodeAndLocation(t *testing.T) {
	source := "func main() {\n  int64 x = y + 1;\n}\n"
	r := NewReporter("main.sc", source)

	d := UndefinedVariable("y", ast.Position{Line: 2, Col: 13}, []string{"x"})
	out := r.Format(d)

	assert.Contains(t, out, "E0001")
	assert.Contains(t, out, "main.sc:2:13")
	assert.Contains(t, out, "cannot find variable")
}

func TestUndefinedVariableSuggestsSimilarName(t *testing.T) {
	d := UndefinedVariable("coutn", ast.Position{Line: 1, Col: 1}, []string{"count", "other"})
	assert.True(t, len(d.Suggestions) > 0)
	assert.True(t, strings.Contains(d.Suggestions[0].Message, "count"))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("abc", "abc"))
	assert.Equal(t, 1, levenshteinDistance("abc", "abd"))
	assert.Equal(t, 3, levenshteinDistance("", "abc"))
}
