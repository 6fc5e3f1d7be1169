package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"secrecc/internal/ast"
)

func TestCompileLogTracksErrors(t *testing.T) {
	log := NewCompileLog("secrecc.test")
	assert.False(t, log.HasErrors())

	log.Warning(ast.Position{Line: 1}, WarningUnusedVariable, "variable %s unused", "x")
	assert.False(t, log.HasErrors())

	log.Error(ast.Position{Line: 2}, ErrorTypeMismatch, "bad type")
	assert.True(t, log.HasErrors())
	assert.False(t, log.HasFatal())

	log.Fatal(ast.Position{Line: 3}, ErrorGenericSemantic, "internal error")
	assert.True(t, log.HasFatal())

	assert.Len(t, log.Messages(), 3)
}
