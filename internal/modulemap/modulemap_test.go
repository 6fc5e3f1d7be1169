package modulemap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/modulemap"
)

func writeModule(t *testing.T, dir, name, body string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name+".sc"), []byte(body), 0o644)
	require.NoError(t, err)
}

func TestResolveFollowsTransitiveImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `module a { import b; void main() { } }`)
	writeModule(t, dir, "b", `module b { import c; void helper() { } }`)
	writeModule(t, dir, "c", `module c { void leaf() { } }`)

	mm := modulemap.New()
	mm.AddSearchPath(dir)

	prog, diag, ok := mm.Resolve("a", ast.Position{})
	require.True(t, ok, "diag: %+v", diag)
	require.NotNil(t, prog.Main)
	assert.Equal(t, "a", prog.Main.Name)
	require.Len(t, prog.Imports, 2)

	names := map[string]bool{}
	for _, m := range prog.Imports {
		names[m.Name] = true
	}
	assert.True(t, names["b"])
	assert.True(t, names["c"])
}

func TestResolveDedupesDiamondImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "top", `module top { import left; import right; void main() { } }`)
	writeModule(t, dir, "left", `module left { import shared; void l() { } }`)
	writeModule(t, dir, "right", `module right { import shared; void r() { } }`)
	writeModule(t, dir, "shared", `module shared { void s() { } }`)

	mm := modulemap.New()
	mm.AddSearchPath(dir)

	prog, diag, ok := mm.Resolve("top", ast.Position{})
	require.True(t, ok, "diag: %+v", diag)

	sharedCount := 0
	for _, m := range prog.Imports {
		if m.Name == "shared" {
			sharedCount++
		}
	}
	assert.Equal(t, 1, sharedCount)
}

func TestResolveDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "x", `module x { import y; void fx() { } }`)
	writeModule(t, dir, "y", `module y { import x; void fy() { } }`)

	mm := modulemap.New()
	mm.AddSearchPath(dir)

	_, diag, ok := mm.Resolve("x", ast.Position{})
	require.False(t, ok)
	assert.Equal(t, errors.ErrorImportCycle, diag.Code)
}

func TestResolveReportsMissingModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `module a { import nope; void main() { } }`)

	mm := modulemap.New()
	mm.AddSearchPath(dir)

	_, diag, ok := mm.Resolve("a", ast.Position{})
	require.False(t, ok)
	assert.Equal(t, errors.ErrorModuleNotFound, diag.Code)
}

func TestAddSearchPathToleratesMissingDirectory(t *testing.T) {
	mm := modulemap.New()
	mm.AddSearchPath(filepath.Join(t.TempDir(), "does-not-exist"))

	_, _, ok := mm.Resolve("anything", ast.Position{})
	assert.False(t, ok)
}
