package symbols

import (
	"testing"

	"secrecc/internal/types"
)

func TestScopeLookupChain(t *testing.T) {
	ctx := types.NewContext()
	root := NewRootScope()
	root.Define(&Variable{Name_: "x", Type: ctx.DefaultInt(), Scope: Global})

	child := NewChildScope(root)
	child.Define(&Variable{Name_: "y", Type: ctx.DefaultBool(), Scope: Local})

	if _, ok := child.Find(CatVariable, "x"); !ok {
		t.Fatalf("expected to find parent-scope variable x from child")
	}
	if _, ok := root.Find(CatVariable, "y"); ok {
		t.Fatalf("did not expect to find child-scope variable y from root")
	}
	if _, ok := child.Find(CatVariable, "y"); !ok {
		t.Fatalf("expected to find y in its own scope")
	}
}

func TestDuplicateDeclarationRejected(t *testing.T) {
	ctx := types.NewContext()
	scope := NewRootScope()
	v := &Variable{Name_: "x", Type: ctx.DefaultInt(), Scope: Local}
	if !scope.Define(v) {
		t.Fatalf("first definition of x should succeed")
	}
	if scope.Define(&Variable{Name_: "x", Type: ctx.DefaultInt(), Scope: Local}) {
		t.Fatalf("expected duplicate declaration of x to be rejected")
	}
}

func TestImportScopeVisibility(t *testing.T) {
	ctx := types.NewContext()
	imported := NewRootScope()
	imported.Define(&Procedure{Name_: "helper", Type: ctx.DefaultInt()})

	user := NewRootScope()
	user.AddImport(imported)

	if _, ok := user.Find(CatProcedure, "helper"); !ok {
		t.Fatalf("expected imported procedure to be visible")
	}
}

func TestTemporaryNamesUnique(t *testing.T) {
	scope := NewRootScope()
	a := scope.Other().NewTemporaryName()
	b := scope.Other().NewTemporaryName()
	if a == b {
		t.Fatalf("expected distinct temporary names, got %s twice", a)
	}
}

func TestLabelBinding(t *testing.T) {
	scope := NewRootScope()
	lbl := scope.Other().NewLabel()
	lbl.BindTo("fake-instruction")
	got, ok := scope.Other().Label(lbl.Name_)
	if !ok || got.Target != "fake-instruction" {
		t.Fatalf("expected label lookup to return bound target")
	}
}
