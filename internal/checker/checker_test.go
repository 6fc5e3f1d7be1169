package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/parser"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

// fakeInstantiator hands back a single, fixed concrete procedure for every
// template instantiation request, so checker tests can exercise template
// call sites without depending on internal/instantiate.
type fakeInstantiator struct {
	proc *symbols.Procedure
}

func (f *fakeInstantiator) Request(tmpl *symbols.Template, subst types.Substitution) *symbols.Procedure {
	return f.proc
}

func newChecker(t *testing.T) (*Checker, *errors.CompileLog) {
	t.Helper()
	log := errors.NewCompileLog("")
	ctx := types.NewContext()
	return New(ctx, log, &fakeInstantiator{}), log
}

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := parser.ParseString("test.sc", src)
	require.NoError(t, err)
	return m
}

func firstProc(m *ast.Module, name string) *ast.ProcedureDecl {
	for _, item := range m.Items {
		if p, ok := item.(*ast.ProcedureDecl); ok && p.Name == name {
			return p
		}
	}
	return nil
}

func TestCheckConstantFoldingCandidate(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m { void main() { int x = 1 + 2; } }`)
	status := c.CheckModule(m)
	assert.Equal(t, OK, status)
	assert.False(t, log.HasErrors())

	decl := firstProc(m, "main").Body.Stmts[0].(*ast.DeclStmt)
	bin := decl.Init.(*ast.BinaryExpr)
	assert.True(t, bin.CachedType().IsNumeric())
	assert.True(t, bin.CachedType().IsPublic())
}

func TestCheckPrivateAssignmentInsertsClassify(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		kind additive3pp { type int32; }
		domain priv additive3pp;
		void main() {
			priv int y;
			y = 5;
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, OK, status)
	assert.False(t, log.HasErrors())

	assign := firstProc(m, "main").Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	classify, ok := assign.RHS.(*ast.ClassifyExpr)
	require.True(t, ok, "public literal assigned to a private variable should be wrapped in a synthetic classify")
	assert.Equal(t, "priv", classify.Domain)
	assert.False(t, assign.CachedType().IsPublic())
}

func TestCheckUndefinedVariableReportsError(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m { void main() { int x = y; } }`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	require.True(t, log.HasErrors())
	assert.Equal(t, errors.ErrorUndefinedVariable, log.Messages()[0].Code)
}

func TestCheckClassifyOfAlreadyPrivateIsRejected(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		kind additive3pp { type int32; }
		domain priv additive3pp;
		void main() {
			priv int y;
			y = classify(priv, y);
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	require.True(t, log.HasErrors())
	found := false
	for _, msg := range log.Messages() {
		if msg.Code == errors.ErrorInvalidClassify {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckShortCircuitRejectsPrivateOperand(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		kind additive3pp { type bool; }
		domain priv additive3pp;
		void main() {
			priv bool p;
			if (p && true) {
				print(p);
			}
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	assert.True(t, log.HasErrors())
}

func TestCheckMissingReturnIsReported(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		int f() {
			int x = 1;
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	found := false
	for _, msg := range log.Messages() {
		if msg.Code == errors.ErrorMissingReturn {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckOverloadResolutionResolvesConcreteProcedure(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		int f(int x) {
			return x;
		}
		void main() {
			int y = f(3);
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, OK, status)
	assert.False(t, log.HasErrors())

	decl := firstProc(m, "main").Body.Stmts[0].(*ast.DeclStmt)
	call := decl.Init.(*ast.CallExpr)
	assert.True(t, call.CachedType().IsNumeric())
}

func TestCheckAmbiguousCallIsRejected(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		int f(int x) {
			return x;
		}
		int f(int x) {
			return x;
		}
		void main() {
			int y = f(3);
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	found := false
	for _, msg := range log.Messages() {
		if msg.Code == errors.ErrorAmbiguousOverload {
			found = true
		}
	}
	assert.True(t, found, "two identically-shaped overloads of `f` both match a call to f(3)")
}

func TestCheckTemplateCallInstantiates(t *testing.T) {
	ctx := types.NewContext()
	log := errors.NewCompileLog("")

	m := parse(t, `module m {
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			int y = identity(3);
		}
	}`)

	retType := ctx.DefaultInt()
	procType := &types.ProcedureType{Params: []*types.Type{ctx.DefaultInt()}, ReturnType: retType}
	instantiated := &symbols.Procedure{Name_: "identity", Type: ctx.Public(procType, 0)}
	c := New(ctx, log, &fakeInstantiator{proc: instantiated})

	status := c.CheckModule(m)
	assert.Equal(t, OK, status)
	assert.False(t, log.HasErrors())

	decl := firstProc(m, "main").Body.Stmts[0].(*ast.DeclStmt)
	call := decl.Init.(*ast.CallExpr)
	assert.Same(t, retType, call.CachedType())
}

func TestCheckStructFieldAccess(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		struct point {
			int32 x;
			int32 y;
		}
		void main() {
			point p;
			int32 a = p.x;
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, OK, status)
	assert.False(t, log.HasErrors())
}

func TestCheckUnknownStructFieldIsRejected(t *testing.T) {
	c, log := newChecker(t)
	m := parse(t, `module m {
		struct point {
			int32 x;
		}
		void main() {
			point p;
			int32 a = p.z;
		}
	}`)
	status := c.CheckModule(m)
	assert.Equal(t, ErrorContinue, status)
	found := false
	for _, msg := range log.Messages() {
		if msg.Code == errors.ErrorFieldNotFound {
			found = true
		}
	}
	assert.True(t, found)
}
