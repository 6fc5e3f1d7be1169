package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/ast"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := ParseString("test.sc", src)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func firstProc(t *testing.T, m *ast.Module) *ast.ProcedureDecl {
	t.Helper()
	for _, item := range m.Items {
		if p, ok := item.(*ast.ProcedureDecl); ok {
			return p
		}
	}
	t.Fatal("no procedure declaration found")
	return nil
}

// S1: void main() { int x = 1 + 2; }
func TestParseConstantFoldingCandidate(t *testing.T) {
	m := parseModule(t, `module m { void main() { int x = 1 + 2; } }`)
	proc := firstProc(t, m)
	assert.Equal(t, "main", proc.Name)
	assert.Nil(t, proc.ReturnType)
	require.Len(t, proc.Body.Stmts, 1)

	decl, ok := proc.Body.Stmts[0].(*ast.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, "int", decl.Type.DataName)

	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, int64(1), bin.Left.(*ast.Literal).Int)
	assert.Equal(t, int64(2), bin.Right.(*ast.Literal).Int)
}

// S2: declaring a private variable and assigning a public literal into it.
func TestParsePrivateDeclarationAndAssignment(t *testing.T) {
	m := parseModule(t, `module m {
		domain priv additive3pp;
		void main() {
			priv int y;
			y = 5;
		}
	}`)
	proc := firstProc(t, m)
	require.Len(t, proc.Body.Stmts, 2)

	decl, ok := proc.Body.Stmts[0].(*ast.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, "priv", decl.Type.Security)
	assert.Equal(t, "int", decl.Type.DataName)

	assign, ok := proc.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Op)
	lv, ok := assign.LHS.(*ast.VariableLValue)
	require.True(t, ok)
	assert.Equal(t, "y", lv.Name)
}

// S3: a two-quantifier template procedure.
func TestParseTemplateDeclaration(t *testing.T) {
	m := parseModule(t, `module m {
		template<domain D, type T>
		D T f(D T x) {
			return x;
		}
	}`)
	var tmpl *ast.TemplateDecl
	for _, item := range m.Items {
		if t2, ok := item.(*ast.TemplateDecl); ok {
			tmpl = t2
		}
	}
	require.NotNil(t, tmpl)
	require.Len(t, tmpl.Quantifiers, 2)
	assert.Equal(t, "domain", tmpl.Quantifiers[0].VarKind)
	assert.Equal(t, "D", tmpl.Quantifiers[0].Name)
	assert.Equal(t, "type", tmpl.Quantifiers[1].VarKind)
	assert.Equal(t, "T", tmpl.Quantifiers[1].Name)

	assert.Equal(t, "f", tmpl.Decl.Name)
	assert.Equal(t, "D", tmpl.Decl.ReturnType.Security)
	assert.Equal(t, "T", tmpl.Decl.ReturnType.DataName)
	require.Len(t, tmpl.Decl.Params, 1)
	assert.Equal(t, "x", tmpl.Decl.Params[0].Name)
}

// S4: an indexed assignment into a multi-axis array — the shape check
// itself is a codegen concern, not a grammar one.
func TestParseArrayIndexedAssignment(t *testing.T) {
	m := parseModule(t, `module m {
		void main() {
			int[2] a(3, 4);
			a[1, 2] = 7;
		}
	}`)
	proc := firstProc(t, m)
	require.Len(t, proc.Body.Stmts, 2)

	decl, ok := proc.Body.Stmts[0].(*ast.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, 2, decl.Type.Dim)
	require.Len(t, decl.Dims, 2)

	assign, ok := proc.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	require.True(t, ok)
	idx, ok := assign.LHS.(*ast.IndexedLValue)
	require.True(t, ok)
	require.Len(t, idx.Slices, 2)
	assert.False(t, idx.Slices[0].IsSlice)
}

// S5: repeated indexed stores later collapse under dead-store elimination;
// the parser just needs to produce two independent assignment statements.
func TestParseRepeatedArrayStore(t *testing.T) {
	m := parseModule(t, `module m {
		void main() {
			int[1] a(10);
			a[3] = 7;
			a[3] = 9;
		}
	}`)
	proc := firstProc(t, m)
	require.Len(t, proc.Body.Stmts, 3)
	first := proc.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	second := proc.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	assert.Equal(t, int64(7), first.RHS.(*ast.Literal).Int)
	assert.Equal(t, int64(9), second.RHS.(*ast.Literal).Int)
}

// S6: short-circuit && inside an if-condition, with a call on the right
// operand.
func TestParseShortCircuitCondition(t *testing.T) {
	m := parseModule(t, `module m {
		void main() {
			if (p && q()) {
				print(p);
			}
		}
	}`)
	proc := firstProc(t, m)
	ifStmt, ok := proc.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)

	and, ok := ifStmt.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Op)
	assert.Equal(t, "p", and.Left.(*ast.Ident).Name)

	call, ok := and.Right.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "q", call.Callee.(*ast.Ident).Name)
	assert.Empty(t, call.Args)
	assert.Nil(t, ifStmt.Else)
}

func TestParseCastVsCallDisambiguation(t *testing.T) {
	m := parseModule(t, `module m {
		void main() {
			int32 a = int32(x);
			int32 b = f(x);
		}
	}`)
	proc := firstProc(t, m)
	castDecl := proc.Body.Stmts[0].(*ast.DeclStmt)
	cast, ok := castDecl.Init.(*ast.CastExpr)
	require.True(t, ok)
	assert.Equal(t, "int32", cast.Type.DataName)

	callDecl := proc.Body.Stmts[1].(*ast.DeclStmt)
	call, ok := callDecl.Init.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "f", call.Callee.(*ast.Ident).Name)
}

func TestParseStructAndKindDomain(t *testing.T) {
	m := parseModule(t, `module m {
		kind additive3pp {
			type int32;
			type bool;
		}
		domain priv additive3pp;
		struct point {
			int32 x;
			int32 y;
		}
	}`)
	var kind *ast.KindDecl
	var dom *ast.DomainDecl
	var st *ast.StructDecl
	for _, item := range m.Items {
		switch v := item.(type) {
		case *ast.KindDecl:
			kind = v
		case *ast.DomainDecl:
			dom = v
		case *ast.StructDecl:
			st = v
		}
	}
	require.NotNil(t, kind)
	assert.Equal(t, []string{"int32", "bool"}, kind.Members)
	require.NotNil(t, dom)
	assert.Equal(t, "priv", dom.Name)
	assert.Equal(t, "additive3pp", dom.KindName)
	require.NotNil(t, st)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)
}

func TestParseSyscallStatement(t *testing.T) {
	m := parseModule(t, `module m {
		void main() {
			__syscall("additive3pp::mul_int32_vec", __pushref : a, __pushcref __const : b, __push : c, __return : d);
		}
	}`)
	proc := firstProc(t, m)
	sc, ok := proc.Body.Stmts[0].(*ast.SyscallStmt)
	require.True(t, ok)
	assert.Equal(t, "additive3pp::mul_int32_vec", sc.Name)
	require.Len(t, sc.Args, 4)
	assert.Equal(t, ast.SyscallPushRef, sc.Args[0].Passing)
	assert.Equal(t, ast.SyscallPushCRef, sc.Args[1].Passing)
	assert.True(t, sc.Args[1].ReadOnly)
	assert.Equal(t, ast.SyscallPush, sc.Args[2].Passing)
	assert.Equal(t, ast.SyscallReturn, sc.Args[3].Passing)
}

func TestParseOperatorOverload(t *testing.T) {
	m := parseModule(t, `module m {
		template<domain D>
		D int32 operator + (D int32 x, D int32 y) {
			return x;
		}
	}`)
	var tmpl *ast.TemplateDecl
	for _, item := range m.Items {
		if t2, ok := item.(*ast.TemplateDecl); ok {
			tmpl = t2
		}
	}
	require.NotNil(t, tmpl)
	assert.True(t, tmpl.Decl.IsOperator)
	assert.Equal(t, "+", tmpl.Decl.OperatorName)
}

func TestParseSyntaxErrorIsReported(t *testing.T) {
	_, err := ParseString("bad.sc", `module m { void main() { int x = ; } }`)
	assert.Error(t, err)
}
