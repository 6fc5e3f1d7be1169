package instantiate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"secrecc/internal/ast"
	"secrecc/internal/types"
)

func TestInstantiateTypeExprSubstitutesBoundQuantifiers(t *testing.T) {
	kind := types.NewDomainKind("additive3pp")
	dom := types.NewDomain("priv", kind)
	subst := types.Substitution{
		"D": types.SecArg(types.PrivateSecurity(dom)),
		"T": types.DataArg(&types.Builtin{Kind: types.PrimInt32}),
	}

	te := &ast.TypeExpr{Security: "D", DataName: "T", Dim: 0}
	got := instantiateTypeExpr(te, subst)

	assert.Equal(t, "priv", got.Security)
	assert.Equal(t, "int32", got.DataName)
	assert.NotSame(t, te, got, "instantiateTypeExpr must return a fresh node, not mutate the template's own")
}

func TestInstantiateTypeExprLeavesUnboundNamesAlone(t *testing.T) {
	te := &ast.TypeExpr{Security: "", DataName: "bool", Dim: 1}
	got := instantiateTypeExpr(te, types.Substitution{})
	assert.Equal(t, "", got.Security)
	assert.Equal(t, "bool", got.DataName)
	assert.Equal(t, 1, got.Dim)
}

func TestInstantiateDomainNameResolvesPrivateQuantifier(t *testing.T) {
	kind := types.NewDomainKind("additive3pp")
	dom := types.NewDomain("priv", kind)
	subst := types.Substitution{"D": types.SecArg(types.PrivateSecurity(dom))}

	assert.Equal(t, "priv", instantiateDomainName("D", subst))
	assert.Equal(t, "otherDomain", instantiateDomainName("otherDomain", subst), "a concrete domain name not bound in subst passes through unchanged")
}

func TestInstantiateDomainNameLeavesPublicBindingAlone(t *testing.T) {
	subst := types.Substitution{"D": types.SecArg(types.PublicSecurity())}
	assert.Equal(t, "D", instantiateDomainName("D", subst))
}

func TestCloneProcedureDeclProducesIndependentTree(t *testing.T) {
	kind := types.NewDomainKind("additive3pp")
	dom := types.NewDomain("priv", kind)
	subst := types.Substitution{
		"D": types.SecArg(types.PrivateSecurity(dom)),
		"T": types.DataArg(&types.Builtin{Kind: types.PrimInt64}),
	}

	paramType := &ast.TypeExpr{Security: "D", DataName: "T"}
	decl := &ast.ProcedureDecl{
		Name:       "identity",
		Params:     []*ast.Param{{Name: "x", Type: paramType}},
		ReturnType: &ast.TypeExpr{Security: "D", DataName: "T"},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Ident{Name: "x"}},
		}},
	}

	clone := cloneProcedureDecl(decl, subst)

	assert.Equal(t, "priv", clone.Params[0].Type.Security)
	assert.Equal(t, "int64", clone.Params[0].Type.DataName)
	assert.Equal(t, "priv", clone.ReturnType.Security)
	assert.NotSame(t, decl.Params[0], clone.Params[0])
	assert.NotSame(t, decl.Body, clone.Body)

	ret := clone.Body.Stmts[0].(*ast.ReturnStmt)
	ident := ret.Value.(*ast.Ident)
	assert.Equal(t, "x", ident.Name)
	assert.NotSame(t, decl.Body.Stmts[0].(*ast.ReturnStmt).Value, ident)

	// The original template's own nodes must be untouched by cloning.
	assert.Equal(t, "D", paramType.Security)
}
