package ast

import (
	"strings"
	"testing"
)

func TestPrintSimpleModule(t *testing.T) {
	mod := &Module{
		Name: "main",
		Items: []ModuleItem{
			&ProcedureDecl{
				Name: "main",
				Params: []*Param{},
				Body: &CompoundStmt{
					Stmts: []Stmt{
						&DeclStmt{
							Name: "x",
							Type: &TypeExpr{DataName: "int64"},
							Init: &BinaryExpr{
								Op:    "+",
								Left:  &Literal{Kind: LitInt, Int: 1},
								Right: &Literal{Kind: LitInt, Int: 2},
							},
						},
					},
				},
			},
		},
	}

	out := Print(mod)
	if !strings.Contains(out, "module main") {
		t.Fatalf("expected module header, got %q", out)
	}
	if !strings.Contains(out, "(1 + 2)") {
		t.Fatalf("expected printed binary expression, got %q", out)
	}
}
