package ast

// VariableLValue is a plain assignable variable reference. ResolvedSym is
// filled in by the checker (a *symbols.Variable), kept as `any` to avoid an
// ast<->symbols import cycle.
type VariableLValue struct {
	Base
	Name        string
	ResolvedSym any
}

func (v *VariableLValue) lvalueNode() {}

// IndexedLValue is `base[slices...] = ...`.
type IndexedLValue struct {
	Base
	Target LValue
	Slices []*SliceIndex
}

func (i *IndexedLValue) lvalueNode() {}

// SelectedLValue is `base.field = ...`.
type SelectedLValue struct {
	Base
	Target LValue
	Field  string
}

func (s *SelectedLValue) lvalueNode() {}

// AsExpr wraps an LValue so it can also be read as an expression (e.g. the
// right-hand side of `y = x` reading variable x). Evaluating an lvalue as
// an expression is a plain load. The parser never produces an AsExpr;
// internal/instantiate copies one when it meets it, and codegen lowers it
// as a plain load.
type AsExpr struct {
	Base
	LValue LValue
}

func (a *AsExpr) exprNode() {}
