package ast

// Param is one formal parameter of a procedure/operator/cast/template.
// ResolvedSym is the *symbols.Variable the checker bound this parameter to.
type Param struct {
	Base
	Name        string
	Type        *TypeExpr
	ResolvedSym any
}

// ProcedureDecl is a concrete (non-generic) procedure definition.
// Quantifiers is non-empty only when this declaration sits inside (and was
// cloned from) a TemplateDecl; a plain top-level procedure has none.
type ProcedureDecl struct {
	Base
	Name        string
	Quantifiers []*Quantifier
	Params      []*Param
	ReturnType  *TypeExpr // nil means void
	Body        *CompoundStmt

	// IsOperator/OperatorName/IsCast mirror the capability-record pattern
	// described in spec.md section 9: instead of multiple inheritance
	// from an "overloadable operator" mix-in, a ProcedureDecl simply
	// tags itself as an operator or cast when it is one.
	IsOperator   bool
	OperatorName string
	IsCast       bool

	// ResolvedSym is the *symbols.Procedure this declaration was bound to:
	// set by the checker for a plain top-level declaration, and by the
	// instantiation worklist for a template's generated clone.
	ResolvedSym any
}

func (p *ProcedureDecl) moduleItemNode() {}

// TemplateDecl is a generic procedure/operator/cast declaration,
// parameterized by the given quantifiers. The instantiator clones Body
// into a fresh ProcedureDecl per concrete type-argument tuple.
type TemplateDecl struct {
	Base
	Quantifiers []*Quantifier
	Decl        *ProcedureDecl // the templated procedure/operator/cast body
}

func (t *TemplateDecl) moduleItemNode() {}
