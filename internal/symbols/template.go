package symbols

import "secrecc/internal/types"

// Template is a generic procedure, operator, or cast declaration,
// parameterized by one or more type variables of kind SEC/DATA/DIM. The
// Decl field carries the declaring AST node as an opaque value to avoid a
// symbols<->ast import cycle; the checker and instantiator type-assert it
// back to their concrete AST node type.
type Template struct {
	Name_        string
	Quantifiers  []*types.TypeVar
	ParamTypes   []*types.Type // pattern types, possibly containing quantifier fragments
	ReturnType   *types.Type   // pattern type, nil for void
	IsOperator   bool
	OperatorName string
	IsCast       bool
	Decl         any
	ModuleScope  *Scope // scope the clone's quantifier bindings get parented to
}

func (t *Template) SymbolName() string { return t.Name_ }
func (t *Template) Category() Category { return CatTemplate }

// Specificity returns the ranking tuple used to compare candidates at a
// call site: (#quantifiers, #constrained quantifiers, #parameters whose
// type depends on a quantifier). Lower tuples are more specific (spec.md
// section 4.3).
func (t *Template) Specificity() (numVars, numConstrained, numDependentParams int) {
	numVars = len(t.Quantifiers)
	for _, v := range t.Quantifiers {
		if v.Constraint != nil {
			numConstrained++
		}
	}
	for _, p := range t.ParamTypes {
		if p.IsPattern() {
			numDependentParams++
		}
	}
	return
}
