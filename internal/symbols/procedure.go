package symbols

import "secrecc/internal/types"

// Procedure is a concrete (non-template) procedure or operator definition.
type Procedure struct {
	Name_        string
	Type         *types.Type // Data fragment is a *types.ProcedureType
	IsOperator   bool
	OperatorName string // e.g. "+", "==" when IsOperator
	IsCast       bool
	Entry        *Label // label anchoring the procedure's first block
}

func (p *Procedure) SymbolName() string { return p.Name_ }
func (p *Procedure) Category() Category { return CatProcedure }

func (p *Procedure) ProcType() *types.ProcedureType {
	return p.Type.Data.(*types.ProcedureType)
}
