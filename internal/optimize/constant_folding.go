package optimize

import (
	"fmt"
	"secrecc/internal/analyses"
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
)

// ConstantFoldingPass replaces any instruction whose result the
// analyses.ConstantFolding analysis proves is a single compile-time value
// with a direct assignment from that value - grounded on the declared
// ConstantFolding::optimizeBlock and the driver loop in
// optimizer/ConstantFolding.cpp's eliminateConstantExpressions(ICode&).
type ConstantFoldingPass struct{}

func (*ConstantFoldingPass) Name() string { return "constant-folding" }
func (*ConstantFoldingPass) Description() string {
	return "replaces expressions with provably constant results by direct assignment"
}

func (cfp *ConstantFoldingPass) Apply(prog *ir.Program) bool {
	cf := analyses.NewConstantFolding()
	dataflow.RunForward(cf, prog)

	changed := false
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if !b.Reachable {
				continue
			}
			vals := cf.ValuesInto(b).Clone()
			for _, instr := range b.Instructions {
				if folded := foldableValue(instr, vals); folded != nil {
					instr.Op = ir.OpAssign
					instr.Args = []symbols.Symbol{folded}
					instr.Shape = nil
					instr.SyscallName = ""
					instr.SyscallOps = nil
					changed = true
				}
				analyses.Transfer(instr, vals)
			}
		}
	}
	return changed
}

// foldableValue reports the constant replacement for instr's destination,
// if analyses.Transfer's own evaluation of instr (over the same running
// value map, replayed independently here so a fold doesn't retroactively
// change what earlier instructions in the block saw) would assign it a
// known constant - nil when instr already is a plain constant assignment
// (nothing to simplify) or its result isn't provably constant.
func foldableValue(instr *ir.Instruction, vals analyses.SymbolValues) symbols.Symbol {
	if instr.Op == ir.OpAssign {
		return nil
	}
	dest := instr.Dest()
	if dest == nil {
		return nil
	}
	probe := vals.Clone()
	analyses.Transfer(instr, probe)
	v, ok := probe[dest]
	if !ok || !v.IsConst() {
		return nil
	}
	return &symbols.Constant{Name_: fmt.Sprintf("$fold.%v", v.Const), Value: v.Const}
}
