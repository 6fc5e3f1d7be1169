package optimize

import (
	"secrecc/internal/analyses"
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
)

// DeadVariableEliminationPass drops an expression instruction whose
// destination is not live on exit from its block - grounded on
// optimizer/DeadVariableElimination.cpp's eliminateDeadVariables(ICode&).
// CALL, PARAM and SYSCALL are never eliminated even when their destination
// is dead, since they may have side effects (or, for PARAM, are load-
// bearing for argument passing) beyond producing a value - mayEliminate's
// exact exclusion list.
type DeadVariableEliminationPass struct{}

func (*DeadVariableEliminationPass) Name() string { return "dead-variable-elimination" }
func (*DeadVariableEliminationPass) Description() string {
	return "drops expression instructions whose result is never used"
}

// mayEliminate reports whether instr is a candidate for removal when its
// destination is dead: any instruction with a destination, other than a
// CALL, PARAM or SYSCALL, which may have effects beyond defining that
// destination.
func mayEliminate(instr *ir.Instruction) bool {
	switch instr.Op {
	case ir.OpCall, ir.OpParam, ir.OpSyscall:
		return false
	default:
		return instr.Dest() != nil
	}
}

func (*DeadVariableEliminationPass) Apply(prog *ir.Program) bool {
	lva := analyses.NewLiveVariables()
	dataflow.RunBackward(lva, prog)

	dead := make(map[*ir.Instruction]bool)
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if !b.Reachable {
				continue
			}
			live := lva.LiveOnExit(b).Clone()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				if mayEliminate(instr) && !live.Has(instr.Dest()) {
					dead[instr] = true
					continue
				}
				for _, d := range instr.Def() {
					live.Remove(d)
				}
				for _, u := range instr.Use() {
					live.Add(u)
				}
			}
		}
	}

	return removeInstructions(prog, dead)
}
