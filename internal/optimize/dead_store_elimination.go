package optimize

import (
	"secrecc/internal/analyses"
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
)

// DeadStoreEliminationPass drops a STORE instruction whose destination
// array's backing storage is never read afterward - grounded on
// optimizer/DeadStoreElimination.cpp's eliminateDeadStores(ICode&): a
// store that nothing downstream reads is pure waste, even though (unlike a
// dead variable) its destination handle may still be live for later
// writes.
type DeadStoreEliminationPass struct{}

func (*DeadStoreEliminationPass) Name() string { return "dead-store-elimination" }
func (*DeadStoreEliminationPass) Description() string {
	return "drops STORE instructions whose target storage is never read again"
}

func (*DeadStoreEliminationPass) Apply(prog *ir.Program) bool {
	lmem := analyses.NewLiveMemory()
	dataflow.RunBackward(lmem, prog)

	dead := make(map[*ir.Instruction]bool)
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if !b.Reachable {
				continue
			}
			values := lmem.ValuesAfter(b).Clone()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				if instr.Op == ir.OpStore {
					dom, ok := values[instr.Dest()]
					if !ok || dom&analyses.MemRead == 0 {
						dead[instr] = true
					}
				}
				analyses.UpdateMemoryValues(instr, values)
			}
		}
	}

	return removeInstructions(prog, dead)
}
