package optimize

import (
	"secrecc/internal/analyses"
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
)

// DeadAllocEliminationPass drops an ALLOC instruction whose destination is
// never used except by RELEASE instructions, along with those RELEASEs -
// grounded on optimizer/DeadAllocElimination.cpp's
// eliminateDeadAllocs(ICode&): an array that is allocated and only ever
// released, never read from or written through, contributes nothing.
type DeadAllocEliminationPass struct{}

func (*DeadAllocEliminationPass) Name() string { return "dead-alloc-elimination" }
func (*DeadAllocEliminationPass) Description() string {
	return "drops ALLOC instructions whose result is only ever released, never used"
}

func (*DeadAllocEliminationPass) Apply(prog *ir.Program) bool {
	ru := analyses.NewReachableUses()
	dataflow.RunBackward(ru, prog)

	dead := make(map[*ir.Instruction]bool)
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if !b.Reachable {
				continue
			}
			uses := ru.ReachableOnExit(b).Clone()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				if instr.Op == ir.OpAlloc {
					if releases, ok := onlyReleases(uses[instr.Dest()]); ok {
						dead[instr] = true
						for r := range releases {
							dead[r] = true
						}
					}
				}
				analyses.UpdateUses(instr, uses)
			}
		}
	}

	return removeInstructions(prog, dead)
}

// onlyReleases reports whether every instruction in uses is a RELEASE,
// returning that same set so the caller can drop them alongside the dead
// ALLOC - eliminateDeadAllocs's dead/releases bookkeeping.
func onlyReleases(uses analyses.InstructionSet) (analyses.InstructionSet, bool) {
	releases := make(analyses.InstructionSet, len(uses))
	for use := range uses {
		if use.Op != ir.OpRelease {
			return nil, false
		}
		releases.Add(use)
	}
	return releases, true
}
