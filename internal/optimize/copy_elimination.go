package optimize

import (
	"secrecc/internal/analyses"
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
)

// CopyEliminationPass rewrites every use of a redundant COPY's destination
// to read its source directly, then deletes the copy - grounded on
// optimizer/CopyElimination.cpp's eliminateRedundantCopies(ICode&): a copy
// is redundant exactly when analyses.LiveMemory.DeadCopies says so, and the
// uses that need rewriting are exactly what analyses.ReachableUses
// reports reach that copy's destination from its point in the
// block onward.
type CopyEliminationPass struct{}

func (*CopyEliminationPass) Name() string { return "copy-elimination" }
func (*CopyEliminationPass) Description() string {
	return "rewrites uses of a redundant copy's destination to its source and drops the copy"
}

func (*CopyEliminationPass) Apply(prog *ir.Program) bool {
	lmem := analyses.NewLiveMemory()
	dataflow.RunBackward(lmem, prog)
	dead := lmem.DeadCopies(prog)
	if len(dead) == 0 {
		return false
	}

	ru := analyses.NewReachableUses()
	dataflow.RunBackward(ru, prog)

	changed := false
	for copy := range dead {
		if len(copy.Args) == 0 {
			continue
		}
		dest := copy.Dest()
		src := copy.Args[0]
		after := usesAfter(copy, ru)

		for use := range after[dest] {
			if use == copy {
				continue
			}
			rewriteArg(use, dest, src)
			changed = true
		}
	}

	if removeInstructions(prog, dead) {
		changed = true
	}
	return changed
}

// usesAfter replays a block backward from its analyses.ReachableUses exit
// set up to (not including) target, giving the set of uses that still see
// target's effect - getUses in CopyElimination.cpp.
func usesAfter(target *ir.Instruction, ru *analyses.ReachableUses) analyses.SymbolReachable {
	b := target.Block
	after := ru.ReachableOnExit(b).Clone()
	for i := len(b.Instructions) - 1; i >= 0; i-- {
		instr := b.Instructions[i]
		if instr == target {
			break
		}
		analyses.UpdateUses(instr, after)
	}
	return after
}

// rewriteArg replaces every operand of use equal to from with to, mirroring
// the original's loop over use->nArgs() / use->setArg.
func rewriteArg(use *ir.Instruction, from, to symbols.Symbol) {
	for i, a := range use.Args {
		if a == from {
			use.Args[i] = to
		}
	}
}
