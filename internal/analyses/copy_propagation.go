package analyses

import "secrecc/internal/ir"

// CopyPropagation computes, for every program point, the set of COPY
// instructions whose destination can still be substituted for its source -
// grounded on analysis/CopyPropagation.h/.cpp. Unlike the other analyses in
// this package, which are may-analyses joined by union at confluence
// points, CopyPropagation is a must-analysis: a copy only survives a merge
// if it survived on *every* incoming path, so non-global edges are
// intersected rather than unioned.
type CopyPropagation struct {
	ins  map[*ir.BasicBlock]InstructionSet
	outs map[*ir.BasicBlock]InstructionSet
	// hasIns distinguishes "no incoming edge processed yet" (next edge sets
	// the block's in-set outright) from "already seen at least one edge"
	// (next edge intersects), mirroring m_ins.count(&to) == 0 in inFrom.
	hasIns map[*ir.BasicBlock]bool
}

func NewCopyPropagation() *CopyPropagation {
	return &CopyPropagation{
		ins:    make(map[*ir.BasicBlock]InstructionSet),
		outs:   make(map[*ir.BasicBlock]InstructionSet),
		hasIns: make(map[*ir.BasicBlock]bool),
	}
}

// CopiesInto returns the COPY instructions known to still apply on entry to
// b, CopyPropagation::getCopies's counterpart.
func (cp *CopyPropagation) CopiesInto(b *ir.BasicBlock) InstructionSet {
	if v, ok := cp.ins[b]; ok {
		return v
	}
	return InstructionSet{}
}

func (cp *CopyPropagation) Start(prog *ir.Program) {
	cp.ins = make(map[*ir.BasicBlock]InstructionSet)
	cp.outs = make(map[*ir.BasicBlock]InstructionSet)
	cp.hasIns = make(map[*ir.BasicBlock]bool)
}

func (cp *CopyPropagation) StartBlock(b *ir.BasicBlock) {
	delete(cp.ins, b)
	cp.hasIns[b] = false
}

// InFrom merges from's out-set into to's in-set: a global (CALL/RET) edge
// only carries a copy whose destination AND source are both global-scope,
// a local edge intersects with whatever is already recorded for to (or, on
// the first edge seen, simply adopts from's out-set), per
// CopyPropagation::inFrom.
func (cp *CopyPropagation) InFrom(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock) {
	fromOut := cp.outs[from]

	if !kind.IsLocal() {
		dest := cp.ins[to]
		if dest == nil {
			dest = InstructionSet{}
			cp.ins[to] = dest
		}
		for copy := range fromOut {
			if len(copy.Args) > 0 && isGlobalSymbol(copy.Dest()) && isGlobalSymbol(copy.Args[0]) {
				dest.Add(copy)
			}
		}
		return
	}

	if !cp.hasIns[to] {
		dest := fromOut.clone()
		cp.ins[to] = dest
		cp.hasIns[to] = true
		return
	}

	dest := cp.ins[to]
	for copy := range dest {
		if _, ok := fromOut[copy]; !ok {
			delete(dest, copy)
		}
	}
}

func (cp *CopyPropagation) OutTo(*ir.BasicBlock, ir.EdgeKind, *ir.BasicBlock) {}

// update applies one instruction's effect to a running copy-set: any copy
// whose dest or source is redefined is killed, a CALL additionally kills
// any copy whose dest or source it merely uses (since the callee may write
// through a reference parameter), and a COPY instruction installs itself,
// per CopyPropagation::update.
func update(instr *ir.Instruction, copies InstructionSet) {
	kill := make(map[*ir.Instruction]bool)

	for _, d := range instr.Def() {
		for copy := range copies {
			if len(copy.Args) > 0 && (d == copy.Dest() || d == copy.Args[0]) {
				kill[copy] = true
			}
		}
	}

	if instr.Op == ir.OpCall {
		for _, u := range instr.Use() {
			for copy := range copies {
				if len(copy.Args) > 0 && (u == copy.Dest() || u == copy.Args[0]) {
					kill[copy] = true
				}
			}
		}
	}

	for copy := range kill {
		delete(copies, copy)
	}

	if instr.Op == ir.OpCopy {
		copies.Add(instr)
	}
}

func (cp *CopyPropagation) FinishBlock(b *ir.BasicBlock) bool {
	old := cp.outs[b]
	out := cp.CopiesInto(b).clone()
	for _, instr := range b.Instructions {
		update(instr, out)
	}
	cp.outs[b] = out
	return !old.equal(out)
}

func (cp *CopyPropagation) Finish() {}
