package analyses

import "secrecc/internal/ir"

// ReachableReturns computes, for each program point, the set of RETURN
// instructions reachable going forward without passing through another
// RETURN first - grounded on analysis/ReachableReturns.h/.cpp. It is the
// simplest of the reachable-* analyses: no per-symbol bookkeeping, just one
// InstructionSet per block. It also deliberately never propagates across a
// CALL/RET edge at all (ReachableReturns::outTo returns immediately when
// Edge::isGlobal), since a return is procedure-local and must never be
// attributed to a different procedure's caller.
type ReachableReturns struct {
	gen  map[*ir.BasicBlock]InstructionSet
	kill map[*ir.BasicBlock]bool
	ins  map[*ir.BasicBlock]InstructionSet
	outs map[*ir.BasicBlock]InstructionSet
}

func NewReachableReturns() *ReachableReturns {
	return &ReachableReturns{
		gen:  make(map[*ir.BasicBlock]InstructionSet),
		kill: make(map[*ir.BasicBlock]bool),
		ins:  make(map[*ir.BasicBlock]InstructionSet),
		outs: make(map[*ir.BasicBlock]InstructionSet),
	}
}

// ReachableOnExit returns the RETURN instructions reachable immediately
// after b.
func (rr *ReachableReturns) ReachableOnExit(b *ir.BasicBlock) InstructionSet {
	if v, ok := rr.outs[b]; ok {
		return v
	}
	return InstructionSet{}
}

// Start scans each block in reverse: the first RETURN encountered (closest
// to the block's end) kills everything before it in the same walk, since a
// RETURN unconditionally terminates execution and no earlier instruction's
// view of "reachable returns" survives past it.
func (rr *ReachableReturns) Start(prog *ir.Program) {
	rr.gen = make(map[*ir.BasicBlock]InstructionSet)
	rr.kill = make(map[*ir.BasicBlock]bool)
	rr.ins = make(map[*ir.BasicBlock]InstructionSet)
	rr.outs = make(map[*ir.BasicBlock]InstructionSet)

	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			gen := InstructionSet{}
			kill := false
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				if instr.Op == ir.OpReturn {
					gen = InstructionSet{}
					gen.Add(instr)
					kill = true
				}
			}
			rr.gen[b] = gen
			rr.kill[b] = kill
		}
	}
}

func (rr *ReachableReturns) StartBlock(b *ir.BasicBlock) { rr.outs[b] = InstructionSet{} }

// OutTo merges from's in-set into to's out-set across local edges only -
// ReachableReturns::outTo returns without doing anything on a global
// (CALL/RET) edge.
func (rr *ReachableReturns) OutTo(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock) {
	if !kind.IsLocal() {
		return
	}
	dest, ok := rr.outs[to]
	if !ok {
		dest = InstructionSet{}
		rr.outs[to] = dest
	}
	dest.unionWith(rr.ins[from])
}

func (rr *ReachableReturns) InFrom(*ir.BasicBlock, ir.EdgeKind, *ir.BasicBlock) {}

func (rr *ReachableReturns) FinishBlock(b *ir.BasicBlock) bool {
	old := rr.ins[b]
	var next InstructionSet
	if rr.kill[b] {
		next = InstructionSet{}
	} else {
		next = rr.outs[b].clone()
	}
	next.unionWith(rr.gen[b])
	rr.ins[b] = next
	return !old.equal(next)
}

func (rr *ReachableReturns) Finish() {}
