package analyses

import (
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
)

// MemoryDomain is a 2-bit lattice tracking how an array symbol's backing
// storage gets touched going forward from a program point, grounded on
// LiveMemory::Domain. Read and Write are independent bits: Live (both)
// means both its current content and future overwrites matter, Dead
// (neither bit set) means the storage is never touched again.
type MemoryDomain int

const (
	MemDead  MemoryDomain = 0
	MemRead  MemoryDomain = 0x1
	MemWrite MemoryDomain = 0x2
	MemLive  MemoryDomain = MemRead | MemWrite
)

func (d MemoryDomain) or(o MemoryDomain) MemoryDomain { return d | o }

// MemoryValues maps an array symbol to its current MemoryDomain.
type MemoryValues map[symbols.Symbol]MemoryDomain

func (v MemoryValues) orInto(sym symbols.Symbol, dom MemoryDomain) {
	v[sym] = v[sym].or(dom)
}

// Clone returns an independent copy, exported so a consuming optimizer
// pass can replay a block backward from a snapshot without disturbing the
// analysis's own running map.
func (v MemoryValues) Clone() MemoryValues { return v.clone() }

func (v MemoryValues) clone() MemoryValues {
	out := make(MemoryValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v MemoryValues) equal(o MemoryValues) bool {
	if len(v) != len(o) {
		return false
	}
	for k, val := range v {
		if o[k] != val {
			return false
		}
	}
	return true
}

// LiveMemory computes, for each array-typed symbol at each program point,
// whether its current contents will be read and/or overwritten going
// forward - grounded on analysis/LiveMemory.h/.cpp. Unlike LiveVariables
// (which tracks whole-variable liveness), this tracks liveness of the
// *backing storage* an array handle points at, which is what justifies
// eliminating a COPY whose result is never read.
type LiveMemory struct {
	gen  map[*ir.BasicBlock]MemoryValues
	kill map[*ir.BasicBlock]dataflow.SymbolSet
	ins  map[*ir.BasicBlock]MemoryValues
	outs map[*ir.BasicBlock]MemoryValues
}

func NewLiveMemory() *LiveMemory {
	return &LiveMemory{
		gen:  make(map[*ir.BasicBlock]MemoryValues),
		kill: make(map[*ir.BasicBlock]dataflow.SymbolSet),
		ins:  make(map[*ir.BasicBlock]MemoryValues),
		outs: make(map[*ir.BasicBlock]MemoryValues),
	}
}

// ValuesAfter returns the memory-liveness values immediately after b,
// LiveMemory::m_outs's per-block entry.
func (lm *LiveMemory) ValuesAfter(b *ir.BasicBlock) MemoryValues {
	if v, ok := lm.outs[b]; ok {
		return v
	}
	return MemoryValues{}
}

// memGenKill reports, for one instruction, which array symbols it reads
// (and with what domain) and which it kills outright, mirroring visitImop
// dispatched with the CollectGenKill visitor.
func memGenKill(instr *ir.Instruction) (gen []symbols.Symbol, genDom []MemoryDomain, kill []symbols.Symbol) {
	add := func(sym symbols.Symbol, dom MemoryDomain) {
		if v, ok := sym.(*symbols.Variable); ok && v.IsArray() {
			gen = append(gen, sym)
			genDom = append(genDom, dom)
		}
	}
	remove := func(sym symbols.Symbol) {
		if sym != nil {
			kill = append(kill, sym)
		}
	}

	if instr.Shape != nil {
		// A vectorized form (its extra Shape/size operand marks it as
		// such) reads every argument and writes its destination in bulk.
		for _, a := range instr.Args {
			add(a, MemRead)
		}
		add(instr.Dest(), MemWrite)
		return
	}

	switch instr.Op {
	case ir.OpStore:
		add(instr.Dest(), MemWrite)
	case ir.OpLoad:
		if len(instr.Args) > 0 {
			add(instr.Args[0], MemRead)
		}
	case ir.OpCopy:
		if len(instr.Args) > 0 {
			add(instr.Args[0], MemRead)
		}
		remove(instr.Dest())
	case ir.OpAlloc, ir.OpParam:
		remove(instr.Dest())
	case ir.OpSyscall:
		for _, op := range instr.SyscallOps {
			switch op.Passing {
			case ir.PassPushCRef:
				add(op.Sym, MemWrite)
			case ir.PassPush, ir.PassPushRef:
				add(op.Sym, MemLive)
			}
		}
		for _, d := range instr.Dests {
			remove(d)
		}
	case ir.OpCall:
		for _, a := range instr.Args {
			add(a, MemRead)
		}
		for _, d := range instr.Dests {
			remove(d)
		}
	}
	return
}

// UpdateMemoryValues applies one instruction's gen/kill effect directly
// onto a running MemoryValues snapshot, exported so optimizer passes
// (DeadStoreElimination, DeadAllocElimination) can replay a block backward
// the same way DeadCopies does internally.
func UpdateMemoryValues(instr *ir.Instruction, vals MemoryValues) { updateValues(instr, vals) }

// updateValues applies one instruction's gen/kill effect directly onto a
// running MemoryValues snapshot, mirroring the UpdateValues visitor
// DeadCopies replays backward through a block.
func updateValues(instr *ir.Instruction, vals MemoryValues) {
	gen, genDom, kill := memGenKill(instr)
	for _, sym := range kill {
		delete(vals, sym)
	}
	for i, sym := range gen {
		vals.orInto(sym, genDom[i])
	}
}

func (lm *LiveMemory) Start(prog *ir.Program) {
	lm.gen = make(map[*ir.BasicBlock]MemoryValues)
	lm.kill = make(map[*ir.BasicBlock]dataflow.SymbolSet)
	lm.ins = make(map[*ir.BasicBlock]MemoryValues)
	lm.outs = make(map[*ir.BasicBlock]MemoryValues)

	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			genVals := MemoryValues{}
			killSet := dataflow.NewSymbolSet()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				gen, genDom, kill := memGenKill(b.Instructions[i])
				for j, sym := range gen {
					genVals.orInto(sym, genDom[j])
				}
				for _, sym := range kill {
					killSet.Add(sym)
				}
			}
			lm.gen[b] = genVals
			lm.kill[b] = killSet
		}
	}
}

func (lm *LiveMemory) StartBlock(b *ir.BasicBlock) { lm.outs[b] = MemoryValues{} }

func (lm *LiveMemory) OutTo(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock) {
	dest := lm.outs[to]
	if dest == nil {
		dest = MemoryValues{}
		lm.outs[to] = dest
	}
	for sym, dom := range lm.ins[from] {
		if kind.IsLocal() || isGlobalSymbol(sym) {
			dest.orInto(sym, dom)
		}
	}
}

func (lm *LiveMemory) InFrom(*ir.BasicBlock, ir.EdgeKind, *ir.BasicBlock) {}

func (lm *LiveMemory) FinishBlock(b *ir.BasicBlock) bool {
	old := lm.ins[b]
	next := lm.outs[b].clone()
	for sym := range lm.kill[b] {
		delete(next, sym)
	}
	for sym, dom := range lm.gen[b] {
		next.orInto(sym, dom)
	}
	lm.ins[b] = next
	return !old.equal(next)
}

func (lm *LiveMemory) Finish() {}

// isRedundantCopy reports whether a COPY whose destination has memory
// liveness `dest` and whose source has `src` (both sampled *after* the
// copy point) can be eliminated, per LiveMemory::isRedundantCopy: a copy
// from dead storage, into storage that is never read, or between two
// storages neither of which is ever written again, produces no observable
// effect.
func isRedundantCopy(dest, src MemoryDomain) bool {
	if src == MemDead {
		return true
	}
	if dest&MemRead == 0 {
		return true
	}
	if dest&MemWrite == 0 && src&MemWrite == 0 {
		return true
	}
	return false
}

// DeadCopies replays each reachable block backward from its final
// memory-liveness out-set (computed by RunBackward) and reports every COPY
// instruction isRedundantCopy finds eliminable - the set
// internal/optimize's dead-copy-elimination pass removes.
func (lm *LiveMemory) DeadCopies(prog *ir.Program) map[*ir.Instruction]bool {
	out := make(map[*ir.Instruction]bool)
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if !b.Reachable {
				continue
			}
			after := lm.ValuesAfter(b).clone()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				if instr.Op == ir.OpCopy && len(instr.Args) > 0 {
					if isRedundantCopy(after[instr.Dest()], after[instr.Args[0]]) {
						out[instr] = true
					}
				}
				updateValues(instr, after)
			}
		}
	}
	return out
}
