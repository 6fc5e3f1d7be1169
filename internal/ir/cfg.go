package ir

import "secrecc/internal/symbols"

// BuildProcedure partitions a flat, already-lowered instruction stream for
// one procedure into basic blocks and wires its local edges (jump,
// true/false, call-pass). Call/ret edges that cross into other procedures
// are installed afterward by LinkProgram, once every procedure's blocks
// exist.
//
// Leader detection follows spec.md section 3: the first instruction, any
// instruction targeted by a jump, and the instruction immediately after a
// terminator are all leaders.
func BuildProcedure(sym *symbols.Procedure, name string, instrs []*Instruction) *Procedure {
	p := &Procedure{Symbol: sym, Name: name}
	if len(instrs) == 0 {
		return p
	}

	leaders := map[int]bool{0: true}
	indexOf := make(map[*Instruction]int, len(instrs))
	for idx, instr := range instrs {
		indexOf[instr] = idx
	}
	for idx, instr := range instrs {
		switch instr.Op {
		case OpJump, OpJt, OpJf:
			if target := ResolveLabel(instr.Label); target != nil {
				if ti, ok := indexOf[target]; ok {
					leaders[ti] = true
				}
			}
			if instr.Op != OpJump && idx+1 < len(instrs) {
				leaders[idx+1] = true
			}
		}
		if instr.Op.IsTerminator() && idx+1 < len(instrs) {
			leaders[idx+1] = true
		}
	}

	var starts []int
	for idx := range leaders {
		starts = append(starts, idx)
	}
	sortInts(starts)

	for i, start := range starts {
		end := len(instrs)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		b := &BasicBlock{Instructions: append([]*Instruction{}, instrs[start:end]...)}
		for _, instr := range b.Instructions {
			instr.Block = b
		}
		p.addBlock(b)
	}
	p.Entry = p.Blocks[0]
	if sym != nil && sym.Entry != nil {
		sym.Entry.BindTo(p.Entry)
	}

	for _, b := range p.Blocks {
		term := b.Terminator()
		switch term.Op {
		case OpJump:
			if target := ResolveLabel(term.Label); target != nil {
				addEdge(b, target.Block, EdgeJump)
			}
		case OpJt:
			if target := ResolveLabel(term.Label); target != nil {
				addEdge(b, target.Block, EdgeTrue)
			}
			if fall := p.blockAfter(b); fall != nil {
				addEdge(b, fall, EdgeFalse)
			}
		case OpJf:
			if target := ResolveLabel(term.Label); target != nil {
				addEdge(b, target.Block, EdgeFalse)
			}
			if fall := p.blockAfter(b); fall != nil {
				addEdge(b, fall, EdgeTrue)
			}
		case OpCall:
			if fall := p.blockAfter(b); fall != nil {
				addEdge(b, fall, EdgeCallPass)
			}
		case OpReturn, OpError, OpEnd:
			p.Exits = append(p.Exits, b)
		default:
			if fall := p.blockAfter(b); fall != nil {
				addEdge(b, fall, EdgeJump)
			}
		}
	}

	assignDepthFirstOrder(p)
	return p
}

func (p *Procedure) blockAfter(b *BasicBlock) *BasicBlock {
	if b.Index+1 < len(p.Blocks) {
		return p.Blocks[b.Index+1]
	}
	return nil
}

// LinkProgram installs the global call/ret edges between already-built
// procedures and records each callee's Callers.
func LinkProgram(prog *Program) {
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			term := b.Terminator()
			if term == nil || term.Op != OpCall {
				continue
			}
			target := ResolveLabel(term.Label)
			if target == nil || target.Block == nil {
				continue
			}
			callee := target.Block.Proc
			addEdge(b, callee.Entry, EdgeCall)
			callee.Callers = append(callee.Callers, b)

			passBlocks := b.SuccsOfKind(EdgeCallPass)
			if len(passBlocks) != 1 {
				continue
			}
			for _, exit := range callee.Exits {
				addEdge(exit, passBlocks[0], EdgeRet)
			}
		}
	}
	markReachable(prog)
}

func markReachable(prog *Program) {
	if prog.Init == nil || prog.Init.Entry == nil {
		return
	}
	var visit func(b *BasicBlock)
	seen := map[*BasicBlock]bool{}
	visit = func(b *BasicBlock) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		b.Reachable = true
		for _, e := range b.Succs {
			visit(e.To)
		}
	}
	visit(prog.Init.Entry)
}

// assignDepthFirstOrder renumbers a procedure's blocks in reverse
// postorder over its local edges, starting from Entry, so worklist
// algorithms can iterate in a good order (spec.md section 3: "its index
// within the procedure is its depth-first number"). Blocks unreachable
// from Entry by local edges keep trailing indices in original order.
func assignDepthFirstOrder(p *Procedure) {
	if p.Entry == nil {
		return
	}
	visited := map[*BasicBlock]bool{}
	var order []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, e := range b.Succs {
			if e.Kind.IsLocal() {
				visit(e.To)
			}
		}
		order = append(order, b)
	}
	visit(p.Entry)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for _, b := range p.Blocks {
		if !visited[b] {
			order = append(order, b)
		}
	}
	for idx, b := range order {
		b.Index = idx
	}
	p.Blocks = order
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
