// Package dataflow implements the generic forward/backward worklist driver
// (spec.md section 5), grounded on original_source's DataflowAnalysis.h/.cpp
// DataFlowAnalysis/ForwardAnalysisRunner/BackwardAnalysisRunner: every
// concrete analysis (internal/analyses) implements the small interface
// here and is iterated to a fixed point over reachable blocks only.
package dataflow

import "secrecc/internal/ir"

// Analysis is the interface every concrete dataflow pass implements,
// mirroring DataFlowAnalysis's virtual hooks: Start runs once per program,
// StartBlock/FinishBlock bracket one block's visit, InFrom/OutTo merge a
// neighboring block's state in across one CFG edge, and Finish runs once
// the fixed point is reached.
type Analysis interface {
	// Start resets any whole-program state before the first block visit.
	Start(prog *ir.Program)
	// StartBlock begins processing one block's edges for this iteration.
	StartBlock(b *ir.BasicBlock)
	// InFrom merges state flowing along a forward edge (from -> to) into
	// to's pending in-state. Only called by RunForward.
	InFrom(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock)
	// OutTo merges state flowing along a backward edge (to -> from, read
	// against the edge direction) into from's pending out-state. Only
	// called by RunBackward.
	OutTo(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock)
	// FinishBlock commits the block's merged state and reports whether it
	// changed since the last visit; a changed block requeues its forward
	// successors (forward analyses) or backward predecessors (backward
	// analyses).
	FinishBlock(b *ir.BasicBlock) bool
	// Finish runs once after the fixed point, e.g. to publish results.
	Finish()
}

// RunForward drives a to a fixed point over prog, visiting each reachable
// block's predecessors before the block itself (ForwardAnalysisRunner).
// Initial order follows each procedure's depth-first numbering so the
// common case - no back edges crossed before their loop header is first
// visited - converges in one pass.
func RunForward(a Analysis, prog *ir.Program) {
	run(a, prog, true)
}

// RunBackward drives a to a fixed point over prog, visiting each reachable
// block's successors before the block itself (BackwardAnalysisRunner).
func RunBackward(a Analysis, prog *ir.Program) {
	run(a, prog, false)
}

func run(a Analysis, prog *ir.Program, forward bool) {
	var blocks []*ir.BasicBlock
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			if b.Reachable {
				blocks = append(blocks, b)
			}
		}
	}
	sortBlocks(blocks, forward)

	a.Start(prog)

	queued := make(map[*ir.BasicBlock]bool, len(blocks))
	queue := make([]*ir.BasicBlock, len(blocks))
	copy(queue, blocks)
	for _, b := range queue {
		queued[b] = true
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		queued[cur] = false
		if !cur.Reachable {
			continue
		}

		a.StartBlock(cur)
		if forward {
			for _, e := range cur.Preds {
				a.InFrom(e.From, e.Kind, cur)
			}
		} else {
			for _, e := range cur.Succs {
				a.OutTo(e.To, e.Kind, cur)
			}
		}

		if !a.FinishBlock(cur) {
			continue
		}

		var neighbors []*ir.BasicBlock
		if forward {
			for _, e := range cur.Succs {
				neighbors = append(neighbors, e.To)
			}
		} else {
			for _, e := range cur.Preds {
				neighbors = append(neighbors, e.From)
			}
		}
		for _, n := range neighbors {
			if n != nil && n.Reachable && !queued[n] {
				queue = append(queue, n)
				queued[n] = true
			}
		}
	}

	a.Finish()
}

// sortBlocks orders the initial worklist by depth-first number, ascending
// for a forward analysis (so a block's predecessors are usually already
// settled) and descending for a backward one (so its successors are),
// matching ForwardAnalysisRunner/BackwardAnalysisRunner's BlockCmp
// orderings. This only affects how many extra iterations convergence
// takes, never the fixed point itself.
func sortBlocks(blocks []*ir.BasicBlock, forward bool) {
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0; j-- {
			less := blocks[j-1].Index > blocks[j].Index
			if !forward {
				less = blocks[j-1].Index < blocks[j].Index
			}
			if !less {
				break
			}
			blocks[j-1], blocks[j] = blocks[j], blocks[j-1]
		}
	}
}
