// Package optimize implements the optimizer pipeline driving
// internal/analyses to a fixed point over a lowered ir.Program, grounded
// on the teacher's OptimizationPass/OptimizationPipeline
// (internal/ir/optimizations.go) generalized from single-pass
// constant-folding/DCE to the original compiler's full pass set
// (original_source's src/libscc/optimizer/*.cpp): each of that pass set's
// eliminateX(ICode&) driver functions - rerun its analysis, apply its
// instruction-level rewrite, repeat until no more instructions die - is
// one Pass here.
package optimize

import "secrecc/internal/ir"

// Pass is one optimization transformation over a whole program, grounded
// on OptimizationPass: a name and description for reporting, and an Apply
// that mutates the program in place and reports whether it changed
// anything.
type Pass interface {
	Name() string
	Description() string
	Apply(prog *ir.Program) bool
}

// Pipeline runs an ordered sequence of passes to a fixed point, grounded
// on OptimizationPipeline - generalized from the teacher's single
// run-once-through to the original compiler's per-pass
// "while (true) { reanalyze; apply; if no change break }" loop
// (e.g. eliminateDeadVariables(ICode&) in DeadVariableElimination.cpp):
// since later passes can expose work for earlier ones (a dead copy
// elimination can make a variable dead), the whole pipeline is looped
// rather than each pass individually.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds the default pass order: fold constants first (so
// later passes see the simplest possible operands), then eliminate the
// copies, stores, allocations and variables constant folding's
// simplification may have made dead, then drop the blocks ir.LinkProgram
// left marked unreachable, then drop whatever procedure - commonly a template
// or operator instantiation no surviving call site reaches anymore once
// its last caller's own dead code is gone - that leaves wholly uncalled.
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.AddPass(&ConstantFoldingPass{})
	p.AddPass(&CopyEliminationPass{})
	p.AddPass(&DeadStoreEliminationPass{})
	p.AddPass(&DeadAllocEliminationPass{})
	p.AddPass(&DeadVariableEliminationPass{})
	p.AddPass(&RemoveUnreachableBlocksPass{})
	p.AddPass(&RemoveEmptyProceduresPass{})
	return p
}

func (p *Pipeline) AddPass(pass Pass) { p.passes = append(p.passes, pass) }

// Run drives every pass, in order, round after round, until a full round
// makes no further change, and reports whether anything changed at all.
func (p *Pipeline) Run(prog *ir.Program) bool {
	changed := false
	for {
		round := false
		for _, pass := range p.passes {
			if pass.Apply(prog) {
				round = true
			}
		}
		if !round {
			break
		}
		changed = true
	}
	return changed
}

// removeInstructions drops every instruction in dead from every block of
// prog, preserving relative order of what remains.
func removeInstructions(prog *ir.Program, dead map[*ir.Instruction]bool) bool {
	if len(dead) == 0 {
		return false
	}
	removed := false
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			kept := b.Instructions[:0]
			for _, instr := range b.Instructions {
				if dead[instr] {
					removed = true
					continue
				}
				kept = append(kept, instr)
			}
			b.Instructions = kept
		}
	}
	return removed
}
