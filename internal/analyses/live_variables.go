// Package analyses implements the concrete dataflow analyses spec.md
// section 5 names, each grounded on its counterpart under
// original_source's src/libscc/analysis/: live variables, live memory,
// constant folding, reachable uses/defs/returns, and copy propagation. All
// of them implement dataflow.Analysis and are driven by
// dataflow.RunForward/RunBackward.
package analyses

import (
	"secrecc/internal/dataflow"
	"secrecc/internal/ir"
)

// LiveVariables computes, for every reachable basic block, the set of
// symbols live on entry and on exit - grounded on
// analysis/LiveVariables.h/.cpp. A symbol is live on exit from a block if
// some later use reaches there without an intervening redefinition.
type LiveVariables struct {
	blocks map[*ir.BasicBlock]*liveBlockInfo
}

type liveBlockInfo struct {
	gen, kill dataflow.SymbolSet
	in, out   dataflow.SymbolSet
}

func NewLiveVariables() *LiveVariables {
	return &LiveVariables{blocks: make(map[*ir.BasicBlock]*liveBlockInfo)}
}

func (lv *LiveVariables) info(b *ir.BasicBlock) *liveBlockInfo {
	info, ok := lv.blocks[b]
	if !ok {
		info = &liveBlockInfo{gen: dataflow.NewSymbolSet(), kill: dataflow.NewSymbolSet(), in: dataflow.NewSymbolSet(), out: dataflow.NewSymbolSet()}
		lv.blocks[b] = info
	}
	return info
}

// LiveOnExit returns the symbols live immediately after b.
func (lv *LiveVariables) LiveOnExit(b *ir.BasicBlock) dataflow.SymbolSet { return lv.info(b).out }

// LiveOnEntry returns the symbols live immediately before b.
func (lv *LiveVariables) LiveOnEntry(b *ir.BasicBlock) dataflow.SymbolSet { return lv.info(b).in }

// Start computes each block's gen/kill sets up front by walking its
// instructions in reverse, exactly like LiveVariables::start's
// CollectGenKill pass: a use only "generates" liveness if nothing later in
// the same backward walk has already killed (defined) that symbol.
func (lv *LiveVariables) Start(prog *ir.Program) {
	lv.blocks = make(map[*ir.BasicBlock]*liveBlockInfo)
	for _, p := range prog.All() {
		for _, b := range p.Blocks {
			info := lv.info(b)
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				instr := b.Instructions[i]
				for _, d := range instr.Def() {
					info.kill.Add(d)
					info.gen.Remove(d)
				}
				for _, u := range instr.Use() {
					info.gen.Add(u)
				}
			}
		}
	}
}

func (lv *LiveVariables) StartBlock(b *ir.BasicBlock) {
	lv.info(b).out = dataflow.NewSymbolSet()
}

// OutTo merges the successor's in-set into from's out-set: a local edge
// (jump/true/false/call-pass) passes every live symbol through, a global
// edge (call/ret) passes only globals, matching
// LiveVariables::outToLocal/outToGlobal's split on Edge::isGlobal.
func (lv *LiveVariables) OutTo(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock) {
	toInfo := lv.info(to)
	fromInfo := lv.info(from)
	if kind.IsLocal() {
		toInfo.out.UnionWith(fromInfo.in)
		return
	}
	for sym := range fromInfo.in {
		if isGlobalSymbol(sym) {
			toInfo.out.Add(sym)
		}
	}
}

func (lv *LiveVariables) InFrom(*ir.BasicBlock, ir.EdgeKind, *ir.BasicBlock) {}

// FinishBlock recomputes in = (out - kill) + gen and reports whether it
// changed, exactly like LiveVariables::finishBlock.
func (lv *LiveVariables) FinishBlock(b *ir.BasicBlock) bool {
	info := lv.info(b)
	old := info.in
	next := info.out.Clone()
	next.SubtractFrom(info.kill)
	next.UnionWith(info.gen)
	info.in = next
	return !old.Equal(next)
}

func (lv *LiveVariables) Finish() {}
