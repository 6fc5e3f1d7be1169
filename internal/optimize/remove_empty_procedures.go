package optimize

import "secrecc/internal/ir"

// RemoveEmptyProceduresPass drops every procedure nothing calls - grounded
// on optimizer/RemoveEmptyProcedures.cpp's removeEmptyProcedures(ICode&),
// which collects every named procedure with an empty callFrom() list and
// unlinks it in one pass. It never touches prog.Init, the original's
// nameless START procedure ("how to identify the START procedure? ...
// currently we use name != NULL"), since prog.Init/prog.Procedures already
// keep that split explicit.
//
// Like RemoveUnreachableBlocksPass, this never rewrites a CFG edge: a
// whole unreferenced procedure is simply dropped, so there is no successor
// or predecessor list to repair. Dropping a procedure can itself orphan
// whatever it alone used to call, so this also scrubs the dropped
// procedure's own call edges out of its callees' Callers lists, letting a
// chain of now-dead procedures fall away over the pipeline's fixed-point
// rounds rather than only the outermost one.
type RemoveEmptyProceduresPass struct{}

func (*RemoveEmptyProceduresPass) Name() string { return "remove-empty-procedures" }
func (*RemoveEmptyProceduresPass) Description() string {
	return "drops procedures no remaining call site reaches"
}

func (*RemoveEmptyProceduresPass) Apply(prog *ir.Program) bool {
	var dropped []*ir.Procedure
	kept := prog.Procedures[:0]
	for _, p := range prog.Procedures {
		if len(p.Callers) == 0 {
			dropped = append(dropped, p)
			continue
		}
		kept = append(kept, p)
	}
	prog.Procedures = kept
	if len(dropped) == 0 {
		return false
	}

	for _, p := range dropped {
		for _, b := range p.Blocks {
			term := b.Terminator()
			if term == nil || term.Op != ir.OpCall {
				continue
			}
			target := ir.ResolveLabel(term.Label)
			if target == nil || target.Block == nil {
				continue
			}
			scrubCaller(target.Block.Proc, b)
		}
	}
	return true
}

func scrubCaller(callee *ir.Procedure, caller *ir.BasicBlock) {
	kept := callee.Callers[:0]
	for _, b := range callee.Callers {
		if b != caller {
			kept = append(kept, b)
		}
	}
	callee.Callers = kept
}
