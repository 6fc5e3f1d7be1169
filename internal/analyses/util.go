package analyses

import "secrecc/internal/symbols"

// isGlobalSymbol reports whether sym is program-scope storage, the
// distinction LiveVariables::outToGlobal uses to decide what survives a
// cross-procedure (CALL/RET) edge: only a variable visible to the callee
// can carry liveness across the call, everything local to the caller's
// frame does not.
func isGlobalSymbol(sym symbols.Symbol) bool {
	v, ok := sym.(*symbols.Variable)
	return ok && v.Scope == symbols.Global
}
