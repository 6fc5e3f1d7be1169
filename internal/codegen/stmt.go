package codegen

import (
	"secrecc/internal/ast"
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
)

// lowerStmt emits s's instructions. Like lowerExpr, it trusts the checked
// tree completely: a DeclStmt's ResolvedSym, a loop's structure, a
// return's value type are all already validated, so lowering only has to
// turn shape into three-address code and jumps.
func (b *Builder) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		b.pushFrame()
		for _, st := range n.Stmts {
			b.lowerStmt(st)
		}
		b.popFrame()

	case *ast.IfStmt:
		b.lowerIfStmt(n)

	case *ast.ForStmt:
		b.lowerForStmt(n)

	case *ast.WhileStmt:
		b.lowerWhileStmt(n)

	case *ast.DoWhileStmt:
		b.lowerDoWhileStmt(n)

	case *ast.BreakStmt:
		b.emit(&ir.Instruction{Op: ir.OpJump, Label: b.currentLoop().breakLabel, Node: n})

	case *ast.ContinueStmt:
		b.emit(&ir.Instruction{Op: ir.OpJump, Label: b.currentLoop().continueLabel, Node: n})

	case *ast.ReturnStmt:
		if n.Value == nil {
			b.emit(&ir.Instruction{Op: ir.OpReturn, Node: n})
			return
		}
		v := b.lowerExpr(n.Value)
		b.emit(&ir.Instruction{Op: ir.OpReturn, Args: []symbols.Symbol{v}, Node: n})

	case *ast.DeclStmt:
		b.lowerDeclStmt(n)

	case *ast.AssertStmt:
		b.lowerAssertStmt(n)

	case *ast.ExprStmt:
		b.lowerExpr(n.X)

	case *ast.PrintStmt:
		b.emit(&ir.Instruction{Op: ir.OpPrint, Args: b.lowerExprList(n.Args), Node: n})

	case *ast.SyscallStmt:
		b.lowerSyscallStmt(n)

	default:
		panic("codegen: unhandled statement form")
	}
}

func (b *Builder) lowerIfStmt(n *ast.IfStmt) {
	cond := b.lowerExpr(n.Cond)
	lElse := b.other.NewLabel()
	b.emit(&ir.Instruction{Op: ir.OpJf, Args: []symbols.Symbol{cond}, Label: lElse, Node: n})
	b.lowerStmt(n.Then)
	if n.Else == nil {
		b.bindHere(lElse)
		return
	}
	lEnd := b.other.NewLabel()
	b.emit(&ir.Instruction{Op: ir.OpJump, Label: lEnd})
	b.bindHere(lElse)
	b.lowerStmt(n.Else)
	b.bindHere(lEnd)
}

func (b *Builder) lowerWhileStmt(n *ast.WhileStmt) {
	lStart := b.other.NewLabel()
	b.bindHere(lStart)
	cond := b.lowerExpr(n.Cond)
	lEnd := b.other.NewLabel()
	b.emit(&ir.Instruction{Op: ir.OpJf, Args: []symbols.Symbol{cond}, Label: lEnd, Node: n})
	b.pushLoop(lEnd, lStart)
	b.lowerStmt(n.Body)
	b.popLoop()
	b.emit(&ir.Instruction{Op: ir.OpJump, Label: lStart})
	b.bindHere(lEnd)
}

func (b *Builder) lowerDoWhileStmt(n *ast.DoWhileStmt) {
	lStart := b.other.NewLabel()
	b.bindHere(lStart)
	lContinue := b.other.NewLabel()
	lEnd := b.other.NewLabel()
	b.pushLoop(lEnd, lContinue)
	b.lowerStmt(n.Body)
	b.popLoop()
	b.bindHere(lContinue)
	cond := b.lowerExpr(n.Cond)
	b.emit(&ir.Instruction{Op: ir.OpJt, Args: []symbols.Symbol{cond}, Label: lStart, Node: n})
	b.bindHere(lEnd)
}

func (b *Builder) lowerForStmt(n *ast.ForStmt) {
	b.pushFrame()
	if n.Init != nil {
		b.lowerStmt(n.Init)
	}
	lStart := b.other.NewLabel()
	b.bindHere(lStart)
	lEnd := b.other.NewLabel()
	if n.Cond != nil {
		cond := b.lowerExpr(n.Cond)
		b.emit(&ir.Instruction{Op: ir.OpJf, Args: []symbols.Symbol{cond}, Label: lEnd, Node: n})
	}
	lContinue := b.other.NewLabel()
	b.pushLoop(lEnd, lContinue)
	b.lowerStmt(n.Body)
	b.popLoop()
	b.bindHere(lContinue)
	if n.Post != nil {
		b.lowerStmt(n.Post)
	}
	b.emit(&ir.Instruction{Op: ir.OpJump, Label: lStart})
	b.bindHere(lEnd)
	b.popFrame()
}

// lowerAssertStmt has no dedicated opcode of its own: it desugars to a
// conditional jump over an ERROR instruction, the same terminator an
// out-of-range index or a failed runtime check would raise.
func (b *Builder) lowerAssertStmt(n *ast.AssertStmt) {
	cond := b.lowerExpr(n.Cond)
	lOk := b.other.NewLabel()
	b.emit(&ir.Instruction{Op: ir.OpJt, Args: []symbols.Symbol{cond}, Label: lOk, Node: n})
	b.emit(&ir.Instruction{Op: ir.OpError, Message: "assertion failed", Node: n})
	b.bindHere(lOk)
}

func (b *Builder) lowerDeclStmt(n *ast.DeclStmt) {
	v := n.ResolvedSym.(*symbols.Variable)
	b.emit(&ir.Instruction{Op: ir.OpDeclare, Dests: []symbols.Symbol{v}, Node: n})
	b.declareLocal(v)

	switch {
	case n.Init != nil:
		rhs := b.lowerExpr(n.Init)
		if v.IsArray() {
			if rv, ok := rhs.(*symbols.Variable); ok && rv.Size != nil {
				b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{v.Size}, Args: []symbols.Symbol{rv.Size}})
				for i, d := range v.Dims {
					if i < len(rv.Dims) {
						b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{d}, Args: []symbols.Symbol{rv.Dims[i]}})
					}
				}
			}
			b.emit(&ir.Instruction{Op: ir.OpCopy, Dests: []symbols.Symbol{v}, Args: []symbols.Symbol{rhs}, Shape: v.Size, Node: n})
		} else {
			b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{v}, Args: []symbols.Symbol{rhs}, Node: n})
		}

	case v.IsArray():
		dimSyms := b.lowerExprList(n.Dims)
		for i, d := range dimSyms {
			if i < len(v.Dims) {
				b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{v.Dims[i]}, Args: []symbols.Symbol{d}})
			}
		}
		size := v.Size
		if len(dimSyms) > 0 {
			b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{size}, Args: []symbols.Symbol{dimSyms[0]}})
			for _, d := range dimSyms[1:] {
				b.emit(&ir.Instruction{Op: ir.OpMul, Dests: []symbols.Symbol{size}, Args: []symbols.Symbol{size, d}})
			}
		}
		b.emit(&ir.Instruction{Op: ir.OpAlloc, Dests: []symbols.Symbol{v}, Shape: size, Node: n})
	}
}

func (b *Builder) lowerSyscallStmt(n *ast.SyscallStmt) {
	ops := make([]ir.SyscallOperand, len(n.Args))
	for i, a := range n.Args {
		ops[i] = ir.SyscallOperand{
			Sym:      b.lowerExpr(a.Value),
			Passing:  syscallPassing(a.Passing),
			ReadOnly: a.ReadOnly,
		}
	}
	b.emit(&ir.Instruction{Op: ir.OpSyscall, SyscallName: n.Name, SyscallOps: ops, Node: n})
}

func syscallPassing(p ast.SyscallPassing) ir.SyscallPassing {
	switch p {
	case ast.SyscallPush:
		return ir.PassPush
	case ast.SyscallPushRef:
		return ir.PassPushRef
	case ast.SyscallPushCRef:
		return ir.PassPushCRef
	default:
		return ir.PassReturn
	}
}

// loadLValue reads lv's current value without mutating anything: a plain
// variable reference needs no instruction at all (its symbol is the
// value), while an indexed or selected lvalue needs the same LOAD/field
// lookup a read of the equivalent expression form would.
func (b *Builder) loadLValue(lv ast.LValue) symbols.Symbol {
	switch n := lv.(type) {
	case *ast.VariableLValue:
		return n.ResolvedSym.(symbols.Symbol)

	case *ast.IndexedLValue:
		target := b.loadLValue(n.Target)
		args := []symbols.Symbol{target}
		for _, sl := range n.Slices {
			args = append(args, b.lowerExpr(sl.From))
		}
		temp := b.newTemp(n.CachedType())
		b.emit(&ir.Instruction{Op: ir.OpLoad, Dests: []symbols.Symbol{temp}, Args: args, Node: n})
		return temp

	case *ast.SelectedLValue:
		target := b.loadLValue(n.Target)
		structVar, ok := target.(*symbols.Variable)
		if !ok {
			return target
		}
		return b.fieldVar(structVar, n.Field, n.CachedType())

	default:
		panic("codegen: unhandled lvalue form")
	}
}

// storeLValue writes value into lv's target.
func (b *Builder) storeLValue(lv ast.LValue, value symbols.Symbol) {
	switch n := lv.(type) {
	case *ast.VariableLValue:
		dest := n.ResolvedSym.(*symbols.Variable)
		if dest.IsArray() {
			b.emit(&ir.Instruction{Op: ir.OpCopy, Dests: []symbols.Symbol{dest}, Args: []symbols.Symbol{value}, Shape: dest.Size, Node: n})
			return
		}
		b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{dest}, Args: []symbols.Symbol{value}, Node: n})

	case *ast.IndexedLValue:
		target := b.loadLValue(n.Target)
		var args []symbols.Symbol
		for _, sl := range n.Slices {
			args = append(args, b.lowerExpr(sl.From))
		}
		args = append(args, value)
		targetVar, _ := target.(*symbols.Variable)
		var dests []symbols.Symbol
		if targetVar != nil {
			dests = []symbols.Symbol{targetVar}
		}
		b.emit(&ir.Instruction{Op: ir.OpStore, Dests: dests, Args: args, Node: n})

	case *ast.SelectedLValue:
		target := b.loadLValue(n.Target)
		structVar, ok := target.(*symbols.Variable)
		if !ok {
			return
		}
		field := b.fieldVar(structVar, n.Field, n.CachedType())
		if field.IsArray() {
			b.emit(&ir.Instruction{Op: ir.OpCopy, Dests: []symbols.Symbol{field}, Args: []symbols.Symbol{value}, Shape: field.Size, Node: n})
			return
		}
		b.emit(&ir.Instruction{Op: ir.OpAssign, Dests: []symbols.Symbol{field}, Args: []symbols.Symbol{value}, Node: n})

	default:
		panic("codegen: unhandled lvalue form")
	}
}
