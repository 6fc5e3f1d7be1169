// Package codegen lowers a checked module's AST (spec.md section 4.3's
// output: every expression's CachedType resolved, every call/operator/cast
// site carrying its ResolvedProc, every variable reference carrying its
// ResolvedSym) into the flat, per-procedure three-address instruction
// stream described in spec.md section 3 — the code generator's own job is
// only to emit that stream plus its jump/call Label bindings; partitioning
// it into a CFG is internal/ir.BuildProcedure's job, and wiring
// cross-procedure call/ret edges is internal/ir.LinkProgram's, called once
// every procedure has been lowered.
package codegen

import (
	"secrecc/internal/ast"
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

// loopLabels is the break/continue target pair active for the innermost
// enclosing loop, pushed and popped as the lowering walk enters and leaves
// ForStmt/WhileStmt/DoWhileStmt bodies.
type loopLabels struct {
	breakLabel    *symbols.Label
	continueLabel *symbols.Label
}

// frame tracks the locals declared directly in one lexical scope (one
// CompoundStmt, or a for-loop's own init scope), so lowering can emit a
// matching RELEASE for each when the scope closes — spec.md section 3's
// lifetime markers, and the "resource release" duty spec.md's component
// table assigns to the code generator.
type frame struct {
	locals []*symbols.Variable
}

// Builder lowers one procedure body at a time into a flat Instruction
// slice. It holds no cross-procedure state; Generate creates a fresh
// Builder per procedure, mirroring how the teacher's ir.Builder holds one
// currentFunc's emission state at a time.
type Builder struct {
	ctx   *types.Context
	root  *symbols.Scope
	other *symbols.Other

	instrs  []*ir.Instruction
	frames  []*frame
	loops   []*loopLabels
	pending []*symbols.Label // labels to bind to the next instruction emitted
}

func newBuilder(ctx *types.Context, root *symbols.Scope) *Builder {
	return &Builder{ctx: ctx, root: root, other: root.Other()}
}

// emit appends instr to the flat stream, numbers it, and resolves any
// label bound to "the next instruction" (see bindHere).
func (b *Builder) emit(instr *ir.Instruction) *ir.Instruction {
	instr.ID = len(b.instrs)
	b.instrs = append(b.instrs, instr)
	for _, l := range b.pending {
		l.BindTo(instr)
	}
	b.pending = nil
	return instr
}

// bindHere arranges for l to resolve to whatever instruction is emitted
// next — used for jump targets sitting at a merge point (the else arm, a
// loop's head, the statement following a conditional) before that
// instruction exists yet. lowerProcedure appends a closing return whenever
// the body does not end in a terminator or a label is still pending, so a
// label bound this way is always eventually resolved even if no ordinary
// statement follows it.
func (b *Builder) bindHere(l *symbols.Label) {
	b.pending = append(b.pending, l)
}

func (b *Builder) pushFrame()     { b.frames = append(b.frames, &frame{}) }
func (b *Builder) declareLocal(v *symbols.Variable) {
	top := b.frames[len(b.frames)-1]
	top.locals = append(top.locals, v)
}

// popFrame emits a RELEASE for every local declared directly in the
// closing scope, in reverse declaration order, then discards the frame.
func (b *Builder) popFrame() {
	top := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]
	for i := len(top.locals) - 1; i >= 0; i-- {
		b.emit(&ir.Instruction{Op: ir.OpRelease, Dests: []symbols.Symbol{top.locals[i]}})
	}
}

func (b *Builder) pushLoop(brk, cont *symbols.Label) {
	b.loops = append(b.loops, &loopLabels{breakLabel: brk, continueLabel: cont})
}

func (b *Builder) popLoop() { b.loops = b.loops[:len(b.loops)-1] }

func (b *Builder) currentLoop() *loopLabels { return b.loops[len(b.loops)-1] }

// newTemp mints a fresh scalar/array-handle temporary of type t and
// declares it in the current frame (so it gets released like any other
// local), emitting its DECLARE lifetime marker.
func (b *Builder) newTemp(t *types.Type) *symbols.Variable {
	v := &symbols.Variable{Name_: b.other.NewTemporaryName(), Type: t, Scope: symbols.Local, IsTemporary: true}
	if t.IsArray() {
		v.Dims = make([]*symbols.Variable, t.Dim)
		for i := range v.Dims {
			v.Dims[i] = &symbols.Variable{Name_: b.other.NewTemporaryName(), Type: b.ctx.PublicScalar(types.PrimUint64), Scope: symbols.Local, IsTemporary: true}
		}
		v.Size = &symbols.Variable{Name_: b.other.NewTemporaryName(), Type: b.ctx.PublicScalar(types.PrimUint64), Scope: symbols.Local, IsTemporary: true}
	}
	b.emit(&ir.Instruction{Op: ir.OpDeclare, Dests: []symbols.Symbol{v}})
	b.declareLocal(v)
	return v
}

// fieldVar returns structVar's Variable symbol for field name, creating and
// caching it on first access (symbols.Variable.Fields: "reused by code
// generation whenever the struct variable's members are accessed").
func (b *Builder) fieldVar(structVar *symbols.Variable, name string, t *types.Type) *symbols.Variable {
	if structVar.Fields == nil {
		structVar.Fields = make(map[string]*symbols.Variable)
	}
	if f, ok := structVar.Fields[name]; ok {
		return f
	}
	f := &symbols.Variable{Name_: structVar.Name_ + "." + name, Type: t, Scope: structVar.Scope, Parent: structVar}
	structVar.Fields[name] = f
	return f
}

// intConst mints an anonymous compile-time integer constant for use as an
// instruction operand (an index, an axis, a step of 1 for ++/--): literals
// have no symbol of their own coming out of the parser, so they are
// embedded the same way a template's named constants are — as a
// symbols.Constant, the one symbol kind besides Variable that carries a
// value.
func (b *Builder) intConst(v int64, t *types.Type) *symbols.Constant {
	return &symbols.Constant{Name_: b.other.NewTemporaryName(), Type: t, Value: v}
}

func (b *Builder) uintType() *types.Type { return b.ctx.PublicScalar(types.PrimUint64) }

// binaryOpcodes maps the parser's operator spelling (grammar.go's literal
// tags, threaded through unchanged by convert.go's BinaryExpr.Op) to its
// three-address opcode. String concatenation reuses ADD, matching spec.md
// section 3's "string ops (concat via add, strlen, to-string)".
var binaryOpcodes = map[string]ir.Opcode{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpDiv, "%": ir.OpMod,
	"==": ir.OpEq, "!=": ir.OpNe, "<": ir.OpLt, "<=": ir.OpLe, ">": ir.OpGt, ">=": ir.OpGe,
	"&&": ir.OpLand, "||": ir.OpLor,
	"&": ir.OpBand, "|": ir.OpBor, "^": ir.OpXor, "<<": ir.OpShl, ">>": ir.OpShr,
}

var unaryOpcodes = map[string]ir.Opcode{
	"-": ir.OpUnaryMinus, "!": ir.OpUnaryNeg, "~": ir.OpUnaryInv,
}

// Generate lowers every plain top-level procedure in mod plus every
// template/operator/cast instantiation the worklist produced
// (instantiate.Worklist.Generated) into one ir.Program, wiring its
// cross-procedure edges via ir.LinkProgram before returning. ctx and root
// are the same *types.Context and module root *symbols.Scope the checker
// used, so resolved types and the procedure symbols ResolvedSym/
// ResolvedProc point at are shared, not re-derived.
func Generate(mod *ast.Module, generated []*ast.ProcedureDecl, ctx *types.Context, root *symbols.Scope) *ir.Program {
	prog := &ir.Program{}

	var mainProc *symbols.Procedure
	for _, item := range mod.Items {
		if decl, ok := item.(*ast.ProcedureDecl); ok {
			lowered := lowerProcedure(decl, ctx, root)
			prog.Procedures = append(prog.Procedures, lowered)
			if decl.Name == "main" {
				mainProc = lowered.Symbol
			}
		}
	}
	for _, decl := range generated {
		prog.Procedures = append(prog.Procedures, lowerProcedure(decl, ctx, root))
	}

	prog.Init = lowerInit(root, mainProc)

	ir.LinkProgram(prog)
	return prog
}

// lowerInit builds the anonymous leading procedure spec.md section 3
// describes ("a program owns its procedures, leading with an anonymous
// procedure that contains the global initialization sequence"), grounded
// on original_source's codegen/Program.cpp cgMain: after any globals are
// initialized (SecreC has none at module scope, only declarations, so
// there is nothing to emit here) it calls the module's main procedure with
// a paired CALL/RETCLEAN, releases the program's global variables (again,
// none), then ends. Without this call edge ir.LinkProgram's markReachable
// never walks into main or anything main calls, so every other procedure
// would stay entirely unreachable. mainProc is nil for a module with no
// top-level procedure named "main" (e.g. a library module only ever
// reached through another module's call), in which case the init sequence
// is just the trailing END, same as before.
func lowerInit(root *symbols.Scope, mainProc *symbols.Procedure) *ir.Procedure {
	sym := &symbols.Procedure{Name_: "$init", Entry: root.Other().NewLabel()}
	var instrs []*ir.Instruction
	if mainProc != nil {
		callInstr := &ir.Instruction{Op: ir.OpCall, Label: mainProc.Entry}
		instrs = append(instrs, callInstr)
		retLabel := root.Other().NewLabel()
		retLabel.BindTo(callInstr)
		instrs = append(instrs, &ir.Instruction{Op: ir.OpRetClean, Label: retLabel})
	}
	instrs = append(instrs, &ir.Instruction{Op: ir.OpEnd})
	for i, instr := range instrs {
		instr.ID = i
	}
	return ir.BuildProcedure(sym, sym.Name_, instrs)
}

func lowerProcedure(decl *ast.ProcedureDecl, ctx *types.Context, root *symbols.Scope) *ir.Procedure {
	sym := decl.ResolvedSym.(*symbols.Procedure)
	b := newBuilder(ctx, root)
	b.pushFrame()

	for _, p := range decl.Params {
		v := p.ResolvedSym.(*symbols.Variable)
		b.emit(&ir.Instruction{Op: ir.OpParam, Dests: []symbols.Symbol{v}, Node: p})
		if v.IsArray() {
			for _, d := range v.Dims {
				b.emit(&ir.Instruction{Op: ir.OpParam, Dests: []symbols.Symbol{d}, Node: p})
			}
			b.emit(&ir.Instruction{Op: ir.OpParam, Dests: []symbols.Symbol{v.Size}, Node: p})
		}
	}

	b.lowerStmt(decl.Body)
	b.popFrame()

	if len(b.instrs) == 0 || !b.instrs[len(b.instrs)-1].Op.IsTerminator() || len(b.pending) > 0 {
		b.emit(&ir.Instruction{Op: ir.OpReturn, Node: decl})
	}
	return ir.BuildProcedure(sym, sym.Name_, b.instrs)
}
