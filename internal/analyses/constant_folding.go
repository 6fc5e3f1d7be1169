package analyses

import (
	"secrecc/internal/ir"
	"secrecc/internal/symbols"
)

// ValueKind classifies a symbol's compile-time value at a program point,
// grounded on analysis/ConstantFolding.h's Value: Undef ("top", not yet
// reached by any path), Const (every path seen so far agrees on one
// literal value) and Nac ("not a constant", two paths disagree or the
// symbol was last written by something this analysis can't evaluate).
type ValueKind int

const (
	ValueUndef ValueKind = iota
	ValueConst
	ValueNac
)

// Value is one entry in a ConstantFolding value map. Unlike the original's
// Value (which wraps a pointer into a ValueFactory-interned AbstractValue
// table so two equal constants are also identical pointers), ours compares
// the literal Go payload directly since our literal constants are plain
// comparable int64/float64/bool/string, with no need for an interning
// table.
type Value struct {
	Kind  ValueKind
	Const any
}

func (v Value) IsConst() bool { return v.Kind == ValueConst }
func (v Value) IsNac() bool   { return v.Kind == ValueNac }
func (v Value) IsUndef() bool { return v.Kind == ValueUndef }

func constValue(x any) Value { return Value{Kind: ValueConst, Const: x} }
func nacValue() Value        { return Value{Kind: ValueNac} }
func undefValue() Value      { return Value{} }

// meet combines two values reaching the same program point from different
// paths: undef is the identity (a path that hasn't been visited yet
// contributes nothing), agreement keeps the constant, and disagreement
// collapses to Nac - the lattice-ordering meet the header's comment
// distinguishes from Value's lexicographic operator<.
func meet(a, b Value) Value {
	if a.IsUndef() {
		return b
	}
	if b.IsUndef() {
		return a
	}
	if a.IsConst() && b.IsConst() && a.Const == b.Const {
		return a
	}
	return nacValue()
}

// SymbolValues maps a symbol to its known compile-time Value, the Go
// counterpart to ConstantFolding::SVM.
type SymbolValues map[symbols.Symbol]Value

func (m SymbolValues) get(sym symbols.Symbol) Value {
	if v, ok := m[sym]; ok {
		return v
	}
	return undefValue()
}

// Clone returns an independent copy, exported so a consuming optimizer
// pass can probe a hypothetical instruction's effect without disturbing
// the analysis's own running map.
func (m SymbolValues) Clone() SymbolValues {
	out := make(SymbolValues, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m SymbolValues) equal(o SymbolValues) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func constOf(sym symbols.Symbol) (Value, bool) {
	c, ok := sym.(*symbols.Constant)
	if !ok {
		return Value{}, false
	}
	return constValue(c.Value), true
}

// foldBinary evaluates op on two known constants, reporting ok=false when
// the operator has no compile-time arithmetic this analysis performs (e.g.
// it reads through memory or calls into a procedure).
func foldBinary(op ir.Opcode, a, b any) (any, bool) {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		ai, aok := a.(int64)
		bi, bok := b.(int64)
		if aok && bok {
			switch op {
			case ir.OpAdd:
				return ai + bi, true
			case ir.OpSub:
				return ai - bi, true
			case ir.OpMul:
				return ai * bi, true
			case ir.OpDiv:
				if bi == 0 {
					return nil, false
				}
				return ai / bi, true
			case ir.OpMod:
				if bi == 0 {
					return nil, false
				}
				return ai % bi, true
			}
		}
		af, aok := a.(float64)
		bf, bok := b.(float64)
		if aok && bok {
			switch op {
			case ir.OpAdd:
				return af + bf, true
			case ir.OpSub:
				return af - bf, true
			case ir.OpMul:
				return af * bf, true
			case ir.OpDiv:
				if bf == 0 {
					return nil, false
				}
				return af / bf, true
			}
		}
	case ir.OpEq:
		return a == b, true
	case ir.OpNe:
		return a != b, true
	}
	return nil, false
}

// ConstantFolding computes, for every symbol at every program point, the
// single compile-time value it is guaranteed to hold (or Nac if none) -
// grounded on analysis/ConstantFolding.h's declared interface. The pack's
// retrieved sources include only this analysis's class declaration and its
// optimizer driver (eliminateConstantExpressions), not its transfer
// function body, so the instruction-level evaluation here - which literals
// fold, which opcodes kill a destination outright - is this student's own,
// built the way LiveVariables/CopyPropagation's ported transfer functions
// already establish: the per-block transfer is replayed in FinishBlock
// (Start only resets the maps), joined by meet at confluence points.
type ConstantFolding struct {
	ins  map[*ir.BasicBlock]SymbolValues
	outs map[*ir.BasicBlock]SymbolValues
}

func NewConstantFolding() *ConstantFolding {
	return &ConstantFolding{ins: make(map[*ir.BasicBlock]SymbolValues), outs: make(map[*ir.BasicBlock]SymbolValues)}
}

// ValuesInto returns the known values on entry to b.
func (cf *ConstantFolding) ValuesInto(b *ir.BasicBlock) SymbolValues {
	if v, ok := cf.ins[b]; ok {
		return v
	}
	return SymbolValues{}
}

func (cf *ConstantFolding) Start(prog *ir.Program) {
	cf.ins = make(map[*ir.BasicBlock]SymbolValues)
	cf.outs = make(map[*ir.BasicBlock]SymbolValues)
}

func (cf *ConstantFolding) StartBlock(b *ir.BasicBlock) {
	cf.ins[b] = SymbolValues{}
}

// InFrom merges from's out-values into to's in-values by meet, restricted
// to global symbols on a CALL/RET edge exactly as the other forward
// analyses in this package restrict their local/global split.
func (cf *ConstantFolding) InFrom(from *ir.BasicBlock, kind ir.EdgeKind, to *ir.BasicBlock) {
	dest := cf.ins[to]
	for sym, v := range cf.outs[from] {
		if kind.IsLocal() || isGlobalSymbol(sym) {
			dest[sym] = meet(dest.get(sym), v)
		}
	}
}

func (cf *ConstantFolding) OutTo(*ir.BasicBlock, ir.EdgeKind, *ir.BasicBlock) {}

// Transfer applies one instruction's effect to a running value map: a
// plain assignment propagates its source's value, a binary op over two
// known constants folds to a new one, anything else that defines a symbol
// collapses it to Nac. Exported so optimize.ConstantFoldingPass can replay
// it directly instead of duplicating the dispatch.
func Transfer(instr *ir.Instruction, vals SymbolValues) {
	switch instr.Op {
	case ir.OpAssign:
		if len(instr.Args) > 0 {
			vals[instr.Dest()] = resolveValue(vals, instr.Args[0])
			return
		}
	default:
		if len(instr.Args) == 2 {
			a := resolveValue(vals, instr.Args[0])
			b := resolveValue(vals, instr.Args[1])
			if a.IsConst() && b.IsConst() {
				if folded, ok := foldBinary(instr.Op, a.Const, b.Const); ok {
					if d := instr.Dest(); d != nil {
						vals[d] = constValue(folded)
					}
					return
				}
			}
		}
	}

	for _, d := range instr.Def() {
		vals[d] = nacValue()
	}
}

// resolveValue resolves sym's current value, treating a literal constant symbol
// itself as always holding its own value regardless of the running map.
func resolveValue(vals SymbolValues, sym symbols.Symbol) Value {
	if v, ok := constOf(sym); ok {
		return v
	}
	return vals.get(sym)
}

func (cf *ConstantFolding) FinishBlock(b *ir.BasicBlock) bool {
	old := cf.outs[b]
	next := cf.ins[b].Clone()
	for _, instr := range b.Instructions {
		Transfer(instr, next)
	}
	cf.outs[b] = next
	return !old.equal(next)
}

func (cf *ConstantFolding) Finish() {}
