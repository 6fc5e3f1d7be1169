package ir

import (
	"secrecc/internal/ast"
	"secrecc/internal/symbols"
)

// SyscallPassing mirrors ast.SyscallPassing for the lowered instruction
// operand (spec.md section 3: return, push, push-ref, push-cref).
type SyscallPassing int

const (
	PassReturn SyscallPassing = iota
	PassPush
	PassPushRef
	PassPushCRef
)

type SyscallOperand struct {
	Sym      symbols.Symbol
	Passing  SyscallPassing
	ReadOnly bool
}

// Instruction is a three-address IR instruction: an opcode, an operand
// list, and a source-node back-reference for diagnostics (spec.md
// section 3).
type Instruction struct {
	ID    int
	Op    Opcode
	Dests []symbols.Symbol // 0, 1, or (CALL with multiple return slots) N
	Args  []symbols.Symbol
	Shape symbols.Symbol // extra size/shape operand for vectorized forms, nil otherwise

	// Label is the JUMP/JT/JF target, the callee entry for CALL, or the
	// paired CALL this RETCLEAN closes out.
	Label *symbols.Label

	Message     string // ERROR message / COMMENT text / PRINT format
	SyscallName string
	SyscallOps  []SyscallOperand // valid only when Op == OpSyscall

	Node  ast.Node
	Block *BasicBlock
}

func (i *Instruction) Dest() symbols.Symbol {
	if len(i.Dests) == 0 {
		return nil
	}
	return i.Dests[0]
}

// Use returns the set of symbols this instruction reads, per spec.md
// section 3: the opcode's base use-set, plus the shape operand if present,
// plus the destination itself when the private-destination reclassify
// rule applies.
func (i *Instruction) Use() []symbols.Symbol {
	var uses []symbols.Symbol
	switch i.Op {
	case OpDeclare, OpAlloc, OpParam, OpJump, OpEnd, OpComment:
		// no source reads beyond an optional shape/fill operand
		uses = append(uses, i.Args...)
	case OpStore:
		// d[arg1] = arg2: the base array is both read (other elements
		// survive) and written.
		uses = append(uses, i.Dests...)
		uses = append(uses, i.Args...)
	case OpCall:
		uses = append(uses, i.Args...)
	case OpRetClean:
		// no symbol operands; paired CALL referenced via Label
	default:
		uses = append(uses, i.Args...)
	}
	if i.Shape != nil {
		uses = append(uses, i.Shape)
	}
	if d := i.Dest(); d != nil && isPrivate(d) && !DefinesOnPrivate(i.Op) && i.Op != OpStore {
		uses = append(uses, d)
	}
	return uses
}

// Def returns the set of symbols this instruction writes.
func (i *Instruction) Def() []symbols.Symbol {
	if i.Op == OpStore {
		// see Use: a private STORE destination is reclassified as a pure
		// use and no longer counts as a definition.
		if d := i.Dest(); d != nil && isPrivate(d) {
			return nil
		}
		return i.Dests
	}
	if d := i.Dest(); d != nil && isPrivate(d) && !DefinesOnPrivate(i.Op) {
		return nil
	}
	return i.Dests
}

func isPrivate(s symbols.Symbol) bool {
	v, ok := s.(*symbols.Variable)
	if !ok || v.Type == nil {
		return false
	}
	return !v.Type.IsPublic()
}

// ResolveLabel follows a label binding set up by the code generator/CFG
// builder back to the concrete instruction it anchors: directly, if bound
// to an instruction, or to the first instruction of its bound block.
func ResolveLabel(l *symbols.Label) *Instruction {
	switch t := l.Target.(type) {
	case *Instruction:
		return t
	case *BasicBlock:
		if len(t.Instructions) == 0 {
			return nil
		}
		return t.Instructions[0]
	default:
		return nil
	}
}
