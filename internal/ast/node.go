package ast

import "secrecc/internal/types"

// Position is a source location: file path plus a begin/end line and
// column, carried by every node for diagnostics.
type Position struct {
	File        string
	Line, Col   int
	EndLine     int
	EndCol      int
}

// Node is the common interface every AST node implements: a source
// location, plus the type slot the checker fills in during its single
// walk over the tree (spec.md section 4.3: resultType on expressions,
// secrecType on declarations/lvalues — both backed by the same cached
// field here since a node is never both).
type Node interface {
	Pos() Position
	EndPos() Position
	CachedType() *types.Type
	SetCachedType(*types.Type)
}

// Base is embedded by every concrete node and implements the bookkeeping
// half of Node.
type Base struct {
	Start, End Position
	typ        *types.Type
}

func (b *Base) Pos() Position    { return b.Start }
func (b *Base) EndPos() Position { return b.End }

func (b *Base) CachedType() *types.Type     { return b.typ }
func (b *Base) SetCachedType(t *types.Type) { b.typ = t }

// Expr is any expression node. exprNode is an unexported marker so only
// this package's types satisfy it.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// LValue is any of the three assignable forms: plain variable, indexed
// array element/slice, or selected struct field.
type LValue interface {
	Node
	lvalueNode()
}

// ModuleItem is any top-level declaration inside a module body: import,
// kind, domain, struct, template, procedure, operator, or cast.
type ModuleItem interface {
	Node
	moduleItemNode()
}
