package ast

// TypeExpr is the syntactic type annotation as written in source: a
// security annotation (empty/"public" or a domain name), a data type
// name, and a dimensionality (0 = scalar). The checker resolves this into
// a concrete *types.Type (or a pattern type, inside a template) and caches
// it via CachedType.
type TypeExpr struct {
	Base
	Security string // "", "public", or a domain/quantifier name
	DataName string // built-in, user-declared primitive, or struct name, or a quantifier name
	Dim      int
}

// Quantifier is one `domain D`, `type T`, or `dim N [: kind]` entry in a
// template's quantifier list.
type Quantifier struct {
	Base
	VarKind    string // "domain", "type", or "dim"
	Name       string
	Constraint string // kind name constraining a domain quantifier, or ""; the checker ignores it on a type or dim quantifier
}
