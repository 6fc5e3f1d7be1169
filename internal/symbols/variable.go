package symbols

import "secrecc/internal/types"

// StorageScope says whether a variable symbol's storage lives on the
// procedure's local frame or at program scope.
type StorageScope int

const (
	Local StorageScope = iota
	Global
)

// Variable is a named, typed storage location. Compiler-generated
// temporaries reuse the same representation (IsTemporary true, always
// Local) since both need a type, a storage scope and, for arrays, a
// dimension/size symbol set.
type Variable struct {
	Name_       string
	Type        *types.Type
	Scope       StorageScope
	IsTemporary bool

	// Parent is set on field-member variables synthesized for a composite
	// (struct) variable: the field symbol's parent is the struct variable.
	Parent *Variable

	// Dims holds one index-typed dimension symbol per array axis; Size is
	// the product of all Dims. Both are nil for scalars.
	Dims []*Variable
	Size *Variable

	// Fields maps struct field name to its own Variable symbol, reused by
	// code generation whenever the struct variable's members are accessed.
	Fields map[string]*Variable
}

func (v *Variable) SymbolName() string { return v.Name_ }

func (v *Variable) Category() Category {
	if v.IsTemporary {
		return CatTemporary
	}
	return CatVariable
}

func (v *Variable) IsArray() bool { return v.Type != nil && v.Type.IsArray() }
