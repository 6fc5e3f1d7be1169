package symbols

import "secrecc/internal/types"

// Constant is a named, typed compile-time constant.
type Constant struct {
	Name_ string
	Type  *types.Type
	Value any
}

func (c *Constant) SymbolName() string { return c.Name_ }
func (c *Constant) Category() Category { return CatConstant }

// Kind names a family of private data types declared with `kind name { ... }`.
type Kind struct {
	Name_ string
	Kind  *types.DomainKind
}

func (k *Kind) SymbolName() string { return k.Name_ }
func (k *Kind) Category() Category { return CatKind }

// DomainSym is a declared named security domain.
type DomainSym struct {
	Name_  string
	Domain *types.Domain
}

func (d *DomainSym) SymbolName() string { return d.Name_ }
func (d *DomainSym) Category() Category { return CatDomain }

// DataTypeAlias is a user-declared primitive data type, a member of some
// kind.
type DataTypeAlias struct {
	Name_      string
	Underlying types.DataType
}

func (d *DataTypeAlias) SymbolName() string { return d.Name_ }
func (d *DataTypeAlias) Category() Category { return CatDataTypeAlias }

// DimTypeVar is a dimensionality type variable bound inside a template.
type DimTypeVar struct {
	Name_ string
	Var   *types.TypeVar
}

func (d *DimTypeVar) SymbolName() string { return d.Name_ }
func (d *DimTypeVar) Category() Category { return CatDimTypeVar }

// Struct is a declared struct type definition.
type Struct struct {
	Name_ string
	Type  *types.StructType
}

func (s *Struct) SymbolName() string { return s.Name_ }
func (s *Struct) Category() Category { return CatStruct }
