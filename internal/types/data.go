package types

import (
	"fmt"
	"strings"
)

// PrimitiveKind enumerates the built-in primitive data types. Signed and
// unsigned integers are distinguished; widths are 8/16/32/64 bits.
type PrimitiveKind int

const (
	PrimBool PrimitiveKind = iota
	PrimString
	PrimFloat32
	PrimFloat64
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
)

var primitiveNames = map[PrimitiveKind]string{
	PrimBool:    "bool",
	PrimString:  "string",
	PrimFloat32: "float32",
	PrimFloat64: "float64",
	PrimInt8:    "int8",
	PrimInt16:   "int16",
	PrimInt32:   "int32",
	PrimInt64:   "int64",
	PrimUint8:   "uint8",
	PrimUint16:  "uint16",
	PrimUint32:  "uint32",
	PrimUint64:  "uint64",
}

var namesToPrimitive = func() map[string]PrimitiveKind {
	m := make(map[string]PrimitiveKind, len(primitiveNames))
	for k, v := range primitiveNames {
		m[v] = k
	}
	return m
}()

// LookupPrimitive resolves a built-in primitive type name.
func LookupPrimitive(name string) (PrimitiveKind, bool) {
	k, ok := namesToPrimitive[name]
	return k, ok
}

func (p PrimitiveKind) String() string { return primitiveNames[p] }

func (p PrimitiveKind) IsNumeric() bool {
	return p != PrimBool && p != PrimString
}

func (p PrimitiveKind) IsSigned() bool {
	switch p {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64, PrimFloat32, PrimFloat64:
		return true
	default:
		return false
	}
}

func (p PrimitiveKind) IsInteger() bool {
	switch p {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64, PrimUint8, PrimUint16, PrimUint32, PrimUint64:
		return true
	default:
		return false
	}
}

func (p PrimitiveKind) IsFloat() bool {
	return p == PrimFloat32 || p == PrimFloat64
}

// DataType is the data fragment of a full SecreC type: a built-in
// primitive, a user-declared primitive belonging to a kind, or a composite
// (struct / procedure) type.
type DataType interface {
	DataString() string
	dataKey() string
}

// Builtin wraps one of the built-in primitive kinds.
type Builtin struct {
	Kind PrimitiveKind
}

func (b *Builtin) DataString() string { return b.Kind.String() }
func (b *Builtin) dataKey() string    { return "b:" + b.Kind.String() }

// UserPrimitive is a data type declared as a member of a kind (e.g. the
// private encodings admitted by a domain's kind).
type UserPrimitive struct {
	Name string
	Kind *DomainKind
}

func (u *UserPrimitive) DataString() string { return u.Name }
func (u *UserPrimitive) dataKey() string    { return "u:" + u.Kind.Name + ":" + u.Name }

// StructField is one named, typed member of a struct composite type.
type StructField struct {
	Name string
	Type *Type
}

// StructType is a composite type with named, typed fields.
type StructType struct {
	Name   string
	Fields []StructField
}

func (s *StructType) DataString() string { return s.Name }
func (s *StructType) dataKey() string {
	var b strings.Builder
	b.WriteString("struct:")
	b.WriteString(s.Name)
	for _, f := range s.Fields {
		b.WriteString(";")
		b.WriteString(f.Name)
		b.WriteString(":")
		b.WriteString(f.Type.Key())
	}
	return b.String()
}

func (s *StructType) FieldByName(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// ProcedureType is the data type of a procedure value: a parameter-type
// list plus a return type (nil return type means void).
type ProcedureType struct {
	Params     []*Type
	ReturnType *Type
}

func (p *ProcedureType) DataString() string {
	parts := make([]string, len(p.Params))
	for i, t := range p.Params {
		parts[i] = t.String()
	}
	ret := "void"
	if p.ReturnType != nil {
		ret = p.ReturnType.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
}

func (p *ProcedureType) dataKey() string {
	var b strings.Builder
	b.WriteString("proc:(")
	for i, t := range p.Params {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(t.Key())
	}
	b.WriteString(")->")
	if p.ReturnType != nil {
		b.WriteString(p.ReturnType.Key())
	} else {
		b.WriteString("void")
	}
	return b.String()
}
