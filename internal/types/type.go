package types

import "fmt"

// Type is the full SecreC type: the (security, data, dimensionality)
// triple. Types are interned through a Context, so two equal types share a
// pointer and can be compared with ==.
type Type struct {
	Security *Security
	Data     DataType
	Dim      int
	DimVar   *TypeVar // non-nil for a pattern type whose rank is a template quantifier
}

func (t *Type) String() string {
	dim := "?"
	if t.DimVar != nil {
		dim = t.DimVar.Name
	} else {
		dim = fmt.Sprintf("%d", t.Dim)
	}
	if t.DimVar == nil && t.Dim == 0 {
		return fmt.Sprintf("%s %s", t.Security, t.Data.DataString())
	}
	return fmt.Sprintf("%s %s[%s]", t.Security, t.Data.DataString(), dim)
}

// Key returns the canonical interning key for this type.
func (t *Type) Key() string {
	dim := "d:" + fmt.Sprintf("%d", t.Dim)
	if t.DimVar != nil {
		dim = "dv:" + t.DimVar.Name
	}
	return fmt.Sprintf("%s|%s|%s", t.Security, t.Data.dataKey(), dim)
}

// IsPattern reports whether this type contains any unresolved template
// quantifier (security, data, or dimensionality).
func (t *Type) IsPattern() bool {
	if t.Security.IsVar() || t.DimVar != nil {
		return true
	}
	_, isVar := t.Data.(*TypeVar)
	return isVar
}

func (t *Type) IsScalar() bool { return t.Dim == 0 }
func (t *Type) IsArray() bool  { return t.Dim > 0 }

func (t *Type) IsPublic() bool { return t.Security.IsPublic() }

func (t *Type) IsString() bool {
	b, ok := t.Data.(*Builtin)
	return ok && b.Kind == PrimString
}

func (t *Type) IsBool() bool {
	b, ok := t.Data.(*Builtin)
	return ok && b.Kind == PrimBool
}

func (t *Type) IsNumeric() bool {
	b, ok := t.Data.(*Builtin)
	return ok && b.Kind.IsNumeric()
}

func (t *Type) IsSigned() bool {
	b, ok := t.Data.(*Builtin)
	return ok && b.Kind.IsSigned()
}

func (t *Type) IsComposite() bool {
	switch t.Data.(type) {
	case *StructType, *ProcedureType:
		return true
	default:
		return false
	}
}

func (t *Type) IsVoid() bool { return t.Data == nil }

// Context owns the intern table shared by the whole compilation unit. It is
// write-heavy only during type construction and read-only thereafter, so it
// may be shared freely across goroutines once construction settles (see
// spec.md section 5).
type Context struct {
	interned map[string]*Type
	kinds    map[string]*DomainKind
	domains  map[string]*Domain
}

func NewContext() *Context {
	return &Context{
		interned: make(map[string]*Type),
		kinds:    make(map[string]*DomainKind),
		domains:  make(map[string]*Domain),
	}
}

// Intern returns the canonical pointer for a (security, data, dim) triple,
// creating and caching it on first use.
func (c *Context) Intern(sec *Security, data DataType, dim int) *Type {
	t := &Type{Security: sec, Data: data, Dim: dim}
	key := t.Key()
	if existing, ok := c.interned[key]; ok {
		return existing
	}
	c.interned[key] = t
	return t
}

func (c *Context) Public(data DataType, dim int) *Type {
	return c.Intern(PublicSecurity(), data, dim)
}

func (c *Context) PublicScalar(kind PrimitiveKind) *Type {
	return c.Public(&Builtin{Kind: kind}, 0)
}

func (c *Context) Private(domain *Domain, data DataType, dim int) *Type {
	return c.Intern(PrivateSecurity(domain), data, dim)
}

// DeclareKind registers a new domain kind, or returns the existing one if
// already declared.
func (c *Context) DeclareKind(name string) *DomainKind {
	if k, ok := c.kinds[name]; ok {
		return k
	}
	k := NewDomainKind(name)
	c.kinds[name] = k
	return k
}

func (c *Context) LookupKind(name string) (*DomainKind, bool) {
	k, ok := c.kinds[name]
	return k, ok
}

// DeclareDomain registers a named private security domain against a kind.
func (c *Context) DeclareDomain(name string, kind *DomainKind) *Domain {
	if d, ok := c.domains[name]; ok {
		return d
	}
	d := NewDomain(name, kind)
	c.domains[name] = d
	return d
}

func (c *Context) LookupDomain(name string) (*Domain, bool) {
	d, ok := c.domains[name]
	return d, ok
}

// Default scalar types, interned once per context and reused by literal
// defaulting in the checker (spec.md section 4.3).
func (c *Context) DefaultInt() *Type    { return c.PublicScalar(PrimInt64) }
func (c *Context) DefaultBool() *Type   { return c.PublicScalar(PrimBool) }
func (c *Context) DefaultString() *Type { return c.PublicScalar(PrimString) }
func (c *Context) DefaultFloat() *Type  { return c.PublicScalar(PrimFloat64) }

// VoidType is the unique sentinel for procedures that return nothing.
var VoidType = &Type{Security: PublicSecurity(), Data: nil, Dim: 0}
