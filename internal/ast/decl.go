package ast

// KindDecl declares a family of private data types: `kind name { type a; type b; }`.
type KindDecl struct {
	Base
	Name    string
	Members []string
}

func (k *KindDecl) moduleItemNode() {}

// DomainDecl declares a named private security domain against a kind:
// `domain D kindname;`.
type DomainDecl struct {
	Base
	Name     string
	KindName string
}

func (d *DomainDecl) moduleItemNode() {}

// StructDecl declares a struct composite type.
type StructDecl struct {
	Base
	Name   string
	Fields []*StructFieldDecl
}

func (s *StructDecl) moduleItemNode() {}

type StructFieldDecl struct {
	Base
	Name string
	Type *TypeExpr
}
