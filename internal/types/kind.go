package types

// DomainKind names a family of private data types declared together with
// `kind <name> { ... }`. Domains are declared against a kind and only admit
// data types that are members of it.
type DomainKind struct {
	Name    string
	Members map[string]bool // data type names admitted by this kind
}

func NewDomainKind(name string) *DomainKind {
	return &DomainKind{Name: name, Members: make(map[string]bool)}
}

// Admits reports whether a data type name belongs to this kind.
func (k *DomainKind) Admits(dataTypeName string) bool {
	return k.Members[dataTypeName]
}

// Domain is a named private security context whose Kind constrains which
// data types it may hold.
type Domain struct {
	Name string
	Kind *DomainKind
}

func NewDomain(name string, kind *DomainKind) *Domain {
	return &Domain{Name: name, Kind: kind}
}
