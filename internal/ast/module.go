package ast

// Program is the root of a compilation unit: the module the parser was
// asked to parse, plus every module it transitively imports, supplied by
// the module-map boundary (spec.md section 6).
type Program struct {
	Base
	Main    *Module
	Imports []*Module
}

// Module is a single `module name { ... }` unit.
type Module struct {
	Base
	Name  string
	Items []ModuleItem
}

// Import is a `import other;` declaration.
type Import struct {
	Base
	ModuleName string
}

func (i *Import) moduleItemNode() {}
