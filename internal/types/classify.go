package types

// CanClassify reports whether a public value of the given data type may be
// classified into domain. The kind declared for the domain must admit the
// data type; built-in primitives are admitted by every kind (every domain
// can hold plain bools/ints/floats), matching the original implementation's
// treatment of scalar/array built-ins as universally classifiable.
//
// Open question (spec.md section 9): whether a *string* literal may be
// classified into an arbitrary domain is left unspecified upstream. We
// resolve it by requiring the domain's kind to explicitly admit "string";
// kinds that don't list it reject classifying string literals.
func CanClassify(domain *Domain, data DataType) bool {
	b, isBuiltin := data.(*Builtin)
	if !isBuiltin {
		return domain.Kind.Admits(data.DataString())
	}
	if b.Kind == PrimString {
		return domain.Kind.Admits("string")
	}
	return true
}

// CanDeclassify reports whether a private value may be declassified back to
// public. Declassification is only admissible on data types that have a
// public-compatible representation — i.e. the reverse of CanClassify.
func CanDeclassify(domain *Domain, data DataType) bool {
	return CanClassify(domain, data)
}
