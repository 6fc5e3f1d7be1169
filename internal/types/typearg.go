package types

import "fmt"

// TypeArg is a concrete argument bound to a template quantifier during
// instantiation. Its Kind says which fragment it fills.
type TypeArg struct {
	Kind     VarKind
	Security *Security // valid when Kind == SecVar
	Data     DataType  // valid when Kind == DataVar
	Dim      int       // valid when Kind == DimVar
}

func SecArg(s *Security) TypeArg { return TypeArg{Kind: SecVar, Security: s} }
func DataArg(d DataType) TypeArg { return TypeArg{Kind: DataVar, Data: d} }
func DimArg(d int) TypeArg       { return TypeArg{Kind: DimVar, Dim: d} }

func (a TypeArg) String() string {
	switch a.Kind {
	case SecVar:
		return a.Security.String()
	case DataVar:
		return a.Data.DataString()
	case DimVar:
		return fmt.Sprintf("%d", a.Dim)
	default:
		return "?"
	}
}

// Substitution maps quantifier names to the concrete TypeArg chosen for
// them. It is the output of the unifier and the input to template cloning.
type Substitution map[string]TypeArg

// Key returns a canonical, order-independent key naming the (template,
// argument-tuple) instantiation this substitution would produce for the
// given quantifier name order. Used by the instantiator to memoize clones.
func (s Substitution) Key(order []string) string {
	out := ""
	for i, name := range order {
		if i > 0 {
			out += ","
		}
		out += name + "=" + s[name].String()
	}
	return out
}
