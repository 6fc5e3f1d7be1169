package types

import "fmt"

// Unify matches a pattern type (possibly containing TypeVar fragments, as
// found in a template's declared parameter/return types) against a
// concrete type produced by the call site, extending subst with any
// bindings discovered. It fails if the pattern and concrete type disagree
// on a fragment that is not a variable, or if a variable would be bound
// inconsistently to two different values.
func Unify(pattern, concrete *Type, subst Substitution) error {
	if err := unifySecurity(pattern.Security, concrete.Security, subst); err != nil {
		return err
	}
	if err := unifyData(pattern.Data, concrete.Data, subst); err != nil {
		return err
	}
	return unifyDim(pattern, concrete, subst)
}

func unifySecurity(pattern, concrete *Security, subst Substitution) error {
	if pattern.IsVar() {
		if k := pattern.Var.Constraint; k != nil && (concrete.IsVar() || concrete.IsPublic() || concrete.Domain.Kind != k) {
			return fmt.Errorf("security %s does not satisfy kind %s", concrete, k.Name)
		}
		return bindVar(pattern.Var, SecArg(concrete), subst)
	}
	if !pattern.Equal(concrete) {
		return fmt.Errorf("security mismatch: expected %s, got %s", pattern, concrete)
	}
	return nil
}

func unifyData(pattern, concrete DataType, subst Substitution) error {
	if v, ok := pattern.(*TypeVar); ok {
		if v.Constraint != nil {
			if !v.Constraint.Admits(concrete.DataString()) {
				return fmt.Errorf("type %s does not satisfy kind %s", concrete.DataString(), v.Constraint.Name)
			}
		}
		return bindVar(v, DataArg(concrete), subst)
	}
	if pattern.dataKey() != concrete.dataKey() {
		return fmt.Errorf("data type mismatch: expected %s, got %s", pattern.DataString(), concrete.DataString())
	}
	return nil
}

func unifyDim(pattern, concrete *Type, subst Substitution) error {
	if pattern.DimVar != nil {
		return bindVar(pattern.DimVar, DimArg(concrete.Dim), subst)
	}
	if pattern.Dim != concrete.Dim {
		return fmt.Errorf("dimensionality mismatch: expected %d, got %d", pattern.Dim, concrete.Dim)
	}
	return nil
}

func bindVar(v *TypeVar, arg TypeArg, subst Substitution) error {
	if existing, ok := subst[v.Name]; ok {
		if existing.String() != arg.String() {
			return fmt.Errorf("quantifier %s bound to both %s and %s", v.Name, existing, arg)
		}
		return nil
	}
	subst[v.Name] = arg
	return nil
}

// Substitute replaces every TypeVar fragment in t with its binding from
// subst, returning a fully concrete type interned through ctx. It panics if
// a referenced variable has no binding — callers must unify first.
func Substitute(ctx *Context, t *Type, subst Substitution) *Type {
	sec := t.Security
	if sec.IsVar() {
		arg, ok := subst[sec.Var.Name]
		if !ok {
			panic("unbound security quantifier " + sec.Var.Name)
		}
		sec = arg.Security
	}

	data := t.Data
	if v, ok := data.(*TypeVar); ok {
		arg, ok := subst[v.Name]
		if !ok {
			panic("unbound data quantifier " + v.Name)
		}
		data = arg.Data
	}

	dim := t.Dim
	if t.DimVar != nil {
		arg, ok := subst[t.DimVar.Name]
		if !ok {
			panic("unbound dim quantifier " + t.DimVar.Name)
		}
		dim = arg.Dim
	}

	return ctx.Intern(sec, data, dim)
}
