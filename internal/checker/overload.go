package checker

import (
	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

// assignable reports whether a value of type arg can be passed where param
// is expected, either directly or through an implicit classify of a public
// argument into a private parameter domain (spec.md section 4.3). Dim and
// data must match exactly; only the security fragment may be promoted.
func assignable(arg, param *types.Type) bool {
	if arg.Dim != param.Dim {
		return false
	}
	if arg.Data.DataString() != param.Data.DataString() {
		return false
	}
	if param.Security.IsPublic() {
		return arg.Security.IsPublic()
	}
	if arg.Security.IsPublic() {
		return types.CanClassify(param.Security.Domain, arg.Data)
	}
	return arg.Security.Equal(param.Security)
}

// resolveCall picks the best-matching concrete procedure for a call with
// the given argument types, instantiating a template through c.Inst when
// no concrete overload matches (spec.md sections 4.3/4.4). Concrete
// procedures are always preferred over templates: a call that exactly
// matches a hand-written overload never pays for an instantiation.
func (c *Checker) resolveCall(name string, argTypes []*types.Type, pos ast.Position) (*symbols.Procedure, Status) {
	return c.resolveFromSet(c.overloads[name], name, argTypes, pos)
}

// resolveFromSet is resolveCall's candidate-ranking core, parameterized
// over an explicit overloadSet so cast resolution (which keys its set by
// target type name, not by the declared procedure name) can reuse it.
func (c *Checker) resolveFromSet(set *overloadSet, name string, argTypes []*types.Type, pos ast.Position) (*symbols.Procedure, Status) {
	if set == nil {
		c.err(pos, errors.ErrorUndefinedProcedure, "no procedure or operator named `%s`", name)
		return nil, ErrorContinue
	}

	var concreteMatches []*symbols.Procedure
	for _, p := range set.procs {
		pt := p.ProcType()
		if len(pt.Params) != len(argTypes) {
			continue
		}
		if allAssignable(argTypes, pt.Params) {
			concreteMatches = append(concreteMatches, p)
		}
	}
	switch len(concreteMatches) {
	case 1:
		return concreteMatches[0], OK
	case 0:
		// fall through to template resolution below
	default:
		c.err(pos, errors.ErrorAmbiguousOverload, "call to `%s` matches %d overloads", name, len(concreteMatches))
		return nil, ErrorContinue
	}

	type templateMatch struct {
		tmpl  *symbols.Template
		subst types.Substitution
	}
	var tmplMatches []templateMatch
	for _, tmpl := range set.tmpls {
		if len(tmpl.ParamTypes) != len(argTypes) {
			continue
		}
		subst := make(types.Substitution)
		ok := true
		for i, pattern := range tmpl.ParamTypes {
			concrete := promoteForUnify(pattern, argTypes[i])
			if err := types.Unify(pattern, concrete, subst); err != nil {
				ok = false
				break
			}
		}
		if ok {
			tmplMatches = append(tmplMatches, templateMatch{tmpl, subst})
		}
	}
	if len(tmplMatches) == 0 {
		c.err(pos, errors.ErrorUndefinedProcedure, "no procedure or template overload of `%s` accepts these argument types", name)
		return nil, ErrorContinue
	}

	best := tmplMatches[0]
	bestRank := specRank(best.tmpl)
	ambiguous := false
	for _, m := range tmplMatches[1:] {
		rank := specRank(m.tmpl)
		switch compareRank(rank, bestRank) {
		case -1:
			best, bestRank, ambiguous = m, rank, false
		case 0:
			ambiguous = true
		}
	}
	if ambiguous {
		c.err(pos, errors.ErrorAmbiguousOverload, "call to `%s` matches multiple equally specific templates", name)
		return nil, ErrorContinue
	}
	return c.Inst.Request(best.tmpl, best.subst), OK
}

// promoteForUnify lets a public argument unify against a pattern whose
// security fragment is a concrete private domain (the same promotion
// resolveCall gives concrete overloads), by substituting in that domain
// before calling Unify; Unify itself never promotes.
func promoteForUnify(pattern, arg *types.Type) *types.Type {
	if !pattern.Security.IsVar() && !pattern.Security.IsPublic() && arg.Security.IsPublic() {
		if types.CanClassify(pattern.Security.Domain, arg.Data) {
			return &types.Type{Security: pattern.Security, Data: arg.Data, Dim: arg.Dim}
		}
	}
	return arg
}

func allAssignable(args, params []*types.Type) bool {
	for i, a := range args {
		if !assignable(a, params[i]) {
			return false
		}
	}
	return true
}

type rank struct{ vars, constrained, dependent int }

func specRank(t *symbols.Template) rank {
	v, c, d := t.Specificity()
	return rank{v, c, d}
}

// compareRank orders two specificity tuples lexicographically: -1 if a is
// the smaller (more specific) tuple, 1 if b is, 0 if they are equal
// (ambiguous).
func compareRank(a, b rank) int {
	for _, d := range [3]int{a.vars - b.vars, a.constrained - b.constrained, a.dependent - b.dependent} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// resolveOperator looks up a binary or unary operator overload (a template
// or concrete procedure declared with `operator`) when no built-in
// operator semantics apply to the operand types.
func (c *Checker) resolveOperator(op string, argTypes []*types.Type, pos ast.Position) (*symbols.Procedure, Status) {
	return c.resolveCall(op, argTypes, pos)
}
