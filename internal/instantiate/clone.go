package instantiate

import (
	"secrecc/internal/ast"
	"secrecc/internal/types"
)

// instantiateTypeExpr rewrites a type annotation's quantifier-referencing
// fragments into their concrete spelling (original_source's
// typechecker/Templates.cpp binds each TreeNodeTypeF's identifier the same
// way, just against a live SymbolTable entry instead of a string). te.Dim is
// never quantifier-bound (see checker.resolveTypeExpr's grammar-limitation
// comment), so it always carries over unchanged.
func instantiateTypeExpr(te *ast.TypeExpr, subst types.Substitution) *ast.TypeExpr {
	nt := &ast.TypeExpr{Base: te.Base, Security: te.Security, DataName: te.DataName, Dim: te.Dim}
	if arg, ok := subst[te.Security]; ok && arg.Kind == types.SecVar {
		if arg.Security.IsPublic() {
			nt.Security = ""
		} else {
			nt.Security = arg.Security.Domain.Name
		}
	}
	if arg, ok := subst[te.DataName]; ok && arg.Kind == types.DataVar {
		nt.DataName = arg.Data.DataString()
	}
	return nt
}

// instantiateDomainName resolves a classify/domainid target that may name a
// domain quantifier instead of a concrete domain.
func instantiateDomainName(name string, subst types.Substitution) string {
	if arg, ok := subst[name]; ok && arg.Kind == types.SecVar && !arg.Security.IsPublic() {
		return arg.Security.Domain.Name
	}
	return name
}

func cloneParam(p *ast.Param, subst types.Substitution) *ast.Param {
	return &ast.Param{Base: p.Base, Name: p.Name, Type: instantiateTypeExpr(p.Type, subst)}
}

// cloneProcedureDecl produces an independent copy of a template's body,
// with every quantifier-referencing fragment resolved against subst, so the
// clone can be type-checked on its own as an ordinary concrete procedure
// (spec.md section 4.4; grounded on TemplateInstantiator::add cloning
// body->clone(0) in original_source's typechecker/Templates.cpp).
func cloneProcedureDecl(d *ast.ProcedureDecl, subst types.Substitution) *ast.ProcedureDecl {
	clone := &ast.ProcedureDecl{
		Base:         d.Base,
		Name:         d.Name,
		Params:       make([]*ast.Param, len(d.Params)),
		IsOperator:   d.IsOperator,
		OperatorName: d.OperatorName,
		IsCast:       d.IsCast,
	}
	for i, p := range d.Params {
		clone.Params[i] = cloneParam(p, subst)
	}
	if d.ReturnType != nil {
		clone.ReturnType = instantiateTypeExpr(d.ReturnType, subst)
	}
	clone.Body = cloneCompoundStmt(d.Body, subst)
	return clone
}

func cloneCompoundStmt(s *ast.CompoundStmt, subst types.Substitution) *ast.CompoundStmt {
	out := &ast.CompoundStmt{Base: s.Base, Stmts: make([]ast.Stmt, len(s.Stmts))}
	for i, st := range s.Stmts {
		out.Stmts[i] = cloneStmt(st, subst)
	}
	return out
}

func cloneStmt(s ast.Stmt, subst types.Substitution) ast.Stmt {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		return cloneCompoundStmt(n, subst)

	case *ast.IfStmt:
		out := &ast.IfStmt{Base: n.Base, Cond: cloneExpr(n.Cond, subst), Then: cloneStmt(n.Then, subst)}
		if n.Else != nil {
			out.Else = cloneStmt(n.Else, subst)
		}
		return out

	case *ast.ForStmt:
		out := &ast.ForStmt{Base: n.Base, Body: cloneStmt(n.Body, subst)}
		if n.Init != nil {
			out.Init = cloneStmt(n.Init, subst)
		}
		if n.Cond != nil {
			out.Cond = cloneExpr(n.Cond, subst)
		}
		if n.Post != nil {
			out.Post = cloneStmt(n.Post, subst)
		}
		return out

	case *ast.WhileStmt:
		return &ast.WhileStmt{Base: n.Base, Cond: cloneExpr(n.Cond, subst), Body: cloneStmt(n.Body, subst)}

	case *ast.DoWhileStmt:
		return &ast.DoWhileStmt{Base: n.Base, Body: cloneStmt(n.Body, subst), Cond: cloneExpr(n.Cond, subst)}

	case *ast.BreakStmt:
		return &ast.BreakStmt{Base: n.Base}

	case *ast.ContinueStmt:
		return &ast.ContinueStmt{Base: n.Base}

	case *ast.ReturnStmt:
		out := &ast.ReturnStmt{Base: n.Base}
		if n.Value != nil {
			out.Value = cloneExpr(n.Value, subst)
		}
		return out

	case *ast.DeclStmt:
		out := &ast.DeclStmt{
			Base:    n.Base,
			Name:    n.Name,
			Type:    instantiateTypeExpr(n.Type, subst),
			Mutable: n.Mutable,
		}
		if n.Init != nil {
			out.Init = cloneExpr(n.Init, subst)
		}
		if n.Dims != nil {
			out.Dims = make([]ast.Expr, len(n.Dims))
			for i, dim := range n.Dims {
				out.Dims[i] = cloneExpr(dim, subst)
			}
		}
		return out

	case *ast.AssertStmt:
		return &ast.AssertStmt{Base: n.Base, Cond: cloneExpr(n.Cond, subst)}

	case *ast.ExprStmt:
		return &ast.ExprStmt{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.PrintStmt:
		out := &ast.PrintStmt{Base: n.Base, Args: make([]ast.Expr, len(n.Args))}
		for i, a := range n.Args {
			out.Args[i] = cloneExpr(a, subst)
		}
		return out

	case *ast.SyscallStmt:
		out := &ast.SyscallStmt{Base: n.Base, Name: n.Name, Args: make([]*ast.SyscallArg, len(n.Args))}
		for i, a := range n.Args {
			out.Args[i] = &ast.SyscallArg{Base: a.Base, Passing: a.Passing, ReadOnly: a.ReadOnly, Value: cloneExpr(a.Value, subst)}
		}
		return out

	default:
		panic("instantiate: unhandled statement form in template body")
	}
}

func cloneSliceIndex(s *ast.SliceIndex, subst types.Substitution) *ast.SliceIndex {
	out := &ast.SliceIndex{Base: s.Base, IsSlice: s.IsSlice}
	if s.From != nil {
		out.From = cloneExpr(s.From, subst)
	}
	if s.To != nil {
		out.To = cloneExpr(s.To, subst)
	}
	return out
}

func cloneLValue(lv ast.LValue, subst types.Substitution) ast.LValue {
	switch n := lv.(type) {
	case *ast.VariableLValue:
		return &ast.VariableLValue{Base: n.Base, Name: n.Name}

	case *ast.IndexedLValue:
		out := &ast.IndexedLValue{Base: n.Base, Target: cloneLValue(n.Target, subst), Slices: make([]*ast.SliceIndex, len(n.Slices))}
		for i, sl := range n.Slices {
			out.Slices[i] = cloneSliceIndex(sl, subst)
		}
		return out

	case *ast.SelectedLValue:
		return &ast.SelectedLValue{Base: n.Base, Target: cloneLValue(n.Target, subst), Field: n.Field}

	default:
		panic("instantiate: unhandled lvalue form in template body")
	}
}

func cloneExpr(e ast.Expr, subst types.Substitution) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident:
		return &ast.Ident{Base: n.Base, Name: n.Name}

	case *ast.Qualified:
		return &ast.Qualified{Base: n.Base, ModuleName: n.ModuleName, Name: n.Name}

	case *ast.Literal:
		return &ast.Literal{Base: n.Base, Kind: n.Kind, Int: n.Int, Flt: n.Flt, Bool: n.Bool, Str: n.Str}

	case *ast.ArrayConstructor:
		out := &ast.ArrayConstructor{Base: n.Base, Elements: make([]ast.Expr, len(n.Elements))}
		for i, el := range n.Elements {
			out.Elements[i] = cloneExpr(el, subst)
		}
		return out

	case *ast.IndexExpr:
		out := &ast.IndexExpr{Base: n.Base, Target: cloneExpr(n.Target, subst), Slices: make([]*ast.SliceIndex, len(n.Slices))}
		for i, sl := range n.Slices {
			out.Slices[i] = cloneSliceIndex(sl, subst)
		}
		return out

	case *ast.ShapeExpr:
		return &ast.ShapeExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.ReshapeExpr:
		out := &ast.ReshapeExpr{Base: n.Base, X: cloneExpr(n.X, subst), Dims: make([]ast.Expr, len(n.Dims))}
		for i, d := range n.Dims {
			out.Dims[i] = cloneExpr(d, subst)
		}
		return out

	case *ast.CatExpr:
		out := &ast.CatExpr{Base: n.Base, A: cloneExpr(n.A, subst), B: cloneExpr(n.B, subst)}
		if n.Axis != nil {
			out.Axis = cloneExpr(n.Axis, subst)
		}
		return out

	case *ast.SizeExpr:
		return &ast.SizeExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.StrlenExpr:
		return &ast.StrlenExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.ToStringExpr:
		return &ast.ToStringExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.BytesToStringExpr:
		return &ast.BytesToStringExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.StringToBytesExpr:
		return &ast.StringToBytesExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.ClassifyExpr:
		return &ast.ClassifyExpr{Base: n.Base, Domain: instantiateDomainName(n.Domain, subst), X: cloneExpr(n.X, subst)}

	case *ast.DeclassifyExpr:
		return &ast.DeclassifyExpr{Base: n.Base, X: cloneExpr(n.X, subst)}

	case *ast.DomainIDExpr:
		return &ast.DomainIDExpr{Base: n.Base, Domain: instantiateDomainName(n.Domain, subst)}

	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Base: n.Base, Op: n.Op, X: cloneExpr(n.X, subst)}

	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Base: n.Base, Op: n.Op, Left: cloneExpr(n.Left, subst), Right: cloneExpr(n.Right, subst)}

	case *ast.TernaryExpr:
		return &ast.TernaryExpr{Base: n.Base, Cond: cloneExpr(n.Cond, subst), Then: cloneExpr(n.Then, subst), Else: cloneExpr(n.Else, subst)}

	case *ast.AssignExpr:
		return &ast.AssignExpr{Base: n.Base, Op: n.Op, LHS: cloneLValue(n.LHS, subst), RHS: cloneExpr(n.RHS, subst)}

	case *ast.PrefixExpr:
		return &ast.PrefixExpr{Base: n.Base, Op: n.Op, X: cloneLValue(n.X, subst)}

	case *ast.PostfixExpr:
		return &ast.PostfixExpr{Base: n.Base, Op: n.Op, X: cloneLValue(n.X, subst)}

	case *ast.SelectionExpr:
		return &ast.SelectionExpr{Base: n.Base, Target: cloneExpr(n.Target, subst), Field: n.Field}

	case *ast.CallExpr:
		out := &ast.CallExpr{Base: n.Base, Callee: cloneExpr(n.Callee, subst), Args: make([]ast.Expr, len(n.Args))}
		for i, a := range n.Args {
			out.Args[i] = cloneExpr(a, subst)
		}
		return out

	case *ast.CastExpr:
		return &ast.CastExpr{Base: n.Base, Type: instantiateTypeExpr(n.Type, subst), X: cloneExpr(n.X, subst)}

	case *ast.AsExpr:
		return &ast.AsExpr{Base: n.Base, LValue: cloneLValue(n.LValue, subst)}

	default:
		panic("instantiate: unhandled expression form in template body")
	}
}
