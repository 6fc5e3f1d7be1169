package checker

import (
	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

// checkExpr resolves e's type, caches it on the node, and returns the
// folded Status for the subtree (spec.md section 4.3). On error it still
// returns a usable type (defaulting to public int) so the caller can keep
// checking the surrounding expression instead of aborting the whole walk.
func (c *Checker) checkExpr(scope *symbols.Scope, e ast.Expr) (*types.Type, Status) {
	t, st := c.checkExprInner(scope, e)
	e.SetCachedType(t)
	return t, st
}

func (c *Checker) fallback() *types.Type { return c.Ctx.DefaultInt() }

func (c *Checker) checkExprInner(scope *symbols.Scope, e ast.Expr) (*types.Type, Status) {
	switch n := e.(type) {
	case *ast.Ident:
		return c.checkIdent(scope, n)
	case *ast.Qualified:
		if sym, ok := scope.Find(symbols.CatVariable, n.Name); ok {
			n.ResolvedSym = sym
			return sym.(*symbols.Variable).Type, OK
		}
		c.err(n.Pos(), errors.ErrorUndefinedVariable, "undefined variable `%s::%s`", n.ModuleName, n.Name)
		return c.fallback(), ErrorContinue

	case *ast.Literal:
		return c.checkLiteral(n), OK

	case *ast.ArrayConstructor:
		return c.checkArrayConstructor(scope, n)

	case *ast.IndexExpr:
		return c.checkIndexExpr(scope, n)

	case *ast.ShapeExpr:
		c.checkExpr(scope, n.X)
		return c.Ctx.Public(&types.Builtin{Kind: types.PrimUint64}, 1), OK

	case *ast.ReshapeExpr:
		xt, st := c.checkExpr(scope, n.X)
		for _, d := range n.Dims {
			c.checkExpr(scope, d)
		}
		return c.Ctx.Intern(xt.Security, xt.Data, len(n.Dims)), st

	case *ast.CatExpr:
		return c.checkCatExpr(scope, n)

	case *ast.SizeExpr:
		c.checkExpr(scope, n.X)
		return c.Ctx.PublicScalar(types.PrimUint64), OK

	case *ast.StrlenExpr:
		xt, st := c.checkExpr(scope, n.X)
		if !xt.IsString() {
			c.err(n.Pos(), errors.ErrorTypeMismatch, "strlen expects a string operand")
			st = worse(st, ErrorContinue)
		}
		return c.Ctx.PublicScalar(types.PrimUint64), st

	case *ast.ToStringExpr:
		xt, st := c.checkExpr(scope, n.X)
		return c.Ctx.Intern(xt.Security, &types.Builtin{Kind: types.PrimString}, 0), st

	case *ast.BytesToStringExpr:
		xt, st := c.checkExpr(scope, n.X)
		return c.Ctx.Intern(xt.Security, &types.Builtin{Kind: types.PrimString}, 0), st

	case *ast.StringToBytesExpr:
		xt, st := c.checkExpr(scope, n.X)
		return c.Ctx.Intern(xt.Security, &types.Builtin{Kind: types.PrimUint8}, 1), st

	case *ast.ClassifyExpr:
		return c.checkClassifyExpr(scope, n)

	case *ast.DeclassifyExpr:
		return c.checkDeclassifyExpr(scope, n)

	case *ast.DomainIDExpr:
		if _, ok := scope.Find(symbols.CatDomain, n.Domain); !ok {
			c.err(n.Pos(), errors.ErrorUndefinedVariable, "undefined domain `%s`", n.Domain)
			return c.fallback(), ErrorContinue
		}
		return c.Ctx.PublicScalar(types.PrimUint64), OK

	case *ast.UnaryExpr:
		return c.checkUnaryExpr(scope, n)

	case *ast.BinaryExpr:
		return c.checkBinaryExpr(scope, n)

	case *ast.TernaryExpr:
		return c.checkTernaryExpr(scope, n)

	case *ast.AssignExpr:
		return c.checkAssignExpr(scope, n)

	case *ast.PrefixExpr:
		return c.checkIncDec(scope, n.X, n.Op, n.Pos())

	case *ast.PostfixExpr:
		return c.checkIncDec(scope, n.X, n.Op, n.Pos())

	case *ast.SelectionExpr:
		return c.checkSelectionExpr(scope, n)

	case *ast.CallExpr:
		return c.checkCallExpr(scope, n)

	case *ast.CastExpr:
		return c.checkCastExpr(scope, n)

	case *ast.AsExpr:
		return c.checkLValue(scope, n.LValue)

	default:
		c.err(e.Pos(), errors.ErrorGenericSemantic, "unhandled expression form")
		return c.fallback(), ErrorContinue
	}
}

func (c *Checker) checkIdent(scope *symbols.Scope, n *ast.Ident) (*types.Type, Status) {
	if sym, ok := scope.Find(symbols.CatVariable, n.Name); ok {
		n.ResolvedSym = sym
		return sym.(*symbols.Variable).Type, OK
	}
	if sym, ok := scope.Find(symbols.CatConstant, n.Name); ok {
		n.ResolvedSym = sym
		return sym.(*symbols.Constant).Type, OK
	}
	c.err(n.Pos(), errors.ErrorUndefinedVariable, "undefined variable `%s`", n.Name)
	return c.fallback(), ErrorContinue
}

func (c *Checker) checkLiteral(n *ast.Literal) *types.Type {
	switch n.Kind {
	case ast.LitInt:
		return c.Ctx.DefaultInt()
	case ast.LitFloat:
		return c.Ctx.DefaultFloat()
	case ast.LitBool:
		return c.Ctx.DefaultBool()
	case ast.LitString:
		return c.Ctx.DefaultString()
	default:
		return c.fallback()
	}
}

func (c *Checker) checkArrayConstructor(scope *symbols.Scope, n *ast.ArrayConstructor) (*types.Type, Status) {
	if len(n.Elements) == 0 {
		return c.Ctx.Public(&types.Builtin{Kind: types.PrimInt64}, 1), OK
	}
	status := OK
	elemType, st := c.checkExpr(scope, n.Elements[0])
	status = worse(status, st)
	for _, el := range n.Elements[1:] {
		t, st := c.checkExpr(scope, el)
		status = worse(status, st)
		joined, ok := types.JoinSecurity(elemType.Security, t.Security)
		if !ok || elemType.Data.DataString() != t.Data.DataString() {
			c.err(el.Pos(), errors.ErrorTypeMismatch, "array elements must share a common type")
			status = ErrorContinue
			continue
		}
		elemType = c.Ctx.Intern(joined, elemType.Data, 0)
	}
	return c.Ctx.Intern(elemType.Security, elemType.Data, 1), status
}

func (c *Checker) checkIndexExpr(scope *symbols.Scope, n *ast.IndexExpr) (*types.Type, Status) {
	xt, status := c.checkExpr(scope, n.Target)
	if xt.Dim != len(n.Slices) {
		c.err(n.Pos(), errors.ErrorInvalidIndex, "expected %d index expressions for a rank-%d array, got %d", xt.Dim, xt.Dim, len(n.Slices))
		status = worse(status, ErrorContinue)
	}
	resultDim := 0
	for _, sl := range n.Slices {
		if sl.From != nil {
			_, st := c.checkExpr(scope, sl.From)
			status = worse(status, st)
		}
		if sl.To != nil {
			_, st := c.checkExpr(scope, sl.To)
			status = worse(status, st)
		}
		if sl.IsSlice {
			resultDim++
		}
	}
	return c.Ctx.Intern(xt.Security, xt.Data, resultDim), status
}

func (c *Checker) checkCatExpr(scope *symbols.Scope, n *ast.CatExpr) (*types.Type, Status) {
	at, st1 := c.checkExpr(scope, n.A)
	bt, st2 := c.checkExpr(scope, n.B)
	status := worse(st1, st2)
	if n.Axis != nil {
		_, st := c.checkExpr(scope, n.Axis)
		status = worse(status, st)
	}
	if at.Data.DataString() != bt.Data.DataString() || at.Dim != bt.Dim {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "cat operands must share the same data type and rank")
		return at, ErrorContinue
	}
	joined, ok := types.JoinSecurity(at.Security, bt.Security)
	if !ok {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "cat operands belong to incompatible private domains")
		return at, ErrorContinue
	}
	return c.Ctx.Intern(joined, at.Data, at.Dim), status
}

func (c *Checker) checkClassifyExpr(scope *symbols.Scope, n *ast.ClassifyExpr) (*types.Type, Status) {
	xt, status := c.checkExpr(scope, n.X)
	domSym, ok := scope.Find(symbols.CatDomain, n.Domain)
	if !ok {
		c.err(n.Pos(), errors.ErrorUndefinedVariable, "undefined domain `%s`", n.Domain)
		return xt, ErrorContinue
	}
	dom := domSym.(*symbols.DomainSym).Domain
	if !xt.Security.IsPublic() {
		c.err(n.Pos(), errors.ErrorInvalidClassify, "classify expects a public operand")
		return xt, ErrorContinue
	}
	if !types.CanClassify(dom, xt.Data) {
		c.err(n.Pos(), errors.ErrorInvalidClassify, "domain `%s` does not admit data type `%s`", n.Domain, xt.Data.DataString())
		status = ErrorContinue
	}
	return c.Ctx.Intern(types.PrivateSecurity(dom), xt.Data, xt.Dim), status
}

func (c *Checker) checkDeclassifyExpr(scope *symbols.Scope, n *ast.DeclassifyExpr) (*types.Type, Status) {
	xt, status := c.checkExpr(scope, n.X)
	if xt.Security.IsPublic() {
		c.err(n.Pos(), errors.ErrorInvalidDeclassify, "declassify expects a private operand")
		return xt, ErrorContinue
	}
	if !types.CanDeclassify(xt.Security.Domain, xt.Data) {
		c.err(n.Pos(), errors.ErrorInvalidDeclassify, "domain `%s` does not permit declassifying data type `%s`", xt.Security.Domain.Name, xt.Data.DataString())
		status = ErrorContinue
	}
	return c.Ctx.Intern(types.PublicSecurity(), xt.Data, xt.Dim), status
}

var unaryNumeric = map[string]bool{"-": true, "~": true}

func (c *Checker) checkUnaryExpr(scope *symbols.Scope, n *ast.UnaryExpr) (*types.Type, Status) {
	xt, status := c.checkExpr(scope, n.X)
	if _, isBuiltin := xt.Data.(*types.Builtin); isBuiltin {
		switch {
		case n.Op == "!" && xt.IsBool():
			return xt, status
		case unaryNumeric[n.Op] && xt.IsNumeric():
			return xt, status
		}
	}
	proc, st := c.resolveOperator(n.Op, []*types.Type{xt}, n.Pos())
	if st != OK {
		return c.fallback(), worse(status, st)
	}
	n.ResolvedProc = proc
	return proc.ProcType().ReturnType, status
}

// checkBinaryExpr implements the join-then-classify rule (spec.md section
// 4.3): operands are joined to a common security, the public side (if any)
// is classified into the joined domain via a synthetic ClassifyExpr spliced
// directly into the AST's Left/Right field, and only then is the operator
// applied.
func (c *Checker) checkBinaryExpr(scope *symbols.Scope, n *ast.BinaryExpr) (*types.Type, Status) {
	lt, st1 := c.checkExpr(scope, n.Left)
	rt, st2 := c.checkExpr(scope, n.Right)
	status := worse(st1, st2)

	if isLogical(n.Op) {
		if !lt.IsBool() || !rt.IsBool() || !lt.Security.IsPublic() || !rt.Security.IsPublic() {
			c.err(n.Pos(), errors.ErrorInvalidOperation, "`%s` requires public bool operands (short-circuit evaluation forbids private conditions)", n.Op)
			return c.Ctx.DefaultBool(), ErrorContinue
		}
		return c.Ctx.DefaultBool(), status
	}

	joined, ok := types.JoinSecurity(lt.Security, rt.Security)
	if !ok {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "operands of `%s` belong to incompatible private domains", n.Op)
		return c.fallback(), ErrorContinue
	}
	if !joined.IsPublic() {
		if lt.Security.IsPublic() {
			n.Left = c.spliceClassify(n.Left, joined.Domain, lt)
			lt = n.Left.CachedType()
		}
		if rt.Security.IsPublic() {
			n.Right = c.spliceClassify(n.Right, joined.Domain, rt)
			rt = n.Right.CachedType()
		}
	}

	if _, lBuiltin := lt.Data.(*types.Builtin); lBuiltin {
		if _, rBuiltin := rt.Data.(*types.Builtin); rBuiltin && lt.Data.DataString() == rt.Data.DataString() && lt.Dim == rt.Dim {
			if resultType, ok := c.builtinBinaryResult(n.Op, lt); ok {
				return resultType, status
			}
		}
	}

	proc, st := c.resolveOperator(n.Op, []*types.Type{lt, rt}, n.Pos())
	if st != OK {
		return c.fallback(), worse(status, st)
	}
	n.ResolvedProc = proc
	return proc.ProcType().ReturnType, status
}

// spliceClassify wraps expr in a ClassifyExpr targeting domain, in place of
// expr's slot in its parent, and caches its resolved type.
func (c *Checker) spliceClassify(expr ast.Expr, domain *types.Domain, orig *types.Type) ast.Expr {
	ce := &ast.ClassifyExpr{Domain: domain.Name, X: expr}
	ce.SetCachedType(c.Ctx.Intern(types.PrivateSecurity(domain), orig.Data, orig.Dim))
	return ce
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true, "<<": true, ">>": true}

func isLogical(op string) bool { return op == "&&" || op == "||" }

func (c *Checker) builtinBinaryResult(op string, operandType *types.Type) (*types.Type, bool) {
	switch {
	case comparisonOps[op]:
		return c.Ctx.Intern(operandType.Security, &types.Builtin{Kind: types.PrimBool}, operandType.Dim), true
	case arithOps[op] && operandType.IsNumeric():
		return operandType, true
	case bitwiseOps[op] && operandType.Data.(*types.Builtin).Kind.IsInteger():
		return operandType, true
	default:
		return nil, false
	}
}

func (c *Checker) checkTernaryExpr(scope *symbols.Scope, n *ast.TernaryExpr) (*types.Type, Status) {
	ct, st1 := c.checkExpr(scope, n.Cond)
	tt, st2 := c.checkExpr(scope, n.Then)
	et, st3 := c.checkExpr(scope, n.Else)
	status := worse(worse(st1, st2), st3)
	if !ct.IsBool() {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "ternary condition must be bool")
		status = ErrorContinue
	}
	if tt.Data.DataString() != et.Data.DataString() || tt.Dim != et.Dim {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "ternary branches must share a common type")
		return tt, ErrorContinue
	}
	joined, ok := types.JoinSecurity(tt.Security, et.Security)
	if !ok {
		c.err(n.Pos(), errors.ErrorTypeMismatch, "ternary branches belong to incompatible private domains")
		return tt, ErrorContinue
	}
	return c.Ctx.Intern(joined, tt.Data, tt.Dim), status
}

func (c *Checker) checkAssignExpr(scope *symbols.Scope, n *ast.AssignExpr) (*types.Type, Status) {
	lt, st1 := c.checkLValue(scope, n.LHS)
	rt, st2 := c.checkExpr(scope, n.RHS)
	status := worse(st1, st2)

	if n.Op != "=" {
		op := n.Op[:len(n.Op)-1] // "+=" -> "+"
		if !arithOps[op] && !bitwiseOps[op] {
			c.err(n.Pos(), errors.ErrorInvalidOperation, "unsupported compound assignment `%s`", n.Op)
			return lt, ErrorContinue
		}
	}

	if assignable(rt, lt) {
		if rt.Security.IsPublic() && !lt.Security.IsPublic() {
			n.RHS = c.spliceClassify(n.RHS, lt.Security.Domain, rt)
		}
		return lt, status
	}
	c.err(n.Pos(), errors.ErrorInvalidAssignment, "cannot assign %s to %s", rt, lt)
	return lt, ErrorContinue
}

func (c *Checker) checkIncDec(scope *symbols.Scope, lv ast.LValue, op string, pos ast.Position) (*types.Type, Status) {
	t, status := c.checkLValue(scope, lv)
	if !t.IsNumeric() {
		c.err(pos, errors.ErrorInvalidOperation, "`%s` requires a numeric operand", op)
		return t, ErrorContinue
	}
	return t, status
}

func (c *Checker) checkSelectionExpr(scope *symbols.Scope, n *ast.SelectionExpr) (*types.Type, Status) {
	tt, status := c.checkExpr(scope, n.Target)
	st, ok := tt.Data.(*types.StructType)
	if !ok {
		c.err(n.Pos(), errors.ErrorFieldNotFound, "`%s` is not a struct", tt)
		return c.fallback(), ErrorContinue
	}
	field, ok := st.FieldByName(n.Field)
	if !ok {
		c.err(n.Pos(), errors.ErrorFieldNotFound, "struct `%s` has no field `%s`", st.Name, n.Field)
		return c.fallback(), ErrorContinue
	}
	return field.Type, status
}

func (c *Checker) checkCallExpr(scope *symbols.Scope, n *ast.CallExpr) (*types.Type, Status) {
	name, pos, ok := calleeName(n.Callee)
	if !ok {
		c.err(n.Pos(), errors.ErrorGenericSemantic, "call target is not a procedure name")
		return c.fallback(), ErrorContinue
	}
	status := OK
	argTypes := make([]*types.Type, len(n.Args))
	for i, a := range n.Args {
		t, st := c.checkExpr(scope, a)
		argTypes[i] = t
		status = worse(status, st)
	}
	proc, st := c.resolveCall(name, argTypes, pos)
	status = worse(status, st)
	if proc == nil {
		return c.fallback(), status
	}
	n.ResolvedProc = proc
	for i, pt := range proc.ProcType().Params {
		if argTypes[i].Security.IsPublic() && !pt.Security.IsPublic() {
			n.Args[i] = c.spliceClassify(n.Args[i], pt.Security.Domain, argTypes[i])
		}
	}
	if proc.ProcType().ReturnType == nil {
		return types.VoidType, status
	}
	return proc.ProcType().ReturnType, status
}

func calleeName(e ast.Expr) (string, ast.Position, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, n.Pos(), true
	case *ast.Qualified:
		return n.Name, n.Pos(), true
	default:
		return "", e.Pos(), false
	}
}

func (c *Checker) checkCastExpr(scope *symbols.Scope, n *ast.CastExpr) (*types.Type, Status) {
	xt, status := c.checkExpr(scope, n.X)
	target, err := c.resolveTypeExpr(n.Type, nil)
	if err != nil {
		c.err(n.Pos(), errors.ErrorGenericSemantic, "%s", err.Error())
		return c.fallback(), ErrorContinue
	}
	// Built-in primitive-to-primitive conversions (e.g. int32(x) widening
	// or narrowing another numeric/bool) never need a user cast overload.
	if _, lok := target.Data.(*types.Builtin); lok {
		if _, rok := xt.Data.(*types.Builtin); rok && xt.Dim == 0 && target.Dim == 0 {
			return c.Ctx.Intern(xt.Security, target.Data, 0), status
		}
	}
	targetName := target.Data.DataString()
	proc, st := c.resolveFromSet(c.castsByTarget[targetName], targetName, []*types.Type{xt}, n.Pos())
	if st != OK || proc == nil {
		return target, worse(status, st)
	}
	n.ResolvedProc = proc
	return proc.ProcType().ReturnType, status
}
