package parser

import (
	"fmt"
	"strconv"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"secrecc/internal/ast"
	"secrecc/internal/types"
)

// toPos adapts a participle source position to ast.Position.
func toPos(p plexer.Position) ast.Position {
	return ast.Position{File: p.Filename, Line: p.Line, Col: p.Column}
}

func base(p plexer.Position) ast.Base {
	pos := toPos(p)
	return ast.Base{Start: pos, End: pos}
}

func convertProgram(file string, g *gProgram) (*ast.Module, error) {
	if len(g.Modules) == 0 {
		return nil, fmt.Errorf("%s: no module declaration found", file)
	}
	// Only the first module block of a file is converted; any further
	// module blocks in the same file are dropped without a diagnostic.
	return convertModule(g.Modules[0])
}

func convertModule(g *gModule) (*ast.Module, error) {
	m := &ast.Module{Base: base(g.Pos), Name: g.Name}
	for _, item := range g.Items {
		conv, err := convertItem(item)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, conv)
	}
	return m, nil
}

func convertItem(g *gItem) (ast.ModuleItem, error) {
	switch {
	case g.Import != nil:
		return &ast.Import{Base: base(g.Import.Pos), ModuleName: g.Import.Name}, nil
	case g.Kind != nil:
		return &ast.KindDecl{Base: base(g.Kind.Pos), Name: g.Kind.Name, Members: g.Kind.Members}, nil
	case g.Domain != nil:
		return &ast.DomainDecl{Base: base(g.Domain.Pos), Name: g.Domain.Name, KindName: g.Domain.Kind}, nil
	case g.Struct != nil:
		return convertStruct(g.Struct)
	case g.Template != nil:
		return convertTemplate(g.Template)
	case g.Proc != nil:
		return convertProc(g.Proc, nil)
	}
	return nil, fmt.Errorf("unreachable module item")
}

func convertStruct(g *gStruct) (*ast.StructDecl, error) {
	s := &ast.StructDecl{Base: base(g.Pos), Name: g.Name}
	for _, f := range g.Fields {
		s.Fields = append(s.Fields, &ast.StructFieldDecl{Base: base(f.Pos), Name: f.Name, Type: convertType(f.Type)})
	}
	return s, nil
}

func convertTemplate(g *gTemplate) (*ast.TemplateDecl, error) {
	t := &ast.TemplateDecl{Base: base(g.Pos)}
	for _, q := range g.Quantifiers {
		t.Quantifiers = append(t.Quantifiers, &ast.Quantifier{
			Base: base(q.Pos), VarKind: q.VarKind, Name: q.Name, Constraint: q.Constraint,
		})
	}
	decl, err := convertProc(g.Decl, t.Quantifiers)
	if err != nil {
		return nil, err
	}
	t.Decl = decl
	return t, nil
}

func convertProc(g *gProc, quantifiers []*ast.Quantifier) (*ast.ProcedureDecl, error) {
	p := &ast.ProcedureDecl{
		Base:        base(g.Pos),
		Quantifiers: quantifiers,
		IsOperator:  g.IsOperator,
		IsCast:      g.IsCast,
	}
	if g.NameOrOp.OperatorName != "" {
		p.IsOperator = true
		p.OperatorName = g.NameOrOp.OperatorName
		p.Name = "operator" + g.NameOrOp.OperatorName
	} else {
		p.Name = g.NameOrOp.Name
	}
	if g.ReturnType != nil && g.ReturnType.DataName != "void" {
		p.ReturnType = convertType(g.ReturnType)
	}
	for _, param := range g.Params {
		p.Params = append(p.Params, &ast.Param{Base: base(param.Pos), Name: param.Name, Type: convertType(param.Type)})
	}
	body, err := convertCompound(g.Body)
	if err != nil {
		return nil, err
	}
	p.Body = body
	return p, nil
}

func convertType(g *gType) *ast.TypeExpr {
	t := &ast.TypeExpr{Base: base(g.Pos), Security: g.Security, DataName: g.DataName}
	if g.Dim != nil {
		t.Dim = *g.Dim
	}
	return t
}

func convertCompound(g *gCompound) (*ast.CompoundStmt, error) {
	c := &ast.CompoundStmt{Base: base(g.Pos)}
	for _, s := range g.Stmts {
		conv, err := convertStmt(s)
		if err != nil {
			return nil, err
		}
		c.Stmts = append(c.Stmts, conv)
	}
	return c, nil
}

func convertStmt(g *gStmt) (ast.Stmt, error) {
	switch {
	case g.If != nil:
		cond, err := convertExpr(g.If.Cond)
		if err != nil {
			return nil, err
		}
		then, err := convertStmt(g.If.Then)
		if err != nil {
			return nil, err
		}
		var elseStmt ast.Stmt
		if g.If.Else != nil {
			elseStmt, err = convertStmt(g.If.Else)
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStmt{Base: base(g.If.Pos), Cond: cond, Then: then, Else: elseStmt}, nil

	case g.For != nil:
		f := &ast.ForStmt{Base: base(g.For.Pos)}
		var err error
		if g.For.Init != nil {
			if f.Init, err = convertStmt(g.For.Init); err != nil {
				return nil, err
			}
		}
		if g.For.Cond != nil {
			if f.Cond, err = convertExpr(g.For.Cond); err != nil {
				return nil, err
			}
		}
		if g.For.Post != nil {
			if f.Post, err = convertStmt(g.For.Post); err != nil {
				return nil, err
			}
		}
		if f.Body, err = convertStmt(g.For.Body); err != nil {
			return nil, err
		}
		return f, nil

	case g.While != nil:
		cond, err := convertExpr(g.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := convertStmt(g.While.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Base: base(g.While.Pos), Cond: cond, Body: body}, nil

	case g.DoWhile != nil:
		body, err := convertStmt(g.DoWhile.Body)
		if err != nil {
			return nil, err
		}
		cond, err := convertExpr(g.DoWhile.Cond)
		if err != nil {
			return nil, err
		}
		return &ast.DoWhileStmt{Base: base(g.DoWhile.Pos), Body: body, Cond: cond}, nil

	case g.Block != nil:
		return convertCompound(g.Block)

	case g.Break != nil:
		return &ast.BreakStmt{Base: base(g.Break.Pos)}, nil

	case g.Continue != nil:
		return &ast.ContinueStmt{Base: base(g.Continue.Pos)}, nil

	case g.Return != nil:
		r := &ast.ReturnStmt{Base: base(g.Return.Pos)}
		if g.Return.Value != nil {
			v, err := convertExpr(g.Return.Value)
			if err != nil {
				return nil, err
			}
			r.Value = v
		}
		return r, nil

	case g.Assert != nil:
		cond, err := convertExpr(g.Assert.Cond)
		if err != nil {
			return nil, err
		}
		return &ast.AssertStmt{Base: base(g.Assert.Pos), Cond: cond}, nil

	case g.Print != nil:
		p := &ast.PrintStmt{Base: base(g.Print.Pos)}
		for _, a := range g.Print.Args {
			e, err := convertExpr(a)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, e)
		}
		return p, nil

	case g.Syscall != nil:
		return convertSyscall(g.Syscall)

	case g.Decl != nil:
		return convertDecl(g.Decl)

	case g.ExprStmt != nil:
		x, err := convertExpr(g.ExprStmt.X)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Base: base(g.ExprStmt.Pos), X: x}, nil
	}
	return nil, fmt.Errorf("unreachable statement")
}

func convertSyscall(g *gSyscall) (*ast.SyscallStmt, error) {
	s := &ast.SyscallStmt{Base: base(g.Pos), Name: unquote(g.Name)}
	for _, a := range g.Args {
		v, err := convertExpr(a.Value)
		if err != nil {
			return nil, err
		}
		var passing ast.SyscallPassing
		switch a.Passing {
		case "__return":
			passing = ast.SyscallReturn
		case "__push":
			passing = ast.SyscallPush
		case "__pushref":
			passing = ast.SyscallPushRef
		case "__pushcref":
			passing = ast.SyscallPushCRef
		}
		s.Args = append(s.Args, &ast.SyscallArg{Base: base(a.Pos), Passing: passing, ReadOnly: a.ReadOnly, Value: v})
	}
	return s, nil
}

func convertDecl(g *gDecl) (*ast.DeclStmt, error) {
	d := &ast.DeclStmt{Base: base(g.Pos), Name: g.Name, Type: convertType(g.Type), Mutable: g.Mutable}
	for _, dim := range g.Dims {
		e, err := convertExpr(dim)
		if err != nil {
			return nil, err
		}
		d.Dims = append(d.Dims, e)
	}
	if g.Init != nil {
		e, err := convertExpr(g.Init)
		if err != nil {
			return nil, err
		}
		d.Init = e
	}
	return d, nil
}

func convertExpr(g *gExpr) (ast.Expr, error) { return convertAssign(g.X) }

func convertAssign(g *gAssign) (ast.Expr, error) {
	left, err := convertTernary(g.Left)
	if err != nil {
		return nil, err
	}
	if g.Tail == nil {
		return left, nil
	}
	lv, err := toLValue(left)
	if err != nil {
		return nil, err
	}
	right, err := convertAssign(g.Tail.Right)
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{Base: base(g.Pos), Op: g.Tail.Op, LHS: lv, RHS: right}, nil
}

func convertTernary(g *gTernary) (ast.Expr, error) {
	cond, err := convertLogicalOr(g.Cond)
	if err != nil {
		return nil, err
	}
	if g.Tail == nil {
		return cond, nil
	}
	then, err := convertExpr(g.Tail.Then)
	if err != nil {
		return nil, err
	}
	els, err := convertTernary(g.Tail.Else)
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{Base: base(g.Pos), Cond: cond, Then: then, Else: els}, nil
}

func convertLogicalOr(g *gLogicalOr) (ast.Expr, error) {
	left, err := convertLogicalAnd(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertLogicalAnd(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertLogicalAnd(g *gLogicalAnd) (ast.Expr, error) {
	left, err := convertBitOr(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertBitOr(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertBitOr(g *gBitOr) (ast.Expr, error) {
	left, err := convertBitXor(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertBitXor(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertBitXor(g *gBitXor) (ast.Expr, error) {
	left, err := convertBitAnd(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertBitAnd(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertBitAnd(g *gBitAnd) (ast.Expr, error) {
	left, err := convertEquality(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertEquality(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertEquality(g *gEquality) (ast.Expr, error) {
	left, err := convertRelational(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertRelational(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertRelational(g *gRelational) (ast.Expr, error) {
	left, err := convertShift(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertShift(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertShift(g *gShift) (ast.Expr, error) {
	left, err := convertAdditive(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertAdditive(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertAdditive(g *gAdditive) (ast.Expr, error) {
	left, err := convertMultiplicative(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertMultiplicative(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertMultiplicative(g *gMultiplicative) (ast.Expr, error) {
	left, err := convertUnary(g.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range g.Ops {
		right, err := convertUnary(op.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(g.Pos), Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertUnary(g *gUnary) (ast.Expr, error) {
	if g.Prefix != nil {
		x, err := convertUnary(g.Prefix.X)
		if err != nil {
			return nil, err
		}
		switch g.Prefix.Op {
		case "++", "--":
			lv, err := toLValue(x)
			if err != nil {
				return nil, err
			}
			return &ast.PrefixExpr{Base: base(g.Pos), Op: g.Prefix.Op, X: lv}, nil
		default:
			return &ast.UnaryExpr{Base: base(g.Pos), Op: g.Prefix.Op, X: x}, nil
		}
	}
	return convertPostfix(g.Post)
}

func convertPostfix(g *gPostfix) (ast.Expr, error) {
	x, err := convertPrimary(g.Primary)
	if err != nil {
		return nil, err
	}
	for _, suf := range g.Suffix {
		switch {
		case suf.IncDec != "":
			lv, err := toLValue(x)
			if err != nil {
				return nil, err
			}
			x = &ast.PostfixExpr{Base: base(suf.Pos), Op: suf.IncDec, X: lv}
		case suf.Field != "":
			x = &ast.SelectionExpr{Base: base(suf.Pos), Target: x, Field: suf.Field}
		case suf.Index != nil:
			slices, err := convertSlices(suf.Index.Slices)
			if err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{Base: base(suf.Pos), Target: x, Slices: slices}
		}
	}
	return x, nil
}

func convertSlices(gs []*gSlice) ([]*ast.SliceIndex, error) {
	var out []*ast.SliceIndex
	for _, s := range gs {
		from, err := convertExpr(s.From)
		if err != nil {
			return nil, err
		}
		si := &ast.SliceIndex{Base: base(s.Pos), From: from}
		if s.Tail != nil {
			si.IsSlice = s.Tail.IsSlice
			if s.Tail.To != nil {
				to, err := convertExpr(s.Tail.To)
				if err != nil {
					return nil, err
				}
				si.To = to
			}
		}
		out = append(out, si)
	}
	return out, nil
}

func convertPrimary(g *gPrimary) (ast.Expr, error) {
	pos := base(g.Pos)
	switch {
	case g.Classify != nil:
		x, err := convertExpr(g.Classify.X)
		if err != nil {
			return nil, err
		}
		return &ast.ClassifyExpr{Base: pos, Domain: g.Classify.Domain, X: x}, nil
	case g.Declassify != nil:
		x, err := convertExpr(g.Declassify.X)
		if err != nil {
			return nil, err
		}
		return &ast.DeclassifyExpr{Base: pos, X: x}, nil
	case g.Shape != nil:
		x, err := convertExpr(g.Shape.X)
		if err != nil {
			return nil, err
		}
		return &ast.ShapeExpr{Base: pos, X: x}, nil
	case g.Reshape != nil:
		x, err := convertExpr(g.Reshape.X)
		if err != nil {
			return nil, err
		}
		r := &ast.ReshapeExpr{Base: pos, X: x}
		for _, d := range g.Reshape.Dims {
			de, err := convertExpr(d)
			if err != nil {
				return nil, err
			}
			r.Dims = append(r.Dims, de)
		}
		return r, nil
	case g.Cat != nil:
		a, err := convertExpr(g.Cat.A)
		if err != nil {
			return nil, err
		}
		b, err := convertExpr(g.Cat.B)
		if err != nil {
			return nil, err
		}
		c := &ast.CatExpr{Base: pos, A: a, B: b}
		if g.Cat.Axis != nil {
			axis, err := convertExpr(g.Cat.Axis)
			if err != nil {
				return nil, err
			}
			c.Axis = axis
		}
		return c, nil
	case g.Size != nil:
		x, err := convertExpr(g.Size.X)
		if err != nil {
			return nil, err
		}
		return &ast.SizeExpr{Base: pos, X: x}, nil
	case g.Strlen != nil:
		x, err := convertExpr(g.Strlen.X)
		if err != nil {
			return nil, err
		}
		return &ast.StrlenExpr{Base: pos, X: x}, nil
	case g.ToString != nil:
		x, err := convertExpr(g.ToString.X)
		if err != nil {
			return nil, err
		}
		return &ast.ToStringExpr{Base: pos, X: x}, nil
	case g.BytesToStr != nil:
		x, err := convertExpr(g.BytesToStr.X)
		if err != nil {
			return nil, err
		}
		return &ast.BytesToStringExpr{Base: pos, X: x}, nil
	case g.StrToBytes != nil:
		x, err := convertExpr(g.StrToBytes.X)
		if err != nil {
			return nil, err
		}
		return &ast.StringToBytesExpr{Base: pos, X: x}, nil
	case g.DomainID != nil:
		return &ast.DomainIDExpr{Base: pos, Domain: g.DomainID.Domain}, nil
	case g.ArrayCtor != nil:
		a := &ast.ArrayConstructor{Base: pos}
		for _, e := range g.ArrayCtor.Elements {
			ce, err := convertExpr(e)
			if err != nil {
				return nil, err
			}
			a.Elements = append(a.Elements, ce)
		}
		return a, nil
	case g.Call != nil:
		return convertCall(pos, g.Call)
	case g.Float != nil:
		return &ast.Literal{Base: pos, Kind: ast.LitFloat, Flt: *g.Float}, nil
	case g.Int != nil:
		n, err := strconv.ParseInt(*g.Int, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer literal %q: %w", *g.Int, err)
		}
		return &ast.Literal{Base: pos, Kind: ast.LitInt, Int: n}, nil
	case g.Bool != nil:
		return &ast.Literal{Base: pos, Kind: ast.LitBool, Bool: *g.Bool == "true"}, nil
	case g.Str != nil:
		return &ast.Literal{Base: pos, Kind: ast.LitString, Str: unquote(*g.Str)}, nil
	case g.Qualified != nil:
		return &ast.Qualified{Base: pos, ModuleName: g.Qualified.Module, Name: g.Qualified.Name}, nil
	case g.Ident != nil:
		return &ast.Ident{Base: pos, Name: *g.Ident}, nil
	case g.Paren != nil:
		return convertExpr(g.Paren)
	}
	return nil, fmt.Errorf("unreachable primary expression")
}

// convertCall builds a CallExpr, except when the callee names a built-in
// primitive type and exactly one argument is given — then it is the
// explicit cast syntax `T(e)` instead.
func convertCall(pos ast.Base, g *gCallExpr) (ast.Expr, error) {
	if _, ok := types.LookupPrimitive(g.Callee); ok && len(g.Args) == 1 {
		x, err := convertExpr(g.Args[0])
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Base: pos, Type: &ast.TypeExpr{Base: pos, DataName: g.Callee}, X: x}, nil
	}
	c := &ast.CallExpr{Base: pos, Callee: &ast.Ident{Base: pos, Name: g.Callee}}
	for _, a := range g.Args {
		e, err := convertExpr(a)
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, e)
	}
	return c, nil
}

// toLValue narrows an already-converted expression to the restricted
// LValue node set, rejecting shapes that cannot be assigned to.
func toLValue(e ast.Expr) (ast.LValue, error) {
	switch v := e.(type) {
	case *ast.Ident:
		return &ast.VariableLValue{Base: v.Base, Name: v.Name}, nil
	case *ast.IndexExpr:
		target, err := toLValue(v.Target)
		if err != nil {
			return nil, err
		}
		return &ast.IndexedLValue{Base: v.Base, Target: target, Slices: v.Slices}, nil
	case *ast.SelectionExpr:
		target, err := toLValue(v.Target)
		if err != nil {
			return nil, err
		}
		return &ast.SelectedLValue{Base: v.Base, Target: target, Field: v.Field}, nil
	default:
		return nil, fmt.Errorf("invalid assignment target at %v", e.Pos())
	}
}

func unquote(s string) string {
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return strings.Trim(s, "\"")
}
