package checker

import (
	"fmt"

	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

func errDomain(name string) error {
	return fmt.Errorf("undefined domain `%s`", name)
}

func errDataType(name string) error {
	return fmt.Errorf("undefined data type `%s`", name)
}

// Instantiator is the checker's view of the template instantiation engine
// (spec.md section 4.4). Kept as an interface so internal/checker and
// internal/instantiate can be built and tested independently; the concrete
// implementation is internal/instantiate.Worklist.
type Instantiator interface {
	// Request returns the procedure symbol for the (template, substitution)
	// instantiation, cloning and enqueueing the body on first request and
	// returning the memoized instance on every later one.
	Request(tmpl *symbols.Template, subst types.Substitution) *symbols.Procedure
}

// overloadSet is every procedure/template candidate declared under one
// name in a module. The symbol table itself binds at most one symbol per
// (category, name) — spec.md section 4.2 — so overload resolution keeps
// its own candidate lists alongside the scope, consulted only at call
// sites; plain lookups of a procedure name still go through the scope.
type overloadSet struct {
	procs []*symbols.Procedure
	tmpls []*symbols.Template
}

// Checker walks one module's AST, annotating it with types and recording
// template instantiation requests (spec.md section 4.3).
type Checker struct {
	Ctx  *types.Context
	Log  *errors.CompileLog
	Inst Instantiator

	root      *symbols.Scope
	overloads map[string]*overloadSet
	structs   map[string]*types.StructType

	// castsByTarget indexes cast procedures/templates by the DataString of
	// their return type rather than by declared name: `cast int32 foo(S x)`
	// is invoked at a call site as `int32(x)`, which carries no identifier
	// to look `foo` up by.
	castsByTarget map[string]*overloadSet

	// currentReturn tracks the enclosing procedure's declared return type
	// (nil for void) so ReturnStmt can validate against it; loopDepth
	// tracks nesting so break/continue outside any loop is rejected.
	currentReturn *types.Type
	loopDepth     int
}

// machineWordAliases are the bare `int`/`uint`/`float` spellings SecreC
// source accepts as shorthand for the 64-bit primitive of that family;
// types.LookupPrimitive only knows the explicit-width names, so these are
// registered as ordinary data type aliases in the root scope instead.
var machineWordAliases = map[string]types.PrimitiveKind{
	"int":   types.PrimInt64,
	"uint":  types.PrimUint64,
	"float": types.PrimFloat64,
}

func New(ctx *types.Context, log *errors.CompileLog, inst Instantiator) *Checker {
	c := &Checker{
		Ctx:           ctx,
		Log:           log,
		Inst:          inst,
		root:          symbols.NewRootScope(),
		overloads:     make(map[string]*overloadSet),
		structs:       make(map[string]*types.StructType),
		castsByTarget: make(map[string]*overloadSet),
	}
	for name, kind := range machineWordAliases {
		c.root.Define(&symbols.DataTypeAlias{Name_: name, Underlying: &types.Builtin{Kind: kind}})
	}
	return c
}

func addToSet(m map[string]*overloadSet, key string, proc *symbols.Procedure, tmpl *symbols.Template) {
	set := m[key]
	if set == nil {
		set = &overloadSet{}
		m[key] = set
	}
	if proc != nil {
		set.procs = append(set.procs, proc)
	}
	if tmpl != nil {
		set.tmpls = append(set.tmpls, tmpl)
	}
}

func (c *Checker) err(pos ast.Position, code, format string, args ...interface{}) {
	c.Log.Error(pos, code, format, args...)
}

// RootScope exposes the module's root scope to the code generator, which
// needs the same symbol bindings the checker produced.
func (c *Checker) RootScope() *symbols.Scope { return c.root }

// CheckModule runs the two declaration passes (kinds/domains/structs then
// templates/procedures) described in spec.md section 4.3, then checks
// every concrete procedure body.
func (c *Checker) CheckModule(mod *ast.Module) Status {
	status := OK

	// Pass 1: kinds, domains and structs must exist before any type
	// expression referencing them is resolved.
	for _, item := range mod.Items {
		switch node := item.(type) {
		case *ast.KindDecl:
			status = worse(status, c.declareKind(node))
		case *ast.DomainDecl:
			status = worse(status, c.declareDomain(node))
		}
	}
	for _, item := range mod.Items {
		if node, ok := item.(*ast.StructDecl); ok {
			status = worse(status, c.declareStruct(node))
		}
	}

	// Pass 2: register every template/procedure name (so forward calls
	// between procedures in the same module resolve) before checking any
	// body.
	for _, item := range mod.Items {
		switch node := item.(type) {
		case *ast.TemplateDecl:
			status = worse(status, c.declareTemplate(node))
		case *ast.ProcedureDecl:
			status = worse(status, c.declareProcedure(node, nil))
		}
	}
	if status == ErrorFatal {
		return status
	}

	// Pass 3: check concrete procedure bodies. Template bodies are checked
	// later, once per instantiation, by the instantiator's worklist drain
	// (spec.md section 4.4) — not here.
	for _, item := range mod.Items {
		if node, ok := item.(*ast.ProcedureDecl); ok {
			status = worse(status, c.CheckProcedureBody(node, c.root))
		}
	}
	return status
}

func (c *Checker) declareKind(k *ast.KindDecl) Status {
	dk := c.Ctx.DeclareKind(k.Name)
	for _, m := range k.Members {
		dk.Members[m] = true
	}
	sym := &symbols.Kind{Name_: k.Name, Kind: dk}
	if !c.root.Define(sym) {
		c.err(k.Pos(), errors.ErrorDuplicateDeclaration, "kind `%s` already declared", k.Name)
		return ErrorContinue
	}
	return OK
}

func (c *Checker) declareDomain(d *ast.DomainDecl) Status {
	kind, ok := c.Ctx.LookupKind(d.KindName)
	if !ok {
		c.err(d.Pos(), errors.ErrorUndefinedVariable, "undefined kind `%s`", d.KindName)
		return ErrorContinue
	}
	dom := c.Ctx.DeclareDomain(d.Name, kind)
	sym := &symbols.DomainSym{Name_: d.Name, Domain: dom}
	if !c.root.Define(sym) {
		c.err(d.Pos(), errors.ErrorDuplicateDeclaration, "domain `%s` already declared", d.Name)
		return ErrorContinue
	}
	return OK
}

func (c *Checker) declareStruct(s *ast.StructDecl) Status {
	st := &types.StructType{Name: s.Name}
	c.structs[s.Name] = st
	// Register the (possibly self-referential through pointers-as-values
	// this language doesn't have, so no cycle risk) struct symbol before
	// resolving field types, matching how the scope would see a forward
	// reference to it from another struct's own field list.
	sym := &symbols.Struct{Name_: s.Name, Type: st}
	if !c.root.Define(sym) {
		c.err(s.Pos(), errors.ErrorDuplicateDeclaration, "struct `%s` already declared", s.Name)
		return ErrorContinue
	}
	status := OK
	fields := make([]types.StructField, 0, len(s.Fields))
	for _, f := range s.Fields {
		ft, err := c.resolveTypeExpr(f.Type, nil)
		if err != nil {
			c.err(f.Pos(), errors.ErrorGenericSemantic, "field `%s`: %s", f.Name, err.Error())
			status = ErrorContinue
			continue
		}
		fields = append(fields, types.StructField{Name: f.Name, Type: ft})
	}
	st.Fields = fields
	return status
}

func (c *Checker) declareTemplate(t *ast.TemplateDecl) Status {
	quantifiers := make(map[string]*types.TypeVar, len(t.Quantifiers))
	vars := make([]*types.TypeVar, 0, len(t.Quantifiers))
	seen := make(map[string]bool, len(t.Quantifiers))
	status := OK
	for _, q := range t.Quantifiers {
		if seen[q.Name] {
			c.err(q.Pos(), errors.ErrorDuplicateDeclaration, "quantifier `%s` shadows another quantifier in the same template", q.Name)
			status = ErrorContinue
			continue
		}
		seen[q.Name] = true
		tv := &types.TypeVar{Name: q.Name}
		switch q.VarKind {
		case "domain":
			tv.Kind = types.SecVar
			if q.Constraint != "" {
				if k, ok := c.Ctx.LookupKind(q.Constraint); ok {
					tv.Constraint = k
				} else {
					c.err(q.Pos(), errors.ErrorUnsatisfiedConstraint, "undefined kind `%s` constraining quantifier `%s`", q.Constraint, q.Name)
					status = ErrorContinue
				}
			}
		case "type":
			tv.Kind = types.DataVar
		case "dim":
			tv.Kind = types.DimVar
			if t.Decl.IsOperator {
				c.err(q.Pos(), errors.ErrorGenericSemantic, "operator template `%s` may not declare a dimension quantifier", t.Decl.Name)
				status = ErrorContinue
			}
		}
		quantifiers[q.Name] = tv
		vars = append(vars, tv)
	}

	decl := t.Decl
	paramTypes := make([]*types.Type, 0, len(decl.Params))
	used := make(map[string]bool, len(quantifiers))
	for _, p := range decl.Params {
		pt, err := c.resolveTypeExpr(p.Type, quantifiers)
		if err != nil {
			c.err(p.Pos(), errors.ErrorGenericSemantic, "parameter `%s`: %s", p.Name, err.Error())
			status = ErrorContinue
			continue
		}
		markUsed(pt, used)
		paramTypes = append(paramTypes, pt)
	}
	var retType *types.Type
	if decl.ReturnType != nil {
		rt, err := c.resolveTypeExpr(decl.ReturnType, quantifiers)
		if err != nil {
			c.err(decl.Pos(), errors.ErrorGenericSemantic, "return type: %s", err.Error())
			status = ErrorContinue
		} else {
			retType = rt
			markUsed(rt, used)
		}
	}
	for name := range quantifiers {
		if !used[name] {
			c.err(t.Pos(), errors.ErrorGenericSemantic, "quantifier `%s` is never used in the signature of `%s`", name, decl.Name)
			status = ErrorContinue
		}
	}
	if decl.IsOperator && retType != nil {
		status = worse(status, c.checkOperatorJoinReturn(decl, paramTypes, retType))
	}
	if decl.IsCast {
		for _, pt := range paramTypes {
			if pt.DimVar != nil || pt.Dim > 1 {
				c.err(decl.Pos(), errors.ErrorGenericSemantic, "cast template `%s` operands must be scalar or vector", decl.Name)
				status = ErrorContinue
			}
		}
	}

	name := decl.Name
	if decl.IsOperator {
		name = decl.OperatorName
	}
	tmpl := &symbols.Template{
		Name_:        name,
		Quantifiers:  vars,
		ParamTypes:   paramTypes,
		ReturnType:   retType,
		IsOperator:   decl.IsOperator,
		OperatorName: decl.OperatorName,
		IsCast:       decl.IsCast,
		Decl:         t,
		ModuleScope:  c.root,
	}
	c.root.Define(tmpl) // best-effort: only the first overload is reachable by plain lookup
	addToSet(c.overloads, name, nil, tmpl)
	if decl.IsCast && retType != nil {
		addToSet(c.castsByTarget, retType.Data.DataString(), nil, tmpl)
	}
	return status
}

// checkOperatorJoinReturn validates that an operator template's declared
// return type is the join of its operand types (spec.md section 4.4); it
// only checks the security fragment, since join is defined there.
func (c *Checker) checkOperatorJoinReturn(decl *ast.ProcedureDecl, params []*types.Type, ret *types.Type) Status {
	if len(params) != 2 {
		return OK
	}
	if params[0].Security.IsVar() || params[1].Security.IsVar() {
		// Pattern-level join over quantifiers is checked at instantiation
		// time instead, once concrete domains are known.
		return OK
	}
	joined, ok := types.JoinSecurity(params[0].Security, params[1].Security)
	if !ok || (!ret.Security.IsVar() && !joined.Equal(ret.Security)) {
		c.err(decl.Pos(), errors.ErrorGenericSemantic, "operator `%s` return security must be the join of its operand securities", decl.OperatorName)
		return ErrorContinue
	}
	return OK
}

func markUsed(t *types.Type, used map[string]bool) {
	if t.Security.IsVar() {
		used[t.Security.Var.Name] = true
	}
	if v, ok := t.Data.(*types.TypeVar); ok {
		used[v.Name] = true
	}
	if t.DimVar != nil {
		used[t.DimVar.Name] = true
	}
}

func (c *Checker) declareProcedure(decl *ast.ProcedureDecl, quantifiers map[string]*types.TypeVar) Status {
	status := OK
	paramTypes := make([]*types.Type, 0, len(decl.Params))
	for _, p := range decl.Params {
		pt, err := c.resolveTypeExpr(p.Type, quantifiers)
		if err != nil {
			c.err(p.Pos(), errors.ErrorGenericSemantic, "parameter `%s`: %s", p.Name, err.Error())
			status = ErrorContinue
			pt = c.Ctx.DefaultInt()
		}
		paramTypes = append(paramTypes, pt)
	}
	var retType *types.Type
	if decl.ReturnType != nil {
		rt, err := c.resolveTypeExpr(decl.ReturnType, quantifiers)
		if err != nil {
			c.err(decl.Pos(), errors.ErrorGenericSemantic, "return type: %s", err.Error())
			status = ErrorContinue
		} else {
			retType = rt
		}
	}

	name := decl.Name
	if decl.IsOperator {
		name = decl.OperatorName
	}
	procType := &types.ProcedureType{Params: paramTypes, ReturnType: retType}
	sym := &symbols.Procedure{
		Name_:        name,
		Type:         c.Ctx.Public(procType, 0),
		IsOperator:   decl.IsOperator,
		OperatorName: decl.OperatorName,
		IsCast:       decl.IsCast,
		Entry:        c.root.Other().NewLabel(),
	}
	c.root.Define(sym)
	decl.ResolvedSym = sym
	addToSet(c.overloads, name, sym, nil)
	if decl.IsCast && retType != nil {
		addToSet(c.castsByTarget, retType.Data.DataString(), sym, nil)
	}
	return status
}

// resolveTypeExpr turns a syntactic type annotation into a concrete (or,
// inside a template, pattern) *types.Type (spec.md section 4.1).
// quantifiers is nil outside a template declaration.
func (c *Checker) resolveTypeExpr(te *ast.TypeExpr, quantifiers map[string]*types.TypeVar) (*types.Type, error) {
	sec, err := c.resolveSecurity(te.Security, quantifiers)
	if err != nil {
		return nil, err
	}
	data, err := c.resolveDataType(te.DataName, quantifiers)
	if err != nil {
		return nil, err
	}
	// te.Dim is always a literal array rank from the grammar (`"[" Integer
	// "]"`) — no syntax accepted here lets a type annotation name a dim
	// quantifier, so Type.DimVar is never populated from a TypeExpr. No
	// parameter or return pattern therefore mentions a dim quantifier, and
	// declareTemplate reports every `dim` quantifier as never used in the
	// signature.
	return c.Ctx.Intern(sec, data, te.Dim), nil
}

func (c *Checker) resolveSecurity(name string, quantifiers map[string]*types.TypeVar) (*types.Security, error) {
	if name == "" || name == "public" {
		return types.PublicSecurity(), nil
	}
	if quantifiers != nil {
		if tv, ok := quantifiers[name]; ok && tv.Kind == types.SecVar {
			return types.VarSecurity(tv), nil
		}
	}
	if sym, ok := c.root.Find(symbols.CatDomain, name); ok {
		return types.PrivateSecurity(sym.(*symbols.DomainSym).Domain), nil
	}
	return nil, errDomain(name)
}

func (c *Checker) resolveDataType(name string, quantifiers map[string]*types.TypeVar) (types.DataType, error) {
	if quantifiers != nil {
		if tv, ok := quantifiers[name]; ok && tv.Kind == types.DataVar {
			return tv, nil
		}
	}
	if kind, ok := types.LookupPrimitive(name); ok {
		return &types.Builtin{Kind: kind}, nil
	}
	if st, ok := c.structs[name]; ok {
		return st, nil
	}
	if sym, ok := c.root.Find(symbols.CatDataTypeAlias, name); ok {
		return sym.(*symbols.DataTypeAlias).Underlying, nil
	}
	return nil, errDataType(name)
}
