// Package instantiate implements the template/operator instantiation
// worklist (spec.md section 4.4), grounded on original_source's
// typechecker/Templates.cpp TemplateInstantiator: each distinct
// (template, type-argument) request is memoized, producing one generated
// procedure per instantiation, and checked later in a drain loop instead
// of inline at the call site.
package instantiate

import (
	"secrecc/internal/ast"
	"secrecc/internal/checker"
	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

// pendingInstantiation is one not-yet-checked clone queued for the drain
// loop, mirroring TemplateInstantiator::m_workList.
type pendingInstantiation struct {
	decl  *ast.ProcedureDecl
	scope *symbols.Scope
}

// Worklist is the concrete checker.Instantiator: every template or
// operator-overload call site the checker can't satisfy with a concrete
// procedure requests an instantiation here, memoized by (template,
// substitution) so repeated calls with the same type arguments reuse one
// generated procedure instead of cloning its body again.
type Worklist struct {
	Ctx *types.Context

	checker   *checker.Checker
	memo      map[string]*symbols.Procedure
	pending   []*pendingInstantiation
	generated []*ast.ProcedureDecl // every clone Drain has type-checked so far, in generation order
}

func New(ctx *types.Context) *Worklist {
	return &Worklist{Ctx: ctx, memo: make(map[string]*symbols.Procedure)}
}

// Attach supplies the checker that will type-check each generated clone.
// It has to be set after construction: checker.New requires an
// Instantiator up front, and a Worklist can't name a *checker.Checker
// before one exists, so the two are wired together in two steps:
//
//	w := instantiate.New(ctx)
//	c := checker.New(ctx, log, w)
//	w.Attach(c)
func (w *Worklist) Attach(c *checker.Checker) { w.checker = c }

func quantifierOrder(tmpl *symbols.Template) []string {
	order := make([]string, len(tmpl.Quantifiers))
	for i, q := range tmpl.Quantifiers {
		order[i] = q.Name
	}
	return order
}

// mangledName gives each instantiation a distinct procedure name derived
// from its bound type arguments, so two instantiations of the same
// template never collide in the symbol table or in generated code.
func mangledName(base string, subst types.Substitution, order []string) string {
	name := base
	for _, q := range order {
		name += "$" + subst[q].String()
	}
	return name
}

// Request implements checker.Instantiator. On a cache miss it clones the
// template's body with every quantifier fragment resolved to its bound
// argument (clone.go), builds the concrete Procedure symbol the call site
// needs immediately, and queues the clone for type-checking once Drain
// runs — mirroring TemplateInstantiator::add, which likewise returns a
// usable symbol right away and defers body processing to a later pass.
func (w *Worklist) Request(tmpl *symbols.Template, subst types.Substitution) *symbols.Procedure {
	order := quantifierOrder(tmpl)
	key := tmpl.Name_ + "(" + subst.Key(order) + ")"
	if proc, ok := w.memo[key]; ok {
		return proc
	}

	decl := tmpl.Decl.(*ast.TemplateDecl).Decl
	clone := cloneProcedureDecl(decl, subst)
	clone.Name = mangledName(tmpl.Name_, subst, order)

	paramTypes := make([]*types.Type, len(tmpl.ParamTypes))
	for i, pt := range tmpl.ParamTypes {
		paramTypes[i] = types.Substitute(w.Ctx, pt, subst)
	}
	var retType *types.Type
	if tmpl.ReturnType != nil {
		retType = types.Substitute(w.Ctx, tmpl.ReturnType, subst)
	}

	proc := &symbols.Procedure{
		Name_:        clone.Name,
		Type:         w.Ctx.Public(&types.ProcedureType{Params: paramTypes, ReturnType: retType}, 0),
		IsOperator:   tmpl.IsOperator,
		OperatorName: tmpl.OperatorName,
		IsCast:       tmpl.IsCast,
		Entry:        tmpl.ModuleScope.Other().NewLabel(),
	}
	clone.ResolvedSym = proc
	w.memo[key] = proc
	w.pending = append(w.pending, &pendingInstantiation{decl: clone, scope: tmpl.ModuleScope})
	return proc
}

// Pending reports how many queued clones Drain has not yet checked, for
// callers that want to report instantiation counts without draining.
func (w *Worklist) Pending() int { return len(w.pending) }

// Drain type-checks every clone queued since the last call, looping
// because checking one instantiation's body can itself request further
// instantiations (a template invoking another template or operator).
// Mirrors TemplateInstantiator::getForInstantiation's work-stealing loop,
// which keeps pulling from m_workList until it runs dry.
func (w *Worklist) Drain() checker.Status {
	status := checker.OK
	for len(w.pending) > 0 {
		item := w.pending[0]
		w.pending = w.pending[1:]
		st := w.checker.CheckProcedureBody(item.decl, item.scope)
		if st > status {
			status = st
		}
		w.generated = append(w.generated, item.decl)
	}
	return status
}

// Generated returns every instantiated procedure/operator/cast body that
// has been type-checked so far, in the order Drain produced them — the
// code generator lowers these in addition to the module's own plain
// top-level declarations.
func (w *Worklist) Generated() []*ast.ProcedureDecl { return w.generated }
