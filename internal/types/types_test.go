package types

import "testing"

func TestInterning(t *testing.T) {
	ctx := NewContext()
	a := ctx.PublicScalar(PrimInt64)
	b := ctx.PublicScalar(PrimInt64)
	if a != b {
		t.Fatalf("expected equal types to share a pointer, got %p and %p", a, b)
	}

	arr := ctx.Public(&Builtin{Kind: PrimInt64}, 2)
	if arr == a {
		t.Fatalf("array type should not intern to the same pointer as scalar")
	}
}

func TestJoinSecurity(t *testing.T) {
	ctx := NewContext()
	kind := ctx.DeclareKind("pd_a3p")
	kind.Members["uint64"] = true
	dom := ctx.DeclareDomain("private", kind)

	pub := PublicSecurity()
	priv := PrivateSecurity(dom)

	joined, ok := JoinSecurity(pub, priv)
	if !ok || joined != priv {
		t.Fatalf("expected join(public, private) = private, got %v ok=%v", joined, ok)
	}

	other := ctx.DeclareDomain("other", kind)
	_, ok = JoinSecurity(priv, PrivateSecurity(other))
	if ok {
		t.Fatalf("expected join of two distinct private domains to fail")
	}
}

func TestUnifySimpleTemplate(t *testing.T) {
	ctx := NewContext()
	domVar := &TypeVar{Name: "D", Kind: SecVar}
	dataVar := &TypeVar{Name: "T", Kind: DataVar}

	pattern := &Type{Security: VarSecurity(domVar), Data: dataVar, Dim: 0}

	concrete := ctx.PublicScalar(PrimInt32)

	subst := Substitution{}
	if err := Unify(pattern, concrete, subst); err != nil {
		t.Fatalf("unify failed: %v", err)
	}

	if subst["D"].Security.IsPublic() != true {
		t.Fatalf("expected D bound to public")
	}
	if subst["T"].Data.DataString() != "int32" {
		t.Fatalf("expected T bound to int32, got %s", subst["T"].Data.DataString())
	}

	out := Substitute(ctx, pattern, subst)
	if out != concrete {
		t.Fatalf("expected substituted pattern to intern back to the concrete type")
	}
}

func TestUnifyConflict(t *testing.T) {
	ctx := NewContext()
	dataVar := &TypeVar{Name: "T", Kind: DataVar}
	pattern1 := &Type{Security: PublicSecurity(), Data: dataVar, Dim: 0}
	pattern2 := &Type{Security: PublicSecurity(), Data: dataVar, Dim: 0}

	subst := Substitution{}
	if err := Unify(pattern1, ctx.PublicScalar(PrimInt32), subst); err != nil {
		t.Fatalf("first unify failed: %v", err)
	}
	if err := Unify(pattern2, ctx.PublicScalar(PrimBool), subst); err == nil {
		t.Fatalf("expected conflicting binding for T to fail")
	}
}

func TestClassifyRequiresKindMembership(t *testing.T) {
	ctx := NewContext()
	kind := ctx.DeclareKind("pd_a3p")
	kind.Members["string"] = true
	dom := ctx.DeclareDomain("priv", kind)

	if !CanClassify(dom, &Builtin{Kind: PrimInt64}) {
		t.Fatalf("expected built-in int to be classifiable into any domain")
	}
	if !CanClassify(dom, &Builtin{Kind: PrimString}) {
		t.Fatalf("expected string classifiable since kind admits it")
	}

	kind2 := ctx.DeclareKind("pd_other")
	dom2 := ctx.DeclareDomain("priv2", kind2)
	if CanClassify(dom2, &Builtin{Kind: PrimString}) {
		t.Fatalf("expected string not classifiable when kind does not admit it")
	}
}
