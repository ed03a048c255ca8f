package specialize

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

// buildIdentityModel declares `function $T: identity($T: x) = x;`
// plus two top-level declarations that call it at int and at bool, so
// a single polymorphic definition must yield two distinct clones.
func buildIdentityModel(ctx *registry.Context) (*thir.Model, thir.FunctionID) {
	m := thir.New()
	name := ctx.Idents.Intern("identity")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	param := m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewTyVar(tvar))})
	paramRef := m.InsertExpr(&thir.Identifier{
		Base:        thir.Base{Ty: ty.NewTyVar(tvar)},
		Kind:        thir.IdentDeclaration,
		Declaration: param,
	})
	fid := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewTyVar(tvar)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
		Body:         paramRef,
	})

	intLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: ty.NewInt(ty.Par, ty.NonOpt)}, Kind: thir.LitInt, Value: 3})
	callInt := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: ty.NewInt(ty.Par, ty.NonOpt)},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fid},
		Args:     []thir.ExprID{intLit},
	})
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewInt(ty.Par, ty.NonOpt)), Def: callInt, TopLevel: true})

	boolLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: ty.NewBool(ty.Par, ty.NonOpt)}, Kind: thir.LitBool, Value: true})
	callBool := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: ty.NewBool(ty.Par, ty.NonOpt)},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fid},
		Args:     []thir.ExprID{boolLit},
	})
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Def: callBool, TopLevel: true})

	return m, fid
}

func TestSpecializePolymorphicFunctionEliminatedFromOutput(t *testing.T) {
	ctx := registry.NewDefaultContext()
	src, _ := buildIdentityModel(ctx)
	sink := diag.NewSink()

	dst, _ := New(src, ctx, sink).Run()
	require.True(t, sink.OK())

	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemFunction {
			require.False(t, dst.Functions.Get(ref.Function).IsPolymorphic(), "no polymorphic clone should survive")
		}
	}
}

func TestSpecializeProducesDistinctClonesPerInstantiation(t *testing.T) {
	ctx := registry.NewDefaultContext()
	src, _ := buildIdentityModel(ctx)
	sink := diag.NewSink()

	dst, _ := New(src, ctx, sink).Run()

	var fnIDs []thir.FunctionID
	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemFunction {
			fnIDs = append(fnIDs, ref.Function)
		}
	}
	require.Len(t, fnIDs, 2, "int and bool instantiations must each get their own clone")
	require.NotEqual(t, fnIDs[0], fnIDs[1])
}

func TestSpecializeCachesRepeatedInstantiation(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()
	name := ctx.Idents.Intern("identity")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	param := m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewTyVar(tvar))})
	paramRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: ty.NewTyVar(tvar)}, Kind: thir.IdentDeclaration, Declaration: param})
	fid := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewTyVar(tvar)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
		Body:         paramRef,
	})

	makeCall := func() thir.ExprID {
		lit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: ty.NewInt(ty.Par, ty.NonOpt)}, Kind: thir.LitInt, Value: 1})
		return m.InsertExpr(&thir.Call{
			Base:     thir.Base{Ty: ty.NewInt(ty.Par, ty.NonOpt)},
			Callable: thir.Callable{Kind: thir.CallableFunction, Function: fid},
			Args:     []thir.ExprID{lit},
		})
	}
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewInt(ty.Par, ty.NonOpt)), Def: makeCall(), TopLevel: true})
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(ty.NewInt(ty.Par, ty.NonOpt)), Def: makeCall(), TopLevel: true})

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()

	var fnCount int
	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemFunction {
			fnCount++
		}
	}
	require.Equal(t, 1, fnCount, "both int instantiations should share one cached clone")
}

func TestSpecializeSynthesizesShowForOptInt(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()
	RegisterBuiltins(m, ctx)

	optInt := ty.NewInt(ty.Par, ty.NonOpt).WithOpt(ty.OptYes)
	arg := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: optInt}, Kind: thir.LitAbsent})
	call := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: ty.NewString(ty.NonOpt)},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: mustLookupShow(m, ctx)},
		Args:     []thir.ExprID{arg},
	})
	m.AddOutput(thir.Output{Expr: call})

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	var found bool
	for _, ref := range dst.TopLevel {
		if ref.Kind != thir.ItemFunction {
			continue
		}
		fn := dst.Functions.Get(ref.Function)
		if fn.Name == ctx.WellKnown.Show && fn.Body.Valid() {
			_, ok := dst.Exprs.Get(fn.Body).(*thir.IfThenElse)
			require.True(t, ok, "show(opt int) should synthesize an if-then-else unwrapping occurs/deopt")
			found = true
		}
	}
	require.True(t, found, "expected a specialised show clone in the output")
}

// TestSpecializeShowCallTargetsAreTopLevel covers spec.md §8 scenario
// 4's shape: show over `array [int] of tuple(opt int, bool)` recurses
// into synthesized tuple and opt-int shows, whose bodies call the
// bodyless polymorphic builtins occurs and deopt. Every call in the
// output must target a function reachable from top_level - a bodyless
// builtin must survive specialisation, not just its call sites.
func TestSpecializeShowCallTargetsAreTopLevel(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()
	RegisterBuiltins(m, ctx)

	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)
	elem := ty.NewTuple(parInt.WithOpt(ty.OptYes), parBool)
	arrTy := ty.NewArray(parInt, elem)
	x := m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(arrTy), Name: ctx.Idents.Intern("x"), HasName: true, TopLevel: true,
	})
	xRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: arrTy}, Kind: thir.IdentDeclaration, Declaration: x})
	call := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: ty.NewString(ty.NonOpt)},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: mustLookupShow(m, ctx)},
		Args:     []thir.ExprID{xRef},
	})
	m.AddOutput(thir.Output{Expr: call})

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	topLevel := make(map[thir.FunctionID]bool)
	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemFunction {
			topLevel[ref.Function] = true
		}
	}
	var occursSeen, deoptSeen bool
	dst.Exprs.All(func(_ thir.ExprID, e thir.Expr) {
		c, ok := e.(*thir.Call)
		if !ok || c.Callable.Kind != thir.CallableFunction {
			return
		}
		require.True(t, topLevel[c.Callable.Function],
			"call target %v (%s) is missing from top_level", c.Callable.Function,
			ctx.Idents.Name(dst.Functions.Get(c.Callable.Function).Name))
		switch dst.Functions.Get(c.Callable.Function).Name {
		case ctx.WellKnown.Occurs:
			occursSeen = true
		case ctx.WellKnown.Deopt:
			deoptSeen = true
		}
	})
	require.True(t, occursSeen, "synthesized opt show must call occurs")
	require.True(t, deoptSeen, "synthesized opt show must call deopt")
}

func mustLookupShow(m *thir.Model, ctx *registry.Context) thir.FunctionID {
	for _, fid := range m.LookupFunctions(ctx.WellKnown.Show) {
		return fid
	}
	panic("show not registered")
}
