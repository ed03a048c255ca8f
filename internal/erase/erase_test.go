package erase

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

// TestEraseRecordErasureMatchesSpecScenario5 covers spec.md §8 scenario
// 5: `record(int: foo, float: bar): x = (foo: 1, bar: 2.5);` erases to
// `tuple(float, int): x = (2.5, 1);`, fields ordered bar then foo.
func TestEraseRecordErasureMatchesSpecScenario5(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()

	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	parFloat := ty.NewFloat(ty.Par, ty.NonOpt)
	recTy := ty.NewRecord(ty.Field{Name: "foo", Type: parInt}, ty.Field{Name: "bar", Type: parFloat})

	fooLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 1})
	barLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parFloat}, Kind: thir.LitFloat, Value: 2.5})
	recLit := m.InsertExpr(thir.NewRecordLit(thir.Base{Ty: recTy},
		thir.RecordField{Name: "foo", Value: fooLit},
		thir.RecordField{Name: "bar", Value: barLit},
	))
	xName := ctx.Idents.Intern("x")
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(recTy), Name: xName, HasName: true,
		Def: recLit, TopLevel: true,
	})

	sink := diag.NewSink()
	dst, sink := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	xID, ok := dst.LookupDeclaration(xName)
	require.True(t, ok, "x must survive erasure under its original name")
	x := dst.Declarations.Get(xID)
	require.Equal(t, ty.Tuple, x.Ty().Kind)
	require.Equal(t, ty.NewTuple(parFloat, parInt), x.Ty(), "fields must be sorted bar, foo")

	lit, ok := dst.Exprs.Get(x.Def).(*thir.TupleLit)
	require.True(t, ok, "record literal should erase to a tuple literal")
	require.Len(t, lit.Elements, 2)

	bar, ok := dst.Exprs.Get(lit.Elements[0]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, 2.5, bar.Value)

	foo, ok := dst.Exprs.Get(lit.Elements[1]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, 1, foo.Value)
}

// TestEraseOptValueErasureMatchesSpecScenario6 covers spec.md §8
// scenario 6: `opt int: x = 2; opt bool: y = <>;` erases to
// `tuple(bool, int): x = (true, 2); tuple(bool, bool): y = (false, ⊥);`.
func TestEraseOptValueErasureMatchesSpecScenario6(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()

	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	optInt := parInt.WithOpt(ty.OptYes)
	xName := ctx.Idents.Intern("x")
	xLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 2})
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(optInt), Name: xName, HasName: true,
		Def: xLit, TopLevel: true,
	})

	parBool := ty.NewBool(ty.Par, ty.NonOpt)
	optBool := parBool.WithOpt(ty.OptYes)
	yName := ctx.Idents.Intern("y")
	yLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: optBool}, Kind: thir.LitAbsent})
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(optBool), Name: yName, HasName: true,
		Def: yLit, TopLevel: true,
	})

	sink := diag.NewSink()
	dst, sink := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	xID, ok := dst.LookupDeclaration(xName)
	require.True(t, ok, "x must survive erasure under its original name")
	x := dst.Declarations.Get(xID)
	require.Equal(t, ty.NewTuple(parBool, parInt), x.Ty())
	xTuple, ok := dst.Exprs.Get(x.Def).(*thir.TupleLit)
	require.True(t, ok)
	xFlag, ok := dst.Exprs.Get(xTuple.Elements[0]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, true, xFlag.Value)
	xVal, ok := dst.Exprs.Get(xTuple.Elements[1]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, 2, xVal.Value)

	yID, ok := dst.LookupDeclaration(yName)
	require.True(t, ok, "y must survive erasure under its original name")
	y := dst.Declarations.Get(yID)
	require.Equal(t, ty.NewTuple(parBool, parBool), y.Ty())
	yTuple, ok := dst.Exprs.Get(y.Def).(*thir.TupleLit)
	require.True(t, ok)
	yFlag, ok := dst.Exprs.Get(yTuple.Elements[0]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, false, yFlag.Value)
	yVal, ok := dst.Exprs.Get(yTuple.Elements[1]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, thir.LitBottom, yVal.Kind)
}

// buildMixedEnumModel declares an enum with an atomic constructor, then
// a functional constructor bound to a 3-element domain, then a second
// atomic constructor - the shape that exposes a cardinality-numbering
// bug if a functional constructor's contribution is ever dropped.
func buildMixedEnumModel(ctx *registry.Context) (*thir.Model, thir.EnumerationID) {
	m := thir.New()
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	setTy := ty.NewSet(parInt, ty.Par, ty.NonOpt)

	one := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 1})
	two := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 2})
	three := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 3})
	bound := m.InsertExpr(&thir.SetLit{Base: thir.Base{Ty: setTy}, Elements: []thir.ExprID{one, two, three}})
	fParam := m.InsertDeclaration(thir.Declaration{Domain: thir.NewBoundedDomain(bound, parInt)})

	en := thir.Enumeration{
		Name: ctx.Idents.Intern("Mixed"),
		ID:   ty.EnumID(1),
		Constructors: []thir.Constructor{
			{Name: ctx.Idents.Intern("A")},
			{Name: ctx.Idents.Intern("F"), Params: []thir.DeclarationID{fParam}},
			{Name: ctx.Idents.Intern("B")},
		},
	}
	id := m.AddEnumeration(en)
	return m, id
}

// TestEraseMixedAtomicFunctionalEnumCardinality guards the §4.7
// cardinality fix: B must be numbered as if F's 3-element domain
// preceded it (sum(card(F's domain), 1)), not as if F contributed no
// cardinality at all (which would wrongly number B as 2).
func TestEraseMixedAtomicFunctionalEnumCardinality(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, enID := buildMixedEnumModel(ctx)

	sink := diag.NewSink()
	e := New(m, ctx, sink)
	dst, sink := e.Run()
	require.True(t, sink.OK())

	st := e.enums[enID]
	require.NotNil(t, st)

	aDecl := dst.Declarations.Get(st.atomic[0])
	aLit, ok := dst.Exprs.Get(aDecl.Def).(*thir.Lit)
	require.True(t, ok, "A has no preceding constructor, so its value is a bare literal")
	require.Equal(t, 1, aLit.Value)
	require.Equal(t, thir.Unbounded, aDecl.Domain.Kind, "atomic declarations are unbounded, not self-bounded")

	require.Contains(t, st.funcs, 1, "F must synthesise its six ctor/dtor variants")

	bDecl := dst.Declarations.Get(st.atomic[2])
	bCall, ok := dst.Exprs.Get(bDecl.Def).(*thir.Call)
	require.True(t, ok, "B follows a functional constructor, so its value must be a sum(...) call")
	require.Equal(t, ctx.WellKnown.Sum, dst.Functions.Get(bCall.Callable.Function).Name)

	sumArgs, ok := dst.Exprs.Get(bCall.Args[0]).(*thir.ArrayLit)
	require.True(t, ok)
	require.Len(t, sumArgs.Elements, 2, "sum over F's cardinality plus B's own offset")

	cardCall, ok := dst.Exprs.Get(sumArgs.Elements[0]).(*thir.Call)
	require.True(t, ok, "F's contribution is a card(...) call, not a bare count")
	require.Equal(t, ctx.WellKnown.Card, dst.Functions.Get(cardCall.Callable.Function).Name)

	bOffset, ok := dst.Exprs.Get(sumArgs.Elements[1]).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, 1, bOffset.Value, "B is the first atomic constructor since F, so its own offset resets to 1")
}

// buildTwoFunctionalEnumModel declares an enum with two functional
// constructors F and G, each bound to a small int-set domain, so G's
// synthesised functions must receive F's cardinality as prev_cards.
func buildTwoFunctionalEnumModel(ctx *registry.Context) (*thir.Model, thir.EnumerationID) {
	m := thir.New()
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	setTy := ty.NewSet(parInt, ty.Par, ty.NonOpt)

	boundParam := func(vals ...int) thir.DeclarationID {
		elems := make([]thir.ExprID, len(vals))
		for i, v := range vals {
			elems[i] = m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: v})
		}
		bound := m.InsertExpr(&thir.SetLit{Base: thir.Base{Ty: setTy}, Elements: elems})
		return m.InsertDeclaration(thir.Declaration{Domain: thir.NewBoundedDomain(bound, parInt)})
	}

	en := thir.Enumeration{
		Name: ctx.Idents.Intern("TwoCtor"),
		ID:   ty.EnumID(1),
		Constructors: []thir.Constructor{
			{Name: ctx.Idents.Intern("F"), Params: []thir.DeclarationID{boundParam(1, 2, 3)}},
			{Name: ctx.Idents.Intern("G"), Params: []thir.DeclarationID{boundParam(1, 2)}},
		},
	}
	id := m.AddEnumeration(en)
	return m, id
}

// TestEraseConstructorBodiesReceivePrevCards pins the backend call
// contract of spec §4.7: a constructor body is
// mzn_enum_constructor(prev_cards, [(arg_dom, arg), ...]), so G -
// preceded by functional constructor F - must pass F's cardinality in
// its prev_cards array while F's own prev_cards array is empty.
func TestEraseConstructorBodiesReceivePrevCards(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, enID := buildTwoFunctionalEnumModel(ctx)

	sink := diag.NewSink()
	e := New(m, ctx, sink)
	dst, sink := e.Run()
	require.True(t, sink.OK())

	st := e.enums[enID]
	require.NotNil(t, st)

	ctorCall := func(ctorIdx int) *thir.Call {
		fn := dst.Functions.Get(st.funcs[ctorIdx].ctor[thir.EnumCallPar])
		require.True(t, fn.Body.Valid())
		call, ok := dst.Exprs.Get(fn.Body).(*thir.Call)
		require.True(t, ok)
		require.Equal(t, ctx.WellKnown.EnumConstructor, dst.Functions.Get(call.Callable.Function).Name)
		require.Len(t, call.Args, 2, "mzn_enum_constructor takes prev_cards plus the (dom, arg) pairs")
		return call
	}

	fPrev, ok := dst.Exprs.Get(ctorCall(0).Args[0]).(*thir.ArrayLit)
	require.True(t, ok)
	require.Empty(t, fPrev.Elements, "no functional constructor precedes F")

	gCall := ctorCall(1)
	gPrev, ok := dst.Exprs.Get(gCall.Args[0]).(*thir.ArrayLit)
	require.True(t, ok)
	require.Len(t, gPrev.Elements, 1, "F's cardinality precedes G")
	cardCall, ok := dst.Exprs.Get(gPrev.Elements[0]).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, ctx.WellKnown.Card, dst.Functions.Get(cardCall.Callable.Function).Name)

	gPairs, ok := dst.Exprs.Get(gCall.Args[1]).(*thir.ArrayLit)
	require.True(t, ok)
	require.Len(t, gPairs.Elements, 1)
	pair, ok := dst.Exprs.Get(gPairs.Elements[0]).(*thir.TupleLit)
	require.True(t, ok, "each constructor argument is passed as an (arg_dom, arg) pair")
	require.Len(t, pair.Elements, 2)
	_, ok = dst.Exprs.Get(pair.Elements[0]).(*thir.SetLit)
	require.True(t, ok, "the pair's first element is the argument's bound domain")
	_, ok = dst.Exprs.Get(pair.Elements[1]).(*thir.Identifier)
	require.True(t, ok, "the pair's second element is the parameter itself")
}

// TestEraseDestructorBodyUnpacksResultArray pins the destructor shape:
// mzn_enum_destructor(prev_cards, [arg_dom, ...], x) bound in a let,
// then unpacked into a tuple of n integer components.
func TestEraseDestructorBodyUnpacksResultArray(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, enID := buildTwoFunctionalEnumModel(ctx)

	sink := diag.NewSink()
	e := New(m, ctx, sink)
	dst, sink := e.Run()
	require.True(t, sink.OK())

	st := e.enums[enID]
	fn := dst.Functions.Get(st.funcs[1].dtor[thir.EnumCallPar])
	require.True(t, fn.Body.Valid())

	let, ok := dst.Exprs.Get(fn.Body).(*thir.Let)
	require.True(t, ok, "destructor binds the mzn_enum_destructor result once")
	require.Len(t, let.Items, 1)

	bound := dst.Declarations.Get(let.Items[0].Declaration)
	inner, ok := dst.Exprs.Get(bound.Def).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, ctx.WellKnown.EnumDestructor, dst.Functions.Get(inner.Callable.Function).Name)
	require.Len(t, inner.Args, 3, "prev_cards, the argument domains, and the value itself")
	prev, ok := dst.Exprs.Get(inner.Args[0]).(*thir.ArrayLit)
	require.True(t, ok)
	require.Len(t, prev.Elements, 1, "G's destructor receives F's cardinality too")

	tuple, ok := dst.Exprs.Get(let.In).(*thir.TupleLit)
	require.True(t, ok, "the result array is unpacked into a tuple")
	require.Len(t, tuple.Elements, 1)
	access, ok := dst.Exprs.Get(tuple.Elements[0]).(*thir.ArrayAccess)
	require.True(t, ok)
	idx, ok := dst.Exprs.Get(access.Index).(*thir.Lit)
	require.True(t, ok)
	require.Equal(t, 1, idx.Value)
}
