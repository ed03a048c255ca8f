package dispatch

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

func TestDispatchesToBasicRelations(t *testing.T) {
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)
	varOptInt := varInt.WithOpt(ty.OptYes)
	parOptInt := parInt.WithOpt(ty.OptYes)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)

	require.True(t, DispatchesTo(varInt, parInt), "var int dispatches to par int once fixed")
	require.True(t, DispatchesTo(parOptInt, parInt), "par opt int dispatches to par int once present")
	require.True(t, DispatchesTo(varOptInt, parInt), "var opt int dispatches to par int transitively")
	require.True(t, DispatchesTo(varOptInt, varInt), "var opt int dispatches to var int once present")
	require.True(t, DispatchesTo(parInt, parInt), "dispatches_to is reflexive")
	require.False(t, DispatchesTo(parInt, varInt), "par never dispatches to var")
	require.False(t, DispatchesTo(parInt, parBool), "unrelated kinds never dispatch")
}

func TestDispatchesToStructural(t *testing.T) {
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)
	idx := ty.NewInt(ty.Par, ty.NonOpt)

	arrVar := ty.NewArray(idx, varInt)
	arrPar := ty.NewArray(idx, parInt)
	require.True(t, DispatchesTo(arrVar, arrPar), "array of var int dispatches to array of par int elementwise")

	tupVar := ty.NewTuple(varInt, varInt)
	tupPar := ty.NewTuple(parInt, parInt)
	require.True(t, DispatchesTo(tupVar, tupPar))

	recVar := ty.NewRecord(ty.Field{Name: "a", Type: varInt})
	recPar := ty.NewRecord(ty.Field{Name: "a", Type: parInt})
	require.True(t, DispatchesTo(recVar, recPar))
}

// buildFourOverloadModel declares four nullary-bodied overloads of
// "foo" over {var,par} x {opt,non-opt} int, matching spec.md §8's
// scenario of a var-opt-int argument dispatching down to the par,
// non-opt clone.
func buildFourOverloadModel(ctx *registry.Context) (*thir.Model, map[string]thir.FunctionID) {
	m := thir.New()
	name := ctx.Idents.Intern("foo")

	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)
	parOptInt := parInt.WithOpt(ty.OptYes)
	varOptInt := varInt.WithOpt(ty.OptYes)

	declare := func(paramTy ty.Type) thir.FunctionID {
		param := m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(paramTy)})
		body := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: paramTy}, Kind: thir.IdentDeclaration, Declaration: param})
		return m.AddFunction(thir.Function{
			Name:         name,
			ReturnDomain: thir.NewUnboundedDomain(paramTy),
			Params:       []thir.DeclarationID{param},
			Body:         body,
		})
	}

	ids := map[string]thir.FunctionID{
		"varOpt": declare(varOptInt),
		"var":    declare(varInt),
		"parOpt": declare(parOptInt),
		"par":    declare(parInt),
	}
	return m, ids
}

func TestBuildDAGFourOverloadChain(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, ids := buildFourOverloadModel(ctx)

	dag := BuildDAG(m, m.BuildOverloadMap())

	requireSameSet(t, dag[ids["varOpt"]], []thir.FunctionID{ids["var"], ids["parOpt"]})
	requireSameSet(t, dag[ids["var"]], []thir.FunctionID{ids["par"]})
	requireSameSet(t, dag[ids["parOpt"]], []thir.FunctionID{ids["par"]})
	require.Empty(t, dag[ids["par"]], "the most specific overload has nothing left to dispatch to")
}

func requireSameSet(t *testing.T, got, want []thir.FunctionID) {
	t.Helper()
	require.ElementsMatch(t, want, got)
}

func TestDispatcherWrapsLessSpecificOverloadBody(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, _ := buildFourOverloadModel(ctx)
	RegisterBuiltins(m, ctx)

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	om := dst.BuildOverloadMap()
	var wrapped, unwrapped int
	for _, fid := range om[ctx.Idents.Intern("foo")] {
		fn := dst.Functions.Get(fid)
		if !fn.Body.Valid() {
			continue
		}
		if _, ok := dst.Exprs.Get(fn.Body).(*thir.IfThenElse); ok {
			wrapped++
		} else {
			unwrapped++
		}
	}
	require.Equal(t, 3, wrapped, "every overload but the most specific gets a dispatch preamble")
	require.Equal(t, 1, unwrapped, "the most specific overload keeps its original body untouched")
}

// TestDispatcherOptToNonOptChainMatchesSpecScenario checks the
// var-opt-int overload's synthesized preamble has exactly the shape
// spec.md §8 scenario 2 calls for: a first branch guarded by a
// conjunction of two conditions over the destructed occurs flag
// (dispatching to the var-int overload), and a second branch guarded
// by a single is_fixed-of-the-whole-tuple condition (dispatching to
// the par-opt-int overload) — with the par-int overload reached only
// transitively, so exactly two branches exist.
func TestDispatcherOptToNonOptChainMatchesSpecScenario(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, ids := buildFourOverloadModel(ctx)
	RegisterBuiltins(m, ctx)

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	var varOptFn thir.Function
	for _, ref := range dst.TopLevel {
		if ref.Kind != thir.ItemFunction {
			continue
		}
		fn := dst.Functions.Get(ref.Function)
		if fn.Name != ctx.Idents.Intern("foo") || len(fn.Params) != 1 {
			continue
		}
		pd := dst.Declarations.Get(fn.Params[0])
		if pd.Ty().Inst == ty.Var && pd.Ty().Opt == ty.OptYes {
			varOptFn = fn
		}
	}
	require.True(t, varOptFn.Body.Valid())

	ite, ok := dst.Exprs.Get(varOptFn.Body).(*thir.IfThenElse)
	require.True(t, ok)
	require.Len(t, ite.Branches, 2, "var-opt-int dispatches directly to exactly two overloads")

	branch1Cond, ok := dst.Exprs.Get(ite.Branches[0].Cond).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, ctx.WellKnown.Forall, dst.Functions.Get(branch1Cond.Callable.Function).Name,
		"first branch conjoins two conditions via forall")

	branch2Cond, ok := dst.Exprs.Get(ite.Branches[1].Cond).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, ctx.WellKnown.IsFixed, dst.Functions.Get(branch2Cond.Callable.Function).Name,
		"second branch is a lone is_fixed check over the destructed tuple")

	branch2Result, ok := dst.Exprs.Get(ite.Branches[1].Result).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, "foo", ctx.Idents.Name(dst.Functions.Get(branch2Result.Callable.Function).Name))
	require.Len(t, branch2Result.Args, 1)
	argCall, ok := dst.Exprs.Get(branch2Result.Args[0]).(*thir.Call)
	require.True(t, ok)
	require.Equal(t, ctx.WellKnown.ConstructOpt, dst.Functions.Get(argCall.Callable.Function).Name,
		"the dispatched argument is reconstructed via mzn_construct_opt")
}

func TestDispatcherWithoutBuiltinsReportsDiagnostic(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m, _ := buildFourOverloadModel(ctx)

	sink := diag.NewSink()
	_, _ = New(m, ctx, sink).Run()
	require.False(t, sink.OK(), "dispatch without registered builtins cannot synthesize preconditions")
	require.Equal(t, diag.DISP001, sink.Reports()[0].Code)
}
