package ty

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSubtypeReflexivity(t *testing.T) {
	cases := []Type{
		NewBool(Par, NonOpt),
		NewInt(Var, OptYes),
		NewSet(NewInt(Par, NonOpt), Par, NonOpt),
		NewTuple(NewBool(Par, NonOpt), NewFloat(Var, NonOpt)),
		NewRecord(Field{"a", NewInt(Par, NonOpt)}, Field{"b", NewBool(Par, NonOpt)}),
		NewArray(NewInt(Par, NonOpt), NewBool(Par, NonOpt)),
		NewFunction([]Type{NewInt(Par, NonOpt)}, NewBool(Par, NonOpt)),
	}
	for _, ty := range cases {
		if !Leq(ty, ty) {
			t.Errorf("Leq(%s, %s) = false, want true (reflexivity)", ty, ty)
		}
	}
}

func TestSubtypeTransitivity(t *testing.T) {
	a := NewBool(Par, NonOpt)
	b := NewInt(Par, NonOpt)
	c := NewFloat(Var, OptYes)
	require.True(t, Leq(a, b))
	require.True(t, Leq(b, c))
	require.True(t, Leq(a, c), "bool par non-opt should transitively reach var opt float")
}

func TestPrimitivePromotion(t *testing.T) {
	require.True(t, Leq(NewBool(Par, NonOpt), NewInt(Par, NonOpt)))
	require.True(t, Leq(NewInt(Par, NonOpt), NewFloat(Par, NonOpt)))
	require.False(t, Leq(NewFloat(Par, NonOpt), NewInt(Par, NonOpt)))
}

func TestBottomIsSubtypeOfEverything(t *testing.T) {
	bot := NewBottom()
	others := []Type{
		NewBool(Par, NonOpt),
		NewArray(NewInt(Par, NonOpt), NewRecord()),
		NewFunction(nil, NewString(NonOpt)),
	}
	for _, o := range others {
		require.True(t, Leq(bot, o))
	}
}

func TestVarRequiresVarifiable(t *testing.T) {
	// array is not varifiable, so par array ≤ var array must not hold.
	parArr := NewArray(NewInt(Par, NonOpt), NewInt(Par, NonOpt))
	varArr := parArr
	varArr.Inst = Var
	if Leq(parArr, varArr) {
		t.Errorf("arrays are not varifiable; par array should not be ≤ var array")
	}
}

func TestRecordWidthSubtyping(t *testing.T) {
	wide := NewRecord(Field{"a", NewInt(Par, NonOpt)}, Field{"b", NewBool(Par, NonOpt)})
	narrow := NewRecord(Field{"a", NewInt(Par, NonOpt)})
	require.True(t, Leq(wide, narrow), "extra fields allowed on the subtype side")
	require.False(t, Leq(narrow, wide), "narrow record cannot satisfy a field it lacks")
}

func TestFunctionContravariance(t *testing.T) {
	// (var int) -> bool  ≤  (par int) -> bool   [contravariant params]
	sub := NewFunction([]Type{NewInt(Var, NonOpt)}, NewBool(Par, NonOpt))
	sup := NewFunction([]Type{NewInt(Par, NonOpt)}, NewBool(Par, NonOpt))
	require.True(t, Leq(sub, sup))
	require.False(t, Leq(sup, sub))
}

func TestMSSConsistency(t *testing.T) {
	a := NewBool(Par, NonOpt)
	b := NewInt(Var, NonOpt)
	s, ok := MSS(a, b)
	require.True(t, ok)
	require.True(t, Leq(a, s))
	require.True(t, Leq(b, s))

	want := NewInt(Var, NonOpt)
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("MSS(bool,par ; int,var) mismatch (-want +got):\n%s", diff)
	}
}

func TestMGSConsistency(t *testing.T) {
	a := NewInt(Var, OptYes)
	b := NewInt(Par, NonOpt)
	m, ok := MGS(a, b)
	require.True(t, ok)
	require.True(t, Leq(m, a))
	require.True(t, Leq(m, b))
	require.Equal(t, NewInt(Par, NonOpt), m)
}

func TestMSSUndefinedAcrossIncompatibleShapes(t *testing.T) {
	_, ok := MSS(NewBool(Par, NonOpt), NewTuple(NewInt(Par, NonOpt)))
	require.False(t, ok)
}

func TestMSSRecordIntersectsFields(t *testing.T) {
	a := NewRecord(Field{"x", NewInt(Par, NonOpt)}, Field{"y", NewBool(Par, NonOpt)})
	b := NewRecord(Field{"x", NewInt(Var, NonOpt)})
	s, ok := MSS(a, b)
	require.True(t, ok)
	require.Len(t, s.Fields, 1)
	require.Equal(t, "x", s.Fields[0].Name)
	require.True(t, Leq(a, s))
	require.True(t, Leq(b, s))
}

func TestRecordFieldsAlwaysSorted(t *testing.T) {
	r1 := NewRecord(Field{"zeta", NewInt(Par, NonOpt)}, Field{"alpha", NewBool(Par, NonOpt)})
	r2 := NewRecord(r1.Fields[1], r1.Fields[0]) // rebuild from r1's sorted fields in reverse order
	require.Equal(t, r1, r2, "sorting a record twice must be idempotent")
	require.Equal(t, "alpha", r1.Fields[0].Name)
}

func TestSubstituteTyVar(t *testing.T) {
	tv := NewTyVar(TVar{ID: "T", Varifiable: true})
	subs := map[string]Type{"T": NewInt(Par, NonOpt)}
	got := tv.Substitute(subs)
	require.Equal(t, NewInt(Par, NonOpt), got)
}

func TestSubstitutePromotesInstOpt(t *testing.T) {
	// A var-promoted ty-var occurrence, substituted with a par base
	// type, must come out var: the occurrence's own promotion is not
	// lost by substitution.
	tv := NewTyVar(TVar{ID: "T", Varifiable: true})
	tv.Inst = Var
	got := tv.Substitute(map[string]Type{"T": NewInt(Par, NonOpt)})
	require.Equal(t, Var, got.Inst)
}
