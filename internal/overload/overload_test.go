package overload

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

func declParam(m *thir.Model, t ty.Type) thir.DeclarationID {
	return m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(t)})
}

func TestResolvePicksMonomorphicOverload(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")

	intParam := declParam(m, ty.NewInt(ty.Par, ty.NonOpt))
	fInt := m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Params: []thir.DeclarationID{intParam}})

	boolParam := declParam(m, ty.NewBool(ty.Par, ty.NonOpt))
	m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Params: []thir.DeclarationID{boolParam}})

	om := m.BuildOverloadMap()
	got, err := Resolve(m, om, name, []ty.Type{ty.NewInt(ty.Par, ty.NonOpt)})
	require.NoError(t, err)
	require.Equal(t, fInt, got.Function)
}

func TestResolveNoMatchReportsCandidates(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	intParam := declParam(m, ty.NewInt(ty.Par, ty.NonOpt))
	m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Params: []thir.DeclarationID{intParam}})

	om := m.BuildOverloadMap()
	_, err := Resolve(m, om, name, []ty.Type{ty.NewString(ty.NonOpt)})
	require.Error(t, err)
}

func TestResolvePrefersConcreteOverPolymorphic(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	polyParam := declParam(m, ty.NewTyVar(tvar))
	polyFn := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{polyParam},
	})
	_ = polyFn

	concreteParam := declParam(m, ty.NewInt(ty.Par, ty.NonOpt))
	concreteFn := m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Params: []thir.DeclarationID{concreteParam}})

	om := m.BuildOverloadMap()
	got, err := Resolve(m, om, name, []ty.Type{ty.NewInt(ty.Par, ty.NonOpt)})
	require.NoError(t, err)
	require.Equal(t, concreteFn, got.Function)
}

func TestResolveInstantiatesPolymorphicCandidate(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("identity")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	param := declParam(m, ty.NewTyVar(tvar))
	fid := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewTyVar(tvar)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
	})

	om := m.BuildOverloadMap()
	got, err := Resolve(m, om, name, []ty.Type{ty.NewInt(ty.Par, ty.NonOpt)})
	require.NoError(t, err)
	require.Equal(t, fid, got.Function)
	require.True(t, got.Signature.Ret.Equals(ty.NewInt(ty.Par, ty.NonOpt)))
}

func TestResolveArrayArgumentDoesNotUnifyWithTyVar(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	param := declParam(m, ty.NewTyVar(tvar))
	m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
	})

	om := m.BuildOverloadMap()
	arr := ty.NewArray(ty.NewInt(ty.Par, ty.NonOpt), ty.NewInt(ty.Par, ty.NonOpt))
	_, err := Resolve(m, om, name, []ty.Type{arr})
	require.Error(t, err, "an array argument must not instantiate a bare ty-var")
}

func TestResolveFunctionArgumentDoesNotUnifyWithTyVar(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")

	tvar := ty.TVar{ID: "T", Varifiable: true}
	param := declParam(m, ty.NewTyVar(tvar))
	m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
	})

	om := m.BuildOverloadMap()
	fnTy := ty.NewFunction([]ty.Type{ty.NewInt(ty.Par, ty.NonOpt)}, ty.NewBool(ty.Par, ty.NonOpt))
	_, err := Resolve(m, om, name, []ty.Type{fnTy})
	require.Error(t, err, "a function argument must not instantiate a bare ty-var")
}

func TestResolveArityMismatchRejected(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	p := declParam(m, ty.NewInt(ty.Par, ty.NonOpt))
	m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)), Params: []thir.DeclarationID{p}})

	om := m.BuildOverloadMap()
	_, err := Resolve(m, om, name, []ty.Type{})
	require.Error(t, err)
}

func TestResolveAmbiguousWhenGenuinelyTied(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")

	tA := ty.TVar{ID: "A", Varifiable: true}
	tB := ty.TVar{ID: "B", Varifiable: true}
	pA := declParam(m, ty.NewTyVar(tA))
	fA := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)),
		TyParams:     []ty.TVar{tA},
		Params:       []thir.DeclarationID{pA},
	})
	pB := declParam(m, ty.NewTyVar(tB))
	fB := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(ty.NewBool(ty.Par, ty.NonOpt)),
		TyParams:     []ty.TVar{tB},
		Params:       []thir.DeclarationID{pB},
	})
	_, _ = fA, fB

	om := m.BuildOverloadMap()
	_, err := Resolve(m, om, name, []ty.Type{ty.NewInt(ty.Par, ty.NonOpt)})
	require.Error(t, err)
}
