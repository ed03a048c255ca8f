package overload

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

func addOverload(m *thir.Model, name ident.ID, paramTy, retTy ty.Type, withBody bool) thir.FunctionID {
	param := declParam(m, paramTy)
	fn := thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(retTy),
		Params:       []thir.DeclarationID{param},
	}
	if withBody {
		fn.Body = m.InsertExpr(&thir.Identifier{
			Base: thir.Base{Ty: paramTy}, Kind: thir.IdentDeclaration, Declaration: param,
		})
	}
	return m.AddFunction(fn)
}

func TestCheckDefinitionsAcceptsDisjointOverloads(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	parBool := ty.NewBool(ty.Par, ty.NonOpt)

	addOverload(m, name, ty.NewInt(ty.Par, ty.NonOpt), parBool, true)
	addOverload(m, name, ty.NewString(ty.NonOpt), parBool, true)

	require.Empty(t, CheckDefinitions(m, m.BuildOverloadMap()))
}

func TestCheckDefinitionsRejectsTwoBodiesOnEquivalentSignatures(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)

	addOverload(m, name, parInt, parBool, true)
	addOverload(m, name, parInt, parBool, true)

	reports := CheckDefinitions(m, m.BuildOverloadMap())
	require.Len(t, reports, 1)
	require.Equal(t, diag.OVL005, reports[0].Code)
}

func TestCheckDefinitionsAllowsOneBodyOnEquivalentSignatures(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)

	addOverload(m, name, parInt, parBool, true)
	addOverload(m, name, parInt, parBool, false)

	require.Empty(t, CheckDefinitions(m, m.BuildOverloadMap()))
}

func TestCheckDefinitionsRejectsIncompatibleReturnOnSubtypedOverload(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)

	// The more specific overload (par param) returns int; the general
	// one (var param) returns string, which cannot cover it.
	addOverload(m, name, parInt, parInt, true)
	addOverload(m, name, varInt, ty.NewString(ty.NonOpt), true)

	reports := CheckDefinitions(m, m.BuildOverloadMap())
	require.Len(t, reports, 1)
	require.Equal(t, diag.OVL006, reports[0].Code)
}

func TestCheckDefinitionsAcceptsWidenedReturnOnGeneralOverload(t *testing.T) {
	m := thir.New()
	reg := ident.NewRegistry()
	name := reg.Intern("f")
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)

	addOverload(m, name, parInt, parInt, true)
	addOverload(m, name, varInt, varInt, true)

	require.Empty(t, CheckDefinitions(m, m.BuildOverloadMap()))
}
