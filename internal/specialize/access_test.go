package specialize

import (
	"testing"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
	"github.com/stretchr/testify/require"
)

// buildTupleAccessModel declares `array [int] of tuple(int, bool): xs`
// and `var int: i`, then defines a declaration whose value is `xs[i]`.
func buildTupleAccessModel(ctx *registry.Context, idxInst ty.Inst) (*thir.Model, thir.ExprID) {
	m := thir.New()
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)
	elem := ty.NewTuple(parInt, parBool)
	arrTy := ty.NewArray(parInt, elem)

	xs := m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(arrTy), Name: ctx.Idents.Intern("xs"), HasName: true, TopLevel: true,
	})
	idxTy := ty.NewInt(idxInst, ty.NonOpt)
	i := m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(idxTy), Name: ctx.Idents.Intern("i"), HasName: true, TopLevel: true,
	})

	xsRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: arrTy}, Kind: thir.IdentDeclaration, Declaration: xs})
	iRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: idxTy}, Kind: thir.IdentDeclaration, Declaration: i})
	resTy := elem
	if idxInst == ty.Var {
		resTy = ty.NewTuple(parInt.WithInst(ty.Var), parBool.WithInst(ty.Var))
	}
	access := m.InsertExpr(&thir.ArrayAccess{Base: thir.Base{Ty: resTy}, Collection: xsRef, Index: iRef})
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(resTy), Def: access, TopLevel: true})
	return m, access
}

func TestVarTupleAccessDecomposedIntoProjections(t *testing.T) {
	ctx := registry.NewDefaultContext()
	src, _ := buildTupleAccessModel(ctx, ty.Var)
	sink := diag.NewSink()

	dst, _ := New(src, ctx, sink).Run()
	require.True(t, sink.OK())

	// The declaration's definition must now be a tuple literal whose
	// elements access per-component projection comprehensions.
	var def thir.ExprID
	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemDeclaration {
			d := dst.Declarations.Get(ref.Declaration)
			if d.Def.Valid() {
				def = d.Def
			}
		}
	}
	require.True(t, def.Valid())

	lit, ok := dst.Exprs.Get(def).(*thir.TupleLit)
	require.True(t, ok, "var access into array-of-tuple should fold to a tuple literal")
	require.Len(t, lit.Elements, 2)
	for _, el := range lit.Elements {
		access, ok := dst.Exprs.Get(el).(*thir.ArrayAccess)
		require.True(t, ok)
		_, ok = dst.Exprs.Get(access.Collection).(*thir.ArrayComp)
		require.True(t, ok, "each component must index a projection comprehension")
	}
}

func TestParTupleAccessLeftIntact(t *testing.T) {
	ctx := registry.NewDefaultContext()
	src, _ := buildTupleAccessModel(ctx, ty.Par)
	sink := diag.NewSink()

	dst, _ := New(src, ctx, sink).Run()
	require.True(t, sink.OK())

	var sawPlainAccess bool
	for _, ref := range dst.TopLevel {
		if ref.Kind != thir.ItemDeclaration {
			continue
		}
		d := dst.Declarations.Get(ref.Declaration)
		if !d.Def.Valid() {
			continue
		}
		if _, ok := dst.Exprs.Get(d.Def).(*thir.ArrayAccess); ok {
			sawPlainAccess = true
		}
	}
	require.True(t, sawPlainAccess, "par access must keep its original shape")
}

func TestVarRecordAccessDecomposedIntoFieldProjections(t *testing.T) {
	ctx := registry.NewDefaultContext()
	m := thir.New()
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	elem := ty.NewRecord(
		ty.Field{Name: "b", Type: ty.NewBool(ty.Par, ty.NonOpt)},
		ty.Field{Name: "a", Type: parInt},
	)
	arrTy := ty.NewArray(parInt, elem)

	xs := m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(arrTy), Name: ctx.Idents.Intern("xs"), HasName: true, TopLevel: true,
	})
	varInt := ty.NewInt(ty.Var, ty.NonOpt)
	i := m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(varInt), Name: ctx.Idents.Intern("i"), HasName: true, TopLevel: true,
	})
	xsRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: arrTy}, Kind: thir.IdentDeclaration, Declaration: xs})
	iRef := m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: varInt}, Kind: thir.IdentDeclaration, Declaration: i})
	resTy := ty.NewRecord(
		ty.Field{Name: "a", Type: varInt},
		ty.Field{Name: "b", Type: ty.NewBool(ty.Var, ty.NonOpt)},
	)
	access := m.InsertExpr(&thir.ArrayAccess{Base: thir.Base{Ty: resTy}, Collection: xsRef, Index: iRef})
	m.AddDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(resTy), Def: access, TopLevel: true})

	sink := diag.NewSink()
	dst, _ := New(m, ctx, sink).Run()
	require.True(t, sink.OK())

	var def thir.ExprID
	for _, ref := range dst.TopLevel {
		if ref.Kind == thir.ItemDeclaration {
			d := dst.Declarations.Get(ref.Declaration)
			if d.Def.Valid() {
				def = d.Def
			}
		}
	}
	lit, ok := dst.Exprs.Get(def).(*thir.RecordLit)
	require.True(t, ok, "var access into array-of-record should fold to a record literal")
	require.Len(t, lit.Fields, 2)
	require.Equal(t, "a", lit.Fields[0].Name, "fields stay sorted")
	require.Equal(t, "b", lit.Fields[1].Name)
}
