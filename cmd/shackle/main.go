// Command shackle builds a small THIR model in-process and drives it
// through the three core transforms (specialize -> dispatch -> erase),
// printing a staged trace of what each one did. There is no parser
// wired in (spec.md §1 places the tree-sitter front end out of
// scope), so the "source" here is assembled directly with the thir
// builder functions rather than read from a file.
//
// Grounded on cmd/test_dict_demo/main.go's "build a tiny program, push
// it through each pipeline stage, print a human-readable trace" idiom
// and cmd/ailang/main.go's fatih/color SprintFunc palette.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/pipeline"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	fmt.Println(bold("=== Shackle THIR pipeline demo ==="))
	fmt.Println()

	ctx := registry.NewDefaultContext()
	m := buildDemoModel(ctx)

	report("0. source THIR", m)
	fmt.Println()

	res, ok := pipeline.Run(pipeline.Config{
		RegisterBuiltins: true,
		OnStage: func(stage string, out *thir.Model) {
			fmt.Println(cyan(stage + "..."))
			report("   after "+stage, out)
		},
	}, m, ctx)

	for _, stage := range []string{pipeline.StageCheck, pipeline.StageSpecialize, pipeline.StageDispatch, pipeline.StageErase} {
		if sink, present := res.Sinks[stage]; present {
			printSink(stage, sink)
		}
	}
	fmt.Println()

	if !ok {
		fmt.Println(bold(red(fmt.Sprintf("Pipeline halted at stage %q.", res.FailedStage))))
		os.Exit(1)
	}
	fmt.Println(bold(green("Pipeline complete.")))
}

func printSink(stage string, sink *diag.Sink) {
	if sink.OK() {
		fmt.Printf("   %s %s: no diagnostics\n", green("✓"), stage)
		return
	}
	fmt.Printf("   %s %s: %d diagnostic(s)\n", red("✗"), stage, sink.Len())
	for _, r := range sink.Reports() {
		fmt.Printf("     - [%s] %s: %s\n", yellow(r.Code), r.Phase, r.Message)
	}
}

func report(label string, m *thir.Model) {
	var fns, polyFns, decls, enums int
	m.AllFunctions(func(_ thir.FunctionID, f thir.Function) {
		fns++
		if f.IsPolymorphic() {
			polyFns++
		}
	})
	for _, ref := range m.TopLevel {
		switch ref.Kind {
		case thir.ItemDeclaration:
			decls++
		case thir.ItemEnumeration:
			enums++
		}
	}
	fmt.Printf("%s: %d top-level item(s) - %d function(s) (%d polymorphic), %d declaration(s), %d enum(s)\n",
		label, len(m.TopLevel), fns, polyFns, decls, enums)
}

// buildDemoModel assembles one THIR model exercising every scenario
// spec.md §8 calls out: a polymorphic identity function monomorphised
// at two call sites, a four-member par/var/opt overload set for
// dispatch, an opt-int declaration and a record declaration destined
// for erasure, and a two-constructor enumeration.
func buildDemoModel(ctx *registry.Context) *thir.Model {
	m := thir.New()

	buildIdentity(m, ctx)
	buildFooOverloads(m, ctx)
	buildOptAndRecordDecls(m, ctx)
	buildColorEnum(m, ctx)

	return m
}

// buildIdentity declares `function any $T: identity($T: x) = x;`
// and calls it once at int and once at bool, matching spec.md §8
// scenario 3 ("Polymorphic specialisation").
func buildIdentity(m *thir.Model, ctx *registry.Context) {
	name := ctx.Idents.Intern("identity")
	tvar := ty.TVar{ID: "T", Varifiable: true}
	tvarTy := ty.NewTyVar(tvar)

	param := m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(tvarTy)})
	paramRef := m.InsertExpr(&thir.Identifier{
		Base:        thir.Base{Ty: tvarTy},
		Kind:        thir.IdentDeclaration,
		Declaration: param,
	})
	fid := m.AddFunction(thir.Function{
		Name:         name,
		ReturnDomain: thir.NewUnboundedDomain(tvarTy),
		TyParams:     []ty.TVar{tvar},
		Params:       []thir.DeclarationID{param},
		Body:         paramRef,
	})

	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	intLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 7})
	callInt := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: parInt},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fid},
		Args:     []thir.ExprID{intLit},
	})
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(parInt), Name: ctx.Idents.Intern("seven"), HasName: true,
		Def: callInt, TopLevel: true,
	})

	parBool := ty.NewBool(ty.Par, ty.NonOpt)
	boolLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parBool}, Kind: thir.LitBool, Value: true})
	callBool := m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: parBool},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fid},
		Args:     []thir.ExprID{boolLit},
	})
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(parBool), Name: ctx.Idents.Intern("truthy"), HasName: true,
		Def: callBool, TopLevel: true,
	})
}

// buildFooOverloads declares four overloads of foo over
// {var,par} x {opt,non-opt} int, the shape spec.md §8 scenarios 1 and
// 2 dispatch over.
func buildFooOverloads(m *thir.Model, ctx *registry.Context) {
	name := ctx.Idents.Intern("foo")
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)

	declare := func(paramTy ty.Type) thir.FunctionID {
		param := m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(paramTy)})
		body := m.InsertExpr(&thir.Identifier{
			Base: thir.Base{Ty: paramTy}, Kind: thir.IdentDeclaration, Declaration: param,
		})
		return m.AddFunction(thir.Function{
			Name:         name,
			ReturnDomain: thir.NewUnboundedDomain(paramTy),
			Params:       []thir.DeclarationID{param},
			Body:         body,
		})
	}

	declare(varInt.WithOpt(ty.OptYes))
	declare(varInt)
	declare(parInt.WithOpt(ty.OptYes))
	declare(parInt)
}

// buildOptAndRecordDecls adds `opt int: x = 2;` and
// `record(int: foo, float: bar): y = (foo: 1, bar: 2.5);`, matching
// spec.md §8 scenarios 5 and 6.
func buildOptAndRecordDecls(m *thir.Model, ctx *registry.Context) {
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	optInt := parInt.WithOpt(ty.OptYes)
	lit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 2})
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(optInt), Name: ctx.Idents.Intern("x"), HasName: true,
		Def: lit, TopLevel: true,
	})

	parFloat := ty.NewFloat(ty.Par, ty.NonOpt)
	recTy := ty.NewRecord(ty.Field{Name: "foo", Type: parInt}, ty.Field{Name: "bar", Type: parFloat})
	fooLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parInt}, Kind: thir.LitInt, Value: 1})
	barLit := m.InsertExpr(&thir.Lit{Base: thir.Base{Ty: parFloat}, Kind: thir.LitFloat, Value: 2.5})
	recLit := m.InsertExpr(thir.NewRecordLit(thir.Base{Ty: recTy},
		thir.RecordField{Name: "foo", Value: fooLit},
		thir.RecordField{Name: "bar", Value: barLit},
	))
	m.AddDeclaration(thir.Declaration{
		Domain: thir.NewUnboundedDomain(recTy), Name: ctx.Idents.Intern("y"), HasName: true,
		Def: recLit, TopLevel: true,
	})
}

// buildColorEnum declares `enum Color = {RED, GREEN};`, a minimal
// atomic-constructor enumeration for the erasure transform to expand
// into a defining set plus two integer-valued declarations (spec
// §4.7).
func buildColorEnum(m *thir.Model, ctx *registry.Context) {
	enumName := ctx.Idents.Intern("Color")
	id := ty.EnumID(1)
	m.AddEnumeration(thir.Enumeration{
		Name: enumName,
		ID:   id,
		Constructors: []thir.Constructor{
			{Name: ctx.Idents.Intern("RED")},
			{Name: ctx.Idents.Intern("GREEN")},
		},
	})
}
