package erase

import (
	"github.com/shackle-lang/shackle/internal/fold"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// expectations is the prep step of spec §4.7: a top-down visitor that
// records, for every expression in the source model, the type its
// enclosing context expects it to have. Erasure needs this to tell
// "value is known non-opt but expected-opt" (must lift with `(true,
// v)`) apart from "value is bottom" (already ⊥) - a distinction the
// expression's own bottom-up Type() alone cannot make.
type expectations struct {
	*fold.Visitor
	m      *thir.Model
	expect map[thir.ExprID]ty.Type
}

// computeExpectations walks m once and returns the expected type for
// every expression reachable from a top-level item.
func computeExpectations(m *thir.Model) map[thir.ExprID]ty.Type {
	e := &expectations{m: m, expect: make(map[thir.ExprID]ty.Type)}
	e.Visitor = fold.NewVisitor(m)
	e.Visitor.Self = e
	e.Visitor.Run()
	return e.expect
}

func (e *expectations) expectOf(id thir.ExprID) ty.Type {
	if t, ok := e.expect[id]; ok {
		return t
	}
	return e.m.Exprs.Get(id).Type()
}

// VisitExpr overrides fold.Visitor's trivial default to thread `expect`
// through exactly the structural shapes spec §4.7 lists, recording the
// result for every node before recursing. Shapes not mentioned by the
// spec (access, identifiers, let, lambda, ...) keep the default
// behaviour of expecting each child's own bottom-up type.
func (e *expectations) VisitExpr(id thir.ExprID, expect ty.Type) {
	e.expect[id] = expect
	n := e.m.Exprs.Get(id)

	switch n := n.(type) {
	case *thir.ArrayLit:
		elemExpect := expect
		if expect.Kind == ty.Array {
			elemExpect = *expect.Elem
		}
		for _, el := range n.Elements {
			e.Self.VisitExpr(el, elemExpect)
		}
		return
	case *thir.SetLit:
		elemExpect := expect
		if expect.Kind == ty.Set {
			elemExpect = *expect.Elem
		}
		for _, el := range n.Elements {
			e.Self.VisitExpr(el, elemExpect)
		}
		return
	case *thir.TupleLit:
		for i, el := range n.Elements {
			childExpect := e.m.Exprs.Get(el).Type()
			if expect.Kind == ty.Tuple && i < len(expect.Elems) {
				childExpect = expect.Elems[i]
			}
			e.Self.VisitExpr(el, childExpect)
		}
		return
	case *thir.RecordLit:
		for _, f := range n.Fields {
			childExpect := e.m.Exprs.Get(f.Value).Type()
			if expect.Kind == ty.Record {
				if ft, ok := fieldType(expect, f.Name); ok {
					childExpect = ft
				}
			}
			e.Self.VisitExpr(f.Value, childExpect)
		}
		return
	case *thir.ArrayComp:
		elemExpect := e.m.Exprs.Get(n.Template).Type()
		if expect.Kind == ty.Array {
			elemExpect = *expect.Elem
		}
		e.visitGeneratorsDefault(n.Generators)
		if n.IndicesTemplate.Valid() {
			e.Self.VisitExpr(n.IndicesTemplate, e.m.Exprs.Get(n.IndicesTemplate).Type())
		}
		e.Self.VisitExpr(n.Template, elemExpect)
		return
	case *thir.SetComp:
		elemExpect := e.m.Exprs.Get(n.Template).Type()
		if expect.Kind == ty.Set {
			elemExpect = *expect.Elem
		}
		e.visitGeneratorsDefault(n.Generators)
		e.Self.VisitExpr(n.Template, elemExpect)
		return
	case *thir.IfThenElse:
		for _, br := range n.Branches {
			e.Self.VisitExpr(br.Cond, e.m.Exprs.Get(br.Cond).Type())
			e.Self.VisitExpr(br.Result, expect)
		}
		e.Self.VisitExpr(n.Else, expect)
		return
	case *thir.Case:
		e.Self.VisitExpr(n.Scrutinee, e.m.Exprs.Get(n.Scrutinee).Type())
		for _, arm := range n.Arms {
			e.Self.VisitExpr(arm.Result, expect)
		}
		return
	case *thir.Call:
		paramTypes := e.callParamTypes(n)
		for i, a := range n.Args {
			childExpect := e.m.Exprs.Get(a).Type()
			if paramTypes != nil && i < len(paramTypes) {
				childExpect = paramTypes[i]
			}
			e.Self.VisitExpr(a, childExpect)
		}
		if n.Callable.Kind == thir.CallableExpr {
			e.Self.VisitExpr(n.Callable.Expr, e.m.Exprs.Get(n.Callable.Expr).Type())
		}
		return
	}

	// Every other shape (literal, identifier, access, let, lambda) has
	// no structural child needing a non-default expectation; defer to
	// the embedded Visitor so its children still get recorded.
	e.Visitor.VisitExpr(id, expect)
}

func (e *expectations) visitGeneratorsDefault(gens []thir.Generator) {
	for _, g := range gens {
		switch g.Kind {
		case thir.GenIterator:
			for _, d := range g.Decls {
				e.Self.VisitDeclaration(d)
			}
			e.Self.VisitExpr(g.Collection, e.m.Exprs.Get(g.Collection).Type())
		case thir.GenAssignment:
			e.Self.VisitDeclaration(g.Decl)
		}
		if g.Where.Valid() {
			e.Self.VisitExpr(g.Where, e.m.Exprs.Get(g.Where).Type())
		}
	}
}

// callParamTypes returns the declared parameter types a call's
// callable expects. For an enum constructor call each declared
// argument type is adjusted to the call's constructor kind (opt, var,
// var opt, set or var set of the declared type). Returns nil when the
// callable's parameter types cannot be determined structurally
// (first-class function values, enum destructors), in which case the
// caller falls back to each argument's own type.
func (e *expectations) callParamTypes(call *thir.Call) []ty.Type {
	switch call.Callable.Kind {
	case thir.CallableFunction:
		fn := e.m.Functions.Get(call.Callable.Function)
		out := make([]ty.Type, len(fn.Params))
		for i, p := range fn.Params {
			out[i] = e.m.Declarations.Get(p).Ty()
		}
		return out
	case thir.CallableAnnotationCtor:
		a := e.m.Annotations.Get(call.Callable.Annotation)
		out := make([]ty.Type, len(a.Params))
		for i, p := range a.Params {
			out[i] = e.m.Declarations.Get(p).Ty()
		}
		return out
	case thir.CallableEnumCtor:
		en := e.m.Enumerations.Get(call.Callable.Enum)
		if call.Callable.ConstructorIndex < 0 || call.Callable.ConstructorIndex >= len(en.Constructors) {
			return nil
		}
		ctor := en.Constructors[call.Callable.ConstructorIndex]
		out := make([]ty.Type, len(ctor.Params))
		for i, p := range ctor.Params {
			t := e.m.Declarations.Get(p).Ty()
			switch call.Callable.EnumKind {
			case thir.EnumCallParOpt:
				t = t.WithOpt(ty.OptYes)
			case thir.EnumCallVar:
				t = t.WithInst(ty.Var)
			case thir.EnumCallVarOpt:
				t = t.WithInst(ty.Var).WithOpt(ty.OptYes)
			case thir.EnumCallSet:
				t = ty.NewSet(t, ty.Par, ty.NonOpt)
			case thir.EnumCallVarSet:
				t = ty.NewSet(t, ty.Var, ty.NonOpt)
			}
			out[i] = t
		}
		return out
	default:
		return nil
	}
}

func fieldType(t ty.Type, name string) (ty.Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return ty.Type{}, false
}
