package fold

import (
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// VisitHooks is the overridable hook set for a Visitor (spec §4.3, "A
// complementary Visitor walks a model without producing one, used e.g.
// to compute top-down type expectations before a rewrite"). Unlike
// Folder, a Visitor never builds a destination model; its only output
// is whatever side effect an override records as it walks.
//
// VisitExpr carries an `expect` type alongside the node id: the type
// the *enclosing* context imposes on this expression, which may differ
// from the node's own bottom-up Type() (e.g. a declaration typed `opt
// int` whose defining expression computed plain `int`). Every other
// hook visits an item kind with no such parameter, since items are
// typed by their own declared domain, not by an enclosing expectation.
type VisitHooks interface {
	VisitFunction(id thir.FunctionID)
	VisitDeclaration(id thir.DeclarationID)
	VisitConstraint(id thir.ConstraintID)
	VisitEnumeration(id thir.EnumerationID)
	VisitAnnotation(id thir.AnnotationID)
	VisitOutput(id thir.OutputID)
	VisitExpr(id thir.ExprID, expect ty.Type)
}

// Visitor drives a read-only walk of a Model, dispatching every hook
// through Self so an embedding pass's overrides take effect for
// descendants the same way Base's do for a Folder.
type Visitor struct {
	M    *thir.Model
	Self VisitHooks
}

// NewVisitor creates a Visitor over m. Callers must set Self before
// calling Run.
func NewVisitor(m *thir.Model) *Visitor {
	return &Visitor{M: m}
}

// Run walks every top-level item in source order, then the solve
// item's declaration if any.
func (v *Visitor) Run() {
	for _, ref := range v.M.TopLevel {
		switch ref.Kind {
		case thir.ItemAnnotation:
			v.Self.VisitAnnotation(ref.Annotation)
		case thir.ItemConstraint:
			v.Self.VisitConstraint(ref.Constraint)
		case thir.ItemDeclaration:
			v.Self.VisitDeclaration(ref.Declaration)
		case thir.ItemEnumeration:
			v.Self.VisitEnumeration(ref.Enumeration)
		case thir.ItemFunction:
			v.Self.VisitFunction(ref.Function)
		case thir.ItemOutput:
			v.Self.VisitOutput(ref.Output)
		}
	}
	if v.M.Solve != nil && v.M.Solve.Decl.Valid() {
		v.Self.VisitDeclaration(v.M.Solve.Decl)
	}
}

// --- default item-kind hooks ---

// VisitFunction visits every parameter declaration, every annotation,
// and - if present - the body, expecting the function's own return
// type (spec §4.7, "function bodies inherit the return type").
func (v *Visitor) VisitFunction(id thir.FunctionID) {
	fn := v.M.Functions.Get(id)
	for _, p := range fn.Params {
		v.Self.VisitDeclaration(p)
	}
	v.visitAnns(fn.Anns)
	if fn.Body.Valid() {
		v.Self.VisitExpr(fn.Body, fn.ReturnDomain.ComputedTy())
	}
}

// VisitDeclaration visits a declaration's defining expression, if any,
// expecting the declaration's own type (spec §4.7, "declaration
// definitions inherit the declaration's type").
func (v *Visitor) VisitDeclaration(id thir.DeclarationID) {
	d := v.M.Declarations.Get(id)
	v.visitAnns(d.Anns)
	if d.Def.Valid() {
		v.Self.VisitExpr(d.Def, d.Ty())
	}
}

// VisitConstraint visits a constraint's boolean expression and its
// annotations, each expecting its own bottom-up type - a constraint
// imposes no type coercion on its body beyond what the body already is.
func (v *Visitor) VisitConstraint(id thir.ConstraintID) {
	c := v.M.Constraints.Get(id)
	v.visitAnns(c.Anns)
	v.Self.VisitExpr(c.Expr, v.M.Exprs.Get(c.Expr).Type())
}

// VisitEnumeration visits every functional constructor's parameter
// declarations (an atomic constructor has none).
func (v *Visitor) VisitEnumeration(id thir.EnumerationID) {
	e := v.M.Enumerations.Get(id)
	for _, ctor := range e.Constructors {
		for _, p := range ctor.Params {
			v.Self.VisitDeclaration(p)
		}
	}
}

// VisitAnnotation visits a constructor-shaped annotation's parameter
// declarations (an atom has none).
func (v *Visitor) VisitAnnotation(id thir.AnnotationID) {
	a := v.M.Annotations.Get(id)
	for _, p := range a.Params {
		v.Self.VisitDeclaration(p)
	}
}

// VisitOutput visits the output expression and its optional section
// expression, each expecting its own bottom-up type.
func (v *Visitor) VisitOutput(id thir.OutputID) {
	o := v.M.Outputs.Get(id)
	if o.Section.Valid() {
		v.Self.VisitExpr(o.Section, v.M.Exprs.Get(o.Section).Type())
	}
	v.Self.VisitExpr(o.Expr, v.M.Exprs.Get(o.Expr).Type())
}

func (v *Visitor) visitAnns(anns []thir.ExprID) {
	for _, a := range anns {
		v.Self.VisitExpr(a, v.M.Exprs.Get(a).Type())
	}
}

// VisitExpr is the trivial default: it imposes no structural
// expectation of its own, recursing into every child expression with
// that child's own bottom-up type as its expectation. A pass that
// cares about top-down propagation (internal/erase's prep pass)
// overrides this to thread `expect` through the structural shapes
// spec §4.7 lists (arrays, tuples, records, comprehensions,
// branches, calls) and falls back to this method for every other
// shape.
func (v *Visitor) VisitExpr(id thir.ExprID, expect ty.Type) {
	n := v.M.Exprs.Get(id)
	v.visitAnns(n.Annotations())
	switch e := n.(type) {
	case *thir.Lit, *thir.Identifier:
		// leaves
	case *thir.ArrayLit:
		for _, el := range e.Elements {
			v.Self.VisitExpr(el, v.M.Exprs.Get(el).Type())
		}
	case *thir.SetLit:
		for _, el := range e.Elements {
			v.Self.VisitExpr(el, v.M.Exprs.Get(el).Type())
		}
	case *thir.TupleLit:
		for _, el := range e.Elements {
			v.Self.VisitExpr(el, v.M.Exprs.Get(el).Type())
		}
	case *thir.RecordLit:
		for _, f := range e.Fields {
			v.Self.VisitExpr(f.Value, v.M.Exprs.Get(f.Value).Type())
		}
	case *thir.ArrayComp:
		if e.IndicesTemplate.Valid() {
			v.Self.VisitExpr(e.IndicesTemplate, v.M.Exprs.Get(e.IndicesTemplate).Type())
		}
		v.visitGenerators(e.Generators)
		v.Self.VisitExpr(e.Template, v.M.Exprs.Get(e.Template).Type())
	case *thir.SetComp:
		v.visitGenerators(e.Generators)
		v.Self.VisitExpr(e.Template, v.M.Exprs.Get(e.Template).Type())
	case *thir.ArrayAccess:
		v.Self.VisitExpr(e.Collection, v.M.Exprs.Get(e.Collection).Type())
		v.Self.VisitExpr(e.Index, v.M.Exprs.Get(e.Index).Type())
	case *thir.TupleAccess:
		v.Self.VisitExpr(e.Tuple, v.M.Exprs.Get(e.Tuple).Type())
	case *thir.RecordAccess:
		v.Self.VisitExpr(e.Record, v.M.Exprs.Get(e.Record).Type())
	case *thir.IfThenElse:
		for _, br := range e.Branches {
			v.Self.VisitExpr(br.Cond, v.M.Exprs.Get(br.Cond).Type())
			v.Self.VisitExpr(br.Result, v.M.Exprs.Get(br.Result).Type())
		}
		v.Self.VisitExpr(e.Else, v.M.Exprs.Get(e.Else).Type())
	case *thir.Case:
		v.Self.VisitExpr(e.Scrutinee, v.M.Exprs.Get(e.Scrutinee).Type())
		for _, arm := range e.Arms {
			v.visitPattern(arm.Pattern)
			v.Self.VisitExpr(arm.Result, v.M.Exprs.Get(arm.Result).Type())
		}
	case *thir.Call:
		for _, a := range e.Args {
			v.Self.VisitExpr(a, v.M.Exprs.Get(a).Type())
		}
		if e.Callable.Kind == thir.CallableExpr {
			v.Self.VisitExpr(e.Callable.Expr, v.M.Exprs.Get(e.Callable.Expr).Type())
		}
	case *thir.Let:
		for _, it := range e.Items {
			switch it.Kind {
			case thir.LetConstraint:
				v.Self.VisitConstraint(it.Constraint)
			case thir.LetDeclaration:
				v.Self.VisitDeclaration(it.Declaration)
			}
		}
		v.Self.VisitExpr(e.In, v.M.Exprs.Get(e.In).Type())
	case *thir.Lambda:
		for _, p := range e.Params {
			v.Self.VisitDeclaration(p)
		}
		v.Self.VisitExpr(e.Body, e.ReturnDomain.ComputedTy())
	}
}

func (v *Visitor) visitGenerators(gens []thir.Generator) {
	for _, g := range gens {
		switch g.Kind {
		case thir.GenIterator:
			for _, d := range g.Decls {
				v.Self.VisitDeclaration(d)
			}
			v.Self.VisitExpr(g.Collection, v.M.Exprs.Get(g.Collection).Type())
		case thir.GenAssignment:
			v.Self.VisitDeclaration(g.Decl)
		}
		if g.Where.Valid() {
			v.Self.VisitExpr(g.Where, v.M.Exprs.Get(g.Where).Type())
		}
	}
}

func (v *Visitor) visitPattern(p thir.Pattern) {
	switch p.Kind {
	case thir.PatternEnumCtor, thir.PatternAnnotationCtor:
		for _, s := range p.SubPatterns {
			v.visitPattern(s)
		}
	case thir.PatternTuple:
		for _, s := range p.TupleElems {
			v.visitPattern(s)
		}
	case thir.PatternRecord:
		for _, f := range p.Fields {
			v.visitPattern(f.Pattern)
		}
	case thir.PatternLiteral:
		v.Self.VisitExpr(p.Literal, v.M.Exprs.Get(p.Literal).Type())
	}
}
