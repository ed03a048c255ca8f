// Package erase implements type erasure (spec.md §4.7), the last
// transform in the THIR pipeline: opt becomes a (bool, T) pair,
// record becomes a field-sorted tuple, and enumeration becomes plain
// int plus synthesised constructor/destructor functions. It is
// grounded on the teacher's field-sorted record handling
// (internal/typedast/typed_ast.go) for the record case; the
// enum/opt erasure machinery has no direct teacher analogue and is
// built from spec §4.7's own description (see DESIGN.md).
package erase

import (
	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/fold"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// Eraser folds a Model whose dispatch preambles are already in place
// (spec §9 Open Question (b): dispatch runs before erasure) into one
// with no opt, record, or enum types left anywhere in it.
type Eraser struct {
	*fold.Base
	ctx  *registry.Context
	sink *diag.Sink

	expect     map[thir.ExprID]ty.Type
	enums      map[thir.EnumerationID]*enumState
	enumByTyID map[ty.EnumID]*enumState
	builtins   map[ident.ID]thir.FunctionID
}

// New creates an Eraser over src, ready to Run.
func New(src *thir.Model, ctx *registry.Context, sink *diag.Sink) *Eraser {
	e := &Eraser{
		Base:       fold.NewBase(src),
		ctx:        ctx,
		sink:       sink,
		enums:      make(map[thir.EnumerationID]*enumState),
		enumByTyID: make(map[ty.EnumID]*enumState),
		builtins:   make(map[ident.ID]thir.FunctionID),
	}
	e.Self = e
	return e
}

// Run drives the fold: the top-down expectation pass runs first (spec
// §4.7's prep step), then every enumeration is synthesised before any
// item referencing one is folded, so FoldIdentifier/FoldCall can
// always resolve an enum reference regardless of source order, and
// finally every top-level item is folded in source order, splicing
// each enum's helpers in where the enum itself stood.
func (e *Eraser) Run() (*thir.Model, *diag.Sink) {
	e.expect = computeExpectations(e.Src)

	for _, ref := range e.Src.TopLevel {
		if ref.Kind == thir.ItemEnumeration {
			e.prepareEnum(ref.Enumeration)
		}
	}

	for _, ref := range e.Src.TopLevel {
		switch ref.Kind {
		case thir.ItemAnnotation:
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemAnnotation, Annotation: e.Self.FoldAnnotation(ref.Annotation)})
		case thir.ItemConstraint:
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemConstraint, Constraint: e.Self.FoldConstraint(ref.Constraint)})
		case thir.ItemDeclaration:
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemDeclaration, Declaration: e.Self.FoldDeclaration(ref.Declaration)})
		case thir.ItemEnumeration:
			e.spliceEnum(ref.Enumeration)
		case thir.ItemFunction:
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: e.Self.FoldFunction(ref.Function)})
		case thir.ItemOutput:
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemOutput, Output: e.Self.FoldOutput(ref.Output)})
		}
	}

	if e.Src.Solve != nil {
		solve := *e.Src.Solve
		if solve.Decl.Valid() {
			solve.Decl = e.Self.FoldDeclaration(solve.Decl)
		}
		e.Dst.Solve = &solve
	}
	return e.Dst, e.sink
}

// FoldExpr overrides Base's dispatch-and-memoize driver to add two
// cross-cutting passes every expression shape needs, not just the
// handful this package overrides directly: every destination node's
// computed type is rewritten to its erased shape (Base's own default
// per-shape folding only rebuilds structure, it never touches Ty),
// and the result is post-processed by erase_opt (spec §4.7) to lift a
// now-bottom-up-non-opt value into an opt tuple when its context still
// expects one.
func (e *Eraser) FoldExpr(id thir.ExprID) thir.ExprID {
	if dst, ok := e.Repl.Exprs.Get(id); ok {
		return dst
	}
	dstID := e.Base.FoldExpr(id)

	n := e.Src.Exprs.Get(id)
	fixed := setExprType(e.Dst.Exprs.Get(dstID), eraseType(n.Type()))
	e.Dst.Exprs.Set(dstID, fixed)

	wrapped := e.eraseOptRec(e.expectOf(id), n.Type(), dstID)
	e.Repl.Exprs.Set(id, wrapped)
	return wrapped
}

// FoldFunction synthesises a body for occurs/deopt once their single
// type parameter has been resolved to a concrete opt type by
// specialisation (spec §4.7, "occurs(x)/deopt(x) gain bodies that
// project tuple field 1/2"); every other function uses Base's default
// shallow-then-body fold.
func (e *Eraser) FoldFunction(id thir.FunctionID) thir.FunctionID {
	dstID := e.Base.FoldFunction(id)
	fn := e.Src.Functions.Get(id)
	if fn.Body.Valid() || len(fn.Params) != 1 {
		return dstID
	}
	var index int
	switch fn.Name {
	case e.ctx.WellKnown.Occurs:
		index = 1
	case e.ctx.WellKnown.Deopt:
		index = 2
	default:
		return dstID
	}
	dst := e.Dst.Functions.Get(dstID)
	paramTy := e.Dst.Declarations.Get(dst.Params[0]).Ty()
	if paramTy.Kind != ty.Tuple || len(paramTy.Elems) != 2 {
		return dstID
	}
	paramExpr := e.Dst.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: paramTy}, Kind: thir.IdentDeclaration, Declaration: dst.Params[0]})
	dst.Body = e.Dst.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: paramTy.Elems[index-1]}, Tuple: paramExpr, Index: index})
	e.Dst.Functions.Set(dstID, dst)
	return dstID
}

// FoldDomain rewrites a Domain's structure to match eraseType, so a
// Declaration's Domain.Ty always matches its folded Domain's
// structure (thir's own invariant on Domain).
func (e *Eraser) FoldDomain(d thir.Domain) thir.Domain {
	if d.Ty.Opt == ty.OptYes {
		return e.foldOptDomain(d)
	}
	switch d.Kind {
	case thir.Bounded:
		return e.foldBoundedDomain(d)
	case thir.SetDomain:
		inner := e.Self.FoldDomain(*d.Inner)
		return thir.NewSetDomain(inner, d.Ty.Inst, ty.NonOpt)
	case thir.ArrayDomain:
		idx := e.Self.FoldDomain(*d.Index)
		elem := e.Self.FoldDomain(*d.Elem)
		return thir.NewArrayDomain(idx, elem)
	case thir.TupleDomain:
		elems := make([]thir.Domain, len(d.Elems))
		for i, el := range d.Elems {
			elems[i] = e.Self.FoldDomain(el)
		}
		return thir.NewTupleDomain(elems...)
	case thir.RecordDomain:
		elems := make([]thir.Domain, len(d.Fields))
		for i, f := range d.Fields {
			elems[i] = e.Self.FoldDomain(f.Domain)
		}
		return thir.NewTupleDomain(elems...)
	default: // Unbounded
		if d.Ty.Kind == ty.Enum {
			return e.enumDomain(d.Ty)
		}
		return thir.NewUnboundedDomain(eraseType(d.Ty))
	}
}

func (e *Eraser) foldBoundedDomain(d thir.Domain) thir.Domain {
	if d.Ty.Kind == ty.Enum {
		return e.enumDomain(d.Ty)
	}
	nd := d
	nd.Ty = eraseType(d.Ty)
	if d.Bound.Valid() {
		nd.Bound = e.Self.FoldExpr(d.Bound)
	}
	return nd
}

func (e *Eraser) foldOptDomain(d thir.Domain) thir.Domain {
	boolDomain := thir.NewUnboundedDomain(ty.NewBool(d.Ty.Inst, ty.NonOpt))
	nonOpt := d
	nonOpt.Ty = d.Ty.NonOptType()
	return thir.NewTupleDomain(boolDomain, e.Self.FoldDomain(nonOpt))
}

// enumDomain rewrites a domain over an enum type to an int domain
// bounded by the enum's defining set, falling back to an unbounded
// int when the enum's erasure has not been prepared yet (a forward
// reference to an enum the prep pass has not reached - shouldn't
// happen given Run's two-pass ordering over prepareEnum, but keeps
// FoldDomain total rather than panicking on a map miss).
func (e *Eraser) enumDomain(t ty.Type) thir.Domain {
	intTy := ty.NewInt(t.Inst, ty.NonOpt)
	st, ok := e.enumByTyID[t.Enum]
	if !ok {
		return thir.NewUnboundedDomain(intTy)
	}
	setTy := ty.NewSet(ty.NewInt(ty.Par, ty.NonOpt), ty.Par, ty.NonOpt)
	setRef := e.Dst.InsertExpr(&thir.Identifier{
		Base:        thir.Base{Ty: setTy},
		Kind:        thir.IdentDeclaration,
		Declaration: st.definingSet,
	})
	return thir.NewBoundedDomain(setRef, intTy)
}

func (e *Eraser) expectOf(id thir.ExprID) ty.Type {
	if t, ok := e.expect[id]; ok {
		return t
	}
	return e.Src.Exprs.Get(id).Type()
}
