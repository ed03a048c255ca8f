// Package fold implements the Folder/Visitor rewrite protocol shared by
// type specialisation, function dispatch preamble synthesis, and type
// erasure. A Folder rewrites one Model into a new Model, memoizing
// every source index it has already translated in a ReplacementMap so
// that folding the same source item twice returns the same destination
// id.
//
// The default recursion is grounded on the teacher's
// DictElaborator.transformExpr (internal/elaborate/dictionaries.go): a
// type switch over expression shapes that rebuilds each node with its
// children folded, falling through to "copy as-is" for atomic shapes.
// That method is a single concrete transform; Folder generalises it
// into an overridable-hook interface so the three THIR transforms can
// share one driver while overriding only the handful of node shapes
// each one actually rewrites.
package fold

import (
	"github.com/shackle-lang/shackle/internal/arena"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// ReplacementMap holds, per item kind, the mapping from a source index
// to the destination index it was folded into. Lookups make FoldX
// idempotent: folding the same source item twice returns the same
// destination id rather than inserting a duplicate.
type ReplacementMap struct {
	Annotations  *arena.Map[thir.Annotation, thir.AnnotationID]
	Constraints  *arena.Map[thir.Constraint, thir.ConstraintID]
	Declarations *arena.Map[thir.Declaration, thir.DeclarationID]
	Enumerations *arena.Map[thir.Enumeration, thir.EnumerationID]
	Functions    *arena.Map[thir.Function, thir.FunctionID]
	Outputs      *arena.Map[thir.Output, thir.OutputID]
	Exprs        *arena.Map[thir.Expr, thir.ExprID]
}

func newReplacementMap() *ReplacementMap {
	return &ReplacementMap{
		Annotations:  arena.NewMap[thir.Annotation, thir.AnnotationID](),
		Constraints:  arena.NewMap[thir.Constraint, thir.ConstraintID](),
		Declarations: arena.NewMap[thir.Declaration, thir.DeclarationID](),
		Enumerations: arena.NewMap[thir.Enumeration, thir.EnumerationID](),
		Functions:    arena.NewMap[thir.Function, thir.FunctionID](),
		Outputs:      arena.NewMap[thir.Output, thir.OutputID](),
		Exprs:        arena.NewMap[thir.Expr, thir.ExprID](),
	}
}

// Hooks is the set of overridable rewrite points. A transform embeds
// *Base, assigns itself to Base.Self, and overrides whichever hooks it
// needs; every hook not overridden falls back to Base's structural
// default, which recurses into children through Self so an override
// deep in an expression tree still takes effect for its ancestors.
type Hooks interface {
	FoldAnnotation(id thir.AnnotationID) thir.AnnotationID
	FoldConstraint(id thir.ConstraintID) thir.ConstraintID
	FoldDeclaration(id thir.DeclarationID) thir.DeclarationID
	FoldEnumeration(id thir.EnumerationID) thir.EnumerationID
	FoldFunction(id thir.FunctionID) thir.FunctionID
	FoldOutput(id thir.OutputID) thir.OutputID
	FoldDomain(d thir.Domain) thir.Domain
	FoldPattern(p thir.Pattern) thir.Pattern
	FoldExpr(id thir.ExprID) thir.ExprID

	FoldLit(n *thir.Lit) thir.Expr
	FoldIdentifier(n *thir.Identifier) thir.Expr
	FoldArrayLit(n *thir.ArrayLit) thir.Expr
	FoldSetLit(n *thir.SetLit) thir.Expr
	FoldTupleLit(n *thir.TupleLit) thir.Expr
	FoldRecordLit(n *thir.RecordLit) thir.Expr
	FoldArrayComp(n *thir.ArrayComp) thir.Expr
	FoldSetComp(n *thir.SetComp) thir.Expr
	FoldArrayAccess(n *thir.ArrayAccess) thir.Expr
	FoldTupleAccess(n *thir.TupleAccess) thir.Expr
	FoldRecordAccess(n *thir.RecordAccess) thir.Expr
	FoldIfThenElse(n *thir.IfThenElse) thir.Expr
	FoldCase(n *thir.Case) thir.Expr
	FoldCall(n *thir.Call) thir.Expr
	FoldLet(n *thir.Let) thir.Expr
	FoldLambda(n *thir.Lambda) thir.Expr
}

// Base drives a fold of Src into a fresh Dst, dispatching every hook
// through Self so overrides in an embedding transform take effect.
type Base struct {
	Src  *thir.Model
	Dst  *thir.Model
	Repl *ReplacementMap
	Self Hooks
}

// NewBase creates a Base ready to fold src into a new, empty Dst.
// Callers must set Self to the concrete Hooks implementation (usually
// the embedding transform itself) before folding anything.
func NewBase(src *thir.Model) *Base {
	return &Base{Src: src, Dst: thir.New(), Repl: newReplacementMap()}
}

// Run drives the two-phase fold described in spec §4.3: first every
// top-level function and declaration is shallow-inserted so its
// destination index is stable (letting forward references resolve),
// then bodies and the remaining top-level item kinds are folded in
// source order to build the destination's top_level list.
func (b *Base) Run() *thir.Model {
	for _, ref := range b.Src.TopLevel {
		switch ref.Kind {
		case thir.ItemFunction:
			b.shallowFunction(ref.Function)
		case thir.ItemDeclaration:
			b.shallowDeclaration(ref.Declaration)
		}
	}

	for _, ref := range b.Src.TopLevel {
		switch ref.Kind {
		case thir.ItemAnnotation:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemAnnotation, Annotation: b.Self.FoldAnnotation(ref.Annotation)})
		case thir.ItemConstraint:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemConstraint, Constraint: b.Self.FoldConstraint(ref.Constraint)})
		case thir.ItemDeclaration:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemDeclaration, Declaration: b.foldDeclarationBody(ref.Declaration)})
		case thir.ItemEnumeration:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemEnumeration, Enumeration: b.Self.FoldEnumeration(ref.Enumeration)})
		case thir.ItemFunction:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: b.foldFunctionBody(ref.Function)})
		case thir.ItemOutput:
			b.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemOutput, Output: b.Self.FoldOutput(ref.Output)})
		}
	}

	if b.Src.Solve != nil {
		solve := *b.Src.Solve
		if solve.Decl.Valid() {
			solve.Decl = b.Self.FoldDeclaration(solve.Decl)
		}
		b.Dst.Solve = &solve
	}
	return b.Dst
}

func (b *Base) shallowFunction(id thir.FunctionID) {
	if _, ok := b.Repl.Functions.Get(id); ok {
		return
	}
	f := b.Src.Functions.Get(id)
	params := make([]thir.DeclarationID, len(f.Params))
	for i, p := range f.Params {
		params[i] = b.Self.FoldDeclaration(p)
	}
	dst := thir.Function{
		Name:              f.Name,
		ReturnDomain:      b.Self.FoldDomain(f.ReturnDomain),
		TyParams:          append([]ty.TVar(nil), f.TyParams...),
		Params:            params,
		IsSpecialisation:  f.IsSpecialisation,
		MangledParamTypes: f.MangledParamTypes,
	}
	dstID := b.Dst.InsertFunction(dst)
	b.Repl.Functions.Set(id, dstID)
}

func (b *Base) foldFunctionBody(id thir.FunctionID) thir.FunctionID {
	dstID, ok := b.Repl.Functions.Get(id)
	if !ok {
		b.shallowFunction(id)
		dstID, _ = b.Repl.Functions.Get(id)
	}
	src := b.Src.Functions.Get(id)
	dst := b.Dst.Functions.Get(dstID)
	dst.Anns = b.foldExprSlice(src.Anns)
	if src.Body.Valid() {
		dst.Body = b.Self.FoldExpr(src.Body)
	}
	b.Dst.Functions.Set(dstID, dst)
	return dstID
}

func (b *Base) shallowDeclaration(id thir.DeclarationID) {
	if _, ok := b.Repl.Declarations.Get(id); ok {
		return
	}
	d := b.Src.Declarations.Get(id)
	dst := thir.Declaration{
		Domain:   b.Self.FoldDomain(d.Domain),
		Name:     d.Name,
		HasName:  d.HasName,
		TopLevel: d.TopLevel,
	}
	dstID := b.Dst.InsertDeclaration(dst)
	b.Repl.Declarations.Set(id, dstID)
}

func (b *Base) foldDeclarationBody(id thir.DeclarationID) thir.DeclarationID {
	dstID, ok := b.Repl.Declarations.Get(id)
	if !ok {
		b.shallowDeclaration(id)
		dstID, _ = b.Repl.Declarations.Get(id)
	}
	src := b.Src.Declarations.Get(id)
	dst := b.Dst.Declarations.Get(dstID)
	dst.Anns = b.foldExprSlice(src.Anns)
	if src.Def.Valid() {
		dst.Def = b.Self.FoldExpr(src.Def)
	}
	b.Dst.Declarations.Set(dstID, dst)
	return dstID
}

// --- default item-kind hooks (Base implements Hooks for the parts a
// transform doesn't override; a transform delegates to these via
// Base's promoted methods when it only wants to override a sibling
// hook) ---

func (b *Base) FoldAnnotation(id thir.AnnotationID) thir.AnnotationID {
	if dst, ok := b.Repl.Annotations.Get(id); ok {
		return dst
	}
	a := b.Src.Annotations.Get(id)
	params := make([]thir.DeclarationID, len(a.Params))
	for i, p := range a.Params {
		params[i] = b.Self.FoldDeclaration(p)
	}
	dstID := b.Dst.InsertAnnotation(thir.Annotation{Name: a.Name, Params: params})
	b.Repl.Annotations.Set(id, dstID)
	return dstID
}

func (b *Base) FoldConstraint(id thir.ConstraintID) thir.ConstraintID {
	if dst, ok := b.Repl.Constraints.Get(id); ok {
		return dst
	}
	c := b.Src.Constraints.Get(id)
	dstID := b.Dst.InsertConstraint(thir.Constraint{
		Expr:     b.Self.FoldExpr(c.Expr),
		Anns:     b.foldExprSlice(c.Anns),
		TopLevel: c.TopLevel,
		LetLocal: c.LetLocal,
	})
	b.Repl.Constraints.Set(id, dstID)
	return dstID
}

func (b *Base) FoldDeclaration(id thir.DeclarationID) thir.DeclarationID {
	if dst, ok := b.Repl.Declarations.Get(id); ok {
		return dst
	}
	b.shallowDeclaration(id)
	return b.foldDeclarationBody(id)
}

func (b *Base) FoldEnumeration(id thir.EnumerationID) thir.EnumerationID {
	if dst, ok := b.Repl.Enumerations.Get(id); ok {
		return dst
	}
	e := b.Src.Enumerations.Get(id)
	ctors := make([]thir.Constructor, len(e.Constructors))
	for i, c := range e.Constructors {
		params := make([]thir.DeclarationID, len(c.Params))
		for j, p := range c.Params {
			params[j] = b.Self.FoldDeclaration(p)
		}
		ctors[i] = thir.Constructor{Name: c.Name, Params: params}
	}
	dstID := b.Dst.InsertEnumeration(thir.Enumeration{Name: e.Name, ID: e.ID, Constructors: ctors})
	b.Repl.Enumerations.Set(id, dstID)
	return dstID
}

func (b *Base) FoldFunction(id thir.FunctionID) thir.FunctionID {
	if dst, ok := b.Repl.Functions.Get(id); ok {
		return dst
	}
	b.shallowFunction(id)
	return b.foldFunctionBody(id)
}

func (b *Base) FoldOutput(id thir.OutputID) thir.OutputID {
	if dst, ok := b.Repl.Outputs.Get(id); ok {
		return dst
	}
	o := b.Src.Outputs.Get(id)
	out := thir.Output{Expr: b.Self.FoldExpr(o.Expr)}
	if o.Section.Valid() {
		out.Section = b.Self.FoldExpr(o.Section)
	}
	dstID := b.Dst.InsertOutput(out)
	b.Repl.Outputs.Set(id, dstID)
	return dstID
}

func (b *Base) FoldDomain(d thir.Domain) thir.Domain {
	switch d.Kind {
	case thir.Bounded:
		if d.Bound.Valid() {
			d.Bound = b.Self.FoldExpr(d.Bound)
		}
		return d
	case thir.SetDomain:
		inner := b.Self.FoldDomain(*d.Inner)
		d.Inner = &inner
		return d
	case thir.ArrayDomain:
		index := b.Self.FoldDomain(*d.Index)
		elem := b.Self.FoldDomain(*d.Elem)
		d.Index, d.Elem = &index, &elem
		return d
	case thir.TupleDomain:
		elems := make([]thir.Domain, len(d.Elems))
		for i, e := range d.Elems {
			elems[i] = b.Self.FoldDomain(e)
		}
		d.Elems = elems
		return d
	case thir.RecordDomain:
		fields := make([]thir.DomainField, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = thir.DomainField{Name: f.Name, Domain: b.Self.FoldDomain(f.Domain)}
		}
		d.Fields = fields
		return d
	default: // Unbounded
		return d
	}
}

func (b *Base) FoldPattern(p thir.Pattern) thir.Pattern {
	switch p.Kind {
	case thir.PatternEnumCtor:
		sub := make([]thir.Pattern, len(p.SubPatterns))
		for i, s := range p.SubPatterns {
			sub[i] = b.Self.FoldPattern(s)
		}
		p.SubPatterns = sub
		return p
	case thir.PatternAnnotationCtor:
		sub := make([]thir.Pattern, len(p.SubPatterns))
		for i, s := range p.SubPatterns {
			sub[i] = b.Self.FoldPattern(s)
		}
		p.SubPatterns = sub
		return p
	case thir.PatternTuple:
		elems := make([]thir.Pattern, len(p.TupleElems))
		for i, e := range p.TupleElems {
			elems[i] = b.Self.FoldPattern(e)
		}
		p.TupleElems = elems
		return p
	case thir.PatternRecord:
		fields := make([]thir.PatternField, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = thir.PatternField{Name: f.Name, Pattern: b.Self.FoldPattern(f.Pattern)}
		}
		p.Fields = fields
		return p
	case thir.PatternLiteral:
		p.Literal = b.Self.FoldExpr(p.Literal)
		return p
	default: // PatternWildcard
		return p
	}
}

func (b *Base) foldExprSlice(ids []thir.ExprID) []thir.ExprID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]thir.ExprID, len(ids))
	for i, id := range ids {
		out[i] = b.Self.FoldExpr(id)
	}
	return out
}

// FoldExpr is the dispatch-and-memoize driver shared by every
// transform. It is part of Hooks so Self can call back into it from
// default recursion. Transforms mostly rewrite expressions by
// overriding the per-shape hooks it dispatches to; a transform that
// post-processes every folded expression (internal/erase) overrides
// this method too and delegates to it.
func (b *Base) FoldExpr(id thir.ExprID) thir.ExprID {
	if dst, ok := b.Repl.Exprs.Get(id); ok {
		return dst
	}
	n := b.Src.Exprs.Get(id)
	var folded thir.Expr
	switch e := n.(type) {
	case *thir.Lit:
		folded = b.Self.FoldLit(e)
	case *thir.Identifier:
		folded = b.Self.FoldIdentifier(e)
	case *thir.ArrayLit:
		folded = b.Self.FoldArrayLit(e)
	case *thir.SetLit:
		folded = b.Self.FoldSetLit(e)
	case *thir.TupleLit:
		folded = b.Self.FoldTupleLit(e)
	case *thir.RecordLit:
		folded = b.Self.FoldRecordLit(e)
	case *thir.ArrayComp:
		folded = b.Self.FoldArrayComp(e)
	case *thir.SetComp:
		folded = b.Self.FoldSetComp(e)
	case *thir.ArrayAccess:
		folded = b.Self.FoldArrayAccess(e)
	case *thir.TupleAccess:
		folded = b.Self.FoldTupleAccess(e)
	case *thir.RecordAccess:
		folded = b.Self.FoldRecordAccess(e)
	case *thir.IfThenElse:
		folded = b.Self.FoldIfThenElse(e)
	case *thir.Case:
		folded = b.Self.FoldCase(e)
	case *thir.Call:
		folded = b.Self.FoldCall(e)
	case *thir.Let:
		folded = b.Self.FoldLet(e)
	case *thir.Lambda:
		folded = b.Self.FoldLambda(e)
	default:
		folded = n
	}
	dstID := b.Dst.InsertExpr(folded)
	b.Repl.Exprs.Set(id, dstID)
	return dstID
}

// --- default expression-shape hooks ---

func (b *Base) FoldLit(n *thir.Lit) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	return &cp
}

func (b *Base) FoldIdentifier(n *thir.Identifier) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	switch n.Kind {
	case thir.IdentDeclaration:
		cp.Declaration = b.Self.FoldDeclaration(n.Declaration)
	case thir.IdentFunction:
		cp.Function = b.Self.FoldFunction(n.Function)
	case thir.IdentAnnotation, thir.IdentAnnotationDestructor:
		cp.Annotation = b.Self.FoldAnnotation(n.Annotation)
	case thir.IdentEnumeration, thir.IdentEnumMember, thir.IdentEnumDestructor:
		cp.Enumeration = b.Self.FoldEnumeration(n.Enumeration)
	}
	return &cp
}

func (b *Base) FoldArrayLit(n *thir.ArrayLit) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Elements = b.foldExprSlice(n.Elements)
	return &cp
}

func (b *Base) FoldSetLit(n *thir.SetLit) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Elements = b.foldExprSlice(n.Elements)
	return &cp
}

func (b *Base) FoldTupleLit(n *thir.TupleLit) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Elements = b.foldExprSlice(n.Elements)
	return &cp
}

func (b *Base) FoldRecordLit(n *thir.RecordLit) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	fields := make([]thir.RecordField, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = thir.RecordField{Name: f.Name, Value: b.Self.FoldExpr(f.Value)}
	}
	cp.Fields = fields
	return &cp
}

func (b *Base) foldGenerators(gens []thir.Generator) []thir.Generator {
	out := make([]thir.Generator, len(gens))
	for i, g := range gens {
		ng := g
		ng.Decls = append([]thir.DeclarationID(nil), g.Decls...)
		for j, d := range ng.Decls {
			ng.Decls[j] = b.Self.FoldDeclaration(d)
		}
		if g.Collection.Valid() {
			ng.Collection = b.Self.FoldExpr(g.Collection)
		}
		if g.Decl.Valid() {
			ng.Decl = b.Self.FoldDeclaration(g.Decl)
		}
		if g.Where.Valid() {
			ng.Where = b.Self.FoldExpr(g.Where)
		}
		out[i] = ng
	}
	return out
}

func (b *Base) FoldArrayComp(n *thir.ArrayComp) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	if n.IndicesTemplate.Valid() {
		cp.IndicesTemplate = b.Self.FoldExpr(n.IndicesTemplate)
	}
	cp.Generators = b.foldGenerators(n.Generators)
	cp.Template = b.Self.FoldExpr(n.Template)
	return &cp
}

func (b *Base) FoldSetComp(n *thir.SetComp) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Generators = b.foldGenerators(n.Generators)
	cp.Template = b.Self.FoldExpr(n.Template)
	return &cp
}

func (b *Base) FoldArrayAccess(n *thir.ArrayAccess) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Collection = b.Self.FoldExpr(n.Collection)
	cp.Index = b.Self.FoldExpr(n.Index)
	return &cp
}

func (b *Base) FoldTupleAccess(n *thir.TupleAccess) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Tuple = b.Self.FoldExpr(n.Tuple)
	return &cp
}

func (b *Base) FoldRecordAccess(n *thir.RecordAccess) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Record = b.Self.FoldExpr(n.Record)
	return &cp
}

func (b *Base) FoldIfThenElse(n *thir.IfThenElse) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	branches := make([]thir.CondThen, len(n.Branches))
	for i, br := range n.Branches {
		branches[i] = thir.CondThen{Cond: b.Self.FoldExpr(br.Cond), Result: b.Self.FoldExpr(br.Result)}
	}
	cp.Branches = branches
	cp.Else = b.Self.FoldExpr(n.Else)
	return &cp
}

func (b *Base) FoldCase(n *thir.Case) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.Scrutinee = b.Self.FoldExpr(n.Scrutinee)
	arms := make([]thir.CaseArm, len(n.Arms))
	for i, arm := range n.Arms {
		arms[i] = thir.CaseArm{Pattern: b.Self.FoldPattern(arm.Pattern), Result: b.Self.FoldExpr(arm.Result)}
	}
	cp.Arms = arms
	return &cp
}

func (b *Base) FoldCall(n *thir.Call) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	callable := n.Callable
	switch callable.Kind {
	case thir.CallableAnnotationCtor, thir.CallableAnnotationDtor:
		callable.Annotation = b.Self.FoldAnnotation(callable.Annotation)
	case thir.CallableEnumCtor, thir.CallableEnumDtor:
		callable.Enum = b.Self.FoldEnumeration(callable.Enum)
	case thir.CallableFunction:
		callable.Function = b.Self.FoldFunction(callable.Function)
	case thir.CallableExpr:
		callable.Expr = b.Self.FoldExpr(callable.Expr)
	}
	cp.Callable = callable
	cp.Args = b.foldExprSlice(n.Args)
	return &cp
}

func (b *Base) FoldLet(n *thir.Let) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	items := make([]thir.LetItem, len(n.Items))
	for i, it := range n.Items {
		switch it.Kind {
		case thir.LetConstraint:
			items[i] = thir.LetItem{Kind: thir.LetConstraint, Constraint: b.Self.FoldConstraint(it.Constraint)}
		case thir.LetDeclaration:
			items[i] = thir.LetItem{Kind: thir.LetDeclaration, Declaration: b.Self.FoldDeclaration(it.Declaration)}
		}
	}
	cp.Items = items
	cp.In = b.Self.FoldExpr(n.In)
	return &cp
}

func (b *Base) FoldLambda(n *thir.Lambda) thir.Expr {
	cp := *n
	cp.Anns = b.foldExprSlice(n.Anns)
	cp.ReturnDomain = b.Self.FoldDomain(n.ReturnDomain)
	params := make([]thir.DeclarationID, len(n.Params))
	for i, p := range n.Params {
		params[i] = b.Self.FoldDeclaration(p)
	}
	cp.Params = params
	cp.Body = b.Self.FoldExpr(n.Body)
	return &cp
}
