// Package specialize implements type specialisation / monomorphisation
// (spec.md §4.5): it eliminates polymorphic function definitions,
// producing one concrete clone per distinct call-site instantiation,
// and synthesises show/show_json/show_dzn bodies for argument types
// that will later be erased. It is grounded directly on the teacher's
// dictionary elaboration pass (internal/elaborate/dictionaries.go,
// elaborate.go): a cache keyed by (original definition, resolved
// type), a fresh-name counter, and structural synthesis of derived
// method bodies — generalised from "one method dictionary per type
// class instance" to "one monomorphic clone per ty-var assignment."
package specialize

import (
	"fmt"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/fold"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/overload"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// maxDepth bounds the specialisation worklist's recursion per spec §4.5.
const maxDepth = 1000

// folder is what both the Specializer and its per-instantiation body
// folder (paramSubstFolder) satisfy: the overridable Hooks plus the
// fixed FoldExpr driver every hook recurses through.
type folder interface {
	fold.Hooks
	FoldExpr(id thir.ExprID) thir.ExprID
}

type cacheKey struct {
	fn  thir.FunctionID
	sig string
}

type todoItem struct {
	dst      thir.FunctionID
	src      thir.FunctionID
	paramMap map[thir.DeclarationID]thir.DeclarationID
	subst    map[string]ty.Type
	depth    int
}

// Specializer folds a Model, replacing every polymorphic call with a
// reference to a concrete, monomorphic clone.
type Specializer struct {
	*fold.Base
	ctx   *registry.Context
	sink  *diag.Sink
	srcOM thir.OverloadMap

	concrete map[cacheKey]thir.FunctionID
	depth    map[thir.FunctionID]int
	todo     []todoItem

	// clones records every specialisation in creation order, keyed by
	// its source function, so Run can splice each clone into top_level
	// at (or after) the position its polymorphic original occupied
	// rather than wherever the triggering call site happened to be.
	clones       map[thir.FunctionID][]thir.FunctionID
	cloneOrder   []thir.FunctionID
	cloneEmitted map[thir.FunctionID]bool
}

// New creates a Specializer over src, ready to Run. src should already
// carry builtin declarations for show/show_json/show_dzn, occurs,
// deopt, concat, and join (see RegisterBuiltins) if the model uses any
// of them.
func New(src *thir.Model, ctx *registry.Context, sink *diag.Sink) *Specializer {
	s := &Specializer{
		Base:         fold.NewBase(src),
		ctx:          ctx,
		sink:         sink,
		srcOM:        src.BuildOverloadMap(),
		concrete:     make(map[cacheKey]thir.FunctionID),
		depth:        make(map[thir.FunctionID]int),
		clones:       make(map[thir.FunctionID][]thir.FunctionID),
		cloneEmitted: make(map[thir.FunctionID]bool),
	}
	s.Self = s
	return s
}

// Run drives the specialisation fold: annotations and enumerations are
// folded first (so every show-specialisation that depends on an enum
// is necessarily placed after it), then every top-level item except a
// bodied polymorphic function is folded in source order, and finally
// the worklist of lazily-instantiated bodies is drained.
func (s *Specializer) Run() (*thir.Model, *diag.Sink) {
	for _, ref := range s.Src.TopLevel {
		switch ref.Kind {
		case thir.ItemAnnotation:
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemAnnotation, Annotation: s.Self.FoldAnnotation(ref.Annotation)})
		case thir.ItemEnumeration:
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemEnumeration, Enumeration: s.Self.FoldEnumeration(ref.Enumeration)})
		}
	}

	for _, ref := range s.Src.TopLevel {
		switch ref.Kind {
		case thir.ItemDeclaration:
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemDeclaration, Declaration: s.Self.FoldDeclaration(ref.Declaration)})
		case thir.ItemConstraint:
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemConstraint, Constraint: s.Self.FoldConstraint(ref.Constraint)})
		case thir.ItemOutput:
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemOutput, Output: s.Self.FoldOutput(ref.Output)})
		case thir.ItemFunction:
			fn := s.Src.Functions.Get(ref.Function)
			if fn.IsPolymorphic() && fn.Body.Valid() {
				// A bodied polymorphic original is eliminated; clones
				// instantiated so far take its place in top_level, so
				// every specialisation lands at or after its source's
				// original position. Bodyless polymorphic functions
				// (builtin signatures like occurs/deopt) are emitted
				// normally - their call sites fold to the original id,
				// which must therefore stay reachable from top_level.
				s.emitClones(ref.Function)
				continue
			}
			s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: s.Self.FoldFunction(ref.Function)})
		}
	}

	s.drainTodo()
	s.emitRemainingClones()

	if s.Src.Solve != nil {
		solve := *s.Src.Solve
		if solve.Decl.Valid() {
			solve.Decl = s.Self.FoldDeclaration(solve.Decl)
		}
		s.Dst.Solve = &solve
	}
	return s.Dst, s.sink
}

func (s *Specializer) drainTodo() {
	for len(s.todo) > 0 {
		item := s.todo[0]
		s.todo = s.todo[1:]
		s.foldBody(item)
	}
}

func (s *Specializer) foldBody(item todoItem) {
	fn := s.Src.Functions.Get(item.src)
	dst := s.Dst.Functions.Get(item.dst)

	prevDepth := s.depth[item.src]
	s.depth[item.src] = item.depth
	defer func() { s.depth[item.src] = prevDepth }()

	switch {
	case fn.Body.Valid():
		sub := &paramSubstFolder{
			Base:     &fold.Base{Src: s.Src, Dst: s.Dst, Repl: s.Repl},
			sp:       s,
			paramMap: item.paramMap,
			subst:    item.subst,
		}
		sub.Self = sub
		dst.Body = sub.FoldExpr(fn.Body)
		dst.Anns = foldExprSliceUsing(sub, fn.Anns)
	case isShowFamily(s.ctx, fn.Name):
		argTy := s.Src.Declarations.Get(fn.Params[0]).Ty().Substitute(item.subst)
		if body, ok := s.synthesizeShow(fn.Name, dst.Params[0], argTy); ok {
			dst.Body = body
		}
	}
	s.Dst.Functions.Set(item.dst, dst)
}

// paramSubstFolder folds one specialisation's body, substituting
// references to the original parameter declarations with the cloned
// ones so recursive calls resolve to the in-flight clone (spec §4.5,
// "folded lazily ... with a parameter-substitution map"). It carries
// its own *fold.Base (sharing Src/Dst/Repl with the owning Specializer)
// so that setting Self here never disturbs the Specializer's own
// top-level fold in progress, which shares the very same ReplacementMap
// and destination model.
type paramSubstFolder struct {
	*fold.Base
	sp       *Specializer
	paramMap map[thir.DeclarationID]thir.DeclarationID
	subst    map[string]ty.Type
}

func (p *paramSubstFolder) FoldDeclaration(id thir.DeclarationID) thir.DeclarationID {
	if mapped, ok := p.paramMap[id]; ok {
		return mapped
	}
	return p.Base.FoldDeclaration(id)
}

func (p *paramSubstFolder) FoldIdentifier(n *thir.Identifier) thir.Expr {
	cp := *n
	cp.Anns = foldExprSliceUsing(p, n.Anns)
	switch n.Kind {
	case thir.IdentDeclaration:
		cp.Declaration = p.FoldDeclaration(n.Declaration)
		cp.Ty = n.Ty.Substitute(p.subst)
	case thir.IdentFunction:
		cp.Function = p.sp.Self.FoldFunction(n.Function)
	case thir.IdentAnnotation, thir.IdentAnnotationDestructor:
		cp.Annotation = p.Self.FoldAnnotation(n.Annotation)
	case thir.IdentEnumeration, thir.IdentEnumMember, thir.IdentEnumDestructor:
		cp.Enumeration = p.Self.FoldEnumeration(n.Enumeration)
	}
	return &cp
}

func (p *paramSubstFolder) FoldCall(n *thir.Call) thir.Expr {
	return p.sp.foldCallWith(p, n)
}

func foldExprSliceUsing(self folder, ids []thir.ExprID) []thir.ExprID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]thir.ExprID, len(ids))
	for i, id := range ids {
		out[i] = self.FoldExpr(id)
	}
	return out
}

// FoldCall is the override driving call-site resolution on the
// top-level Specializer. Apart from it and FoldArrayAccess (access.go),
// every expression shape uses fold.Base's structural default.
func (s *Specializer) FoldCall(n *thir.Call) thir.Expr {
	return s.foldCallWith(s, n)
}

// foldCallWith implements spec §4.5's call-rewriting protocol, folding
// recursively through self so it behaves correctly whether invoked
// from the top-level Specializer or from a paramSubstFolder folding an
// in-flight specialisation's body.
func (s *Specializer) foldCallWith(self folder, n *thir.Call) thir.Expr {
	if n.Callable.Kind != thir.CallableFunction {
		cp := *n
		cp.Anns = foldExprSliceUsing(self, n.Anns)
		cp.Args = foldExprSliceUsing(self, n.Args)
		callable := n.Callable
		switch callable.Kind {
		case thir.CallableAnnotationCtor, thir.CallableAnnotationDtor:
			callable.Annotation = self.FoldAnnotation(callable.Annotation)
		case thir.CallableEnumCtor, thir.CallableEnumDtor:
			callable.Enum = self.FoldEnumeration(callable.Enum)
		case thir.CallableExpr:
			callable.Expr = self.FoldExpr(callable.Expr)
		}
		cp.Callable = callable
		return &cp
	}

	args := foldExprSliceUsing(self, n.Args)
	argTypes := make([]ty.Type, len(args))
	for i, a := range args {
		argTypes[i] = s.Dst.Exprs.Get(a).Type()
	}

	origFn := s.Src.Functions.Get(n.Callable.Function)
	dstFnID, err := s.resolveAndInstantiate(origFn.Name, argTypes)
	if err != nil {
		s.sink.Report(errToReport(err))
		dstFnID = self.FoldFunction(n.Callable.Function)
	}

	cp := *n
	cp.Anns = foldExprSliceUsing(self, n.Anns)
	cp.Args = args
	cp.Callable = thir.Callable{Kind: thir.CallableFunction, Function: dstFnID}
	return &cp
}

// resolveAndInstantiate resolves name against the source overload map
// for argTypes and returns the destination function id to call: either
// a freshly (or cache-hit) instantiated specialisation, or a direct
// fold of an already-monomorphic winner.
func (s *Specializer) resolveAndInstantiate(name ident.ID, argTypes []ty.Type) (thir.FunctionID, error) {
	winner, err := overload.Resolve(s.Src, s.srcOM, name, argTypes)
	if err != nil {
		return 0, err
	}
	s.eagerlyInstantiateMoreGeneral(name, winner, argTypes)

	winnerFn := s.Src.Functions.Get(winner.Function)
	needsInstantiation := winnerFn.IsPolymorphic() &&
		(winnerFn.Body.Valid() || (isShowFamily(s.ctx, winnerFn.Name) && len(argTypes) > 0 && containsErasedType(argTypes[0])))
	if needsInstantiation {
		return s.instantiate(winner.Function, winner.Subst), nil
	}
	return s.Self.FoldFunction(winner.Function), nil
}

// eagerlyInstantiateMoreGeneral instantiates every strictly more
// general polymorphic overload (with a body) at argTypes too, since the
// dispatch transform needs every such clone to exist to build its
// preamble (spec §4.5 step 3).
func (s *Specializer) eagerlyInstantiateMoreGeneral(name ident.ID, winner *overload.Candidate, argTypes []ty.Type) {
	for _, fid := range s.srcOM[name] {
		if fid == winner.Function {
			continue
		}
		fn := s.Src.Functions.Get(fid)
		if !fn.IsPolymorphic() || !fn.Body.Valid() || hasUnreachableAnnotation(s, fn) {
			continue
		}
		cand, err := overload.Resolve(s.Src, thir.OverloadMap{name: {fid}}, name, argTypes)
		if err != nil {
			continue
		}
		s.instantiate(fid, cand.Subst)
	}
}

func hasUnreachableAnnotation(s *Specializer, fn thir.Function) bool {
	for _, annID := range fn.Anns {
		e := s.Src.Exprs.Get(annID)
		id, ok := e.(*thir.Identifier)
		if ok && id.Kind == thir.IdentAnnotation && id.Annotation.Valid() {
			ann := s.Src.Annotations.Get(id.Annotation)
			if ann.Name == s.ctx.WellKnown.Unreachable {
				return true
			}
		}
	}
	return false
}

func mangleKey(subst map[string]ty.Type, order []ty.TVar) string {
	out := ""
	for _, v := range order {
		out += v.ID + "=" + subst[v.ID].String() + ";"
	}
	return out
}

// instantiate clones fn under subst, registers it in the concrete
// cache, and pushes its body onto the worklist.
func (s *Specializer) instantiate(srcFn thir.FunctionID, subst map[string]ty.Type) thir.FunctionID {
	fn := s.Src.Functions.Get(srcFn)
	key := cacheKey{fn: srcFn, sig: mangleKey(subst, fn.TyParams)}
	if dstID, ok := s.concrete[key]; ok {
		return dstID
	}

	depth := s.depth[srcFn] + 1
	if depth > maxDepth {
		s.sink.Report(diag.New(diag.SPEC001, fmt.Sprintf("type specialisation recursion limit exceeded for function %d", srcFn), nil))
		return s.Self.FoldFunction(srcFn)
	}

	newReturnDomain := s.Self.FoldDomain(substituteDomain(fn.ReturnDomain, subst))

	paramMap := make(map[thir.DeclarationID]thir.DeclarationID, len(fn.Params))
	newParams := make([]thir.DeclarationID, len(fn.Params))
	for i, pid := range fn.Params {
		p := s.Src.Declarations.Get(pid)
		newID := s.Dst.InsertDeclaration(thir.Declaration{
			Domain:  s.Self.FoldDomain(substituteDomain(p.Domain, subst)),
			Name:    p.Name,
			HasName: p.HasName,
		})
		paramMap[pid] = newID
		newParams[i] = newID
	}

	dstID := s.Dst.InsertFunction(thir.Function{
		Name:              fn.Name,
		ReturnDomain:      newReturnDomain,
		Params:            newParams,
		IsSpecialisation:  true,
		MangledParamTypes: subst,
	})
	s.concrete[key] = dstID
	s.clones[srcFn] = append(s.clones[srcFn], dstID)
	s.cloneOrder = append(s.cloneOrder, dstID)
	s.todo = append(s.todo, todoItem{dst: dstID, src: srcFn, paramMap: paramMap, subst: subst, depth: depth})
	return dstID
}

// emitClones splices every not-yet-emitted clone of srcFn into the
// destination top_level at the current position, i.e. exactly where
// the polymorphic original stood. Enumerations all fold before any
// function (see Run), so a show specialisation always lands after
// every enum its parameter type depends on.
func (s *Specializer) emitClones(srcFn thir.FunctionID) {
	for _, dstID := range s.clones[srcFn] {
		if s.cloneEmitted[dstID] {
			continue
		}
		s.cloneEmitted[dstID] = true
		s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: dstID})
	}
}

// emitRemainingClones appends, in creation order, every clone whose
// source position had already been passed when it was instantiated
// (a call site later in the model, or a recursive instantiation made
// while draining the body worklist).
func (s *Specializer) emitRemainingClones() {
	for _, dstID := range s.cloneOrder {
		if s.cloneEmitted[dstID] {
			continue
		}
		s.cloneEmitted[dstID] = true
		s.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: dstID})
	}
}

// substituteDomain rewrites an Unbounded domain whose computed type
// mentions a ty-var into an Unbounded domain of the substituted type;
// other domain kinds recurse structurally over their own Ty field,
// leaving Bound expressions for the caller's subsequent FoldDomain pass
// to fold into the destination model.
func substituteDomain(d thir.Domain, subst map[string]ty.Type) thir.Domain {
	switch d.Kind {
	case thir.Unbounded:
		return thir.NewUnboundedDomain(d.Ty.Substitute(subst))
	case thir.SetDomain:
		inner := substituteDomain(*d.Inner, subst)
		return thir.NewSetDomain(inner, d.Ty.Inst, d.Ty.Opt)
	case thir.ArrayDomain:
		return thir.NewArrayDomain(substituteDomain(*d.Index, subst), substituteDomain(*d.Elem, subst))
	case thir.TupleDomain:
		elems := make([]thir.Domain, len(d.Elems))
		for i, e := range d.Elems {
			elems[i] = substituteDomain(e, subst)
		}
		return thir.NewTupleDomain(elems...)
	case thir.RecordDomain:
		fields := make([]thir.DomainField, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = thir.DomainField{Name: f.Name, Domain: substituteDomain(f.Domain, subst)}
		}
		return thir.NewRecordDomain(fields...)
	default: // Bounded: the bound expression's type, if a ty-var, is substituted in place
		d.Ty = d.Ty.Substitute(subst)
		return d
	}
}

func isShowFamily(ctx *registry.Context, name ident.ID) bool {
	return name == ctx.WellKnown.Show || name == ctx.WellKnown.ShowJSON || name == ctx.WellKnown.ShowDZN
}

func containsErasedType(t ty.Type) bool {
	if t.Opt == ty.OptYes {
		return true
	}
	switch t.Kind {
	case ty.Array, ty.Tuple, ty.Record:
		return true
	case ty.Set:
		return containsErasedType(*t.Elem)
	default:
		return false
	}
}

func errToReport(err error) *diag.Report {
	if r, ok := diag.AsReport(err); ok {
		return r
	}
	return diag.New(diag.OVL001, err.Error(), nil)
}

// --- show/show_json/show_dzn synthesis ---

// synthesizeShow builds a body for a show-family builtin instantiated
// at an erased argument type (spec §4.5), by shape: opt unwraps via
// occurs/deopt, array and set wrap a comprehension in brackets joined
// by ", ", and tuple/record concatenate each member's own show call
// with literal glue. The names used (occurs, deopt, concat, join) must
// already be declared in the source model (see RegisterBuiltins); a
// missing builtin surfaces as a resolution diagnostic rather than a
// panic, since a caller may legitimately omit one it never exercises.
func (s *Specializer) synthesizeShow(showName ident.ID, param thir.DeclarationID, argTy ty.Type) (thir.ExprID, bool) {
	paramExpr := s.identExpr(param, argTy)
	strTy := s.ctx.Anchors.ParString

	switch {
	case argTy.Opt == ty.OptYes:
		bare := argTy.NonOptType()
		occursCall, err := s.buildCall(s.ctx.WellKnown.Occurs, []thir.ExprID{paramExpr}, []ty.Type{argTy}, s.ctx.Anchors.VarBool)
		if err != nil {
			s.sink.Report(errToReport(err))
			return 0, false
		}
		deoptCall, err := s.buildCall(s.ctx.WellKnown.Deopt, []thir.ExprID{paramExpr}, []ty.Type{argTy}, bare)
		if err != nil {
			s.sink.Report(errToReport(err))
			return 0, false
		}
		showInner, err := s.buildCall(showName, []thir.ExprID{deoptCall}, []ty.Type{bare}, strTy)
		if err != nil {
			s.sink.Report(errToReport(err))
			return 0, false
		}
		absent := s.strLit("<>")
		return s.Dst.InsertExpr(&thir.IfThenElse{
			Base:     thir.Base{Ty: strTy},
			Branches: []thir.CondThen{{Cond: occursCall, Result: showInner}},
			Else:     absent,
		}), true

	case argTy.Kind == ty.Array:
		return s.synthesizeShowCollection(showName, paramExpr, *argTy.Elem, "[", "]")

	case argTy.Kind == ty.Set:
		return s.synthesizeShowCollection(showName, paramExpr, *argTy.Elem, "{", "}")

	case argTy.Kind == ty.Tuple:
		return s.synthesizeShowTuple(showName, paramExpr, argTy)

	case argTy.Kind == ty.Record:
		return s.synthesizeShowRecord(showName, paramExpr, argTy)

	default:
		return 0, false
	}
}

func (s *Specializer) synthesizeShowCollection(showName ident.ID, coll thir.ExprID, elemTy ty.Type, open, closeTok string) (thir.ExprID, bool) {
	strTy := s.ctx.Anchors.ParString
	strArr := ty.NewArray(s.ctx.Anchors.ParInt, strTy)
	loopDecl := s.Dst.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(elemTy)})
	loopExpr := s.identExpr(loopDecl, elemTy)
	showElem, err := s.buildCall(showName, []thir.ExprID{loopExpr}, []ty.Type{elemTy}, strTy)
	if err != nil {
		s.sink.Report(errToReport(err))
		return 0, false
	}
	comp := s.Dst.InsertExpr(&thir.ArrayComp{
		Base: thir.Base{Ty: strArr},
		Generators: []thir.Generator{
			{Kind: thir.GenIterator, Decls: []thir.DeclarationID{loopDecl}, Collection: coll},
		},
		Template: showElem,
	})
	sep := s.strLit(", ")
	joined, err := s.buildCall(s.ctx.WellKnown.Join, []thir.ExprID{sep, comp}, []ty.Type{strTy, strArr}, strTy)
	if err != nil {
		s.sink.Report(errToReport(err))
		return 0, false
	}
	parts := s.Dst.InsertExpr(&thir.ArrayLit{
		Base:     thir.Base{Ty: strArr},
		Elements: []thir.ExprID{s.strLit(open), joined, s.strLit(closeTok)},
	})
	result, err := s.buildCall(s.ctx.WellKnown.Concat, []thir.ExprID{parts}, []ty.Type{strArr}, strTy)
	if err != nil {
		s.sink.Report(errToReport(err))
		return 0, false
	}
	return result, true
}

func (s *Specializer) synthesizeShowTuple(showName ident.ID, tup thir.ExprID, tupTy ty.Type) (thir.ExprID, bool) {
	strTy := s.ctx.Anchors.ParString
	parts := []thir.ExprID{s.strLit("(")}
	for i, elemTy := range tupTy.Elems {
		if i > 0 {
			parts = append(parts, s.strLit(", "))
		}
		access := s.Dst.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: elemTy}, Tuple: tup, Index: i + 1})
		shown, err := s.buildCall(showName, []thir.ExprID{access}, []ty.Type{elemTy}, strTy)
		if err != nil {
			s.sink.Report(errToReport(err))
			return 0, false
		}
		parts = append(parts, shown)
	}
	parts = append(parts, s.strLit(")"))
	strArr := ty.NewArray(s.ctx.Anchors.ParInt, strTy)
	lit := s.Dst.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: strArr}, Elements: parts})
	result, err := s.buildCall(s.ctx.WellKnown.Concat, []thir.ExprID{lit}, []ty.Type{strArr}, strTy)
	if err != nil {
		s.sink.Report(errToReport(err))
		return 0, false
	}
	return result, true
}

func (s *Specializer) synthesizeShowRecord(showName ident.ID, rec thir.ExprID, recTy ty.Type) (thir.ExprID, bool) {
	strTy := s.ctx.Anchors.ParString
	parts := []thir.ExprID{s.strLit("(")}
	for i, f := range recTy.Fields {
		if i > 0 {
			parts = append(parts, s.strLit(", "))
		}
		parts = append(parts, s.strLit(f.Name+": "))
		access := s.Dst.InsertExpr(&thir.RecordAccess{Base: thir.Base{Ty: f.Type}, Record: rec, Field: f.Name})
		shown, err := s.buildCall(showName, []thir.ExprID{access}, []ty.Type{f.Type}, strTy)
		if err != nil {
			s.sink.Report(errToReport(err))
			return 0, false
		}
		parts = append(parts, shown)
	}
	parts = append(parts, s.strLit(")"))
	strArr := ty.NewArray(s.ctx.Anchors.ParInt, strTy)
	lit := s.Dst.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: strArr}, Elements: parts})
	result, err := s.buildCall(s.ctx.WellKnown.Concat, []thir.ExprID{lit}, []ty.Type{strArr}, strTy)
	if err != nil {
		s.sink.Report(errToReport(err))
		return 0, false
	}
	return result, true
}

// buildCall resolves name (show, occurs, deopt, concat, join, ...)
// against the source overload map at argTypes and wraps a call to the
// resulting destination function around args, recursively triggering
// further specialisation exactly as a real call site would (spec §4.5,
// "recursive calls to show inside these templates re-enter overload
// resolution"). retTy is the caller's statically-known result type,
// since the callee may be mid-instantiation and not yet have a
// finalised return domain to read back.
func (s *Specializer) buildCall(name ident.ID, args []thir.ExprID, argTypes []ty.Type, retTy ty.Type) (thir.ExprID, error) {
	dstFn, err := s.resolveAndInstantiate(name, argTypes)
	if err != nil {
		return 0, err
	}
	return s.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: retTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: dstFn},
		Args:     args,
	}), nil
}

func (s *Specializer) strLit(v string) thir.ExprID {
	return s.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: s.ctx.Anchors.ParString}, Kind: thir.LitString, Value: v})
}

func (s *Specializer) identExpr(decl thir.DeclarationID, t ty.Type) thir.ExprID {
	return s.Dst.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: t}, Kind: thir.IdentDeclaration, Declaration: decl})
}

// RegisterBuiltins installs the builtin function signatures the show
// family and its synthesis templates call by name: show/show_json/
// show_dzn themselves (polymorphic, bodyless outside opt/array/set/
// tuple/record specialisation), and occurs/deopt/concat/join.
// Callers building a Model programmatically (tests, cmd/shackle) call
// this once on the source model before running a Specializer over it.
func RegisterBuiltins(m *thir.Model, ctx *registry.Context) {
	t := ty.TVar{ID: "T", Varifiable: true, Enumerable: true, Indexable: true}
	tTy := ty.NewTyVar(t)
	strTy := ctx.Anchors.ParString
	strArr := ty.NewArray(ctx.Anchors.ParInt, strTy)

	addBuiltin := func(name ident.ID, tyParams []ty.TVar, paramTypes []ty.Type, ret ty.Type) {
		params := make([]thir.DeclarationID, len(paramTypes))
		for i, pt := range paramTypes {
			params[i] = m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(pt)})
		}
		m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ret), TyParams: tyParams, Params: params})
	}

	addBuiltin(ctx.WellKnown.Show, []ty.TVar{t}, []ty.Type{tTy}, strTy)
	addBuiltin(ctx.WellKnown.ShowJSON, []ty.TVar{t}, []ty.Type{tTy}, strTy)
	addBuiltin(ctx.WellKnown.ShowDZN, []ty.TVar{t}, []ty.Type{tTy}, strTy)
	addBuiltin(ctx.WellKnown.Occurs, []ty.TVar{t}, []ty.Type{tTy.WithOpt(ty.OptYes)}, ctx.Anchors.VarBool)
	addBuiltin(ctx.WellKnown.Deopt, []ty.TVar{t}, []ty.Type{tTy.WithOpt(ty.OptYes)}, tTy)
	addBuiltin(ctx.WellKnown.Concat, nil, []ty.Type{strArr}, strTy)
	addBuiltin(ctx.WellKnown.Join, nil, []ty.Type{strTy, strArr}, strTy)
}
