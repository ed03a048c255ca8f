// Package dispatch implements function dispatch preamble synthesis
// (spec.md §4.6): once specialisation has produced every concrete
// clone a polymorphic overload set needs, dispatch wraps each
// less-specific overload's body with an if/elseif chain that, at
// solve time, forwards to a more specific overload whenever the
// runtime value of its arguments happens to satisfy that overload's
// stricter signature (a fixed var, a present opt, ...).
//
// It is grounded on the same two ideas the teacher keeps separate:
// internal/elaborate/scc.go's graph-then-transitive-reduce style,
// generalised here from strongly-connected-components over call
// edges into a specificity DAG over an overload set, and
// internal/elaborate/exhaustiveness.go and patterns.go's structural,
// per-field/per-constructor condition accumulation, whose style this
// package's precondition synthesis follows for opt/array/set/tuple/
// record shapes.
package dispatch

import (
	"sort"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/fold"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// DispatchesTo reports whether a call site accepted by an overload
// typed a can, once its arguments are known to be fixed/present/etc.
// at solve time, also satisfy an overload typed b (spec §4.6's
// dispatches_to relation). It is reflexive and transitive, so the
// edges it induces over an overload set form a preorder; BuildDAG
// reduces that preorder to its covering relation.
func DispatchesTo(a, b ty.Type) bool {
	if a.Equals(b) {
		return true
	}
	if a.Inst == ty.Var && b.Inst == ty.Par {
		return DispatchesTo(a.WithInst(ty.Par), b)
	}
	if a.Inst == b.Inst && a.Opt == ty.OptYes && b.Opt == ty.NonOpt {
		return DispatchesTo(a.NonOptType(), b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ty.Array:
		return a.Index.Equals(*b.Index) && DispatchesTo(*a.Elem, *b.Elem)
	case ty.Set:
		return DispatchesTo(*a.Elem, *b.Elem)
	case ty.Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !DispatchesTo(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case ty.Record:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !DispatchesTo(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func paramsDispatchTo(a, b []ty.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !DispatchesTo(a[i], b[i]) {
			return false
		}
	}
	return true
}

// BuildDAG computes, for every overload set in om with two or more
// same-arity members, the transitively-reduced dispatches_to DAG over
// their parameter-type vectors (spec §4.6). The result maps a less
// specific overload to the direct, more specific overloads dispatch
// should try first, sorted by id for determinism.
func BuildDAG(m *thir.Model, om thir.OverloadMap) map[thir.FunctionID][]thir.FunctionID {
	result := map[thir.FunctionID][]thir.FunctionID{}
	for _, fids := range om {
		if len(fids) < 2 {
			continue
		}
		for k, v := range dagForGroup(m, fids) {
			result[k] = v
		}
	}
	return result
}

func dagForGroup(m *thir.Model, fids []thir.FunctionID) map[thir.FunctionID][]thir.FunctionID {
	byArity := map[int][]thir.FunctionID{}
	for _, f := range fids {
		fn := m.Functions.Get(f)
		byArity[len(fn.Params)] = append(byArity[len(fn.Params)], f)
	}

	full := map[thir.FunctionID]map[thir.FunctionID]bool{}
	for _, group := range byArity {
		if len(group) < 2 {
			continue
		}
		params := map[thir.FunctionID][]ty.Type{}
		for _, f := range group {
			fn := m.Functions.Get(f)
			pts := make([]ty.Type, len(fn.Params))
			for i, p := range fn.Params {
				pts[i] = m.Declarations.Get(p).Ty()
			}
			params[f] = pts
		}
		for _, a := range group {
			for _, b := range group {
				if a == b {
					continue
				}
				if paramsDispatchTo(params[a], params[b]) {
					if full[a] == nil {
						full[a] = map[thir.FunctionID]bool{}
					}
					full[a][b] = true
				}
			}
		}
	}
	return transitiveReduce(full)
}

func transitiveReduce(full map[thir.FunctionID]map[thir.FunctionID]bool) map[thir.FunctionID][]thir.FunctionID {
	reduced := map[thir.FunctionID][]thir.FunctionID{}
	for a, bs := range full {
		var direct []thir.FunctionID
		for b := range bs {
			redundant := false
			for c := range bs {
				if c != b && full[c][b] {
					redundant = true
					break
				}
			}
			if !redundant {
				direct = append(direct, b)
			}
		}
		sort.Slice(direct, func(i, j int) bool { return direct[i] < direct[j] })
		reduced[a] = direct
	}
	return reduced
}

// Dispatcher folds a Model, leaving every item unchanged except that
// an overload with dispatch targets has its body wrapped in a
// preamble that forwards to those targets when their preconditions
// hold (spec §4.6).
type Dispatcher struct {
	base  *fold.Base
	ctx   *registry.Context
	sink  *diag.Sink
	edges map[thir.FunctionID][]thir.FunctionID
}

// New creates a Dispatcher over src. src should already have been
// specialised (internal/specialize) so every overload the dispatch
// preambles need to reach already exists as a concrete clone, and
// RegisterBuiltins should have been called on it (or an ancestor
// model) so is_fixed/fix/mzn_destruct_opt/mzn_construct_opt/occurs/
// deopt/forall are resolvable.
func New(src *thir.Model, ctx *registry.Context, sink *diag.Sink) *Dispatcher {
	d := &Dispatcher{
		base:  fold.NewBase(src),
		ctx:   ctx,
		sink:  sink,
		edges: BuildDAG(src, src.BuildOverloadMap()),
	}
	d.base.Self = d.base
	return d
}

// Run produces a structural clone of the source model and then
// rewrites the body of every overload with outgoing dispatch edges.
// Folding first and rewriting bodies afterward, rather than
// intercepting FoldFunction, keeps the preamble-builder free to read
// every target's already-cloned parameter list directly out of Dst.
func (d *Dispatcher) Run() (*thir.Model, *diag.Sink) {
	dst := d.base.Run()
	if len(d.edges) == 0 {
		return dst, d.sink
	}

	b := &builder{m: dst, ctx: d.ctx}
	if !b.bindBuiltins() {
		d.sink.Report(diag.New(diag.DISP001, "dispatch requires is_fixed/fix/mzn_destruct_opt/mzn_construct_opt/occurs/deopt/forall to be registered", nil))
		return dst, d.sink
	}

	for srcFn, srcTargets := range d.edges {
		dstFn, ok := d.base.Repl.Functions.Get(srcFn)
		if !ok {
			continue
		}
		fn := dst.Functions.Get(dstFn)
		if !fn.Body.Valid() {
			continue
		}
		targets := make([]thir.FunctionID, 0, len(srcTargets))
		for _, t := range srcTargets {
			if dt, ok := d.base.Repl.Functions.Get(t); ok {
				targets = append(targets, dt)
			}
		}
		retTy := fn.ReturnDomain.ComputedTy()
		fn.Body = b.buildPreamble(fn.Params, targets, fn.Body, retTy)
		dst.Functions.Set(dstFn, fn)
	}
	return dst, d.sink
}

// builder synthesises preambles and the structural preconditions they
// branch on, against an already-folded destination model.
type builder struct {
	m   *thir.Model
	ctx *registry.Context

	isFixed, fix              thir.FunctionID
	destructOpt, constructOpt thir.FunctionID
	occurs, deopt, forallFn   thir.FunctionID
}

func (b *builder) bindBuiltins() bool {
	om := b.m.BuildOverloadMap()
	get := func(name ident.ID) (thir.FunctionID, bool) {
		fids := om[name]
		if len(fids) == 0 {
			return 0, false
		}
		return fids[0], true
	}
	var ok bool
	if b.isFixed, ok = get(b.ctx.WellKnown.IsFixed); !ok {
		return false
	}
	if b.fix, ok = get(b.ctx.WellKnown.Fix); !ok {
		return false
	}
	if b.destructOpt, ok = get(b.ctx.WellKnown.DestructOpt); !ok {
		return false
	}
	if b.constructOpt, ok = get(b.ctx.WellKnown.ConstructOpt); !ok {
		return false
	}
	if b.occurs, ok = get(b.ctx.WellKnown.Occurs); !ok {
		return false
	}
	if b.deopt, ok = get(b.ctx.WellKnown.Deopt); !ok {
		return false
	}
	if b.forallFn, ok = get(b.ctx.WellKnown.Forall); !ok {
		return false
	}
	return true
}

// buildPreamble wraps origBody in an if/elseif chain, one branch per
// target in targets (already sorted by id), each guarded by the
// conjunction of that target's per-parameter preconditions and
// calling the target with each parameter's projected value.
func (b *builder) buildPreamble(params []thir.DeclarationID, targets []thir.FunctionID, origBody thir.ExprID, retTy ty.Type) thir.ExprID {
	fromTypes := make([]ty.Type, len(params))
	argExprs := make([]thir.ExprID, len(params))
	for i, p := range params {
		fromTypes[i] = b.m.Declarations.Get(p).Ty()
		argExprs[i] = b.identExpr(p, fromTypes[i])
	}

	var branches []thir.CondThen
	for _, tgt := range targets {
		tgtFn := b.m.Functions.Get(tgt)
		var conds []thir.ExprID
		args := make([]thir.ExprID, len(params))
		for i, p := range tgtFn.Params {
			toTy := b.m.Declarations.Get(p).Ty()
			c, proj := b.precondition(argExprs[i], fromTypes[i], toTy)
			conds = append(conds, c...)
			args[i] = proj
		}
		if len(conds) == 0 {
			continue
		}
		cond := b.branchCondition(conds)
		call := b.m.InsertExpr(&thir.Call{
			Base:     thir.Base{Ty: retTy},
			Callable: thir.Callable{Kind: thir.CallableFunction, Function: tgt},
			Args:     args,
		})
		branches = append(branches, thir.CondThen{Cond: cond, Result: call})
	}
	if len(branches) == 0 {
		return origBody
	}
	return b.m.InsertExpr(&thir.IfThenElse{Base: thir.Base{Ty: retTy}, Branches: branches, Else: origBody})
}

// precondition converts a value of type from, already bound as expr,
// into the argument a parameter typed to accepts, returning both the
// boolean conditions that must hold for the conversion to be safe and
// the converted expression itself (spec §4.6's dispatches_to cases,
// read right to left as a synthesis procedure).
func (b *builder) precondition(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	switch {
	case from.Equals(to):
		return nil, expr
	case from.Inst == ty.Var && to.Inst == ty.Par && from.Opt == ty.OptYes && to.Opt == ty.OptYes:
		return b.varOptToParOpt(expr, from, to)
	case from.Opt == ty.OptYes && to.Opt == ty.OptYes && from.Inst == to.Inst:
		return b.throughOpt(expr, from, to)
	case from.Inst == ty.Par && to.Inst == ty.Par && from.Opt == ty.OptYes && to.Opt == ty.NonOpt:
		return b.parOptToNonOpt(expr, from, to)
	case from.Inst == ty.Var && to.Inst == ty.Var && from.Opt == ty.OptYes && to.Opt == ty.NonOpt:
		return b.varOptToVarNonOpt(expr, from, to)
	case from.Inst == ty.Var && to.Inst == ty.Par:
		return b.varToPar(expr, from, to)
	default:
		return b.structural(expr, from, to)
	}
}

// varOptToParOpt handles var-opt-to-par-opt: destruct once to the
// tuple representation, require the whole tuple be fixed (fixing both
// the occurs flag and the payload together, since is_fixed/fix are
// structural over any type), and reconstruct as the par-opt value.
func (b *builder) varOptToParOpt(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	varTupTy := ty.NewTuple(ty.NewBool(ty.Var, ty.NonOpt), from.NonOptType())
	d := b.call1(b.destructOpt, expr, varTupTy)
	isFixedCall := b.call1(b.isFixed, d, b.ctx.Anchors.VarBool)
	parTupTy := ty.NewTuple(ty.NewBool(ty.Par, ty.NonOpt), to.NonOptType())
	fixCall := b.call1(b.fix, d, parTupTy)
	proj := b.call1(b.constructOpt, fixCall, to)
	return []thir.ExprID{isFixedCall}, proj
}

// throughOpt handles var-opt-to-var-opt / par-opt-to-par-opt: destruct,
// recurse on the inner type, reconstruct under the same occurs flag.
func (b *builder) throughOpt(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	occurs, inner := b.destructParts(expr, from)
	conds, proj := b.precondition(inner, from.NonOptType(), to.NonOptType())
	return conds, b.construct(occurs, proj, to)
}

// parOptToNonOpt handles par-opt-to-par-non-opt: occurs(x) must hold,
// then deopt(x) recurses for any further structural conversion.
func (b *builder) parOptToNonOpt(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	occursCall := b.call1(b.occurs, expr, b.ctx.Anchors.VarBool)
	deoptCall := b.call1(b.deopt, expr, from.NonOptType())
	innerConds, proj := b.precondition(deoptCall, from.NonOptType(), to)
	return append([]thir.ExprID{occursCall}, innerConds...), proj
}

// varOptToVarNonOpt handles var-opt-to-var-non-opt: the occurs flag
// must itself be fixed, and fixed true, before the deopt'd part can be
// passed to a parameter that no longer carries an opt modifier.
func (b *builder) varOptToVarNonOpt(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	occurs, inner := b.destructParts(expr, from)
	isFixedCall := b.call1(b.isFixed, occurs, b.ctx.Anchors.VarBool)
	fixCall := b.call1(b.fix, occurs, b.ctx.Anchors.ParBool)
	innerConds, proj := b.precondition(inner, from.NonOptType(), to)
	conds := append([]thir.ExprID{isFixedCall, fixCall}, innerConds...)
	return conds, proj
}

// varToPar handles var-to-par (regardless of opt): x must be fixed,
// then fix(x) recurses at the par-instantiated version of from, which
// falls through to parOptToNonOpt if to additionally drops opt.
func (b *builder) varToPar(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	isFixedCall := b.call1(b.isFixed, expr, b.ctx.Anchors.VarBool)
	parFrom := from.WithInst(ty.Par)
	fixCall := b.call1(b.fix, expr, parFrom)
	innerConds, proj := b.precondition(fixCall, parFrom, to)
	return append([]thir.ExprID{isFixedCall}, innerConds...), proj
}

func (b *builder) structural(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	if from.Kind != to.Kind {
		return nil, expr
	}
	switch from.Kind {
	case ty.Array:
		return b.arrayStructural(expr, from, to)
	case ty.Set:
		return b.setStructural(expr, from, to)
	case ty.Tuple:
		return b.tupleStructural(expr, from, to)
	case ty.Record:
		return b.recordStructural(expr, from, to)
	default:
		return nil, expr
	}
}

func (b *builder) arrayStructural(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	condDecl := b.m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(*from.Elem)})
	condLoop := b.identExpr(condDecl, *from.Elem)
	elemConds, _ := b.precondition(condLoop, *from.Elem, *to.Elem)

	var outerConds []thir.ExprID
	if len(elemConds) > 0 {
		innerCond := b.branchCondition(elemConds)
		condArrTy := ty.NewArray(*from.Index, b.ctx.Anchors.VarBool)
		condCompr := b.m.InsertExpr(&thir.ArrayComp{
			Base:       thir.Base{Ty: condArrTy},
			Generators: []thir.Generator{{Kind: thir.GenIterator, Decls: []thir.DeclarationID{condDecl}, Collection: expr}},
			Template:   innerCond,
		})
		outerConds = []thir.ExprID{b.call1(b.forallFn, condCompr, b.ctx.Anchors.VarBool)}
	}

	projDecl := b.m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(*from.Elem)})
	projLoop := b.identExpr(projDecl, *from.Elem)
	_, elemProj := b.precondition(projLoop, *from.Elem, *to.Elem)
	projCompr := b.m.InsertExpr(&thir.ArrayComp{
		Base:       thir.Base{Ty: to},
		Generators: []thir.Generator{{Kind: thir.GenIterator, Decls: []thir.DeclarationID{projDecl}, Collection: expr}},
		Template:   elemProj,
	})
	return outerConds, projCompr
}

func (b *builder) setStructural(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	condDecl := b.m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(*from.Elem)})
	condLoop := b.identExpr(condDecl, *from.Elem)
	elemConds, _ := b.precondition(condLoop, *from.Elem, *to.Elem)

	var outerConds []thir.ExprID
	if len(elemConds) > 0 {
		innerCond := b.branchCondition(elemConds)
		condArrTy := ty.NewArray(b.ctx.Anchors.ParInt, b.ctx.Anchors.VarBool)
		condCompr := b.m.InsertExpr(&thir.ArrayComp{
			Base:       thir.Base{Ty: condArrTy},
			Generators: []thir.Generator{{Kind: thir.GenIterator, Decls: []thir.DeclarationID{condDecl}, Collection: expr}},
			Template:   innerCond,
		})
		outerConds = []thir.ExprID{b.call1(b.forallFn, condCompr, b.ctx.Anchors.VarBool)}
	}

	projDecl := b.m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(*from.Elem)})
	projLoop := b.identExpr(projDecl, *from.Elem)
	_, elemProj := b.precondition(projLoop, *from.Elem, *to.Elem)
	projCompr := b.m.InsertExpr(&thir.SetComp{
		Base:       thir.Base{Ty: to},
		Generators: []thir.Generator{{Kind: thir.GenIterator, Decls: []thir.DeclarationID{projDecl}, Collection: expr}},
		Template:   elemProj,
	})
	return outerConds, projCompr
}

func (b *builder) tupleStructural(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	var conds []thir.ExprID
	elems := make([]thir.ExprID, len(from.Elems))
	for i := range from.Elems {
		access := b.m.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: from.Elems[i]}, Tuple: expr, Index: i + 1})
		c, proj := b.precondition(access, from.Elems[i], to.Elems[i])
		conds = append(conds, c...)
		elems[i] = proj
	}
	lit := b.m.InsertExpr(&thir.TupleLit{Base: thir.Base{Ty: to}, Elements: elems})
	return conds, lit
}

func (b *builder) recordStructural(expr thir.ExprID, from, to ty.Type) ([]thir.ExprID, thir.ExprID) {
	var conds []thir.ExprID
	fields := make([]thir.RecordField, 0, len(to.Fields))
	for _, tf := range to.Fields {
		fromTy := tf.Type
		for _, ff := range from.Fields {
			if ff.Name == tf.Name {
				fromTy = ff.Type
				break
			}
		}
		access := b.m.InsertExpr(&thir.RecordAccess{Base: thir.Base{Ty: fromTy}, Record: expr, Field: tf.Name})
		c, proj := b.precondition(access, fromTy, tf.Type)
		conds = append(conds, c...)
		fields = append(fields, thir.RecordField{Name: tf.Name, Value: proj})
	}
	return conds, b.m.InsertExpr(thir.NewRecordLit(thir.Base{Ty: to}, fields...))
}

func (b *builder) destructParts(expr thir.ExprID, from ty.Type) (occurs, inner thir.ExprID) {
	innerTy := from.NonOptType()
	boolTy := ty.NewBool(from.Inst, ty.NonOpt)
	tupTy := ty.NewTuple(boolTy, innerTy)
	destruct := b.call1(b.destructOpt, expr, tupTy)
	occurs = b.m.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: boolTy}, Tuple: destruct, Index: 1})
	inner = b.m.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: innerTy}, Tuple: destruct, Index: 2})
	return
}

func (b *builder) construct(occurs, inner thir.ExprID, to ty.Type) thir.ExprID {
	boolTy := ty.NewBool(to.Inst, ty.NonOpt)
	tupTy := ty.NewTuple(boolTy, to.NonOptType())
	lit := b.m.InsertExpr(&thir.TupleLit{Base: thir.Base{Ty: tupTy}, Elements: []thir.ExprID{occurs, inner}})
	return b.call1(b.constructOpt, lit, to)
}

func (b *builder) call1(fn thir.FunctionID, arg thir.ExprID, retTy ty.Type) thir.ExprID {
	return b.m.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: retTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fn},
		Args:     []thir.ExprID{arg},
	})
}

func (b *builder) identExpr(decl thir.DeclarationID, t ty.Type) thir.ExprID {
	return b.m.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: t}, Kind: thir.IdentDeclaration, Declaration: decl})
}

// branchCondition gathers conds into the single boolean expression a
// branch guards on: the lone condition if there is one, or
// forall([...]) over all of them otherwise (spec §4.6, "all
// preconditions are gathered into a single array for the branch").
func (b *builder) branchCondition(conds []thir.ExprID) thir.ExprID {
	if len(conds) == 1 {
		return conds[0]
	}
	arrTy := ty.NewArray(b.ctx.Anchors.ParInt, b.ctx.Anchors.VarBool)
	lit := b.m.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: arrTy}, Elements: conds})
	return b.call1(b.forallFn, lit, b.ctx.Anchors.VarBool)
}

// RegisterBuiltins installs is_fixed/fix/mzn_destruct_opt/
// mzn_construct_opt/forall/occurs/deopt (skipping any already present by name, so
// it composes safely with specialize.RegisterBuiltins and with a
// caller that only needs a subset) so dispatch.New's preamble builder
// can resolve them. Callers building a Model programmatically should
// call this once before the whole specialize -> dispatch -> erase
// pipeline runs.
func RegisterBuiltins(m *thir.Model, ctx *registry.Context) {
	om := m.BuildOverloadMap()
	t := ty.TVar{ID: "T", Varifiable: true, Enumerable: true, Indexable: true}
	tTy := ty.NewTyVar(t)
	varT := tTy.WithInst(ty.Var)
	optT := tTy.WithOpt(ty.OptYes)

	add := func(name ident.ID, tyParams []ty.TVar, paramTypes []ty.Type, ret ty.Type) {
		if _, ok := om[name]; ok {
			return
		}
		params := make([]thir.DeclarationID, len(paramTypes))
		for i, pt := range paramTypes {
			params[i] = m.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(pt)})
		}
		m.AddFunction(thir.Function{Name: name, ReturnDomain: thir.NewUnboundedDomain(ret), TyParams: tyParams, Params: params})
	}

	add(ctx.WellKnown.IsFixed, []ty.TVar{t}, []ty.Type{varT}, ctx.Anchors.VarBool)
	add(ctx.WellKnown.Fix, []ty.TVar{t}, []ty.Type{varT}, tTy)
	add(ctx.WellKnown.DestructOpt, []ty.TVar{t}, []ty.Type{optT}, ty.NewTuple(ctx.Anchors.ParBool, tTy))
	add(ctx.WellKnown.ConstructOpt, []ty.TVar{t}, []ty.Type{ty.NewTuple(ctx.Anchors.ParBool, tTy)}, optT)
	add(ctx.WellKnown.Forall, nil, []ty.Type{ty.NewArray(ctx.Anchors.ParInt, ctx.Anchors.VarBool)}, ctx.Anchors.VarBool)
	add(ctx.WellKnown.Occurs, []ty.TVar{t}, []ty.Type{optT}, ctx.Anchors.VarBool)
	add(ctx.WellKnown.Deopt, []ty.TVar{t}, []ty.Type{optT}, tTy)
}
