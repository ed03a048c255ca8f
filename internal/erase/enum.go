package erase

import (
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// enumState records what a single source Enumeration erased into: a
// defining-set declaration standing in for the enum's underlying
// integer range, one integer-valued declaration per atomic
// constructor, and six constructor/destructor function pairs per
// functional constructor (spec §4.7, "par/var x non-opt/opt x
// scalar/set").
type enumState struct {
	definingSet thir.DeclarationID
	atomic      map[int]thir.DeclarationID // constructor index -> int-valued declaration
	funcs       map[int]ctorDtorFuncs      // constructor index -> synthesised functions
}

type ctorDtorFuncs struct {
	ctor [6]thir.FunctionID
	dtor [6]thir.FunctionID
}

// prepareEnum synthesises en's erasure, recording every helper id in
// e.enums[id] so FoldIdentifier/FoldCall can resolve references to it
// regardless of where in source order those references fall. Helper
// items are inserted into Dst but not yet added to its top_level list;
// spliceEnum appends them once the main fold reaches the enum's own
// position, preserving "erasure replaces the enum where it stood."
func (e *Eraser) prepareEnum(id thir.EnumerationID) {
	en := e.Src.Enumerations.Get(id)
	st := &enumState{atomic: make(map[int]thir.DeclarationID), funcs: make(map[int]ctorDtorFuncs)}

	setTy := ty.NewSet(ty.NewInt(ty.Par, ty.NonOpt), ty.Par, ty.NonOpt)
	setName := e.ctx.Idents.Intern("defining_set_" + e.ctx.Idents.Name(en.Name))
	st.definingSet = e.Dst.InsertDeclaration(thir.Declaration{
		Domain:   thir.NewUnboundedDomain(setTy),
		Name:     setName,
		HasName:  true,
		TopLevel: true,
	})

	// prevCards accumulates, in constructor order, the cardinality
	// expression contributed by each functional constructor seen so far
	// (card/product of its argument domains); atomCard is the 1-based
	// offset of the current atomic constructor within the run of atomic
	// constructors since the last functional one. Spec §4.7 point 1-2:
	// an atomic constructor's value is "the sum of atom counts and
	// product-constructor cardinalities of preceding constructors" -
	// i.e. sum(prevCards..., atomCard) - grounded on the original
	// implementation's prev_cards/atom_card bookkeeping
	// (_examples/original_source/crates/shackle/src/thir/transform/type_erase.rs).
	var prevCards []thir.ExprID
	atomCard := 1
	intTy := ty.NewInt(ty.Par, ty.NonOpt)

	for i, ctor := range en.Constructors {
		if ctor.IsAtomic() {
			def := e.atomicCardExpr(prevCards, atomCard, intTy)
			st.atomic[i] = e.Dst.InsertDeclaration(thir.Declaration{
				Domain:   thir.NewUnboundedDomain(intTy),
				Name:     ctor.Name,
				HasName:  true,
				Def:      def,
				TopLevel: true,
			})
			atomCard++
			continue
		}
		st.funcs[i] = e.synthesizeConstructorFuncs(ctor, append([]thir.ExprID(nil), prevCards...))
		prevCards = append(prevCards, e.constructorCardExpr(ctor, intTy))
		atomCard = 1
	}

	e.enums[id] = st
	e.enumByTyID[en.ID] = st
}

// atomicCardExpr builds the defining expression for one atomic
// constructor: its running offset alone when no functional
// constructor precedes it, or sum(prevCards..., atomCard) once one
// does, so its erased value always reflects every preceding
// constructor's contribution, not just adjacent atomics.
func (e *Eraser) atomicCardExpr(prevCards []thir.ExprID, atomCard int, intTy ty.Type) thir.ExprID {
	lit := e.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: intTy}, Kind: thir.LitInt, Value: atomCard})
	if len(prevCards) == 0 {
		return lit
	}
	terms := append(append([]thir.ExprID{}, prevCards...), lit)
	arrTy := ty.NewArray(e.ctx.Anchors.ParInt, intTy)
	arr := e.Dst.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: arrTy}, Elements: terms})
	return e.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: intTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: e.builtinFn(e.ctx.WellKnown.Sum)},
		Args:     []thir.ExprID{arr},
	})
}

// constructorCardExpr computes one functional constructor's
// contribution to prevCards: card(domain) for a single parameter, or
// product(card(domain)...) for several (spec §4.7 point 1, "product-
// constructor cardinalities").
func (e *Eraser) constructorCardExpr(ctor thir.Constructor, intTy ty.Type) thir.ExprID {
	cards := make([]thir.ExprID, len(ctor.Params))
	for i, p := range ctor.Params {
		cards[i] = e.cardOfParamDomain(p, intTy)
	}
	if len(cards) == 1 {
		return cards[0]
	}
	arrTy := ty.NewArray(e.ctx.Anchors.ParInt, intTy)
	arr := e.Dst.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: arrTy}, Elements: cards})
	return e.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: intTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: e.builtinFn(e.ctx.WellKnown.Product)},
		Args:     []thir.ExprID{arr},
	})
}

// cardOfParamDomain returns card(<the constructor parameter's bound
// domain expression>), folded into Dst the same way FoldDomain folds
// any other Bounded domain's expression. A functional constructor's
// parameters are always explicitly bounded (the domain must be finite
// for the enum to be enumerable) - an Unbounded one here is an
// invariant violation, not a user error (spec §7).
func (e *Eraser) cardOfParamDomain(p thir.DeclarationID, intTy ty.Type) thir.ExprID {
	d := e.Src.Declarations.Get(p).Domain
	if d.Kind != thir.Bounded || !d.Bound.Valid() {
		panic("erase: functional enum constructor parameter has no bounded domain")
	}
	bound := e.Self.FoldExpr(d.Bound)
	return e.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: intTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: e.builtinFn(e.ctx.WellKnown.Card)},
		Args:     []thir.ExprID{bound},
	})
}

// spliceEnum appends en's already-synthesised helper declarations and
// functions to Dst's top_level list, in the order: defining set,
// atomic member declarations, then each functional constructor's
// twelve ctor/dtor functions, all in constructor order.
func (e *Eraser) spliceEnum(id thir.EnumerationID) {
	en := e.Src.Enumerations.Get(id)
	st := e.enums[id]
	e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemDeclaration, Declaration: st.definingSet})
	for i, ctor := range en.Constructors {
		if ctor.IsAtomic() {
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemDeclaration, Declaration: st.atomic[i]})
			continue
		}
		cf := st.funcs[i]
		for _, fid := range cf.ctor {
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: fid})
		}
		for _, fid := range cf.dtor {
			e.Dst.AddTopLevel(thir.TopLevelRef{Kind: thir.ItemFunction, Function: fid})
		}
	}
}

// synthesizeConstructorFuncs builds the six constructor/destructor
// variants for one functional constructor (spec §4.7). A constructor
// takes one parameter per argument domain and its body calls
// mzn_enum_constructor(prevCards, [(arg_dom, arg), ...]); a destructor
// takes the constructed value, calls
// mzn_enum_destructor(prevCards, [arg_dom, ...], x), and unpacks the
// returned array into a tuple of n components. prevCards - the
// cardinality expressions of every preceding functional constructor -
// goes into both calls so the backend primitive can offset this
// constructor's encoding past everything before it.
func (e *Eraser) synthesizeConstructorFuncs(ctor thir.Constructor, prevCards []thir.ExprID) ctorDtorFuncs {
	parInt := ty.NewInt(ty.Par, ty.NonOpt)
	varInt := ty.NewInt(ty.Var, ty.NonOpt)
	parBool := ty.NewBool(ty.Par, ty.NonOpt)
	varBool := ty.NewBool(ty.Var, ty.NonOpt)

	n := len(ctor.Params)
	bounds := make([]thir.ExprID, n)
	baseTys := make([]ty.Type, n)
	for i, p := range ctor.Params {
		d := e.Src.Declarations.Get(p).Domain
		if d.Kind != thir.Bounded || !d.Bound.Valid() {
			panic("erase: functional enum constructor parameter has no bounded domain")
		}
		bounds[i] = e.Self.FoldExpr(d.Bound)
		baseTys[i] = eraseType(d.Ty)
	}

	variants := []struct {
		kind thir.EnumCallKind
		arg  func(t ty.Type) ty.Type
		val  ty.Type
		comp ty.Type // destructor component type
	}{
		{thir.EnumCallPar, func(t ty.Type) ty.Type { return t }, parInt, parInt},
		{thir.EnumCallParOpt, func(t ty.Type) ty.Type { return ty.NewTuple(parBool, t) }, ty.NewTuple(parBool, parInt), parInt},
		{thir.EnumCallVar, func(t ty.Type) ty.Type { return t.WithInst(ty.Var) }, varInt, varInt},
		{thir.EnumCallVarOpt, func(t ty.Type) ty.Type { return ty.NewTuple(varBool, t.WithInst(ty.Var)) }, ty.NewTuple(varBool, varInt), varInt},
		{thir.EnumCallSet, func(t ty.Type) ty.Type { return ty.NewSet(t, ty.Par, ty.NonOpt) }, ty.NewSet(parInt, ty.Par, ty.NonOpt), ty.NewSet(parInt, ty.Par, ty.NonOpt)},
		{thir.EnumCallVarSet, func(t ty.Type) ty.Type { return ty.NewSet(t, ty.Var, ty.NonOpt) }, ty.NewSet(parInt, ty.Var, ty.NonOpt), ty.NewSet(parInt, ty.Var, ty.NonOpt)},
	}

	var cf ctorDtorFuncs
	for _, v := range variants {
		argTys := make([]ty.Type, n)
		for i, t := range baseTys {
			argTys[i] = v.arg(t)
		}
		cf.ctor[v.kind] = e.synthesizeCtorFn(ctor, prevCards, bounds, argTys, v.val)
		cf.dtor[v.kind] = e.synthesizeDtorFn(ctor, prevCards, bounds, v.val, v.comp)
	}
	return cf
}

// cardArray wraps prevCards in an int-array literal; empty when no
// functional constructor precedes.
func (e *Eraser) cardArray(prevCards []thir.ExprID) thir.ExprID {
	intTy := ty.NewInt(ty.Par, ty.NonOpt)
	return e.Dst.InsertExpr(&thir.ArrayLit{
		Base:     thir.Base{Ty: ty.NewArray(intTy, intTy)},
		Elements: append([]thir.ExprID(nil), prevCards...),
	})
}

func (e *Eraser) synthesizeCtorFn(ctor thir.Constructor, prevCards, bounds []thir.ExprID, argTys []ty.Type, retTy ty.Type) thir.FunctionID {
	intTy := ty.NewInt(ty.Par, ty.NonOpt)
	setTy := ty.NewSet(intTy, ty.Par, ty.NonOpt)

	params := make([]thir.DeclarationID, len(argTys))
	pairs := make([]thir.ExprID, len(argTys))
	pairTy := ty.NewTuple(setTy, intTy)
	for i, argTy := range argTys {
		dom := thir.NewUnboundedDomain(argTy)
		if argTy.Kind == ty.Int {
			dom = thir.NewBoundedDomain(bounds[i], argTy)
		}
		params[i] = e.Dst.InsertDeclaration(thir.Declaration{Domain: dom})
		argRef := e.Dst.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: argTy}, Kind: thir.IdentDeclaration, Declaration: params[i]})
		pairTy = ty.NewTuple(setTy, argTy)
		pairs[i] = e.Dst.InsertExpr(&thir.TupleLit{Base: thir.Base{Ty: pairTy}, Elements: []thir.ExprID{bounds[i], argRef}})
	}
	pairsArr := e.Dst.InsertExpr(&thir.ArrayLit{Base: thir.Base{Ty: ty.NewArray(intTy, pairTy)}, Elements: pairs})
	body := e.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: retTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: e.builtinFn(e.ctx.WellKnown.EnumConstructor)},
		Args:     []thir.ExprID{e.cardArray(prevCards), pairsArr},
	})
	return e.Dst.InsertFunction(thir.Function{
		Name:         ctor.Name,
		ReturnDomain: thir.NewUnboundedDomain(retTy),
		Params:       params,
		Body:         body,
	})
}

func (e *Eraser) synthesizeDtorFn(ctor thir.Constructor, prevCards, bounds []thir.ExprID, inTy, compTy ty.Type) thir.FunctionID {
	intTy := ty.NewInt(ty.Par, ty.NonOpt)
	setTy := ty.NewSet(intTy, ty.Par, ty.NonOpt)
	n := len(bounds)

	paramDecl := e.Dst.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(inTy)})
	paramExpr := e.Dst.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: inTy}, Kind: thir.IdentDeclaration, Declaration: paramDecl})
	domsArr := e.Dst.InsertExpr(&thir.ArrayLit{
		Base:     thir.Base{Ty: ty.NewArray(intTy, setTy)},
		Elements: append([]thir.ExprID(nil), bounds...),
	})

	resultArrTy := ty.NewArray(intTy, compTy)
	inner := e.Dst.InsertExpr(&thir.Call{
		Base:     thir.Base{Ty: resultArrTy},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: e.builtinFn(e.ctx.WellKnown.EnumDestructor)},
		Args:     []thir.ExprID{e.cardArray(prevCards), domsArr, paramExpr},
	})
	d := e.Dst.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(resultArrTy), Def: inner})
	dRef := e.Dst.InsertExpr(&thir.Identifier{Base: thir.Base{Ty: resultArrTy}, Kind: thir.IdentDeclaration, Declaration: d})

	elems := make([]thir.ExprID, n)
	compTys := make([]ty.Type, n)
	for i := 0; i < n; i++ {
		idx := e.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: intTy}, Kind: thir.LitInt, Value: i + 1})
		elems[i] = e.Dst.InsertExpr(&thir.ArrayAccess{Base: thir.Base{Ty: compTy}, Collection: dRef, Index: idx})
		compTys[i] = compTy
	}
	retTy := ty.NewTuple(compTys...)
	tuple := e.Dst.InsertExpr(&thir.TupleLit{Base: thir.Base{Ty: retTy}, Elements: elems})
	body := e.Dst.InsertExpr(&thir.Let{
		Base:  thir.Base{Ty: retTy},
		Items: []thir.LetItem{{Kind: thir.LetDeclaration, Declaration: d}},
		In:    tuple,
	})
	return e.Dst.InsertFunction(thir.Function{
		Name:         ctor.Name,
		ReturnDomain: thir.NewUnboundedDomain(retTy),
		Params:       []thir.DeclarationID{paramDecl},
		Body:         body,
	})
}

// builtinFn lazily inserts a single stub Function standing in for a
// true external primitive (spec §6) the solver backend supplies -
// mzn_enum_constructor/destructor are never declared in a source
// Model, so something has to exist at the FunctionID a synthesised
// Call references. The stub is never added to top_level: it is
// referenced only from Callable.Function, never printed.
func (e *Eraser) builtinFn(name ident.ID) thir.FunctionID {
	if id, ok := e.builtins[name]; ok {
		return id
	}
	id := e.Dst.InsertFunction(thir.Function{Name: name})
	e.builtins[name] = id
	return id
}
