package erase

import (
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// foldAnns folds an annotation list the same way fold.Base's private
// foldExprSlice does; Eraser needs its own copy since that helper is
// unexported.
func (e *Eraser) foldAnns(anns []thir.ExprID) []thir.ExprID {
	if len(anns) == 0 {
		return nil
	}
	out := make([]thir.ExprID, len(anns))
	for i, a := range anns {
		out[i] = e.Self.FoldExpr(a)
	}
	return out
}

// setExprType rewrites a folded destination node's own computed type
// in place, the one thing none of Base's default per-shape folds do
// (they only rebuild structure). Every concrete shape embeds Base by
// value, so the rewrite has to type-switch rather than go through the
// Expr interface.
func setExprType(n thir.Expr, t ty.Type) thir.Expr {
	switch e := n.(type) {
	case *thir.Lit:
		e.Ty = t
	case *thir.Identifier:
		e.Ty = t
	case *thir.ArrayLit:
		e.Ty = t
	case *thir.SetLit:
		e.Ty = t
	case *thir.TupleLit:
		e.Ty = t
	case *thir.RecordLit:
		e.Ty = t
	case *thir.ArrayComp:
		e.Ty = t
	case *thir.SetComp:
		e.Ty = t
	case *thir.ArrayAccess:
		e.Ty = t
	case *thir.TupleAccess:
		e.Ty = t
	case *thir.RecordAccess:
		e.Ty = t
	case *thir.IfThenElse:
		e.Ty = t
	case *thir.Case:
		e.Ty = t
	case *thir.Call:
		e.Ty = t
	case *thir.Let:
		e.Ty = t
	case *thir.Lambda:
		e.Ty = t
	}
	return n
}

// eraseOptRec implements erase_opt(top_down, bottom_up, e) (spec
// §4.7): dstID already has erased structure and an erased type
// (setExprType ran first), so the only thing left to reconcile is a
// mismatch between what the source expression's own type says
// (actual) and what its context expects (expect) at this exact node -
// every nested mismatch inside an array/set/tuple/record was already
// resolved per-element, since each element reached FoldExpr (and
// hence eraseOptRec) on its own with its own element-level
// expectation computed by the top-down prep pass.
func (e *Eraser) eraseOptRec(expect, actual ty.Type, dstID thir.ExprID) thir.ExprID {
	if expect.Opt == actual.Opt {
		return dstID
	}
	if expect.Opt == ty.OptYes {
		// Context wants opt, value is known present: lift to (true, v).
		boolTy := ty.NewBool(actual.Inst, ty.NonOpt)
		trueLit := e.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: boolTy}, Kind: thir.LitBool, Value: true})
		valueTy := eraseType(actual)
		tupleTy := ty.NewTuple(boolTy, valueTy)
		return e.Dst.InsertExpr(&thir.TupleLit{Base: thir.Base{Ty: tupleTy}, Elements: []thir.ExprID{trueLit, dstID}})
	}
	// Context wants a bare value, source type is opt: project field 2
	// out of dst's (bool, v) pair.
	erased := eraseType(actual)
	valueTy := erased
	if erased.Kind == ty.Tuple && len(erased.Elems) == 2 {
		valueTy = erased.Elems[1]
	}
	return e.Dst.InsertExpr(&thir.TupleAccess{Base: thir.Base{Ty: valueTy}, Tuple: dstID, Index: 2})
}

// FoldLit rewrites the absent literal `<>` to the (false, bottom) pair
// every opt value now erases to (spec §4.7); every other literal kind
// keeps Base's default copy.
func (e *Eraser) FoldLit(n *thir.Lit) thir.Expr {
	if n.Kind != thir.LitAbsent {
		return e.Base.FoldLit(n)
	}
	boolTy := ty.NewBool(n.Ty.Inst, ty.NonOpt)
	bottomTy := eraseType(n.Ty.NonOptType())
	falseLit := e.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: boolTy}, Kind: thir.LitBool, Value: false})
	bottomLit := e.Dst.InsertExpr(&thir.Lit{Base: thir.Base{Ty: bottomTy}, Kind: thir.LitBottom})
	return &thir.TupleLit{
		Base:     thir.Base{Ty: ty.NewTuple(boolTy, bottomTy), Anns: e.foldAnns(n.Anns)},
		Elements: []thir.ExprID{falseLit, bottomLit},
	}
}

// FoldRecordLit rewrites a record literal to a tuple literal, relying
// on NewRecordLit's own invariant that Fields is already sorted by
// name the same way ty.NewRecord sorts a record type's fields.
func (e *Eraser) FoldRecordLit(n *thir.RecordLit) thir.Expr {
	elems := make([]thir.ExprID, len(n.Fields))
	types := make([]ty.Type, len(n.Fields))
	for i, f := range n.Fields {
		elems[i] = e.Self.FoldExpr(f.Value)
		types[i] = e.Dst.Exprs.Get(elems[i]).Type()
	}
	return &thir.TupleLit{
		Base:     thir.Base{Ty: ty.NewTuple(types...), Anns: e.foldAnns(n.Anns)},
		Elements: elems,
	}
}

// FoldRecordAccess rewrites `r.field` to the positional tuple access
// matching field's place in the source record type's sorted field
// list (spec §4.7, "record access becomes tuple access by sorted
// position").
func (e *Eraser) FoldRecordAccess(n *thir.RecordAccess) thir.Expr {
	srcTy := e.Src.Exprs.Get(n.Record).Type()
	idx := 1
	fieldTy := srcTy
	for i, f := range srcTy.Fields {
		if f.Name == n.Field {
			idx = i + 1
			fieldTy = f.Type
			break
		}
	}
	tupleExpr := e.Self.FoldExpr(n.Record)
	return &thir.TupleAccess{
		Base:  thir.Base{Ty: eraseType(fieldTy), Anns: e.foldAnns(n.Anns)},
		Tuple: tupleExpr,
		Index: idx,
	}
}

// FoldIdentifier intercepts references into a now-erased enumeration -
// the enum itself, an atomic member, or a destructor used as a
// first-class value - redirecting each to the helper prepareEnum
// synthesised; every other identifier kind keeps Base's default fold.
func (e *Eraser) FoldIdentifier(n *thir.Identifier) thir.Expr {
	switch n.Kind {
	case thir.IdentEnumeration:
		st, ok := e.enums[n.Enumeration]
		if !ok {
			break
		}
		setTy := ty.NewSet(ty.NewInt(ty.Par, ty.NonOpt), ty.Par, ty.NonOpt)
		return &thir.Identifier{
			Base:        thir.Base{Ty: setTy, Anns: e.foldAnns(n.Anns)},
			Kind:        thir.IdentDeclaration,
			Declaration: st.definingSet,
		}
	case thir.IdentEnumMember:
		st, ok := e.enums[n.Enumeration]
		if !ok {
			break
		}
		decl, ok := st.atomic[n.EnumMemberIndex]
		if !ok {
			break
		}
		return &thir.Identifier{
			Base:        thir.Base{Ty: ty.NewInt(ty.Par, ty.NonOpt), Anns: e.foldAnns(n.Anns)},
			Kind:        thir.IdentDeclaration,
			Declaration: decl,
		}
	case thir.IdentEnumDestructor:
		st, ok := e.enums[n.Enumeration]
		if !ok {
			break
		}
		cf, ok := st.funcs[n.EnumMemberIndex]
		if !ok {
			break
		}
		fnID := cf.dtor[thir.EnumCallPar]
		return &thir.Identifier{
			Base:     thir.Base{Ty: e.functionType(fnID), Anns: e.foldAnns(n.Anns)},
			Kind:     thir.IdentFunction,
			Function: fnID,
		}
	}
	return e.Base.FoldIdentifier(n)
}

func (e *Eraser) functionType(id thir.FunctionID) ty.Type {
	fn := e.Dst.Functions.Get(id)
	params := make([]ty.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = e.Dst.Declarations.Get(p).Ty()
	}
	return ty.NewFunction(params, fn.ReturnDomain.Ty)
}

// FoldCall intercepts enum constructor/destructor calls, redirecting
// each to the matching one of the six synthesised variants (spec
// §4.7); every other callable kind keeps Base's default fold.
func (e *Eraser) FoldCall(n *thir.Call) thir.Expr {
	if n.Callable.Kind != thir.CallableEnumCtor && n.Callable.Kind != thir.CallableEnumDtor {
		return e.Base.FoldCall(n)
	}
	st, ok := e.enums[n.Callable.Enum]
	if !ok {
		return e.Base.FoldCall(n)
	}
	cf, ok := st.funcs[n.Callable.ConstructorIndex]
	if !ok {
		return e.Base.FoldCall(n)
	}

	var fnID thir.FunctionID
	if n.Callable.Kind == thir.CallableEnumCtor {
		fnID = cf.ctor[n.Callable.EnumKind]
	} else {
		fnID = cf.dtor[n.Callable.EnumKind]
	}
	fn := e.Dst.Functions.Get(fnID)

	// A constructor takes one argument per parameter declaration; a
	// destructor takes the single constructed value.
	args := make([]thir.ExprID, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.Self.FoldExpr(a)
	}

	return &thir.Call{
		Base:     thir.Base{Ty: fn.ReturnDomain.Ty, Anns: e.foldAnns(n.Anns)},
		Callable: thir.Callable{Kind: thir.CallableFunction, Function: fnID},
		Args:     args,
	}
}
