package specialize

import (
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// FoldArrayAccess decomposes an array access whose element type is a
// tuple or record indexed at a var position (spec §4.5): `x[i]` with
// `x : array [_] of tuple(t1, t2)` becomes `(a[i], b[i])` where a and b
// are per-component projection comprehensions over x. Later transforms
// then only ever see arrays of primitive element types under var
// indexing.
func (s *Specializer) FoldArrayAccess(n *thir.ArrayAccess) thir.Expr {
	return s.foldArrayAccessWith(s, n)
}

func (p *paramSubstFolder) FoldArrayAccess(n *thir.ArrayAccess) thir.Expr {
	return p.sp.foldArrayAccessWith(p, n)
}

func (s *Specializer) foldArrayAccessWith(self folder, n *thir.ArrayAccess) thir.Expr {
	coll := self.FoldExpr(n.Collection)
	idx := self.FoldExpr(n.Index)
	anns := foldExprSliceUsing(self, n.Anns)

	collTy := s.Dst.Exprs.Get(coll).Type()
	idxTy := s.Dst.Exprs.Get(idx).Type()
	if collTy.Kind != ty.Array || !indexIsVar(idxTy) ||
		(collTy.Elem.Kind != ty.Tuple && collTy.Elem.Kind != ty.Record) {
		cp := *n
		cp.Anns = anns
		cp.Collection = coll
		cp.Index = idx
		return &cp
	}

	elem := *collTy.Elem

	// The comprehensions reference the collection once per component, so
	// a non-identifier collection is bound to a local first.
	collRef := coll
	var letDecl thir.DeclarationID
	hasLet := false
	if _, isIdent := s.Dst.Exprs.Get(coll).(*thir.Identifier); !isIdent {
		letDecl = s.Dst.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(collTy), Def: coll})
		collRef = s.identExpr(letDecl, collTy)
		hasLet = true
	}

	project := func(componentTy ty.Type, access func(loop thir.ExprID) thir.Expr) (thir.ExprID, ty.Type) {
		loopDecl := s.Dst.InsertDeclaration(thir.Declaration{Domain: thir.NewUnboundedDomain(elem)})
		loop := s.identExpr(loopDecl, elem)
		tmpl := s.Dst.InsertExpr(access(loop))
		arrTy := ty.NewArray(*collTy.Index, componentTy)
		comp := s.Dst.InsertExpr(&thir.ArrayComp{
			Base: thir.Base{Ty: arrTy},
			Generators: []thir.Generator{
				{Kind: thir.GenIterator, Decls: []thir.DeclarationID{loopDecl}, Collection: collRef},
			},
			Template: tmpl,
		})
		resTy := componentTy.WithInst(ty.Var)
		return s.Dst.InsertExpr(&thir.ArrayAccess{
			Base:       thir.Base{Ty: resTy},
			Collection: comp,
			Index:      idx,
		}), resTy
	}

	var result thir.Expr
	if elem.Kind == ty.Tuple {
		elems := make([]thir.ExprID, len(elem.Elems))
		types := make([]ty.Type, len(elem.Elems))
		for k, compTy := range elem.Elems {
			elems[k], types[k] = project(compTy, func(loop thir.ExprID) thir.Expr {
				return &thir.TupleAccess{Base: thir.Base{Ty: compTy}, Tuple: loop, Index: k + 1}
			})
		}
		result = &thir.TupleLit{Base: thir.Base{Ty: ty.NewTuple(types...), Anns: anns}, Elements: elems}
	} else {
		fields := make([]thir.RecordField, len(elem.Fields))
		tfields := make([]ty.Field, len(elem.Fields))
		for k, f := range elem.Fields {
			id, resTy := project(f.Type, func(loop thir.ExprID) thir.Expr {
				return &thir.RecordAccess{Base: thir.Base{Ty: f.Type}, Record: loop, Field: f.Name}
			})
			fields[k] = thir.RecordField{Name: f.Name, Value: id}
			tfields[k] = ty.Field{Name: f.Name, Type: resTy}
		}
		lit := thir.NewRecordLit(thir.Base{Ty: ty.NewRecord(tfields...), Anns: anns}, fields...)
		result = lit
	}

	if !hasLet {
		return result
	}
	resultID := s.Dst.InsertExpr(result)
	return &thir.Let{
		Base:  thir.Base{Ty: result.Type(), Anns: anns},
		Items: []thir.LetItem{{Kind: thir.LetDeclaration, Declaration: letDecl}},
		In:    resultID,
	}
}

// indexIsVar reports whether an index expression's type makes this a
// var access: a var scalar, or a multi-dim tuple index with any var
// component.
func indexIsVar(t ty.Type) bool {
	if t.Kind == ty.Tuple {
		for _, e := range t.Elems {
			if indexIsVar(e) {
				return true
			}
		}
		return false
	}
	return t.Inst == ty.Var
}
