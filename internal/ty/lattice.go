package ty

// MSS computes the Most Specific Supertype of a finite, non-empty set
// of types (spec §3.2): the unique smallest τ such that every member
// is ≤ τ, or false if no such τ exists. It is implemented as a
// pairwise fold, which is valid because the join operation below is
// commutative and associative on every shape it is defined for.
func MSS(types ...Type) (Type, bool) {
	return fold(types, mssPair)
}

// MGS computes the Most General Subtype: the largest τ such that
// τ ≤ every member, or false if undefined.
func MGS(types ...Type) (Type, bool) {
	return fold(types, mgsPair)
}

func fold(types []Type, op func(a, b Type) (Type, bool)) (Type, bool) {
	if len(types) == 0 {
		return Type{}, false
	}
	acc := types[0]
	for _, t := range types[1:] {
		var ok bool
		acc, ok = op(acc, t)
		if !ok {
			return Type{}, false
		}
	}
	return acc, true
}

func mssPair(a, b Type) (Type, bool) {
	if a.Kind == Bottom {
		return b, true
	}
	if b.Kind == Bottom {
		return a, true
	}
	if a.Equals(b) {
		return a, true
	}
	if Leq(a, b) {
		return b, true
	}
	if Leq(b, a) {
		return a, true
	}

	if ra, oka := numericRank(a.Kind); oka {
		if rb, okb := numericRank(b.Kind); okb {
			kind := a.Kind
			if rb > ra {
				kind = b.Kind
			}
			return Type{Kind: kind, Inst: joinInst(a, b), Opt: joinOpt(a, b)}, true
		}
	}

	if a.Kind != b.Kind {
		return Type{}, false
	}

	inst, opt := joinInst(a, b), joinOpt(a, b)
	switch a.Kind {
	case Set:
		elem, ok := MSS(*a.Elem, *b.Elem)
		if !ok {
			return Type{}, false
		}
		return withMod(NewSet(elem, inst, opt), inst, opt), true
	case Array:
		if !a.Index.Equals(*b.Index) {
			return Type{}, false
		}
		elem, ok := MSS(*a.Elem, *b.Elem)
		if !ok {
			return Type{}, false
		}
		return NewArray(*a.Index, elem), true
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return Type{}, false
		}
		elems := make([]Type, len(a.Elems))
		for i := range a.Elems {
			e, ok := MSS(a.Elems[i], b.Elems[i])
			if !ok {
				return Type{}, false
			}
			elems[i] = e
		}
		return withMod(NewTuple(elems...), inst, opt), true
	case Record:
		// MSS of a record pair keeps only fields present on both
		// sides (intersection) - a wider record is always a subtype
		// of a narrower one, so the smallest common supertype can
		// only promise the narrower field set.
		var fields []Field
		for _, fa := range a.Fields {
			if fb, ok := fieldByName(b.Fields, fa.Name); ok {
				ft, ok := MSS(fa.Type, fb.Type)
				if !ok {
					return Type{}, false
				}
				fields = append(fields, Field{Name: fa.Name, Type: ft})
			}
		}
		return withMod(NewRecord(fields...), inst, opt), true
	case Function:
		if len(a.Params) != len(b.Params) {
			return Type{}, false
		}
		ret, ok := MSS(*a.Ret, *b.Ret)
		if !ok {
			return Type{}, false
		}
		params := make([]Type, len(a.Params))
		for i := range a.Params {
			// Contravariant: the join of the params is their MGS.
			p, ok := MGS(a.Params[i], b.Params[i])
			if !ok {
				return Type{}, false
			}
			params[i] = p
		}
		return NewFunction(params, ret), true
	case TyVar:
		if a.TVar.ID == b.TVar.ID {
			return withMod(a, inst, opt), true
		}
		return Type{}, false
	default:
		return Type{}, false
	}
}

func mgsPair(a, b Type) (Type, bool) {
	if a.Kind == Bottom || b.Kind == Bottom {
		return NewBottom(), true
	}
	if a.Equals(b) {
		return a, true
	}
	if Leq(a, b) {
		return a, true
	}
	if Leq(b, a) {
		return b, true
	}

	if ra, oka := numericRank(a.Kind); oka {
		if rb, okb := numericRank(b.Kind); okb {
			kind := a.Kind
			if rb < ra {
				kind = b.Kind
			}
			return Type{Kind: kind, Inst: meetInst(a, b), Opt: meetOpt(a, b)}, true
		}
	}

	if a.Kind != b.Kind {
		return NewBottom(), true
	}

	inst, opt := meetInst(a, b), meetOpt(a, b)
	switch a.Kind {
	case Set:
		elem, ok := MGS(*a.Elem, *b.Elem)
		if !ok {
			return Type{}, false
		}
		return withMod(NewSet(elem, inst, opt), inst, opt), true
	case Array:
		if !a.Index.Equals(*b.Index) {
			return Type{}, false
		}
		elem, ok := MGS(*a.Elem, *b.Elem)
		if !ok {
			return Type{}, false
		}
		return NewArray(*a.Index, elem), true
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return Type{}, false
		}
		elems := make([]Type, len(a.Elems))
		for i := range a.Elems {
			e, ok := MGS(a.Elems[i], b.Elems[i])
			if !ok {
				return Type{}, false
			}
			elems[i] = e
		}
		return withMod(NewTuple(elems...), inst, opt), true
	case Record:
		// MGS keeps the union of fields - being a subtype of both
		// requires at least every field either side requires.
		fields := append([]Field{}, a.Fields...)
		for _, fb := range b.Fields {
			if fa, ok := fieldByName(a.Fields, fb.Name); ok {
				ft, ok := MGS(fa.Type, fb.Type)
				if !ok {
					return Type{}, false
				}
				for i := range fields {
					if fields[i].Name == fb.Name {
						fields[i].Type = ft
					}
				}
			} else {
				fields = append(fields, fb)
			}
		}
		return withMod(NewRecord(fields...), inst, opt), true
	case Function:
		if len(a.Params) != len(b.Params) {
			return Type{}, false
		}
		ret, ok := MGS(*a.Ret, *b.Ret)
		if !ok {
			return Type{}, false
		}
		params := make([]Type, len(a.Params))
		for i := range a.Params {
			p, ok := MSS(a.Params[i], b.Params[i])
			if !ok {
				return Type{}, false
			}
			params[i] = p
		}
		return NewFunction(params, ret), true
	case TyVar:
		if a.TVar.ID == b.TVar.ID {
			return withMod(a, inst, opt), true
		}
		return Type{}, false
	default:
		return Type{}, false
	}
}

func joinInst(a, b Type) Inst {
	if a.Inst == Var || b.Inst == Var {
		return Var
	}
	return Par
}

func meetInst(a, b Type) Inst {
	if a.Inst == Par || b.Inst == Par {
		return Par
	}
	return Var
}

func joinOpt(a, b Type) Opt {
	if a.Opt == OptYes || b.Opt == OptYes {
		return OptYes
	}
	return NonOpt
}

func meetOpt(a, b Type) Opt {
	if a.Opt == NonOpt || b.Opt == NonOpt {
		return NonOpt
	}
	return OptYes
}

func withMod(t Type, inst Inst, opt Opt) Type {
	t.Inst, t.Opt = inst, opt
	return t
}
