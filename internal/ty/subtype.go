package ty

// Varifiable reports whether values of t's base shape can be held in a
// decision variable, per spec §3.1: "bool, int, float, enum,
// set-of-varifiable, tuple-of-varifiable, record-of-varifiable."
func Varifiable(t Type) bool {
	switch t.Kind {
	case Bool, Int, Float, Enum:
		return true
	case Set:
		return Varifiable(*t.Elem)
	case Tuple:
		for _, e := range t.Elems {
			if !Varifiable(e) {
				return false
			}
		}
		return true
	case Record:
		for _, f := range t.Fields {
			if !Varifiable(f.Type) {
				return false
			}
		}
		return true
	case TyVar:
		return t.TVar.Varifiable
	default:
		return false
	}
}

// Enumerable reports whether t is finite and integer-indexable
// (glossary: "bool, int, enum, subsets thereof").
func Enumerable(t Type) bool {
	switch t.Kind {
	case Bool, Int, Enum:
		return true
	case TyVar:
		return t.TVar.Enumerable
	default:
		return false
	}
}

// Indexable reports whether t may be used as an array index type
// ("int, enum, or a tuple of such", spec §3.1).
func Indexable(t Type) bool {
	switch t.Kind {
	case Int, Enum:
		return true
	case Tuple:
		for _, e := range t.Elems {
			if !Indexable(e) {
				return false
			}
		}
		return true
	case TyVar:
		return t.TVar.Indexable
	default:
		return false
	}
}

func numericRank(k Kind) (int, bool) {
	switch k {
	case Bool:
		return 0, true
	case Int:
		return 1, true
	case Float:
		return 2, true
	default:
		return 0, false
	}
}

// Leq implements the subtype relation of spec §3.2.
func Leq(a, b Type) bool {
	if a.Kind == Bottom {
		return true
	}
	if a.Kind == b.Kind {
		if !instOptLeq(a, b) {
			return false
		}
		return sameKindLeq(a, b)
	}
	ra, oka := numericRank(a.Kind)
	rb, okb := numericRank(b.Kind)
	if oka && okb && ra <= rb {
		return instOptLeq(a, b)
	}
	return false
}

// instOptLeq checks the two modifier dimensions independently of Kind:
// "par τ ≤ var τ whenever τ is varifiable" and "non-opt τ ≤ opt τ".
func instOptLeq(a, b Type) bool {
	instOK := a.Inst == b.Inst || (a.Inst == Par && b.Inst == Var && Varifiable(b.WithInst(Par)))
	optOK := a.Opt == b.Opt || (a.Opt == NonOpt && b.Opt == OptYes)
	return instOK && optOK
}

func sameKindLeq(a, b Type) bool {
	switch a.Kind {
	case Bool, Int, Float, String, Ann:
		return true
	case Enum:
		return a.Enum == b.Enum
	case Set:
		return Leq(*a.Elem, *b.Elem)
	case Array:
		return a.Index.Equals(*b.Index) && Leq(*a.Elem, *b.Elem)
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Leq(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Record:
		// Width subtyping: every field of the supertype must appear
		// in the subtype with a compatible (sub-)type; the subtype
		// may carry extra fields.
		for _, g := range b.Fields {
			f, ok := fieldByName(a.Fields, g.Name)
			if !ok || !Leq(f.Type, g.Type) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Params) != len(b.Params) {
			return false
		}
		if !Leq(*a.Ret, *b.Ret) {
			return false
		}
		for i := range a.Params {
			// Contravariant in parameters.
			if !Leq(b.Params[i], a.Params[i]) {
				return false
			}
		}
		return true
	case TyVar:
		return a.TVar.ID == b.TVar.ID
	}
	return false
}

func fieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
