package erase

import "github.com/shackle-lang/shackle/internal/ty"

// eraseType applies the three structural rewrites of spec §4.7 to a
// bare ty.Type, independent of any expression or domain it might be
// attached to: opt is replaced by a (bool, T) pair, record becomes a
// field-sorted tuple, and enum becomes plain int. It is the single
// source of truth both internal/erase's Domain rewrites and its
// erase_opt expression post-processing consult to know what a given
// source type looks like once every erasable feature is gone.
func eraseType(t ty.Type) ty.Type {
	if t.Opt == ty.OptYes {
		boolTy := ty.NewBool(t.Inst, ty.NonOpt)
		inner := eraseType(t.NonOptType())
		return ty.NewTuple(boolTy, inner)
	}
	switch t.Kind {
	case ty.Enum:
		return ty.NewInt(t.Inst, ty.NonOpt)
	case ty.Set:
		elem := eraseType(*t.Elem)
		return ty.NewSet(elem, t.Inst, t.Opt)
	case ty.Array:
		idx := eraseType(*t.Index)
		elem := eraseType(*t.Elem)
		return ty.NewArray(idx, elem)
	case ty.Tuple:
		elems := make([]ty.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = eraseType(e)
		}
		return ty.NewTuple(elems...)
	case ty.Record:
		elems := make([]ty.Type, len(t.Fields))
		for i, f := range t.Fields {
			elems[i] = eraseType(f.Type)
		}
		return ty.NewTuple(elems...)
	default:
		return t
	}
}
