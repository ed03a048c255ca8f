// Package ty implements the Shackle type lattice: types, subtyping,
// most-specific-supertype / most-general-subtype, and the ty-var
// bookkeeping used by overload resolution and specialisation.
//
// A Type is represented as a single comparable-by-value struct rather
// than one Go type per shape. The teacher's type system
// (internal/types/types.go, types_v2.go) uses an interface with one
// implementation per shape, because it is open (row-polymorphic,
// effect-tracked, user-extensible via type classes). Shackle's type
// lattice is closed - spec §3.1 enumerates every shape - so collapsing
// it to one struct keeps subtyping, substitution, and the MSS/MGS
// lattice operations (spec §3.2) as plain recursive functions over a
// value type instead of a type switch plus an interface per shape.
package ty

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags which structural shape a Type carries.
type Kind int

const (
	Bool Kind = iota
	Int
	Float
	String
	Ann
	Bottom
	Enum
	Set
	Array
	Tuple
	Record
	Function
	TyVar
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Ann:
		return "ann"
	case Bottom:
		return "bottom"
	case Enum:
		return "enum"
	case Set:
		return "set"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Record:
		return "record"
	case Function:
		return "function"
	case TyVar:
		return "tyvar"
	default:
		return "<unknown-kind>"
	}
}

// Inst is whether a value is fixed (Par) or a decision variable (Var).
type Inst int

const (
	Par Inst = iota
	Var
)

func (i Inst) String() string {
	if i == Var {
		return "var"
	}
	return "par"
}

// Opt is whether a value may be the absent value.
type Opt int

const (
	NonOpt Opt = iota
	OptYes
)

func (o Opt) String() string {
	if o == OptYes {
		return "opt"
	}
	return "non-opt"
}

// EnumID names a nominal enumeration. Two Types with Kind==Enum are
// the same enum iff their EnumID matches - comparison never needs to
// look at the enum's member list, the same way the teacher's TCon
// compares by Name alone (internal/types/types.go).
type EnumID int32

// TVar holds the constraints on a universally quantified type variable
// (spec §3.1, §9 "Polymorphism without higher-kinded subtlety").
type TVar struct {
	ID         string
	Varifiable bool
	Enumerable bool
	Indexable  bool
}

// Field is one named, typed member of a record, stored only inside a
// Fields slice that is kept sorted by Name (spec §3.1, §3.6).
type Field struct {
	Name string
	Type Type
}

// Type is a single Shackle type. Which fields are meaningful depends
// on Kind; constructors below are the only supported way to build one
// so that invalid combinations (e.g. a Tuple with a non-nil Enum) never
// arise.
type Type struct {
	Kind Kind
	Inst Inst
	Opt  Opt

	Enum EnumID // Kind == Enum

	Elem  *Type // Kind == Set, Array (element type)
	Index *Type // Kind == Array (index type)

	Elems []Type // Kind == Tuple

	Fields []Field // Kind == Record, sorted by Name

	Params []Type // Kind == Function
	Ret    *Type  // Kind == Function

	TVar *TVar // Kind == TyVar
}

// --- constructors ---

func NewBool(inst Inst, opt Opt) Type  { return Type{Kind: Bool, Inst: inst, Opt: opt} }
func NewInt(inst Inst, opt Opt) Type   { return Type{Kind: Int, Inst: inst, Opt: opt} }
func NewFloat(inst Inst, opt Opt) Type { return Type{Kind: Float, Inst: inst, Opt: opt} }
func NewString(opt Opt) Type           { return Type{Kind: String, Inst: Par, Opt: opt} }
func NewAnn() Type                     { return Type{Kind: Ann, Inst: Par, Opt: NonOpt} }
func NewBottom() Type                  { return Type{Kind: Bottom} }

func NewEnum(id EnumID, inst Inst, opt Opt) Type {
	return Type{Kind: Enum, Inst: inst, Opt: opt, Enum: id}
}

func NewSet(elem Type, inst Inst, opt Opt) Type {
	e := elem
	return Type{Kind: Set, Inst: inst, Opt: opt, Elem: &e}
}

func NewArray(index, elem Type) Type {
	i, e := index, elem
	return Type{Kind: Array, Inst: Par, Opt: NonOpt, Index: &i, Elem: &e}
}

func NewTuple(elems ...Type) Type {
	cp := make([]Type, len(elems))
	copy(cp, elems)
	return Type{Kind: Tuple, Inst: Par, Opt: NonOpt, Elems: cp}
}

// NewRecord sorts fields by name, giving "record field lists are
// sorted by field name, at every structural level" (spec §3.6) for
// free at construction time - every caller that builds a record type
// goes through here.
func NewRecord(fields ...Field) Type {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })
	return Type{Kind: Record, Inst: Par, Opt: NonOpt, Fields: cp}
}

func NewFunction(params []Type, ret Type) Type {
	cp := make([]Type, len(params))
	copy(cp, params)
	r := ret
	return Type{Kind: Function, Inst: Par, Opt: NonOpt, Params: cp, Ret: &r}
}

func NewTyVar(v TVar) Type {
	vv := v
	return Type{Kind: TyVar, Inst: Par, Opt: NonOpt, TVar: &vv}
}

// WithInst returns a copy of t with its top-level Inst changed.
func (t Type) WithInst(inst Inst) Type {
	t.Inst = inst
	return t
}

// WithOpt returns a copy of t with its top-level Opt changed.
func (t Type) WithOpt(opt Opt) Type {
	t.Opt = opt
	return t
}

// NonOptType returns a copy of t with Opt forced to NonOpt - used
// pervasively by the erasure transform's opt-stripping rewrites.
func (t Type) NonOptType() Type { return t.WithOpt(NonOpt) }

// IsBottom reports whether t is the bottom type.
func (t Type) IsBottom() bool { return t.Kind == Bottom }

// String renders t for diagnostics and tests.
func (t Type) String() string {
	var body string
	switch t.Kind {
	case Bool, Int, Float, String, Ann, Bottom:
		body = t.Kind.String()
	case Enum:
		body = fmt.Sprintf("enum#%d", t.Enum)
	case Set:
		body = fmt.Sprintf("set of %s", t.Elem.String())
	case Array:
		body = fmt.Sprintf("array [%s] of %s", t.Index.String(), t.Elem.String())
	case Tuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		body = fmt.Sprintf("tuple(%s)", strings.Join(parts, ", "))
	case Record:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
		}
		body = fmt.Sprintf("record{%s}", strings.Join(parts, ", "))
	case Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("function(%s) -> %s", strings.Join(parts, ", "), t.Ret.String())
	case TyVar:
		return "$" + t.TVar.ID
	default:
		body = "<?>"
	}
	if t.Kind == Bottom {
		return body
	}
	return fmt.Sprintf("%s %s%s", t.Inst, optPrefix(t.Opt), body)
}

func optPrefix(o Opt) string {
	if o == OptYes {
		return "opt "
	}
	return ""
}

// Equals is exact structural equality, including Inst/Opt. It is NOT
// the subtype relation - use Leq for that.
func (a Type) Equals(b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == Bottom {
		return true
	}
	if a.Inst != b.Inst || a.Opt != b.Opt {
		return false
	}
	switch a.Kind {
	case Bool, Int, Float, String, Ann:
		return true
	case Enum:
		return a.Enum == b.Enum
	case Set:
		return a.Elem.Equals(*b.Elem)
	case Array:
		return a.Index.Equals(*b.Index) && a.Elem.Equals(*b.Elem)
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !a.Elems[i].Equals(b.Elems[i]) {
				return false
			}
		}
		return true
	case Record:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !a.Fields[i].Type.Equals(b.Fields[i].Type) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !a.Params[i].Equals(b.Params[i]) {
				return false
			}
		}
		return a.Ret.Equals(*b.Ret)
	case TyVar:
		return a.TVar.ID == b.TVar.ID
	}
	return false
}

// Substitute replaces every ty-var occurrence named in subs with its
// mapped type, recursing structurally. This is the core operation
// behind polymorphic instantiation (spec §4.5).
func (t Type) Substitute(subs map[string]Type) Type {
	switch t.Kind {
	case TyVar:
		if repl, ok := subs[t.TVar.ID]; ok {
			// The substituted type inherits this occurrence's inst/opt
			// promotion when the original ty-var carried one, so that
			// `var $T` substituted with `int` yields `var int`, not `par int`.
			return promote(repl, t.Inst, t.Opt)
		}
		return t
	case Set:
		e := t.Elem.Substitute(subs)
		t.Elem = &e
		return t
	case Array:
		i := t.Index.Substitute(subs)
		e := t.Elem.Substitute(subs)
		t.Index, t.Elem = &i, &e
		return t
	case Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = e.Substitute(subs)
		}
		t.Elems = elems
		return t
	case Record:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: f.Type.Substitute(subs)}
		}
		t.Fields = fields
		return t
	case Function:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.Substitute(subs)
		}
		r := t.Ret.Substitute(subs)
		t.Params, t.Ret = params, &r
		return t
	default:
		return t
	}
}

// promote lifts base's Inst/Opt to be at least as permissive as want,
// used when substituting a ty-var that was itself promoted to var/opt
// at this occurrence (spec §4.4 "inst/opt are stripped before
// recording" - this is the inverse operation applied at substitution
// time).
func promote(base Type, inst Inst, opt Opt) Type {
	if inst == Var {
		base.Inst = Var
	}
	if opt == OptYes {
		base.Opt = OptYes
	}
	return base
}
