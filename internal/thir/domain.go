package thir

import "github.com/shackle-lang/shackle/internal/ty"

// DomainKind tags which structural shape a Domain carries (spec §3.4,
// "Domains mirror types but carry optional bound expressions").
type DomainKind int

const (
	Bounded DomainKind = iota
	SetDomain
	ArrayDomain
	TupleDomain
	RecordDomain
	Unbounded
)

// DomainField is one named, typed member of a record domain, kept
// sorted by Name exactly like ty.Field (spec §3.6).
type DomainField struct {
	Name   string
	Domain Domain
}

// Domain mirrors ty.Type but lets the Bounded and structural-leaf
// shapes carry an explicit bound expression (e.g. `1..10` or
// `{1,3,5}`). A Domain's computed Ty must always equal what Ty()
// derives from its structure (spec §3.4, "A domain's ty() must equal
// its computed type").
type Domain struct {
	Kind DomainKind
	Ty   ty.Type

	Bound ExprID // Kind == Bounded: the expression defining the allowed values

	Inner *Domain // Kind == SetDomain

	Index *Domain // Kind == ArrayDomain (index domain)
	Elem  *Domain // Kind == ArrayDomain (element domain)

	Elems []Domain // Kind == TupleDomain

	Fields []DomainField // Kind == RecordDomain, sorted by Name
}

// ComputedTy returns the declared type of d, which by invariant always
// matches its structure.
func (d Domain) ComputedTy() ty.Type { return d.Ty }

// NewUnboundedDomain wraps a bare type with no value restriction.
func NewUnboundedDomain(t ty.Type) Domain {
	return Domain{Kind: Unbounded, Ty: t}
}

// NewBoundedDomain attaches a defining expression (already known to
// have type t, or a set-of-t type for enumerated bounds) to a leaf
// domain.
func NewBoundedDomain(bound ExprID, t ty.Type) Domain {
	return Domain{Kind: Bounded, Ty: t, Bound: bound}
}

// NewSetDomain builds `set of <inner>`.
func NewSetDomain(inner Domain, inst ty.Inst, opt ty.Opt) Domain {
	in := inner
	return Domain{
		Kind:  SetDomain,
		Ty:    ty.NewSet(inner.Ty, inst, opt),
		Inner: &in,
	}
}

// NewArrayDomain builds `array [<index>] of <elem>`.
func NewArrayDomain(index, elem Domain) Domain {
	i, e := index, elem
	return Domain{
		Kind:  ArrayDomain,
		Ty:    ty.NewArray(index.Ty, elem.Ty),
		Index: &i,
		Elem:  &e,
	}
}

// NewTupleDomain builds a positional tuple domain.
func NewTupleDomain(elems ...Domain) Domain {
	cp := make([]Domain, len(elems))
	types := make([]ty.Type, len(elems))
	for i, e := range elems {
		cp[i] = e
		types[i] = e.Ty
	}
	return Domain{Kind: TupleDomain, Ty: ty.NewTuple(types...), Elems: cp}
}

// NewRecordDomain builds a record domain, sorting fields by name so
// that record field lists stay canonically sorted "at every
// structural level" (spec §3.6), including domains.
func NewRecordDomain(fields ...DomainField) Domain {
	cp := make([]DomainField, len(fields))
	copy(cp, fields)
	sortDomainFields(cp)
	tfields := make([]ty.Field, len(cp))
	for i, f := range cp {
		tfields[i] = ty.Field{Name: f.Name, Type: f.Domain.Ty}
	}
	return Domain{Kind: RecordDomain, Ty: ty.NewRecord(tfields...), Fields: cp}
}

func sortDomainFields(fields []DomainField) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j].Name < fields[j-1].Name; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
