// Package ident implements the identifier/string interning table
// described as the "identifier registry" collaborator in spec §6. It
// is initialised once when the compiler is constructed and is
// read-only for the rest of a run (spec §5, §9).
package ident

import "golang.org/x/text/unicode/norm"

// ID is a stable, cheap-to-copy handle for an interned identifier or
// string literal value. Two calls to Registry.Intern with the same
// textual content (after NFC normalisation) always return the same ID.
type ID int32

// Registry interns identifier and string text. Normalising to NFC
// before interning means two source spellings that a human (and a
// solver backend) would consider the same identifier - e.g. an
// accented letter written as one precomposed rune versus a base letter
// plus combining mark - always collide to a single symbol, matching
// how the teacher's lexer normalises source text before tokenising
// (internal/lexer/normalize.go) rather than leaving that ambiguity for
// every later pass to rediscover.
type Registry struct {
	strings []string
	index   map[string]ID
}

// NewRegistry creates an empty interning table and pre-interns the
// well-known identifiers the core and erasure transform depend on by
// name, so their IDs are stable and cheap to compare structurally.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]ID)}
	for _, name := range wellKnownNames {
		r.Intern(name)
	}
	return r
}

// Intern returns the stable ID for s, normalising to NFC first.
func (r *Registry) Intern(s string) ID {
	s = norm.NFC.String(s)
	if id, ok := r.index[s]; ok {
		return id
	}
	id := ID(len(r.strings))
	r.strings = append(r.strings, s)
	r.index[s] = id
	return id
}

// Lookup returns the interned ID for s without inserting it.
func (r *Registry) Lookup(s string) (ID, bool) {
	s = norm.NFC.String(s)
	id, ok := r.index[s]
	return id, ok
}

// Name returns the short string name of id for diagnostics, matching
// the "identifier registry" contract in spec §6 exactly: given a
// stable handle, return a name, nothing more.
func (r *Registry) Name(id ID) string {
	if int(id) < 0 || int(id) >= len(r.strings) {
		return "<invalid-identifier>"
	}
	return r.strings[id]
}

// Well-known identifiers the core refers to by name (spec §6). These
// are var declarations rather than a single slice-indexed enum because
// callers reference them individually (WellKnown.Show, WellKnown.Forall, ...)
// the same way the teacher threads named builtins through its
// evaluator rather than a numeric opcode table.
var wellKnownNames = []string{
	"show", "show_json", "show_dzn",
	"forall", "sum", "product", "card", "concat", "join",
	"occurs", "deopt", "is_fixed", "fix",
	"mzn_destruct_opt", "mzn_construct_opt",
	"mzn_enum_constructor", "mzn_enum_destructor",
	"array_xd", "to_enum", "erase_enum",
	"mzn_unreachable", "default", "output",
}

// WellKnown holds the IDs of the identifiers spec §6 lists by name.
// Populate it once via NewWellKnown(reg) right after constructing a
// Registry with NewRegistry (which guarantees every name below is
// already interned).
type WellKnown struct {
	Show, ShowJSON, ShowDZN           ID
	Forall, Sum, Product, Card        ID
	Concat, Join                      ID
	Occurs, Deopt, IsFixed, Fix       ID
	DestructOpt, ConstructOpt         ID
	EnumConstructor, EnumDestructor   ID
	ArrayXd, ToEnum, EraseEnum        ID
	Unreachable, Default, OutputIdent ID
}

// NewWellKnown resolves every well-known name against reg.
func NewWellKnown(reg *Registry) WellKnown {
	must := func(name string) ID {
		id, ok := reg.Lookup(name)
		if !ok {
			id = reg.Intern(name)
		}
		return id
	}
	return WellKnown{
		Show:            must("show"),
		ShowJSON:        must("show_json"),
		ShowDZN:         must("show_dzn"),
		Forall:          must("forall"),
		Sum:             must("sum"),
		Product:         must("product"),
		Card:            must("card"),
		Concat:          must("concat"),
		Join:            must("join"),
		Occurs:          must("occurs"),
		Deopt:           must("deopt"),
		IsFixed:         must("is_fixed"),
		Fix:             must("fix"),
		DestructOpt:     must("mzn_destruct_opt"),
		ConstructOpt:    must("mzn_construct_opt"),
		EnumConstructor: must("mzn_enum_constructor"),
		EnumDestructor:  must("mzn_enum_destructor"),
		ArrayXd:         must("array_xd"),
		ToEnum:          must("to_enum"),
		EraseEnum:       must("erase_enum"),
		Unreachable:     must("mzn_unreachable"),
		Default:         must("default"),
		OutputIdent:     must("output"),
	}
}
