package thir

import (
	"github.com/shackle-lang/shackle/internal/arena"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/ty"
)

// Item-kind index aliases (spec §3.3: "All items live in typed arenas
// inside a Model. Items are referred to by opaque indices ... never
// pointers").
type (
	AnnotationID  = arena.Index[Annotation]
	ConstraintID  = arena.Index[Constraint]
	DeclarationID = arena.Index[Declaration]
	EnumerationID = arena.Index[Enumeration]
	FunctionID    = arena.Index[Function]
	OutputID      = arena.Index[Output]
)

// Constructor is one member of an Enumeration: either atomic (just a
// name) or functional (a name plus parameter declarations whose types
// are the constructor's argument domains).
type Constructor struct {
	Name   ident.ID
	Params []DeclarationID // nil/empty for an atomic constructor
}

func (c Constructor) IsAtomic() bool { return len(c.Params) == 0 }

// Annotation is either an atom (named nullary) or a constructor (name
// plus parameter declarations).
type Annotation struct {
	Name   ident.ID
	Params []DeclarationID // nil/empty for an atom
}

func (a Annotation) IsAtom() bool { return len(a.Params) == 0 }

// Constraint is a boolean expression plus its annotation list.
type Constraint struct {
	Expr     ExprID
	Anns     []ExprID
	TopLevel bool
	LetLocal bool
}

// Declaration is a domain, optional name, optional defining
// expression, annotation list, and a top-level flag. Invariant: if Def
// is set, Def's type ≤ Domain's type; InsertDeclaration and
// AddDeclaration do not check it.
type Declaration struct {
	Domain   Domain
	Name     ident.ID
	HasName  bool
	Def      ExprID // zero means "no defining expression"
	Anns     []ExprID
	TopLevel bool
}

func (d Declaration) Ty() ty.Type { return d.Domain.Ty }

// Enumeration is an enum reference plus an optional list of
// Constructors.
type Enumeration struct {
	Name         ident.ID
	ID           ty.EnumID
	Constructors []Constructor // nil means "enum without defined constructors"
}

// Function is a name, return domain, type-parameter list, parameter
// declarations, optional body, annotations, a flag marking whether
// this function resulted from type-specialisation, and an optional
// record of mangled parameter types (spec §3.3).
type Function struct {
	Name              ident.ID
	ReturnDomain      Domain
	TyParams          []ty.TVar
	Params            []DeclarationID
	Body              ExprID // zero means "no body" (builtin/external)
	Anns              []ExprID
	IsSpecialisation  bool
	MangledParamTypes map[string]ty.Type // optional, nil if not recorded
}

func (f Function) IsPolymorphic() bool { return len(f.TyParams) > 0 }

// SolveKind is the compiler's solve goal (spec §3.3).
type SolveKind int

const (
	Satisfy SolveKind = iota
	Minimize
	Maximize
)

// Solve is `solve satisfy`, `solve minimize d`, or `solve maximize d`.
// A Model has at most one (spec §3.6, "A single solve item per model").
type Solve struct {
	Kind SolveKind
	Decl DeclarationID // used for Minimize/Maximize, zero for Satisfy
}

// Output is an optional section expression (string) and an expression
// to output.
type Output struct {
	Section ExprID // zero means "no section"
	Expr    ExprID
}

// ItemKind tags which arena a TopLevelRef points into.
type ItemKind int

const (
	ItemAnnotation ItemKind = iota
	ItemConstraint
	ItemDeclaration
	ItemEnumeration
	ItemFunction
	ItemOutput
)

// TopLevelRef is one entry of a Model's top_level order (spec §4.2).
type TopLevelRef struct {
	Kind        ItemKind
	Annotation  AnnotationID
	Constraint  ConstraintID
	Declaration DeclarationID
	Enumeration EnumerationID
	Function    FunctionID
	Output      OutputID
}
