package thir

import (
	"github.com/shackle-lang/shackle/internal/arena"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/source"
	"github.com/shackle-lang/shackle/internal/ty"
)

// ExprID addresses one node in a Model's single expression arena.
// Every expression shape in spec §3.4 - literal, identifier, call,
// comprehension, and so on - lives in the same arena, the way the
// teacher's core.CoreExpr is one sum type over one implicit store
// (internal/core/core.go); Shackle makes that store explicit via
// arena.Arena[Expr].
type ExprID arena.Index[Expr]

// Valid reports whether i could have been produced by inserting into
// an Expr arena (see arena.Index.Valid).
func (i ExprID) Valid() bool { return i > 0 }

// ExprArena is arena.Arena[Expr] addressed by ExprID. It exists
// because ExprID cannot itself be `= arena.Index[Expr]`: Expr embeds
// ExprID in its own method signatures, and a type alias to a
// recursively-referenced generic instantiation is rejected by the
// compiler (go.dev/issue/50729). This wrapper keeps every other
// package's call sites (Get/Set/Insert/All) exactly as they were
// under the old alias.
type ExprArena struct {
	a *arena.Arena[Expr]
}

func newExprArena() *ExprArena { return &ExprArena{a: arena.New[Expr]()} }

func (e *ExprArena) Insert(v Expr) ExprID { return ExprID(e.a.Insert(v)) }
func (e *ExprArena) Get(id ExprID) Expr   { return e.a.Get(arena.Index[Expr](id)) }
func (e *ExprArena) Set(id ExprID, v Expr) {
	e.a.Set(arena.Index[Expr](id), v)
}
func (e *ExprArena) Len() int { return e.a.Len() }
func (e *ExprArena) All(fn func(ExprID, Expr)) {
	e.a.All(func(i arena.Index[Expr], v Expr) { fn(ExprID(i), v) })
}

// Expr is the common interface every expression shape implements.
// Base carries exactly the three things spec §3.4 says every
// expression node has: "their computed type ty, their origin ..., and
// a (possibly empty) annotation list."
type Expr interface {
	Type() ty.Type
	Origin() source.Token
	Annotations() []ExprID
	exprNode()
}

// Base is embedded by every concrete expression shape.
type Base struct {
	Ty   ty.Type
	Org  source.Token
	Anns []ExprID
}

func (b Base) Type() ty.Type         { return b.Ty }
func (b Base) Origin() source.Token  { return b.Org }
func (b Base) Annotations() []ExprID { return b.Anns }

// --- literals ---

type LitKind int

const (
	LitAbsent LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
	LitInfinity
	LitBottom
)

type Lit struct {
	Base
	Kind  LitKind
	Value any
}

func (*Lit) exprNode() {}

// --- identifier ---

// IdentKind tags what an Identifier expression resolves to (spec §3.4).
type IdentKind int

const (
	IdentAnnotation IdentKind = iota
	IdentAnnotationDestructor
	IdentDeclaration
	IdentEnumeration
	IdentEnumMember
	IdentEnumDestructor
	IdentFunction
	IdentTyVar
)

type Identifier struct {
	Base
	Kind            IdentKind
	Name            ident.ID
	Annotation      AnnotationID
	Declaration     DeclarationID
	Enumeration     EnumerationID
	EnumMemberIndex int
	Function        FunctionID
}

func (*Identifier) exprNode() {}

// --- structural literals ---

type ArrayLit struct {
	Base
	Elements []ExprID
}

func (*ArrayLit) exprNode() {}

type SetLit struct {
	Base
	Elements []ExprID
}

func (*SetLit) exprNode() {}

type TupleLit struct {
	Base
	Elements []ExprID
}

func (*TupleLit) exprNode() {}

// RecordField is one name/value pair of a RecordLit, kept sorted by
// Name (spec §3.6).
type RecordField struct {
	Name  string
	Value ExprID
}

type RecordLit struct {
	Base
	Fields []RecordField // sorted by Name
}

func (*RecordLit) exprNode() {}

// NewRecordLit sorts fields by name before construction, mirroring
// ty.NewRecord and thir.NewRecordDomain so the "sorted canonically"
// invariant holds for literals too (spec §3.6).
func NewRecordLit(base Base, fields ...RecordField) *RecordLit {
	cp := make([]RecordField, len(fields))
	copy(cp, fields)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j].Name < cp[j-1].Name; j-- {
			cp[j], cp[j-1] = cp[j-1], cp[j]
		}
	}
	return &RecordLit{Base: base, Fields: cp}
}

// --- comprehensions ---

// GeneratorKind distinguishes the two generator shapes of spec §3.4.
type GeneratorKind int

const (
	GenIterator GeneratorKind = iota
	GenAssignment
)

// Generator is `iterator { decls, collection, where }` or
// `assignment { decl, where }`. Where is the zero ExprID when absent.
type Generator struct {
	Kind       GeneratorKind
	Decls      []DeclarationID // GenIterator
	Collection ExprID          // GenIterator
	Decl       DeclarationID   // GenAssignment
	Where      ExprID          // optional, zero means none
}

type ArrayComp struct {
	Base
	IndicesTemplate ExprID // optional, zero means none
	Generators      []Generator
	Template        ExprID
}

func (*ArrayComp) exprNode() {}

type SetComp struct {
	Base
	Generators []Generator
	Template   ExprID
}

func (*SetComp) exprNode() {}

// --- access ---

type ArrayAccess struct {
	Base
	Collection ExprID
	Index      ExprID // scalar, or a TupleLit for multi-dim access
}

func (*ArrayAccess) exprNode() {}

type TupleAccess struct {
	Base
	Tuple ExprID
	Index int // 1-based
}

func (*TupleAccess) exprNode() {}

type RecordAccess struct {
	Base
	Record ExprID
	Field  string
}

func (*RecordAccess) exprNode() {}

// --- branching ---

type CondThen struct {
	Cond   ExprID
	Result ExprID
}

type IfThenElse struct {
	Base
	Branches []CondThen
	Else     ExprID
}

func (*IfThenElse) exprNode() {}

type CaseArm struct {
	Pattern Pattern
	Result  ExprID
}

type Case struct {
	Base
	Scrutinee ExprID
	Arms      []CaseArm
}

func (*Case) exprNode() {}

// --- call ---

// CallableKind tags what is being called (spec §3.4).
type CallableKind int

const (
	CallableAnnotationCtor CallableKind = iota
	CallableAnnotationDtor
	CallableEnumCtor
	CallableEnumDtor
	CallableFunction
	CallableExpr
)

// EnumCallKind distinguishes the six par/var x non-opt/opt x scalar/set
// variants an erased enum constructor or destructor may target (spec
// §4.7).
type EnumCallKind int

const (
	EnumCallPar EnumCallKind = iota
	EnumCallParOpt
	EnumCallVar
	EnumCallVarOpt
	EnumCallSet
	EnumCallVarSet
)

type Callable struct {
	Kind CallableKind

	Annotation AnnotationID // CallableAnnotationCtor / Dtor

	Enum             EnumerationID // CallableEnumCtor / Dtor
	ConstructorIndex int
	EnumKind         EnumCallKind

	Function FunctionID // CallableFunction

	Expr ExprID // CallableExpr (first-class function value)
}

type Call struct {
	Base
	Callable Callable
	Args     []ExprID
}

func (*Call) exprNode() {}

// --- let ---

type LetItemKind int

const (
	LetConstraint LetItemKind = iota
	LetDeclaration
)

type LetItem struct {
	Kind        LetItemKind
	Constraint  ConstraintID
	Declaration DeclarationID
}

type Let struct {
	Base
	Items []LetItem
	In    ExprID
}

func (*Let) exprNode() {}

// --- lambda ---

type Lambda struct {
	Base
	ReturnDomain Domain
	Params       []DeclarationID
	Body         ExprID
}

func (*Lambda) exprNode() {}
