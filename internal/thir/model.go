package thir

import (
	"github.com/shackle-lang/shackle/internal/arena"
	"github.com/shackle-lang/shackle/internal/ident"
)

// Model is a product of arenas for each item kind, an ordered
// top_level list fixing printout order, and an optional solve slot
// (spec §4.2). No item is ever deleted; transforms build a new Model
// rather than mutate one in place (spec §4.1, §5).
type Model struct {
	Annotations  *arena.Arena[Annotation]
	Constraints  *arena.Arena[Constraint]
	Declarations *arena.Arena[Declaration]
	Enumerations *arena.Arena[Enumeration]
	Functions    *arena.Arena[Function]
	Outputs      *arena.Arena[Output]
	Exprs        *arena.Arena[Expr]

	TopLevel []TopLevelRef
	Solve    *Solve
}

// New creates an empty Model.
func New() *Model {
	return &Model{
		Annotations:  arena.New[Annotation](),
		Constraints:  arena.New[Constraint](),
		Declarations: arena.New[Declaration](),
		Enumerations: arena.New[Enumeration](),
		Functions:    arena.New[Function](),
		Outputs:      arena.New[Output](),
		Exprs:        arena.New[Expr](),
	}
}

func (m *Model) InsertAnnotation(a Annotation) AnnotationID { return m.Annotations.Insert(a) }
func (m *Model) InsertConstraint(c Constraint) ConstraintID { return m.Constraints.Insert(c) }
func (m *Model) InsertDeclaration(d Declaration) DeclarationID {
	return m.Declarations.Insert(d)
}
func (m *Model) InsertEnumeration(e Enumeration) EnumerationID { return m.Enumerations.Insert(e) }
func (m *Model) InsertFunction(f Function) FunctionID          { return m.Functions.Insert(f) }
func (m *Model) InsertOutput(o Output) OutputID                { return m.Outputs.Insert(o) }
func (m *Model) InsertExpr(e Expr) ExprID                      { return m.Exprs.Insert(e) }

// AddTopLevel appends ref to the top_level order, fixing printout
// order (spec §3.3, §5 ordering guarantees).
func (m *Model) AddTopLevel(ref TopLevelRef) {
	m.TopLevel = append(m.TopLevel, ref)
}

// AddAnnotation inserts a and appends it to top_level, for the common
// case of a top-level annotation declaration.
func (m *Model) AddAnnotation(a Annotation) AnnotationID {
	id := m.InsertAnnotation(a)
	m.AddTopLevel(TopLevelRef{Kind: ItemAnnotation, Annotation: id})
	return id
}

func (m *Model) AddConstraint(c Constraint) ConstraintID {
	id := m.InsertConstraint(c)
	m.AddTopLevel(TopLevelRef{Kind: ItemConstraint, Constraint: id})
	return id
}

func (m *Model) AddDeclaration(d Declaration) DeclarationID {
	id := m.InsertDeclaration(d)
	m.AddTopLevel(TopLevelRef{Kind: ItemDeclaration, Declaration: id})
	return id
}

func (m *Model) AddEnumeration(e Enumeration) EnumerationID {
	id := m.InsertEnumeration(e)
	m.AddTopLevel(TopLevelRef{Kind: ItemEnumeration, Enumeration: id})
	return id
}

func (m *Model) AddFunction(f Function) FunctionID {
	id := m.InsertFunction(f)
	m.AddTopLevel(TopLevelRef{Kind: ItemFunction, Function: id})
	return id
}

func (m *Model) AddOutput(o Output) OutputID {
	id := m.InsertOutput(o)
	m.AddTopLevel(TopLevelRef{Kind: ItemOutput, Output: id})
	return id
}

// LookupFunctions finds top-level functions by identifier (spec §4.2);
// declarations are found with LookupDeclaration. It returns every
// function sharing that name, since
// overload sets may have more than one member; callers needing a
// single winner go through internal/overload instead.
func (m *Model) LookupFunctions(name ident.ID) []FunctionID {
	var out []FunctionID
	for _, ref := range m.TopLevel {
		if ref.Kind == ItemFunction {
			if f := m.Functions.Get(ref.Function); f.Name == name {
				out = append(out, ref.Function)
			}
		}
	}
	return out
}

// LookupDeclaration finds a top-level declaration by identifier.
func (m *Model) LookupDeclaration(name ident.ID) (DeclarationID, bool) {
	for _, ref := range m.TopLevel {
		if ref.Kind == ItemDeclaration {
			d := m.Declarations.Get(ref.Declaration)
			if d.HasName && d.Name == name {
				return ref.Declaration, true
			}
		}
	}
	return 0, false
}

// OverloadMap is a hash multimap from function name to every function
// id sharing that name (spec §4.2, §3.6 "Overload sets on a name are
// closed").
type OverloadMap map[ident.ID][]FunctionID

// BuildOverloadMap walks every top-level function and indexes it by
// name.
func (m *Model) BuildOverloadMap() OverloadMap {
	om := make(OverloadMap)
	for _, ref := range m.TopLevel {
		if ref.Kind != ItemFunction {
			continue
		}
		f := m.Functions.Get(ref.Function)
		om[f.Name] = append(om[f.Name], ref.Function)
	}
	return om
}

// AllFunctions iterates every top-level function in top_level order.
// Nested lambdas are expression nodes rather than named top-level
// functions; a pass that also needs to visit them does so via a
// fold.Visitor walking function bodies (internal/fold), since lambdas
// carry no overload-set name to iterate by.
func (m *Model) AllFunctions(visit func(FunctionID, Function)) {
	for _, ref := range m.TopLevel {
		if ref.Kind == ItemFunction {
			visit(ref.Function, m.Functions.Get(ref.Function))
		}
	}
}
