package thir

import "github.com/shackle-lang/shackle/internal/ty"

// PatternKind tags which case-pattern shape a Pattern carries (spec
// §3.5). Patterns never bind variables at this IR level - binding was
// already rewritten to explicit declarations during HIR→THIR lowering
// - so there is no "variable" pattern kind here.
type PatternKind int

const (
	PatternEnumCtor PatternKind = iota
	PatternAnnotationCtor
	PatternTuple
	PatternRecord
	PatternLiteral
	PatternWildcard
)

// PatternField is one named sub-pattern of a record pattern, kept
// sorted by Name (spec §3.6).
type PatternField struct {
	Name    string
	Pattern Pattern
}

// Pattern is a case-expression pattern (spec §3.5).
type Pattern struct {
	Kind PatternKind
	Ty   ty.Type

	// PatternEnumCtor
	Enum             EnumerationID
	ConstructorIndex int
	EnumKind         EnumCallKind
	SubPatterns      []Pattern

	// PatternAnnotationCtor
	Annotation AnnotationID

	// PatternTuple
	TupleElems []Pattern

	// PatternRecord
	Fields []PatternField // sorted by Name

	// PatternLiteral
	Literal ExprID
}

// NewWildcardPattern carries only its type, per spec §3.5.
func NewWildcardPattern(t ty.Type) Pattern {
	return Pattern{Kind: PatternWildcard, Ty: t}
}

// NewLiteralPattern wraps a literal expression.
func NewLiteralPattern(lit ExprID, t ty.Type) Pattern {
	return Pattern{Kind: PatternLiteral, Ty: t, Literal: lit}
}

// NewTuplePattern builds a positional tuple pattern.
func NewTuplePattern(elems ...Pattern) Pattern {
	types := make([]ty.Type, len(elems))
	for i, e := range elems {
		types[i] = e.Ty
	}
	cp := make([]Pattern, len(elems))
	copy(cp, elems)
	return Pattern{Kind: PatternTuple, Ty: ty.NewTuple(types...), TupleElems: cp}
}

// NewRecordPattern sorts fields by name, matching the record-sorting
// invariant at the pattern level too (spec §3.6).
func NewRecordPattern(fields ...PatternField) Pattern {
	cp := make([]PatternField, len(fields))
	copy(cp, fields)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j].Name < cp[j-1].Name; j-- {
			cp[j], cp[j-1] = cp[j-1], cp[j]
		}
	}
	tfields := make([]ty.Field, len(cp))
	for i, f := range cp {
		tfields[i] = ty.Field{Name: f.Name, Type: f.Pattern.Ty}
	}
	return Pattern{Kind: PatternRecord, Ty: ty.NewRecord(tfields...), Fields: cp}
}

// NewEnumCtorPattern builds a pattern matching one constructor of an
// enumeration, with sub-patterns for its arguments (empty for an
// atomic constructor).
func NewEnumCtorPattern(t ty.Type, enum EnumerationID, ctorIdx int, kind EnumCallKind, sub ...Pattern) Pattern {
	cp := make([]Pattern, len(sub))
	copy(cp, sub)
	return Pattern{
		Kind:             PatternEnumCtor,
		Ty:               t,
		Enum:             enum,
		ConstructorIndex: ctorIdx,
		EnumKind:         kind,
		SubPatterns:      cp,
	}
}

// NewAnnotationCtorPattern builds a pattern matching an annotation
// constructor, with sub-patterns for its parameters.
func NewAnnotationCtorPattern(t ty.Type, ann AnnotationID, sub ...Pattern) Pattern {
	cp := make([]Pattern, len(sub))
	copy(cp, sub)
	return Pattern{Kind: PatternAnnotationCtor, Ty: t, Annotation: ann, SubPatterns: cp}
}
