// Package registry bundles the external collaborators spec.md §6 says
// every transform consumes — an identifier registry, a type registry,
// and a source map — into one read-only Context threaded as a
// parameter, never as global state (spec.md §9 "Global mutable
// state"). The teacher has no equivalent boundary of its own (it owns
// its whole pipeline end-to-end); this package exists purely to give
// that external-collaborator contract a concrete Go shape.
package registry

import (
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/source"
	"github.com/shackle-lang/shackle/internal/ty"
)

// Anchors are precomputed ty.Type values for shapes every transform
// constructs repeatedly, avoiding reallocating the same leaf type at
// every call site (spec.md §6, GLOSSARY "Anchor type").
type Anchors struct {
	ParBool, VarBool   ty.Type
	ParInt, VarInt     ty.Type
	ParFloat, VarFloat ty.Type
	ParString          ty.Type
	Ann                ty.Type
	Bottom             ty.Type
	ArrayOfBottom      ty.Type
	SetOfBottom        ty.Type
}

func newAnchors() Anchors {
	return Anchors{
		ParBool:   ty.NewBool(ty.Par, ty.NonOpt),
		VarBool:   ty.NewBool(ty.Var, ty.NonOpt),
		ParInt:    ty.NewInt(ty.Par, ty.NonOpt),
		VarInt:    ty.NewInt(ty.Var, ty.NonOpt),
		ParFloat:  ty.NewFloat(ty.Par, ty.NonOpt),
		VarFloat:  ty.NewFloat(ty.Var, ty.NonOpt),
		ParString: ty.NewString(ty.NonOpt),
		Ann:       ty.NewAnn(),
		Bottom:    ty.NewBottom(),
		ArrayOfBottom: ty.NewArray(
			ty.NewInt(ty.Par, ty.NonOpt), ty.NewBottom()),
		SetOfBottom: ty.NewSet(ty.NewBottom(), ty.Par, ty.NonOpt),
	}
}

// Context is the read-only bundle of external collaborators a
// transform receives: the identifier registry (and its well-known name
// handles), a set of precomputed anchor types, and the source map
// nodes carry their origin tokens into.
type Context struct {
	Idents    *ident.Registry
	WellKnown ident.WellKnown
	Anchors   Anchors
	SourceMap *source.Map
}

// NewContext creates a Context around an already-populated identifier
// registry and source map, e.g. ones built by an upstream lowering
// pass this module does not implement (spec.md §1 Non-goals).
func NewContext(idents *ident.Registry, sourceMap *source.Map) *Context {
	return &Context{
		Idents:    idents,
		WellKnown: ident.NewWellKnown(idents),
		Anchors:   newAnchors(),
		SourceMap: sourceMap,
	}
}

// NewDefaultContext creates a Context with a fresh identifier registry
// (pre-interning the well-known names) and an empty source map, for
// callers that build a Model programmatically rather than from parsed
// source (e.g. cmd/shackle's demo pipeline).
func NewDefaultContext() *Context {
	idents := ident.NewRegistry()
	return NewContext(idents, source.NewMap())
}
