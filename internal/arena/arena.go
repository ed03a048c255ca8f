// Package arena implements the dense, append-only, index-addressed
// storage described in spec §4.1. No item is ever deleted; transforms
// build a new destination Arena rather than mutate a source one in
// place, so a Model (internal/thir) stays trivially clonable.
//
// The teacher has no equivalent generic container - internal/core's
// CoreNode carries a flat, process-wide uint64 NodeID instead
// (internal/core/core.go). Shackle needs arenas that are independently
// clonable per item kind and whose indices are stable across an
// insert, which a single global counter cannot give; this package is
// the generics-native rendering of that same "stable, cheap, never
// reused identity" idea.
package arena

// Index is a phantom-typed, dense index into an Arena[T]. The zero
// value is never produced by Insert, so a zero Index reliably means
// "no reference" when used as a map/struct default.
type Index[T any] int

// Valid reports whether i could have been produced by Insert (it does
// not check whether the referenced arena still has that many items).
func (i Index[T]) Valid() bool { return i > 0 }

// Arena is a dense, insertion-ordered store of T, addressed by Index[T].
type Arena[T any] struct {
	items []T
}

// New creates an empty arena.
func New[T any]() *Arena[T] { return &Arena[T]{} }

// Insert appends value and returns its stable index.
func (a *Arena[T]) Insert(value T) Index[T] {
	a.items = append(a.items, value)
	return Index[T](len(a.items))
}

// Get returns the value at idx. It panics on an out-of-range index,
// which spec §7 classifies as an invariant violation ("dangling arena
// index") rather than a user-facing error - there is no recovery.
func (a *Arena[T]) Get(idx Index[T]) T {
	if !idx.Valid() || int(idx) > len(a.items) {
		panic("arena: dangling index")
	}
	return a.items[idx-1]
}

// Set overwrites the value at idx in place. Used only by a Folder
// building its destination model in two phases (spec §4.3): phase one
// inserts placeholders to fix indices, phase two overwrites them once
// bodies are folded.
func (a *Arena[T]) Set(idx Index[T], value T) {
	if !idx.Valid() || int(idx) > len(a.items) {
		panic("arena: dangling index")
	}
	a.items[idx-1] = value
}

// Len returns the number of items.
func (a *Arena[T]) Len() int { return len(a.items) }

// All iterates every item in insertion order.
func (a *Arena[T]) All(fn func(Index[T], T)) {
	for i, v := range a.items {
		fn(Index[T](i+1), v)
	}
}

// Clone returns a capacity-preserving copy; subsequent inserts into
// either arena never affect the other.
func (a *Arena[T]) Clone() *Arena[T] {
	cp := make([]T, len(a.items), cap(a.items))
	copy(cp, a.items)
	return &Arena[T]{items: cp}
}

// Map is an index-keyed lookup table, used for the ReplacementMap
// (spec §4.3) and similar per-kind caches.
type Map[T any, V any] struct {
	m map[Index[T]]V
}

// NewMap creates an empty index-keyed map.
func NewMap[T any, V any]() *Map[T, V] {
	return &Map[T, V]{m: make(map[Index[T]]V)}
}

func (m *Map[T, V]) Get(idx Index[T]) (V, bool) {
	v, ok := m.m[idx]
	return v, ok
}

func (m *Map[T, V]) Set(idx Index[T], v V) {
	m.m[idx] = v
}

func (m *Map[T, V]) Len() int { return len(m.m) }

// Set is an index-keyed set, used e.g. to track "already visited"
// source indices during a fold.
type Set[T any] struct {
	m map[Index[T]]struct{}
}

func NewSet[T any]() *Set[T] {
	return &Set[T]{m: make(map[Index[T]]struct{})}
}

func (s *Set[T]) Add(idx Index[T])      { s.m[idx] = struct{}{} }
func (s *Set[T]) Has(idx Index[T]) bool { _, ok := s.m[idx]; return ok }
func (s *Set[T]) Len() int              { return len(s.m) }
