// Package source provides the origin-tracking types threaded through
// every THIR node for diagnostics. Shackle never parses or opens files
// itself; positions arrive already computed from the (external)
// tree-sitter front end and are carried along for error rendering only.
package source

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open range between two positions in the same file.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}

// Token is an opaque handle an upstream component (HIR lowering)
// attaches to an expression. The core never interprets it beyond
// carrying it forward and handing it to a Map for diagnostic lookup.
type Token uint64

// NoToken is the zero value, meaning "no known origin" (e.g. a node
// synthesised by a transform with no single surface counterpart).
const NoToken Token = 0

// Map resolves a Token to its file/span, standing in for the external
// "source map" collaborator described in spec §6. The core only ever
// writes to it when minting tokens for synthesised nodes; it never
// reads spans back out except for diagnostics.
type Map struct {
	spans map[Token]Span
	next  Token
}

// NewMap creates an empty source map.
func NewMap() *Map {
	return &Map{spans: make(map[Token]Span)}
}

// Record associates a token with its span. Upstream lowering calls this
// once per surface node; transforms call it again for synthesised
// nodes that should still point somewhere sensible (usually the span
// of the node they were derived from).
func (m *Map) Record(span Span) Token {
	m.next++
	m.spans[m.next] = span
	return m.next
}

// Lookup returns the span for a token, if any.
func (m *Map) Lookup(tok Token) (Span, bool) {
	s, ok := m.spans[tok]
	return s, ok
}
