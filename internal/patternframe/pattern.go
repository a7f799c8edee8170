// Package patternframe implements C4, the pattern-frame compiler: it
// lowers user-visible result/sort/assignment patterns into per-primitive
// ("pf_one") and per-set ("pf_set") tuples, and plans which atoms need
// re-harvesting per matched primitive (spec.md §4.4).
//
// Grounded on application/queries/get_graph_data.go's handler, which
// walks a requested-shape tree and buckets fields into "needs one more
// DB round-trip per node" vs "already available from the set query"
// (teacher repo 2lar-b2/backend2) — generalized from that query's fixed
// two-bucket shape into the spec's general pf_set/pf_one/temporary-frame
// relocation scheme (DESIGN.md).
package patternframe

// AtomKind tags what one leaf of a result/sort/assignment pattern names.
type AtomKind int

const (
	// AtomLiteral is a constant value, never primitive-dependent.
	AtomLiteral AtomKind = iota
	// AtomField names a field of the matched primitive (name, value,
	// guid, timestamp, ...): primitive-dependent.
	AtomField
	// AtomCursor is the CURSOR pattern.
	AtomCursor
	// AtomCount is the COUNT pattern.
	AtomCount
)

// Atom is one leaf of a pattern tree.
type Atom struct {
	Kind AtomKind
	Name string // field name, for AtomField; otherwise unused

	// PrimitiveDependent atoms must be harvested per matched primitive
	// (spec.md §4.4's "sample relocation"). Field references are
	// primitive-dependent; literals, CURSOR, and COUNT are not.
	PrimitiveDependent bool

	// SortOnly is true while this atom is believed to be referenced only
	// by the sort pattern, not by any result/assignment pf_set.
	SortOnly bool

	// Relocated records where this atom landed after sample relocation:
	// the frame it was harvested into and its element offset within that
	// frame's pf_one list. Relocated is false until the compiler assigns
	// a home.
	Relocated     bool
	ResultOffset  int // frame index (into Compiled.Frames)
	ElementOffset int // element index within that frame's pf_one list
}

func newFieldAtom(name string) *Atom {
	return &Atom{Kind: AtomField, Name: name, PrimitiveDependent: true}
}

// equalAtom reports whether two atoms name the same harvested value,
// for sample-relocation dedup (spec.md §4.4: "finds an equivalent atom
// already in some existing pf_one").
func equalAtom(a, b *Atom) bool {
	return a.Kind == b.Kind && a.Name == b.Name
}

// Pattern is one node of a result/sort/assignment pattern tree: either a
// list of sub-patterns, or a single leaf Atom. Unspecified marks the
// UNSPECIFIED sentinel pattern.
type Pattern struct {
	IsList      bool
	Elems       []*Pattern
	Leaf        *Atom
	Unspecified bool
}

// Literal builds a non-primitive-dependent leaf pattern.
func Literal(value string) *Pattern {
	return &Pattern{Leaf: &Atom{Kind: AtomLiteral, Name: value}}
}

// Field builds a primitive-dependent field-reference leaf pattern.
func Field(name string) *Pattern {
	return &Pattern{Leaf: newFieldAtom(name)}
}

// Cursor builds the CURSOR leaf pattern.
func Cursor() *Pattern { return &Pattern{Leaf: &Atom{Kind: AtomCursor}} }

// Count builds the COUNT leaf pattern.
func Count() *Pattern { return &Pattern{Leaf: &Atom{Kind: AtomCount}} }

// List builds a list pattern from elems.
func List(elems ...*Pattern) *Pattern {
	return &Pattern{IsList: true, Elems: elems}
}

// Unspecified is the UNSPECIFIED sentinel pattern.
func Unspecified() *Pattern { return &Pattern{Unspecified: true} }

// firstNestedList returns the first element of p that is itself a list,
// and its index, or (nil, -1) if none.
func (p *Pattern) firstNestedList() (*Pattern, int) {
	if !p.IsList {
		return nil, -1
	}
	for i, e := range p.Elems {
		if e.IsList {
			return e, i
		}
	}
	return nil, -1
}

// contains reports whether p's tree includes a leaf of the given kind,
// used for the want_cursor/want_count flags (spec.md §4.4).
func (p *Pattern) contains(kind AtomKind) bool {
	if p == nil {
		return false
	}
	if p.Leaf != nil {
		return p.Leaf.Kind == kind
	}
	for _, e := range p.Elems {
		if e.contains(kind) {
			return true
		}
	}
	return false
}

// walkPrimitiveDependentAtoms calls fn for every primitive-dependent
// atom reachable from p, depth-first.
func (p *Pattern) walkPrimitiveDependentAtoms(fn func(*Atom)) {
	if p == nil {
		return
	}
	if p.Leaf != nil {
		if p.Leaf.PrimitiveDependent {
			fn(p.Leaf)
		}
		return
	}
	for _, e := range p.Elems {
		e.walkPrimitiveDependentAtoms(fn)
	}
}

// recomputeSortOnly reports, bottom-up, whether every atom under p is
// sort-only (a nil or empty list counts as sort-only). It only reports
// the result; no flag is set on the list itself.
func (p *Pattern) recomputeSortOnly() bool {
	if p == nil {
		return true
	}
	if p.Leaf != nil {
		return p.Leaf.SortOnly
	}
	if len(p.Elems) == 0 {
		return true
	}
	all := true
	for _, e := range p.Elems {
		if !e.recomputeSortOnly() {
			all = false
		}
	}
	return all
}
