package patternframe

// Frame is one pattern frame: a (pf_set, pf_one) pair plus the offset
// at which pf_one was found inside pf_set, when pf_set is a list
// (spec.md §4.4).
type Frame struct {
	Set         *Pattern
	One         *Pattern
	OneOffset   int // -1 if Set has no nested list
	isTemporary bool
}

// Compiled is the pattern-frame compiler's output: the frame array plus
// the three derived flags (spec.md §4.4).
type Compiled struct {
	Frames []*Frame

	// TemporaryFrame is the dedicated frame (pframe_temporary) created
	// lazily the first time sample relocation needs a new home for an
	// atom with no existing pf_one to land in.
	TemporaryFrame *Frame

	WantData   bool
	WantCursor bool
	WantCount  bool
}

// Compile lowers assignments, an optional result pattern, and an
// optional sort pattern into the frame array plus flags described in
// spec.md §4.4. sort never gets a pf_set/pf_one pair of its own — only
// assignments and result do — but every primitive-dependent atom it
// names still needs a home: relocateSortAtoms harvests them into
// whichever frame already serves an equal non-sort use, or into the
// dedicated temporary frame, marked SortOnly. sort also contributes to
// want_cursor/want_count the same way a pf_set does.
func Compile(assignments []*Pattern, result *Pattern, sort *Pattern) (*Compiled, error) {
	c := &Compiled{}
	c.Frames = make([]*Frame, 0, len(assignments)+2)

	for _, a := range assignments {
		c.Frames = append(c.Frames, buildFrame(a))
	}
	if result == nil {
		result = Unspecified()
	}
	c.Frames = append(c.Frames, buildFrame(result))

	// The dedicated temporary frame (pframe_temporary) is allocated as
	// the final slot up front, per spec.md §4.4's "array of size
	// assignment_n + 2," even though its own pf_one list starts empty and
	// is populated lazily during relocation.
	c.TemporaryFrame = &Frame{One: List(), OneOffset: -1, isTemporary: true}
	c.Frames = append(c.Frames, c.TemporaryFrame)

	// sort is harvested first so a field it names alone seeds a
	// sort-only home in the temporary frame; relocateSamples then runs
	// second so that when an assignment/result pf_set names the same
	// field, it finds that home and (being a non-sort use) clears its
	// sort-only flag, per spec.md §4.4: "sort-only atoms that find an
	// existing non-sort home drop the sort-only flag."
	relocateSortAtoms(c, sort)
	relocateSamples(c)
	recomputeSortOnlyFlags(c)
	computeWantFlags(c, sort)

	return c, nil
}

// relocateSortAtoms harvests sort's primitive-dependent atoms the same
// way relocateSamples does for assignment/result frames. sort itself
// owns no frame, so each atom either lands in whatever frame already
// serves an equal, non-sort-only use (leaving that use's classification
// untouched — a sort-only reference never un-classifies an existing
// home), or gets appended to the temporary frame marked SortOnly.
func relocateSortAtoms(c *Compiled, sort *Pattern) {
	if sort == nil {
		return
	}
	sort.walkPrimitiveDependentAtoms(func(atom *Atom) {
		atom.SortOnly = true
		if home, offset, ok := findExistingHome(c, atom); ok {
			atom.Relocated = true
			atom.ResultOffset = home
			atom.ElementOffset = offset
			return
		}
		appendToTemporary(c, atom, -1)
	})
}

// buildFrame converts one pattern tree into its (pf_set, pf_one) pair
// (spec.md §4.4).
func buildFrame(p *Pattern) *Frame {
	f := &Frame{OneOffset: -1}
	if p.Unspecified {
		return f
	}
	f.Set = p
	if one, offset := p.firstNestedList(); one != nil {
		f.One = one
		f.OneOffset = offset
	}
	return f
}

// relocateSamples implements spec.md §4.4's sample relocation: every
// primitive-dependent atom inside a pf_set is harvested into some
// frame's pf_one, reusing an equivalent atom already harvested there if
// one exists, or appending to the temporary frame otherwise.
func relocateSamples(c *Compiled) {
	for i, f := range c.Frames {
		if f.Set == nil || f.isTemporary {
			continue
		}
		frameIndex := i
		f.Set.walkPrimitiveDependentAtoms(func(atom *Atom) {
			if home, offset, ok := findExistingHome(c, atom); ok {
				atom.Relocated = true
				atom.ResultOffset = home
				atom.ElementOffset = offset
				if !atom.SortOnly {
					clearSortOnlyAt(c, home, offset)
				}
				return
			}
			appendToTemporary(c, atom, frameIndex)
		})
	}
}

// findExistingHome scans every frame's pf_one list for an atom equal to
// atom, returning the frame index and element offset of the first
// match.
func findExistingHome(c *Compiled, atom *Atom) (frameIndex, offset int, ok bool) {
	for i, f := range c.Frames {
		if f.One == nil {
			continue
		}
		for j, elem := range f.One.Elems {
			if elem.Leaf != nil && equalAtom(elem.Leaf, atom) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// clearSortOnlyAt drops the sort-only flag on the atom living at
// (frameIndex, offset)'s pf_one list, per spec.md §4.4: "sort-only atoms
// that find an existing non-sort home drop the sort-only flag."
func clearSortOnlyAt(c *Compiled, frameIndex, offset int) {
	f := c.Frames[frameIndex]
	if f.One == nil || offset >= len(f.One.Elems) {
		return
	}
	if leaf := f.One.Elems[offset].Leaf; leaf != nil {
		leaf.SortOnly = false
	}
}

// appendToTemporary appends a new pattern leaf wrapping atom to the
// temporary frame's pf_one list, recording the relocation offsets on
// atom itself.
func appendToTemporary(c *Compiled, atom *Atom, fromFrame int) {
	temp := c.TemporaryFrame
	offset := len(temp.One.Elems)
	temp.One.Elems = append(temp.One.Elems, &Pattern{Leaf: atom})
	atom.Relocated = true
	atom.ResultOffset = len(c.Frames) - 1 // temporary frame's own index
	atom.ElementOffset = offset
	_ = fromFrame
}

// recomputeSortOnlyFlags walks each pf_set with recomputeSortOnly after
// relocation may have cleared individual atoms' SortOnly bits. Lists
// carry no SortOnly field, so the per-list result is not stored.
func recomputeSortOnlyFlags(c *Compiled) {
	for _, f := range c.Frames {
		if f.Set != nil {
			f.Set.recomputeSortOnly()
		}
	}
}

// computeWantFlags derives want_data/want_cursor/want_count across every
// frame plus sort (spec.md §4.4).
func computeWantFlags(c *Compiled, sort *Pattern) {
	for _, f := range c.Frames {
		if f.One != nil && f.Set != nil {
			c.WantData = true
		}
		if f.Set != nil {
			if f.Set.contains(AtomCursor) {
				c.WantCursor = true
			}
			if f.Set.contains(AtomCount) {
				c.WantCount = true
			}
		}
	}
	if sort.contains(AtomCursor) {
		c.WantCursor = true
	}
	if sort.contains(AtomCount) {
		c.WantCount = true
	}
}
