package patternframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFrameCount(t *testing.T) {
	assignments := []*Pattern{Literal("a"), Literal("b")}
	c, err := Compile(assignments, Literal("result"), nil)
	require.NoError(t, err)
	// assignment_n (2) + result (1) + temporary (1) = assignment_n + 2.
	assert.Len(t, c.Frames, 4)
}

func TestBuildFramePfOneFromNestedList(t *testing.T) {
	// A list whose second element is itself a list: pf_one is that
	// nested list, at offset 1.
	nested := List(Field("name"))
	top := List(Literal("prefix"), nested)

	f := buildFrame(top)
	assert.Same(t, top, f.Set)
	assert.Same(t, nested, f.One)
	assert.Equal(t, 1, f.OneOffset)
}

func TestBuildFrameUnspecifiedHasNilSet(t *testing.T) {
	f := buildFrame(Unspecified())
	assert.Nil(t, f.Set)
	assert.Nil(t, f.One)
}

func TestSampleRelocationReusesExistingHome(t *testing.T) {
	// Assignment 0 has its own pf_one already containing a "name" field.
	oneA := List(Field("name"))
	assignA := List(Literal("x"), oneA)

	// The result references "name" too: relocation should find the
	// existing atom in assignment 0's pf_one rather than appending a new
	// one to the temporary frame.
	result := List(Field("name"))

	c, err := Compile([]*Pattern{assignA}, result, nil)
	require.NoError(t, err)

	resultAtom := result.Elems[0].Leaf
	assert.True(t, resultAtom.Relocated)
	assert.Equal(t, 0, resultAtom.ResultOffset, "should relocate into assignment 0's frame")
	assert.Empty(t, c.TemporaryFrame.One.Elems, "temporary frame should stay empty when an existing home is found")
}

func TestSampleRelocationAppendsToTemporary(t *testing.T) {
	result := List(Field("value"))
	c, err := Compile(nil, result, nil)
	require.NoError(t, err)

	atom := result.Elems[0].Leaf
	assert.True(t, atom.Relocated)
	assert.Equal(t, len(c.Frames)-1, atom.ResultOffset, "should relocate into the temporary frame")
	assert.Len(t, c.TemporaryFrame.One.Elems, 1)
}

func TestSortOnlyAtomDropsFlagOnNonSortHome(t *testing.T) {
	// sort references "name" and nothing else yet knows about it, so it
	// seeds a sort-only home in the temporary frame. The result pattern
	// then references "name" too (a non-sort use): it finds that same
	// home and, being non-sort, clears its sort-only flag (spec.md §4.4).
	sortPattern := List(Field("name"))
	result := List(Field("name"))

	c, err := Compile(nil, result, sortPattern)
	require.NoError(t, err)

	sortAtom := sortPattern.Elems[0].Leaf
	assert.True(t, sortAtom.Relocated)
	assert.False(t, sortAtom.SortOnly, "the sort-seeded home must drop sort-only once a non-sort use shares it")

	resultAtom := result.Elems[0].Leaf
	assert.True(t, resultAtom.Relocated)
	assert.Equal(t, sortAtom.ResultOffset, resultAtom.ResultOffset, "result's non-sort use shares the sort atom's home")
}

func TestSortAtomWithNoExistingHomeLandsInTemporary(t *testing.T) {
	sortPattern := List(Field("timestamp"))
	c, err := Compile(nil, Literal("result"), sortPattern)
	require.NoError(t, err)

	atom := sortPattern.Elems[0].Leaf
	assert.True(t, atom.SortOnly, "an atom sort names exclusively stays sort-only")
	assert.Equal(t, len(c.Frames)-1, atom.ResultOffset, "relocates into the temporary frame")
	assert.Len(t, c.TemporaryFrame.One.Elems, 1)
}

func TestWantCursorAndWantCount(t *testing.T) {
	result := List(Cursor(), Count())
	c, err := Compile(nil, result, nil)
	require.NoError(t, err)
	assert.True(t, c.WantCursor)
	assert.True(t, c.WantCount)
}

func TestWantCursorFromSortAlone(t *testing.T) {
	c, err := Compile(nil, Literal("result"), Cursor())
	require.NoError(t, err)
	assert.True(t, c.WantCursor, "sort containing CURSOR sets want_cursor even though sort has no pf_set of its own")
}

func TestWantDataRequiresBothSetAndOne(t *testing.T) {
	// A flat (no nested list) pattern has pf_set but no pf_one.
	c, err := Compile(nil, List(Literal("a"), Literal("b")), nil)
	require.NoError(t, err)
	assert.False(t, c.WantData)

	c2, err := Compile(nil, List(Literal("a"), List(Field("name"))), nil)
	require.NoError(t, err)
	assert.True(t, c2.WantData)
}
