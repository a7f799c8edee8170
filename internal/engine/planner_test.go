package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/constraint"
	"graphd/internal/patternframe"
	"graphd/internal/sortcompiler"
	"graphd/internal/storable"
)

func TestCompilePlanNormalizesSortAndRelocatesIntoFrames(t *testing.T) {
	con := &constraint.Node{HasSort: true}
	result := patternframe.List(patternframe.Field("name"))

	plan, err := CompilePlan(con, nil, result, []sortcompiler.Criterion{{Field: "name"}}, nil)
	require.NoError(t, err)

	require.Len(t, plan.Sort, 2, "sort gains a trailing GUID criterion")
	assert.Equal(t, sortcompiler.GUIDField, plan.Sort[1].Field)

	resultAtom := result.Elems[0].Leaf
	assert.True(t, resultAtom.Relocated)
	assert.False(t, resultAtom.SortOnly, "result's own use of name is non-sort and clears any sort-only seed")
	assert.NotZero(t, plan.Signature)
}

func TestCompilePlanSortOnlyFieldStaysSortOnly(t *testing.T) {
	con := &constraint.Node{HasSort: true}

	plan, err := CompilePlan(con, nil, patternframe.Literal("result"), []sortcompiler.Criterion{{Field: "timestamp", Descending: true}}, nil)
	require.NoError(t, err)

	require.Len(t, plan.Sort, 2)
	assert.Equal(t, "timestamp", plan.Sort[0].Field)
	assert.True(t, plan.Sort[0].Descending)
	assert.True(t, plan.Frames.WantData == false, "a bare literal result has no pf_one of its own")
}

func TestCompilePlanEmptySortStillGetsGUIDTerminator(t *testing.T) {
	con := &constraint.Node{}
	plan, err := CompilePlan(con, nil, patternframe.Literal("result"), nil, nil)
	require.NoError(t, err)
	require.Len(t, plan.Sort, 1)
	assert.Equal(t, sortcompiler.GUIDField, plan.Sort[0].Field)
}

func TestPlanCacheKeySatisfiesStorable(t *testing.T) {
	con := &constraint.Node{}
	plan, err := CompilePlan(con, nil, patternframe.Literal("result"), nil, nil)
	require.NoError(t, err)

	var s storable.Storable = PlanCacheKey{Plan: plan}
	assert.Equal(t, "plan", s.Type())
	assert.Equal(t, plan.Signature, s.Hash())
	assert.True(t, s.Equal(PlanCacheKey{Plan: plan}))
	assert.Greater(t, s.Size(), int64(0))

	otherCon := &constraint.Node{HasSort: true}
	otherPlan, err := CompilePlan(otherCon, nil, patternframe.Literal("result"), nil, nil)
	require.NoError(t, err)
	assert.False(t, s.Equal(PlanCacheKey{Plan: otherPlan}), "differing signatures must not compare equal")
}
