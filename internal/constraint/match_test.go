package constraint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/pid"
	"graphd/internal/primitive"
)

func mkPrimitive(guid pid.GUID) *primitive.Primitive {
	return &primitive.Primitive{
		GUID:      guid,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValueType: primitive.ValueTypeString,
		Name:      []byte("widget"),
		Value:     []byte("red widget"),
		Live:      true,
	}
}

func TestMatchIntrinsicsFalseShortCircuits(t *testing.T) {
	con := &Node{}
	con.MarkFalse()
	r, err := MatchIntrinsics(con, mkPrimitive(pid.GUID{Serial: 1}), DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, NO, r)
}

func TestMatchIntrinsicsMemoizesSingleIncludeGUID(t *testing.T) {
	target := pid.GUID{DatabaseID: 1, Serial: 42}
	con := &Node{GUIDInclude: []pid.GUID{target}}

	r, err := MatchIntrinsics(con, mkPrimitive(target), DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, OK, r)
	assert.True(t, con.isTrue, "single include GUID should memoize con.true")

	// Once memoized, a different GUID must short-circuit to NO via the
	// con.true cached path (step 2), not re-evaluate the include set.
	r, err = MatchIntrinsics(con, mkPrimitive(pid.GUID{DatabaseID: 1, Serial: 99}), DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, NO, r)
}

func TestMatchIntrinsicsStringConstraint(t *testing.T) {
	con := &Node{Name: &StringConstraint{Pattern: "widget"}}
	ok, err := MatchIntrinsics(con, mkPrimitive(pid.GUID{Serial: 1}), DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, OK, ok)

	con2 := &Node{Name: &StringConstraint{Pattern: "gadget"}}
	no, err := MatchIntrinsics(con2, mkPrimitive(pid.GUID{Serial: 1}), DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, NO, no)
}

func TestMatchIntrinsicsGenerationRange(t *testing.T) {
	con := &Node{GenerationRange: &GenerationRange{Lo: 5, Hi: 10}}
	pr := mkPrimitive(pid.GUID{Serial: 1})
	pr.Generation = 3
	r, err := MatchIntrinsics(con, pr, DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, NO, r)

	pr.Generation = 7
	r, err = MatchIntrinsics(con, pr, DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, OK, r)
}

func TestMatchStructureChildLinkage(t *testing.T) {
	parent := pid.GUID{Serial: 7}
	l := primitive.Left
	con := &Node{ChildLinkage: &l}

	pr := mkPrimitive(pid.GUID{Serial: 1})
	pr.Linkages[primitive.Left] = parent

	r, err := MatchStructure(con, pr, parent)
	require.NoError(t, err)
	assert.Equal(t, OK, r)

	r, err = MatchStructure(con, pr, pid.GUID{Serial: 99})
	require.NoError(t, err)
	assert.Equal(t, NO, r)
}

// TestMatchOrGroupBothBranchesAlwaysEvaluated confirms spec.md §4.3's
// "even after a hit, the other alternatives are still evaluated" rule:
// both head and tail record their own liveness in the OR-map regardless
// of which one passed.
func TestMatchOrGroupBothBranchesAlwaysEvaluated(t *testing.T) {
	pr := mkPrimitive(pid.GUID{Serial: 1})

	head := &Node{Name: &StringConstraint{Pattern: "widget"}} // passes
	tail := &Node{Name: &StringConstraint{Pattern: "gadget"}} // fails

	con := &Node{ORGroups: []ORGroup{{ID: 1, Head: head, Tail: tail}}}
	orMap := NewORMap()

	r, err := Match(con, orMap, pr, pid.Zero, DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, OK, r, "group passes because head matched")
	assert.True(t, orMap.IsLive(1, branchHead))
	assert.False(t, orMap.IsLive(1, branchTail), "tail must be recorded NOT live even though the group as a whole passed")
}

func TestMatchOrGroupBothBranchesFail(t *testing.T) {
	pr := mkPrimitive(pid.GUID{Serial: 1})
	head := &Node{Name: &StringConstraint{Pattern: "gadget"}}
	tail := &Node{Name: &StringConstraint{Pattern: "gizmo"}}

	con := &Node{ORGroups: []ORGroup{{ID: 1, Head: head, Tail: tail}}}
	orMap := NewORMap()

	r, err := Match(con, orMap, pr, pid.Zero, DefaultComparator{})
	require.NoError(t, err)
	assert.Equal(t, NO, r)
}

func TestReadOrFailDeactivatesGroup(t *testing.T) {
	orMap := NewORMap()
	groups := []ORGroup{{ID: 5}}
	ReadOrFail(orMap, groups)
	assert.False(t, orMap.IsLive(5, branchHead))
	assert.False(t, orMap.IsLive(5, branchTail))
}
