package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphd/internal/constraint"
	"graphd/internal/pid"
)

func noVIP(pid.GUID) bool { return false }

// TestNonVIPGUIDsCollapseToSameSignature mirrors spec.md §8 end-to-end
// scenario 6: two constraints identical except for specific non-VIP
// GUIDs produce the same signature.
func TestNonVIPGUIDsCollapseToSameSignature(t *testing.T) {
	a := &constraint.Node{GUIDInclude: []pid.GUID{{DatabaseID: 1, Serial: 100}}}
	b := &constraint.Node{GUIDInclude: []pid.GUID{{DatabaseID: 1, Serial: 200}}}

	assert.Equal(t, Format(a, noVIP), Format(b, noVIP))
	assert.Equal(t, Hash(a, noVIP), Hash(b, noVIP))
}

// TestVIPGUIDDifferenceChangesSignature: when a differing GUID is VIP,
// it is emitted verbatim and the signatures diverge.
func TestVIPGUIDDifferenceChangesSignature(t *testing.T) {
	g1 := pid.GUID{DatabaseID: 1, Serial: 100}
	g2 := pid.GUID{DatabaseID: 1, Serial: 200}
	isVIP := func(g pid.GUID) bool { return true }

	a := &constraint.Node{GUIDInclude: []pid.GUID{g1}}
	b := &constraint.Node{GUIDInclude: []pid.GUID{g2}}

	assert.NotEqual(t, Format(a, isVIP), Format(b, isVIP))
	assert.NotEqual(t, Hash(a, isVIP), Hash(b, isVIP))
}

func TestFieldsEmittedInCanonicalOrder(t *testing.T) {
	live := true
	count := int64(5)
	con := &constraint.Node{
		Name:      &constraint.StringConstraint{Pattern: "foo*"},
		Live:      &live,
		HasResult: true,
		Count:     &constraint.CountRange{Lo: &count},
	}
	out := Format(con, noVIP)
	assert.Equal(t, "name=foo* live=true result count=5", out)
}

// TestCountBothBoundsReproducesFlaggedBug mirrors spec.md §8's flagged
// signature_count bug: with both bounds present, the emitted upper bound
// is the lower bound again, not the real upper bound.
func TestCountBothBoundsReproducesFlaggedBug(t *testing.T) {
	lo, hi := int64(2), int64(9)
	con := &constraint.Node{Count: &constraint.CountRange{Lo: &lo, Hi: &hi}}
	assert.Equal(t, "count=2..2", Format(con, noVIP))
}

func TestDatelineAndTimestampValuesOmitted(t *testing.T) {
	con := &constraint.Node{
		TimestampRange: &constraint.TimeRange{},
		DatelineRange:  &constraint.DatelineRange{Min: pid.GUID{DatabaseID: 9, Serial: 9}},
	}
	out := Format(con, noVIP)
	assert.Contains(t, out, "timestamp=bounded")
	assert.Contains(t, out, "dateline=bounded")
	assert.NotContains(t, out, "9")
}

func TestRecursiveSubconstraintWrappedByLinkageDirection(t *testing.T) {
	child := &constraint.Node{Name: &constraint.StringConstraint{Pattern: "child"}}

	forward := &constraint.Node{}
	forward.Linkages[0] = constraint.LinkageConstraint{Match: child}
	assert.Contains(t, Format(forward, noVIP), "Left->(name=child)")

	reverse := &constraint.Node{}
	reverse.Linkages[0] = constraint.LinkageConstraint{Match: child, Reverse: true}
	assert.Contains(t, Format(reverse, noVIP), "(name=child)<-Left")
}

func TestSeparatorRuleAroundAssignments(t *testing.T) {
	con := &constraint.Node{KeyBitmask: 0x3}
	out := Format(con, noVIP)
	assert.Equal(t, "key=3", out)
}

func TestEmptyNodeProducesEmptySignature(t *testing.T) {
	assert.Equal(t, "", Format(&constraint.Node{}, noVIP))
}
