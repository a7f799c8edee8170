// Package constraint implements C3, the constraint matcher: testing one
// primitive against one constraint tree node's intrinsics, its
// structural linkage back to its parent, and its OR-group membership
// (spec.md §4.3).
//
// Grounded on the validator+specification split in
// domain/core/validators/node_validator.go and domain/specifications/*
// (teacher repo 2lar-b2/backend2): a field-by-field "evaluate each rule,
// short-circuit to the first failure" shape, generalized from a single
// flat validator into the spec's richer tree of intrinsic, structural,
// and OR-group phases (DESIGN.md).
package constraint

import (
	"time"

	"graphd/internal/pid"
	"graphd/internal/primitive"
)

// StringConstraint is a glob pattern evaluated against a byte field via
// the configured Comparator.
type StringConstraint struct {
	Pattern string
}

// GenerationRange bounds a primitive's generation; a zero bound is
// unbounded on that side, mirroring pid.InGenerationRange.
type GenerationRange struct {
	Lo, Hi uint64
}

// CountRange bounds the result count pattern frame's countlimit
// (spec.md §3, §4.9's "count" field). Either bound may be nil for
// unbounded.
type CountRange struct {
	Lo, Hi *int64
}

// DatelineRange bounds a GUID by (database-id, serial) ordering.
type DatelineRange struct {
	Min, Max pid.GUID
}

func (r DatelineRange) contains(g pid.GUID) bool {
	if !r.Min.IsZero() && g.Less(r.Min) {
		return false
	}
	if !r.Max.IsZero() && r.Max.Less(g) {
		return false
	}
	return true
}

// TimeRange bounds a primitive's timestamp.
type TimeRange struct {
	Min, Max time.Time
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.Min.IsZero() && t.Before(r.Min) {
		return false
	}
	if !r.Max.IsZero() && t.After(r.Max) {
		return false
	}
	return true
}

// LinkageConstraint restricts one of a primitive's four typed linkages
// by inclusion or exclusion set, and optionally binds a child
// constraint subtree that must match the primitive found across that
// linkage (spec.md §4.3 step 5).
type LinkageConstraint struct {
	Include []pid.GUID
	Exclude []pid.GUID
	Match   *Node

	// Reverse selects which of the two recursive-subconstraint wrapper
	// directions internal/signature uses: false emits "L->(...)" ("I
	// traverse my child along L"), true emits "(...)<-L" ("my child is
	// reached because its own L points back at me").
	Reverse bool
}

func (lc LinkageConstraint) check(g pid.GUID) bool {
	if len(lc.Include) > 0 && !guidIn(lc.Include, g) {
		return false
	}
	if len(lc.Exclude) > 0 && guidIn(lc.Exclude, g) {
		return false
	}
	return true
}

func guidIn(set []pid.GUID, g pid.GUID) bool {
	for _, s := range set {
		if s.Equals(g) {
			return true
		}
	}
	return false
}

// ORGroup is one pair of alternative subconstraints; the group passes
// if either Head or Tail matches (spec.md §4.3, §9's OR-map note).
type ORGroup struct {
	ID         int
	Head, Tail *Node
}

// Node is one constraint tree node (spec.md §3's "Constraint node").
type Node struct {
	Name  *StringConstraint
	Value *StringConstraint

	TimestampRange *TimeRange
	Archival       *bool
	Live           *bool
	ValueType      *primitive.ValueType

	Linkages [4]LinkageConstraint

	DatelineRange   *DatelineRange
	GUIDInclude     []pid.GUID
	GUIDExclude     []pid.GUID
	GenerationRange *GenerationRange

	// ParentIsLinkage records that this node is its parent's linkage L
	// ("I am my parent's L"): the caller has already followed the edge,
	// and match_structure has nothing further to check.
	ParentIsLinkage bool
	// ChildLinkage, when set, records that this node's own linkage L
	// ("my L is my parent") must equal the parent's GUID.
	ChildLinkage *primitive.Linkage

	ORGroups []ORGroup

	KeyBitmask uint64

	// The remaining fields exist on Node for internal/signature's
	// canonical-order fingerprint (spec.md §4.9); C3's matcher never
	// reads them.
	Unique         bool
	HasResult      bool
	HasSort        bool
	CountLimit     *int64
	ResultPageSize *int64
	PageSize       *int64
	Start          *int64
	Next           *pid.GUID
	Previous       *pid.GUID
	HasCursor      bool
	Count          *CountRange
	AssignmentN    int

	// Memoized bits (spec.md §3, §9's OR-map note and §4.3 step 7).
	isFalse  bool
	isTrue   bool
	trueGUID pid.GUID
}

// MarkFalse permanently marks con as unsatisfiable (con_false).
func (n *Node) MarkFalse() { n.isFalse = true }
