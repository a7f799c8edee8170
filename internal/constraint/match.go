package constraint

import (
	"graphd/internal/pid"
	"graphd/internal/primitive"
)

// Result is match_intrinsics/match_structure/match's two-valued outcome
// (spec.md §4.3); a third, system-error outcome is carried as a regular
// Go error return rather than folded into this type, keeping the NO/OK
// control-flow distinct from fatal failures (spec.md §9).
type Result int

const (
	OK Result = iota
	NO
)

// MatchIntrinsics tests pr against con's own fields, ignoring structure
// and OR-groups (spec.md §4.3).
func MatchIntrinsics(con *Node, pr *primitive.Primitive, cmp Comparator) (Result, error) {
	// 1. con.false
	if con.isFalse {
		return NO, nil
	}
	// 2. con.true (cached)
	if con.isTrue {
		if pr.GUID.Equals(con.trueGUID) {
			return OK, nil
		}
		return NO, nil
	}

	// 3. string constraints on name/value, declaration order,
	// short-circuit on NO.
	if con.Name != nil && !cmp.MatchString(con.Name.Pattern, string(pr.Name)) {
		return NO, nil
	}
	if con.Value != nil && !cmp.MatchString(con.Value.Pattern, string(pr.Value)) {
		return NO, nil
	}

	// 4. timestamp, archival, live, value-type checks.
	if con.TimestampRange != nil && !con.TimestampRange.contains(pr.Timestamp) {
		return NO, nil
	}
	if con.Archival != nil && *con.Archival != pr.Archival {
		return NO, nil
	}
	if con.Live != nil && *con.Live != pr.Live {
		return NO, nil
	}
	if con.ValueType != nil && *con.ValueType != pr.ValueType {
		return NO, nil
	}

	// 5. per-linkage include/exclude/match sets.
	for l := primitive.Linkage(0); int(l) < len(con.Linkages); l++ {
		lc := con.Linkages[l]
		if !lc.check(pr.Linkage(l)) {
			return NO, nil
		}
	}

	// 6. GUID-level checks.
	if con.DatelineRange != nil && !con.DatelineRange.contains(pr.GUID) {
		return NO, nil
	}
	if len(con.GUIDInclude) > 0 && !guidIn(con.GUIDInclude, pr.GUID) {
		return NO, nil
	}
	if len(con.GUIDExclude) > 0 && guidIn(con.GUIDExclude, pr.GUID) {
		return NO, nil
	}
	if con.GenerationRange != nil && !pid.InGenerationRange(pr.Generation, con.GenerationRange.Lo, con.GenerationRange.Hi) {
		return NO, nil
	}

	// 7. memoize con_true when exactly one include GUID pins the match.
	if len(con.GUIDInclude) == 1 {
		con.isTrue = true
		con.trueGUID = con.GUIDInclude[0]
	}

	return OK, nil
}

// MatchStructure enforces the parent edge (spec.md §4.3): if con names
// a child linkage L, pr must carry parentGUID along L. If con is itself
// its parent's linkage (the caller already followed that edge), there
// is nothing further to check.
func MatchStructure(con *Node, pr *primitive.Primitive, parentGUID pid.GUID) (Result, error) {
	if con.ParentIsLinkage {
		return OK, nil
	}
	if con.ChildLinkage != nil {
		if !pr.Linkage(*con.ChildLinkage).Equals(parentGUID) {
			return NO, nil
		}
	}
	return OK, nil
}

// Match composes intrinsic, structural, and OR-group matching (spec.md
// §4.3). A NO anywhere in intrinsics/structure triggers ReadOrFail,
// deactivating con's own OR-groups in orMap.
func Match(con *Node, orMap *ORMap, pr *primitive.Primitive, parentGUID pid.GUID, cmp Comparator) (Result, error) {
	r, err := MatchIntrinsics(con, pr, cmp)
	if err != nil {
		return NO, err
	}
	if r == NO {
		ReadOrFail(orMap, con.ORGroups)
		return NO, nil
	}

	r, err = MatchStructure(con, pr, parentGUID)
	if err != nil {
		return NO, err
	}
	if r == NO {
		ReadOrFail(orMap, con.ORGroups)
		return NO, nil
	}

	allGroupsPass := true
	for _, grp := range con.ORGroups {
		headOK, tailOK := false, false

		if grp.Head != nil {
			hr, err := Match(grp.Head, orMap, pr, parentGUID, cmp)
			if err != nil {
				return NO, err
			}
			headOK = hr == OK
		}
		// Both branches are always evaluated, even once one has already
		// passed, so later fall-through phases still see a complete OR-map
		// (spec.md §4.3).
		if grp.Tail != nil {
			tr, err := Match(grp.Tail, orMap, pr, parentGUID, cmp)
			if err != nil {
				return NO, err
			}
			tailOK = tr == OK
		}

		orMap.SetLive(grp.ID, branchHead, headOK)
		orMap.SetLive(grp.ID, branchTail, tailOK)

		if !headOK && !tailOK {
			allGroupsPass = false
		}
	}
	if !allGroupsPass {
		return NO, nil
	}
	return OK, nil
}

// ReadOrFail deactivates every OR-group rooted at a node that just
// failed to match, so dependent subconstraints downstream see both
// branches as dead (spec.md §4.3: "a NO triggers read_or_fail").
func ReadOrFail(orMap *ORMap, groups []ORGroup) {
	for _, g := range groups {
		orMap.SetLive(g.ID, branchHead, false)
		orMap.SetLive(g.ID, branchTail, false)
	}
}
