package engine

import (
	"graphd/internal/constraint"
	"graphd/internal/patternframe"
	"graphd/internal/signature"
	"graphd/internal/sortcompiler"
	"graphd/internal/storable"
)

// Plan bundles the three derived artifacts spec.md §2's data flow says
// accompany a constraint tree into C6: C5's normalized total order, C9's
// structural fingerprint, and C4's compiled pattern frames.
type Plan struct {
	Signature uint64
	Sort      []sortcompiler.Criterion
	Frames    *patternframe.Compiled
}

// CompilePlan runs C5, C9, and C4 over one constraint in that order: the
// sort spec is normalized first since its criteria (minus the trailing
// GUID, which is never sampled) feed C4 as the "sort" pattern that seeds
// sort-only pf_one homes (spec.md §4.4) ahead of the assignment/result
// pf_sets that may reclassify them as non-sort-only.
func CompilePlan(
	con *constraint.Node,
	assignments []*patternframe.Pattern,
	result *patternframe.Pattern,
	sort []sortcompiler.Criterion,
	isVIP signature.VIPChecker,
) (*Plan, error) {
	normalized := sortcompiler.Compile(sort)
	sig := signature.Hash(con, isVIP)

	frames, err := patternframe.Compile(assignments, result, sortPatternFrom(normalized))
	if err != nil {
		return nil, err
	}

	return &Plan{Signature: sig, Sort: normalized, Frames: frames}, nil
}

// sortPatternFrom converts a normalized sort criterion list into the
// field-leaf pattern patternframe.Compile expects for relocation: one
// Field atom per criterion naming a primitive field. The mandatory
// trailing GUID criterion is skipped — a GUID is always available from
// the match itself, never primitive-dependent sample data to harvest.
func sortPatternFrom(criteria []sortcompiler.Criterion) *patternframe.Pattern {
	var elems []*patternframe.Pattern
	for _, c := range criteria {
		if c.Field == sortcompiler.GUIDField {
			continue
		}
		elems = append(elems, patternframe.Field(c.Field))
	}
	if len(elems) == 0 {
		return nil
	}
	return patternframe.List(elems...)
}

// PlanCacheKey adapts a compiled Plan to storable.Storable so C1 can
// cache it keyed by its own C9 signature: a later request whose
// constraint fingerprints identically reuses the compiled frames instead
// of re-running C4/C5 (spec.md §4.9's "used for plan/result caching").
type PlanCacheKey struct {
	Plan *Plan
}

// Type names this storable's kind for Cache.Thaw's optional type check.
func (k PlanCacheKey) Type() string { return "plan" }

// Hash is the plan's own C9 signature, so Store finds it by the same
// fingerprint a second structurally-identical constraint would compute.
func (k PlanCacheKey) Hash() uint64 { return k.Plan.Signature }

// Equal compares by signature: two plans with the same structural
// fingerprint are interchangeable for caching purposes even if their
// frame slices are distinct allocations.
func (k PlanCacheKey) Equal(o storable.Storable) bool {
	other, ok := o.(PlanCacheKey)
	return ok && other.Plan.Signature == k.Plan.Signature
}

// planFrameOverhead is a rough per-frame accounting weight, standing in
// for the real struct size C1's caller would compute; spec.md leaves
// resource_size(r) to the type, not to C1 itself.
const planFrameOverhead = 64

// Size estimates the plan's accounted byte footprint: one
// planFrameOverhead per compiled frame plus one machine word per sort
// criterion.
func (k PlanCacheKey) Size() int64 {
	return int64(len(k.Plan.Frames.Frames))*planFrameOverhead + int64(len(k.Plan.Sort))*8
}
