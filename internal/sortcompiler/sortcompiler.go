// Package sortcompiler implements C5: normalizing a user-supplied sort
// specification into a total order by appending a GUID tiebreaker
// (spec.md §4.5, §8 scenario 4).
//
// Grounded on pkg/common/pagination.go's PaginationParams, which already
// normalizes a user-supplied sort field/direction pair into a safe
// default (teacher repo 2lar-b2/backend2) — generalized here from "one
// field, default to a fixed column" into the spec's list-normalization
// and mandatory GUID-termination rule.
package sortcompiler

// Criterion is one sort key: a field name (or the GUID sentinel) plus
// direction.
type Criterion struct {
	Field      string
	Descending bool
}

// GUIDField is the sentinel field name that terminates every normalized
// sort specification.
const GUIDField = "GUID"

func isGUID(c Criterion) bool { return c.Field == GUIDField }

// Compile normalizes spec into a list that is guaranteed to terminate in
// a GUID criterion (spec.md §4.5):
//
//   - a singleton non-list criterion is wrapped in a list;
//   - an empty list gets a sole GUID criterion;
//   - walking the list, a GUID criterion terminates it (GUIDs are
//     unique, so nothing after it can matter); otherwise a GUID
//     criterion is appended at the end.
func Compile(spec []Criterion) []Criterion {
	if len(spec) == 0 {
		return []Criterion{{Field: GUIDField}}
	}

	out := make([]Criterion, 0, len(spec)+1)
	for _, c := range spec {
		out = append(out, c)
		if isGUID(c) {
			return out
		}
	}
	out = append(out, Criterion{Field: GUIDField})
	return out
}

// CompileSingleton normalizes a single, non-list criterion: spec.md
// §4.5's "a singleton non-list, non-GUID criterion is wrapped in a
// list" case, kept as its own entry point since callers with a bare
// criterion (not yet a []Criterion) have no list to pass to Compile.
func CompileSingleton(c Criterion) []Criterion {
	return Compile([]Criterion{c})
}
