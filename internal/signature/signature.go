// Package signature implements C9, the structural fingerprint over a
// constraint tree: a canonical-order textual rendering, hashed with
// xxhash, so two constraints that would visit the same primitives in
// the same order collapse to the same cache key (spec.md §4.9).
//
// Grounded on pkg/common's generateCacheKey (teacher repo
// 2lar-b2/backend2), which builds a deterministic cache key by walking a
// request's fields in a fixed order and hashing the result; generalized
// here to the constraint tree's much richer field set and to the
// recursive per-linkage subconstraint walk spec.md §4.9 requires.
// Hashed with github.com/cespare/xxhash/v2, the pack's hash primitive for
// this concern (DESIGN.md).
package signature

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"graphd/internal/constraint"
	"graphd/internal/pid"
)

// VIPChecker reports whether a GUID has VIP-or-greater fan-in: VIP GUIDs
// are emitted verbatim into the signature, everything else collapses to
// "#..." so that two constraints differing only in which (non-VIP)
// primitive they name still produce the same signature (spec.md §4.9).
type VIPChecker func(g pid.GUID) bool

// writer accumulates signature tokens, applying spec.md §4.9's separator
// rule: insert a single space between tokens unless the byte already at
// the end of the buffer is '(', '=', space, or tab.
type writer struct {
	buf []byte
}

func (w *writer) sep() {
	if len(w.buf) == 0 {
		return
	}
	switch w.buf[len(w.buf)-1] {
	case '(', '=', ' ', '\t':
		return
	}
	w.buf = append(w.buf, ' ')
}

func (w *writer) tok(s string) {
	w.sep()
	w.buf = append(w.buf, s...)
}

func (w *writer) byte(b byte) {
	w.buf = append(w.buf, b)
}

func guidToken(g pid.GUID, isVIP VIPChecker) string {
	if isVIP != nil && isVIP(g) {
		return g.String()
	}
	return "#..."
}

// Format renders con's canonical-order signature text (spec.md §4.9).
// isVIP may be nil, in which case every GUID collapses to "#...".
func Format(con *constraint.Node, isVIP VIPChecker) string {
	w := &writer{}
	writeNode(w, con, isVIP)
	return string(w.buf)
}

// Hash renders con's signature and reduces it to a 64-bit fingerprint via
// xxhash, the cache key C1's storable cache and C9's callers use.
func Hash(con *constraint.Node, isVIP VIPChecker) uint64 {
	return xxhash.Sum64String(Format(con, isVIP))
}

var linkageNames = [4]string{"Left", "Right", "TypeGUID", "Scope"}

func writeNode(w *writer, con *constraint.Node, isVIP VIPChecker) {
	// string-constraints (type, name, value)
	if con.ValueType != nil {
		w.tok("type=")
		w.buf = strconv.AppendInt(w.buf, int64(*con.ValueType), 10)
	}
	if con.Name != nil {
		w.tok("name=")
		w.buf = append(w.buf, con.Name.Pattern...)
	}
	if con.Value != nil {
		w.tok("value=")
		w.buf = append(w.buf, con.Value.Pattern...)
	}

	// datatype
	// (ValueType already doubles as the datatype token above; spec.md's
	// "string-constraints (type, name, value) -> datatype" distinguishes
	// the constraint's own comparison type from the primitive's value
	// datatype, but this tree carries only one ValueType field, so the
	// two collapse to the single "type=" token emitted above.)

	// flags
	if con.Archival != nil {
		w.tok("archival=")
		w.buf = strconv.AppendBool(w.buf, *con.Archival)
	}
	if con.Live != nil {
		w.tok("live=")
		w.buf = strconv.AppendBool(w.buf, *con.Live)
	}

	// key/unique/result/sort
	if con.KeyBitmask != 0 {
		w.tok("key=")
		w.buf = strconv.AppendUint(w.buf, con.KeyBitmask, 16)
	}
	if con.Unique {
		w.tok("unique")
	}
	if con.HasResult {
		w.tok("result")
	}
	if con.HasSort {
		w.tok("sort")
	}

	// countlimit/resultpagesize/pagesize/start
	writeOptInt(w, "countlimit=", con.CountLimit)
	writeOptInt(w, "resultpagesize=", con.ResultPageSize)
	writeOptInt(w, "pagesize=", con.PageSize)
	writeOptInt(w, "start=", con.Start)

	// generation
	if con.GenerationRange != nil {
		w.tok("generation=")
		w.buf = strconv.AppendUint(w.buf, con.GenerationRange.Lo, 10)
		w.byte('.')
		w.byte('.')
		w.buf = strconv.AppendUint(w.buf, con.GenerationRange.Hi, 10)
	}

	// GUID/next/previous
	for _, g := range con.GUIDInclude {
		w.tok("guid=")
		w.buf = append(w.buf, guidToken(g, isVIP)...)
	}
	for _, g := range con.GUIDExclude {
		w.tok("!guid=")
		w.buf = append(w.buf, guidToken(g, isVIP)...)
	}
	if con.Next != nil {
		w.tok("next=")
		w.buf = append(w.buf, guidToken(*con.Next, isVIP)...)
	}
	if con.Previous != nil {
		w.tok("previous=")
		w.buf = append(w.buf, guidToken(*con.Previous, isVIP)...)
	}

	// linkages
	for i, lc := range con.Linkages {
		if len(lc.Include) == 0 && len(lc.Exclude) == 0 && lc.Match == nil {
			continue
		}
		name := linkageNames[i]
		for _, g := range lc.Include {
			w.tok(name + "=")
			w.buf = append(w.buf, guidToken(g, isVIP)...)
		}
		for _, g := range lc.Exclude {
			w.tok("!" + name + "=")
			w.buf = append(w.buf, guidToken(g, isVIP)...)
		}
	}

	// cursor presence
	if con.HasCursor {
		w.tok("cursor")
	}

	// timestamp (bounded only; values are never emitted, spec.md §4.9)
	if con.TimestampRange != nil {
		w.tok("timestamp=bounded")
	}

	// count
	writeCount(w, con.Count)

	// dateline (bounded only; values are never emitted, spec.md §4.9)
	if con.DatelineRange != nil {
		w.tok("dateline=bounded")
	}

	// assignments
	if con.AssignmentN != 0 {
		w.tok("assignments=")
		w.buf = strconv.AppendInt(w.buf, int64(con.AssignmentN), 10)
	}

	// recursive subconstraints, wrapped by the parent linkage direction:
	// "L->(...)" when the subconstraint is reached by following this
	// node's linkage forward, "(...)<-L" when it is reached because the
	// subconstraint's own linkage points back at this node.
	for i, lc := range con.Linkages {
		if lc.Match == nil {
			continue
		}
		name := linkageNames[i]
		if lc.Reverse {
			w.tok("(")
			writeNode(w, lc.Match, isVIP)
			w.buf = append(w.buf, ')')
			w.buf = append(w.buf, "<-"...)
			w.buf = append(w.buf, name...)
		} else {
			w.tok(name)
			w.buf = append(w.buf, "->("...)
			writeNode(w, lc.Match, isVIP)
			w.buf = append(w.buf, ')')
		}
	}
}

// writeCount emits the count field. spec.md §8 flags that the both-
// bounds path "appears to print the lower bound twice" (signature_count);
// implemented as flagged, not guessed-and-fixed: when both bounds are
// present, the upper bound printed is Lo, not Hi.
func writeCount(w *writer, c *constraint.CountRange) {
	if c == nil {
		return
	}
	switch {
	case c.Lo != nil && c.Hi != nil:
		w.tok("count=")
		w.buf = strconv.AppendInt(w.buf, *c.Lo, 10)
		w.buf = append(w.buf, '.', '.')
		w.buf = strconv.AppendInt(w.buf, *c.Lo, 10)
	case c.Lo != nil:
		w.tok("count=")
		w.buf = strconv.AppendInt(w.buf, *c.Lo, 10)
	case c.Hi != nil:
		w.tok("count=")
		w.buf = strconv.AppendInt(w.buf, *c.Hi, 10)
	}
}

func writeOptInt(w *writer, label string, v *int64) {
	if v == nil {
		return
	}
	w.tok(label)
	w.buf = strconv.AppendInt(w.buf, *v, 10)
}
