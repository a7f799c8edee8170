// Package pid defines the primitive identity types shared by the whole
// read engine: the opaque 64-bit PID used by iterators and the store, and
// the 128-bit GUID used by constraints and primitives.
package pid

import "fmt"

// PID is an opaque identity into the primitive store. Iterators enumerate
// PIDs; the store resolves a PID to a Primitive.
type PID uint64

// None is the sentinel "no primitive" PID. Zero is never a valid store id.
const None PID = 0

// String renders a PID for logs and cursor debugging.
func (p PID) String() string {
	return fmt.Sprintf("%016x", uint64(p))
}

// Valid reports whether p could name a stored primitive.
func (p PID) Valid() bool { return p != None }

// GUID is a 128-bit logical identity: a database id and a per-database
// monotonic serial. GUIDs are stable across compaction; PIDs are not.
type GUID struct {
	DatabaseID uint64
	Serial     uint64
}

// Zero is the sentinel empty GUID.
var Zero = GUID{}

// IsZero reports whether g is the sentinel empty GUID.
func (g GUID) IsZero() bool { return g == Zero }

// Equals compares two GUIDs by value.
func (g GUID) Equals(o GUID) bool { return g == o }

// Less orders GUIDs first by database id, then by serial. Used as the
// mandatory tiebreaker the sort compiler appends (spec.md §4.5).
func (g GUID) Less(o GUID) bool {
	if g.DatabaseID != o.DatabaseID {
		return g.DatabaseID < o.DatabaseID
	}
	return g.Serial < o.Serial
}

func (g GUID) String() string {
	return fmt.Sprintf("%016x.%016x", g.DatabaseID, g.Serial)
}

// Dateline is a (database id, serial) watermark used for dateline min/max
// range constraints (spec.md §3, §4.3). It shares GUID's ordering.
type Dateline = GUID

// InGenerationRange reports whether a generation counter g falls within
// [lo, hi], where a zero bound is unbounded on that side.
func InGenerationRange(g, lo, hi uint64) bool {
	if lo != 0 && g < lo {
		return false
	}
	if hi != 0 && g > hi {
		return false
	}
	return true
}
