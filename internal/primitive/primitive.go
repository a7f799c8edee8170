// Package primitive defines the stored record type the whole read engine
// matches against, and the narrow Store interface the engine uses to read
// it. The store's on-disk internals are an external collaborator
// (spec.md §1); this package only defines the boundary.
package primitive

import (
	"context"
	"time"

	"graphd/internal/pid"
)

// Linkage names one of a primitive's four typed edges.
type Linkage int

const (
	Left Linkage = iota
	Right
	TypeGUID
	Scope
	linkageCount
)

func (l Linkage) String() string {
	switch l {
	case Left:
		return "left"
	case Right:
		return "right"
	case TypeGUID:
		return "typeguid"
	case Scope:
		return "scope"
	default:
		return "unknown"
	}
}

// ValueType tags the shape of a primitive's value bytes.
type ValueType int

const (
	ValueTypeNone ValueType = iota
	ValueTypeString
	ValueTypeInt
	ValueTypeFloat
	ValueTypeGUID
	ValueTypeBoolean
	ValueTypeTimestamp
)

// Primitive is one record read from the store.
type Primitive struct {
	GUID pid.GUID

	// Linkages[l] is the GUID this primitive carries along edge l, or the
	// zero GUID if unset.
	Linkages [linkageCount]pid.GUID

	Timestamp time.Time
	ValueType ValueType
	Name      []byte
	Value     []byte

	Generation uint64
	Archival   bool
	Live       bool
}

// Linkage returns the GUID this primitive carries along edge l.
func (p *Primitive) Linkage(l Linkage) pid.GUID {
	if int(l) < 0 || int(l) >= len(p.Linkages) {
		return pid.Zero
	}
	return p.Linkages[l]
}

// Store is the narrow interface the engine needs from the primitive
// store. Concrete stores (e.g. infrastructure/store/dynamodb) implement
// it; the on-disk format itself is out of scope for this repo.
type Store interface {
	// Read resolves a PID to its Primitive, or ok=false if it does not
	// (or no longer) exist.
	Read(ctx context.Context, id pid.PID) (p Primitive, ok bool, err error)

	// ReadByGUID resolves a GUID to its current PID and Primitive.
	ReadByGUID(ctx context.Context, g pid.GUID) (id pid.PID, p Primitive, ok bool, err error)

	// Write persists a new primitive, assigning it a PID, and returns it.
	// Callers must hold an exclusive xstate ticket (internal/xstate).
	Write(ctx context.Context, p Primitive) (pid.PID, error)

	// MaxPID returns the highest PID currently assigned, used by
	// iterators to bound a full-range scan.
	MaxPID(ctx context.Context) (pid.PID, error)
}
