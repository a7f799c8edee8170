// Package xstate implements C7, the exclusive/shared ticket arbiter
// that serializes write-class requests against shared readers over the
// primitive store (spec.md §4.7).
//
// Grounded on infrastructure/persistence/dynamodb/distributed_lock.go's
// lease-queue shape (teacher repo 2lar-b2/backend2) and
// pkg/auth/rate_limiter.go's in-memory FIFO bookkeeping, generalized
// from a single-holder lock into the spec's shared-prefix/exclusive-
// alone admission rule (DESIGN.md).
package xstate

import (
	"sync"

	"github.com/google/uuid"
)

// Kind is a ticket's admission class.
type Kind int

const (
	// None tickets never enter the arbiter; callers simply don't request
	// one for a None-kind request (spec.md §4.7).
	None Kind = iota
	Shared
	Exclusive
)

// String renders a Kind for logging and the admin surface's JSON view.
func (k Kind) String() string {
	switch k {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return "none"
	}
}

// RequestClass is the request kind spec.md §4.7's table maps to a Kind.
type RequestClass int

const (
	ClassRead RequestClass = iota
	ClassVerify
	ClassIterate
	ClassDump
	ClassWrite
	ClassRestore
	ClassReplicaWrite
	ClassSync
	ClassStatus
)

// NodeRole is this process's role in the replication topology, needed
// to resolve the class→kind table's role-dependent rows.
type NodeRole int

const (
	RoleLeader NodeRole = iota
	RoleFollower
	RoleReplica
)

// KindFor resolves a request class (plus node role and whether the
// request already carries an error status) to its xstate Kind, per
// spec.md §4.7's table. A request with an error status always gets
// None.
//
// DESIGN.md open decision: "write/restore/replica-write → exclusive
// (unless the node is a replica)" is read as meaning a replica node
// applies those classes as Shared (replicated writes arrive already
// serialized by the leader's own exclusive ticket, so the replica only
// needs read-concurrency bookkeeping locally, not a second local
// write-exclusion).
func KindFor(class RequestClass, role NodeRole, hasError bool) Kind {
	if hasError {
		return None
	}
	switch class {
	case ClassRead, ClassVerify, ClassIterate, ClassDump:
		return Shared
	case ClassWrite, ClassRestore, ClassReplicaWrite:
		if role == RoleReplica {
			return Shared
		}
		return Exclusive
	case ClassSync:
		if role == RoleFollower {
			return Shared
		}
		return Exclusive
	case ClassStatus:
		if role == RoleLeader {
			return Shared
		}
		return None
	default:
		return None
	}
}

// TicketID names one enqueued ticket.
type TicketID uint64

type entry struct {
	id          TicketID
	kind        Kind
	running     bool
	activate    func(data any)
	data        any
	correlation string
}

// Arbiter is the FIFO ticket queue (spec.md §4.7). Only Shared and
// Exclusive tickets are ever enqueued; None-kind requests bypass the
// arbiter entirely.
type Arbiter struct {
	mu     sync.Mutex
	queue  []*entry
	nextID TicketID
}

// New creates an empty Arbiter.
func New() *Arbiter {
	return &Arbiter{}
}

// GetShared enqueues a shared ticket. activate, if non-nil, is called
// (synchronously, from within this call or a later Delete/Reissue) the
// moment the ticket transitions to running.
func (a *Arbiter) GetShared(activate func(data any), data any) TicketID {
	return a.enqueue(Shared, activate, data)
}

// GetExclusive enqueues an exclusive ticket.
func (a *Arbiter) GetExclusive(activate func(data any), data any) TicketID {
	return a.enqueue(Exclusive, activate, data)
}

func (a *Arbiter) enqueue(kind Kind, activate func(data any), data any) TicketID {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	e := &entry{id: a.nextID, kind: kind, activate: activate, data: data, correlation: uuid.NewString()}
	a.queue = append(a.queue, e)
	a.recomputeLocked()
	return e.id
}

// Correlation returns ticket's process-unique correlation id, minted once
// at enqueue time so it survives Reissue (moved to a new queue position,
// same identity for log correlation across the FIFO's lifetime). The
// zero value means ticket is not currently enqueued.
func (a *Arbiter) Correlation(ticket TicketID) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e := a.findLocked(ticket); e != nil {
		return e.correlation
	}
	return ""
}

// IsRunning reports whether ticket currently holds running privilege.
func (a *Arbiter) IsRunning(ticket TicketID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e := a.findLocked(ticket); e != nil {
		return e.running
	}
	return false
}

// Reissue moves ticket to the tail of the queue under a new kind,
// per spec.md §4.7: "yield — move ticket to the tail at the specified
// type; used by long readers when a writer waits behind."
func (a *Arbiter) Reissue(ticket TicketID, kind Kind) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.indexLocked(ticket)
	if idx < 0 {
		return
	}
	e := a.queue[idx]
	a.queue = append(a.queue[:idx], a.queue[idx+1:]...)
	e.kind = kind
	e.running = false
	a.queue = append(a.queue, e)
	a.recomputeLocked()
}

// AnyWaitingBehind reports whether any ticket enqueued after ticket is
// not currently running.
func (a *Arbiter) AnyWaitingBehind(ticket TicketID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.indexLocked(ticket)
	if idx < 0 {
		return false
	}
	for _, e := range a.queue[idx+1:] {
		if !e.running {
			return true
		}
	}
	return false
}

// Delete releases ticket.
func (a *Arbiter) Delete(ticket TicketID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.indexLocked(ticket)
	if idx < 0 {
		return
	}
	a.queue = append(a.queue[:idx], a.queue[idx+1:]...)
	a.recomputeLocked()
}

// Break is xstate_break: called inside long-running readers. If there
// is a waiter behind ticket, it reissues ticket at the same kind (so it
// re-enters the queue behind the waiter) and reports true. Writers must
// never call this (spec.md §4.7: "writers never break").
func (a *Arbiter) Break(ticket TicketID) bool {
	a.mu.Lock()
	kind := Kind(-1)
	if e := a.findLocked(ticket); e != nil {
		kind = e.kind
	}
	waiting := false
	if idx := a.indexLocked(ticket); idx >= 0 {
		for _, e := range a.queue[idx+1:] {
			if !e.running {
				waiting = true
				break
			}
		}
	}
	a.mu.Unlock()

	if !waiting || kind < 0 {
		return false
	}
	a.Reissue(ticket, kind)
	return true
}

// Snapshot is a point-in-time view of one queued ticket, exposed over
// the admin surface (interfaces/http/rest) so an operator can see FIFO
// order and running state without reaching into the arbiter directly.
type Snapshot struct {
	Ticket      TicketID
	Kind        Kind
	Running     bool
	Correlation string
}

// Snapshot returns the current queue, head first, for observability.
func (a *Arbiter) Snapshot() []Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Snapshot, len(a.queue))
	for i, e := range a.queue {
		out[i] = Snapshot{Ticket: e.id, Kind: e.kind, Running: e.running, Correlation: e.correlation}
	}
	return out
}

// Len reports the number of currently enqueued tickets.
func (a *Arbiter) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Arbiter) findLocked(ticket TicketID) *entry {
	for _, e := range a.queue {
		if e.id == ticket {
			return e
		}
	}
	return nil
}

func (a *Arbiter) indexLocked(ticket TicketID) int {
	for i, e := range a.queue {
		if e.id == ticket {
			return i
		}
	}
	return -1
}

// recomputeLocked re-derives which queue entries are running: any
// prefix of consecutive shared tickets runs concurrently; an exclusive
// ticket runs alone, and only when it is itself at the head (index 0);
// everything behind the first exclusive ticket waits (spec.md §4.7).
// Newly-running entries get their activate callback invoked.
func (a *Arbiter) recomputeLocked() {
	var newlyRunning []*entry

	exclusiveSeen := false
	for i, e := range a.queue {
		prev := e.running
		switch {
		case exclusiveSeen:
			e.running = false
		case e.kind == Exclusive:
			e.running = i == 0
			exclusiveSeen = true
		default: // Shared, no exclusive encountered yet
			e.running = true
		}
		if !prev && e.running {
			newlyRunning = append(newlyRunning, e)
		}
	}

	for _, e := range newlyRunning {
		if e.activate != nil {
			e.activate(e.data)
		}
	}
}
