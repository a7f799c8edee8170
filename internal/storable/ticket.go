package storable

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Ticket is a short printable name for a cached Storable, stable across
// requests (spec.md §3, §4.1, §6.1). It is never reassigned to a
// different record.
type Ticket string

// sentinelTooLarge is returned in place of a ticket when a candidate
// record alone exceeds half the cache's byte budget (spec.md §4.1).
const sentinelTooLarge Ticket = "x"

// counter is the process-local monotonic tiebreaker appended to every
// minted ticket, so two tickets minted within the same millisecond still
// differ.
var counter uint64

// clockFn and pidFn are indirections so tests can run in "predictable
// mode" (spec.md §4.1), substituting fixed values instead of wall clock
// and os.Getpid().
var (
	clockFn = func() uint32 { return uint32(time.Now().UnixMilli()) }
	pidFn   = func() uint16 { return uint16(os.Getpid()) }
)

// mintTicket produces "%04x%08x%u" from (pid, ms-clock, monotonic
// counter), per spec.md §6.1.
func mintTicket() Ticket {
	n := atomic.AddUint64(&counter, 1)
	return Ticket(fmt.Sprintf("%04x%08x%d", pidFn(), clockFn(), n))
}

// WithPredictableTickets overrides the pid/clock sources for the duration
// of fn, substituting the fixed values the spec's test mode documents
// (0x0123 for pid, 0x456789AB for the clock), then restores them. It is
// exported so package storable's own tests and callers writing golden
// cursor fixtures can reproduce the same ticket bytes deterministically.
func WithPredictableTickets(fn func()) {
	prevPID, prevClock := pidFn, clockFn
	pidFn = func() uint16 { return 0x0123 }
	clockFn = func() uint32 { return 0x456789AB }
	defer func() { pidFn, clockFn = prevPID, prevClock }()
	fn()
}

// isTicketByte reports whether b is a byte that can appear in a ticket
// lexeme: ascii hex digits, or the sentinel 'x'.
func isTicketByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') || b == 'x'
}

// isAlnum reports whether b is the ascii-alnum first byte a ticket must
// start with (spec.md §4.1 lookup precondition).
func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// scanTicket consumes a ticket lexeme (hex digits, optionally the
// sentinel "x") from the front of s and returns the lexeme and the
// remaining bytes. ok is false if s does not begin with a valid ticket
// byte.
func scanTicket(s string) (lexeme string, rest string, ok bool) {
	if s == "" || !isAlnum(s[0]) {
		return "", s, false
	}
	i := 0
	for i < len(s) && isTicketByte(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}
