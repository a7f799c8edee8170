package xstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestXstateOrderScenario mirrors spec.md §8 end-to-end scenario 3:
// enqueue (shared A, shared B, exclusive C, shared D). A and B run
// concurrently; C runs alone only after A and B finish; D runs alone
// only after C finishes. While C waits, any_waiting_behind(A) is true.
func TestXstateOrderScenario(t *testing.T) {
	a := New()

	tA := a.GetShared(nil, nil)
	tB := a.GetShared(nil, nil)
	tC := a.GetExclusive(nil, nil)
	tD := a.GetShared(nil, nil)

	assert.True(t, a.IsRunning(tA))
	assert.True(t, a.IsRunning(tB))
	assert.False(t, a.IsRunning(tC), "C must wait for A and B to drain")
	assert.False(t, a.IsRunning(tD), "D must wait behind C")

	assert.True(t, a.AnyWaitingBehind(tA), "C (and D) are waiting behind A")

	a.Delete(tA)
	assert.False(t, a.IsRunning(tC), "C still waits for B")

	a.Delete(tB)
	assert.True(t, a.IsRunning(tC), "C runs alone once A and B have drained")
	assert.False(t, a.IsRunning(tD))

	a.Delete(tC)
	assert.True(t, a.IsRunning(tD), "D runs once C has finished")
}

func TestNoTwoExclusivesRunSimultaneously(t *testing.T) {
	a := New()
	t1 := a.GetExclusive(nil, nil)
	t2 := a.GetExclusive(nil, nil)
	assert.True(t, a.IsRunning(t1))
	assert.False(t, a.IsRunning(t2))
}

func TestActivateCalledOnTransitionToRunning(t *testing.T) {
	a := New()
	var activated []string

	tA := a.GetShared(func(data any) { activated = append(activated, data.(string)) }, "A")
	assert.Equal(t, []string{"A"}, activated)

	a.GetExclusive(func(data any) { activated = append(activated, data.(string)) }, "B")
	assert.Equal(t, []string{"A"}, activated, "exclusive ticket behind a running shared ticket must not activate yet")

	a.Delete(tA)
	assert.Equal(t, []string{"A", "B"}, activated, "exclusive ticket activates once the shared ticket ahead of it drains")
}

func TestReissueMovesToTailUnderNewKind(t *testing.T) {
	a := New()
	tA := a.GetShared(nil, nil)
	tWriter := a.GetExclusive(nil, nil)
	assert.True(t, a.IsRunning(tA))
	assert.False(t, a.IsRunning(tWriter))

	moved := a.Break(tA)
	assert.True(t, moved, "xstate_break reissues when a waiter is behind")
	// tA was moved to the tail; the writer, now at the head, should run.
	assert.True(t, a.IsRunning(tWriter))
	assert.False(t, a.IsRunning(tA))
}

func TestBreakFalseWithNoWaiter(t *testing.T) {
	a := New()
	tA := a.GetShared(nil, nil)
	assert.False(t, a.Break(tA), "no waiter behind A, so break is a no-op")
}

func TestCorrelationStableAcrossReissue(t *testing.T) {
	a := New()
	tA := a.GetShared(nil, nil)
	c1 := a.Correlation(tA)
	assert.NotEmpty(t, c1)

	a.Reissue(tA, Shared)
	assert.Equal(t, c1, a.Correlation(tA), "reissue moves the ticket but keeps its correlation id")

	a.Delete(tA)
	assert.Empty(t, a.Correlation(tA), "a deleted ticket has no correlation id")
}

func TestKindForTable(t *testing.T) {
	assert.Equal(t, Shared, KindFor(ClassRead, RoleLeader, false))
	assert.Equal(t, Exclusive, KindFor(ClassWrite, RoleLeader, false))
	assert.Equal(t, Shared, KindFor(ClassWrite, RoleReplica, false))
	assert.Equal(t, Shared, KindFor(ClassSync, RoleFollower, false))
	assert.Equal(t, Exclusive, KindFor(ClassSync, RoleLeader, false))
	assert.Equal(t, Shared, KindFor(ClassStatus, RoleLeader, false))
	assert.Equal(t, None, KindFor(ClassStatus, RoleFollower, false))
	assert.Equal(t, None, KindFor(ClassRead, RoleLeader, true), "error status always gets none")
}
