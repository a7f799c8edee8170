package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/iterator"
)

// countingFrame spends one budget unit per Run call and reports Done
// once it has spent `steps` units.
type countingFrame struct {
	steps int
	spent int
}

func (f *countingFrame) Run(s *Stack, b *iterator.Budget) (Outcome, error) {
	if !b.Spend(1) {
		return More, nil
	}
	f.spent++
	if f.spent >= f.steps {
		return Done, nil
	}
	return More, nil
}

// pushingFrame pushes a child on its first Run call, then reports Done
// on the call after the child has fully drained off the stack.
type pushingFrame struct {
	child  Frame
	pushed bool
}

func (f *pushingFrame) Run(s *Stack, b *iterator.Budget) (Outcome, error) {
	if !f.pushed {
		f.pushed = true
		s.Push(f.child)
		return More, nil
	}
	return Done, nil
}

func TestStackRunsSingleFrameToDone(t *testing.T) {
	s := NewStack()
	s.Push(&countingFrame{steps: 3})
	budget := &iterator.Budget{Cost: 10}

	outcome, err := s.Run(budget)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 7, budget.Cost)
}

func TestStackSuspendsOnBudgetExhaustion(t *testing.T) {
	s := NewStack()
	s.Push(&countingFrame{steps: 5})
	budget := &iterator.Budget{Cost: 2}

	outcome, err := s.Run(budget)
	require.NoError(t, err)
	assert.Equal(t, More, outcome)
	assert.Equal(t, 1, s.Len(), "unfinished frame stays on the stack")

	budget.Cost += 10
	outcome, err = s.Run(budget)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome, "re-entering resumes the same frame")
}

func TestStackChildRunsToCompletionBeforeParentResumes(t *testing.T) {
	child := &countingFrame{steps: 2}
	parent := &pushingFrame{child: child}

	s := NewStack()
	s.Push(parent)
	budget := &iterator.Budget{Cost: 100}

	outcome, err := s.Run(budget)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	assert.Equal(t, 2, child.spent, "child must run to completion")
	assert.Equal(t, 0, s.Len())
}

// erroringFrame always fails with a terminal outcome.
type erroringFrame struct{}

func (erroringFrame) Run(s *Stack, b *iterator.Budget) (Outcome, error) {
	return Syntax, NewPositionError(Syntax, 4, "unexpected token")
}

func TestStackPropagatesTerminalErrorWithoutPopping(t *testing.T) {
	s := NewStack()
	s.Push(erroringFrame{})
	budget := &iterator.Budget{Cost: 10}

	outcome, err := s.Run(budget)
	assert.Equal(t, Syntax, outcome)
	require.Error(t, err)
	assert.Equal(t, 1, s.Len(), "resource teardown, not the stack loop, pops an errored frame")
}

type suspendRecorder struct {
	suspended bool
}

func (s *suspendRecorder) Run(*Stack, *iterator.Budget) (Outcome, error) { return More, nil }
func (s *suspendRecorder) Suspend()                                     { s.suspended = true }
func (s *suspendRecorder) Unsuspend()                                   { s.suspended = false }

func TestSuspendAllOnlyTouchesSuspendableFrames(t *testing.T) {
	s := NewStack()
	rec := &suspendRecorder{}
	s.Push(&countingFrame{steps: 1})
	s.Push(rec)

	s.SuspendAll()
	assert.True(t, rec.suspended)

	s.UnsuspendAll()
	assert.False(t, rec.suspended)
}
