package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorDistinguishesControlFlowFromFailure(t *testing.T) {
	for _, o := range []Outcome{Done, NO, More} {
		assert.False(t, o.IsError(), "%s is not an error outcome", o)
	}
	for _, o := range []Outcome{Lexical, Syntax, Semantics, Range, Nomem, System} {
		assert.True(t, o.IsError(), "%s is a terminal error outcome", o)
	}
}

func TestErrorFormatsPositionWhenPresent(t *testing.T) {
	withPos := NewPositionError(Syntax, 12, "bad token")
	assert.Contains(t, withPos.Error(), "12")
	assert.Contains(t, withPos.Error(), "SYNTAX")

	noPos := NewError(System, "store unavailable")
	assert.NotContains(t, noPos.Error(), "at -1")
}
