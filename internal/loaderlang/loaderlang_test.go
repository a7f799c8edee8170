package loaderlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextExpressionSplitsOnBareNewline(t *testing.T) {
	expr, rest, ok := NextExpression("read (foo)\nwrite (bar)\n")
	require.True(t, ok)
	assert.Equal(t, "read (foo)", expr)
	assert.Equal(t, "write (bar)\n", rest)
}

func TestNextExpressionIgnoresNewlineInsideParens(t *testing.T) {
	expr, rest, ok := NextExpression("read (foo\nbar)\nwrite (baz)\n")
	require.True(t, ok)
	assert.Equal(t, "read (foo\nbar)", expr)
	assert.Equal(t, "write (baz)\n", rest)
}

func TestNextExpressionIgnoresNewlineInsideQuotes(t *testing.T) {
	expr, rest, ok := NextExpression("write \"line1\nline2\"\nnext\n")
	require.True(t, ok)
	assert.Equal(t, "write \"line1\nline2\"", expr)
	assert.Equal(t, "next\n", rest)
}

func TestNextExpressionReportsIncompleteInput(t *testing.T) {
	_, rest, ok := NextExpression("read (foo")
	assert.False(t, ok)
	assert.Equal(t, "read (foo", rest)
}

// TestNextExpressionCanonicalRoundTrip mirrors spec.md §8's round-trip
// property: re-splitting a stream built by joining commands with "\n"
// yields back the same token partitioning.
func TestNextExpressionCanonicalRoundTrip(t *testing.T) {
	commands := []string{"read (a)", "write (b (c))", `set "x\ny"`}
	stream := commands[0] + "\n" + commands[1] + "\n" + commands[2] + "\n"

	var got []string
	for {
		expr, rest, ok := NextExpression(stream)
		if !ok {
			break
		}
		got = append(got, expr)
		stream = rest
	}
	assert.Equal(t, commands, got)
}

func TestDotNumberRejectsEmptyDigits(t *testing.T) {
	_, ok := dotNumber("")
	assert.False(t, ok)
	_, ok = dotNumber("+")
	assert.False(t, ok)
	_, ok = dotNumber("-")
	assert.False(t, ok)
}

func TestDotNumberDetectsOverflow(t *testing.T) {
	_, ok := dotNumber("99999999999999999999999999")
	assert.False(t, ok)
}

func TestDotNumberSupportsSigned(t *testing.T) {
	n, ok := dotNumber("-3")
	require.True(t, ok)
	assert.Equal(t, int64(-3), n)

	n, ok = dotNumber("+3")
	require.True(t, ok)
	assert.Equal(t, int64(3), n)
}

func TestParseVarRefWithDotPath(t *testing.T) {
	ref, ok := ParseVarRef("$result.0.-1")
	require.True(t, ok)
	assert.Equal(t, "result", ref.Name)
	assert.Equal(t, []int64{0, -1}, ref.Path)
}

func TestParseVarRefRejectsNonDollar(t *testing.T) {
	_, ok := ParseVarRef("result.0")
	assert.False(t, ok)
}

func TestResolveIndexNegativeFromEnd(t *testing.T) {
	idx, ok := ResolveIndex(5, -1)
	require.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestResolveIndexOutOfRangeReportsNotOK(t *testing.T) {
	_, ok := ResolveIndex(3, 3)
	assert.False(t, ok)
	_, ok = ResolveIndex(3, -4)
	assert.False(t, ok)
}

func TestParseAssignmentConditionalVsUnconditional(t *testing.T) {
	a, ok := ParseAssignment("x => (read foo)")
	require.True(t, ok)
	assert.Equal(t, Conditional, a.Kind)
	assert.Equal(t, "x", a.Var)
	assert.Equal(t, "(read foo)", a.Expr)

	b, ok := ParseAssignment("y = (write bar)")
	require.True(t, ok)
	assert.Equal(t, Unconditional, b.Kind)
	assert.Equal(t, "y", b.Var)
}

func TestParseAssignmentFalseForPlainCommand(t *testing.T) {
	_, ok := ParseAssignment("read (foo)")
	assert.False(t, ok)
}

func TestRewriteImplicitWritePrependsOnlyWhenNeeded(t *testing.T) {
	assert.Equal(t, "write foo", RewriteImplicitWrite("foo"))
	assert.Equal(t, "read foo", RewriteImplicitWrite("read foo"))
	assert.Equal(t, "status", RewriteImplicitWrite("status"))
}

func TestWindowAdmitsUpToCeilingThenRefuses(t *testing.T) {
	w := NewWindow()
	for i := 0; i < MaxOutstanding; i++ {
		require.True(t, w.Admit())
	}
	assert.False(t, w.Admit())
	assert.Equal(t, MaxOutstanding, w.Outstanding())

	w.Release()
	assert.True(t, w.Admit())
}

func TestWindowLowWatermark(t *testing.T) {
	w := NewWindow()
	assert.True(t, w.BelowLowWatermark())
	for i := 0; i < MinOutstanding; i++ {
		w.Admit()
	}
	assert.False(t, w.BelowLowWatermark())
}
