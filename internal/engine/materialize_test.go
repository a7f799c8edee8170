package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/patternframe"
)

func TestMaterializeDeferredRewritesOnlyPfSetFrames(t *testing.T) {
	result := patternframe.List(patternframe.Count(), patternframe.Field("name"))
	compiled, err := patternframe.Compile(nil, result, nil)
	require.NoError(t, err)
	require.Len(t, compiled.Frames, 2, "result frame + temporary frame")

	pump := &countPump{value: 3}
	base, values := MaterializeDeferred(compiled, pump)
	pump.base = base
	require.Len(t, values, 2)

	assert.Equal(t, ValueDeferred, values[0].Kind, "the result frame carries the pf_set")
	assert.Equal(t, ValueScalar, values[1].Kind, "the temporary frame has no pf_set of its own")

	v, outcome, err := values[0].Deferred.Push()
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	assert.Equal(t, 3, v.Scalar)
	assert.Equal(t, base, values[0].Deferred.Base)
}
