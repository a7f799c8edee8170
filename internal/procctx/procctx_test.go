package procctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/storable"
)

func TestInterfaceIDsInternAssignsStableIncreasingIDs(t *testing.T) {
	ids := NewInterfaceIDs()
	a := ids.Intern("node")
	b := ids.Intern("edge")
	aAgain := ids.Intern("node")

	assert.Equal(t, a, aAgain)
	assert.NotEqual(t, a, b)
}

func TestInterfaceIDsLookupMissingReportsNotOK(t *testing.T) {
	ids := NewInterfaceIDs()
	_, ok := ids.Lookup("nope")
	assert.False(t, ok)

	id := ids.Intern("nope")
	got, ok := ids.Lookup("nope")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestNewDefaultsNilLoggerToNop(t *testing.T) {
	ctx := New(nil, nil, nil)
	require.NotNil(t, ctx.Logger)
	assert.NotPanics(t, func() { ctx.Logger.Info("ok") })
}

func TestForwardIsNoOpWithoutSMP(t *testing.T) {
	ctx := New(nil, nil, nil)
	assert.NoError(t, ctx.Forward("t1", []byte("payload")))
}

type stubForwarder struct {
	ticket  string
	payload []byte
	err     error
}

func (s *stubForwarder) Forward(ticket string, payload []byte) error {
	s.ticket = ticket
	s.payload = payload
	return s.err
}

func TestForwardDelegatesToConfiguredSMP(t *testing.T) {
	stub := &stubForwarder{}
	ctx := New(nil, nil, stub)
	require.NoError(t, ctx.Forward("t1", []byte("payload")))
	assert.Equal(t, "t1", stub.ticket)
	assert.Equal(t, []byte("payload"), stub.payload)
}

func TestForwardPropagatesSMPError(t *testing.T) {
	stub := &stubForwarder{err: errors.New("down")}
	ctx := New(nil, nil, stub)
	assert.Error(t, ctx.Forward("t1", nil))
}

func TestContextCarriesCacheReference(t *testing.T) {
	cache := storable.New(1024, nil)
	ctx := New(cache, nil, nil)
	assert.Same(t, cache, ctx.Cache)
}
