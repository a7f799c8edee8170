package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/internal/storable"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"plain-ascii",
		"has (parens) and : colon and \" quote and \\ backslash and % percent",
		string([]byte{0x00, 0x01, 0x1f, 0x7f, 0xff}),
		"",
	} {
		escaped := Escape([]byte(s))
		back, ok := Unescape(escaped)
		require.True(t, ok)
		assert.Equal(t, s, string(back))
	}
}

func TestUnescapeMalformedReturnsNotOK(t *testing.T) {
	_, ok := Unescape("%")
	assert.False(t, ok)
	_, ok = Unescape("%G1")
	assert.False(t, ok)
	_, ok = Unescape("abc%")
	assert.False(t, ok)
}

func TestEscapesReservedBytes(t *testing.T) {
	escaped := Escape([]byte(`(a):b"c\d%e`))
	back, ok := Unescape(escaped)
	require.True(t, ok)
	assert.Equal(t, `(a):b"c\d%e`, string(back))
	assert.NotContains(t, escaped, "(")
	assert.NotContains(t, escaped, "\\")
}

func TestBuilderInlinesSmallFragments(t *testing.T) {
	b := NewBuilder(nil)
	b.WriteFragment([]byte("small"))
	frozen := b.Bytes()
	assert.NotContains(t, string(frozen), "@")

	r := NewReader(nil, frozen)
	data, ok, missed := r.ReadFragment()
	require.True(t, ok)
	assert.False(t, missed)
	assert.Equal(t, "small", string(data))
}

func TestBuilderSwapsOversizeFragments(t *testing.T) {
	cache := storable.New(1_000_000, nil)
	b := NewBuilder(cache).WithSwapThreshold(4)
	b.WriteFragment([]byte("this fragment is longer than four bytes"))
	frozen := b.Bytes()
	assert.Contains(t, string(frozen), "@")

	r := NewReader(cache, frozen)
	data, ok, missed := r.ReadFragment()
	require.True(t, ok)
	assert.False(t, missed)
	assert.Equal(t, "this fragment is longer than four bytes", string(data))
}

// TestMissingTicketGracefullyMisses mirrors spec.md §8's cursor
// robustness invariant: a missing ticket yields "start from scratch,"
// never an error.
func TestMissingTicketGracefullyMisses(t *testing.T) {
	cache := storable.New(1_000_000, nil)
	r := NewReader(cache, []byte("@nosuchticket"))
	data, ok, missed := r.ReadFragment()
	assert.Nil(t, data)
	assert.False(t, ok)
	assert.True(t, missed)
}

func TestMultipleFragmentsRoundTrip(t *testing.T) {
	cache := storable.New(1_000_000, nil)
	b := NewBuilder(cache)
	b.WriteFragment([]byte("first"))
	b.WriteFragment([]byte("second"))
	frozen := b.Bytes()

	r := NewReader(cache, frozen)
	d1, ok1, _ := r.ReadFragment()
	d2, ok2, _ := r.ReadFragment()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, "first", string(d1))
	assert.Equal(t, "second", string(d2))

	_, ok3, _ := r.ReadFragment()
	assert.False(t, ok3, "reader should be exhausted")
}
