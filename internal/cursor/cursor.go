// Package cursor implements C8, cursor freeze/thaw: serializing engine
// and iterator state to an escape-safe byte string, with large
// fragments swapped out to the storable cache (spec.md §4.8).
//
// Grounded on internal/pid's byte-encoding helpers plus the teacher's
// typed (un)marshal-with-escaping shape in
// infrastructure/persistence/dynamodb/* (teacher repo 2lar-b2/backend2);
// ticket swap-out reuses internal/storable directly rather than
// reimplementing its own cache.
package cursor

import (
	"fmt"
	"strings"

	"graphd/internal/storable"
)

// reservedBytes are the printable-ASCII bytes that Escape still escapes
// even though they are themselves printable: '(' ')' ':' '%' '"' '\'.
// Everything else outside printable ASCII, plus these, must be escaped.
const reservedBytes = `():%"\`

// defaultSwapThreshold is "1 + STAMP_SIZE": once the unswapped fragment since
// an offset exceeds this many bytes, it is replaced with "@<ticket>"
// (spec.md §4.8). STAMP_SIZE here is sized to a minted
// storable.Ticket's typical length; builds that need the exact on-disk
// constant should override via WithSwapThreshold.
const defaultSwapThreshold = 32

// Escape encodes b as a cursor-safe byte string: bytes outside printable
// ASCII or in reservedBytes become "%HH" (two uppercase hex digits);
// everything else passes through unchanged.
func Escape(b []byte) string {
	var out strings.Builder
	for _, c := range b {
		if needsEscape(c) {
			fmt.Fprintf(&out, "%%%02X", c)
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

func needsEscape(c byte) bool {
	if c < 0x20 || c > 0x7e {
		return true
	}
	return strings.IndexByte(reservedBytes, c) >= 0
}

// Unescape decodes a string produced by Escape. It returns ok=false on a
// malformed "%" escape (missing or non-hex digits), mirroring spec.md
// §4.8's "returns null on malformed %-escapes."
func Unescape(s string) (out []byte, ok bool) {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			buf = append(buf, c)
			continue
		}
		if i+2 >= len(s) {
			return nil, false
		}
		hi, okHi := hexVal(s[i+1])
		lo, okLo := hexVal(s[i+2])
		if !okHi || !okLo {
			return nil, false
		}
		buf = append(buf, byte(hi<<4|lo))
		i += 2
	}
	return buf, true
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// cursorBlob adapts a raw byte fragment to storable.Storable so oversize
// cursor fragments can be swapped into the shared C1 cache.
type cursorBlob struct {
	data []byte
}

func (b cursorBlob) Type() string { return "cursor_fragment" }
func (b cursorBlob) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for _, c := range b.data {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}
func (b cursorBlob) Equal(o storable.Storable) bool {
	ob, ok := o.(cursorBlob)
	return ok && string(ob.data) == string(b.data)
}
func (b cursorBlob) Size() int64 { return int64(len(b.data)) }

// Builder accumulates cursor bytes for Freeze. Writers append fragments
// (iterator state, scheduler pointers, frame positions); Builder decides
// per-fragment whether to inline it or swap it to the cache.
type Builder struct {
	cache         *storable.Cache
	swapThreshold int
	buf           strings.Builder
}

// NewBuilder creates a Builder backed by cache for ticket swap-out.
func NewBuilder(cache *storable.Cache) *Builder {
	return &Builder{cache: cache, swapThreshold: defaultSwapThreshold}
}

// WithSwapThreshold overrides the default swap threshold (tests only
// need this to exercise both code paths without huge fixtures).
func (b *Builder) WithSwapThreshold(n int) *Builder {
	b.swapThreshold = n
	return b
}

// WriteFragment appends one escape-safe fragment to the cursor, storing
// it behind a "@<ticket>" reference instead when it would exceed the
// swap threshold (spec.md §4.8). Spaces and a leading '@' are escaped
// too, since Reader uses them as the fragment separator and ticket marker.
func (b *Builder) WriteFragment(raw []byte) {
	escaped := strings.ReplaceAll(Escape(raw), " ", "%20")
	if strings.HasPrefix(escaped, "@") {
		escaped = "%40" + escaped[1:]
	}
	if len(escaped) <= b.swapThreshold || b.cache == nil {
		b.buf.WriteString(escaped)
		b.buf.WriteByte(' ')
		return
	}
	ticket, err := b.cache.Store(cursorBlob{data: raw})
	if err != nil || ticket == "" {
		b.buf.WriteString(escaped)
		b.buf.WriteByte(' ')
		return
	}
	b.buf.WriteByte('@')
	b.buf.WriteString(string(ticket))
	b.buf.WriteByte(' ')
}

// Bytes returns the accumulated cursor, ready to hand to the client.
func (b *Builder) Bytes() []byte {
	return []byte(strings.TrimRight(b.buf.String(), " "))
}

// Reader parses fragments back out of a frozen cursor in the order
// Builder wrote them.
type Reader struct {
	cache  *storable.Cache
	remain string
}

// NewReader creates a Reader over a frozen cursor's bytes.
func NewReader(cache *storable.Cache, cursor []byte) *Reader {
	return &Reader{cache: cache, remain: string(cursor)}
}

// ReadFragment consumes and decodes the next fragment. If the fragment
// was swapped to a ticket and the ticket now misses (cache flushed,
// process restarted), ReadFragment returns ok=false with missed=true:
// callers must treat this as "start from scratch," never as an error
// surfaced to the user (spec.md §4.8).
func (r *Reader) ReadFragment() (data []byte, ok bool, missed bool) {
	r.remain = strings.TrimLeft(r.remain, " ")
	if r.remain == "" {
		return nil, false, false
	}

	var token string
	if idx := strings.IndexByte(r.remain, ' '); idx >= 0 {
		token, r.remain = r.remain[:idx], r.remain[idx+1:]
	} else {
		token, r.remain = r.remain, ""
	}

	if strings.HasPrefix(token, "@") {
		if r.cache == nil {
			return nil, false, true
		}
		val, found := r.cache.Lookup(storable.Ticket(token[1:]))
		if !found {
			return nil, false, true
		}
		blob, isBlob := val.(cursorBlob)
		if !isBlob {
			return nil, false, true
		}
		return blob.data, true, false
	}

	data, ok = Unescape(token)
	return data, ok, false
}
