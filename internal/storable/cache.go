// Package storable implements C1, the content-addressed, LRU-evicted
// cache of expensive iterator/intermediate state (spec.md §4.1). Records
// are addressable either by content hash (to dedupe equal values) or by
// an opaque ticket that survives across requests.
//
// Grounded on internal/infrastructure/cache/memory_cache.go's
// container/list LRU + byte-budget + zap-logged eviction shape (teacher
// repo 2lar-b2, backend module), adapted from byte-slice values to
// arbitrary Storable values addressed by both hash and ticket.
package storable

import (
	"container/list"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Storable is a cacheable value: content hashing and equality let the
// cache dedupe two logically-equal values into one cached record.
type Storable interface {
	// Type is a short tag identifying the storable's concrete kind, used
	// by Cache.Thaw's optional type check.
	Type() string
	// Hash is the content hash used to find candidate equal records.
	Hash() uint64
	// Equal reports whether o is equal under this storable's own
	// equality predicate (not necessarily Go ==).
	Equal(o Storable) bool
	// Size is the accounted byte size of the storable's payload, not
	// counting the cache's own per-record bookkeeping overhead.
	Size() int64
}

// recordOverhead is the accounted bookkeeping size of one cache record,
// added to each storable's own Size() per spec.md §3's "resource_size(r)".
const recordOverhead = 64

// record is one cached entry, threaded into both lookup indexes and the
// global LRU list.
type record struct {
	ticket  Ticket
	value   Storable
	hash    uint64
	refs    int
	used    bool
	lruElem *list.Element

	// hashNext/hashPrev thread this record into its hash bucket's
	// collision chain (spec.md §4.1: "chain of records equal under the
	// storable's equality predicate").
	hashNext, hashPrev *record
}

// Cache is C1: the storable cache. One Cache is process-wide state,
// threaded explicitly rather than held in a global (spec.md §9 design
// note on process-wide state).
type Cache struct {
	mu sync.Mutex

	maxBytes    int64
	totalBytes  int64
	hashTable   map[uint64]*record
	ticketTable map[Ticket]*record
	lru         *list.List // front = most recently used, back = oldest

	group  singleflight.Group
	logger *zap.Logger

	hits, misses, evictions, rejections int64
}

// New creates a Cache with the given byte budget. maxBytes must be > 0.
func New(maxBytes int64, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		maxBytes:    maxBytes,
		hashTable:   make(map[uint64]*record),
		ticketTable: make(map[Ticket]*record),
		lru:         list.New(),
		logger:      logger,
	}
}

// Store finds or creates a cached record for value and returns its
// ticket. If an equal record already exists, its existing ticket is
// returned and it is promoted to the LRU's most-recently-used end. If
// value alone would exceed half the configured byte budget, Store
// returns the sentinel ticket "x" and does not cache value (spec.md §4.1,
// §8 invariant).
//
// Concurrent Store calls for content with the same hash are collapsed
// into one allocation via singleflight, guarding against the cache
// stampede the teacher's own memory_cache.go comments flag but doesn't
// solve (DESIGN.md).
func (c *Cache) Store(value Storable) (Ticket, error) {
	h := value.Hash()
	size := recordOverhead + value.Size()

	if size > c.maxBytes/2 {
		c.mu.Lock()
		c.rejections++
		c.mu.Unlock()
		c.logger.Warn("storable rejected: exceeds half of cache budget",
			zap.String("type", value.Type()),
			zap.Int64("size", size),
			zap.Int64("max_bytes", c.maxBytes),
		)
		return sentinelTooLarge, nil
	}

	key := ticketGroupKey(h)
	ticketAny, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if existing := c.findEqualLocked(h, value); existing != nil {
			c.lru.MoveToFront(existing.lruElem)
			return existing.ticket, nil
		}

		rec := &record{
			ticket: mintTicket(),
			value:  value,
			hash:   h,
		}
		c.linkHashLocked(rec)
		rec.lruElem = c.lru.PushFront(rec)
		c.ticketTable[rec.ticket] = rec
		c.totalBytes += size

		c.evictToHalfLocked()

		return rec.ticket, nil
	})
	if err != nil {
		return "", err
	}
	return ticketAny.(Ticket), nil
}

// findEqualLocked scans the hash bucket for h and returns the first
// record equal to value under value's own equality predicate, or nil.
// Caller must hold c.mu.
func (c *Cache) findEqualLocked(h uint64, value Storable) *record {
	for r := c.hashTable[h]; r != nil; r = r.hashNext {
		if r.value.Equal(value) {
			return r
		}
	}
	return nil
}

// linkHashLocked inserts rec at the head of its hash bucket's collision
// chain. Caller must hold c.mu.
func (c *Cache) linkHashLocked(rec *record) {
	head := c.hashTable[rec.hash]
	rec.hashNext = head
	if head != nil {
		head.hashPrev = rec
	}
	c.hashTable[rec.hash] = rec
}

// unlinkHashLocked removes rec from its hash bucket's collision chain.
// Caller must hold c.mu.
func (c *Cache) unlinkHashLocked(rec *record) {
	if rec.hashPrev != nil {
		rec.hashPrev.hashNext = rec.hashNext
	} else {
		if rec.hashNext != nil {
			c.hashTable[rec.hash] = rec.hashNext
		} else {
			delete(c.hashTable, rec.hash)
		}
	}
	if rec.hashNext != nil {
		rec.hashNext.hashPrev = rec.hashPrev
	}
	rec.hashNext, rec.hashPrev = nil, nil
}

// evictToHalfLocked evicts from the LRU head (oldest) while total
// exceeds maxBytes, stopping once total <= maxBytes/2, per spec.md §3's
// invariant and §4.1's store() post-condition. Caller must hold c.mu.
func (c *Cache) evictToHalfLocked() {
	if c.totalBytes <= c.maxBytes {
		return
	}
	for c.totalBytes > c.maxBytes/2 {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		rec := oldest.Value.(*record)
		c.flushLocked(rec)
		c.evictions++
	}
}

// flushLocked removes rec from both indexes and the LRU list and
// accounts for its size. Caller must hold c.mu.
func (c *Cache) flushLocked(rec *record) {
	c.unlinkHashLocked(rec)
	delete(c.ticketTable, rec.ticket)
	c.lru.Remove(rec.lruElem)
	c.totalBytes -= recordOverhead + rec.value.Size()
}

// Lookup resolves ticket to its cached Storable. The first byte of
// ticket must be ascii-alnum (spec.md §4.1); a malformed or missing
// ticket is a miss, never an error — cursors must degrade gracefully
// (spec.md §8: "thawing a cursor after full cache flush... never a
// truncated or reordered suffix").
func (c *Cache) Lookup(ticket Ticket) (Storable, bool) {
	s := string(ticket)
	if s == "" || !isAlnum(s[0]) {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.ticketTable[ticket]
	if !ok {
		c.misses++
		return nil, false
	}
	rec.used = true
	c.lru.MoveToFront(rec.lruElem)
	c.hits++
	return rec.value, true
}

// Thaw consumes a ticket lexeme from the front of s, looks it up, and
// (if expectedType is non-empty) verifies its Type() matches. It returns
// the resolved value, the remaining unconsumed input, and whether the
// ticket was found and well-typed.
func (c *Cache) Thaw(s string, expectedType string) (value Storable, rest string, ok bool) {
	lexeme, rest, lexOK := scanTicket(s)
	if !lexOK {
		return nil, s, false
	}
	value, found := c.Lookup(Ticket(lexeme))
	if !found {
		return nil, rest, false
	}
	if expectedType != "" && value.Type() != expectedType {
		return nil, rest, false
	}
	return value, rest, true
}

// Flush removes the cached record named by ticket, if any.
func (c *Cache) Flush(ticket Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.ticketTable[ticket]
	if !ok {
		return
	}
	c.flushLocked(rec)
}

// Stats is a point-in-time snapshot of cache counters, exposed over the
// admin surface (interfaces/http/rest) and as Prometheus gauges
// (infrastructure/metrics).
type Stats struct {
	Entries    int
	TotalBytes int64
	MaxBytes   int64
	Hits       int64
	Misses     int64
	Evictions  int64
	Rejections int64
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:    len(c.ticketTable),
		TotalBytes: c.totalBytes,
		MaxBytes:   c.maxBytes,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Rejections: c.rejections,
	}
}

func ticketGroupKey(h uint64) string {
	return "h:" + hashKeyHex(h)
}

func hashKeyHex(h uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[h&0xf]
		h >>= 4
	}
	return string(buf)
}

func (t Ticket) String() string { return string(t) }
