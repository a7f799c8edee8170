package iterator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"graphd/internal/pid"
)

// List is a primitive source iterator backed by an explicit, sorted set
// of PIDs. It stands in for the store-backed word/prefix/VIP source
// iterators spec.md §4.2 describes: those ultimately reduce to "the next
// PID in a sorted postings sequence, within [lo,hi], spending
// CostIterator per step," which is exactly what List implements. A real
// build wires a store-backed equivalent behind the same Iterator
// interface; List itself is also directly useful as the leaf of
// composer trees in tests (spec.md §8).
type List struct {
	tag string // type tag under which this List registers for thaw
	ids []pid.PID
	dir Direction

	// cur is the index of the next element Next(Forward) would return;
	// for Reverse it is the index of the next element Next(Reverse)
	// would return, counting from the end.
	cur int
}

// NewList creates a forward List over ids, which need not be
// pre-sorted; tag identifies this list's kind for Freeze/Thaw.
func NewList(tag string, ids []pid.PID) *List {
	sorted := append([]pid.PID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &List{tag: tag, ids: sorted, dir: Forward}
}

// NewReverseList creates a List that enumerates ids from highest to
// lowest.
func NewReverseList(tag string, ids []pid.PID) *List {
	l := NewList(tag, ids)
	l.dir = Reverse
	return l
}

func (l *List) Direction() Direction { return l.dir }

func (l *List) Next(lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	if !budget.Spend(CostIterator) {
		return 0, More, nil
	}
	if l.dir == Forward {
		for l.cur < len(l.ids) {
			id := l.ids[l.cur]
			l.cur++
			if id < lo {
				continue
			}
			if id > hi {
				l.cur = len(l.ids)
				return 0, NO, nil
			}
			return id, OK, nil
		}
		return 0, NO, nil
	}

	for l.cur < len(l.ids) {
		id := l.ids[len(l.ids)-1-l.cur]
		l.cur++
		if id > hi {
			continue
		}
		if id < lo {
			l.cur = len(l.ids)
			return 0, NO, nil
		}
		return id, OK, nil
	}
	return 0, NO, nil
}

// Find advances past any already-returned elements and returns the
// first remaining id satisfying the direction's ordering relative to
// target, within [lo, hi].
func (l *List) Find(lo, hi, target pid.PID, budget *Budget) (pid.PID, Status, error) {
	if l.dir == Forward && target > lo {
		lo = target
	}
	if l.dir == Reverse && target < hi {
		hi = target
	}
	return l.Next(lo, hi, budget)
}

func (l *List) Statistics(budget *Budget) (Statistics, Status, error) {
	if !budget.Spend(CostIterator) {
		return Statistics{}, More, nil
	}
	remaining := len(l.ids) - l.cur
	return Statistics{TotalN: int64(remaining), NextCost: CostIterator}, OK, nil
}

func (l *List) NValid() bool { return true }
func (l *List) N() int64     { return int64(len(l.ids)) }

// Freeze encodes the list's type tag, direction, cursor position, and
// full id set as a space-separated decimal fragment. Real source iterators
// freeze far less (just a resumption key into the store); List freezes
// its whole contents because it has no backing store to re-query from.
func (l *List) Freeze() ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %d", l.tag, l.dir, l.cur)
	for _, id := range l.ids {
		fmt.Fprintf(&b, " %d", id)
	}
	return []byte(b.String()), nil
}

// ThawList reconstructs a List from bytes produced by Freeze. It is
// registered with a Factory under the List's tag by callers that need
// cursor thaw support for list-backed iterators (mainly tests and
// in-memory demo sources).
func ThawList(tag string) Thawer {
	return func(data []byte, _ []Iterator) (Iterator, error) {
		fields := strings.Fields(string(data))
		if len(fields) < 3 {
			return nil, fmt.Errorf("iterator: malformed list fragment")
		}
		dir, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		cur, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, err
		}
		ids := make([]pid.PID, 0, len(fields)-3)
		for _, f := range fields[3:] {
			n, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, err
			}
			ids = append(ids, pid.PID(n))
		}
		l := &List{tag: tag, ids: ids, dir: Direction(dir), cur: cur}
		return l, nil
	}
}
