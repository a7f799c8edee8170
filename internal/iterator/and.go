package iterator

import (
	"fmt"
	"sort"

	"graphd/internal/pid"
)

// andTag is the type tag And registers itself under for thaw.
const andTag = "and"

// And is the intersection composer (spec.md §4.2's and_create): a
// zig-zag join over its subiterators, re-probing each with Find until
// they all agree on the same candidate PID. Subiterators are ordered
// cheapest-statistics-first so the join probes the most selective
// condition first, same as every relational merge-join does.
type And struct {
	subs []Iterator
	dir  Direction
}

// NewAnd builds the intersection of subs. All subs must share the same
// Direction; NewAnd reports an error otherwise. A nil/empty subs list
// collapses to NewNull (spec.md: AND with no conjuncts matches
// everything in range, but graphd's engine never constructs one, so we
// treat it as the conservative empty set instead of silently scanning
// unbounded).
func NewAnd(subs ...Iterator) (Iterator, error) {
	live := make([]Iterator, 0, len(subs))
	for _, s := range subs {
		if s == nil {
			continue
		}
		if _, isNull := s.(*Null); isNull {
			return NewNull(), nil
		}
		live = append(live, s)
	}
	if len(live) == 0 {
		return NewNull(), nil
	}
	if len(live) == 1 {
		return live[0], nil
	}
	dir := live[0].Direction()
	for _, s := range live[1:] {
		if s.Direction() != dir {
			return nil, fmt.Errorf("iterator: AND subiterators have mismatched directions")
		}
	}
	orderByCost(live)
	return &And{subs: live, dir: dir}, nil
}

// orderByCost sorts subs by ascending estimated cardinality, using a
// throwaway budget: the composer's own ordering decision doesn't spend
// the caller's real budget (spec.md §4.2's "cheapest-first" guidance).
func orderByCost(subs []Iterator) {
	scratch := &Budget{Cost: 1 << 30}
	costs := make([]int64, len(subs))
	for i, s := range subs {
		st, status, err := s.Statistics(scratch)
		if err == nil && status == OK {
			costs[i] = st.TotalN
		} else {
			costs[i] = 1 << 62
		}
	}
	idx := make([]int, len(subs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return costs[idx[i]] < costs[idx[j]] })
	sorted := make([]Iterator, len(subs))
	for k, i := range idx {
		sorted[k] = subs[i]
	}
	copy(subs, sorted)
}

func (a *And) Direction() Direction { return a.dir }

func (a *And) Next(lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	candidate := lo
	if a.dir == Reverse {
		candidate = hi
	}
	return a.seek(candidate, lo, hi, budget)
}

func (a *And) Find(lo, hi, target pid.PID, budget *Budget) (pid.PID, Status, error) {
	return a.seek(target, lo, hi, budget)
}

// seek runs the zig-zag join starting from candidate, within [lo, hi].
func (a *And) seek(candidate, lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	if !budget.Spend(CostIterator) {
		return 0, More, nil
	}
	src := -1
	for {
		agreed := true
		for i, s := range a.subs {
			if i == src {
				continue
			}
			id, status, err := s.Find(lo, hi, candidate, budget)
			if err != nil {
				return 0, NO, err
			}
			switch status {
			case NO:
				return 0, NO, nil
			case More:
				return 0, More, nil
			}
			if id != candidate {
				candidate = id
				src = i
				if a.dir == Forward {
					if candidate > hi {
						return 0, NO, nil
					}
				} else if candidate < lo {
					return 0, NO, nil
				}
				agreed = false
				break
			}
		}
		if agreed {
			return candidate, OK, nil
		}
	}
}

func (a *And) Statistics(budget *Budget) (Statistics, Status, error) {
	if !budget.Spend(CostIterator) {
		return Statistics{}, More, nil
	}
	min := int64(-1)
	var cost int64
	for _, s := range a.subs {
		st, status, err := s.Statistics(budget)
		if err != nil {
			return Statistics{}, NO, err
		}
		if status != OK {
			return Statistics{}, status, nil
		}
		if min < 0 || st.TotalN < min {
			min = st.TotalN
		}
		cost += st.NextCost
	}
	if min < 0 {
		min = 0
	}
	return Statistics{TotalN: min, NextCost: cost}, OK, nil
}

func (a *And) NValid() bool { return false }
func (a *And) N() int64     { return 0 }

func (a *And) Freeze() ([]byte, error) {
	return []byte(andTag), nil
}

// ThawAnd is the Thawer for And: it reassembles the composer around
// already-thawed subiterators.
func ThawAnd(data []byte, sub []Iterator) (Iterator, error) {
	return NewAnd(sub...)
}
