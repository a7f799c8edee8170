package iterator

import (
	"fmt"

	"graphd/internal/pid"
)

// orTag is the type tag Or registers itself under for thaw.
const orTag = "or"

// Or is the union composer (spec.md §4.2's or_create): a k-way merge
// over its subiterators, each kept one element ahead via an internal
// peek buffer so a value produced by more than one subiterator is
// returned exactly once.
type Or struct {
	subs []Iterator
	dir  Direction

	peeked    []pid.PID
	peekedSet []bool
	done      []bool
}

// NewOr builds the union of subs. All subs must share the same
// Direction. Null subiterators are dropped; an empty result collapses
// to NewNull.
func NewOr(subs ...Iterator) (Iterator, error) {
	live := make([]Iterator, 0, len(subs))
	for _, s := range subs {
		if s == nil {
			continue
		}
		if _, isNull := s.(*Null); isNull {
			continue
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
			return nil, errMismatchedOrDirections
		}
	}
	return &Or{
		subs:      live,
		dir:       dir,
		peeked:    make([]pid.PID, len(live)),
		peekedSet: make([]bool, len(live)),
		done:      make([]bool, len(live)),
	}, nil
}

var errMismatchedOrDirections = fmt.Errorf("iterator: OR subiterators have mismatched directions")

func (o *Or) Direction() Direction { return o.dir }

func (o *Or) Next(lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	if !budget.Spend(CostIterator) {
		return 0, More, nil
	}

	// Fill every peek slot that isn't already primed.
	for i, s := range o.subs {
		if o.done[i] || o.peekedSet[i] {
			continue
		}
		id, status, err := s.Next(lo, hi, budget)
		if err != nil {
			return 0, NO, err
		}
		switch status {
		case NO:
			o.done[i] = true
		case More:
			return 0, More, nil
		case OK:
			o.peeked[i] = id
			o.peekedSet[i] = true
		}
	}

	best := -1
	for i := range o.subs {
		if o.done[i] || !o.peekedSet[i] {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if o.dir == Forward {
			if o.peeked[i] < o.peeked[best] {
				best = i
			}
		} else if o.peeked[i] > o.peeked[best] {
			best = i
		}
	}
	if best == -1 {
		return 0, NO, nil
	}

	winner := o.peeked[best]
	for i := range o.subs {
		if o.peekedSet[i] && o.peeked[i] == winner {
			o.peekedSet[i] = false
		}
	}
	return winner, OK, nil
}

// Find drops any stale peeked values behind target, then re-peeks via
// each subiterator's own Find so the union stays sorted.
func (o *Or) Find(lo, hi, target pid.PID, budget *Budget) (pid.PID, Status, error) {
	if !budget.Spend(CostIterator) {
		return 0, More, nil
	}
	for i, s := range o.subs {
		if o.done[i] {
			continue
		}
		if o.peekedSet[i] {
			if o.dir == Forward && o.peeked[i] >= target {
				continue
			}
			if o.dir == Reverse && o.peeked[i] <= target {
				continue
			}
			o.peekedSet[i] = false
		}
		id, status, err := s.Find(lo, hi, target, budget)
		if err != nil {
			return 0, NO, err
		}
		switch status {
		case NO:
			o.done[i] = true
		case More:
			return 0, More, nil
		case OK:
			o.peeked[i] = id
			o.peekedSet[i] = true
		}
	}
	return o.Next(lo, hi, budget)
}

func (o *Or) Statistics(budget *Budget) (Statistics, Status, error) {
	if !budget.Spend(CostIterator) {
		return Statistics{}, More, nil
	}
	var total, cost int64
	for _, s := range o.subs {
		st, status, err := s.Statistics(budget)
		if err != nil {
			return Statistics{}, NO, err
		}
		if status != OK {
			return Statistics{}, status, nil
		}
		total += st.TotalN
		cost += st.NextCost
	}
	return Statistics{TotalN: total, NextCost: cost}, OK, nil
}

func (o *Or) NValid() bool { return false }
func (o *Or) N() int64     { return 0 }

func (o *Or) Freeze() ([]byte, error) {
	return []byte(orTag), nil
}

// ThawOr is the Thawer for Or.
func ThawOr(data []byte, sub []Iterator) (Iterator, error) {
	return NewOr(sub...)
}
