package iterator

import "graphd/internal/pid"

// nullTag is the type tag Null registers itself under for thaw.
const nullTag = "null"

// Null is the iterator that matches nothing, per spec.md §4.2's
// null_create: the identity element for OR, and the annihilator for
// AND.
type Null struct{}

// NewNull returns the shared empty iterator.
func NewNull() *Null { return &Null{} }

func (n *Null) Direction() Direction { return Forward }

func (n *Null) Next(lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	return 0, NO, nil
}

func (n *Null) Find(lo, hi, target pid.PID, budget *Budget) (pid.PID, Status, error) {
	return 0, NO, nil
}

func (n *Null) Statistics(budget *Budget) (Statistics, Status, error) {
	return Statistics{TotalN: 0, NextCost: 0}, OK, nil
}

func (n *Null) NValid() bool { return true }
func (n *Null) N() int64     { return 0 }

func (n *Null) Freeze() ([]byte, error) { return []byte(nullTag), nil }

// ThawNull is the Thawer for Null, registered under nullTag.
func ThawNull(data []byte, sub []Iterator) (Iterator, error) {
	return NewNull(), nil
}
