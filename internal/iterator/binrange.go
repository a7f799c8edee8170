package iterator

import (
	"fmt"
	"strconv"

	"graphd/internal/pid"
)

// binRangeTag is the type tag BinRange registers itself under for thaw.
const binRangeTag = "binrange"

// BinToIterator resolves one string bin to the sub-iterator over the
// primitive IDs that fall in it. The octet comparator's bin bookkeeping
// (PDB_BINSET_STRINGS) is an external collaborator (spec.md §1); callers
// supply it here.
type BinToIterator func(bin int) (Iterator, error)

// BinRange is the worked octet-comparator bin-range iterator from
// spec.md §4.2: state is (loBin, hiBin, curBin); each Next emits one
// sub-iterator per bin via BinToIterator, spending CostIterator per bin
// visited, and returns NO once curBin runs past hiBin.
type BinRange struct {
	loBin, hiBin int
	curBin       int
	dir          Direction
	toIter       BinToIterator
	primitivesN  int64

	cur Iterator // the sub-iterator for the current bin, or nil
}

// NewBinRange creates a BinRange over bins [loBin, hiBin] (inclusive),
// walked in dir. primitivesN is the total primitive count used by
// Statistics' cardinality estimate.
func NewBinRange(loBin, hiBin int, dir Direction, primitivesN int64, toIter BinToIterator) *BinRange {
	start := loBin
	if dir == Reverse {
		start = hiBin
	}
	return &BinRange{
		loBin: loBin, hiBin: hiBin, curBin: start,
		dir: dir, toIter: toIter, primitivesN: primitivesN,
	}
}

func (b *BinRange) Direction() Direction { return b.dir }

// Next advances through bins, delegating to each bin's sub-iterator
// until it is exhausted, then moving to the next bin. It returns NO
// once curBin has stepped past hiBin (Forward) or below loBin (Reverse),
// per spec.md §8 scenario 5.
func (b *BinRange) Next(lo, hi pid.PID, budget *Budget) (pid.PID, Status, error) {
	for {
		if b.dir == Forward && b.curBin > b.hiBin {
			return 0, NO, nil
		}
		if b.dir == Reverse && b.curBin < b.loBin {
			return 0, NO, nil
		}
		if !budget.Spend(CostIterator) {
			return 0, More, nil
		}

		if b.cur == nil {
			it, err := b.toIter(b.curBin)
			if err != nil {
				return 0, NO, err
			}
			b.cur = it
		}

		id, status, err := b.cur.Next(lo, hi, budget)
		if err != nil {
			return 0, NO, err
		}
		switch status {
		case OK:
			return id, OK, nil
		case More:
			return 0, More, nil
		case NO:
			b.cur = nil
			if b.dir == Forward {
				b.curBin++
			} else {
				b.curBin--
			}
			continue
		}
	}
}

// Find narrows [lo, hi] to target in the walk direction and resumes
// Next's bin walk from the current bin and sub-iterator. Bins are still
// visited in order; Find does not jump to the bin holding target.
func (b *BinRange) Find(lo, hi, target pid.PID, budget *Budget) (pid.PID, Status, error) {
	if b.dir == Forward && target > lo {
		lo = target
	}
	if b.dir == Reverse && target < hi {
		hi = target
	}
	return b.Next(lo, hi, budget)
}

// Statistics estimates total ≈ (hi-lo+1) × (primitives_n / (bin_end ×
// 2)), per spec.md §4.2. binEnd is the total number of bins
// (PDB_BINSET_STRINGS' cardinality); spec.md's known-bugs list flags
// that the original divides by bin_end*2 with no zero guard, treating a
// non-empty bin set as a precondition instead of a defensive check
// (DESIGN.md Open Questions) — Statistics asserts that here rather than
// silently returning a zero estimate.
func (b *BinRange) Statistics(budget *Budget) (Statistics, Status, error) {
	if !budget.Spend(CostIterator) {
		return Statistics{}, More, nil
	}
	binEnd := binEndHint(b)
	if binEnd <= 0 {
		panic("iterator: octet_vrange_statistics requires a non-empty bin set")
	}
	span := int64(b.hiBin-b.loBin) + 1
	total := span * (b.primitivesN / (int64(binEnd) * 2))
	return Statistics{TotalN: total, NextCost: CostIterator}, OK, nil
}

// binEndHint reports the span BinRange was constructed over as its
// stand-in for PDB_BINSET_STRINGS' total bin count, since the real bin
// table lives in the octet comparator (an external collaborator).
// Builds that wire a real comparator should construct BinRange with the
// comparator's actual bin_end instead of relying on this.
func binEndHint(b *BinRange) int {
	if b.hiBin >= b.loBin {
		return b.hiBin + 1
	}
	return 0
}

func (b *BinRange) NValid() bool { return false }
func (b *BinRange) N() int64     { return 0 }

// Freeze emits only curBin, as "%d" (spec.md §4.2).
func (b *BinRange) Freeze() ([]byte, error) {
	return []byte(strconv.Itoa(b.curBin)), nil
}

// NewBinRangeThawer returns a Thawer that rejects a frozen curBin outside [loBin-1, hiBin+1]
// (spec.md §4.2's thaw bounds check), and otherwise reconstructs a
// BinRange resuming from that bin. loBin, hiBin, dir, primitivesN, and
// toIter must be supplied by the caller (they are query-specific, not
// part of the frozen fragment) via NewBinRangeThawer.
func NewBinRangeThawer(loBin, hiBin int, dir Direction, primitivesN int64, toIter BinToIterator) Thawer {
	return func(data []byte, _ []Iterator) (Iterator, error) {
		curBin, err := strconv.Atoi(string(data))
		if err != nil {
			return nil, fmt.Errorf("iterator: malformed bin-range fragment: %w", err)
		}
		if curBin < loBin-1 || curBin > hiBin+1 {
			return nil, fmt.Errorf("iterator: frozen cur_bin %d outside [%d,%d]", curBin, loBin-1, hiBin+1)
		}
		return &BinRange{
			loBin: loBin, hiBin: hiBin, curBin: curBin,
			dir: dir, toIter: toIter, primitivesN: primitivesN,
		}, nil
	}
}
