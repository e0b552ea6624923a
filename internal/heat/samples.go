package heat

import (
	"github.com/google/btree"
)

// BoundarySample holds the boundary node values seen at one evaluation time.
type BoundarySample struct {
	Time  float64
	Left  float64
	Right float64
}

// sampleTree orders boundary samples by time. A second sample at an
// existing time replaces the first.
type sampleTree struct {
	tree *btree.BTreeG[BoundarySample]
}

func newSampleTree() *sampleTree {
	return &sampleTree{
		tree: btree.NewG(32, func(a, b BoundarySample) bool { return a.Time < b.Time }),
	}
}

func (s *sampleTree) record(sample BoundarySample) {
	s.tree.ReplaceOrInsert(sample)
}

func (s *sampleTree) len() int { return s.tree.Len() }

// floor returns the latest sample at or before t.
func (s *sampleTree) floor(t float64) (BoundarySample, bool) {
	var out BoundarySample
	found := false
	s.tree.DescendLessOrEqual(BoundarySample{Time: t}, func(item BoundarySample) bool {
		out, found = item, true
		return false
	})
	return out, found
}

// ceiling returns the earliest sample at or after t.
func (s *sampleTree) ceiling(t float64) (BoundarySample, bool) {
	var out BoundarySample
	found := false
	s.tree.AscendGreaterOrEqual(BoundarySample{Time: t}, func(item BoundarySample) bool {
		out, found = item, true
		return false
	})
	return out, found
}

// at interpolates the boundary values linearly between the samples
// bracketing t.
func (s *sampleTree) at(t float64) (left, right float64, ok bool) {
	lo, hasLo := s.floor(t)
	hi, hasHi := s.ceiling(t)
	switch {
	case !hasLo && !hasHi:
		return 0, 0, false
	case !hasHi:
		return lo.Left, lo.Right, true
	case !hasLo || lo.Time == hi.Time:
		return hi.Left, hi.Right, true
	}
	w := (t - lo.Time) / (hi.Time - lo.Time)
	return (1-w)*lo.Left + w*hi.Left, (1-w)*lo.Right + w*hi.Right, true
}

func (s *sampleTree) all() []BoundarySample {
	out := make([]BoundarySample, 0, s.tree.Len())
	s.tree.Ascend(func(item BoundarySample) bool {
		out = append(out, item)
		return true
	})
	return out
}
