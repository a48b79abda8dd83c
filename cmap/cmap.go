// Package cmap implements Cmap, the cumulative map that partitions
// the real line into the variable-width bins an adaptive sketch
// counts against. A Cmap is an immutable value: rebinning (see
// rebinning.go) always produces a new one rather than mutating an
// existing map in place, mirroring how the teacher's KLL sketch
// treats each compaction as producing a fresh sorted view rather than
// touching one shared array underneath a live reader.
package cmap

import (
	"math"

	"github.com/kailuowang/flip/common"
	"github.com/kailuowang/flip/internal"
)

// Cmap is an ordered partition of the real line into Size() finite
// bins plus two infinite sentinel tails. boundaries holds Size()+1
// strictly increasing finite values: boundaries[0] is the low edge of
// the finite range, boundaries[len-1] its high edge.
type Cmap struct {
	boundaries []float64
}

// NewUniform returns the Cmap with size-1 interior boundaries equally
// spaced on [start, end], i.e. size equal-width finite bins.
func NewUniform(size int, start, end float64) (*Cmap, error) {
	if size < 1 {
		return nil, common.ErrInvalidSize
	}
	if !(start < end) {
		return nil, common.ErrInvertedBounds
	}
	boundaries := make([]float64, size+1)
	step := (end - start) / float64(size)
	for i := 0; i <= size; i++ {
		boundaries[i] = start + step*float64(i)
	}
	boundaries[size] = end // avoid float drift on the last edge
	return &Cmap{boundaries: boundaries}, nil
}

// newFromBoundaries wraps an already-computed, validated boundary
// slice. Used internally by rebinning.
func newFromBoundaries(boundaries []float64) *Cmap {
	return &Cmap{boundaries: boundaries}
}

// Size returns the number of finite bins.
func (c *Cmap) Size() int {
	return len(c.boundaries) - 1
}

// Min returns the low edge of the finite range.
func (c *Cmap) Min() float64 {
	return c.boundaries[0]
}

// Max returns the high edge of the finite range.
func (c *Cmap) Max() float64 {
	return c.boundaries[len(c.boundaries)-1]
}

// Apply returns the bin index containing p: 0 for the (-Inf, Min())
// tail, Size()+1 for the [Max(), +Inf) tail, and k+1 for the finite
// bin [boundaries[k], boundaries[k+1]).
func (c *Cmap) Apply(p float64) int {
	idx := internal.FindFirst(c.boundaries, p, internal.InequalityGT)
	if idx == -1 {
		return len(c.boundaries)
	}
	return internal.Max(0, internal.Min(idx, len(c.boundaries)))
}

// RangeOf is the inverse of Apply.
func (c *Cmap) RangeOf(i int) common.RangeP {
	n := len(c.boundaries)
	switch {
	case i <= 0:
		return common.RangeP{Start: math.Inf(-1), End: c.boundaries[0]}
	case i >= n:
		return common.RangeP{Start: c.boundaries[n-1], End: math.Inf(1)}
	default:
		return common.RangeP{Start: c.boundaries[i-1], End: c.boundaries[i]}
	}
}

// Bins returns the full covering of the real line in ascending order,
// including the two infinite sentinel tails.
func (c *Cmap) Bins() []common.RangeP {
	n := len(c.boundaries)
	bins := make([]common.RangeP, 0, n+1)
	bins = append(bins, common.RangeP{Start: math.Inf(-1), End: c.boundaries[0]})
	for i := 1; i < n; i++ {
		bins = append(bins, common.RangeP{Start: c.boundaries[i-1], End: c.boundaries[i]})
	}
	bins = append(bins, common.RangeP{Start: c.boundaries[n-1], End: math.Inf(1)})
	return bins
}
