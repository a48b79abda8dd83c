package sketch

import (
	"math"

	"github.com/kailuowang/flip/cmap"
	"github.com/kailuowang/flip/common"
	"github.com/kailuowang/flip/structures"
)

func ageWeight(k int) float64 { return math.Exp(-float64(k)) }

// flatDensity is the non-informative uniform density over a Cmap's
// finite range, used whenever a sketch has accumulated no mass at
// all. Algebraically it is spec.md section 4.4's stated
// 1/max * 1/(1 - min/max), simplified.
func flatDensity(c *cmap.Cmap) float64 {
	span := c.Max() - c.Min()
	if span <= 0 {
		return 0
	}
	return 1 / span
}

// overlapFraction is the fraction of bin covered by [qs, qe]. Infinite
// sentinel bins only ever count fully, when the query itself reaches
// all the way to that same infinity; a query with a finite bound
// against an infinite bin attributes none of that bin's mass, since an
// unbounded tail cannot be meaningfully subdivided.
func overlapFraction(bin common.RangeP, qs, qe float64) float64 {
	lo := math.Max(bin.Start, qs)
	hi := math.Min(bin.End, qe)
	if hi <= lo {
		return 0
	}
	length := bin.Length()
	if math.IsInf(length, 0) {
		if math.IsInf(bin.Start, -1) && qs == math.Inf(-1) {
			return 1
		}
		if math.IsInf(bin.End, 1) && qe == math.Inf(1) {
			return 1
		}
		return 0
	}
	return (hi - lo) / length
}

func generationCount(gen structures.Structure, ps, pe float64) float64 {
	var total float64
	for i, bin := range gen.Cmap.Bins() {
		frac := overlapFraction(bin, ps, pe)
		if frac == 0 {
			continue
		}
		total += frac * gen.Counter.Count(i)
	}
	return total
}

// rawCount is the age-weighted count over [ps, pe], normalized by the
// total generation weight, per spec.md section 4.4.
func (s *Sketch[A]) rawCount(ps, pe float64) float64 {
	var num, den float64
	for k, gen := range s.structures.Snapshot() {
		w := ageWeight(k)
		den += w
		num += w * generationCount(gen, ps, pe)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Sum is the age-weighted total mass, equivalent to rawCount(-Inf,
// +Inf) but computed directly from each generation's HCounter.Sum for
// exactness.
func (s *Sketch[A]) Sum() float64 {
	var num, den float64
	for k, gen := range s.structures.Snapshot() {
		w := ageWeight(k)
		den += w
		num += w * gen.Counter.Sum()
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Count returns the age-weighted count of mass observed in [a, b].
// NaN endpoints, which cannot bound any interval, count as zero.
func (s *Sketch[A]) Count(a, b A) float64 {
	ps, pe := s.measure.To(a), s.measure.To(b)
	if math.IsNaN(ps) || math.IsNaN(pe) {
		return 0
	}
	if pe < ps {
		ps, pe = pe, ps
	}
	return s.rawCount(ps, pe)
}

// probabilityRange is Probability worked in raw measure-space floats,
// shared by Probability, Cdf, FastPdf and DensityPlot.
func (s *Sketch[A]) probabilityRange(ps, pe float64) float64 {
	if math.IsNaN(ps) || math.IsNaN(pe) {
		return 0
	}
	if pe < ps {
		ps, pe = pe, ps
	}
	total := s.Sum()
	if total > 0 {
		return s.rawCount(ps, pe) / total
	}
	young := s.structures.Young()
	c := young.Cmap
	// The flat prior only has mass over the Cmap's finite range; a
	// query reaching into the unbounded sentinel tails (e.g. Cdf's own
	// [-Inf, Min) low-tail call) must not multiply flatDensity by an
	// infinite or otherwise untracked length.
	lo, hi := math.Max(ps, c.Min()), math.Min(pe, c.Max())
	if hi <= lo {
		return 0
	}
	return flatDensity(c) * (hi - lo)
}

// Probability returns the fraction of observed mass in [a, b]. On a
// sketch with no mass yet, it falls back to a flat density over the
// Cmap's current finite range.
func (s *Sketch[A]) Probability(a, b A) float64 {
	return s.probabilityRange(s.measure.To(a), s.measure.To(b))
}

func midpoint(r common.RangeP) float64 { return (r.Start + r.End) / 2 }

func (s *Sketch[A]) binDensity(c *cmap.Cmap, idx int) float64 {
	r := c.RangeOf(idx)
	if r.Length() <= 0 {
		return 0
	}
	return s.probabilityRange(r.Start, r.End) / r.Length()
}

// FastPdf estimates the density at a via piecewise-linear
// interpolation between the densities of the bin a falls in and its
// nearer neighbour, evaluated at bin midpoints. At the extremes
// (below the first finite bin or above the last) it clamps to the
// nearest finite bin's density rather than extrapolating.
func (s *Sketch[A]) FastPdf(a A) float64 {
	p := s.measure.To(a)
	if math.IsNaN(p) {
		return math.NaN()
	}
	young := s.structures.Young()
	c := young.Cmap
	n := c.Size()
	clamp := func(idx int) int {
		if idx < 1 {
			return 1
		}
		if idx > n {
			return n
		}
		return idx
	}
	center := clamp(c.Apply(p))
	if p <= c.RangeOf(1).Start || p >= c.RangeOf(n).End {
		return s.binDensity(c, center)
	}
	var left, right int
	if p < midpoint(c.RangeOf(center)) {
		left, right = clamp(center-1), center
	} else {
		left, right = center, clamp(center+1)
	}
	dl, dr := s.binDensity(c, left), s.binDensity(c, right)
	ml, mr := midpoint(c.RangeOf(left)), midpoint(c.RangeOf(right))
	if mr == ml {
		return dl
	}
	frac := (p - ml) / (mr - ml)
	return dl + frac*(dr-dl)
}

// Pdf is FastPdf: the sketch has no slower, more exact alternative to
// fall back to.
func (s *Sketch[A]) Pdf(a A) float64 {
	return s.FastPdf(a)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Cdf returns the estimated fraction of mass at or below a. Mass
// below the young Cmap's finite range is treated as a point mass sat
// exactly at Min(), so Cdf jumps there rather than smearing across an
// unbounded tail it has no shape information about.
func (s *Sketch[A]) Cdf(a A) float64 {
	p := s.measure.To(a)
	if math.IsNaN(p) {
		return math.NaN()
	}
	young := s.structures.Young()
	c := young.Cmap
	if p < c.Min() {
		return 0
	}
	cum := s.probabilityRange(math.Inf(-1), c.Min())
	for i := 1; i <= c.Size(); i++ {
		r := c.RangeOf(i)
		mass := s.probabilityRange(r.Start, r.End)
		if p < r.End {
			frac := 0.0
			if r.Length() > 0 {
				frac = (p - r.Start) / r.Length()
			}
			return clamp01(cum + frac*mass)
		}
		cum += mass
	}
	return clamp01(cum + s.probabilityRange(c.Max(), math.Inf(1)))
}

// Quantile inverts Cdf: the smallest a such that Cdf(a) >= q. q must
// lie in [0, 1]; ok is false otherwise.
func (s *Sketch[A]) Quantile(q float64) (value float64, ok bool) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, false
	}
	young := s.structures.Young()
	c := young.Cmap
	tailLow := s.probabilityRange(math.Inf(-1), c.Min())
	if q <= tailLow {
		return c.Min(), true
	}
	cum := tailLow
	n := c.Size()
	for i := 1; i <= n; i++ {
		r := c.RangeOf(i)
		mass := s.probabilityRange(r.Start, r.End)
		if q <= cum+mass {
			if mass <= 0 {
				return r.Start, true
			}
			frac := (q - cum) / mass
			return r.Start + frac*r.Length(), true
		}
		cum += mass
	}
	// q lies above every finite bin, in the untracked [Max, +Inf) tail
	// Cdf itself has no shape information for; mirror the low-tail
	// clamp above and answer with the boundary itself.
	return c.Max(), true
}

// Median is Quantile(0.5).
func (s *Sketch[A]) Median() (float64, bool) {
	return s.Quantile(0.5)
}

func (s *Sketch[A]) densityPlotOf(gen structures.Structure) common.DensityPlot {
	c := gen.Cmap
	bins := c.Bins()
	fd := flatDensity(c)
	records := make([]common.DensityRecord, len(bins))
	last := len(bins) - 1
	for i, b := range bins {
		if i == 0 || i == last {
			records[i] = common.DensityRecord{Range: b, Density: fd}
			continue
		}
		d := 0.0
		if b.Length() > 0 {
			d = s.probabilityRange(b.Start, b.End) / b.Length()
		}
		records[i] = common.DensityRecord{Range: b, Density: d}
	}
	return common.DensityPlot{Records: records}
}

// DensityPlot (spec.md's "sampling") emits one density record per bin
// of the young Cmap, including the two infinite sentinel tails, whose
// reported density is the flat non-informative rate rather than a
// division by an infinite length.
func (s *Sketch[A]) DensityPlot() common.DensityPlot {
	return s.densityPlotOf(s.structures.Young())
}
