package cmap

import (
	"math"

	"github.com/kailuowang/flip/common"
	"github.com/kailuowang/flip/internal"
)

// freshShare and priorShare are the fixed convex-combination weights
// spec.md section 4.5 derives from the age-decay base e: after one
// promotion the fresh generation and the generation it displaces
// weigh 1 : e^-1, so a newly built Cmap folds fresh evidence at
// 1/(1+e^-1) and the prior sampling plot at e^-1/(1+e^-1). These are
// exactly the constants section 4.5's worked sum example is built
// from and are not user-configurable.
var (
	freshShare = 1 / (1 + math.Exp(-1))
	priorShare = math.Exp(-1) / (1 + math.Exp(-1))
)

const minGridPoints = 200

// RebinConf carries the two rebinning dials of SketchConf.
type RebinConf struct {
	DataKernelWindow   float64
	BoundaryCorrection bool
}

// FromCDF implements EqualSpaceCdfUpdate: it builds a new Cmap of
// exactly size bins from a prior density plot (the outgoing young
// generation's sampling) and a batch of freshly buffered samples.
//
// If both the buffer and the prior plot are empty, rebinning has
// nothing to work from; per spec.md section 7 ("Rebinning failure")
// this falls back to leaving the Cmap unchanged rather than erroring.
func FromCDF(prior *common.DensityPlot, samples []common.Sample, size int, conf RebinConf, fallback *Cmap) (*Cmap, error) {
	if size < 1 {
		return nil, common.ErrInvalidSize
	}

	lo, hi, ok := supportBounds(prior, samples, fallback)
	if !ok {
		if fallback != nil {
			return fallback, nil
		}
		return NewUniform(size, 0, 1)
	}

	grid := buildGrid(lo, hi)
	localScale := (hi - lo) / float64(size)
	window := conf.DataKernelWindow * localScale
	if window <= 0 {
		window = localScale
	}

	fresh := kernelDensity(grid, samples, window, lo, hi, conf.BoundaryCorrection)
	priorDensity := interpolatePrior(grid, prior)

	combined := make([]float64, len(grid))
	for i := range combined {
		combined[i] = priorShare*priorDensity[i] + freshShare*fresh[i]
	}

	cdf := integrateCDF(combined, grid)
	boundaries := extractBoundaries(grid, cdf, size, lo, hi)
	return newFromBoundaries(boundaries), nil
}

// supportBounds picks the working range for the rebinning grid: the
// union of the current finite range (the fallback Cmap's bounds, or
// the prior plot's finite span when there is no fallback Cmap yet) and
// the span of any freshly buffered samples. This is deliberately a
// union, not just the fallback's own bounds: evidence landing outside
// the tracked range has to widen it, or a stream that drifts away from
// its initial guess would dump all its mass into the sentinel tails
// forever and the finite bins would keep refining an empty window.
//
// The no-evidence case (nothing to rebin from at all, per spec.md
// section 7's "Rebinning failure") is exactly: no prior plot and no
// samples. A fallback Cmap being present does not by itself count as
// evidence — it only supplies the baseline range once evidence exists.
func supportBounds(prior *common.DensityPlot, samples []common.Sample, fallback *Cmap) (lo, hi float64, ok bool) {
	have := prior != nil && len(prior.Records) > 0
	for _, s := range samples {
		if !math.IsNaN(s.P) {
			have = true
			break
		}
	}
	if !have {
		return 0, 0, false
	}

	switch {
	case fallback != nil:
		lo, hi = fallback.Min(), fallback.Max()
	default:
		if plo, phi, pok := finiteSpan(prior); pok {
			lo, hi = plo, phi
		} else {
			lo, hi = math.Inf(1), math.Inf(-1)
		}
	}

	for _, s := range samples {
		if math.IsNaN(s.P) {
			continue
		}
		if s.P < lo {
			lo = s.P
		}
		if s.P > hi {
			hi = s.P
		}
	}

	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// finiteSpan returns a density plot's finite (non-sentinel) range: the
// low edge of its second record and the high edge of its
// second-to-last, skipping the infinite tail records densityPlotOf
// always emits at both ends.
func finiteSpan(plot *common.DensityPlot) (lo, hi float64, ok bool) {
	if plot == nil || len(plot.Records) < 3 {
		return 0, 0, false
	}
	records := plot.Records
	lo = records[1].Range.Start
	hi = records[len(records)-2].Range.End
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || !(lo < hi) {
		return 0, 0, false
	}
	return lo, hi, true
}

func buildGrid(lo, hi float64) []float64 {
	n := minGridPoints
	grid := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		grid[i] = lo + step*float64(i)
	}
	grid[n-1] = hi
	return grid
}

// triangular is the kernel used to smear an observation's mass over a
// window of the given width: linear falloff to zero at |u| == 1,
// where u = distance/window.
func triangular(u float64) float64 {
	u = math.Abs(u)
	if u >= 1 {
		return 0
	}
	return 1 - u
}

func kernelDensity(grid []float64, samples []common.Sample, window float64, lo, hi float64, boundaryCorrection bool) []float64 {
	density := make([]float64, len(grid))
	if window <= 0 || len(samples) == 0 {
		return density
	}
	var totalWeight float64
	for _, s := range samples {
		if math.IsNaN(s.P) || s.Weight <= 0 {
			continue
		}
		totalWeight += s.Weight
		addKernel(density, grid, s.P, s.Weight, window)
		if boundaryCorrection {
			addKernel(density, grid, 2*lo-s.P, s.Weight, window)
			addKernel(density, grid, 2*hi-s.P, s.Weight, window)
		}
	}
	if totalWeight <= 0 {
		return density
	}
	// Normalize so the smeared density integrates (via trapezoid) to
	// the total incoming weight, independent of grid resolution.
	mass := trapezoidIntegral(density, grid)
	if mass > 0 {
		scale := totalWeight / mass
		for i := range density {
			density[i] *= scale
		}
	}
	return density
}

func addKernel(density, grid []float64, center, weight, window float64) {
	for i, g := range grid {
		density[i] += weight * triangular((g-center)/window) / window
	}
}

func trapezoidIntegral(y, x []float64) float64 {
	var total float64
	for i := 1; i < len(x); i++ {
		total += (y[i] + y[i-1]) / 2 * (x[i] - x[i-1])
	}
	return total
}

// interpolatePrior evaluates a prior sampling plot's piecewise-constant
// per-bin density at each grid point, clamping to the nearest finite
// bin's density beyond the plot's own range.
func interpolatePrior(grid []float64, prior *common.DensityPlot) []float64 {
	out := make([]float64, len(grid))
	if prior == nil || len(prior.Records) == 0 {
		return out
	}
	records := prior.Records
	for i, g := range grid {
		out[i] = densityAt(records, g)
	}
	return out
}

func densityAt(records []common.DensityRecord, p float64) float64 {
	for _, r := range records {
		if r.Range.Contains(p) {
			return r.Density
		}
	}
	if p < records[0].Range.Start {
		return records[0].Density
	}
	return records[len(records)-1].Density
}

// integrateCDF turns a density curve on grid into a monotone,
// [0,1]-normalized cumulative curve. If the combined density carries
// no mass at all (an untouched sketch rebinning with no evidence), it
// falls back to a uniform ramp, keeping the resulting Cmap a well
// formed uniform partition instead of degenerating.
func integrateCDF(density, grid []float64) []float64 {
	n := len(grid)
	cdf := make([]float64, n)
	var running float64
	for i := 1; i < n; i++ {
		running += (density[i] + density[i-1]) / 2 * (grid[i] - grid[i-1])
		cdf[i] = running
	}
	total := cdf[n-1]
	if total <= 0 {
		for i := range cdf {
			cdf[i] = float64(i) / float64(n-1)
		}
		return cdf
	}
	for i := range cdf {
		cdf[i] /= total
	}
	return cdf
}

// extractBoundaries emits size-1 interior boundaries at quantile
// positions k/size for k = 1..size-1, plus the fixed edges lo and hi,
// then repairs any run of equal values so the result is strictly
// increasing (spec.md section 4.3's invariant).
func extractBoundaries(grid, cdf []float64, size int, lo, hi float64) []float64 {
	boundaries := make([]float64, size+1)
	boundaries[0] = lo
	boundaries[size] = hi
	for k := 1; k < size; k++ {
		target := float64(k) / float64(size)
		boundaries[k] = quantilePosition(grid, cdf, target)
	}

	span := hi - lo
	epsilon := span / 1e9
	if epsilon <= 0 {
		epsilon = 1e-12
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			boundaries[i] = boundaries[i-1] + epsilon
		}
	}
	// The repair pass above can push the last interior boundary past
	// hi in pathological all-flat inputs; clamp it back below hi so
	// the map stays a valid partition of [lo, hi].
	if boundaries[size-1] >= boundaries[size] {
		boundaries[size-1] = boundaries[size] - epsilon
	}
	return boundaries
}

// quantilePosition returns the grid position at which the cumulative
// curve first reaches target, linearly interpolated between the
// bracketing grid points. Ties (a run of grid points sharing the same
// cumulative value) are broken by advancing to the point where the
// CDF becomes strictly greater, per spec.md section 4.3.
func quantilePosition(grid, cdf []float64, target float64) float64 {
	idx := internal.FindFirst(cdf, target, internal.InequalityGE)
	if idx == -1 {
		return grid[len(grid)-1]
	}
	for idx+1 < len(cdf) && cdf[idx+1] == cdf[idx] {
		idx++
	}
	if idx == 0 {
		return grid[0]
	}
	lo, hi := cdf[idx-1], cdf[idx]
	if hi == lo {
		return grid[idx]
	}
	frac := (target - lo) / (hi - lo)
	return grid[idx-1] + frac*(grid[idx]-grid[idx-1])
}
