package sketch

import "github.com/kailuowang/flip/common"

// SketchConf is the configuration record every recognized field of
// spec.md section 6 maps to one-to-one.
type SketchConf struct {
	// CmapSize is the number of finite bins per generation. Must be
	// >= 2.
	CmapSize int
	// CmapNo is the number of generations retained (the structures
	// stack depth). Must be >= 1.
	CmapNo int
	// CmapStart and CmapEnd optionally seed the initial uniform Cmap.
	// When both are nil, defaultCmapStart/defaultCmapEnd apply; the
	// sketch subsequently rebins toward the data regardless of the
	// initial guess.
	CmapStart *float64
	CmapEnd   *float64
	// CounterSize is the HCounter width. Must be >= 1.
	CounterSize int
	// CounterNo is the HCounter depth. Must be >= 1.
	CounterNo int
	// QueueSize bounds the PeriodicSketch buffer of observations
	// awaiting the next deep update. Must be >= 1.
	QueueSize int
	// StartThreshold triggers a deep update after this many arrivals
	// even if the queue is not yet full.
	StartThreshold int
	// DataKernelWindow is the rebinning smoothing window, a ratio in
	// units of the current bin width. Must be > 0.
	DataKernelWindow float64
	// BoundaryCorrection mirror-reflects mass that would otherwise
	// fall outside the Cmap's finite range during rebinning.
	BoundaryCorrection bool
	// Seed drives every deterministic random choice in the sketch
	// (HCounter row hash seeds). Two sketches built with identical
	// configuration and seed over identical input produce identical
	// results.
	Seed int64
}

const (
	defaultCmapStart = -1.0
	defaultCmapEnd   = 1.0
)

// Validate checks the configuration fields spec.md section 7 assigns
// to ConfigurationError: non-positive sizes, inverted bounds, zero
// depth.
func (c SketchConf) Validate() error {
	if c.CmapSize < 2 {
		return common.ErrInvalidSize
	}
	if c.CmapNo < 1 {
		return common.ErrInvalidSize
	}
	if c.CounterSize < 1 {
		return common.ErrInvalidSize
	}
	if c.CounterNo < 1 {
		return common.ErrInvalidSize
	}
	if c.QueueSize < 1 {
		return common.ErrInvalidSize
	}
	if c.DataKernelWindow <= 0 {
		return common.ErrInvalidSize
	}
	if c.CmapStart != nil && c.CmapEnd != nil && !(*c.CmapStart < *c.CmapEnd) {
		return common.ErrInvertedBounds
	}
	return nil
}

// bounds resolves the initial Cmap range, applying the documented
// default when the caller left it unspecified.
func (c SketchConf) bounds() (float64, float64) {
	start, end := defaultCmapStart, defaultCmapEnd
	if c.CmapStart != nil {
		start = *c.CmapStart
	}
	if c.CmapEnd != nil {
		end = *c.CmapEnd
	}
	return start, end
}
