// Package hcounter implements HCounter, the hashed multi-row
// count-min counter each generation of an adaptive sketch keeps over
// its Cmap's bin indices. The layout and conservative-update
// semantics are the same shape as a textbook count-min sketch (see
// package count-min references in the wider ecosystem); the
// difference here is the two construction modes spec.md requires:
// an exact, collision-free counter when the bin count already fits
// inside the configured counter width, and a hashed, lossy one
// otherwise.
package hcounter

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/kailuowang/flip/internal"
	"github.com/twmb/murmur3"
)

// HCounter is a d x w matrix of non-negative counts with d
// independent row hashes over bin indices.
type HCounter struct {
	depth      int
	width      int
	rows       [][]float64
	seeds      []uint64
	compressed bool
}

// New builds an HCounter for cmapSize bins with the requested depth
// and width. A Cmap over cmapSize finite bins yields indices in
// [0, cmapSize+1]: the two infinite sentinel tails at 0 and
// cmapSize+1, plus the cmapSize finite bins in between, so an exact
// counter needs cmapSize+2 slots to cover every index a Cmap can ever
// produce. When that many slots fit inside the requested width, the
// counter is exact (uncompressed): depth collapses to 1 and the hash
// is the identity, so Count never underestimates. Otherwise it is a
// genuine count-min counter with depth independent rows, each seeded
// deterministically from seed the way the teacher's count-min sketch
// derives per-row seeds from a single construction seed (see
// NewCountMinSketch in the count-min literature this counter is
// modeled on): identical configuration and seed always produce
// identical hash assignments, so results over the same stream are
// reproducible across runs.
func New(cmapSize int, width int, depth int, seed int64) *HCounter {
	slots := cmapSize + 2
	if slots <= width {
		return &HCounter{
			depth:      1,
			width:      slots,
			rows:       [][]float64{make([]float64, slots)},
			seeds:      []uint64{0},
			compressed: false,
		}
	}

	rng := rand.New(rand.NewSource(seed))
	seeds := make([]uint64, depth)
	for i := range seeds {
		seeds[i] = uint64(rng.Int63()) ^ uint64(seed)
	}
	rows := make([][]float64, depth)
	for i := range rows {
		rows[i] = make([]float64, width)
	}
	return &HCounter{
		depth:      depth,
		width:      width,
		rows:       rows,
		seeds:      seeds,
		compressed: true,
	}
}

// Width returns the counter's row width.
func (h *HCounter) Width() int { return h.width }

// Depth returns the number of independent rows.
func (h *HCounter) Depth() int { return h.depth }

func (h *HCounter) hash(row int, index int) int {
	if !h.compressed {
		return index
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(int64(index)))
	return int(murmur3.SeedSum64(h.seeds[row], b[:]) % uint64(h.width))
}

// Update adds delta (>= 0) to bin index i in every row. An
// out-of-range i for an uncompressed counter (one built narrower than
// the index space it is ever handed) is dropped rather than indexing
// past the row, mirroring Count's own bounds check below.
func (h *HCounter) Update(i int, delta float64) {
	if delta < 0 || i < 0 {
		return
	}
	if !h.compressed && i >= h.width {
		return
	}
	for row := 0; row < h.depth; row++ {
		h.rows[row][h.hash(row, i)] += delta
	}
}

// Count returns the conservative estimate for bin index i: the
// minimum across rows of the hashed cell value. For an uncompressed
// counter this is exact.
func (h *HCounter) Count(i int) float64 {
	if i < 0 {
		return 0
	}
	if !h.compressed {
		if i >= h.width {
			return 0
		}
		return h.rows[0][i]
	}
	min := math.Inf(1)
	for row := 0; row < h.depth; row++ {
		min = internal.Min(min, h.rows[row][h.hash(row, i)])
	}
	return min
}

// Sum returns the counter's total mass: the single row sum when
// uncompressed, or the minimum row sum across the compressed rows (a
// standard count-min under-estimator for the true total).
func (h *HCounter) Sum() float64 {
	if !h.compressed {
		var total float64
		for _, v := range h.rows[0] {
			total += v
		}
		return total
	}
	min := math.Inf(1)
	for row := 0; row < h.depth; row++ {
		var total float64
		for _, v := range h.rows[row] {
			total += v
		}
		min = internal.Min(min, total)
	}
	return min
}

// Scale multiplies every cell by r, an age-decay factor in [0, 1].
// Values outside that range are clamped so a counter never goes
// negative.
func (h *HCounter) Scale(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	for _, row := range h.rows {
		for i := range row {
			row[i] *= r
		}
	}
}
