// Package structures implements the bounded generation stack a
// sketch keeps: an ordered, non-empty list of (Cmap, HCounter) pairs,
// youngest first, with the promote/evict bookkeeping deepUpdate and
// rearrange both rely on.
package structures

import (
	"github.com/kailuowang/flip/cmap"
	"github.com/kailuowang/flip/hcounter"
)

// Structure is one generation: a quantization map paired with the
// hashed counter built against it.
type Structure struct {
	Cmap    *cmap.Cmap
	Counter *hcounter.HCounter
}

// Structures is a non-empty, bounded FIFO of generations ordered
// young-to-old. Its length never exceeds the configured depth
// (cmapNo); pushing past that depth evicts the oldest generation.
type Structures struct {
	depth int
	gens  []Structure
}

// New starts a Structures stack at length one, holding the given
// initial generation. depth is the configured maximum number of
// generations retained (cmapNo).
func New(depth int, initial Structure) *Structures {
	if depth < 1 {
		depth = 1
	}
	return &Structures{
		depth: depth,
		gens:  []Structure{initial},
	}
}

// Len returns the current number of retained generations.
func (s *Structures) Len() int {
	return len(s.gens)
}

// Depth returns the configured maximum number of generations
// (cmapNo).
func (s *Structures) Depth() int {
	return s.depth
}

// Young returns the head (most recent) generation.
func (s *Structures) Young() Structure {
	return s.gens[0]
}

// At returns the k-th generation counting from the head, k=0 being
// the young generation.
func (s *Structures) At(k int) Structure {
	return s.gens[k]
}

// Push prepends a new generation. If the stack would exceed its
// configured depth, the oldest generation is dropped and returned as
// evicted; otherwise evicted is the zero Structure and ok is false.
func (s *Structures) Push(next Structure) (evicted Structure, ok bool) {
	gens := make([]Structure, 0, s.depth)
	gens = append(gens, next)
	gens = append(gens, s.gens...)
	if len(gens) > s.depth {
		evicted = gens[len(gens)-1]
		ok = true
		gens = gens[:s.depth]
	}
	s.gens = gens
	return evicted, ok
}

// Snapshot returns the current generations, young first, without
// exposing the backing slice for mutation.
func (s *Structures) Snapshot() []Structure {
	out := make([]Structure, len(s.gens))
	copy(out, s.gens)
	return out
}
