package internal

import "golang.org/x/exp/constraints"

// Min and Max are the small ordered-value helpers the teacher's
// count package pulls from golang.org/x/exp/constraints rather than
// hand-rolling per numeric type; used here for the count-min row
// reduction and bin-index clamping.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
