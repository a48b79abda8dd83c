// Package internal collects the low-level, dependency-free primitives
// shared by the quantization and rebinning layers. It never imports a
// sketch package; sketch packages import it.
package internal

import "cmp"

// Inequality selects which side of a monotone predicate FindFirst
// resolves to.
type Inequality int

const (
	InequalityLT Inequality = iota
	InequalityLE
	InequalityGE
	InequalityGT
)

// FindFirst runs a binary search over an ascending slice arr and
// returns the index satisfying crit relative to v, or -1 if no index
// satisfies it. For InequalityLT/LE it is the rightmost such index
// (the largest i with arr[i] < v or arr[i] <= v); for
// InequalityGE/GT it is the leftmost such index. This is the shape
// Cmap.Apply and the rebinning quantile search both need: apply wants
// the first boundary strictly greater than a point, rebinning wants
// the first cumulative-weight entry at or past a target quantile.
func FindFirst[T cmp.Ordered](arr []T, v T, crit Inequality) int {
	n := len(arr)
	if n == 0 {
		return -1
	}
	switch crit {
	case InequalityGE, InequalityGT:
		lo, hi := 0, n
		for lo < hi {
			mid := (lo + hi) / 2
			var hold bool
			if crit == InequalityGE {
				hold = arr[mid] >= v
			} else {
				hold = arr[mid] > v
			}
			if hold {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		if lo == n {
			return -1
		}
		return lo
	case InequalityLT, InequalityLE:
		lo, hi := -1, n-1
		for lo < hi {
			mid := lo + (hi-lo+1)/2
			var hold bool
			if crit == InequalityLT {
				hold = arr[mid] < v
			} else {
				hold = arr[mid] <= v
			}
			if hold {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		if lo == -1 {
			return -1
		}
		return lo
	default:
		panic("internal: invalid inequality")
	}
}
