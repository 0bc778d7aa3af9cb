package flames

import (
	"math"

	"golang.org/x/exp/constraints"
)

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sqr[T constraints.Float](x T) T { return x * x }

// splitEven divides total into n parts, the first total%n parts get one extra.
func splitEven[T constraints.Integer](total T, n int) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	per := total / T(n)
	rem := total % T(n)
	for i := range out {
		out[i] = per
		if T(i) < rem {
			out[i]++
		}
	}
	return out
}
