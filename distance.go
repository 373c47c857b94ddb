package emst

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// squaredDistance returns the squared Euclidean distance between a and b.
// Comparisons happen in squared space wherever possible; the square root is
// taken once per confirmed edge.
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// validateCoordinates rejects NaN and infinite values. The traversal's
// pruning bounds are meaningless on non-finite input, so it is checked
// once at entry.
func validateCoordinates(data []float64) error {
	if floats.HasNaN(data) {
		return fmt.Errorf("%w: coordinates contain NaN", ErrInvalidInput)
	}
	for _, v := range data {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: coordinates contain infinity", ErrInvalidInput)
		}
	}
	return nil
}
