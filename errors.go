package emst

import "errors"

var (
	// ErrInvalidInput indicates the input matrix cannot support an MST:
	// fewer than two points, empty dimensionality, non-finite coordinates,
	// or an invalid configuration.
	ErrInvalidInput = errors.New("emst: invalid input")
	// ErrNoSpanningTree indicates an iteration made no progress, so the
	// points cannot be connected. This cannot occur under Euclidean distance
	// on finite coordinates; it is defined for general-metric variants.
	ErrNoSpanningTree = errors.New("emst: no spanning tree exists")
)
