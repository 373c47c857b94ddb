package emst

// EdgePair is a confirmed spanning tree edge. Lesser < Greater always holds,
// and Distance is the true (non-squared) Euclidean distance between the two
// points, in original input indexing.
type EdgePair struct {
	Lesser   int
	Greater  int
	Distance float64
}

func newEdgePair(a, b int, distance float64) EdgePair {
	if a > b {
		a, b = b, a
	}
	return EdgePair{Lesser: a, Greater: b, Distance: distance}
}
