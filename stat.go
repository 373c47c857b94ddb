package emst

import "math"

// DTBStat is the per-node annotation maintained by DualTreeBoruvka. It lives
// in the kd-tree's generic statistic slot and is reset at the start of every
// Borůvka iteration: component membership changes invalidate prior bounds.
type DTBStat struct {
	// MaxNeighborDistance is an upper bound, across all points in the
	// subtree, on the squared distance from each point to its nearest
	// out-of-component neighbor. It only tightens within an iteration,
	// which keeps pruning safe.
	MaxNeighborDistance float64

	// ComponentMembership is the shared component root if every point in
	// the subtree belongs to one component, or -1 if they are mixed.
	ComponentMembership int
}

func (s *DTBStat) reset() {
	s.MaxNeighborDistance = math.Inf(1)
	s.ComponentMembership = -1
}
