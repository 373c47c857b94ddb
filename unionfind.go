package emst

// UnionFind is a disjoint-set structure over point indices, used to track
// the connected components of the growing spanning forest. It uses union by
// rank and path compression (halving). Merges are permanent: once two
// indices share a component they are never split.
type UnionFind struct {
	parent        []int
	rank          []int
	numComponents int
}

// NewUnionFind creates a UnionFind with n singleton components.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{
		parent:        parent,
		rank:          make([]int, n),
		numComponents: n,
	}
}

// Find returns the component root of x.
func (uf *UnionFind) Find(x int) int {
	// Path halving: every other node points to its grandparent.
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the components containing x and y. Merging two indices
// already in the same component is a no-op.
func (uf *UnionFind) Union(x, y int) {
	xr := uf.Find(x)
	yr := uf.Find(y)
	if xr == yr {
		return
	}
	switch {
	case uf.rank[xr] < uf.rank[yr]:
		uf.parent[xr] = yr
	case uf.rank[xr] > uf.rank[yr]:
		uf.parent[yr] = xr
	default:
		uf.parent[yr] = xr
		uf.rank[xr]++
	}
	uf.numComponents--
}

// NumComponents returns the number of disjoint components.
func (uf *UnionFind) NumComponents() int { return uf.numComponents }
