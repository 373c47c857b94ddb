package emst

import (
	"math"
	"sort"
)

// NodeData describes a single kd-tree node. A leaf owns the contiguous
// range OldFromNew()[IdxStart:IdxEnd]; an internal node owns exactly two
// children whose ranges partition its own.
type NodeData struct {
	IdxStart, IdxEnd int
	Left, Right      int
	IsLeaf           bool
}

// KDTree is a balanced binary space partitioning tree over a fixed point
// set, splitting on the dimension of greatest spread at the median. Points
// are stored in a flat row-major array in their original order; tree
// construction reorders only the index permutation, so leaf ranges index
// into OldFromNew rather than into the data directly.
//
// Each node carries a mutable statistic slot of type S, read and written
// through Stat. The tree itself never touches the statistics; they belong
// to whatever algorithm traverses the tree.
//
// Nodes are stored densely in build (preorder) order, so both children of a
// node always have larger indices than the node itself: a reverse scan over
// node indices is a bottom-up pass.
type KDTree[S any] struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int
	dims     int
	leafSize int

	oldFromNew []int // permutation: tree-order position → original index
	nodes      []NodeData
	stats      []S
	// boundsMin[node*dims + j] = min value of dimension j in node
	boundsMin []float64
	// boundsMax[node*dims + j] = max value of dimension j in node
	boundsMax []float64
}

// NewKDTree builds a kd-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the maximum points per leaf;
// leafSize >= n produces a single leaf holding every point.
func NewKDTree[S any](data []float64, n, dims, leafSize int) *KDTree[S] {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	oldFromNew := make([]int, n)
	for i := range oldFromNew {
		oldFromNew[i] = i
	}

	t := &KDTree[S]{
		data:       dataCopy,
		n:          n,
		dims:       dims,
		leafSize:   leafSize,
		oldFromNew: oldFromNew,
	}

	if n > 0 {
		t.buildNode(0, n)
	}
	return t
}

// buildNode recursively builds the subtree over oldFromNew[start:end] and
// returns the new node's index.
func (t *KDTree[S]) buildNode(start, end int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, NodeData{})
	var zero S
	t.stats = append(t.stats, zero)
	t.boundsMin = append(t.boundsMin, make([]float64, t.dims)...)
	t.boundsMax = append(t.boundsMax, make([]float64, t.dims)...)

	t.computeNodeBounds(id, start, end)

	if end-start <= t.leafSize {
		t.nodes[id] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return id
	}

	// Split on the dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.boundsMax[id*t.dims+d] - t.boundsMin[id*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	t.sortByDimension(start, end, splitDim)
	mid := start + (end-start)/2

	left := t.buildNode(start, mid)
	right := t.buildNode(mid, end)
	t.nodes[id] = NodeData{IdxStart: start, IdxEnd: end, Left: left, Right: right}
	return id
}

// computeNodeBounds computes the axis-aligned bounding box of the points in
// oldFromNew[start:end].
func (t *KDTree[S]) computeNodeBounds(id, start, end int) {
	base := id * t.dims
	for d := 0; d < t.dims; d++ {
		t.boundsMin[base+d] = math.Inf(1)
		t.boundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.oldFromNew[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[pt*t.dims+d]
			if v < t.boundsMin[base+d] {
				t.boundsMin[base+d] = v
			}
			if v > t.boundsMax[base+d] {
				t.boundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts oldFromNew[start:end] by the given dimension.
func (t *KDTree[S]) sortByDimension(start, end, dim int) {
	sub := t.oldFromNew[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// Data returns the flat row-major point data, in original point order.
func (t *KDTree[S]) Data() []float64 { return t.data }

// NumPoints returns the number of points in the tree.
func (t *KDTree[S]) NumPoints() int { return t.n }

// NumFeatures returns the dimensionality of each point.
func (t *KDTree[S]) NumFeatures() int { return t.dims }

// NumNodes returns the total number of nodes, internal and leaf.
func (t *KDTree[S]) NumNodes() int { return len(t.nodes) }

// Root returns the root node index.
func (t *KDTree[S]) Root() int { return 0 }

// Node returns the metadata for the given node.
func (t *KDTree[S]) Node(node int) NodeData { return t.nodes[node] }

// Leaf reports whether the given node is a leaf.
func (t *KDTree[S]) Leaf(node int) bool { return t.nodes[node].IsLeaf }

// ChildNodes returns the left and right child indices of an internal node.
// Behavior is undefined for leaves.
func (t *KDTree[S]) ChildNodes(node int) (left, right int) {
	return t.nodes[node].Left, t.nodes[node].Right
}

// Stat returns the mutable statistic slot of the given node.
func (t *KDTree[S]) Stat(node int) *S { return &t.stats[node] }

// OldFromNew returns the permutation mapping tree-order positions back to
// original point indices.
func (t *KDTree[S]) OldFromNew() []int { return t.oldFromNew }

// Point returns the coordinates of the point with the given original index.
func (t *KDTree[S]) Point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// MinRDistDual returns a lower bound, in squared-distance space, on the
// distance between any point in node1 and any point in node2: the squared
// per-dimension gap between the two bounding boxes. Zero if the boxes
// overlap.
func (t *KDTree[S]) MinRDistDual(node1, node2 int) float64 {
	dims := t.dims
	base1 := node1 * dims
	base2 := node2 * dims

	var rdist float64
	for j := 0; j < dims; j++ {
		d1 := t.boundsMin[base1+j] - t.boundsMax[base2+j]
		d2 := t.boundsMin[base2+j] - t.boundsMax[base1+j]
		d := math.Max(d1, math.Max(d2, 0))
		rdist += d * d
	}
	return rdist
}

// MinRDist returns a lower bound, in squared-distance space, on the distance
// between a point and any point in the given node.
func (t *KDTree[S]) MinRDist(node int, point []float64) float64 {
	base := node * t.dims

	var rdist float64
	for j := 0; j < t.dims; j++ {
		lo := t.boundsMin[base+j]
		hi := t.boundsMax[base+j]
		var d float64
		if point[j] < lo {
			d = lo - point[j]
		} else if point[j] > hi {
			d = point[j] - hi
		}
		rdist += d * d
	}
	return rdist
}
