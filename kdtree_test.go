package emst

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFlatData(r *rand.Rand, n, dims int) []float64 {
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = r.Float64()*20 - 10
	}
	return data
}

func TestKDTreePermutationIsBijection(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := randomFlatData(r, 57, 3)
	tree := NewKDTree[DTBStat](data, 57, 3, 4)

	seen := make(map[int]bool)
	for _, idx := range tree.OldFromNew() {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 57)
		require.False(t, seen[idx], "index %d appears twice", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 57)
}

func TestKDTreeLeavesPartitionIndexRange(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	data := randomFlatData(r, 40, 2)
	tree := NewKDTree[DTBStat](data, 40, 2, 5)

	covered := make([]int, 40)
	for id := 0; id < tree.NumNodes(); id++ {
		node := tree.Node(id)
		if !node.IsLeaf {
			continue
		}
		assert.LessOrEqual(t, node.IdxEnd-node.IdxStart, 5, "leaf exceeds leaf size")
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		assert.Equal(t, 1, c, "position %d covered %d times", i, c)
	}
}

func TestKDTreeChildrenFollowParents(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	data := randomFlatData(r, 33, 2)
	tree := NewKDTree[DTBStat](data, 33, 2, 3)

	for id := 0; id < tree.NumNodes(); id++ {
		node := tree.Node(id)
		if node.IsLeaf {
			continue
		}
		left, right := tree.ChildNodes(id)
		// A reverse index scan must be a valid bottom-up pass.
		assert.Greater(t, left, id)
		assert.Greater(t, right, id)

		ln, rn := tree.Node(left), tree.Node(right)
		assert.Equal(t, node.IdxStart, ln.IdxStart)
		assert.Equal(t, ln.IdxEnd, rn.IdxStart, "children partition the parent range")
		assert.Equal(t, node.IdxEnd, rn.IdxEnd)
	}
}

func TestKDTreeBoundsContainPoints(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	const n, dims = 48, 3
	data := randomFlatData(r, n, dims)
	tree := NewKDTree[DTBStat](data, n, dims, 4)

	ofn := tree.OldFromNew()
	for id := 0; id < tree.NumNodes(); id++ {
		node := tree.Node(id)
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			pt := tree.Point(ofn[i])
			for j := 0; j < dims; j++ {
				assert.LessOrEqual(t, tree.boundsMin[id*dims+j], pt[j])
				assert.GreaterOrEqual(t, tree.boundsMax[id*dims+j], pt[j])
			}
		}
	}
}

// MinRDistDual must never overestimate: it is the lower bound the pruning
// rule relies on.
func TestKDTreeMinRDistDualIsLowerBound(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	const n, dims = 30, 2
	data := randomFlatData(r, n, dims)
	tree := NewKDTree[DTBStat](data, n, dims, 3)

	ofn := tree.OldFromNew()
	for a := 0; a < tree.NumNodes(); a++ {
		for b := 0; b < tree.NumNodes(); b++ {
			bound := tree.MinRDistDual(a, b)
			require.GreaterOrEqual(t, bound, 0.0)

			na, nb := tree.Node(a), tree.Node(b)
			trueMin := math.Inf(1)
			for i := na.IdxStart; i < na.IdxEnd; i++ {
				for j := nb.IdxStart; j < nb.IdxEnd; j++ {
					d := squaredDistance(tree.Point(ofn[i]), tree.Point(ofn[j]))
					if d < trueMin {
						trueMin = d
					}
				}
			}
			require.LessOrEqual(t, bound, trueMin+1e-12,
				"nodes %d/%d: bound %v exceeds true min %v", a, b, bound, trueMin)
		}
	}
}

func TestKDTreeMinRDistDualSelfIsZero(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	data := randomFlatData(r, 20, 2)
	tree := NewKDTree[DTBStat](data, 20, 2, 4)

	for id := 0; id < tree.NumNodes(); id++ {
		assert.Zero(t, tree.MinRDistDual(id, id))
	}
}

func TestKDTreeMinRDistPoint(t *testing.T) {
	data := []float64{
		0, 0,
		2, 0,
		0, 2,
		2, 2,
	}
	tree := NewKDTree[DTBStat](data, 4, 2, 4) // single leaf, box [0,2]×[0,2]

	assert.Zero(t, tree.MinRDist(0, []float64{1, 1}), "inside the box")
	assert.InDelta(t, 1.0, tree.MinRDist(0, []float64{3, 1}), 1e-12)
	assert.InDelta(t, 2.0, tree.MinRDist(0, []float64{3, 3}), 1e-12)
}

func TestKDTreeStatSlotIsMutable(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	data := randomFlatData(r, 10, 2)
	tree := NewKDTree[DTBStat](data, 10, 2, 2)

	stat := tree.Stat(0)
	assert.Zero(t, stat.MaxNeighborDistance, "stat slots start zero-valued")

	stat.MaxNeighborDistance = 3.5
	stat.ComponentMembership = 7
	assert.Equal(t, 3.5, tree.Stat(0).MaxNeighborDistance)
	assert.Equal(t, 7, tree.Stat(0).ComponentMembership)
}

func TestKDTreeSingleLeafWhenLeafSizeCoversAll(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	data := randomFlatData(r, 25, 2)
	tree := NewKDTree[DTBStat](data, 25, 2, 25)

	require.Equal(t, 1, tree.NumNodes())
	assert.True(t, tree.Leaf(tree.Root()))
}

func TestKDTreeDoesNotAliasCallerData(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2}
	tree := NewKDTree[DTBStat](data, 3, 2, 1)

	data[0] = 99
	assert.Zero(t, tree.Data()[0], "tree must copy the input data")
}
