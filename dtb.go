package emst

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Config controls DualTreeBoruvka construction.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Naive forces brute-force O(n²) nearest-cross-component-neighbor search
	// per iteration instead of the dual-tree traversal. Mostly useful as a
	// correctness oracle. Default: false.
	Naive bool

	// LeafSize controls the maximum number of points in a kd-tree leaf.
	// LeafSize >= n degenerates to a single leaf, which is structurally
	// equivalent to naive mode. Must be >= 1. Default: 20.
	LeafSize int

	// Workers controls the number of goroutines used by the naive search.
	// The tree-based traversal is single-threaded. 0 means runtime.NumCPU().
	// Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{LeafSize: 20}
}

func applyDefaults(cfg *Config) {
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 20
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

func validateConfig(cfg *Config) error {
	if cfg.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidInput, cfg.LeafSize)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: Workers must be >= 0 (0 means auto), got %d", ErrInvalidInput, cfg.Workers)
	}
	return nil
}

// DualTreeBoruvka computes the Euclidean minimum spanning tree of a point
// set with the dual-tree Borůvka algorithm (March, Ram, Gray, KDD 2010).
// Each round finds, for every connected component of the growing forest, its
// nearest point in a different component, then merges along the discovered
// edges; the kd-tree traversal prunes node pairs whose boxes cannot improve
// any component's candidate.
//
// An instance owns its state exclusively and is not safe for concurrent use.
type DualTreeBoruvka struct {
	data []float64 // flat row-major, n * dims
	n    int
	dims int

	tree *KDTree[DTBStat] // nil in naive mode
	// ownTree records whether the tree was built here or supplied by the
	// caller via NewFromTree. Either way ComputeMST mutates the tree's
	// statistic slots; a borrowed tree's lifetime stays with the caller.
	ownTree bool
	naive   bool
	workers int

	connections      *UnionFind
	componentOfPoint []int // Find(i) snapshot, refreshed each iteration

	// Per-component candidate edge, indexed by component root. At most one
	// outgoing candidate per component per iteration; a later discovery
	// replaces the stored one only on strictly smaller distance.
	neighborsInComponent  []int
	neighborsOutComponent []int
	neighborsDistances    []float64 // squared space

	edges     []EdgePair
	totalDist float64
}

// New creates a DualTreeBoruvka over the given points. data is an n×d matrix
// whose rows are points; it is flattened into an internal copy, so the
// caller's matrix is never modified. Returns ErrInvalidInput for fewer than
// two points or non-finite coordinates.
func New(data *mat.Dense, cfg Config) (*DualTreeBoruvka, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n, dims := data.Dims()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidInput, n)
	}

	flat := make([]float64, n*dims)
	for i := 0; i < n; i++ {
		for j := 0; j < dims; j++ {
			flat[i*dims+j] = data.At(i, j)
		}
	}
	if err := validateCoordinates(flat); err != nil {
		return nil, err
	}

	d := &DualTreeBoruvka{
		data:    flat,
		n:       n,
		dims:    dims,
		naive:   cfg.Naive,
		workers: cfg.Workers,
	}
	if !cfg.Naive {
		d.tree = NewKDTree[DTBStat](flat, n, dims, cfg.LeafSize)
		d.ownTree = true
	}
	d.initState()
	return d, nil
}

// NewFromTree creates a DualTreeBoruvka over a caller-built tree. The tree
// is borrowed: the caller retains its lifetime, and ComputeMST overwrites
// its DTBStat slots. The engine trusts that the tree matches its dataset;
// naive mode is unavailable here (build the tree with leafSize = n instead).
func NewFromTree(tree *KDTree[DTBStat]) (*DualTreeBoruvka, error) {
	n := tree.NumPoints()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidInput, n)
	}
	if err := validateCoordinates(tree.Data()); err != nil {
		return nil, err
	}

	d := &DualTreeBoruvka{
		data:    tree.Data(),
		n:       n,
		dims:    tree.NumFeatures(),
		tree:    tree,
		ownTree: false,
		workers: 1,
	}
	d.initState()
	return d, nil
}

func (d *DualTreeBoruvka) initState() {
	d.connections = NewUnionFind(d.n)
	d.componentOfPoint = make([]int, d.n)
	d.neighborsInComponent = make([]int, d.n)
	d.neighborsOutComponent = make([]int, d.n)
	d.neighborsDistances = make([]float64, d.n)
	d.edges = make([]EdgePair, 0, d.n-1)
}

// ComputeMST runs the Borůvka iteration to completion and returns the
// minimum spanning tree as a 3×(n-1) matrix: row 0 holds the lesser point
// index of each edge, row 1 the greater index, row 2 the true Euclidean
// distance. Indices refer to the original input ordering, and columns are
// sorted by ascending distance. The result is all-or-nothing: on error no
// partial tree is returned. Calling ComputeMST again re-emits the same tree.
func (d *DualTreeBoruvka) ComputeMST() (*mat.Dense, error) {
	for d.connections.NumComponents() > 1 {
		d.cleanup()
		if d.naive {
			d.searchNaive()
		} else {
			d.dualTreeRecursion(d.tree.Root(), d.tree.Root(), 0)
		}
		if d.addAllEdges() == 0 {
			return nil, fmt.Errorf("%w: iteration added no edges", ErrNoSpanningTree)
		}
	}
	d.sortEdges()
	return d.emitResults(), nil
}

// TotalDistance returns the sum of true Euclidean distances over all edges
// confirmed so far; after ComputeMST it is the total MST weight.
func (d *DualTreeBoruvka) TotalDistance() float64 { return d.totalDist }

// Edges returns a copy of the confirmed spanning tree edges.
func (d *DualTreeBoruvka) Edges() []EdgePair {
	out := make([]EdgePair, len(d.edges))
	copy(out, d.edges)
	return out
}

// cleanup resets the per-iteration search state: candidate edges cleared,
// component snapshot refreshed, and every node's statistic reset with
// component membership recomputed bottom-up. Node bounds cannot persist
// across iterations because merges invalidate them.
func (d *DualTreeBoruvka) cleanup() {
	for i := 0; i < d.n; i++ {
		d.componentOfPoint[i] = d.connections.Find(i)
		d.neighborsInComponent[i] = -1
		d.neighborsOutComponent[i] = -1
		d.neighborsDistances[i] = math.Inf(1)
	}

	if d.tree == nil {
		return
	}

	// Children are stored after their parent, so a reverse scan visits
	// every node after both of its children.
	ofn := d.tree.OldFromNew()
	for id := d.tree.NumNodes() - 1; id >= 0; id-- {
		stat := d.tree.Stat(id)
		stat.reset()

		node := d.tree.Node(id)
		if node.IsLeaf {
			comp := d.componentOfPoint[ofn[node.IdxStart]]
			uniform := true
			for i := node.IdxStart + 1; i < node.IdxEnd; i++ {
				if d.componentOfPoint[ofn[i]] != comp {
					uniform = false
					break
				}
			}
			if uniform {
				stat.ComponentMembership = comp
			}
		} else {
			left := d.tree.Stat(node.Left)
			right := d.tree.Stat(node.Right)
			if left.ComponentMembership >= 0 &&
				left.ComponentMembership == right.ComponentMembership {
				stat.ComponentMembership = left.ComponentMembership
			}
		}
	}
}

// dualTreeRecursion finds, for every component with points under queryNode,
// a nearest out-of-component point under refNode. incoming is the squared
// lower bound on the distance between the two nodes' boxes, computed by the
// caller before descending.
func (d *DualTreeBoruvka) dualTreeRecursion(queryNode, refNode int, incoming float64) {
	qStat := d.tree.Stat(queryNode)
	rStat := d.tree.Stat(refNode)

	// No useful cross-component edge can exist inside one component.
	if qStat.ComponentMembership >= 0 &&
		qStat.ComponentMembership == rStat.ComponentMembership {
		return
	}
	// The boxes are too far apart to improve any candidate under queryNode.
	if incoming > qStat.MaxNeighborDistance {
		return
	}

	qLeaf := d.tree.Leaf(queryNode)
	rLeaf := d.tree.Leaf(refNode)

	switch {
	case qLeaf && rLeaf:
		d.baseCase(queryNode, refNode)

	case qLeaf:
		d.descend(queryNode, refNode)

	case rLeaf:
		qLeft, qRight := d.tree.ChildNodes(queryNode)
		dLeft := d.tree.MinRDistDual(qLeft, refNode)
		dRight := d.tree.MinRDistDual(qRight, refNode)
		if dLeft < dRight {
			d.dualTreeRecursion(qLeft, refNode, dLeft)
			d.dualTreeRecursion(qRight, refNode, dRight)
		} else {
			d.dualTreeRecursion(qRight, refNode, dRight)
			d.dualTreeRecursion(qLeft, refNode, dLeft)
		}
		d.tightenBound(queryNode)

	default:
		qLeft, qRight := d.tree.ChildNodes(queryNode)
		d.descend(qLeft, refNode)
		d.descend(qRight, refNode)
		d.tightenBound(queryNode)
	}
}

// descend recurses queryNode into both reference children, visiting the
// closer one first so its base cases tighten bounds before the farther
// sibling is tested against them.
func (d *DualTreeBoruvka) descend(queryNode, refNode int) {
	rLeft, rRight := d.tree.ChildNodes(refNode)
	dLeft := d.tree.MinRDistDual(queryNode, rLeft)
	dRight := d.tree.MinRDistDual(queryNode, rRight)
	if dLeft < dRight {
		d.dualTreeRecursion(queryNode, rLeft, dLeft)
		d.dualTreeRecursion(queryNode, rRight, dRight)
	} else {
		d.dualTreeRecursion(queryNode, rRight, dRight)
		d.dualTreeRecursion(queryNode, rLeft, dLeft)
	}
}

// tightenBound propagates children bounds up after recursion: the parent's
// bound is the max of its children's. Bounds only ever decrease between
// cleanups, which keeps the prune test safe.
func (d *DualTreeBoruvka) tightenBound(node int) {
	left, right := d.tree.ChildNodes(node)
	bound := math.Max(
		d.tree.Stat(left).MaxNeighborDistance,
		d.tree.Stat(right).MaxNeighborDistance,
	)
	stat := d.tree.Stat(node)
	if bound < stat.MaxNeighborDistance {
		stat.MaxNeighborDistance = bound
	}
}

// baseCase exhaustively compares the points of two leaves, updating each
// query point's component candidate and the query leaf's bound. Self-pairs
// and same-component pairs carry no information and are skipped.
func (d *DualTreeBoruvka) baseCase(queryNode, refNode int) {
	qn := d.tree.Node(queryNode)
	rn := d.tree.Node(refNode)
	ofn := d.tree.OldFromNew()

	var newBound float64
	for i := qn.IdxStart; i < qn.IdxEnd; i++ {
		qIdx := ofn[i]
		qComp := d.componentOfPoint[qIdx]
		qPoint := d.tree.Point(qIdx)

		for j := rn.IdxStart; j < rn.IdxEnd; j++ {
			rIdx := ofn[j]
			if qComp == d.componentOfPoint[rIdx] {
				continue
			}
			dist := squaredDistance(qPoint, d.tree.Point(rIdx))
			if dist < d.neighborsDistances[qComp] {
				d.neighborsDistances[qComp] = dist
				d.neighborsInComponent[qComp] = qIdx
				d.neighborsOutComponent[qComp] = rIdx
			}
		}

		if d.neighborsDistances[qComp] > newBound {
			newBound = d.neighborsDistances[qComp]
		}
	}

	stat := d.tree.Stat(queryNode)
	if newBound < stat.MaxNeighborDistance {
		stat.MaxNeighborDistance = newBound
	}
}

// addAllEdges confirms the candidate edges discovered this iteration,
// scanning component roots in ascending index order. That fixed order is
// the tie-break between mutual nominations: the second of a mutual pair,
// and any candidate whose endpoints a chain merge has already joined, is
// found connected and skipped silently. Returns the number of edges added.
func (d *DualTreeBoruvka) addAllEdges() int {
	added := 0
	for c := 0; c < d.n; c++ {
		in := d.neighborsInComponent[c]
		out := d.neighborsOutComponent[c]
		if in < 0 || out < 0 {
			continue // c was not a component root this iteration
		}
		if in == out {
			panic("emst: candidate edge is a self-loop")
		}
		if d.connections.Find(in) == d.connections.Find(out) {
			continue
		}

		dist := math.Sqrt(d.neighborsDistances[c])
		d.edges = append(d.edges, newEdgePair(in, out, dist))
		d.totalDist += dist
		d.connections.Union(in, out)
		added++
	}
	return added
}

func (d *DualTreeBoruvka) sortEdges() {
	sort.Slice(d.edges, func(i, j int) bool {
		a, b := d.edges[i], d.edges[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Lesser != b.Lesser {
			return a.Lesser < b.Lesser
		}
		return a.Greater < b.Greater
	})
}

// emitResults writes the edge list into the 3×(n-1) result layout. Candidate
// indices were recorded through the tree's permutation, so they are already
// in original input ordering.
func (d *DualTreeBoruvka) emitResults() *mat.Dense {
	results := mat.NewDense(3, len(d.edges), nil)
	for i, e := range d.edges {
		results.Set(0, i, float64(e.Lesser))
		results.Set(1, i, float64(e.Greater))
		results.Set(2, i, e.Distance)
	}
	return results
}
