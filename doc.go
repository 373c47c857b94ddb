// Package emst computes exact Euclidean minimum spanning trees with the
// dual-tree Borůvka algorithm.
//
// The algorithm builds a kd-tree over the points and, each round, finds for
// every connected component of the growing forest its nearest point in a
// different component, pruning tree-node pairs whose bounding boxes cannot
// improve any component's best candidate. Components at least halve per
// round, so the tree is complete after O(log n) rounds.
//
// Basic usage:
//
//	points := mat.NewDense(4, 2, []float64{
//		0, 0,
//		1, 0,
//		0, 1,
//		10, 10,
//	})
//	dtb, err := emst.New(points, emst.DefaultConfig())
//	// results is 3×(n-1): lesser index, greater index, distance per column,
//	// sorted by ascending distance.
//	results, err := dtb.ComputeMST()
//
// Set Config.Naive for a brute-force O(n²) reference mode; it produces the
// same tree and serves as the correctness oracle for the pruning logic.
package emst
