package emst

import (
	"math"
	"sync"
)

// searchNaive performs the brute-force O(n²) nearest-cross-component search
// for one iteration. With more than one worker configured, query points are
// split into contiguous ranges scanned concurrently; the merge preserves the
// sequential result exactly.
func (d *DualTreeBoruvka) searchNaive() {
	if d.workers <= 1 || d.n <= 1 {
		d.naiveRange(0, d.n, d.neighborsInComponent, d.neighborsOutComponent, d.neighborsDistances)
		return
	}
	d.searchNaiveParallel()
}

// naiveRange scans query points [start, end) against every point, recording
// per-component candidates into the supplied arrays. Reads only the
// componentOfPoint snapshot, so disjoint ranges may run concurrently.
func (d *DualTreeBoruvka) naiveRange(start, end int, in, out []int, dist []float64) {
	dims := d.dims
	for i := start; i < end; i++ {
		iComp := d.componentOfPoint[i]
		a := d.data[i*dims : (i+1)*dims]
		for j := 0; j < d.n; j++ {
			if iComp == d.componentOfPoint[j] {
				continue
			}
			ds := squaredDistance(a, d.data[j*dims:(j+1)*dims])
			if ds < dist[iComp] {
				dist[iComp] = ds
				in[iComp] = i
				out[iComp] = j
			}
		}
	}
}

func (d *DualTreeBoruvka) searchNaiveParallel() {
	type candidates struct {
		in, out []int
		dist    []float64
	}

	rowsPerWorker := (d.n + d.workers - 1) / d.workers
	parts := make([]candidates, 0, d.workers)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > d.n {
			end = d.n
		}
		if start >= d.n {
			break
		}

		p := candidates{
			in:   make([]int, d.n),
			out:  make([]int, d.n),
			dist: make([]float64, d.n),
		}
		for i := 0; i < d.n; i++ {
			p.in[i] = -1
			p.out[i] = -1
			p.dist[i] = math.Inf(1)
		}
		parts = append(parts, p)

		wg.Add(1)
		go func(p candidates, start, end int) {
			defer wg.Done()
			d.naiveRange(start, end, p.in, p.out, p.dist)
		}(p, start, end)
	}
	wg.Wait()

	// Merge in worker (= ascending query index) order, replacing only on
	// strictly smaller distance. Ties therefore resolve to the lowest query
	// index, exactly as the sequential scan does.
	for _, p := range parts {
		for c := 0; c < d.n; c++ {
			if p.dist[c] < d.neighborsDistances[c] {
				d.neighborsDistances[c] = p.dist[c]
				d.neighborsInComponent[c] = p.in[c]
				d.neighborsOutComponent[c] = p.out[c]
			}
		}
	}
}
