// Package smooth implements Laplacian centroid smoothing of a vertex
// graph under a per-vertex fixity mask. It is included alongside the
// force-density and dynamic relaxation solvers because it shares their
// data model (adjacency + fixed mask + vertex coordinates) and the same
// in-place iteration discipline.
package smooth

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/blockrg/goformfind/internal/partition"
	"github.com/blockrg/goformfind/network"
	"github.com/blockrg/goformfind/progress"
)

// SmoothCentroid performs kmax Jacobi-style smoothing sweeps over
// model.Vertices: each sweep snapshots the current coordinates, then
// replaces every non-fixed vertex with the arithmetic mean of its
// neighbors' snapshot coordinates. Fixed vertices are never modified;
// kmax=0 is a no-op.
//
// A non-fixed vertex with zero neighbors is a caller precondition
// violation and is reported as an error rather than left to divide by
// zero.
func SmoothCentroid(model *network.SmoothModel, kmax int, onStep progress.OnStepFunc) error {
	if err := model.Validate(); err != nil {
		return err
	}
	n := len(model.Vertices)
	for i, nbrs := range model.Nbrs {
		if model.Fixed[i] == 0 && nbrs == 0 {
			return fmt.Errorf("smooth: vertex %d is free but has zero neighbors", i)
		}
	}
	if kmax <= 0 || n == 0 {
		return nil
	}

	xyz := make([][3]float64, n)
	partitions := partition.Split(n, runtime.GOMAXPROCS(0))

	for k := 0; k < kmax; k++ {
		copy(xyz, model.Vertices)

		var wg sync.WaitGroup
		for _, part := range partitions {
			lo, hi := part[0], part[1]
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				sweepRange(model, xyz, lo, hi)
			}(lo, hi)
		}
		wg.Wait()

		progress.Notify(onStep, k)
	}
	return nil
}

// sweepRange applies one Jacobi sweep to vertices [lo, hi), reading only
// from the snapshot xyz and writing into model.Vertices.
func sweepRange(model *network.SmoothModel, xyz [][3]float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		if model.Fixed[i] != 0 {
			continue
		}
		var sum [3]float64
		for _, nbr := range model.Neighbors[i] {
			sum[0] += xyz[nbr][0]
			sum[1] += xyz[nbr][1]
			sum[2] += xyz[nbr][2]
		}
		count := float64(model.Nbrs[i])
		model.Vertices[i] = [3]float64{sum[0] / count, sum[1] / count, sum[2] / count}
	}
}
