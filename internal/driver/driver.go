// Package driver implements ParallelDriver: fans a batch of particles
// out across a worker pool, each worker running its own RNG stream and
// optional private bin grid, merging worker-local grids into shared
// "all" and "exit" accumulators once every worker finishes.
package driver

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/sankum/buffergas/internal/bingrid"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/trajectory"
	"github.com/sankum/buffergas/internal/workerpool"
)

// Source produces the i-th particle's initial (position, velocity).
type Source func(idx int) (x0, v0 [3]float64)

// Result is the outcome of running a full batch: every terminal row,
// plus the merged bin-statistics accumulators over all trajectories
// and over exiting trajectories only.
type Result struct {
	Rows []trajectory.Row
	All  *bingrid.Grid
	Exit *bingrid.Grid
}

// ProgressFunc is called once per completed trajectory, concurrently
// from whichever worker finished it. Implementations must not block
// or mutate shared state without their own synchronization.
type ProgressFunc func(row trajectory.Row)

// Run drives n particles produced by source through engine, splitting
// the work statically across workers goroutines (runtime.NumCPU() if
// workers <= 0). Each worker seeds its RNG from masterSeed+workerIndex,
// so the same (masterSeed, workers) pair reproduces bitwise-identical
// results regardless of scheduling. gridFactory, if non-nil, is called
// once per worker to build that worker's private accumulator; pass nil
// to skip bin-statistics collection entirely.
func Run(n, workers int, masterSeed int64, source Source, eng *trajectory.Engine, gridFactory func() *bingrid.Grid) Result {
	return run(n, workers, masterSeed, source, eng, gridFactory, nil)
}

// RunWithProgress behaves like Run, additionally invoking onProgress
// after each trajectory completes, for a live dashboard to consume.
func RunWithProgress(n, workers int, masterSeed int64, source Source, eng *trajectory.Engine, gridFactory func() *bingrid.Grid, onProgress ProgressFunc) Result {
	return run(n, workers, masterSeed, source, eng, gridFactory, onProgress)
}

func run(n, workers int, masterSeed int64, source Source, eng *trajectory.Engine, gridFactory func() *bingrid.Grid, onProgress ProgressFunc) Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	rows := make([]trajectory.Row, n)

	var allGrid, exitGrid *bingrid.Grid
	var mergeMu sync.Mutex
	if gridFactory != nil {
		allGrid = gridFactory()
		exitGrid = gridFactory()
	}

	chunk := (n + workers - 1) / workers

	workerpool.Run(workers, func(w int) {
		lo := w * chunk
		hi := lo + chunk
		if lo >= n {
			return
		}
		if hi > n {
			hi = n
		}

		rng := rand.New(rand.NewSource(masterSeed + int64(w)))

		var localAll, localExit *bingrid.Grid
		if gridFactory != nil {
			localAll = gridFactory()
			localExit = gridFactory()
		}

		for i := lo; i < hi; i++ {
			x0, v0 := source(i)

			// Each trajectory owns its own bin grid for the duration of
			// its flight, per the per-trajectory lifecycle: its full set
			// of step observations, not just its terminal point, decides
			// whether the exit accumulator sees this trajectory's path.
			var trajGrid *bingrid.Grid
			if gridFactory != nil {
				trajGrid = gridFactory()
			}

			row := eng.Run(rng, i, x0, v0, trajGrid)
			rows[i] = row
			if onProgress != nil {
				onProgress(row)
			}

			if trajGrid != nil {
				_ = localAll.Merge(trajGrid)
				if row.Code == geometry.Exit {
					_ = localExit.Merge(trajGrid)
				}
			}
		}

		if gridFactory != nil {
			mergeMu.Lock()
			_ = allGrid.Merge(localAll)
			_ = exitGrid.Merge(localExit)
			mergeMu.Unlock()
		}
	})

	return Result{Rows: rows, All: allGrid, Exit: exitGrid}
}
