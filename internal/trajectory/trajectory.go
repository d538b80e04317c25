// Package trajectory implements TrajectoryEngine: the per-particle loop
// that alternates ballistic/harmonic flight with buffer-gas collisions
// until the particle strikes a wall segment or leaves the outer
// bounding box, depositing bin statistics along the way.
package trajectory

import (
	"math"
	"math/rand"

	"github.com/sankum/buffergas/internal/bingrid"
	"github.com/sankum/buffergas/internal/collision"
	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/flowfield"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/kinetics"
	"github.com/sankum/buffergas/internal/propagator"
)

// minTrackedSpeed mirrors the propagator's own |v| < 1e-6 guard: below
// this a particle is considered stalled and gets a forced collision
// kick before the flight loop starts.
const minTrackedSpeed = 1e-6

// Params holds the per-run physical constants a TrajectoryEngine needs
// beyond the shared geometry, flow field, and collision sampler.
type Params struct {
	Sigma      float64 // hard-sphere cross-section
	Omega      float64 // trap frequency magnitude; sign is randomized per trajectory
	ZMin, ZMax float64 // trap axial window
	PFlip      float64 // per-step probability the trap sign flips
}

// Engine runs individual trajectories against a shared, read-only
// geometry, flow field, and collision sampler.
type Engine struct {
	Geom    *geometry.Geometry
	Flow    *flowfield.FlowField
	Sampler *collision.Sampler
	Params  Params
	Diag    *diag.Counter
}

// Row is one particle's terminal record: the endpoint of the geometry
// test that stopped it, its velocity at that point, and accumulated
// collision/time counters.
type Row struct {
	Idx    int
	X0     [3]float64 // position at the start of the terminating step
	XNext  [3]float64 // position at the step that produced Code
	V      [3]float64 // velocity at that step
	NColls int
	Time   float64
	Code   geometry.Code
}

// Run drives one particle from (x0, v0) until Geometry.Test reports a
// hit or exit, depositing every intermediate bin observation into grid
// if grid is non-nil.
func (e *Engine) Run(rng *rand.Rand, idx int, x0, v0 [3]float64, grid *bingrid.Grid) Row {
	x, v := x0, v0

	interp := &flowfield.InterpState{}
	e.Flow.Refresh(interp, x)

	if speed3(v) < minTrackedSpeed {
		vGasBulk := [3]float64{interp.VGX, interp.VGY, interp.VGZ}
		v = e.Sampler.SampleAndUpdate(rng, v, vGasBulk, interp.T, e.Diag)
	}

	omega := e.Params.Omega
	if rng.Float64() < 0.5 {
		omega = -omega
	}

	t := 0.0
	nColls := 0

	for {
		e.Flow.Refresh(interp, x)
		vGasBulk := [3]float64{interp.VGX, interp.VGY, interp.VGZ}
		vRel := speed3(sub3(v, vGasBulk))

		lambda := propagator.MeanFreePath(speed3(v), interp.Rho, e.Params.Sigma, interp.T, e.Sampler.GasMass(), vRel, kinetics.KB)
		d := propagator.SampleFreePath(rng, lambda)

		xNext, vNext := propagator.StepGated(x, v, omega, e.Params.ZMin, e.Params.ZMax, d)

		code := e.Geom.Test(x, xNext)
		if code != geometry.NoHit {
			return Row{Idx: idx, X0: x, XNext: xNext, V: v, NColls: nColls, Time: t, Code: code}
		}

		dt := 0.0
		if speed := speed3(v); speed > minTrackedSpeed {
			dt = d / speed
		}
		t += dt
		nColls++

		if grid != nil {
			grid.Update(x, v, t, float64(nColls), d)
		}

		x, v = xNext, vNext
		e.Flow.Refresh(interp, x)
		vGasBulk = [3]float64{interp.VGX, interp.VGY, interp.VGZ}
		v = e.Sampler.SampleAndUpdate(rng, v, vGasBulk, interp.T, e.Diag)

		if rng.Float64() < e.Params.PFlip {
			omega = -omega
		}
	}
}

func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func speed3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
