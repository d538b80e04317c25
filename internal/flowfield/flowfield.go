// Package flowfield implements the background-flow lookup: a 2-D (z, r)
// nearest-neighbor index over precomputed flow samples, augmented with a
// per-sample validity radius so that nearby queries can reuse a cached
// interpolation point instead of re-querying the tree.
package flowfield

import (
	"math"
	"runtime"

	"github.com/sankum/buffergas/internal/kinetics"
	"github.com/sankum/buffergas/internal/workerpool"
)

// toleranceEps is the fractional tolerance used both to compute each
// sample's validity radius and to guarantee cached-value staleness
// bounds.
const toleranceEps = 0.2

// kNeighbors is K in "the K = 100 nearest neighbors" used for the
// validity-radius computation.
const kNeighbors = 100

// FlowPoint is one background-flow sample. Only points with T > 0 are
// retained by New.
type FlowPoint struct {
	Z, R        float64
	VBulkAxial  float64
	VBulkRadial float64
	T           float64
	Rho         float64
	DMin        float64 // validity radius, computed by New
}

// FlowField is the shared, read-only background-flow lookup built once
// at startup and queried by every worker.
type FlowField struct {
	points []FlowPoint
	tree   *kdNode
}

// New builds the k-d tree and precomputes each retained point's
// validity radius. Points with T <= 0 are dropped before the tree is
// built, per the component's stated input contract.
func New(raw []FlowPoint) (*FlowField, error) {
	points := make([]FlowPoint, 0, len(raw))
	for _, p := range raw {
		if p.T > 0 {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, kinetics.ErrEmptyFlowField
	}

	idxPoints := make([]point2, len(points))
	for i, p := range points {
		idxPoints[i] = point2{z: p.Z, r: p.R, idx: i}
	}
	tree := buildKDTree(idxPoints, 0)

	ff := &FlowField{points: points, tree: tree}
	ff.computeValidityRadii()
	return ff, nil
}

// withinTolerance reports whether b is within [eps*a, (1+eps)*a] of a,
// per-field (symmetric in sign so a zero base value is handled safely).
func withinTolerance(a, b, eps float64) bool {
	lo := math.Min(eps*a, (1+eps)*a)
	hi := math.Max(eps*a, (1+eps)*a)
	if lo == hi {
		return b == a
	}
	return b >= lo && b <= hi
}

func (ff *FlowField) computeValidityRadii() {
	workerpool.ParallelFor(len(ff.points), runtime.NumCPU(), func(i int) {
		base := ff.points[i]
		candidates := ff.tree.kNearest(base.Z, base.R, kNeighbors, nil)

		dMin := 0.0
		for _, c := range candidates {
			if c.pt.idx == i {
				continue
			}
			other := ff.points[c.pt.idx]
			ok := withinTolerance(base.VBulkAxial, other.VBulkAxial, toleranceEps) &&
				withinTolerance(base.VBulkRadial, other.VBulkRadial, toleranceEps) &&
				withinTolerance(base.T, other.T, toleranceEps) &&
				withinTolerance(base.Rho, other.Rho, toleranceEps)
			if !ok {
				dMin = math.Sqrt(c.sqd)
				break
			}
			dMin = math.Sqrt(c.sqd) // farthest explored so far
		}
		ff.points[i].DMin = dMin
	})
}

// nearestIndex returns the index (into ff.points) of the sample closest
// to (z, r).
func (ff *FlowField) nearestIndex(z, r float64) int {
	p, ok := ff.tree.nearest(z, r)
	if !ok {
		return -1
	}
	return p.idx
}

// InterpState is the per-worker cache described in the data model: a
// cached reference point, the Cartesian bulk gas velocity and scalar
// fields at that point, and the cached validity radius.
type InterpState struct {
	ZRef, RRef    float64
	VGX, VGY, VGZ float64
	T, Rho        float64
	DMin          float64
	valid         bool
}

// Refresh implements FlowField.refresh(interp, x): it reuses the cache
// if the query point is still within DMin of the cached reference, and
// otherwise re-queries the tree and rotates the cached bulk radial
// velocity into Cartesian components using the particle's current
// azimuth.
func (ff *FlowField) Refresh(interp *InterpState, x [3]float64) {
	r := math.Hypot(x[0], x[1])
	z := x[2]

	if interp.valid {
		delta := math.Hypot(z-interp.ZRef, r-interp.RRef)
		if delta <= interp.DMin {
			return
		}
	}

	idx := ff.nearestIndex(z, r)
	if idx < 0 {
		return
	}
	p := ff.points[idx]

	phi := math.Atan2(x[1], x[0])
	interp.ZRef = p.Z
	interp.RRef = p.R
	interp.T = p.T
	interp.Rho = p.Rho
	interp.DMin = p.DMin
	interp.VGX = p.VBulkRadial * math.Cos(phi)
	interp.VGY = p.VBulkRadial * math.Sin(phi)
	interp.VGZ = p.VBulkAxial
	interp.valid = true
}

// BoundingBox returns the minimum and maximum axial and radial
// coordinates over the retained flow samples; every sample lies within
// these bounds inclusively.
func (ff *FlowField) BoundingBox() (zMin, zMax, rMin, rMax float64) {
	zMin, zMax = ff.points[0].Z, ff.points[0].Z
	rMin, rMax = ff.points[0].R, ff.points[0].R
	for _, p := range ff.points[1:] {
		if p.Z < zMin {
			zMin = p.Z
		}
		if p.Z > zMax {
			zMax = p.Z
		}
		if p.R < rMin {
			rMin = p.R
		}
		if p.R > rMax {
			rMax = p.R
		}
	}
	return
}

// MaxAbsBulkRadial returns max |v_bulk_radial| across all retained
// samples, used by ProposalTable to size its U axis.
func (ff *FlowField) MaxAbsBulkRadial() float64 {
	m := 0.0
	for _, p := range ff.points {
		if v := math.Abs(p.VBulkRadial); v > m {
			m = v
		}
	}
	return m
}

// TemperatureRange returns the observed min/max flow temperature,
// used by ProposalTable to size its T axis.
func (ff *FlowField) TemperatureRange() (tMin, tMax float64) {
	tMin, tMax = ff.points[0].T, ff.points[0].T
	for _, p := range ff.points[1:] {
		if p.T < tMin {
			tMin = p.T
		}
		if p.T > tMax {
			tMax = p.T
		}
	}
	return
}
