// Package geometry implements the axisymmetric wall description: a
// collection of 2-D segments in (z, rho) plus an outer bounding box, and
// the segment-intersection test a trajectory step is checked against.
//
// The read-only-query-object shape (a small interface wrapping the wall
// data, handed to workers by reference) is grounded on the geometry
// query object in sbinet-tmvl/geometry.go; the intersection algorithm
// itself — Kirk's "Faster Line Segment Intersection" sign-of-denominator
// branch, with half-closed tie-breaking — is implemented directly from
// the component design, since no file in the retrieval pack implements
// 2-D segment intersection.
package geometry

import "math"

// Segment is one wall segment in (z, rho) coordinates. ID is read from
// the geometry file but not used by any geometric test.
type Segment struct {
	ID       int
	Z1, Rho1 float64
	Z2, Rho2 float64
}

// Geometry is the shared, read-only wall description built once and
// queried by every worker.
type Geometry struct {
	Segments   []Segment
	ZMin, ZMax float64
	RhoMax     float64
}

// New constructs a Geometry from a segment list and outer bounds.
func New(segments []Segment, zMin, zMax, rhoMax float64) *Geometry {
	return &Geometry{Segments: segments, ZMin: zMin, ZMax: zMax, RhoMax: rhoMax}
}

// Code is the result of Test: 0 = no hit, 1 = wall hit, 2 = exit.
type Code int

const (
	NoHit Code = 0
	Hit   Code = 1
	Exit  Code = 2
)

// Test checks the step from x1 to x2 (3-D Cartesian) against the wall
// segments and the outer bounding box, returning the first hit's code.
func (g *Geometry) Test(x1, x2 [3]float64) Code {
	z1, rho1 := x1[2], math.Hypot(x1[0], x1[1])
	z2, rho2 := x2[2], math.Hypot(x2[0], x2[1])

	for _, seg := range g.Segments {
		if segmentsIntersect(z1, rho1, z2, rho2, seg.Z1, seg.Rho1, seg.Z2, seg.Rho2) {
			return Hit
		}
	}

	if z2 < g.ZMin || z2 > g.ZMax || rho2 > g.RhoMax {
		return Exit
	}

	return NoHit
}

// segmentsIntersect implements Kirk's "Faster Line Segment Intersection"
// sign-of-denominator branch: both candidate parameters are computed
// from a single cross-product denominator, and the segments intersect
// iff both parameters lie strictly between 0 and the denominator
// (same sign as the denominator). Tie-breaking is half-closed: a ray
// that only touches a vertex (num == 0 or num == denom) is treated as
// non-intersecting, matching the Kirk algorithm's parity.
func segmentsIntersect(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 float64) bool {
	adx, ady := ax2-ax1, ay2-ay1
	bdx, bdy := bx2-bx1, by2-by1

	denom := adx*bdy - ady*bdx
	if denom == 0 {
		return false // parallel or degenerate, no interior crossing
	}

	ex, ey := bx1-ax1, by1-ay1

	numA := ex*bdy - ey*bdx
	numB := ex*ady - ey*adx

	if denom > 0 {
		if numA <= 0 || numA >= denom {
			return false
		}
		if numB <= 0 || numB >= denom {
			return false
		}
		return true
	}

	if numA >= 0 || numA <= denom {
		return false
	}
	if numB >= 0 || numB <= denom {
		return false
	}
	return true
}
