// Package bingrid implements the rectangular (r, z) binning grid that
// trajectories deposit samples into. Index computation is grounded on
// pthm-soup/systems/spatial.go's SpatialGrid.cellIndex, adapted from a
// toroidal wrap to a hard clamp: bin-grid indices must never trap, so an
// out-of-range coordinate lands on the boundary cell instead of wrapping.
package bingrid

import (
	"fmt"
	"math"

	"github.com/sankum/buffergas/internal/binstats"
)

// Grid is a rectangular grid over (r, z) in [rMin,rMax] x [zMin,zMax]
// with rBins x zBins cells, each holding a BinStats accumulator.
type Grid struct {
	RMin, RMax float64
	ZMin, ZMax float64
	RBins      int
	ZBins      int
	cells      []*binstats.BinStats
}

// New allocates a zeroed grid. rBins and zBins must each be >= 1.
func New(rMin, rMax, zMin, zMax float64, rBins, zBins int) *Grid {
	if rBins < 1 {
		rBins = 1
	}
	if zBins < 1 {
		zBins = 1
	}
	cells := make([]*binstats.BinStats, rBins*zBins)
	for i := range cells {
		cells[i] = binstats.New()
	}
	return &Grid{
		RMin: rMin, RMax: rMax,
		ZMin: zMin, ZMax: zMax,
		RBins: rBins, ZBins: zBins,
		cells: cells,
	}
}

func clampIndex(v, min, max float64, bins int) int {
	step := (max - min) / float64(bins)
	if step <= 0 {
		return 0
	}
	idx := int(math.Floor((v - min) / step))
	if idx < 0 {
		idx = 0
	}
	if idx > bins-1 {
		idx = bins - 1
	}
	return idx
}

// CellIndex returns the clamped (rIdx, zIdx) for a given (r, z), always
// within [0, RBins) x [0, ZBins).
func (g *Grid) CellIndex(r, z float64) (int, int) {
	return clampIndex(r, g.RMin, g.RMax, g.RBins), clampIndex(z, g.ZMin, g.ZMax, g.ZBins)
}

func (g *Grid) cellAt(rIdx, zIdx int) *binstats.BinStats {
	return g.cells[zIdx*g.RBins+rIdx]
}

// Update computes r = sqrt(x1^2+x2^2), bins (r, x3), and observes the
// tangential velocity v_t = (-x2*v1 + x1*v2)/r into the selected cell.
// Near the axis (r below a small threshold) the tangential velocity is
// undefined; it is reported as 0 to avoid a singular division.
func (g *Grid) Update(x, v [3]float64, t, nColl, lFree float64) {
	r := math.Hypot(x[0], x[1])
	rIdx, zIdx := g.CellIndex(r, x[2])

	var vt float64
	const axisEps = 1e-9
	if r > axisEps {
		vt = (-x[1]*v[0] + x[0]*v[1]) / r
	}

	g.cellAt(rIdx, zIdx).Observe(vt, v[2], t, nColl, lFree)
}

// Merge folds other into g cell by cell. The two grids must share
// identical geometry.
func (g *Grid) Merge(other *Grid) error {
	if g.RBins != other.RBins || g.ZBins != other.ZBins ||
		g.RMin != other.RMin || g.RMax != other.RMax ||
		g.ZMin != other.ZMin || g.ZMax != other.ZMax {
		return fmt.Errorf("bingrid: cannot merge grids with different geometry")
	}
	for i := range g.cells {
		g.cells[i].Merge(other.cells[i])
	}
	return nil
}

// Cell returns the accumulator at the given raw indices, or nil if out
// of range. Intended for export, where the caller already iterates
// [0,RBins) x [0,ZBins).
func (g *Grid) Cell(rIdx, zIdx int) *binstats.BinStats {
	if rIdx < 0 || rIdx >= g.RBins || zIdx < 0 || zIdx >= g.ZBins {
		return nil
	}
	return g.cellAt(rIdx, zIdx)
}

// CellCenter returns the (r, z) midpoint of cell (rIdx, zIdx):
// r = RMin + (rIdx+0.5)*rWidth and z = ZMin + (zIdx+0.5)*zWidth, where
// the indices are 0-based and rWidth/zWidth are the cell widths.
func (g *Grid) CellCenter(rIdx, zIdx int) (r, z float64) {
	rStep := (g.RMax - g.RMin) / float64(g.RBins)
	zStep := (g.ZMax - g.ZMin) / float64(g.ZBins)
	r = g.RMin + (float64(rIdx)+0.5)*rStep
	z = g.ZMin + (float64(zIdx)+0.5)*zStep
	return
}
