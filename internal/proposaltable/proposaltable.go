// Package proposaltable implements the 2-D (T, U) lookup table of
// Gaussian proposal parameters that CollisionSampler widens and samples
// from. The grid-fill loop structure is grounded on
// internal/optim/grid_search.go's recursive axis-at-a-time parameter
// enumeration, flattened here to two nested axes since the table's
// dimensionality is fixed. The fill is parallelized with
// internal/workerpool, each cell independent of its neighbors.
package proposaltable

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/sankum/buffergas/internal/kinetics"
	"github.com/sankum/buffergas/internal/rejection"
	"github.com/sankum/buffergas/internal/workerpool"
)

// axisSamples is "21 samples per axis" from the component design.
const axisSamples = 21

// generationEnvelope is the M = 20 envelope constant used only while
// bootstrapping table entries from the first-guess proposal.
const generationEnvelope = 20.0

// generationDraws is "draw 100 samples" used to estimate each cell's
// stored moments.
const generationDraws = 100

// Entry is one cell's stored Gaussian proposal parameters.
type Entry struct {
	MuVG, SigmaVG, SigmaTheta float64
}

// Table is the shared, read-only (T, U) grid built once at startup.
type Table struct {
	TMin, TStep, TMax float64
	UMin, UStep, UMax float64
	entries           []Entry // row-major, T-major: entries[ti*axisSamples+ui]
}

// New builds a Table over [tMin,tMax] x [0,uMax], each axis sampled at
// axisSamples points, bootstrapping each cell from the first-guess
// formula and a private RNG stream seeded from seed+cellIndex so table
// generation is itself reproducible.
func New(tMin, tMax, uMax, m float64, seed int64) *Table {
	if tMax <= tMin {
		tMax = tMin + 1
	}
	tbl := &Table{
		TMin: tMin, TMax: tMax,
		TStep: (tMax - tMin) / float64(axisSamples-1),
		UMin:  0, UMax: uMax,
		UStep:   uMax / float64(axisSamples-1),
		entries: make([]Entry, axisSamples*axisSamples),
	}

	workerpool.ParallelFor(axisSamples*axisSamples, runtime.NumCPU(), func(cell int) {
		ti := cell / axisSamples
		ui := cell % axisSamples
		T := tbl.TMin + float64(ti)*tbl.TStep
		U := tbl.UMin + float64(ui)*tbl.UStep
		if T <= 0 {
			T = 1e-3
		}
		tbl.entries[cell] = generateCell(T, U, m, seed+int64(cell))
	})

	return tbl
}

// generateCell computes the first-guess proposal, draws
// generationDraws samples of (v_g, theta) through the shared rejection
// primitives, and stores the empirical mean/std.
func generateCell(T, U, m float64, seed int64) Entry {
	sigmaVG0 := 1.5 * math.Sqrt(8*kinetics.KB*(T+0.2)/(math.Pi*m))
	sigmaTheta0 := 1.5 * math.Pi * sigmaVG0 / (sigmaVG0 + U)
	muVG0 := U + sigmaVG0

	rng := rand.New(rand.NewSource(seed))
	vgSamples := make([]float64, generationDraws)
	thetaSamples := make([]float64, generationDraws)

	for i := 0; i < generationDraws; i++ {
		vg, arg := rejection.SampleVG(rng, U, T, m, muVG0, sigmaVG0, generationEnvelope, nil)
		theta := rejection.SampleTheta(rng, U, vg, T, m, arg, sigmaTheta0, generationEnvelope, nil)
		vgSamples[i] = vg
		thetaSamples[i] = theta
	}

	return Entry{
		MuVG:       mean(vgSamples),
		SigmaVG:    stddev(vgSamples),
		SigmaTheta: stddev(thetaSamples),
	}
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func stddev(xs []float64) float64 {
	m := mean(xs)
	s := 0.0
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	if len(xs) < 2 {
		return 0
	}
	return math.Sqrt(s / float64(len(xs)-1))
}

// Lookup rounds (T, U) to the nearest cell, clamping both axes to the
// table's extents, and returns that cell's stored parameters.
func (t *Table) Lookup(T, U float64) Entry {
	ti := roundClampIndex(T, t.TMin, t.TStep)
	ui := roundClampIndex(U, t.UMin, t.UStep)
	return t.entries[ti*axisSamples+ui]
}

func roundClampIndex(v, min, step float64) int {
	if step <= 0 {
		return 0
	}
	idx := int(math.Round((v - min) / step))
	if idx < 0 {
		idx = 0
	}
	if idx > axisSamples-1 {
		idx = axisSamples - 1
	}
	return idx
}
