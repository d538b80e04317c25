// Package collision implements CollisionSampler: rejection sampling of
// the buffer-gas atom's speed and approach angle conditional on the
// test particle's relative velocity and local temperature, backed by a
// ProposalTable lookup, followed by the elastic hard-sphere
// post-collision velocity update.
package collision

import (
	"math"
	"math/rand"

	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/proposaltable"
	"github.com/sankum/buffergas/internal/rejection"
)

// runtimeEnvelope is M = 2, the envelope constant used at sampling
// time (distinct from ProposalTable's generation-time M = 20).
const runtimeEnvelope = 2.0

// vgProposalWiden and thetaProposalWiden are the widened proposal
// scales the design notes call out explicitly: the stored table sigma
// is not used directly, 1.5x / 3x of it is used as the live proposal
// scale instead.
const (
	vgProposalWiden    = 1.5
	thetaProposalWiden = 3.0
)

// coldTemperatureFloor is the T < 1e-2 cold-limit threshold.
const coldTemperatureFloor = 1e-2

// degenerateSpeedFloor guards the "use a random unit vector instead of
// v_g_bulk - v" branch of the post-collision update.
const degenerateSpeedFloor = 1e-3

// Sampler is the shared, read-only collision kernel: mass parameters
// plus the ProposalTable it looks up into.
type Sampler struct {
	M, m  float64 // test-particle mass, buffer-gas atom mass (AMU)
	Table *proposaltable.Table
}

// New constructs a Sampler over the given masses and proposal table.
func New(testMass, gasMass float64, table *proposaltable.Table) *Sampler {
	return &Sampler{M: testMass, m: gasMass, Table: table}
}

// GasMass returns the buffer-gas atom mass used by this sampler, needed
// by callers computing the mean free path.
func (s *Sampler) GasMass() float64 { return s.m }

// SampleSpeedAngle samples (v_g, theta) given relative speed u and
// local temperature T. Below coldTemperatureFloor it returns (u, 0)
// deterministically (the cold limit).
func (s *Sampler) SampleSpeedAngle(rng *rand.Rand, u, T float64, counter *diag.Counter) (vg, theta float64) {
	if T < coldTemperatureFloor {
		return u, 0
	}

	entry := s.Table.Lookup(T, u)
	vg, arg := rejection.SampleVG(rng, u, T, s.m, entry.MuVG, vgProposalWiden*entry.SigmaVG, runtimeEnvelope, counter)
	theta = rejection.SampleTheta(rng, u, vg, T, s.m, arg, thetaProposalWiden*entry.SigmaTheta, runtimeEnvelope, counter)
	return vg, theta
}

func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add3(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func norm3(a [3]float64) float64      { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }
func scale3(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

// randomUnitVector3 draws a uniform point on the unit sphere.
func randomUnitVector3(rng *rand.Rand) [3]float64 {
	cosChi := rng.Float64()*2 - 1
	sinChi := math.Sqrt(1 - cosChi*cosChi)
	eps := rng.Float64() * 2 * math.Pi
	return [3]float64{sinChi * math.Cos(eps), sinChi * math.Sin(eps), cosChi}
}

// orthonormalPerp returns a unit vector orthogonal to dir, built by
// orthonormalizing a random vector against it.
func orthonormalPerp(rng *rand.Rand, dir [3]float64) [3]float64 {
	r := randomUnitVector3(rng)
	dot := r[0]*dir[0] + r[1]*dir[1] + r[2]*dir[2]
	perp := sub3(r, scale3(dir, dot))
	n := norm3(perp)
	if n < 1e-12 {
		// r happened to land parallel to dir; pick an arbitrary
		// orthogonal vector instead of retrying.
		if math.Abs(dir[0]) < 0.9 {
			perp = [3]float64{1 - dir[0]*dir[0], -dir[0] * dir[1], -dir[0] * dir[2]}
		} else {
			perp = [3]float64{-dir[1] * dir[0], 1 - dir[1]*dir[1], -dir[1] * dir[2]}
		}
		n = norm3(perp)
	}
	return scale3(perp, 1/n)
}

// Update performs the elastic hard-sphere post-collision velocity
// update (steps 1-5 of the component design), given the test
// particle's current velocity v, the local bulk gas velocity
// vGasBulk, and a sampled (vg, theta) pair from SampleSpeedAngle.
func (s *Sampler) Update(rng *rand.Rand, v, vGasBulk [3]float64, vg, theta float64) [3]float64 {
	rel := sub3(vGasBulk, v)
	var vHatDir [3]float64
	if norm3(rel) < degenerateSpeedFloor {
		vHatDir = randomUnitVector3(rng)
	} else {
		vHatDir = scale3(rel, 1/norm3(rel))
	}
	vHatPerp := orthonormalPerp(rng, vHatDir)

	gasVelocity := add3(v, scale3(add3(scale3(vHatDir, math.Cos(theta)), scale3(vHatPerp, math.Sin(theta))), vg))

	cosChi := rng.Float64()*2 - 1
	sinChi := math.Sqrt(1 - cosChi*cosChi)
	eps := rng.Float64() * 2 * math.Pi
	g := norm3(sub3(v, gasVelocity))

	isoDir := [3]float64{cosChi, sinChi * math.Cos(eps), sinChi * math.Sin(eps)}
	numerator := add3(scale3(v, s.M), scale3(add3(gasVelocity, scale3(isoDir, g)), s.m))
	return scale3(numerator, 1/(s.M+s.m))
}

// SampleAndUpdate is the convenience entry point TrajectoryEngine calls
// once per collision: sample (v_g, theta) from the relative speed to
// the local bulk flow, then apply the hard-sphere update.
func (s *Sampler) SampleAndUpdate(rng *rand.Rand, v, vGasBulk [3]float64, T float64, counter *diag.Counter) [3]float64 {
	u := norm3(sub3(v, vGasBulk))
	vg, theta := s.SampleSpeedAngle(rng, u, T, counter)
	return s.Update(rng, v, vGasBulk, vg, theta)
}
