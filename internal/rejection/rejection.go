// Package rejection holds the two acceptance-rejection sampling
// primitives shared by ProposalTable generation (which bootstraps its
// table entries from a formula-based first guess) and CollisionSampler
// (which uses the same primitives against looked-up, pre-widened table
// parameters). Factoring them out here avoids a dependency cycle
// between those two packages.
package rejection

import (
	"math"
	"math/rand"

	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/kinetics"
	"github.com/sankum/buffergas/internal/numerics"
)

// besselArgClamp mirrors the clamp used inside numerics.BesselI0; kept
// here too so callers can compute the same clamped argument they'll
// later reuse for the angle sample.
const besselArgClamp = 10.0

func normalPDF(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

// foldedPDF is the density of |N(mu, sigma)| at y >= 0.
func foldedPDF(y, mu, sigma float64) float64 {
	return normalPDF(y, mu, sigma) + normalPDF(-y, mu, sigma)
}

func drawFolded(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Abs(rng.NormFloat64()*sigma + mu)
}

// speedTargetPDF is the unnormalized buffer-gas-speed target density:
// f(v) ∝ exp(-m(u^2+v^2)/(2 kB T)) * v * I0(m*u*v/(kB T)).
func speedTargetPDF(v, u, T, m float64) (density, arg float64) {
	arg = m * u * v / (kinetics.KB * T)
	if arg > besselArgClamp {
		arg = besselArgClamp
	}
	density = math.Exp(-m*(u*u+v*v)/(2*kinetics.KB*T)) * v * numerics.BesselI0(arg)
	return
}

// SampleVG rejection-samples the buffer-gas speed v_g using proposal
// |N(muProposal, sigmaProposal)| and envelope constant M, per the
// component design's target density. It returns the accepted (or
// fallback) speed and the Bessel argument evaluated at that speed, for
// reuse by SampleTheta. maxIter bounds the loop at 50*M iterations
// per the error-handling design; on exceedance it substitutes the
// proposal mean and records the event in counter.
func SampleVG(rng *rand.Rand, u, T, m, muProposal, sigmaProposal, envelopeM float64, counter *diag.Counter) (vg, arg float64) {
	maxIter := int(50 * envelopeM)
	for i := 0; i < maxIter; i++ {
		y := drawFolded(rng, muProposal, sigmaProposal)
		density, a := speedTargetPDF(y, u, T, m)
		g := foldedPDF(y, muProposal, sigmaProposal)
		if g <= 0 {
			continue
		}
		accept := density / (envelopeM * g)
		if rng.Float64() < accept {
			return y, a
		}
	}
	if counter != nil {
		counter.VGFallback()
	}
	_, a := speedTargetPDF(muProposal, u, T, m)
	return muProposal, a
}

// SampleTheta rejection-samples the approach angle theta given the
// already-sampled v_g and its Bessel argument besselArg, using proposal
// |N(0, sigmaProposal)| and envelope constant envelopeM. On iteration
// exceedance it returns theta = 0 (the Open Question resolution
// documented in DESIGN.md) and records the event in counter.
func SampleTheta(rng *rand.Rand, u, vg, T, m, besselArg, sigmaProposal, envelopeM float64, counter *diag.Counter) float64 {
	i0 := numerics.BesselI0(besselArg)
	maxIter := int(50 * envelopeM)
	for i := 0; i < maxIter; i++ {
		y := drawFolded(rng, 0, sigmaProposal)
		if y >= math.Pi {
			continue
		}
		density := math.Exp(m*u*vg*math.Cos(y)/(kinetics.KB*T)) / (math.Pi * i0)
		g := foldedPDF(y, 0, sigmaProposal)
		if g <= 0 {
			continue
		}
		accept := density / (2 * envelopeM * g)
		if rng.Float64() < accept {
			return y
		}
	}
	if counter != nil {
		counter.ThetaFallback()
	}
	return 0
}
