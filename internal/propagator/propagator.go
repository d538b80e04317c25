// Package propagator implements ballistic and harmonic-trap closed-form
// stepping between collisions, including the piecewise axial-threshold
// trap gating that switches the radial potential on and off as the
// particle crosses (z_min, z_max).
package propagator

import (
	"math"
	"math/rand"
)

// minSpeed is the |v| < 1e-6 guard: the propagator no-ops below this.
const minSpeed = 1e-6

// maxFreePath is the 1000 m hard cap on a sampled free-path length.
const maxFreePath = 1000.0

// MeanFreePath computes lambda = |v| / (rho * sigma * sqrt(8kT/(pi*m) + v_rel^2))
// for a test particle moving at speed |v| and relative speed vRel through
// a buffer gas of atom mass m, density rho, cross-section sigma, and
// temperature T.
func MeanFreePath(speed, rho, sigma, T, m, vRel float64, kB float64) float64 {
	denom := rho * sigma * math.Sqrt(8*kB*T/(math.Pi*m)+vRel*vRel)
	if denom <= 0 {
		return maxFreePath
	}
	return speed / denom
}

// SampleFreePath draws an exponentially-distributed free-path length
// with mean lambda, capped at maxFreePath.
func SampleFreePath(rng *rand.Rand, lambda float64) float64 {
	u := rng.Float64()
	for u <= 0 {
		u = rng.Float64()
	}
	d := -math.Log(u) * lambda
	if d > maxFreePath {
		return maxFreePath
	}
	return d
}

// Step advances (x, v) over a known duration t of collision-free
// flight with signed trap frequency omega, per the axial/radial
// closed-form update. It does not perform the axial-threshold gating;
// callers that need gating should use StepGated.
func Step(x, v [3]float64, omega, t float64) (xNew, vNew [3]float64) {
	if speed3(v) < minSpeed {
		return x, v
	}

	xNew[2] = x[2] + v[2]*t
	vNew[2] = v[2]

	if omega == 0 {
		xNew[0] = x[0] + v[0]*t
		xNew[1] = x[1] + v[1]*t
		vNew[0] = v[0]
		vNew[1] = v[1]
		return
	}

	s := math.Sqrt2 * math.Abs(omega) * t
	if omega > 0 {
		cs, sn := math.Cos(s), math.Sin(s)
		for i := 0; i < 2; i++ {
			xNew[i] = x[i]*cs + v[i]*sn/(math.Sqrt2*omega)
			vNew[i] = v[i]*cs - math.Sqrt2*x[i]*omega*sn
		}
		return
	}

	absOmega := -omega
	ch, sh := math.Cosh(s), math.Sinh(s)
	for i := 0; i < 2; i++ {
		xNew[i] = x[i]*ch + v[i]*sh/(math.Sqrt2*absOmega)
		vNew[i] = v[i]*ch + math.Sqrt2*x[i]*absOmega*sh
	}
	return
}

// StepGated advances (x, v) over a Euclidean distance d, converting it
// to time via t = d/|v|, and gates the trap so omega is only applied
// while zMin <= x3 <= zMax at every instant — the "corrected" semantics
// from the design notes' Open Question: the trap is active iff the
// axial coordinate is inside the interval at every infinitesimal
// instant, applied piecewise by splitting the step at each threshold
// crossing.
func StepGated(x, v [3]float64, omega, zMin, zMax, d float64) (xNew, vNew [3]float64) {
	speed := speed3(v)
	if speed < minSpeed {
		return x, v
	}
	return stepGatedRecursive(x, v, omega, zMin, zMax, d, speed)
}

func speed3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func trapActive(z, zMin, zMax float64) bool {
	return z >= zMin && z <= zMax
}

func stepGatedRecursive(x, v [3]float64, omega, zMin, zMax, d, speed float64) (xNew, vNew [3]float64) {
	if d <= 0 {
		return x, v
	}
	t := d / speed

	effectiveOmega := 0.0
	if trapActive(x[2], zMin, zMax) {
		effectiveOmega = omega
	}

	candX, candV := Step(x, v, effectiveOmega, t)

	crossing, frac := firstAxialCrossing(x[2], candX[2], zMin, zMax)
	if !crossing {
		return candX, candV
	}

	tPart := t * frac
	xAtThresh, vAtThresh := Step(x, v, effectiveOmega, tPart)
	// snap exactly to the threshold that was crossed
	if math.Abs(xAtThresh[2]-zMin) < math.Abs(xAtThresh[2]-zMax) && withinSnapRange(x[2], candX[2], zMin) {
		xAtThresh[2] = zMin
	} else if withinSnapRange(x[2], candX[2], zMax) {
		xAtThresh[2] = zMax
	}

	consumed := distance3(x, xAtThresh)
	remaining := d - consumed
	if remaining <= 0 {
		return xAtThresh, vAtThresh
	}
	return stepGatedRecursive(xAtThresh, vAtThresh, omega, zMin, zMax, remaining, speed)
}

func withinSnapRange(zStart, zEnd, threshold float64) bool {
	lo, hi := zStart, zEnd
	if lo > hi {
		lo, hi = hi, lo
	}
	return threshold >= lo && threshold <= hi
}

// firstAxialCrossing reports whether the axial coordinate crosses
// zMin or zMax between zStart and zEnd, and the fractional distance
// (in [0,1]) along that axial path at which the first crossing occurs.
func firstAxialCrossing(zStart, zEnd, zMin, zMax float64) (crossed bool, frac float64) {
	if zEnd == zStart {
		return false, 0
	}
	best := math.Inf(1)
	found := false
	for _, thr := range [2]float64{zMin, zMax} {
		if (zStart < thr) != (zEnd < thr) {
			f := (thr - zStart) / (zEnd - zStart)
			if f > 1e-12 && f < best {
				best = f
				found = true
			}
		}
	}
	if !found {
		return false, 0
	}
	return true, best
}

func distance3(a, b [3]float64) float64 {
	return math.Hypot(math.Hypot(a[0]-b[0], a[1]-b[1]), a[2]-b[2])
}
