// Package particlesource builds the default particle-source closure
// described in spec.md section 6's configuration surface: a capability
// object (per the design notes' "closures for particle-source and
// collision predicates" guidance) producing (x, v) samples for
// driver.Source, with no shared mutable state so any worker can call it
// for any index without coordination.
package particlesource

import (
	"math"
	"math/rand"

	"github.com/sankum/buffergas/internal/config"
	"github.com/sankum/buffergas/internal/kinetics"
)

// indexStride decorrelates the per-index RNG seed from the master seed
// used elsewhere, so that source sampling is reproducible per index
// regardless of which worker or in what order calls it.
const indexStride = 1000003

// New returns a closure producing the default particle source from
// cfg: position (r, 0, z); velocity (vr+G, G, vz+G) with
// G ~ N(0, sqrt(kB*T/M)) drawn independently per component. T = 0
// collapses the thermal spread to 0 deterministically, without
// consuming any randomness.
func New(cfg *config.Config) func(idx int) (x0, v0 [3]float64) {
	sigma := 0.0
	if cfg.T > 0 && cfg.M > 0 {
		sigma = math.Sqrt(kinetics.KB * cfg.T / cfg.M)
	}

	return func(idx int) (x0, v0 [3]float64) {
		x0 = [3]float64{cfg.R, 0, cfg.Z}
		if sigma == 0 {
			return x0, [3]float64{cfg.VR, 0, cfg.VZ}
		}
		rng := rand.New(rand.NewSource(cfg.Seed ^ int64(idx)*indexStride))
		v0 = [3]float64{
			cfg.VR + rng.NormFloat64()*sigma,
			rng.NormFloat64() * sigma,
			cfg.VZ + rng.NormFloat64()*sigma,
		}
		return x0, v0
	}
}
