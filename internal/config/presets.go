package config

import "math"

// Presets holds named, ready-to-run parameter sets for the physical
// regimes this engine is commonly pointed at. Grounded on
// internal/config/presets.go's per-model preset map, generalized from
// the teacher's one-map-per-dynamical-model layout to one flat map of
// buffer-gas regimes (this engine has a single physical model, so there
// is no outer model dimension to key on).
var Presets = map[string]*Config{
	// "heavy-in-light" is the standard buffer-gas cooling regime this
	// engine was built for: a heavy test particle (M=191, e.g. a large
	// molecule) thermalizing against a light buffer gas (m=4, helium).
	"heavy-in-light": {
		N: 10000, Z: 0.035, T: 4.0,
		M: 191.0, GasM: 4.0, Sigma: 130e-20,
		Omega: 0.0, ZMin: math.Inf(-1), ZMax: math.Inf(1),
		PFlip: 0.0, RBins: 50, ZBins: 50, Seed: 1,
	},
	// "light-in-heavy" inverts the mass ratio: a light test particle
	// drifting through a heavy buffer gas, exercising the hard-sphere
	// update with m > M.
	"light-in-heavy": {
		N: 10000, Z: 0.035, T: 4.0,
		M: 4.0, GasM: 191.0, Sigma: 130e-20,
		Omega: 0.0, ZMin: math.Inf(-1), ZMax: math.Inf(1),
		PFlip: 0.0, RBins: 50, ZBins: 50, Seed: 1,
	},
	// "trapped-cold" confines the particle in a harmonic trap near the
	// T < 1e-2 cold limit, where CollisionSampler takes its
	// deterministic shortcut and the propagator's oscillation period
	// dominates the trajectory shape.
	"trapped-cold": {
		N: 2000, Z: 0.0, T: 1e-3,
		M: 191.0, GasM: 4.0, Sigma: 130e-20,
		Omega: 1000.0, ZMin: -0.05, ZMax: 0.05,
		PFlip: 0.0, RBins: 30, ZBins: 30, Seed: 1,
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not
// exist. A copy is returned so callers can override individual fields
// without mutating the shared preset map.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the names of all available presets.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
