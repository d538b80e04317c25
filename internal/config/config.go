// Package config holds the buffer-gas engine's configuration surface:
// the external interface's "Configuration surface" (spec.md section 6),
// loaded from YAML and validated before a run starts. Grounded on
// internal/config/config.go's DefaultConfig/Load/Save shape, generalized
// from the teacher's per-model init-state union struct to the single
// buffer-gas parameter set this engine actually needs.
package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sankum/buffergas/internal/kinetics"
)

// Config is the full set of run parameters: input file paths, particle
// source defaults, physical constants, and output destinations.
type Config struct {
	Geom string `yaml:"geom"`
	Flow string `yaml:"flow"`

	N int `yaml:"n"`

	// Particle-source defaults: position (r, 0, z), velocity
	// (vr+G, G, vz+G) with G ~ N(0, sqrt(kB*T/M)) per component.
	Z  float64 `yaml:"z"`
	R  float64 `yaml:"r"`
	VZ float64 `yaml:"vz"`
	VR float64 `yaml:"vr"`
	T  float64 `yaml:"T"`

	M     float64 `yaml:"M"`     // test-particle mass, AMU
	GasM  float64 `yaml:"m"`     // buffer-gas atom mass, AMU
	Sigma float64 `yaml:"sigma"` // hard-sphere cross-section, m^2

	Omega float64 `yaml:"omega"`
	ZMin  float64 `yaml:"zmin"`
	ZMax  float64 `yaml:"zmax"`
	PFlip float64 `yaml:"pflip"`

	SaveAll bool `yaml:"saveall"`

	Stats     string `yaml:"stats"`
	ExitStats string `yaml:"exitstats"`

	RBins int `yaml:"rbins"`
	ZBins int `yaml:"zbins"`

	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers"`
}

// DefaultConfig returns the configuration surface's stated defaults.
// ZMin/ZMax default to an unbounded trap window (the trap, if any, is
// active everywhere) since the spec gives them as -inf/+inf.
func DefaultConfig() *Config {
	return &Config{
		N:       10000,
		Z:       0.035,
		R:       0.0,
		VZ:      0.0,
		VR:      0.0,
		T:       0.0,
		M:       191.0,
		GasM:    4.0,
		Sigma:   130e-20,
		Omega:   0.0,
		ZMin:    math.Inf(-1),
		ZMax:    math.Inf(1),
		PFlip:   0.0,
		SaveAll: false,
		RBins:   50,
		ZBins:   50,
		Seed:    1,
		Workers: 0, // 0 means runtime.NumCPU() at the call site
	}
}

// Load reads a YAML config file, applying it on top of DefaultConfig so
// unspecified fields keep their documented defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the handful of invariants the engine relies on: it
// does not re-derive anything the input files themselves validate.
func (c *Config) Validate() error {
	if c.N <= 0 {
		return kinetics.ErrInvalidConfig
	}
	if c.M <= 0 || c.GasM <= 0 {
		return kinetics.ErrInvalidConfig
	}
	if c.Sigma < 0 {
		return kinetics.ErrInvalidConfig
	}
	if c.PFlip < 0 || c.PFlip > 1 {
		return kinetics.ErrInvalidConfig
	}
	if c.ZMin > c.ZMax {
		return kinetics.ErrInvalidConfig
	}
	return nil
}

// ReducedMass returns the test-particle/buffer-gas reduced mass
// m_reduced = M*m/(M+m), derived from the two configured masses.
func (c *Config) ReducedMass() float64 {
	return c.M * c.GasM / (c.M + c.GasM)
}
