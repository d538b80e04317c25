// Package batch implements a parameter sweep over a numeric config
// field, running the driver once per sweep point and summarizing each
// run's outcome distribution. Grounded on internal/automation.RunSweep,
// stripped of the model/integrator/controller registry lookups (this
// repo has one engine, not a pluggable model zoo) and rebound to
// config.Config and driver.Run directly. The scenario/Monte-Carlo-trial
// parts of automation.go are not carried: this engine's driver already
// is the Monte Carlo trial runner, so wrapping it in another
// random-perturbation trial harness would be redundant.
package batch

import (
	"fmt"

	"github.com/sankum/buffergas/internal/collision"
	"github.com/sankum/buffergas/internal/config"
	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/driver"
	"github.com/sankum/buffergas/internal/flowfield"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/particlesource"
	"github.com/sankum/buffergas/internal/trajectory"
)

// Setter assigns value to the swept field of cfg.
type Setter func(cfg *config.Config, value float64)

// Sweep describes one parameter sweep: a numeric config field, varied
// linearly from Min to Max over Steps points, with every other field
// held at Base's value.
type Sweep struct {
	ParamName string
	Setter    Setter
	Min, Max  float64
	Steps     int
	Base      *config.Config
}

// Point summarizes one sweep value's batch of trajectories.
type Point struct {
	Value          float64
	N              int
	HitFraction    float64
	ExitFraction   float64
	MeanTime       float64
	MeanCollisions float64
	VGFallbacks    int64
	ThetaFallbacks int64
}

// Run executes sweep.Steps trajectory batches, one per linearly spaced
// value in [sweep.Min, sweep.Max], against the shared geometry, flow
// field, and collision sampler.
func Run(sweep Sweep, geom *geometry.Geometry, flow *flowfield.FlowField, sampler *collision.Sampler) ([]Point, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("batch: steps must be >= 1, got %d", sweep.Steps)
	}

	points := make([]Point, sweep.Steps)
	step := 0.0
	if sweep.Steps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	}

	for i := 0; i < sweep.Steps; i++ {
		value := sweep.Min + float64(i)*step

		cfg := *sweep.Base
		sweep.Setter(&cfg, value)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("batch: step %d (%s=%v): %w", i, sweep.ParamName, value, err)
		}

		counter := &diag.Counter{}
		eng := &trajectory.Engine{
			Geom:    geom,
			Flow:    flow,
			Sampler: sampler,
			Params: trajectory.Params{
				Sigma: cfg.Sigma,
				Omega: cfg.Omega,
				ZMin:  cfg.ZMin, ZMax: cfg.ZMax,
				PFlip: cfg.PFlip,
			},
			Diag: counter,
		}

		source := particlesource.New(&cfg)
		result := driver.Run(cfg.N, cfg.Workers, cfg.Seed, source, eng, nil)

		points[i] = summarize(value, result.Rows, counter)
	}

	return points, nil
}

func summarize(value float64, rows []trajectory.Row, counter *diag.Counter) Point {
	p := Point{Value: value, N: len(rows)}
	if len(rows) == 0 {
		return p
	}

	var hits, exits int
	var sumTime, sumColls float64
	for _, r := range rows {
		switch r.Code {
		case geometry.Hit:
			hits++
		case geometry.Exit:
			exits++
		}
		sumTime += r.Time
		sumColls += float64(r.NColls)
	}

	n := float64(len(rows))
	p.HitFraction = float64(hits) / n
	p.ExitFraction = float64(exits) / n
	p.MeanTime = sumTime / n
	p.MeanCollisions = sumColls / n
	p.VGFallbacks, p.ThetaFallbacks = counter.Snapshot()
	return p
}
