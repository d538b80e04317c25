package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/sankum/buffergas/internal/analysis"
	"github.com/sankum/buffergas/internal/batch"
	"github.com/sankum/buffergas/internal/bingrid"
	"github.com/sankum/buffergas/internal/collision"
	"github.com/sankum/buffergas/internal/config"
	"github.com/sankum/buffergas/internal/dataio"
	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/driver"
	"github.com/sankum/buffergas/internal/flowfield"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/particlesource"
	"github.com/sankum/buffergas/internal/proposaltable"
	"github.com/sankum/buffergas/internal/trajectory"
	"github.com/sankum/buffergas/internal/viz"
)

var (
	configFile string
	preset     string
	n          int
	seed       int64
	workers    int

	compareTrap       bool
	verifyDeterminism bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	spectrumBins int
)

// sweepSetters names the config fields a sweep can vary from the CLI,
// mirroring the teacher's --preset lookup table shape.
var sweepSetters = map[string]batch.Setter{
	"sigma": func(c *config.Config, v float64) { c.Sigma = v },
	"omega": func(c *config.Config, v float64) { c.Omega = v },
	"pflip": func(c *config.Config, v float64) { c.PFlip = v },
	"t":     func(c *config.Config, v float64) { c.T = v },
	"n":     func(c *config.Config, v float64) { c.N = int(v) },
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "buffergas",
		Short: "axisymmetric buffer-gas trajectory simulator",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use named preset configuration")
	rootCmd.PersistentFlags().IntVar(&n, "n", 0, "number of particles (0: use config/preset default)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "master RNG seed (0: use config/preset default)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker goroutines (0: runtime.NumCPU())")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch and write per-particle rows and bin statistics",
		RunE:  runBatch,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a batch with a live terminal progress dashboard",
		RunE:  runLive,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark throughput across a range of particle counts",
		RunE:  runBench,
	}
	benchCmd.Flags().BoolVar(&compareTrap, "compare-trap", false, "compare ballistic-only vs harmonic-trap propagation throughput at fixed N instead of sweeping N")
	benchCmd.Flags().BoolVar(&verifyDeterminism, "verify-determinism", false, "re-run the same (seed, N, workers) twice and diff the merged bin-grid CSVs instead of benchmarking throughput")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available preset configurations",
		RunE:  listPresets,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "run a batch and report the power spectrum of its exit-time histogram",
		RunE:  runSpectrum,
	}
	spectrumCmd.Flags().IntVar(&spectrumBins, "bins", 64, "exit-time histogram bin count before power-of-two padding")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one config parameter over a linear range and summarize each point",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "sigma", "parameter to sweep: sigma, omega, pflip, t, n")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "sweep range minimum")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "sweep range maximum")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of sweep points")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, presetsCmd, spectrumCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective config from --preset and/or
// --config (config overrides preset field-by-field is not attempted
// here; the two are mutually exclusive sources, like the teacher's
// preset-then-config-file layering but simplified to "config wins if
// both are given"), then applies the --n/--seed/--workers overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if n > 0 {
		cfg.N = n
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if workers != 0 {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildComponents loads geometry and flow files if given, falling back
// to a wall-free box (z in [-1, 1], rho <= 0.1) and a single quiescent
// flow point so
// every subcommand runs standalone without requiring input files.
func buildComponents(cfg *config.Config) (*geometry.Geometry, *flowfield.FlowField, *collision.Sampler, error) {
	var geom *geometry.Geometry
	if cfg.Geom != "" {
		segs, zMin, zMax, rhoMax, err := dataio.ReadGeometry(cfg.Geom)
		if err != nil {
			return nil, nil, nil, err
		}
		geom = geometry.New(segs, zMin, zMax, rhoMax)
	} else {
		geom = geometry.New(nil, -1.0, 1.0, 0.1)
	}

	var flow *flowfield.FlowField
	var err error
	if cfg.Flow != "" {
		pts, ferr := dataio.ReadFlow(cfg.Flow)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		flow, err = flowfield.New(pts)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		syntheticT := cfg.T
		if syntheticT <= 0 {
			syntheticT = 1.0
		}
		flow, err = flowfield.New([]flowfield.FlowPoint{
			{Z: 0, R: 0, T: syntheticT, Rho: 1e20},
		})
		if err != nil {
			return nil, nil, nil, err
		}
	}

	tMin, tMax := flow.TemperatureRange()
	if tMax <= tMin {
		tMax = tMin + 1
	}
	uMax := flow.MaxAbsBulkRadial()*1.5 + 100
	table := proposaltable.New(tMin, tMax, uMax, cfg.GasM, cfg.Seed)
	sampler := collision.New(cfg.M, cfg.GasM, table)

	return geom, flow, sampler, nil
}

func buildEngine(cfg *config.Config, geom *geometry.Geometry, flow *flowfield.FlowField, sampler *collision.Sampler, counter *diag.Counter) *trajectory.Engine {
	return &trajectory.Engine{
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
}

func gridFactory(cfg *config.Config, geom *geometry.Geometry) func() *bingrid.Grid {
	return func() *bingrid.Grid {
		return bingrid.New(0, geom.RhoMax, geom.ZMin, geom.ZMax, cfg.RBins, cfg.ZBins)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	geom, flow, sampler, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	counter := &diag.Counter{}
	eng := buildEngine(cfg, geom, flow, sampler, counter)
	source := particlesource.New(cfg)

	start := time.Now()
	result := driver.Run(cfg.N, cfg.Workers, cfg.Seed, source, eng, gridFactory(cfg, geom))
	elapsed := time.Since(start)

	fmt.Printf("ran %d trajectories in %v\n", cfg.N, elapsed)
	vg, theta := counter.Snapshot()
	fmt.Printf("vg fallbacks: %d, theta fallbacks: %d\n", vg, theta)

	if cfg.Stats != "" {
		if err := dataio.WriteBinStats(cfg.Stats, result.All); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}
	if cfg.ExitStats != "" {
		if err := dataio.WriteBinStats(cfg.ExitStats, result.Exit); err != nil {
			return fmt.Errorf("writing exit stats: %w", err)
		}
	}
	if err := dataio.WriteRows(os.Args[0]+".rows.txt", result.Rows, cfg.SaveAll); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	geom, flow, sampler, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	counter := &diag.Counter{}
	eng := buildEngine(cfg, geom, flow, sampler, counter)
	source := particlesource.New(cfg)

	updates := make(chan viz.Update, 256)
	onProgress := func(row trajectory.Row) {
		updates <- viz.Update{Code: row.Code, Counter: counter}
	}

	done := make(chan driver.Result, 1)
	go func() {
		result := driver.RunWithProgress(cfg.N, cfg.Workers, cfg.Seed, source, eng, gridFactory(cfg, geom), onProgress)
		close(updates)
		done <- result
	}()

	if err := viz.Run(cfg.N, updates); err != nil {
		return err
	}
	<-done
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	geom, flow, sampler, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	switch {
	case verifyDeterminism:
		return runVerifyDeterminism(cfg, geom, flow, sampler)
	case compareTrap:
		return runCompareTrap(cfg, geom, flow, sampler)
	}

	counts := []int{1000, 10000, 100000}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tWORKERS\tTIME\tTRAJ/SEC")

	for _, count := range counts {
		c := *cfg
		c.N = count
		counter := &diag.Counter{}
		eng := buildEngine(&c, geom, flow, sampler, counter)
		source := particlesource.New(&c)

		start := time.Now()
		driver.Run(c.N, c.Workers, c.Seed, source, eng, nil)
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", count, c.Workers, elapsed, float64(count)/elapsed.Seconds())
	}

	return w.Flush()
}

// runCompareTrap compares ballistic-only (omega=0) vs harmonic-trap
// (omega=cfg.Omega) propagation throughput at the configured N,
// grounded on the teacher's compareIntegrators: same ensemble, same
// worker count, only the per-trajectory stepping kernel varies.
func runCompareTrap(cfg *config.Config, geom *geometry.Geometry, flow *flowfield.FlowField, sampler *collision.Sampler) error {
	modes := []struct {
		name  string
		omega float64
	}{
		{"ballistic", 0},
		{"harmonic", cfg.Omega},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tN\tTIME\tTRAJ/SEC")

	for _, m := range modes {
		c := *cfg
		c.Omega = m.omega
		counter := &diag.Counter{}
		eng := buildEngine(&c, geom, flow, sampler, counter)
		source := particlesource.New(&c)

		start := time.Now()
		driver.Run(c.N, c.Workers, c.Seed, source, eng, nil)
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\n", m.name, c.N, elapsed, float64(c.N)/elapsed.Seconds())
	}

	return w.Flush()
}

// runVerifyDeterminism re-runs the same (seed, N, workers) twice and
// diffs the merged bin-grid CSVs line by line, checking that the
// parallel driver is deterministic given a fixed seed, the way the
// teacher's dynamo.Ensemble replay check compares two runs of the same
// seed.
func runVerifyDeterminism(cfg *config.Config, geom *geometry.Geometry, flow *flowfield.FlowField, sampler *collision.Sampler) error {
	run := func() (string, error) {
		counter := &diag.Counter{}
		eng := buildEngine(cfg, geom, flow, sampler, counter)
		source := particlesource.New(cfg)
		result := driver.Run(cfg.N, cfg.Workers, cfg.Seed, source, eng, gridFactory(cfg, geom))

		tmp, err := os.CreateTemp("", "buffergas-verify-*.csv")
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp.Name())
		tmp.Close()

		if err := dataio.WriteBinStats(tmp.Name(), result.All); err != nil {
			return "", err
		}
		out, err := os.ReadFile(tmp.Name())
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	csvA, err := run()
	if err != nil {
		return fmt.Errorf("first run: %w", err)
	}
	csvB, err := run()
	if err != nil {
		return fmt.Errorf("second run: %w", err)
	}

	if csvA == csvB {
		fmt.Printf("determinism verified: merged bin-grid CSVs identical across two runs with seed=%d, n=%d, workers=%d\n", cfg.Seed, cfg.N, cfg.Workers)
		return nil
	}

	linesA := strings.Split(csvA, "\n")
	linesB := strings.Split(csvB, "\n")
	mismatches := 0
	for i := 0; i < len(linesA) && i < len(linesB); i++ {
		if linesA[i] != linesB[i] {
			mismatches++
		}
	}
	return fmt.Errorf("determinism check failed: %d of %d lines differ between identical-seed runs", mismatches, len(linesA))
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tM\tGASM\tT\tOMEGA\tZMIN\tZMAX")
	for _, name := range names {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.3g\t%.3g\t%.3g\t%.3g\n", name, p.M, p.GasM, p.T, p.Omega, p.ZMin, p.ZMax)
	}
	return w.Flush()
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	geom, flow, sampler, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	counter := &diag.Counter{}
	eng := buildEngine(cfg, geom, flow, sampler, counter)
	source := particlesource.New(cfg)

	result := driver.Run(cfg.N, cfg.Workers, cfg.Seed, source, eng, nil)

	hist, binWidth := analysis.ExitTimeHistogram(result.Rows, spectrumBins)
	if hist == nil {
		return fmt.Errorf("no exiting trajectories to analyze")
	}

	ps := analysis.PowerSpectrum(hist)
	plotData := ps[1:] // drop the DC bin
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("exit-time power spectrum"),
	)
	fmt.Println(graph)

	freq, magnitude := analysis.DominantFrequency(ps, binWidth)
	fmt.Printf("\ndominant frequency: %.4g hz (magnitude %.4g)\n", freq, magnitude)
	if freq > 0 {
		fmt.Printf("period: %.4g s\n", 1.0/freq)
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	geom, flow, sampler, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	setter, ok := sweepSetters[sweepParam]
	if !ok {
		return fmt.Errorf("unknown sweep param %q (available: sigma, omega, pflip, t, n)", sweepParam)
	}

	sweep := batch.Sweep{
		ParamName: sweepParam,
		Setter:    setter,
		Min:       sweepMin, Max: sweepMax, Steps: sweepSteps,
		Base: cfg,
	}

	points, err := batch.Run(sweep, geom, flow, sampler)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, sweepParam+"\tN\tHIT%\tEXIT%\tMEANTIME\tMEANCOLLS\tFALLBACKS")
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%d\t%.1f\t%.1f\t%.4g\t%.2f\t%d\n",
			p.Value, p.N, p.HitFraction*100, p.ExitFraction*100, p.MeanTime, p.MeanCollisions, p.VGFallbacks+p.ThetaFallbacks)
	}
	return w.Flush()
}
