package config

import (
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.N != 10000 {
		t.Errorf("expected n=10000, got %d", cfg.N)
	}
	if cfg.M != 191.0 || cfg.GasM != 4.0 {
		t.Errorf("expected M=191, m=4, got M=%v m=%v", cfg.M, cfg.GasM)
	}
	if !math.IsInf(cfg.ZMin, -1) || !math.IsInf(cfg.ZMax, 1) {
		t.Errorf("expected unbounded trap window by default, got [%v, %v]", cfg.ZMin, cfg.ZMax)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.N = 0 },
		func(c *Config) { c.M = 0 },
		func(c *Config) { c.GasM = -1 },
		func(c *Config) { c.Sigma = -1 },
		func(c *Config) { c.PFlip = 1.5 },
		func(c *Config) { c.ZMin, c.ZMax = 1, -1 },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error, got nil", i)
		}
	}
}

func TestReducedMass(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ReducedMass()
	want := cfg.M * cfg.GasM / (cfg.M + cfg.GasM)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected reduced mass %v, got %v", want, got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	cfg := DefaultConfig()
	cfg.N = 500
	cfg.T = 4.0
	cfg.Omega = 1000.0

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.N != cfg.N || loaded.T != cfg.T || loaded.Omega != cfg.Omega {
		t.Errorf("round trip mismatch: got %+v", loaded)
	}
}

func TestGetPresetReturnsIndependentCopy(t *testing.T) {
	a := GetPreset("heavy-in-light")
	if a == nil {
		t.Fatal("expected preset, got nil")
	}
	a.N = 1
	b := GetPreset("heavy-in-light")
	if b.N == 1 {
		t.Error("GetPreset should return an independent copy")
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
}
