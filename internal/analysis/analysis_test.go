package analysis

import (
	"math"
	"testing"

	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/trajectory"
)

func TestFFTRoundTripsDCSignal(t *testing.T) {
	data := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	spec := FFT(data)
	if len(spec) != len(data) {
		t.Fatalf("expected length %d, got %d", len(data), len(spec))
	}
	if math.Abs(real(spec[0])-8) > 1e-9 {
		t.Errorf("expected DC component 8, got %v", spec[0])
	}
	for i := 1; i < len(spec); i++ {
		if math.Abs(real(spec[i])) > 1e-9 || math.Abs(imag(spec[i])) > 1e-9 {
			t.Errorf("expected zero AC component at %d, got %v", i, spec[i])
		}
	}
}

func TestExitTimeHistogramPadsToPowerOfTwo(t *testing.T) {
	rows := []trajectory.Row{
		{Code: geometry.Exit, Time: 0.1},
		{Code: geometry.Exit, Time: 0.4},
		{Code: geometry.Hit, Time: 0.9},
		{Code: geometry.Exit, Time: 0.95},
	}
	hist, binWidth := ExitTimeHistogram(rows, 5)
	if len(hist) != 8 {
		t.Fatalf("expected padded length 8, got %d", len(hist))
	}
	if binWidth <= 0 {
		t.Fatalf("expected positive bin width, got %v", binWidth)
	}
	total := 0.0
	for _, v := range hist {
		total += v
	}
	if total != 3 {
		t.Errorf("expected 3 exit events counted, got %v", total)
	}
}

func TestExitTimeHistogramEmptyWhenNoExits(t *testing.T) {
	rows := []trajectory.Row{{Code: geometry.Hit, Time: 1.0}}
	hist, binWidth := ExitTimeHistogram(rows, 5)
	if hist != nil || binWidth != 0 {
		t.Errorf("expected nil histogram for no exits, got %v, %v", hist, binWidth)
	}
}

func TestDominantFrequencyOnPureTone(t *testing.T) {
	n := 16
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 3 * float64(i) / float64(n))
	}
	ps := PowerSpectrum(data)
	freq, mag := DominantFrequency(ps, 1.0)
	if mag <= 0 {
		t.Fatalf("expected positive magnitude, got %v", mag)
	}
	expected := 3.0 / float64(n)
	if math.Abs(freq-expected) > 1e-9 {
		t.Errorf("expected dominant frequency %v, got %v", expected, freq)
	}
}
