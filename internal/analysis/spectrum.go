package analysis

import (
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/trajectory"
)

// ExitTimeHistogram bins exit-coded rows' times into nBins equal-width
// buckets spanning [0, maxTime], zero-padded up to the next power of
// two so FFT can run without the caller worrying about length.
func ExitTimeHistogram(rows []trajectory.Row, nBins int) (hist []float64, binWidth float64) {
	maxTime := 0.0
	for _, r := range rows {
		if r.Code == geometry.Exit && r.Time > maxTime {
			maxTime = r.Time
		}
	}
	if maxTime <= 0 || nBins <= 0 {
		return nil, 0
	}
	binWidth = maxTime / float64(nBins)

	padded := 1
	for padded < nBins {
		padded *= 2
	}
	hist = make([]float64, padded)

	for _, r := range rows {
		if r.Code != geometry.Exit {
			continue
		}
		idx := int(r.Time / binWidth)
		if idx >= nBins {
			idx = nBins - 1
		}
		hist[idx]++
	}
	return hist, binWidth
}

// DominantFrequency finds the largest non-DC bin in a power spectrum
// and returns its frequency, given the histogram's bin width (the
// sample period of the series that was transformed), and its magnitude.
func DominantFrequency(ps []float64, binWidth float64) (freq, magnitude float64) {
	if len(ps) < 2 || binWidth <= 0 {
		return 0, 0
	}
	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	return float64(maxIdx) / (float64(len(ps)*2) * binWidth), ps[maxIdx]
}
