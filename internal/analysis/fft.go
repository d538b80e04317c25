// Package analysis computes frequency-domain summaries of a finished
// batch, in particular the power spectrum of its exit-time histogram.
// Grounded on the teacher's analyzeRun CLI command, which hand-rolled
// a recursive FFT; here the actual transform comes from go-dsp/fft,
// one of the pack's domain libraries, instead of carrying that
// hand-rolled implementation forward.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of a real-valued signal
// whose length is a power of two.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitude of the first half of FFT(data),
// the non-redundant half of a real signal's spectrum.
func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}
