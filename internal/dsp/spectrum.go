// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"tuner/pkg/bitint"
)

// Spectrum transforms a windowed real-valued block into a magnitude
// spectrum. The FFT object and all buffers are allocated once at
// construction; Magnitudes is allocation-free after that.
type Spectrum struct {
	fft        *fourier.FFT
	size       int
	sampleRate float64
	input      []float64
	coeffs     []complex128
	magnitude  []float64
}

// NewSpectrum creates an analyzer for blocks of the given size, which must
// be a power of two so the transform runs in O(N log N).
func NewSpectrum(size int, sampleRate float64) (*Spectrum, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	// A real FFT of N samples yields N/2 + 1 complex coefficients,
	// from DC up to and including the Nyquist bin.
	outputSize := size/2 + 1

	return &Spectrum{
		fft:        fourier.NewFFT(size),
		size:       size,
		sampleRate: sampleRate,
		input:      make([]float64, size),
		coeffs:     make([]complex128, outputSize),
		magnitude:  make([]float64, outputSize),
	}, nil
}

// Magnitudes computes |FFT| for the windowed block and returns the internal
// magnitude buffer of size/2+1 bins. The slice is reused by the next call;
// callers needing to retain it must copy. Input shorter than the FFT size
// is zero-padded.
func (s *Spectrum) Magnitudes(windowed []float64) []float64 {
	inputLen := len(windowed)
	for i := 0; i < s.size; i++ {
		if i < inputLen {
			s.input[i] = windowed[i]
		} else {
			s.input[i] = 0
		}
	}

	s.fft.Coefficients(s.coeffs, s.input)
	for i, c := range s.coeffs {
		s.magnitude[i] = cmplx.Abs(c)
	}
	return s.magnitude
}

// BinFrequency returns the center frequency (Hz) of the given bin index,
// spaced at sampleRate/size.
func (s *Spectrum) BinFrequency(i int) float64 {
	if i < 0 || i >= len(s.coeffs) {
		return 0
	}
	return float64(i) * s.BinWidth()
}

// BinWidth returns the frequency resolution of the transform in Hz.
func (s *Spectrum) BinWidth() float64 {
	return s.sampleRate / float64(s.size)
}

// Size returns the FFT size (number of input points).
func (s *Spectrum) Size() int {
	return s.size
}

// SampleRate returns the sample rate the analyzer was built for.
func (s *Spectrum) SampleRate() float64 {
	return s.sampleRate
}
