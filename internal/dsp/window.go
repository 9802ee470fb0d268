// SPDX-License-Identifier: MIT
/*
Package dsp implements the spectral half of the pitch pipeline: analysis
windowing, FFT magnitude computation and fundamental frequency estimation.

All types pre-allocate their working buffers at construction so the per-pass
hot path runs without allocation.
*/
package dsp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the tapering function applied before the FFT to
// suppress spectral leakage from truncating the sample block.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	BartlettHann
	Nuttall
)

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns Hann and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// Window applies a precomputed tapering function to fixed-length sample
// blocks. Apply is pure: the same input always yields the same output and
// the coefficients never change after construction.
type Window struct {
	coeffs []float64
}

// NewWindow precomputes coefficients for the given size and function.
// Hann is w[i] = 0.5*(1 - cos(2πi/(N-1))); the others follow their
// textbook symmetric forms as implemented by gonum.
func NewWindow(size int, fn WindowFunc) (*Window, error) {
	if size < 2 {
		return nil, fmt.Errorf("window size must be at least 2, got %d", size)
	}

	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}

	switch fn {
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}

	return &Window{coeffs: coeffs}, nil
}

// Size returns the block length the window was built for.
func (w *Window) Size() int {
	return len(w.coeffs)
}

// Apply multiplies src by the window coefficients into dst. Both slices
// must match the window size. dst and src may alias for in-place use.
func (w *Window) Apply(dst, src []float64) error {
	if len(src) != len(w.coeffs) {
		return fmt.Errorf("input length %d does not match window size %d", len(src), len(w.coeffs))
	}
	if len(dst) != len(w.coeffs) {
		return fmt.Errorf("output length %d does not match window size %d", len(dst), len(w.coeffs))
	}
	for i, c := range w.coeffs {
		dst[i] = src[i] * c
	}
	return nil
}
