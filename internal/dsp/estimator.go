// SPDX-License-Identifier: MIT
package dsp

import "math"

// Detection range for musical pitch. Below 20 Hz there is no audible
// fundamental; above 5 kHz bin content is dominated by overtones.
const (
	MinDetectableHz = 20.0
	MaxDetectableHz = 5000.0

	// DefaultFloorRatio is how many times louder than the average searched
	// magnitude the peak must be to count as a signal. Relative to the
	// window's own average rather than a fixed constant, so the gate
	// adapts to input gain.
	DefaultFloorRatio = 8.0
)

// Estimator extracts a fundamental frequency from a magnitude spectrum.
// It picks the strongest bin in the detection range and refines it with a
// three-point interpolation across the peak's neighbors, since the raw bin
// resolution (sampleRate/N) is too coarse for cents-level accuracy.
//
// On equal-magnitude peaks the lowest frequency wins. That favors the
// fundamental over its harmonics for typical plucked-string spectra, but
// it is not a harmonic-product search and can lock onto a strong harmonic
// for unusual timbres.
type Estimator struct {
	minFreq    float64
	maxFreq    float64
	floorRatio float64
}

// NewEstimator returns an estimator over the standard musical detection
// range with the default noise floor ratio.
func NewEstimator() *Estimator {
	return &Estimator{
		minFreq:    MinDetectableHz,
		maxFreq:    MaxDetectableHz,
		floorRatio: DefaultFloorRatio,
	}
}

// Estimate returns the fundamental frequency found in mags, or ok=false
// when the window holds no usable signal. binWidth is the frequency
// spacing of the bins (sampleRate/N). mags is read, never written.
//
// The DC bin and the Nyquist bin are never searched: DC carries no musical
// content and Nyquist-adjacent energy is an aliasing risk. A degenerate
// window (all-silent, NaN or Inf magnitudes) resolves to ok=false rather
// than propagating non-finite values downstream.
func (e *Estimator) Estimate(mags []float64, binWidth float64) (freq float64, ok bool) {
	if len(mags) < 3 || binWidth <= 0 {
		return 0, false
	}

	lo := int(math.Ceil(e.minFreq / binWidth))
	hi := int(math.Floor(e.maxFreq / binWidth))
	if lo < 1 {
		lo = 1 // skip DC
	}
	if hi > len(mags)-2 {
		hi = len(mags) - 2 // skip Nyquist
	}
	if lo > hi {
		return 0, false
	}

	var (
		peakBin = -1
		peakMag float64
		sum     float64
	)
	for i := lo; i <= hi; i++ {
		m := mags[i]
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return 0, false
		}
		sum += m
		// Strict > keeps the lowest-frequency bin on equal magnitudes.
		if m > peakMag {
			peakMag = m
			peakBin = i
		}
	}

	if peakBin < 0 || peakMag <= 0 {
		return 0, false
	}
	mean := sum / float64(hi-lo+1)
	if peakMag < e.floorRatio*mean {
		return 0, false
	}

	// The neighbors used for refinement (possibly DC or Nyquist) were not
	// scanned above, so re-check finiteness of the result.
	refined := refinePeak(mags, peakBin, binWidth)
	if math.IsNaN(refined) || refined <= e.minFreq || refined >= e.maxFreq {
		return 0, false
	}
	return refined, true
}

// refinePeak interpolates the true peak position from the peak bin and its
// two neighbors: offset = (next - prev) / (2*(prev + curr + next)), in
// bins. The neighbors exist because Estimate never selects bin 0 or the
// last searched bin's upper edge.
func refinePeak(mags []float64, bin int, binWidth float64) float64 {
	rough := float64(bin) * binWidth
	if bin < 1 || bin+1 >= len(mags) {
		return rough
	}

	prev := mags[bin-1]
	curr := mags[bin]
	next := mags[bin+1]

	denom := prev + curr + next
	if denom < 1e-10 {
		return rough
	}

	offset := (next - prev) / (2 * denom)
	return (float64(bin) + offset) * binWidth
}
