// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"tuner/pkg/utils"
)

// estimateSine runs the full windower → spectrum → estimator path over a
// synthetic sine and returns the estimate.
func estimateSine(t *testing.T, frequency float64) (float64, bool) {
	t.Helper()

	w, err := NewWindow(testFFTSize, Hann)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}
	s, err := NewSpectrum(testFFTSize, testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectrum failed: %v", err)
	}

	input := utils.GenerateSine(testFFTSize, testSampleRate, frequency)
	windowed := make([]float64, testFFTSize)
	if err := w.Apply(windowed, input); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	return NewEstimator().Estimate(s.Magnitudes(windowed), s.BinWidth())
}

func TestEstimate_PureSine440(t *testing.T) {
	freq, ok := estimateSine(t, 440)
	if !ok {
		t.Fatal("no signal detected for a full-scale 440 Hz sine")
	}
	// Parabolic refinement must land well inside one bin (~10.8 Hz here).
	if math.Abs(freq-440) > 1 {
		t.Errorf("estimated %.3f Hz, want 440 Hz +/- 1 Hz", freq)
	}
}

func TestEstimate_LowString110(t *testing.T) {
	freq, ok := estimateSine(t, 110)
	if !ok {
		t.Fatal("no signal detected for a 110 Hz sine")
	}
	// Refinement error grows toward low frequencies where the peak sits on
	// few bins; 2 Hz here is still well under a quarter semitone.
	if math.Abs(freq-110) > 2 {
		t.Errorf("estimated %.3f Hz, want 110 Hz +/- 2 Hz", freq)
	}
}

func TestEstimate_HarmonicRichSignal(t *testing.T) {
	w, _ := NewWindow(testFFTSize, Hann)
	s, _ := NewSpectrum(testFFTSize, testSampleRate)

	// Fundamental at 440 Hz stronger than its harmonics; the estimator
	// must lock onto the fundamental.
	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	windowed := make([]float64, testFFTSize)
	_ = w.Apply(windowed, input)

	freq, ok := NewEstimator().Estimate(s.Magnitudes(windowed), s.BinWidth())
	if !ok {
		t.Fatal("no signal detected")
	}
	if math.Abs(freq-440) > 2 {
		t.Errorf("estimated %.3f Hz, want fundamental near 440 Hz", freq)
	}
}

func TestEstimate_SilenceIsNoSignal(t *testing.T) {
	s, _ := NewSpectrum(testFFTSize, testSampleRate)
	if _, ok := NewEstimator().Estimate(s.Magnitudes(make([]float64, testFFTSize)), s.BinWidth()); ok {
		t.Error("silent window reported a signal")
	}
}

func TestEstimate_DegenerateWindow(t *testing.T) {
	s, _ := NewSpectrum(testFFTSize, testSampleRate)

	// A NaN sample poisons the whole spectrum; the estimator must resolve
	// to no-signal rather than emit NaN downstream.
	input := utils.GenerateSine(testFFTSize, testSampleRate, 440)
	input[100] = math.NaN()
	freq, ok := NewEstimator().Estimate(s.Magnitudes(input), s.BinWidth())
	if ok {
		t.Errorf("NaN-poisoned window reported signal at %v Hz", freq)
	}

	input[100] = math.Inf(1)
	if _, ok := NewEstimator().Estimate(s.Magnitudes(input), s.BinWidth()); ok {
		t.Error("Inf-poisoned window reported a signal")
	}
}

func TestEstimate_NoiseFloorIsRelative(t *testing.T) {
	// A sine at 1% of full scale is still a clean peak relative to its own
	// window average, so the gain-adaptive floor must pass it.
	w, _ := NewWindow(testFFTSize, Hann)
	s, _ := NewSpectrum(testFFTSize, testSampleRate)

	input := utils.GenerateSine(testFFTSize, testSampleRate, 440)
	for i := range input {
		input[i] *= 0.01
	}
	windowed := make([]float64, testFFTSize)
	_ = w.Apply(windowed, input)

	freq, ok := NewEstimator().Estimate(s.Magnitudes(windowed), s.BinWidth())
	if !ok {
		t.Fatal("quiet but clean sine gated out; noise floor is not relative to input gain")
	}
	if math.Abs(freq-440) > 1 {
		t.Errorf("estimated %.3f Hz, want 440 Hz", freq)
	}
}

func TestEstimate_TieBreaksToLowestBin(t *testing.T) {
	// Two exactly equal peaks: the lower-frequency one must win.
	binWidth := testSampleRate / float64(testFFTSize)
	mags := make([]float64, testFFTSize/2+1)
	low := int(math.Round(220 / binWidth))
	high := int(math.Round(880 / binWidth))
	mags[low] = 10
	mags[high] = 10

	freq, ok := NewEstimator().Estimate(mags, binWidth)
	if !ok {
		t.Fatal("no signal detected")
	}
	if math.Abs(freq-float64(low)*binWidth) > binWidth {
		t.Errorf("estimated %.3f Hz, want the lower peak near %.3f Hz", freq, float64(low)*binWidth)
	}
}

func TestEstimate_OutOfRangeRejected(t *testing.T) {
	binWidth := testSampleRate / float64(testFFTSize)
	mags := make([]float64, testFFTSize/2+1)

	// Energy above the detection ceiling only.
	mags[int(10000/binWidth)] = 100
	if _, ok := NewEstimator().Estimate(mags, binWidth); ok {
		t.Error("peak above 5 kHz reported as a pitch")
	}

	// Energy below the detection floor only (DC-adjacent).
	for i := range mags {
		mags[i] = 0
	}
	mags[0] = 100
	if _, ok := NewEstimator().Estimate(mags, binWidth); ok {
		t.Error("DC energy reported as a pitch")
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	w, _ := NewWindow(testFFTSize, Hann)
	s, _ := NewSpectrum(testFFTSize, testSampleRate)
	e := NewEstimator()

	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	windowed := make([]float64, testFFTSize)
	_ = w.Apply(windowed, input)

	f1, ok1 := e.Estimate(s.Magnitudes(windowed), s.BinWidth())
	f2, ok2 := e.Estimate(s.Magnitudes(windowed), s.BinWidth())
	if ok1 != ok2 || f1 != f2 {
		t.Errorf("estimation not idempotent: (%v,%v) then (%v,%v)", f1, ok1, f2, ok2)
	}
}

func BenchmarkEstimate(b *testing.B) {
	w, _ := NewWindow(testFFTSize, Hann)
	s, _ := NewSpectrum(testFFTSize, testSampleRate)
	e := NewEstimator()

	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	windowed := make([]float64, testFFTSize)
	_ = w.Apply(windowed, input)
	mags := s.Magnitudes(windowed)

	b.ReportAllocs()
	for j := 0; j < b.N; j++ {
		e.Estimate(mags, s.BinWidth())
	}
}
