// SPDX-License-Identifier: MIT
package tuner

import (
	"context"
	"sync/atomic"
	"time"

	"tuner/internal/dsp"
	"tuner/internal/log"
	"tuner/internal/transport"
)

// DefaultInterval is the analysis/display cadence (~60 Hz), independent of
// the capture side's hardware timing.
const DefaultInterval = 16 * time.Millisecond

// WindowSource yields complete analysis windows without blocking.
// Implemented by buffer.Ring.
type WindowSource interface {
	TryTakeWindow(dst []float64) bool
}

// Analyzer is the consumer half of the pipeline. On its own fixed cadence
// it takes complete windows from the source, runs
// window → spectrum → estimate → map, and publishes the result into a
// single-slot cell that the display reads.
//
// Each pass works on a frozen copy of the window and one consistent
// reference snapshot; no state carries across passes beyond the ring's
// buffered samples, so identical windows always produce identical results.
type Analyzer struct {
	source    WindowSource
	window    *dsp.Window
	spectrum  *dsp.Spectrum
	estimator *dsp.Estimator
	refs      *ReferenceStore
	transport transport.Transport // optional; nil disables publishing
	interval  time.Duration

	// Pre-allocated per-pass buffers; the analyzer is single-goroutine.
	raw      []float64
	windowed []float64

	latest atomic.Pointer[Result]
}

// NewAnalyzer wires the pipeline stages for the given FFT size and sample
// rate. tr may be nil when no network transport is configured.
func NewAnalyzer(source WindowSource, fftSize int, sampleRate float64, fn dsp.WindowFunc, refs *ReferenceStore, tr transport.Transport) (*Analyzer, error) {
	window, err := dsp.NewWindow(fftSize, fn)
	if err != nil {
		return nil, err
	}
	spectrum, err := dsp.NewSpectrum(fftSize, sampleRate)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		source:    source,
		window:    window,
		spectrum:  spectrum,
		estimator: dsp.NewEstimator(),
		refs:      refs,
		transport: tr,
		interval:  DefaultInterval,
		raw:       make([]float64, fftSize),
		windowed:  make([]float64, fftSize),
	}
	a.publish(Result{Accuracy: AccuracyNoSignal})
	return a, nil
}

// Latest returns the most recently published result. Always safe to call;
// before the first window completes it reports no-signal.
func (a *Analyzer) Latest() Result {
	return *a.latest.Load()
}

// Run drives the analysis loop until ctx is cancelled, then drains any
// remaining complete windows and returns. Ticks with no window ready keep
// the previous result standing.
func (a *Analyzer) Run(ctx context.Context) {
	log.Infof("analysis: loop starting (fft=%d, rate=%.0f Hz, every %s)",
		a.spectrum.Size(), a.spectrum.SampleRate(), a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Capture is already torn down at this point; consume what is
			// left in the ring so the final result reflects all input.
			for a.analyzeOnce() {
			}
			log.Infof("analysis: loop stopped")
			return
		case <-ticker.C:
			for a.analyzeOnce() {
			}
		}
	}
}

// analyzeOnce processes one complete window if available and reports
// whether it did any work.
func (a *Analyzer) analyzeOnce() bool {
	if !a.source.TryTakeWindow(a.raw) {
		return false
	}

	// Window length is fixed at construction, Apply cannot fail here.
	_ = a.window.Apply(a.windowed, a.raw)
	mags := a.spectrum.Magnitudes(a.windowed)
	freq, ok := a.estimator.Estimate(mags, a.spectrum.BinWidth())

	a.publish(Map(freq, ok, a.refs.Load()))
	return true
}

// publish replaces the latest result and forwards it to the transport.
// Results supersede each other; nothing is merged.
func (a *Analyzer) publish(result Result) {
	a.latest.Store(&result)
	if a.transport != nil {
		_ = a.transport.Send(result)
	}
}
