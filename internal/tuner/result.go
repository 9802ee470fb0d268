// SPDX-License-Identifier: MIT
package tuner

import "math"

// Accuracy classifies how far a detected pitch is from the target note,
// for display purposes.
type Accuracy int

const (
	AccuracyNoSignal Accuracy = iota // nothing detected, display stays neutral
	AccuracyInTune                   // |cents| <= 5
	AccuracyClose                    // |cents| <= 20
	AccuracyOutOfTune                // everything beyond
)

// String returns a short label for the accuracy band.
func (a Accuracy) String() string {
	switch a {
	case AccuracyInTune:
		return "in tune"
	case AccuracyClose:
		return "close"
	case AccuracyOutOfTune:
		return "out of tune"
	default:
		return "no signal"
	}
}

// AccuracyForCents maps a cents deviation onto its display band.
func AccuracyForCents(cents float64) Accuracy {
	switch abs := math.Abs(cents); {
	case abs <= 5:
		return AccuracyInTune
	case abs <= 20:
		return AccuracyClose
	default:
		return AccuracyOutOfTune
	}
}

// Result is the immutable output of one analysis pass. Frequency, note and
// cents fields are only meaningful when HasSignal is true. Cents measures
// the deviation from the user's target note, not from the nearest note.
// The JSON field names form the wire contract for the network transports.
type Result struct {
	Frequency float64  `json:"frequencyHz"`
	NoteName  string   `json:"noteName"`
	Octave    int      `json:"octave"`
	Cents     float64  `json:"centsDeviation"`
	HasSignal bool     `json:"hasSignal"`
	Accuracy  Accuracy `json:"accuracy"`
}

// Map converts a detected frequency into a Result relative to ref. A
// hasSignal=false input propagates straight through as a neutral result.
func Map(freq float64, hasSignal bool, ref Reference) Result {
	if !hasSignal {
		return Result{Accuracy: AccuracyNoSignal}
	}

	note, octave := NearestNote(freq, ref.A4)
	cents := Cents(freq, ref.TargetFrequency())

	return Result{
		Frequency: freq,
		NoteName:  note.String(),
		Octave:    octave,
		Cents:     cents,
		HasSignal: true,
		Accuracy:  AccuracyForCents(cents),
	}
}
