// SPDX-License-Identifier: MIT
/*
Package tuner maps detected frequencies onto the equal-tempered 12-tone
scale and orchestrates the analysis loop that turns captured samples into
published tuning results.

The chromatic sequence starts at A so that A4 sits at semitone offset 0
from the reference frequency.
*/
package tuner

import (
	"fmt"
	"math"
)

// Calibration bounds. The reference A4 is user adjustable inside a narrow
// band around concert pitch; octaves cover the musically useful range.
const (
	MinA4     = 432.0
	MaxA4     = 450.0
	MinOctave = 0
	MaxOctave = 8
)

// Note identifies one of the 12 chromatic pitch classes, starting at A.
type Note int

const (
	NoteA Note = iota
	NoteASharp
	NoteB
	NoteC
	NoteCSharp
	NoteD
	NoteDSharp
	NoteE
	NoteF
	NoteFSharp
	NoteG
	NoteGSharp
)

var noteNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// String returns the display name of the pitch class (e.g. "A#").
func (n Note) String() string {
	if n < 0 || int(n) >= len(noteNames) {
		return "?"
	}
	return noteNames[n]
}

// Next returns the pitch class one semitone up, wrapping G# to A.
func (n Note) Next() Note {
	return (n + 1) % 12
}

// Prev returns the pitch class one semitone down, wrapping A to G#.
func (n Note) Prev() Note {
	return (n + 11) % 12
}

// ParseNote converts a note name like "A" or "F#" into a Note.
func ParseNote(name string) (Note, error) {
	for i, candidate := range noteNames {
		if candidate == name {
			return Note(i), nil
		}
	}
	return NoteA, fmt.Errorf("unknown note name: %q", name)
}

// NearestNote returns the pitch class and octave closest to freq for the
// given A4 reference. The semitone offset from A4 is n = round(12*log2(f/A4));
// the octave uses floor division so frequencies below A4 land in the right
// octave (e.g. 110 Hz at A4=440 is A2, not A3).
func NearestNote(freq, a4 float64) (Note, int) {
	n := int(math.Round(12 * math.Log2(freq/a4)))
	idx := ((n % 12) + 12) % 12
	octave := 4 + floorDiv(n+9, 12)
	return Note(idx), octave
}

// NoteFrequency returns the equal-tempered frequency of a note/octave pair
// for the given A4 reference. It is the exact inverse of NearestNote: the
// octave boundary falls between B and C, so pitch classes C..G# sit one
// octave register lower than their semitone index alone would suggest.
func NoteFrequency(note Note, octave int, a4 float64) float64 {
	offset := 0
	if note >= NoteC {
		offset = 12
	}
	semitones := int(note) + 12*(octave-4) - offset
	return a4 * math.Pow(2, float64(semitones)/12)
}

// Cents returns the deviation of freq from targetFreq in cents
// (100 cents = one equal-tempered semitone).
func Cents(freq, targetFreq float64) float64 {
	return 1200 * math.Log2(freq/targetFreq)
}

// floorDiv divides a by b rounding toward negative infinity, unlike Go's
// truncating integer division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
