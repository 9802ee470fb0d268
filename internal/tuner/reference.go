// SPDX-License-Identifier: MIT
package tuner

import "sync/atomic"

// Reference holds the A4 calibration frequency and the user's target
// note/octave. Values are immutable once constructed; user input produces
// a whole new snapshot rather than mutating shared state.
type Reference struct {
	A4           float64
	TargetNote   Note
	TargetOctave int
}

// NewReference builds a validated Reference, clamping the A4 frequency and
// octave into their allowed ranges. NearestNote and NoteFrequency assume
// inputs have passed through here.
func NewReference(a4 float64, note Note, octave int) Reference {
	if a4 < MinA4 {
		a4 = MinA4
	}
	if a4 > MaxA4 {
		a4 = MaxA4
	}
	if octave < MinOctave {
		octave = MinOctave
	}
	if octave > MaxOctave {
		octave = MaxOctave
	}
	return Reference{A4: a4, TargetNote: note, TargetOctave: octave}
}

// TargetFrequency returns the equal-tempered frequency of the target
// note/octave under this reference's A4.
func (r Reference) TargetFrequency() float64 {
	return NoteFrequency(r.TargetNote, r.TargetOctave, r.A4)
}

// ReferenceStore is an atomically swappable Reference snapshot. The UI
// goroutine swaps in new snapshots while the analysis loop loads exactly
// one consistent snapshot per pass.
type ReferenceStore struct {
	ref atomic.Pointer[Reference]
}

// NewReferenceStore creates a store seeded with the given reference.
func NewReferenceStore(ref Reference) *ReferenceStore {
	s := &ReferenceStore{}
	s.ref.Store(&ref)
	return s
}

// Load returns the current reference snapshot.
func (s *ReferenceStore) Load() Reference {
	return *s.ref.Load()
}

// Swap replaces the current snapshot, re-clamping through NewReference.
func (s *ReferenceStore) Swap(ref Reference) {
	validated := NewReference(ref.A4, ref.TargetNote, ref.TargetOctave)
	s.ref.Store(&validated)
}
