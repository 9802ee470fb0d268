// SPDX-License-Identifier: MIT
/*
Package buffer implements the single-producer/single-consumer sample ring
bridging the audio callback and the analysis loop.

The producer is the hardware-driven capture callback: it must never block,
never allocate and never wait on the consumer. The consumer is the
display-rate analysis loop: it takes complete fixed-size windows when
enough samples have accumulated and otherwise reports not-ready. When the
consumer falls behind, the oldest samples are dropped: freshness over
completeness, with memory bounded by the fixed arena.
*/
package buffer

import (
	"fmt"
	"sync/atomic"

	"tuner/pkg/bitint"
)

// Ring is a fixed-capacity SPSC sample buffer. The arena is a power-of-two
// float32 array indexed by monotonically increasing cursors, so positions
// reduce to a mask instead of a modulo. Only Push may be called from the
// capture callback; only TryTakeWindow from the analysis loop.
type Ring struct {
	buf        []float32
	mask       uint64
	windowSize int
	hopSize    int

	write atomic.Uint64 // total samples ever written
	read  atomic.Uint64 // total samples ever consumed or dropped
}

// NewRing creates a ring able to hold at least capacity samples, rounded
// up to a power of two and to at least two windows so one full window can
// accumulate while another is being copied out. hopSize controls window
// overlap: hop < windowSize yields overlapping windows for smoother
// updates, hop == windowSize disables overlap.
func NewRing(capacity, windowSize, hopSize int) (*Ring, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if hopSize <= 0 || hopSize > windowSize {
		return nil, fmt.Errorf("hop size must be in 1..%d, got %d", windowSize, hopSize)
	}
	if capacity < 2*windowSize {
		capacity = 2 * windowSize
	}
	capacity = bitint.NextPowerOfTwo(capacity)

	return &Ring{
		buf:        make([]float32, capacity),
		mask:       uint64(capacity) - 1,
		windowSize: windowSize,
		hopSize:    hopSize,
	}, nil
}

// Push appends samples, dropping the oldest buffered samples when the
// consumer has fallen behind. It never blocks and never allocates; safe to
// call from the real-time audio callback.
func (r *Ring) Push(samples []float32) {
	n := uint64(len(samples))
	if n == 0 {
		return
	}
	capacity := uint64(len(r.buf))
	if n > capacity {
		// Only the freshest arena-full of samples can survive anyway.
		samples = samples[n-capacity:]
		n = capacity
	}

	w := r.write.Load()
	for {
		rd := r.read.Load()
		free := capacity - (w - rd)
		if n <= free {
			break
		}
		// Drop the oldest samples to make room. CAS because the consumer
		// may advance the read cursor concurrently.
		if r.read.CompareAndSwap(rd, rd+(n-free)) {
			break
		}
	}

	for i := uint64(0); i < n; i++ {
		r.buf[(w+i)&r.mask] = samples[i]
	}
	r.write.Store(w + n)
}

// TryTakeWindow copies the next complete window into dst and advances the
// read cursor by the hop size. It returns false without blocking when
// fewer than a full window of samples is buffered, when dst has the wrong
// length, or when the producer overwrote the window mid-copy (the stale
// copy is discarded and the next call starts fresh).
func (r *Ring) TryTakeWindow(dst []float64) bool {
	if len(dst) != r.windowSize {
		return false
	}

	start := r.read.Load()
	if r.write.Load()-start < uint64(r.windowSize) {
		return false
	}

	for i := 0; i < r.windowSize; i++ {
		dst[i] = float64(r.buf[(start+uint64(i))&r.mask])
	}

	// The producer advances the read cursor before overwriting, so a
	// successful CAS proves the copied region was untouched.
	return r.read.CompareAndSwap(start, start+uint64(r.hopSize))
}

// Buffered returns the number of unconsumed samples. Approximate under
// concurrent access; intended for diagnostics.
func (r *Ring) Buffered() int {
	return int(r.write.Load() - r.read.Load())
}

// WindowSize returns the configured analysis window length.
func (r *Ring) WindowSize() int {
	return r.windowSize
}

// Cap returns the fixed arena capacity in samples.
func (r *Ring) Cap() int {
	return len(r.buf)
}
