// SPDX-License-Identifier: MIT
package buffer

import (
	"sync"
	"testing"
)

const (
	testWindowSize = 64
	testHopSize    = 32
)

func newTestRing(t *testing.T) *Ring {
	t.Helper()
	r, err := NewRing(4*testWindowSize, testWindowSize, testHopSize)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	return r
}

func ramp(start, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(start + i)
	}
	return out
}

func TestNewRing_Validation(t *testing.T) {
	tests := []struct {
		name       string
		capacity   int
		windowSize int
		hopSize    int
		wantErr    bool
	}{
		{"valid", 256, 64, 32, false},
		{"hop equals window", 256, 64, 64, false},
		{"zero window", 256, 0, 32, true},
		{"zero hop", 256, 64, 0, true},
		{"hop exceeds window", 256, 64, 65, true},
		{"tiny capacity grows to two windows", 1, 64, 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRing(tt.capacity, tt.windowSize, tt.hopSize)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Cap() < 2*tt.windowSize {
				t.Errorf("capacity %d smaller than two windows", r.Cap())
			}
			if r.Cap()&(r.Cap()-1) != 0 {
				t.Errorf("capacity %d is not a power of two", r.Cap())
			}
		})
	}
}

func TestTryTakeWindow_NotReadyUntilFull(t *testing.T) {
	r := newTestRing(t)
	dst := make([]float64, testWindowSize)

	// One sample short of a window must not yield.
	r.Push(ramp(0, testWindowSize-1))
	if r.TryTakeWindow(dst) {
		t.Fatal("TryTakeWindow yielded a partial window")
	}

	r.Push([]float32{float32(testWindowSize - 1)})
	if !r.TryTakeWindow(dst) {
		t.Fatal("TryTakeWindow not ready after a full window accumulated")
	}
	for i, v := range dst {
		if v != float64(i) {
			t.Fatalf("dst[%d] = %v, want %v", i, v, float64(i))
		}
	}
}

func TestTryTakeWindow_WrongLength(t *testing.T) {
	r := newTestRing(t)
	r.Push(ramp(0, 2*testWindowSize))

	if r.TryTakeWindow(make([]float64, testWindowSize-1)) {
		t.Error("accepted destination shorter than the window size")
	}
	if r.TryTakeWindow(make([]float64, testWindowSize+1)) {
		t.Error("accepted destination longer than the window size")
	}
}

func TestTryTakeWindow_HopOverlap(t *testing.T) {
	r := newTestRing(t)
	r.Push(ramp(0, testWindowSize+testHopSize))

	first := make([]float64, testWindowSize)
	second := make([]float64, testWindowSize)
	if !r.TryTakeWindow(first) {
		t.Fatal("first window not ready")
	}
	if !r.TryTakeWindow(second) {
		t.Fatal("second window not ready")
	}

	// Second window starts hopSize samples after the first.
	if second[0] != float64(testHopSize) {
		t.Errorf("second window starts at %v, want %v", second[0], float64(testHopSize))
	}
	// The overlapping region is shared between consecutive windows.
	for i := 0; i < testWindowSize-testHopSize; i++ {
		if first[testHopSize+i] != second[i] {
			t.Fatalf("overlap mismatch at %d: %v != %v", i, first[testHopSize+i], second[i])
		}
	}
}

func TestPush_OverrunDropsOldest(t *testing.T) {
	r := newTestRing(t)
	capacity := r.Cap()

	// Sustained producer overrun: write far more than the arena holds.
	total := 5 * capacity
	for off := 0; off < total; off += testWindowSize {
		r.Push(ramp(off, testWindowSize))
	}

	if got := r.Buffered(); got > capacity {
		t.Fatalf("Buffered() = %d exceeds fixed capacity %d", got, capacity)
	}

	// The ring must still serve complete, contiguous windows of the
	// freshest data after dropping.
	dst := make([]float64, testWindowSize)
	if !r.TryTakeWindow(dst) {
		t.Fatal("no window available after overrun")
	}
	for i := 1; i < len(dst); i++ {
		if dst[i] != dst[i-1]+1 {
			t.Fatalf("window not contiguous at %d: %v after %v", i, dst[i], dst[i-1])
		}
	}
	if dst[0] < float64(total-capacity) {
		t.Errorf("window starts at sample %v, expected oldest data (before %d) dropped", dst[0], total-capacity)
	}
}

func TestPush_LargerThanCapacity(t *testing.T) {
	r := newTestRing(t)
	capacity := r.Cap()

	r.Push(ramp(0, 3*capacity))

	dst := make([]float64, testWindowSize)
	if !r.TryTakeWindow(dst) {
		t.Fatal("no window available")
	}
	// Only the freshest arena-full survives.
	if dst[0] != float64(2*capacity) {
		t.Errorf("oldest surviving sample = %v, want %v", dst[0], float64(2*capacity))
	}
}

func TestPushHotPath_ZeroAllocs(t *testing.T) {
	r := newTestRing(t)
	chunk := ramp(0, 128)

	allocs := testing.AllocsPerRun(100, func() {
		r.Push(chunk)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Push hot path, got %.1f", allocs)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	r := newTestRing(t)

	const totalChunks = 2000
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for i := 0; i < totalChunks; i++ {
			r.Push(ramp(i*128, 128))
		}
	}()

	dst := make([]float64, testWindowSize)
	windows := 0
	for i := 0; i < 100000 && windows < 50; i++ {
		if r.TryTakeWindow(dst) {
			windows++
			// Every yielded window is contiguous regardless of drops.
			for j := 1; j < len(dst); j++ {
				if dst[j] != dst[j-1]+1 {
					t.Fatalf("torn window at %d: %v after %v", j, dst[j], dst[j-1])
				}
			}
		}
	}
	wg.Wait()

	if windows == 0 {
		t.Error("consumer never received a window")
	}
}

func BenchmarkPush(b *testing.B) {
	r, _ := NewRing(16384, 4096, 2048)
	chunk := make([]float32, 512)
	b.ReportAllocs()
	for j := 0; j < b.N; j++ {
		r.Push(chunk)
	}
}

func BenchmarkTryTakeWindow(b *testing.B) {
	r, _ := NewRing(16384, 4096, 2048)
	chunk := make([]float32, 4096)
	dst := make([]float64, 4096)
	b.ReportAllocs()
	for j := 0; j < b.N; j++ {
		r.Push(chunk)
		r.TryTakeWindow(dst)
	}
}
