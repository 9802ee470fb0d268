// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"tuner/internal/buffer"
	"tuner/internal/config"
)

// Engine drives the capture side of the pipeline: it pulls hardware sample
// chunks from PortAudio and pushes them into the ring buffer.
//
// The callback runs on the hardware's deadline and therefore does only
// three things: select the mono channel, update the peak level meter and
// push into the ring. No FFT work, no allocation, no blocking.
type Engine struct {
	config *config.Config
	ring   *buffer.Ring

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Pre-allocated scratch for channel-0 selection on multi-channel input.
	monoInput []float32

	// Peak amplitude of the last chunk, stored as float32 bits with the
	// sign cleared so the TUI level meter can read it without locks.
	peakBits atomic.Uint32
}

// NewEngine resolves the input device and pre-allocates all capture
// buffers. The stream is not started yet.
func NewEngine(cfg *config.Config, ring *buffer.Ring) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:      cfg,
		ring:        ring,
		inputDevice: inputDevice,
		monoInput:   make([]float32, cfg.FramesPerBuffer),
	}

	if cfg.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return e, nil
}

// StartInputStream opens the PortAudio input stream and begins capture.
// From the first callback on, the hot path is live.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	return nil
}

// StopInputStream stops and closes the stream, releasing the device
// handle. Safe to call when the stream is not running.
func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// Close releases all capture resources. The ring buffer is left intact so
// the analysis loop can drain it afterwards.
func (e *Engine) Close() error {
	return e.StopInputStream()
}

// InputLevel returns the peak amplitude [0,1] seen in the most recent
// hardware chunk.
func (e *Engine) InputLevel() float64 {
	return float64(math.Float32frombits(e.peakBits.Load()))
}

// processInputStream is the real-time audio callback.
// Performance critical:
// - runs on a dedicated OS thread (LockOSThread)
// - pre-allocated buffers only, no allocation
// - never blocks on the analysis side
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	frames := in
	if e.config.Channels > 1 {
		// Channel 0 only; interleaved frames are ch0,ch1,...,ch0,ch1,...
		n := len(in) / e.config.Channels
		if n > len(e.monoInput) {
			n = len(e.monoInput)
		}
		for i := 0; i < n; i++ {
			e.monoInput[i] = in[i*e.config.Channels]
		}
		frames = e.monoInput[:n]
	}

	// Branchless peak scan: clearing the sign bit of an IEEE float gives
	// its absolute value, and non-negative floats order like their bits.
	var peak uint32
	for _, s := range frames {
		bits := math.Float32bits(s) &^ (1 << 31)
		if bits > peak {
			peak = bits
		}
	}
	e.peakBits.Store(peak)

	e.ring.Push(frames)
}
