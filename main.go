// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"runtime"
	"time"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/buffer"
	"tuner/internal/config"
	"tuner/internal/dsp"
	"tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/tuner"
	"tuner/internal/tui"
	"tuner/pkg/build"
)

// udpRateInterval caps the UDP publish rate; results between datagrams are
// dropped, the latest one always wins.
const udpRateInterval = 50 * time.Millisecond

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments and config file
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start the capture engine feeding the sample ring
//   - Start the analysis loop publishing tuning results
//   - Run the TUI until the user quits
//
// 3. Shutdown Phase (Cold Path):
//   - Stop capture first, releasing the device
//   - Let the analysis loop drain the ring and exit
//   - Close transports and PortAudio
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Warnf("build info: %v", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the capture callback (time-critical)
	// - One thread for analysis, UI and I/O
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	// One-off commands run without the full pipeline.
	if cfg.Command == "list" {
		if err := audio.Initialize(); err != nil {
			log.Fatalf("%v", err)
		}
		defer audio.Terminate()
		if err := audio.ListDevices(); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}
	if !cfg.TUIMode {
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

// run wires and drives the capture → ring → analysis → display pipeline.
func run(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	// Ring capacity of four windows gives the analysis loop slack before
	// the producer starts dropping the oldest samples.
	ring, err := buffer.NewRing(4*cfg.FFTSize, cfg.FFTSize, cfg.HopSize)
	if err != nil {
		return err
	}

	engine, err := audio.NewEngine(cfg, ring)
	if err != nil {
		return err
	}

	ref, err := cfg.Reference()
	if err != nil {
		return err
	}
	refs := tuner.NewReferenceStore(ref)

	windowFn, err := dsp.ParseWindowFunc(cfg.Window)
	if err != nil {
		return err
	}

	var transports transport.Fanout
	if cfg.WSEnabled {
		transports = append(transports, transport.NewWebSocketTransport(cfg.WSPort))
	}
	if cfg.UDPEnabled {
		udp, err := transport.NewUDPTransport(cfg.UDPTarget, udpRateInterval)
		if err != nil {
			return err
		}
		transports = append(transports, udp)
	}
	var tr transport.Transport
	if len(transports) > 0 {
		tr = transports
	}

	analyzer, err := tuner.NewAnalyzer(ring, cfg.FFTSize, cfg.SampleRate, windowFn, refs, tr)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// CRITICAL: the first callback after StartInputStream marks the start
	// of the hot path.
	if err := engine.StartInputStream(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	analysisDone := make(chan struct{})
	go func() {
		analyzer.Run(ctx)
		close(analysisDone)
	}()

	// Blocks until the user quits. Ctrl+C is a quit key, so the TUI owns
	// signal handling too.
	uiErr := tui.Run(analyzer, engine, refs)

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	// Capture stops first so the device is released immediately; only then
	// is the analysis loop cancelled, letting it drain what the ring holds.
	if err := engine.Close(); err != nil {
		log.Errorf("closing capture engine: %v", err)
	}
	cancel()
	<-analysisDone

	if err := transports.Close(); err != nil {
		log.Errorf("closing transports: %v", err)
	}

	return uiErr
}
