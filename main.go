package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/C0D3-M4513R/visualizer2/cmd"
	"github.com/C0D3-M4513R/visualizer2/internal/analysis"
	"github.com/C0D3-M4513R/visualizer2/internal/capture"
	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
	"github.com/C0D3-M4513R/visualizer2/internal/transport"
	"github.com/C0D3-M4513R/visualizer2/internal/transport/udp"
	"github.com/C0D3-M4513R/visualizer2/internal/tui"
	"github.com/C0D3-M4513R/visualizer2/pkg/build"
)

// main wires the pipeline: capture thread → shared sample buffer → spectrum
// publisher → renderer transports. The flow has three phases:
//
// 1. Startup (cold path): build info, configuration, PortAudio, one-off
// commands.
//
// 2. Concurrent (hot path): the capture callback pushes frames while the
// publisher analyzes and broadcasts at its own cadence.
//
// 3. Shutdown (cold path): stop consumers first, then the producer, then
// the audio subsystem.
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		// Development builds run without embedded metadata.
		applog.Debugf("build info not embedded: %v", err)
	}

	// One thread for the capture callback, one for analysis and I/O.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("invalid arguments: %v", err)
	}

	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if lvl, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(lvl)
	}

	if err := capture.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer capture.Terminate()

	// One-off commands that don't need the pipeline running.
	if cfg.Command == "list" {
		if err := tui.StartDeviceListUI(); err != nil {
			applog.Fatalf("device list failed: %v", err)
		}
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	buf, err := analysis.NewSampleBuffer(cfg.Audio.BufferFrames, cfg.Audio.SampleRate)
	if err != nil {
		applog.Fatalf("invalid buffer configuration: %v", err)
	}

	analyzer, err := analysis.PlanFourier(analysis.FourierSettings{
		Length:     cfg.Analysis.FFTLength,
		Window:     cfg.Analysis.Window,
		Downsample: cfg.Analysis.Downsample,
	})
	if err != nil {
		applog.Fatalf("invalid analysis configuration: %v", err)
	}

	// A capture failure is fatal only for the producer side: with no device
	// the publisher keeps broadcasting whatever the buffer holds (silence).
	source, err := capture.NewSource(capture.Settings{
		Device:     cfg.Audio.Device,
		ReadFrames: cfg.Audio.ReadFrames,
		LowLatency: cfg.Audio.LowLatency,
	}, buf)
	if err != nil {
		applog.Errorf("capture unavailable: %v", err)
		source = nil
	} else if err := source.Start(); err != nil {
		applog.Errorf("capture failed to start: %v", err)
		source = nil
	}

	var out transport.Transport
	if cfg.Transport.WSEnabled {
		out = transport.NewWebSocketTransport(cfg.Transport.WSAddress)
	} else {
		out = transport.NewLoggingTransport()
	}

	var sender *udp.Sender
	if cfg.Transport.UDPEnabled {
		sender, err = udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Errorf("UDP feed disabled: %v", err)
		}
	}

	publisher, err := transport.NewSpectrumPublisher(cfg.Transport.PublishInterval, analyzer, buf, out, sender)
	if err != nil {
		applog.Fatalf("invalid publisher configuration: %v", err)
	}
	publisher.Start()

	if source != nil && cfg.Recording.Enabled {
		if err := source.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Errorf("recording disabled: %v", err)
		}
	}

	<-done

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := publisher.Stop(); err != nil {
		applog.Errorf("error stopping publisher: %v", err)
	}
	if err := out.Close(); err != nil {
		applog.Errorf("error closing transport: %v", err)
	}
	if sender != nil {
		if err := sender.Close(); err != nil {
			applog.Errorf("error closing UDP sender: %v", err)
		}
	}
	if source != nil {
		if cfg.Recording.Enabled {
			applog.Infof("recording saved to %s", cfg.Recording.OutputFile)
		}
		if err := source.Close(); err != nil {
			applog.Errorf("error closing capture source: %v", err)
		}
	}
}
