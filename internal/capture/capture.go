// SPDX-License-Identifier: MIT
/*
Package capture drives the platform audio backend. A Source owns one
PortAudio input stream whose callback converts interleaved stereo samples
into frames and pushes them into a shared analysis.SampleBuffer.

Thread Safety:
- The callback runs on the backend's real-time thread: pre-allocated chunk
  only, no locks, no allocation, OS thread locked while it runs.
- Recording state is an atomic flag so the render side can start and stop
  the WAV tee without touching the stream.
*/
package capture

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"github.com/C0D3-M4513R/visualizer2/internal/analysis"
	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
)

// Settings configures one capture source.
type Settings struct {
	Device     string // input device name, "" for the host default
	ReadFrames int    // frames per backend delivery, default 256
	LowLatency bool   // request the device's low-latency profile
}

// Source captures stereo audio from one device into a shared sample buffer.
// The buffer's sample rate is the rate requested from the device.
type Source struct {
	settings Settings
	buffer   *analysis.SampleBuffer
	device   *portaudio.DeviceInfo
	latency  time.Duration
	stream   *portaudio.Stream

	chunk []analysis.Frame // callback scratch, sized to ReadFrames

	// Recording tee, guarded by the recording flag.
	recording  atomic.Bool
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer
}

// NewSource resolves the capture device and prepares a source pushing into
// buf. Device resolution failures return ErrNoDevice-wrapped errors; the
// caller decides whether the rest of the system keeps running on silence.
func NewSource(settings Settings, buf *analysis.SampleBuffer) (*Source, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: capture source needs a sample buffer", analysis.ErrConfig)
	}
	if settings.ReadFrames <= 0 {
		settings.ReadFrames = 256
	}

	device, err := InputDevice(settings.Device)
	if err != nil {
		return nil, err
	}

	s := &Source{
		settings: settings,
		buffer:   buf,
		device:   device,
		chunk:    make([]analysis.Frame, settings.ReadFrames),
	}
	if settings.LowLatency {
		s.latency = device.DefaultLowInputLatency
	} else {
		s.latency = device.DefaultHighInputLatency
	}
	return s, nil
}

// Start opens the input stream and begins delivering frames to the buffer.
func (s *Source) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 2,
			Device:   s.device,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.settings.ReadFrames,
		SampleRate:      s.buffer.SampleRate(),
	}

	stream, err := portaudio.OpenStream(params, s.processInput)
	if err != nil {
		return fmt.Errorf("failed to open input stream on %q: %w", s.device.Name, err)
	}
	s.stream = stream

	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		s.stream = nil
		return fmt.Errorf("failed to start input stream on %q: %w", s.device.Name, err)
	}

	applog.Infof("capture: streaming from %q (rate %.0f Hz, read size %d)",
		s.device.Name, s.buffer.SampleRate(), s.settings.ReadFrames)
	return nil
}

// Stop halts and closes the input stream.
func (s *Source) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	s.stream = nil
	return nil
}

// Close stops any active recording and then the stream.
func (s *Source) Close() error {
	if s.recording.Load() {
		if err := s.StopRecording(); err != nil {
			return err
		}
	}
	return s.Stop()
}

// processInput is the real-time capture callback.
// Performance Critical:
// - Runs on the backend's dedicated thread (LockOSThread)
// - Pre-allocated chunk only, no allocation
// - Push is wait-free, so the callback never blocks on consumers
func (s *Source) processInput(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	total := len(in) / 2
	for off := 0; off < total; {
		n := total - off
		if n > len(s.chunk) {
			n = len(s.chunk)
		}
		for i := 0; i < n; i++ {
			s.chunk[i] = analysis.Frame{in[(off+i)*2], in[(off+i)*2+1]}
		}
		s.buffer.Push(s.chunk[:n])
		off += n
	}

	if s.recording.Load() {
		s.writeRecording(in)
	}
}
