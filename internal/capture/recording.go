package capture

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
)

// StartRecording tees the captured stream into a 32-bit stereo WAV file.
// The analysis path is unaffected; encoding failures are logged and the
// offending block dropped.
func (s *Source) StartRecording(filename string) error {
	if s.recording.Load() {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	s.outputFile = file

	s.wavEncoder = wav.NewEncoder(file, int(s.buffer.SampleRate()), 32, 2, 1)
	s.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  int(s.buffer.SampleRate()),
		},
		Data: make([]int, s.settings.ReadFrames*2),
	}

	s.recording.Store(true)
	applog.Infof("capture: recording to %s", filename)
	return nil
}

// StopRecording finalizes the WAV file. Safe to call when not recording.
func (s *Source) StopRecording() error {
	if !s.recording.Load() {
		return nil
	}
	s.recording.Store(false)

	if s.wavEncoder != nil {
		if err := s.wavEncoder.Close(); err != nil {
			return err
		}
		s.wavEncoder = nil
	}
	if s.outputFile != nil {
		if err := s.outputFile.Close(); err != nil {
			return err
		}
		s.outputFile = nil
	}
	return nil
}

// writeRecording converts one interleaved float32 block to ints and appends
// it to the WAV file. Runs on the capture thread; reuses the pre-allocated
// sample buffer.
func (s *Source) writeRecording(in []float32) {
	if s.wavEncoder == nil || s.sampleBuf == nil {
		return
	}
	if len(in) > cap(s.sampleBuf.Data) {
		in = in[:cap(s.sampleBuf.Data)]
	}
	s.sampleBuf.Data = s.sampleBuf.Data[:len(in)]
	for i, v := range in {
		// The core never clamps amplitudes, but PCM must.
		f := float64(v)
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s.sampleBuf.Data[i] = int(f * math.MaxInt32)
	}

	if err := s.wavEncoder.Write(s.sampleBuf); err != nil {
		applog.Errorf("capture: error writing WAV block: %v", err)
	}
}
