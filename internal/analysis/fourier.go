// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
	"github.com/C0D3-M4513R/visualizer2/pkg/bitint"
)

// FourierSettings selects analyzer parameters, typically straight from
// configuration. Zero values pick the documented defaults.
type FourierSettings struct {
	Length     int    // transform length, default 1024
	Window     string // window name, default "none"
	Downsample int    // decimation factor, default 1
}

// PlanFourier applies defaults, resolves the window name and constructs the
// analyzer.
func PlanFourier(s FourierSettings) (*FourierAnalyzer, error) {
	if s.Length == 0 {
		s.Length = 1024
	}
	if s.Window == "" {
		s.Window = "none"
	}
	if s.Downsample == 0 {
		s.Downsample = 1
	}
	kind, err := ParseWindowFunc(s.Window)
	if err != nil {
		return nil, err
	}
	coeffs, err := kind.Coefficients(s.Length)
	if err != nil {
		return nil, err
	}
	return NewFourierAnalyzer(s.Length, coeffs, s.Downsample)
}

// FourierAnalyzer turns the most recent decimated window of a SampleBuffer
// into per-channel frequency bins. Configuration is immutable after
// construction; only the scratch arrays change, overwritten on every Analyze.
//
// Analyze must not be called concurrently on one analyzer. Analyzers share
// no state with each other, so several (with different resolutions, say) may
// read the same buffer at the same time, each from its own goroutine.
type FourierAnalyzer struct {
	length     int
	downsample int
	window     []float64

	fft *fourier.CmplxFFT

	frames []Frame         // decimated window scratch
	bins   [2][]complex128 // per-channel scratch, transformed in place
}

// NewFourierAnalyzer builds an analyzer for the given transform length,
// resolved window coefficients (exactly length of them) and decimation
// factor.
func NewFourierAnalyzer(length int, window []float64, downsample int) (*FourierAnalyzer, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: transform length must be positive, got %d", ErrConfig, length)
	}
	if len(window) != length {
		return nil, fmt.Errorf("%w: %d window coefficients for transform length %d", ErrConfig, len(window), length)
	}
	if downsample < 1 {
		return nil, fmt.Errorf("%w: downsample factor must be at least 1, got %d", ErrConfig, downsample)
	}
	if !bitint.IsPowerOfTwo(length) {
		applog.Warnf("analysis: transform length %d is not a power of two, expect a slower transform", length)
	}
	applog.Debugf("analysis: planned analyzer (length %d, downsample %d)", length, downsample)

	return &FourierAnalyzer{
		length:     length,
		downsample: downsample,
		window:     window,
		fft:        fourier.NewCmplxFFT(length),
		frames:     make([]Frame, length),
		bins: [2][]complex128{
			make([]complex128, length),
			make([]complex128, length),
		},
	}, nil
}

// Analyze reads the newest decimated window from buf, tapers each channel
// with the window coefficients and transforms both channels in place. The
// returned slices span bins from 0 Hz up through the effective Nyquist
// frequency SampleRate/(2*downsample) at index length/2, followed by the
// mirrored negative frequencies.
//
// Analyze cannot fail. The slices are scratch storage owned by the analyzer
// and are only valid until the next Analyze call; callers wanting to keep
// data must copy it out.
func (a *FourierAnalyzer) Analyze(buf *SampleBuffer) (left, right []complex128) {
	buf.CopyWindow(a.frames, a.downsample)
	for i, f := range a.frames {
		w := a.window[i]
		a.bins[0][i] = complex(float64(f[0])*w, 0)
		a.bins[1][i] = complex(float64(f[1])*w, 0)
	}
	a.fft.Coefficients(a.bins[0], a.bins[0])
	a.fft.Coefficients(a.bins[1], a.bins[1])
	return a.bins[0], a.bins[1]
}

// Length returns the transform length.
func (a *FourierAnalyzer) Length() int { return a.length }

// Downsample returns the decimation factor.
func (a *FourierAnalyzer) Downsample() int { return a.downsample }

// BinWidth returns the frequency step between adjacent bins for frames
// sampled at sampleRate. Decimation divides the effective rate.
func (a *FourierAnalyzer) BinWidth(sampleRate float64) float64 {
	return sampleRate / float64(a.downsample) / float64(a.length)
}

// BinFrequency returns the center frequency of bin i for frames sampled at
// sampleRate, or 0 for an out-of-range index. Bins above length/2 carry the
// negative frequencies of the complex transform.
func (a *FourierAnalyzer) BinFrequency(i int, sampleRate float64) float64 {
	if i < 0 || i >= a.length {
		return 0
	}
	return float64(i) * a.BinWidth(sampleRate)
}
