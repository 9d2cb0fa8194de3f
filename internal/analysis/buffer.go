// SPDX-License-Identifier: MIT
/*
Package analysis holds the concurrent sample store and the spectral
pipeline that sit between a real-time capture thread and the renderer:

- SampleBuffer: circular store of the most recent stereo frames, written
  by one wait-free producer and read by any number of consumers.
- WindowFunc: closed set of tapering window shapes, resolved by name.
- FourierAnalyzer: pulls a decimated window from a buffer, tapers it and
  transforms it to per-channel frequency bins.

Thread Safety:
- The buffer uses one atomic word per frame plus an atomic write cursor;
  neither side ever blocks the other.
- Analyzers are single-threaded by contract but mutually independent, so
  several analyzers may read the same buffer concurrently.
*/
package analysis

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sync/atomic"
)

// ErrConfig reports invalid construction parameters. Constructors in this
// package wrap it; steady-state operations never fail.
var ErrConfig = errors.New("invalid configuration")

// Frame is one stereo sample: left and right amplitude. Amplitudes carry no
// implicit range clamp.
type Frame = [2]float32

// SampleBuffer is a fixed-capacity circular store holding the most recently
// pushed stereo frames. Slots that were never written read as silence.
//
// Everyone holding the same *SampleBuffer shares the underlying storage; the
// runtime releases it once the last holder drops the pointer. Hand the same
// pointer to the capture side and to every analyzer.
//
// Each slot is a single atomic 64-bit word containing both channels of one
// frame, so a reader can never observe a torn frame. The producer publishes
// frames with plain atomic stores and never waits on readers.
type SampleBuffer struct {
	rate   float64
	slots  []atomic.Uint64
	cursor atomic.Uint64 // total frames ever pushed
}

// NewSampleBuffer allocates a buffer of capacity silent frames recorded at
// sampleRate. The capacity is fixed for the lifetime of the buffer.
func NewSampleBuffer(capacity int, sampleRate float64) (*SampleBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: buffer capacity must be positive, got %d", ErrConfig, capacity)
	}
	return &SampleBuffer{
		rate:  sampleRate,
		slots: make([]atomic.Uint64, capacity),
	}, nil
}

// Capacity returns the fixed frame capacity.
func (b *SampleBuffer) Capacity() int { return len(b.slots) }

// SampleRate returns the rate the stored frames were recorded at, in Hz.
func (b *SampleBuffer) SampleRate() float64 { return b.rate }

// Pushed returns the total number of frames ever pushed.
func (b *SampleBuffer) Pushed() uint64 { return b.cursor.Load() }

// Push appends frames in order, unconditionally overwriting the oldest once
// the cursor wraps. The contract is "hold the most recent frames", so there
// is no overflow error. Single producer only.
//
// Safe to call from an audio callback: work is bounded by
// min(len(frames), capacity), there is no allocation and no lock. A batch
// longer than the capacity keeps only its trailing portion, since the rest
// would be overwritten within the same call anyway.
func (b *SampleBuffer) Push(frames []Frame) {
	pos := b.cursor.Load()
	if n := len(b.slots); len(frames) > n {
		pos += uint64(len(frames) - n)
		frames = frames[len(frames)-n:]
	}
	for i := range frames {
		b.slots[(pos+uint64(i))%uint64(len(b.slots))].Store(packFrame(frames[i]))
	}
	b.cursor.Store(pos + uint64(len(frames)))
}

// Iter yields exactly length frames, oldest to newest, selecting every
// downsample-th frame walking backward from the newest. History shorter than
// length*downsample frames is padded with leading silence, so consumers can
// start on a cold buffer instead of waiting for it to fill. A downsample
// below 1 is treated as 1.
//
// The walk is lock-free: the write cursor is sampled once on entry. Pushes
// racing the walk may surface newer frames in the oldest positions of the
// window, each still originating whole from a single push. Whole-window
// snapshot isolation is not provided; a window is at most one concurrent
// producer batch stale.
func (b *SampleBuffer) Iter(length, downsample int) iter.Seq[Frame] {
	if downsample < 1 {
		downsample = 1
	}
	return func(yield func(Frame) bool) {
		newest := int64(b.cursor.Load()) - 1
		for k := 0; k < length; k++ {
			idx := newest - int64(length-1-k)*int64(downsample)
			var f Frame
			if idx >= 0 {
				f = unpackFrame(b.slots[idx%int64(len(b.slots))].Load())
			}
			if !yield(f) {
				return
			}
		}
	}
}

// CopyWindow fills dst exactly like Iter(len(dst), downsample) without
// allocating, for hot paths that reuse a scratch slice.
func (b *SampleBuffer) CopyWindow(dst []Frame, downsample int) {
	if downsample < 1 {
		downsample = 1
	}
	newest := int64(b.cursor.Load()) - 1
	for k := range dst {
		idx := newest - int64(len(dst)-1-k)*int64(downsample)
		if idx >= 0 {
			dst[k] = unpackFrame(b.slots[idx%int64(len(b.slots))].Load())
		} else {
			dst[k] = Frame{}
		}
	}
}

func packFrame(f Frame) uint64 {
	return uint64(math.Float32bits(f[0]))<<32 | uint64(math.Float32bits(f[1]))
}

func unpackFrame(bits uint64) Frame {
	return Frame{
		math.Float32frombits(uint32(bits >> 32)),
		math.Float32frombits(uint32(bits)),
	}
}
