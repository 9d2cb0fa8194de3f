// Package utils holds shared test helpers: deterministic signal generators
// and a transport stub.
package utils

import "math"

// MockTransport records everything sent through it for later inspection.
type MockTransport struct {
	Sent []any
}

// Send stores the payload instead of transmitting it.
func (m *MockTransport) Send(data any) error {
	m.Sent = append(m.Sent, data)
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error { return nil }

// SineFrames returns n stereo frames of a pure sinusoid at frequency hz,
// identical on both channels.
func SineFrames(n int, sampleRate, hz float64) [][2]float32 {
	frames := make([][2]float32, n)
	for i := range frames {
		v := float32(math.Sin(2 * math.Pi * hz * float64(i) / sampleRate))
		frames[i] = [2]float32{v, v}
	}
	return frames
}

// ConstFrames returns n frames with both channels set to v.
func ConstFrames(n int, v float32) [][2]float32 {
	frames := make([][2]float32, n)
	for i := range frames {
		frames[i] = [2]float32{v, v}
	}
	return frames
}

// FindPeakBin returns the index of the largest magnitude within
// magnitudes[startBin..endBin], clamping the range to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
