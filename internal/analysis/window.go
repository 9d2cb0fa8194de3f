package analysis

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// ErrUnknownWindow reports a window name with no registered shape.
var ErrUnknownWindow = errors.New("unknown window function")

// WindowFunc identifies a tapering window shape. The set is closed: a window
// choice is a tagged value resolved once by name, and analyzers hold only the
// resolved coefficient vector.
type WindowFunc int

const (
	Rectangular WindowFunc = iota // all ones, a.k.a. "none"
	Triangular
	Hann
	Hamming
	Blackman
	Nuttall
	Sine // half-sine
)

func (w WindowFunc) String() string {
	switch w {
	case Rectangular:
		return "none"
	case Triangular:
		return "triangular"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case Nuttall:
		return "nuttall"
	case Sine:
		return "sine"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Unrecognized names yield ErrUnknownWindow.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "none", "rectangular":
		return Rectangular, nil
	case "triangular":
		return Triangular, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "nuttall":
		return Nuttall, nil
	case "sine", "halfsine":
		return Sine, nil
	default:
		return Rectangular, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
}

// Coefficients generates length tapering weights in [0, 1]. The slice is
// freshly allocated on every call and treated as immutable by its consumers.
// Stateless and safe to call from any goroutine.
func (w WindowFunc) Coefficients(length int) ([]float64, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: window length must be at least 1, got %d", ErrConfig, length)
	}
	// The window functions multiply the sequence in place, so start from
	// all ones to obtain the raw coefficients.
	coeffs := make([]float64, length)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	if length == 1 {
		// The closed forms divide by length-1; a single-point window is
		// unity for every shape.
		return coeffs, nil
	}
	switch w {
	case Rectangular:
		window.Rectangular(coeffs)
	case Triangular:
		window.Triangular(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Sine:
		window.Sine(coeffs)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownWindow, int(w))
	}
	return coeffs, nil
}
