package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sonitude/melcep/algorithms/windowing"
)

// Framer splits a signal into overlapping fixed-length frames and applies
// an analysis window to each frame. Frames start every frameShift samples;
// trailing samples that do not fill a whole frame are dropped, so a
// partial frame is never produced.
type Framer struct {
	frameLength int
	frameShift  int
	window      windowing.Window
}

// NewFramer creates a framer for the given frame length and shift in
// samples. The shift must not exceed the length (frames overlap or abut,
// never skip samples). A nil window defaults to rectangular.
func NewFramer(frameLength, frameShift int, window windowing.Window) (*Framer, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %d", frameLength)
	}
	if frameShift <= 0 {
		return nil, fmt.Errorf("frame shift must be positive, got %d", frameShift)
	}
	if frameShift > frameLength {
		return nil, fmt.Errorf("frame shift (%d) must not exceed frame length (%d)", frameShift, frameLength)
	}
	if window == nil {
		window = windowing.NewRectangular()
	}

	return &Framer{
		frameLength: frameLength,
		frameShift:  frameShift,
		window:      window,
	}, nil
}

// FrameParams converts a duration/shift schedule in milliseconds to frame
// length and shift in samples: Nw = round(Tw*fs/1000), Ns = round(Ts*fs/1000).
func FrameParams(durationMs, shiftMs float64, sampleRate int) (frameLength, frameShift int) {
	frameLength = int(math.Round(durationMs * float64(sampleRate) / 1000.0))
	frameShift = int(math.Round(shiftMs * float64(sampleRate) / 1000.0))
	return frameLength, frameShift
}

// NumFrames returns the number of whole frames a signal of the given
// length yields: floor((len-Nw)/Ns)+1, or 0 when the signal is shorter
// than one frame.
func (f *Framer) NumFrames(signalLength int) int {
	if signalLength < f.frameLength {
		return 0
	}
	return (signalLength-f.frameLength)/f.frameShift + 1
}

// Frames extracts and windows every frame of the signal. The result is a
// frameLength x numFrames matrix with one frame per column, in ascending
// frame order. A signal shorter than one frame yields nil rather than an
// error.
func (f *Framer) Frames(signal []float64) *mat.Dense {
	numFrames := f.NumFrames(len(signal))
	if numFrames == 0 {
		return nil
	}

	coeffs := f.window.Coefficients(f.frameLength)

	frames := mat.NewDense(f.frameLength, numFrames, nil)
	column := make([]float64, f.frameLength)

	for t := range numFrames {
		start := t * f.frameShift
		for i := range f.frameLength {
			column[i] = signal[start+i] * coeffs[i]
		}
		frames.SetCol(t, column)
	}

	return frames
}

// FrameLength returns the frame length in samples
func (f *Framer) FrameLength() int {
	return f.frameLength
}

// FrameShift returns the frame shift in samples
func (f *Framer) FrameShift() int {
	return f.frameShift
}

// Window returns the injected window strategy
func (f *Framer) Window() windowing.Window {
	return f.window
}
