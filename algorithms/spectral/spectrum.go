package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// SpectrumAnalyzer computes per-frame magnitude spectra. Each frame is
// zero-padded (or truncated) to the transform length, transformed with a
// real FFT, and reduced to the non-negative-frequency half including DC
// and Nyquist.
type SpectrumAnalyzer struct {
	fft     *FFT
	fftSize int
}

// NewSpectrumAnalyzer creates an analyzer for the given transform length,
// which must be a power of two.
func NewSpectrumAnalyzer(fftSize int) (*SpectrumAnalyzer, error) {
	if !IsPow2(fftSize) {
		return nil, fmt.Errorf("FFT size must be a positive power of two, got %d", fftSize)
	}

	return &SpectrumAnalyzer{
		fft:     NewFFT(),
		fftSize: fftSize,
	}, nil
}

// NewSpectrumAnalyzerForFrameLength creates an analyzer whose transform
// length is the next power of two >= the frame length.
func NewSpectrumAnalyzerForFrameLength(frameLength int) (*SpectrumAnalyzer, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %d", frameLength)
	}
	return NewSpectrumAnalyzer(NextPow2(frameLength))
}

// FFTSize returns the transform length
func (s *SpectrumAnalyzer) FFTSize() int {
	return s.fftSize
}

// NumBins returns the number of retained frequency bins, fftSize/2+1
func (s *SpectrumAnalyzer) NumBins() int {
	return s.fftSize/2 + 1
}

// Compute takes a frameLength x numFrames matrix of windowed frames and
// returns the numBins x numFrames magnitude-spectrum matrix. Frames are
// processed by a worker pool; columns are independent, so workers write
// disjoint parts of the shared result.
func (s *SpectrumAnalyzer) Compute(frames *mat.Dense) *mat.Dense {
	if frames == nil {
		return nil
	}

	frameLength, numFrames := frames.Dims()
	numBins := s.NumBins()
	copyLength := min(frameLength, s.fftSize)

	magnitude := mat.NewDense(numBins, numFrames, nil)

	jobs := make(chan int, numFrames)
	numWorkers := optimalWorkerCount(numFrames)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Per-worker scratch buffers
			frameBuffer := make([]float64, frameLength)
			padded := make([]float64, s.fftSize)
			column := make([]float64, numBins)

			for t := range jobs {
				mat.Col(frameBuffer, t, frames)

				copy(padded, frameBuffer[:copyLength])
				for i := copyLength; i < s.fftSize; i++ {
					padded[i] = 0
				}

				spectrum := s.fft.Compute(padded)
				for i := range numBins {
					column[i] = cmplx.Abs(spectrum[i])
				}
				magnitude.SetCol(t, column)
			}
		}()
	}

	for t := range numFrames {
		jobs <- t
	}
	close(jobs)

	wg.Wait()

	return magnitude
}

// optimalWorkerCount sizes the worker pool to the workload so that small
// inputs do not pay goroutine overhead for nothing.
func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}
	if numFrames < 1000 {
		return min(numCPU, 8)
	}
	return numCPU
}
