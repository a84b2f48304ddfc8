package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality on top of
// mjibson/go-dsp.
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform of a real signal.
// Takes []float64 input and returns []complex128 output of the same
// length. go-dsp handles non-power-of-two sizes as well.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverse computes the inverse FFT
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// NextPow2 returns the smallest power of two that is >= n.
// Returns 1 for n <= 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsPow2 reports whether n is a positive power of two
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
