package windowing

import "math"

// Hamming represents a Hamming window function. The symmetric variant
// matches HTK's analysis window; the periodic variant is the usual
// choice for spectrogram reconstruction.
type Hamming struct {
	symmetric bool
}

// NewHamming creates a new Hamming window generator
func NewHamming(symmetric bool) *Hamming {
	return &Hamming{symmetric: symmetric}
}

// Coefficients returns Hamming weights for the given frame size
func (h *Hamming) Coefficients(size int) []float64 {
	coefficients := make([]float64, size)
	if size == 1 {
		coefficients[0] = 1.0
		return coefficients
	}

	denominator := float64(size)
	if h.symmetric {
		denominator = float64(size - 1)
	}

	for i := range size {
		coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}

	return coefficients
}

// Type returns the window type
func (h *Hamming) Type() string {
	return "hamming"
}
