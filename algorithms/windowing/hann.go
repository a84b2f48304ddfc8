package windowing

import "math"

// Hann represents a Hann (raised cosine) window function
type Hann struct {
	symmetric bool
}

// NewHann creates a new Hann window generator
func NewHann(symmetric bool) *Hann {
	return &Hann{symmetric: symmetric}
}

// Coefficients returns Hann weights for the given frame size
func (h *Hann) Coefficients(size int) []float64 {
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
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}

	return coefficients
}

// Type returns the window type
func (h *Hann) Type() string {
	return "hann"
}
