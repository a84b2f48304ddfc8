package windowing

import "math"

// Blackman represents a Blackman window function with the classic
// 0.42/0.5/0.08 coefficients.
type Blackman struct {
	symmetric bool
}

// NewBlackman creates a new Blackman window generator
func NewBlackman(symmetric bool) *Blackman {
	return &Blackman{symmetric: symmetric}
}

// Coefficients returns Blackman weights for the given frame size
func (b *Blackman) Coefficients(size int) []float64 {
	coefficients := make([]float64, size)
	if size == 1 {
		coefficients[0] = 1.0
		return coefficients
	}

	denominator := float64(size)
	if b.symmetric {
		denominator = float64(size - 1)
	}

	for i := range size {
		phase := 2 * math.Pi * float64(i) / denominator
		coefficients[i] = 0.42 - 0.5*math.Cos(phase) + 0.08*math.Cos(2*phase)
	}

	return coefficients
}

// Type returns the window type
func (b *Blackman) Type() string {
	return "blackman"
}
