package windowing

// Rectangular represents a rectangular (boxcar) window, i.e. no
// weighting at all. Useful for tests and for callers that window
// externally.
type Rectangular struct{}

// NewRectangular creates a new rectangular window generator
func NewRectangular() *Rectangular {
	return &Rectangular{}
}

// Coefficients returns all-ones weights for the given frame size
func (r *Rectangular) Coefficients(size int) []float64 {
	coefficients := make([]float64, size)
	for i := range coefficients {
		coefficients[i] = 1.0
	}
	return coefficients
}

// Type returns the window type
func (r *Rectangular) Type() string {
	return "rectangular"
}
