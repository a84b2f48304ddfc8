package windowing

// Window generates analysis window coefficients for a given frame length.
// Implementations must be pure: the same size always yields the same
// coefficient vector, and the result length equals the requested size.
type Window interface {
	// Coefficients returns the window weights for a frame of the given size
	Coefficients(size int) []float64

	// Type returns the window type name
	Type() string
}

// Func adapts a plain coefficient-generator function to the Window
// interface, so callers can inject custom analysis windows without
// defining a new type.
type Func func(size int) []float64

// Coefficients invokes the wrapped function
func (f Func) Coefficients(size int) []float64 {
	return f(size)
}

// Type returns the window type
func (f Func) Type() string {
	return "custom"
}

// Apply multiplies a frame elementwise by the window's coefficients for
// that exact frame length and returns a new slice.
func Apply(w Window, frame []float64) []float64 {
	coeffs := w.Coefficients(len(frame))
	windowed := make([]float64, len(frame))
	for i := range frame {
		windowed[i] = frame[i] * coeffs[i]
	}
	return windowed
}
