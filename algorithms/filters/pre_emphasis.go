package filters

import (
	"fmt"
)

// PreEmphasis implements a first-order high-pass FIR filter for speech
// and audio processing. Pre-emphasis compensates for the natural spectral
// roll-off of speech, flattening the spectrum before analysis.
//
// The filter implements the transfer function:
// H(z) = 1 - α*z^-1
//
// With the difference equation:
// y[n] = x[n] - α*x[n-1], y[0] = x[0]
//
// Where α is the pre-emphasis coefficient (typically 0.95-0.97 for speech).
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 4
//   - S. Young et al., "The HTK Book", Cambridge University Engineering
//     Department, 2006, Section 5.3 (PREEMCOEF)
type PreEmphasis struct {
	coefficient float64
}

// NewPreEmphasis creates a pre-emphasis filter with the given coefficient.
// α = 0 disables emphasis (the filter becomes the identity).
func NewPreEmphasis(coefficient float64) *PreEmphasis {
	return &PreEmphasis{coefficient: coefficient}
}

// NewPreEmphasisDefault creates a pre-emphasis filter with the standard
// speech coefficient (0.97).
func NewPreEmphasisDefault() *PreEmphasis {
	return NewPreEmphasis(0.97)
}

// Apply filters an entire signal buffer and returns a new buffer of the
// same length. The first sample passes through unchanged since x[-1] is
// taken as zero. An empty input yields an empty output.
func (pe *PreEmphasis) Apply(signal []float64) []float64 {
	output := make([]float64, len(signal))
	if len(signal) == 0 {
		return output
	}

	output[0] = signal[0]
	for n := 1; n < len(signal); n++ {
		output[n] = signal[n] - pe.coefficient*signal[n-1]
	}

	return output
}

// SetCoefficient updates the pre-emphasis coefficient.
func (pe *PreEmphasis) SetCoefficient(coefficient float64) error {
	if coefficient < 0.0 || coefficient >= 1.0 {
		return fmt.Errorf("coefficient must be in [0, 1), got %f", coefficient)
	}
	pe.coefficient = coefficient
	return nil
}

// GetCoefficient returns the current coefficient.
func (pe *PreEmphasis) GetCoefficient() float64 {
	return pe.coefficient
}

// GetHighFrequencyGain computes the gain at the Nyquist frequency.
// H(e^jπ) = 1 + α, the maximum boost the filter applies.
func (pe *PreEmphasis) GetHighFrequencyGain() float64 {
	return 1.0 + pe.coefficient
}

// GetLowFrequencyGain computes the gain at DC.
// H(1) = 1 - α, so DC is attenuated rather than amplified.
func (pe *PreEmphasis) GetLowFrequencyGain() float64 {
	return 1.0 - pe.coefficient
}
