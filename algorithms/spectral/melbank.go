package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MelFilterbank is a bank of overlapping triangular weighting functions
// spaced uniformly on the mel scale, sampled at the spectrum analyzer's
// frequency bins. Row m peaks at the m-th mel-uniform center frequency
// and is zero outside the support [center(m-1), center(m+1)].
//
// Convention: filters are HTK-style equal-height triangles. No amplitude
// or area normalization is applied, so every non-degenerate filter
// reaches exactly 1.0 at its center bin. Downstream coefficient
// magnitudes depend on this choice.
//
// References:
//   - S. Young et al., "The HTK Book", Cambridge University Engineering
//     Department, 2006, Section 5.4
//   - S.B. Davis, P. Mermelstein, "Comparison of parametric representations
//     for monosyllabic word recognition", IEEE Trans. ASSP, 1980
type MelFilterbank struct {
	weights    *mat.Dense // numFilters x numBins
	centerBins []int      // numFilters+2 edge/center bin indices
	edgeFreqs  []float64  // numFilters+2 edge/center frequencies in Hz
	numFilters int
	numBins    int
}

// HzToMel converts frequency in Hz to the mel scale:
// mel(f) = 2595*log10(1 + f/700)
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel-scale value back to Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// NewMelFilterbank builds a numFilters x (fftSize/2+1) filterbank over the
// band [lowFreq, highFreq]. The band must satisfy
// 0 <= lowFreq < highFreq <= sampleRate/2.
//
// Filters narrower than one spectral bin (common at low frequencies with
// coarse FFT resolution) collapse to a single non-zero bin of weight 1 at
// their center; this is defined behavior, not an error.
func NewMelFilterbank(numFilters, fftSize, sampleRate int, lowFreq, highFreq float64) (*MelFilterbank, error) {
	if numFilters <= 0 {
		return nil, fmt.Errorf("number of filters must be positive, got %d", numFilters)
	}
	if fftSize < 2 {
		return nil, fmt.Errorf("FFT size must be at least 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	nyquist := float64(sampleRate) / 2.0
	if lowFreq < 0 {
		return nil, fmt.Errorf("low frequency must be non-negative, got %f", lowFreq)
	}
	if lowFreq >= highFreq {
		return nil, fmt.Errorf("low frequency (%f) must be below high frequency (%f)", lowFreq, highFreq)
	}
	if highFreq > nyquist {
		return nil, fmt.Errorf("high frequency (%f) exceeds Nyquist (%f)", highFreq, nyquist)
	}

	numBins := fftSize/2 + 1

	// numFilters+2 points uniformly spaced on the mel scale; the outer
	// two are the band edges, the inner ones the filter centers.
	melPoints := make([]float64, numFilters+2)
	floats.Span(melPoints, HzToMel(lowFreq), HzToMel(highFreq))

	edgeFreqs := make([]float64, len(melPoints))
	centerBins := make([]int, len(melPoints))
	for i, mel := range melPoints {
		edgeFreqs[i] = MelToHz(mel)
		bin := int(math.Round(edgeFreqs[i] * float64(fftSize) / float64(sampleRate)))
		centerBins[i] = min(bin, numBins-1)
	}

	weights := mat.NewDense(numFilters, numBins, nil)

	for m := 1; m <= numFilters; m++ {
		left := centerBins[m-1]
		center := centerBins[m]
		right := centerBins[m+1]

		// Rising ramp, exclusive of both endpoints
		for k := left + 1; k < center; k++ {
			weights.Set(m-1, k, float64(k-left)/float64(center-left))
		}

		// Falling ramp, exclusive of both endpoints
		for k := center + 1; k < right; k++ {
			weights.Set(m-1, k, float64(right-k)/float64(right-center))
		}

		// The peak is always 1 at the center bin. When the triangle has
		// collapsed (left == center or center == right) this is the
		// filter's single non-zero bin.
		weights.Set(m-1, center, 1.0)
	}

	return &MelFilterbank{
		weights:    weights,
		centerBins: centerBins,
		edgeFreqs:  edgeFreqs,
		numFilters: numFilters,
		numBins:    numBins,
	}, nil
}

// Apply computes the filterbank energies FBE = W * magnitude for every
// frame: one non-negative energy value per filter per frame. The input
// must have numBins rows; columns are frames.
func (fb *MelFilterbank) Apply(magnitude *mat.Dense) (*mat.Dense, error) {
	if magnitude == nil {
		return nil, fmt.Errorf("magnitude spectrum is nil")
	}
	rows, cols := magnitude.Dims()
	if rows != fb.numBins {
		return nil, fmt.Errorf("magnitude spectrum has %d bins, filterbank expects %d", rows, fb.numBins)
	}

	energies := mat.NewDense(fb.numFilters, cols, nil)
	energies.Mul(fb.weights, magnitude)
	return energies, nil
}

// Weights returns the numFilters x numBins weight matrix. The matrix is
// shared, not copied; treat it as read-only.
func (fb *MelFilterbank) Weights() *mat.Dense {
	return fb.weights
}

// CenterBins returns the numFilters+2 edge/center bin indices
func (fb *MelFilterbank) CenterBins() []int {
	return fb.centerBins
}

// CenterFrequencies returns the numFilters+2 edge/center frequencies in Hz
func (fb *MelFilterbank) CenterFrequencies() []float64 {
	return fb.edgeFreqs
}

// NumFilters returns the number of filters
func (fb *MelFilterbank) NumFilters() int {
	return fb.numFilters
}

// NumBins returns the number of spectral bins each filter spans
func (fb *MelFilterbank) NumBins() int {
	return fb.numBins
}
