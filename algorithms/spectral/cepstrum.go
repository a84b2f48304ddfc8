package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Epsilon is the floor applied to filterbank energies before log
// compression, IEEE-754 double machine epsilon. Zero-energy frames
// produce log(Epsilon) instead of -Inf.
var Epsilon = math.Nextafter(1.0, 2.0) - 1.0

// CepstralTransform decorrelates log filterbank energies into cepstral
// coefficients with a DCT-II and rebalances them with a sinusoidal
// lifter.
//
// Convention: the DCT rows use the HTK scaling sqrt(2/M) for every
// coefficient including c0, so c0 = sqrt(2/M) * sum of the log energies.
// The lifter is lift(k) = 1 + (L/2)*sin(pi*k/L) with lift(0) = 1; L = 0
// disables liftering.
type CepstralTransform struct {
	numCoefficients int
	numFilters      int
	lifterParam     int
	dct             *mat.Dense // numCoefficients x numFilters
	lifter          []float64  // numCoefficients weights
}

// NewCepstralTransform creates a transform producing numCoefficients
// cepstral coefficients (including c0) from numFilters log energies.
// Requires 1 <= numCoefficients <= numFilters+1 and lifterParam >= 0.
func NewCepstralTransform(numCoefficients, numFilters, lifterParam int) (*CepstralTransform, error) {
	if numFilters <= 0 {
		return nil, fmt.Errorf("number of filters must be positive, got %d", numFilters)
	}
	if numCoefficients <= 0 {
		return nil, fmt.Errorf("number of coefficients must be positive, got %d", numCoefficients)
	}
	if numCoefficients > numFilters+1 {
		return nil, fmt.Errorf("number of coefficients (%d) must not exceed number of filters + 1 (%d)",
			numCoefficients, numFilters+1)
	}
	if lifterParam < 0 {
		return nil, fmt.Errorf("lifter parameter must be non-negative, got %d", lifterParam)
	}

	ct := &CepstralTransform{
		numCoefficients: numCoefficients,
		numFilters:      numFilters,
		lifterParam:     lifterParam,
	}

	scale := math.Sqrt(2.0 / float64(numFilters))
	dct := mat.NewDense(numCoefficients, numFilters, nil)
	for k := range numCoefficients {
		for j := range numFilters {
			dct.Set(k, j, scale*math.Cos(math.Pi*float64(k)*(float64(j)+0.5)/float64(numFilters)))
		}
	}
	ct.dct = dct

	ct.lifter = make([]float64, numCoefficients)
	for k := range ct.lifter {
		if lifterParam > 0 {
			l := float64(lifterParam)
			ct.lifter[k] = 1.0 + l/2.0*math.Sin(math.Pi*float64(k)/l)
		} else {
			ct.lifter[k] = 1.0
		}
	}

	return ct, nil
}

// LogCompress floors filterbank energies at Epsilon and takes the
// natural log elementwise, returning a new matrix. Non-finite values
// never propagate downstream.
func LogCompress(energies *mat.Dense) *mat.Dense {
	if energies == nil {
		return nil
	}

	rows, cols := energies.Dims()
	compressed := mat.NewDense(rows, cols, nil)
	compressed.Apply(func(_, _ int, v float64) float64 {
		if v < Epsilon {
			v = Epsilon
		}
		return math.Log(v)
	}, energies)

	return compressed
}

// Apply transforms a numFilters x numFrames matrix of log filterbank
// energies into a numCoefficients x numFrames matrix of liftered
// cepstral coefficients.
func (ct *CepstralTransform) Apply(logEnergies *mat.Dense) (*mat.Dense, error) {
	if logEnergies == nil {
		return nil, fmt.Errorf("log energies matrix is nil")
	}
	rows, cols := logEnergies.Dims()
	if rows != ct.numFilters {
		return nil, fmt.Errorf("log energies have %d filters, transform expects %d", rows, ct.numFilters)
	}

	cepstra := mat.NewDense(ct.numCoefficients, cols, nil)
	cepstra.Mul(ct.dct, logEnergies)

	if ct.lifterParam > 0 {
		for k := range ct.numCoefficients {
			floats.Scale(ct.lifter[k], cepstra.RawRowView(k))
		}
	}

	return cepstra, nil
}

// LifterWeights returns a copy of the lifter weight vector
func (ct *CepstralTransform) LifterWeights() []float64 {
	weights := make([]float64, len(ct.lifter))
	copy(weights, ct.lifter)
	return weights
}

// DCTMatrix returns the numCoefficients x numFilters DCT matrix. The
// matrix is shared, not copied; treat it as read-only.
func (ct *CepstralTransform) DCTMatrix() *mat.Dense {
	return ct.dct
}

// NumCoefficients returns the number of cepstral coefficients produced
func (ct *CepstralTransform) NumCoefficients() int {
	return ct.numCoefficients
}
