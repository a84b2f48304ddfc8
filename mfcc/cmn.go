package mfcc

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NormalizeMean applies cepstral mean normalization in place: each
// coefficient row has its mean across frames subtracted. This removes
// stationary convolutional effects such as channel coloration.
//
// A single-frame input becomes all zeros; that is the expected
// degenerate behavior, not an error.
func NormalizeMean(coeffs *mat.Dense) {
	if coeffs == nil {
		return
	}

	numCoeffs, _ := coeffs.Dims()
	for k := range numCoeffs {
		row := coeffs.RawRowView(k)
		mean := stat.Mean(row, nil)
		for t := range row {
			row[t] -= mean
		}
	}
}
