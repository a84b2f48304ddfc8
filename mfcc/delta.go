package mfcc

import (
	"gonum.org/v1/gonum/mat"
)

// Delta computes first-order regression deltas over the frame axis of a
// coefficient matrix (coefficients x frames):
//
//	d[t] = sum_{i=1..W} i*(c[t+i] - c[t-i]) / (2*sum_{i=1..W} i^2)
//
// Frame indices are clamped at the edges, so the first and last frames
// reuse their nearest neighbors. W is the regression half-window.
func Delta(coeffs *mat.Dense, window int) *mat.Dense {
	if coeffs == nil {
		return nil
	}
	if window < 1 {
		window = 2
	}

	numCoeffs, numFrames := coeffs.Dims()

	denominator := 0.0
	for i := 1; i <= window; i++ {
		denominator += float64(i * i)
	}
	denominator *= 2.0

	deltas := mat.NewDense(numCoeffs, numFrames, nil)
	for t := range numFrames {
		for i := 1; i <= window; i++ {
			ahead := min(t+i, numFrames-1)
			behind := max(t-i, 0)
			for k := range numCoeffs {
				deltas.Set(k, t, deltas.At(k, t)+float64(i)*(coeffs.At(k, ahead)-coeffs.At(k, behind)))
			}
		}
		for k := range numCoeffs {
			deltas.Set(k, t, deltas.At(k, t)/denominator)
		}
	}

	return deltas
}

// AppendDeltas stacks delta (and optionally delta-delta) rows under the
// static coefficients, growing the coefficient axis to 2x or 3x its
// size. The frame axis is unchanged.
func AppendDeltas(coeffs *mat.Dense, window int, includeDeltaDelta bool) *mat.Dense {
	if coeffs == nil {
		return nil
	}

	numCoeffs, numFrames := coeffs.Dims()

	blocks := []*mat.Dense{coeffs}
	d1 := Delta(coeffs, window)
	blocks = append(blocks, d1)
	if includeDeltaDelta {
		blocks = append(blocks, Delta(d1, window))
	}

	stacked := mat.NewDense(numCoeffs*len(blocks), numFrames, nil)
	for b, block := range blocks {
		for k := range numCoeffs {
			for t := range numFrames {
				stacked.Set(b*numCoeffs+k, t, block.At(k, t))
			}
		}
	}

	return stacked
}
