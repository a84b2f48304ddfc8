package mfcc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sonitude/melcep/algorithms/spectral"
	"github.com/sonitude/melcep/algorithms/windowing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestComputeSilence(t *testing.T) {
	// 1 second of silence at 16 kHz with the classic HTK parameter set.
	// Silence has no spectral structure: every filterbank energy hits the
	// epsilon floor and every cepstral coefficient beyond c0 vanishes.
	params := Params{
		SampleRate:      16000,
		FrameDurationMs: 25,
		FrameShiftMs:    10,
		PreEmphasis:     0.97,
		LowFreq:         300,
		HighFreq:        3700,
		NumFilters:      20,
		NumCoefficients: 13,
		LifterParam:     22,
	}

	result, err := Compute(make([]float64, 16000), params)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if result.NumFrames != 98 {
		t.Fatalf("NumFrames = %d, want 98", result.NumFrames)
	}

	wantFloor := math.Log(spectral.Epsilon)
	rows, cols := result.LogEnergies.Dims()
	if rows != 20 || cols != 98 {
		t.Fatalf("LogEnergies dims = %dx%d, want 20x98", rows, cols)
	}
	for i := range rows {
		for j := range cols {
			if result.LogEnergies.At(i, j) != wantFloor {
				t.Fatalf("LogEnergies[%d][%d] = %f, want %f", i, j, result.LogEnergies.At(i, j), wantFloor)
			}
		}
	}

	ccRows, ccCols := result.Cepstra.Dims()
	if ccRows != 13 || ccCols != 98 {
		t.Fatalf("Cepstra dims = %dx%d, want 13x98", ccRows, ccCols)
	}
	for j := range ccCols {
		if c0 := result.Cepstra.At(0, j); c0 >= 0 || math.IsInf(c0, 0) || math.IsNaN(c0) {
			t.Errorf("c0[%d] = %f, want a finite negative value", j, c0)
		}
		for k := 1; k < ccRows; k++ {
			if math.Abs(result.Cepstra.At(k, j)) > 1e-9 {
				t.Errorf("Cepstra[%d][%d] = %g, want ~0 for silence", k, j, result.Cepstra.At(k, j))
			}
		}
	}
}

func TestComputeDimensions(t *testing.T) {
	params := DefaultParams(16000)
	signal := sine(440, 16000, 16000)

	result, err := Compute(signal, params)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// floor((16000-400)/160)+1 = 98
	if result.NumFrames != 98 {
		t.Errorf("NumFrames = %d, want 98", result.NumFrames)
	}
	if result.FrameLength != 400 || result.FrameShift != 160 {
		t.Errorf("frame geometry = %d/%d, want 400/160", result.FrameLength, result.FrameShift)
	}
	if result.FFTSize != 512 || result.NumBins != 257 {
		t.Errorf("FFT geometry = %d/%d, want 512/257", result.FFTSize, result.NumBins)
	}

	checkDims := func(name string, m *mat.Dense, wantRows int) {
		t.Helper()
		rows, cols := m.Dims()
		if rows != wantRows || cols != 98 {
			t.Errorf("%s dims = %dx%d, want %dx98", name, rows, cols, wantRows)
		}
	}
	checkDims("Cepstra", result.Cepstra, 13)
	checkDims("LogEnergies", result.LogEnergies, 20)
	checkDims("Frames", result.Frames, 400)

	for _, m := range []*mat.Dense{result.Cepstra, result.LogEnergies, result.Frames} {
		rows, cols := m.Dims()
		for i := range rows {
			for j := range cols {
				if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("non-finite value %f at [%d][%d]", v, i, j)
				}
			}
		}
	}
}

func TestComputeSinusoidEnergyPeak(t *testing.T) {
	// A pure tone near a filter's center frequency should concentrate
	// filterbank energy at that filter.
	params := DefaultParams(16000)
	extractor, err := New(params)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := extractor.Compute(sine(1000, 16000, 16000))
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// Filter (1-indexed) whose center frequency is nearest 1000 Hz
	centers := extractor.Filterbank().CenterFrequencies()
	wantFilter := 1
	bestDistance := math.Inf(1)
	for m := 1; m <= params.NumFilters; m++ {
		if d := math.Abs(centers[m] - 1000); d < bestDistance {
			bestDistance = d
			wantFilter = m
		}
	}

	// Argmax of the mid-signal frame's log energies
	frame := result.NumFrames / 2
	peakFilter := 1
	peakValue := math.Inf(-1)
	for m := range params.NumFilters {
		if v := result.LogEnergies.At(m, frame); v > peakValue {
			peakValue = v
			peakFilter = m + 1
		}
	}

	if peakFilter < wantFilter-1 || peakFilter > wantFilter+1 {
		t.Errorf("energy peak at filter %d, want %d +/- 1", peakFilter, wantFilter)
	}
}

func TestComputeShortSignal(t *testing.T) {
	extractor, err := New(DefaultParams(16000))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for _, n := range []int{0, 1, 399} {
		result, err := extractor.Compute(make([]float64, n))
		if err != nil {
			t.Fatalf("Compute(%d samples) error: %v", n, err)
		}
		if result.NumFrames != 0 {
			t.Errorf("Compute(%d samples): NumFrames = %d, want 0", n, result.NumFrames)
		}
		if result.Cepstra != nil || result.LogEnergies != nil || result.Frames != nil {
			t.Errorf("Compute(%d samples): expected nil matrices", n)
		}
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero sample rate", func(p *Params) { p.SampleRate = 0 }},
		{"negative sample rate", func(p *Params) { p.SampleRate = -16000 }},
		{"shift above duration", func(p *Params) { p.FrameShiftMs = 30 }},
		{"negative duration", func(p *Params) { p.FrameDurationMs = -25 }},
		{"low above high", func(p *Params) { p.LowFreq = 4000; p.HighFreq = 3000 }},
		{"high above nyquist", func(p *Params) { p.HighFreq = 9000 }},
		{"negative low", func(p *Params) { p.LowFreq = -10 }},
		{"too many coefficients", func(p *Params) { p.NumCoefficients = 22 }},
		{"negative filters", func(p *Params) { p.NumFilters = -5 }},
		{"negative lifter", func(p *Params) { p.LifterParam = -1 }},
		{"non-pow2 fft size", func(p *Params) { p.FFTSize = 500 }},
		{"delta-delta without delta", func(p *Params) { p.AppendDeltaDelta = true }},
	}

	for _, tc := range cases {
		params := DefaultParams(16000)
		tc.mutate(&params)
		if _, err := New(params); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	extractor, err := New(DefaultParams(16000))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	signal := sine(440, 16000, 16000)
	first, err := extractor.Compute(signal)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	second, err := extractor.Compute(signal)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if !mat.Equal(first.Cepstra, second.Cepstra) {
		t.Error("repeated extraction produced different cepstra")
	}
	if !mat.Equal(first.LogEnergies, second.LogEnergies) {
		t.Error("repeated extraction produced different log energies")
	}
}

func TestComputeCustomWindow(t *testing.T) {
	params := DefaultParams(16000)
	params.Window = windowing.Func(func(size int) []float64 {
		coeffs := make([]float64, size)
		for i := range coeffs {
			coeffs[i] = 1.0
		}
		return coeffs
	})

	result, err := Compute(sine(440, 16000, 16000), params)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if result.NumFrames != 98 {
		t.Errorf("NumFrames = %d, want 98", result.NumFrames)
	}
}

func TestComputeAppendDeltas(t *testing.T) {
	params := DefaultParams(16000)
	params.AppendDelta = true
	params.AppendDeltaDelta = true

	result, err := Compute(sine(440, 16000, 16000), params)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	rows, cols := result.Cepstra.Dims()
	if rows != 39 || cols != 98 {
		t.Errorf("Cepstra dims = %dx%d, want 39x98", rows, cols)
	}
}

func TestComputeAppendEnergy(t *testing.T) {
	signal := sine(440, 16000, 16000)

	base := DefaultParams(16000)
	plain, err := Compute(signal, base)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	withEnergy := DefaultParams(16000)
	withEnergy.AppendEnergy = true
	energetic, err := Compute(signal, withEnergy)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// Higher rows are untouched, row 0 is replaced by the log energy
	rows, cols := plain.Cepstra.Dims()
	for k := 1; k < rows; k++ {
		for j := range cols {
			if plain.Cepstra.At(k, j) != energetic.Cepstra.At(k, j) {
				t.Fatalf("row %d changed by AppendEnergy", k)
			}
		}
	}
	changed := false
	for j := range cols {
		v := energetic.Cepstra.At(0, j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("log energy not finite at frame %d", j)
		}
		if v != plain.Cepstra.At(0, j) {
			changed = true
		}
	}
	if !changed {
		t.Error("AppendEnergy left row 0 unchanged")
	}
}

func TestDeltaLinearRamp(t *testing.T) {
	// Delta of a linear ramp is 1 per frame away from the clamped edges
	coeffs := mat.NewDense(1, 10, nil)
	for t := range 10 {
		coeffs.Set(0, t, float64(t))
	}

	deltas := Delta(coeffs, 2)
	for i := 2; i < 8; i++ {
		if math.Abs(deltas.At(0, i)-1.0) > 1e-12 {
			t.Errorf("delta[%d] = %f, want 1.0", i, deltas.At(0, i))
		}
	}
}

func TestNormalizeMean(t *testing.T) {
	coeffs := mat.NewDense(3, 50, nil)
	for k := range 3 {
		for t := range 50 {
			coeffs.Set(k, t, math.Sin(float64(t)*0.3)+float64(k)*2.0)
		}
	}

	NormalizeMean(coeffs)

	for k := range 3 {
		sum := 0.0
		for t := range 50 {
			sum += coeffs.At(k, t)
		}
		if math.Abs(sum/50.0) > 1e-10 {
			t.Errorf("row %d mean = %g after normalization, want 0", k, sum/50.0)
		}
	}
}

func TestComputeCMNZeroMean(t *testing.T) {
	params := DefaultParams(16000)
	params.UseCMN = true

	result, err := Compute(sine(440, 16000, 16000), params)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	rows, cols := result.Cepstra.Dims()
	for k := range rows {
		sum := 0.0
		for j := range cols {
			sum += result.Cepstra.At(k, j)
		}
		if math.Abs(sum/float64(cols)) > 1e-9 {
			t.Errorf("coefficient %d mean = %g, want ~0", k, sum/float64(cols))
		}
	}
}

func BenchmarkCompute(b *testing.B) {
	extractor, err := New(DefaultParams(16000))
	if err != nil {
		b.Fatalf("New error: %v", err)
	}
	signal := sine(440, 16000, 16000)

	b.ResetTimer()
	for b.Loop() {
		if _, err := extractor.Compute(signal); err != nil {
			b.Fatal(err)
		}
	}
}
